package transform

import (
	"slices"

	"downlevel/internal/ast"
	"downlevel/internal/diag"
	"downlevel/internal/helpers"
)

// Visitor rewrites one node. Returning the argument unchanged keeps the node.
type Visitor interface {
	VisitExpr(id ast.ExprID) ast.ExprID
	VisitStmt(id ast.StmtID) ast.StmtID
}

func visitExprs(v Visitor, ids []ast.ExprID) ([]ast.ExprID, bool) {
	var out []ast.ExprID
	for i, id := range ids {
		nid := v.VisitExpr(id)
		if nid != id && out == nil {
			out = slices.Clone(ids[:i:i])
		}
		if out != nil {
			out = append(out, nid)
		}
	}
	if out == nil {
		return ids, false
	}
	return out, true
}

func visitStmts(v Visitor, ids []ast.StmtID) ([]ast.StmtID, bool) {
	var out []ast.StmtID
	for i, id := range ids {
		nid := v.VisitStmt(id)
		if nid != id && out == nil {
			out = slices.Clone(ids[:i:i])
		}
		if out != nil {
			out = append(out, nid)
		}
	}
	if out == nil {
		return ids, false
	}
	return out, true
}

// updated links a rebuilt expression to the node it replaces and keeps its span.
func (c *Context) updated(id, original ast.ExprID) ast.ExprID {
	e := c.B.Exprs.MustGet(id)
	orig := c.B.Exprs.MustGet(original)
	e.Span = orig.Span
	return c.B.Exprs.SetOriginal(id, original)
}

// VisitEachExprChild visits the children of id and rebuilds it when any child
// changed. Function bodies get their own hoisting scope.
func (c *Context) VisitEachExprChild(id ast.ExprID, v Visitor) ast.ExprID {
	e := c.B.Exprs.MustGet(id)
	ex := c.B.Exprs
	span, chain := e.Span, e.Flags&ast.ChainLink
	switch e.Kind {
	case ast.ExprIdent, ast.ExprThis, ast.ExprSuper, ast.ExprLit:
		return id
	case ast.ExprProperty:
		data, _ := ex.Property(id)
		target := v.VisitExpr(data.Target)
		if target == data.Target {
			return id
		}
		return c.updated(ex.NewProperty(span, target, data.Name, chain), id)
	case ast.ExprIndex:
		data, _ := ex.Index(id)
		target, index := v.VisitExpr(data.Target), v.VisitExpr(data.Index)
		if target == data.Target && index == data.Index {
			return id
		}
		return c.updated(ex.NewIndex(span, target, index, chain), id)
	case ast.ExprCall:
		data, _ := ex.Call(id)
		callee := v.VisitExpr(data.Callee)
		args, changed := visitExprs(v, data.Args)
		if callee == data.Callee && !changed {
			return id
		}
		return c.updated(ex.NewCall(span, callee, args, chain), id)
	case ast.ExprBinary:
		data, _ := ex.Binary(id)
		left, right := v.VisitExpr(data.Left), v.VisitExpr(data.Right)
		if left == data.Left && right == data.Right {
			return id
		}
		return c.updated(ex.NewBinary(span, data.Op, left, right), id)
	case ast.ExprUnary:
		data, _ := ex.Unary(id)
		operand := v.VisitExpr(data.Operand)
		if operand == data.Operand {
			return id
		}
		return c.updated(ex.NewUnary(span, data.Op, operand), id)
	case ast.ExprConditional:
		data, _ := ex.Conditional(id)
		test, yes, no := v.VisitExpr(data.Test), v.VisitExpr(data.Yes), v.VisitExpr(data.No)
		if test == data.Test && yes == data.Yes && no == data.No {
			return id
		}
		return c.updated(ex.NewConditional(span, test, yes, no), id)
	case ast.ExprParen:
		data, _ := ex.Paren(id)
		inner := v.VisitExpr(data.Inner)
		if inner == data.Inner {
			return id
		}
		return c.updated(ex.NewParen(span, inner), id)
	case ast.ExprTaggedTemplate:
		data, _ := ex.TaggedTemplate(id)
		tag := v.VisitExpr(data.Tag)
		if tag == data.Tag {
			return id
		}
		return c.updated(ex.NewTaggedTemplate(span, tag, data.Raw, chain), id)
	case ast.ExprFunction:
		data, _ := ex.Function(id)
		body := c.VisitFunctionBody(data.Body, v)
		if body == data.Body {
			return id
		}
		fn := *data
		fn.Body = body
		return c.updated(ex.NewFunction(span, fn), id)
	case ast.ExprObject:
		data, _ := ex.Object(id)
		var props []ast.ObjectProp
		for i, p := range data.Props {
			val := v.VisitExpr(p.Value)
			if val != p.Value && props == nil {
				props = slices.Clone(data.Props[:i:i])
			}
			if props != nil {
				props = append(props, ast.ObjectProp{Key: p.Key, Value: val})
			}
		}
		if props == nil {
			return id
		}
		return c.updated(ex.NewObject(span, props), id)
	case ast.ExprArray:
		data, _ := ex.Array(id)
		elems, changed := visitExprs(v, data.Elems)
		if !changed {
			return id
		}
		return c.updated(ex.NewArray(span, elems), id)
	}
	defectf(diag.DefectUnexpectedNode, span, "unexpected expression kind %s", e.Kind)
	return id
}

// VisitEachStmtChild is VisitEachExprChild for statements.
func (c *Context) VisitEachStmtChild(id ast.StmtID, v Visitor) ast.StmtID {
	st := c.B.Stmts.Get(id)
	if st == nil {
		defectf(diag.DefectUnexpectedNode, c.B.Span(ast.StmtNode(id)), "statement %d does not exist", id)
	}
	ss := c.B.Stmts
	span := st.Span
	switch st.Kind {
	case ast.StmtEmpty:
		return id
	case ast.StmtExpr:
		data, _ := ss.Expr(id)
		expr := v.VisitExpr(data.Expr)
		if expr == data.Expr {
			return id
		}
		return ss.NewExpr(span, expr)
	case ast.StmtVar:
		data, _ := ss.Var(id)
		var decls []ast.VarDecl
		for i, d := range data.Decls {
			init := d.Init
			if init.IsValid() {
				init = v.VisitExpr(init)
			}
			if init != d.Init && decls == nil {
				decls = slices.Clone(data.Decls[:i:i])
			}
			if decls != nil {
				decls = append(decls, ast.VarDecl{Name: d.Name, Init: init})
			}
		}
		if decls == nil {
			return id
		}
		return ss.NewVar(span, data.Kind, decls)
	case ast.StmtReturn:
		data, _ := ss.Return(id)
		if !data.Value.IsValid() {
			return id
		}
		val := v.VisitExpr(data.Value)
		if val == data.Value {
			return id
		}
		return ss.NewReturn(span, val)
	case ast.StmtBlock:
		data, _ := ss.Block(id)
		stmts, changed := visitStmts(v, data.Stmts)
		if !changed {
			return id
		}
		return ss.NewBlock(span, stmts)
	case ast.StmtFunc:
		data, _ := ss.Func(id)
		body := c.VisitFunctionBody(data.Body, v)
		if body == data.Body {
			return id
		}
		fn := *data
		fn.Body = body
		return ss.NewFunc(span, fn)
	case ast.StmtIf:
		data, _ := ss.If(id)
		cond := v.VisitExpr(data.Cond)
		then := v.VisitStmt(data.Then)
		els := data.Else
		if els.IsValid() {
			els = v.VisitStmt(els)
		}
		if cond == data.Cond && then == data.Then && els == data.Else {
			return id
		}
		return ss.NewIf(span, cond, then, els)
	}
	defectf(diag.DefectUnexpectedNode, span, "unexpected statement kind %s", st.Kind)
	return id
}

// VisitFunctionBody visits a function's block body inside a fresh hoisting
// scope and prepends declarations of the temporaries hoisted into it.
func (c *Context) VisitFunctionBody(body ast.StmtID, v Visitor) ast.StmtID {
	block, ok := c.B.Stmts.Block(body)
	if !ok {
		defectf(diag.DefectUnexpectedNode, c.B.Span(ast.StmtNode(body)), "function body is not a block")
	}
	c.StartScope()
	stmts, changed := visitStmts(v, block.Stmts)
	hoisted := c.EndScope()
	if !changed && len(hoisted) == 0 {
		return body
	}
	out := c.B.Stmts.NewBlock(c.B.Span(ast.StmtNode(body)), c.withHoisted(stmts, hoisted))
	c.Table.MoveHelpers(ast.StmtNode(body), ast.StmtNode(out), func(helpers.ID) bool { return true })
	return out
}

// VisitFile visits the top-level statements of file inside the file scope.
func (c *Context) VisitFile(file ast.FileID, v Visitor) []ast.StmtID {
	f := c.B.Files.Get(file)
	c.StartScope()
	stmts, _ := visitStmts(v, f.Stmts)
	return c.withHoisted(stmts, c.EndScope())
}
