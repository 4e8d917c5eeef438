package ast

import (
	"downlevel/internal/source"
)

// Walk visits n and its descendants in source order. Returning false from
// visit skips the children of that node.
func (b *Builder) Walk(n Node, visit func(Node) bool) {
	if !n.IsValid() || !visit(n) {
		return
	}
	switch n.Kind {
	case NodeFile:
		if f := b.Files.Get(FileID(n.ID)); f != nil {
			for _, st := range f.Stmts {
				b.Walk(StmtNode(st), visit)
			}
		}
	case NodeStmt:
		b.walkStmt(StmtID(n.ID), visit)
	case NodeExpr:
		b.walkExpr(ExprID(n.ID), visit)
	}
}

func (b *Builder) walkStmt(id StmtID, visit func(Node) bool) {
	e := func(x ExprID) { b.Walk(ExprNode(x), visit) }
	s := func(x StmtID) { b.Walk(StmtNode(x), visit) }
	st := b.Stmts.Get(id)
	if st == nil {
		return
	}
	switch st.Kind {
	case StmtExpr:
		data, _ := b.Stmts.Expr(id)
		e(data.Expr)
	case StmtVar:
		data, _ := b.Stmts.Var(id)
		for _, d := range data.Decls {
			e(d.Init)
		}
	case StmtReturn:
		data, _ := b.Stmts.Return(id)
		e(data.Value)
	case StmtBlock:
		data, _ := b.Stmts.Block(id)
		for _, x := range data.Stmts {
			s(x)
		}
	case StmtFunc:
		data, _ := b.Stmts.Func(id)
		s(data.Body)
	case StmtIf:
		data, _ := b.Stmts.If(id)
		e(data.Cond)
		s(data.Then)
		s(data.Else)
	}
}

func (b *Builder) walkExpr(id ExprID, visit func(Node) bool) {
	e := func(x ExprID) { b.Walk(ExprNode(x), visit) }
	expr := b.Exprs.Get(id)
	if expr == nil {
		return
	}
	switch expr.Kind {
	case ExprProperty:
		data, _ := b.Exprs.Property(id)
		e(data.Target)
	case ExprIndex:
		data, _ := b.Exprs.Index(id)
		e(data.Target)
		e(data.Index)
	case ExprCall:
		data, _ := b.Exprs.Call(id)
		e(data.Callee)
		for _, a := range data.Args {
			e(a)
		}
	case ExprBinary:
		data, _ := b.Exprs.Binary(id)
		e(data.Left)
		e(data.Right)
	case ExprUnary:
		data, _ := b.Exprs.Unary(id)
		e(data.Operand)
	case ExprConditional:
		data, _ := b.Exprs.Conditional(id)
		e(data.Test)
		e(data.Yes)
		e(data.No)
	case ExprParen:
		data, _ := b.Exprs.Paren(id)
		e(data.Inner)
	case ExprTaggedTemplate:
		data, _ := b.Exprs.TaggedTemplate(id)
		e(data.Tag)
	case ExprFunction:
		data, _ := b.Exprs.Function(id)
		b.Walk(StmtNode(data.Body), visit)
	case ExprObject:
		data, _ := b.Exprs.Object(id)
		for _, p := range data.Props {
			e(p.Value)
		}
	case ExprArray:
		data, _ := b.Exprs.Array(id)
		for _, x := range data.Elems {
			e(x)
		}
	}
}

// Identifiers collects every identifier, parameter and declared name below n.
// Temp allocators use it to avoid colliding with user names.
func (b *Builder) Identifiers(n Node) map[string]struct{} {
	names := make(map[string]struct{})
	add := func(id source.StringID) {
		if s := b.Name(id); s != "" {
			names[s] = struct{}{}
		}
	}
	b.Walk(n, func(node Node) bool {
		switch node.Kind {
		case NodeExpr:
			if data, ok := b.Exprs.Ident(ExprID(node.ID)); ok {
				add(data.Name)
			}
			if data, ok := b.Exprs.Function(ExprID(node.ID)); ok {
				add(data.Name)
				for _, p := range data.Params {
					add(p)
				}
			}
		case NodeStmt:
			if data, ok := b.Stmts.Var(StmtID(node.ID)); ok {
				for _, d := range data.Decls {
					add(d.Name)
				}
			}
			if data, ok := b.Stmts.Func(StmtID(node.ID)); ok {
				add(data.Name)
				for _, p := range data.Params {
					add(p)
				}
			}
		}
		return true
	})
	return names
}
