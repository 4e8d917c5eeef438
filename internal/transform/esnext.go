package transform

import (
	"slices"

	"downlevel/internal/ast"
	"downlevel/internal/diag"
)

// chainResult is what rewriting a chain segment produces: either a plain
// expression or an expression paired with the receiver an enclosing call
// must be bound to. It never outlives the rewrite of one chain.
type chainResult interface {
	expression() ast.ExprID
}

type plainExpr ast.ExprID

func (p plainExpr) expression() ast.ExprID { return ast.ExprID(p) }

type syntheticRef struct {
	Expr    ast.ExprID
	ThisArg ast.ExprID
}

func (r syntheticRef) expression() ast.ExprID { return r.Expr }

// esnext lowers optional chains, `delete` of optional chains and `??`.
type esnext struct {
	c     *Context
	f     *Factory
	depth int
}

func newESNext(c *Context) *esnext {
	return &esnext{c: c, f: c.Factory}
}

func (p *esnext) enter(id ast.ExprID) {
	p.depth++
	if p.depth > p.c.MaxDepth {
		panic(&DepthError{Limit: p.c.MaxDepth, Span: p.c.B.Span(ast.ExprNode(id))})
	}
}

func (p *esnext) leave() { p.depth-- }

func (p *esnext) VisitStmt(id ast.StmtID) ast.StmtID {
	st := p.c.B.Stmts.Get(id)
	if st == nil || st.Transform&ast.ContainsES2020 == 0 {
		return id
	}
	return p.c.VisitEachStmtChild(id, p)
}

func (p *esnext) VisitExpr(id ast.ExprID) ast.ExprID {
	e := p.c.B.Exprs.MustGet(id)
	if e.Transform&ast.ContainsES2020 == 0 {
		return id
	}
	p.enter(id)
	defer p.leave()

	switch e.Kind {
	case ast.ExprProperty, ast.ExprIndex:
		if e.IsOptionalChain() {
			return p.mustPlain(p.visitOptionalExpression(id, false, false), id)
		}
	case ast.ExprCall:
		return p.mustPlain(p.visitNonOptionalCall(id, false), id)
	case ast.ExprBinary:
		if data, _ := p.c.B.Exprs.Binary(id); data.Op == ast.ExprBinaryNullishCoalescing {
			return p.transformNullishCoalescing(id, data)
		}
	case ast.ExprUnary:
		if data, _ := p.c.B.Exprs.Unary(id); data.Op == ast.ExprUnaryDelete {
			return p.visitDelete(id, data)
		}
	}
	return p.c.VisitEachExprChild(id, p)
}

func (p *esnext) mustPlain(r chainResult, at ast.ExprID) ast.ExprID {
	if _, ok := r.(syntheticRef); ok {
		defectf(diag.DefectUnexpectedNode, p.c.B.Span(ast.ExprNode(at)), "receiver capture leaked out of a chain")
	}
	return r.expression()
}

// linkTarget returns the expression a chain link applies to.
func (p *esnext) linkTarget(id ast.ExprID) ast.ExprID {
	ex := p.c.B.Exprs
	switch ex.Kind(id) {
	case ast.ExprProperty:
		data, _ := ex.Property(id)
		return data.Target
	case ast.ExprIndex:
		data, _ := ex.Index(id)
		return data.Target
	case ast.ExprCall:
		data, _ := ex.Call(id)
		return data.Callee
	case ast.ExprTaggedTemplate:
		data, _ := ex.TaggedTemplate(id)
		return data.Tag
	}
	defectf(diag.DefectMalformedChain, p.c.B.Span(ast.ExprNode(id)), "%s cannot be an optional chain link", ex.Kind(id))
	return ast.NoExprID
}

// flattenChain walks from the outermost link back to the link written with
// `?.` and returns the expression it applies to plus the links in source order.
func (p *esnext) flattenChain(id ast.ExprID) (ast.ExprID, []ast.ExprID) {
	ex := p.c.B.Exprs
	links := []ast.ExprID{id}
	cur := id
	for {
		e := ex.MustGet(cur)
		if e.HasQuestionDot() || e.Kind == ast.ExprTaggedTemplate {
			break
		}
		next := p.linkTarget(cur)
		ne := ex.Get(next)
		if ne == nil || !ne.IsOptionalChain() {
			defectf(diag.DefectMalformedChain, e.Span, "optional chain link without a `?.` root")
		}
		cur = next
		links = append(links, cur)
		if len(links) > p.c.MaxDepth {
			panic(&DepthError{Limit: p.c.MaxDepth, Span: e.Span})
		}
	}
	slices.Reverse(links)
	return p.linkTarget(cur), links
}

func (p *esnext) visitNonOptionalExpression(id ast.ExprID, captureThisArg, isDelete bool) chainResult {
	p.enter(id)
	defer p.leave()
	switch p.c.B.Exprs.Kind(id) {
	case ast.ExprParen:
		return p.visitNonOptionalParen(id, captureThisArg, isDelete)
	case ast.ExprProperty, ast.ExprIndex:
		return p.visitNonOptionalAccess(id, captureThisArg, isDelete)
	case ast.ExprCall:
		return p.visitNonOptionalCall(id, captureThisArg)
	}
	return plainExpr(p.VisitExpr(id))
}

func (p *esnext) updateParen(id, inner ast.ExprID) ast.ExprID {
	data, _ := p.c.B.Exprs.Paren(id)
	if data.Inner == inner {
		return id
	}
	return p.c.updated(p.f.Paren(inner), id)
}

// `(a.b)` keeps the receiver pairing of `a.b`.
func (p *esnext) visitNonOptionalParen(id ast.ExprID, captureThisArg, isDelete bool) chainResult {
	data, _ := p.c.B.Exprs.Paren(id)
	r := p.visitNonOptionalExpression(data.Inner, captureThisArg, isDelete)
	if ref, ok := r.(syntheticRef); ok {
		return syntheticRef{Expr: p.updateParen(id, ref.Expr), ThisArg: ref.ThisArg}
	}
	return plainExpr(p.updateParen(id, r.expression()))
}

// visitNonOptionalAccess rewrites `x.y` or `x[y]` whose target may contain a
// chain. With captureThisArg the target is captured so an enclosing call can
// be bound to it: `a.b` -> { `(_a = a).b`, `_a` }.
func (p *esnext) visitNonOptionalAccess(id ast.ExprID, captureThisArg, isDelete bool) chainResult {
	ex := p.c.B.Exprs
	if ex.MustGet(id).IsOptionalChain() {
		return p.visitOptionalExpression(id, captureThisArg, isDelete)
	}
	target := p.VisitExpr(p.linkTarget(id))

	thisArg := ast.NoExprID
	if captureThisArg {
		if p.f.isSideEffectFree(target) {
			thisArg = target
		} else {
			thisArg = p.c.NewTempVariable()
			target = p.f.Assign(thisArg, target)
		}
	}

	var expr ast.ExprID
	if data, ok := ex.Property(id); ok {
		expr = id
		if target != data.Target {
			expr = p.c.updated(p.f.Property(target, data.Name), id)
		}
	} else {
		data, _ := ex.Index(id)
		index := p.VisitExpr(data.Index)
		expr = id
		if target != data.Target || index != data.Index {
			expr = p.c.updated(p.f.Index(target, index), id)
		}
	}
	if thisArg.IsValid() {
		return syntheticRef{Expr: expr, ThisArg: thisArg}
	}
	return plainExpr(expr)
}

func (p *esnext) visitArgs(args []ast.ExprID) []ast.ExprID {
	out, _ := visitExprs(p, args)
	return out
}

// receiver maps a captured receiver to the value a bound call passes:
// `super` is not a value, the call is bound to `this` instead.
func (p *esnext) receiver(thisArg ast.ExprID) ast.ExprID {
	if p.c.B.Exprs.Kind(thisArg) == ast.ExprSuper {
		return p.f.This()
	}
	return thisArg
}

func (p *esnext) visitNonOptionalCall(id ast.ExprID, captureThisArg bool) chainResult {
	ex := p.c.B.Exprs
	if ex.MustGet(id).IsOptionalChain() {
		return p.visitOptionalExpression(id, captureThisArg, false)
	}
	data, _ := ex.Call(id)
	if ex.Kind(data.Callee) == ast.ExprParen && ex.MustGet(ex.SkipParens(data.Callee)).IsOptionalChain() {
		// `(a?.b)()` still calls b with a as receiver.
		r := p.visitNonOptionalParen(data.Callee, true, false)
		args := p.visitArgs(data.Args)
		if ref, ok := r.(syntheticRef); ok {
			return plainExpr(p.c.updated(p.f.FunctionCallCall(ref.Expr, p.receiver(ref.ThisArg), args), id))
		}
		return plainExpr(p.c.updated(p.f.Call(r.expression(), args), id))
	}
	return plainExpr(p.c.VisitEachExprChild(id, p))
}

func (p *esnext) visitOptionalExpression(id ast.ExprID, captureThisArg, isDelete bool) chainResult {
	ex := p.c.B.Exprs
	base, links := p.flattenChain(id)

	left := p.visitNonOptionalExpression(base, ex.Kind(links[0]) == ast.ExprCall, false)
	leftThisArg := ast.NoExprID
	if ref, ok := left.(syntheticRef); ok {
		leftThisArg = ref.ThisArg
	}
	leftExpr := left.expression()
	captured := leftExpr
	if !p.f.isSideEffectFree(leftExpr) {
		captured = p.c.NewTempVariable()
		leftExpr = p.f.Assign(captured, leftExpr)
	}

	right := captured
	thisArg := ast.NoExprID
	for i, seg := range links {
		switch ex.Kind(seg) {
		case ast.ExprProperty, ast.ExprIndex:
			if i == len(links)-1 && captureThisArg {
				if p.f.isSideEffectFree(right) {
					thisArg = right
				} else {
					thisArg = p.c.NewTempVariable()
					right = p.f.Assign(thisArg, right)
				}
			}
			if data, ok := ex.Property(seg); ok {
				right = p.f.Property(right, data.Name)
			} else {
				data, _ := ex.Index(seg)
				right = p.f.Index(right, p.VisitExpr(data.Index))
			}
		case ast.ExprCall:
			data, _ := ex.Call(seg)
			args := p.visitArgs(data.Args)
			if i == 0 && leftThisArg.IsValid() {
				right = p.f.FunctionCallCall(right, p.receiver(leftThisArg), args)
			} else {
				right = p.f.Call(right, args)
			}
		case ast.ExprTaggedTemplate:
			data, _ := ex.TaggedTemplate(seg)
			right = ex.NewTaggedTemplate(ex.MustGet(seg).Span, right, data.Raw, 0)
		default:
			defectf(diag.DefectMalformedChain, ex.MustGet(seg).Span, "unexpected %s in optional chain", ex.Kind(seg))
		}
		ex.SetOriginal(right, seg)
	}

	var target ast.ExprID
	test := p.notNullCondition(leftExpr, captured, true)
	if isDelete {
		target = p.f.Conditional(test, p.f.True(), p.f.Delete(right))
	} else {
		target = p.f.Conditional(test, p.f.VoidZero(), right)
	}
	p.c.updated(target, id)
	if thisArg.IsValid() {
		return syntheticRef{Expr: target, ThisArg: thisArg}
	}
	return plainExpr(target)
}

// notNullCondition builds `left !== null && right !== void 0`, or with
// invert `left === null || right === void 0`.
func (p *esnext) notNullCondition(left, right ast.ExprID, invert bool) ast.ExprID {
	eq, join := ast.ExprBinaryStrictNotEq, ast.ExprBinaryLogicalAnd
	if invert {
		eq, join = ast.ExprBinaryStrictEq, ast.ExprBinaryLogicalOr
	}
	return p.f.Binary(join,
		p.f.Binary(eq, left, p.f.Null()),
		p.f.Binary(eq, right, p.f.VoidZero()))
}

// `a ?? b` -> `(_a = a) !== null && _a !== void 0 ? _a : b`
func (p *esnext) transformNullishCoalescing(id ast.ExprID, data *ast.ExprBinaryData) ast.ExprID {
	left := p.VisitExpr(data.Left)
	right := left
	if !p.f.isSideEffectFree(left) {
		right = p.c.NewTempVariable()
		left = p.f.Assign(right, left)
	}
	res := p.f.Conditional(p.notNullCondition(left, right, false), right, p.VisitExpr(data.Right))
	return p.c.updated(res, id)
}

func (p *esnext) visitDelete(id ast.ExprID, data *ast.ExprUnaryData) ast.ExprID {
	ex := p.c.B.Exprs
	if !ex.MustGet(ex.SkipParens(data.Operand)).IsOptionalChain() {
		return p.c.VisitEachExprChild(id, p)
	}
	res := p.visitNonOptionalExpression(data.Operand, false, true).expression()
	return ex.SetOriginal(res, id)
}
