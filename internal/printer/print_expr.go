package printer

import (
	"strings"

	"downlevel/internal/ast"
	"downlevel/internal/emitnode"
)

func (p *printer) atStmtStart() bool {
	return p.w.Len() == p.stmtStart
}

// printExprComments writes synthetic comments around an expression. Line
// comments are written in block form so they cannot swallow the rest of
// the expression.
func (p *printer) printExprComments(n ast.Node, leading bool) {
	if p.commentsOff(n) {
		return
	}
	if leading {
		cs := p.table.LeadingComments(n)
		if len(cs) == 0 {
			return
		}
		wasStart := p.atStmtStart()
		for _, c := range cs {
			p.w.WriteString("/*" + c.Text + "*/ ")
		}
		if wasStart {
			p.stmtStart = p.w.Len()
		}
		return
	}
	for _, c := range p.table.TrailingComments(n) {
		p.w.WriteString(" /*" + c.Text + "*/")
	}
}

func (p *printer) printExpr(id ast.ExprID, lvl level) {
	e := p.b.Exprs.Get(id)
	if e == nil {
		p.fail("expression %d does not exist", id)
		return
	}
	n := ast.ExprNode(id)
	p.printExprComments(n, true)
	if c, ok := p.table.ConstantValue(n); ok {
		p.printConstant(id, c, lvl)
		p.printExprComments(n, false)
		return
	}

	switch e.Kind {
	case ast.ExprIdent:
		data, _ := p.b.Exprs.Ident(id)
		name := p.b.Name(data.Name)
		if p.table.Flags(n).Has(emitnode.FileLevelUniqueName) {
			name = p.names.name(name)
		}
		p.w.WriteString(name)

	case ast.ExprThis:
		p.w.WriteString("this")

	case ast.ExprSuper:
		p.w.WriteString("super")

	case ast.ExprLit:
		p.printLiteral(id, lvl)

	case ast.ExprProperty:
		data, _ := p.b.Exprs.Property(id)
		p.printMemberTarget(e, data.Target)
		if e.HasQuestionDot() {
			p.w.WriteString("?.")
		} else {
			p.w.WriteString(".")
		}
		p.w.WriteString(p.b.Name(data.Name))

	case ast.ExprIndex:
		data, _ := p.b.Exprs.Index(id)
		p.printMemberTarget(e, data.Target)
		if e.HasQuestionDot() {
			p.w.WriteString("?.")
		}
		p.w.WriteString("[")
		p.printExpr(data.Index, lLowest)
		p.w.WriteString("]")

	case ast.ExprCall:
		data, _ := p.b.Exprs.Call(id)
		wrap := lvl >= lNew
		if wrap {
			p.w.WriteString("(")
		}
		p.printMemberTarget(e, data.Callee)
		if e.HasQuestionDot() {
			p.w.WriteString("?.")
		}
		p.printExprList("(", ")", data.Args, p.table.StartsOnNewLine(n))
		if wrap {
			p.w.WriteString(")")
		}

	case ast.ExprBinary:
		p.printBinary(id, lvl)

	case ast.ExprUnary:
		p.printUnary(id, lvl)

	case ast.ExprConditional:
		data, _ := p.b.Exprs.Conditional(id)
		wrap := lvl >= lConditional
		if wrap {
			p.w.WriteString("(")
		}
		p.printExpr(data.Test, lConditional)
		p.w.WriteString(" ? ")
		p.printExpr(data.Yes, lYield)
		p.w.WriteString(" : ")
		p.printExpr(data.No, lYield)
		if wrap {
			p.w.WriteString(")")
		}

	case ast.ExprParen:
		data, _ := p.b.Exprs.Paren(id)
		p.w.WriteString("(")
		p.printExpr(data.Inner, lLowest)
		p.w.WriteString(")")

	case ast.ExprTaggedTemplate:
		data, _ := p.b.Exprs.TaggedTemplate(id)
		p.printMemberTarget(e, data.Tag)
		if e.HasQuestionDot() {
			p.w.WriteString("?.")
		}
		p.w.WriteString("`" + p.b.Name(data.Raw) + "`")

	case ast.ExprFunction:
		data, _ := p.b.Exprs.Function(id)
		if data.Arrow {
			wrap := lvl >= lAssign
			if wrap {
				p.w.WriteString("(")
			}
			if data.Async {
				p.w.WriteString("async ")
			}
			p.printParams(data.Params)
			p.w.WriteString(" => ")
			p.printBlock(data.Body)
			if wrap {
				p.w.WriteString(")")
			}
			break
		}
		wrap := p.atStmtStart()
		if wrap {
			p.w.WriteString("(")
		}
		p.printFunction(data.Name, data.Params, data.Body, data.Async, data.Generator)
		if wrap {
			p.w.WriteString(")")
		}

	case ast.ExprObject:
		p.printObject(id)

	case ast.ExprArray:
		data, _ := p.b.Exprs.Array(id)
		p.printExprList("[", "]", data.Elems, p.table.StartsOnNewLine(n))

	default:
		p.fail("unexpected expression kind %s", e.Kind)
	}
	p.printExprComments(n, false)
}

// printMemberTarget prints the object of an access, call or tag. An
// optional chain under a link that does not belong to it is parenthesised.
func (p *printer) printMemberTarget(parent *ast.Expr, target ast.ExprID) {
	t := p.b.Exprs.Get(target)
	wrap := t != nil && t.IsOptionalChain() && !parent.IsOptionalChain()
	if !wrap && t != nil && t.Kind == ast.ExprLit && parent.Kind == ast.ExprProperty {
		if lit, ok := p.b.Exprs.Literal(target); ok && lit.Kind == ast.ExprLitNumber {
			wrap = needsDotGuard(p.b.Name(lit.Value))
		}
	}
	if wrap {
		p.w.WriteString("(")
		p.printExpr(target, lLowest)
		p.w.WriteString(")")
		return
	}
	p.printExpr(target, lPostfix)
}

func (p *printer) printLiteral(id ast.ExprID, lvl level) {
	data, _ := p.b.Exprs.Literal(id)
	switch data.Kind {
	case ast.ExprLitNull:
		p.w.WriteString("null")
	case ast.ExprLitUndefined:
		if lvl >= lPrefix {
			p.w.WriteString("(void 0)")
		} else {
			p.w.WriteString("void 0")
		}
	case ast.ExprLitNumber:
		text := p.b.Name(data.Value)
		if strings.HasPrefix(text, "-") && lvl >= lPrefix {
			p.w.WriteString("(" + text + ")")
		} else {
			p.w.WriteString(text)
		}
	case ast.ExprLitString:
		p.w.WriteString(quoteString(p.b.Name(data.Value)))
	case ast.ExprLitTrue:
		p.w.WriteString("true")
	case ast.ExprLitFalse:
		p.w.WriteString("false")
	default:
		p.fail("unexpected literal kind %d", data.Kind)
	}
}

// printConstant replaces an access by its known value and keeps the
// accessed name as a comment: `0 /* Red */`.
func (p *printer) printConstant(id ast.ExprID, c emitnode.Constant, lvl level) {
	var text string
	if c.IsString {
		text = quoteString(c.Str)
	} else {
		text = c.JS()
	}
	if strings.HasPrefix(text, "-") && lvl >= lPrefix {
		text = "(" + text + ")"
	}
	p.w.WriteString(text)
	if p.commentsOff(ast.ExprNode(id)) {
		return
	}
	name := ""
	if data, ok := p.b.Exprs.Property(id); ok {
		name = p.b.Name(data.Name)
	} else if data, ok := p.b.Exprs.Index(id); ok {
		if lit, ok := p.b.Exprs.Literal(data.Index); ok && lit.Kind == ast.ExprLitString {
			name = p.b.Name(lit.Value)
		}
	}
	if name != "" && !strings.Contains(name, "*/") {
		p.w.WriteString(" /* " + name + " */")
	}
}

func (p *printer) printBinary(id ast.ExprID, lvl level) {
	data, _ := p.b.Exprs.Binary(id)
	entry := binaryEntry(data.Op)
	wrap := lvl >= entry.level
	if !wrap && data.Op == ast.ExprBinaryAssign && p.atStmtStart() && p.b.Exprs.Kind(data.Left) == ast.ExprObject {
		wrap = true
	}
	if wrap {
		p.w.WriteString("(")
	}

	leftLevel := entry.level - 1
	rightLevel := entry.level - 1
	if entry.rightAsoc {
		leftLevel = entry.level
	} else {
		rightLevel = entry.level
	}
	if data.Op == ast.ExprBinaryNullishCoalescing {
		// `??` cannot directly contain `||` or `&&`.
		if p.isLogical(data.Left) {
			leftLevel = lPrefix
		}
		if p.isLogical(data.Right) {
			rightLevel = lPrefix
		}
	}

	p.printExpr(data.Left, leftLevel)
	if data.Op == ast.ExprBinaryComma {
		p.w.WriteString(", ")
	} else {
		p.w.WriteString(" " + data.Op.String() + " ")
	}
	p.printExpr(data.Right, rightLevel)

	if wrap {
		p.w.WriteString(")")
	}
}

func (p *printer) isLogical(id ast.ExprID) bool {
	data, ok := p.b.Exprs.Binary(id)
	return ok && (data.Op == ast.ExprBinaryLogicalAnd || data.Op == ast.ExprBinaryLogicalOr)
}

func (p *printer) printUnary(id ast.ExprID, lvl level) {
	data, _ := p.b.Exprs.Unary(id)
	wrap := lvl >= lPrefix
	if wrap {
		p.w.WriteString("(")
	}
	p.w.WriteString(data.Op.String())
	if data.Op.IsKeyword() || p.wouldMergeSigns(data.Op, data.Operand) {
		p.w.WriteString(" ")
	}
	p.printExpr(data.Operand, lPrefix-1)
	if wrap {
		p.w.WriteString(")")
	}
}

// wouldMergeSigns reports whether printing operand right after op would
// form `--` or `++`.
func (p *printer) wouldMergeSigns(op ast.ExprUnaryOp, operand ast.ExprID) bool {
	if op != ast.ExprUnaryNeg && op != ast.ExprUnaryPos {
		return false
	}
	if inner, ok := p.b.Exprs.Unary(operand); ok {
		return inner.Op == op
	}
	if lit, ok := p.b.Exprs.Literal(operand); ok && lit.Kind == ast.ExprLitNumber && op == ast.ExprUnaryNeg {
		return strings.HasPrefix(p.b.Name(lit.Value), "-")
	}
	return false
}

// printExprList writes a bracketed list. A multiline list puts every
// element on its own line.
func (p *printer) printExprList(open, close string, items []ast.ExprID, multiline bool) {
	p.w.WriteString(open)
	if multiline && len(items) > 0 {
		p.w.Newline()
		p.w.IndentPush()
		for i, it := range items {
			p.printExpr(it, lComma)
			if i < len(items)-1 {
				p.w.WriteString(",")
			}
			p.w.Newline()
		}
		p.w.IndentPop()
	} else {
		for i, it := range items {
			if i > 0 {
				p.w.WriteString(", ")
			}
			p.printExpr(it, lComma)
		}
	}
	p.w.WriteString(close)
}

func (p *printer) printObject(id ast.ExprID) {
	data, _ := p.b.Exprs.Object(id)
	wrap := p.atStmtStart()
	if wrap {
		p.w.WriteString("(")
	}
	if len(data.Props) == 0 {
		p.w.WriteString("{}")
	} else {
		multiline := p.table.StartsOnNewLine(ast.ExprNode(id))
		p.w.WriteString("{")
		if multiline {
			p.w.Newline()
			p.w.IndentPush()
		} else {
			p.w.WriteString(" ")
		}
		for i, prop := range data.Props {
			key := p.b.Name(prop.Key)
			if !isIdentifierName(key) {
				key = quoteString(key)
			}
			p.w.WriteString(key + ": ")
			p.printExpr(prop.Value, lComma)
			if i < len(data.Props)-1 {
				p.w.WriteString(",")
				if !multiline {
					p.w.WriteString(" ")
				}
			}
			if multiline {
				p.w.Newline()
			}
		}
		if multiline {
			p.w.IndentPop()
		} else {
			p.w.WriteString(" ")
		}
		p.w.WriteString("}")
	}
	if wrap {
		p.w.WriteString(")")
	}
}
