package transform

import (
	"downlevel/internal/ast"
	"downlevel/internal/emitnode"
	"downlevel/internal/source"
)

// Factory builds synthesized nodes. Every node it creates has NoSpan unless
// an update keeps the span of the node it replaces.
type Factory struct {
	b     *ast.Builder
	table *emitnode.Table
}

func (f *Factory) name(s string) source.StringID { return f.b.Intern(s) }

func (f *Factory) Ident(name string) ast.ExprID {
	return f.b.Exprs.NewIdent(source.NoSpan, f.name(name))
}

func (f *Factory) IdentID(name source.StringID) ast.ExprID {
	return f.b.Exprs.NewIdent(source.NoSpan, name)
}

// FileLevelUniqueName creates an identifier the printer must keep unique in the file.
func (f *Factory) FileLevelUniqueName(name string) ast.ExprID {
	id := f.Ident(name)
	f.table.SetFlags(ast.ExprNode(id), emitnode.FileLevelUniqueName)
	return id
}

func (f *Factory) This() ast.ExprID {
	return f.b.Exprs.NewThis(source.NoSpan)
}

func (f *Factory) Null() ast.ExprID {
	return f.b.Exprs.NewLiteral(source.NoSpan, ast.ExprLitNull, source.NoStringID)
}

func (f *Factory) True() ast.ExprID {
	return f.b.Exprs.NewLiteral(source.NoSpan, ast.ExprLitTrue, source.NoStringID)
}

func (f *Factory) Number(text string) ast.ExprID {
	return f.b.Exprs.NewLiteral(source.NoSpan, ast.ExprLitNumber, f.name(text))
}

func (f *Factory) String(s string) ast.ExprID {
	return f.b.Exprs.NewLiteral(source.NoSpan, ast.ExprLitString, f.name(s))
}

// VoidZero creates `void 0`.
func (f *Factory) VoidZero() ast.ExprID {
	return f.b.Exprs.NewUnary(source.NoSpan, ast.ExprUnaryVoid, f.Number("0"))
}

func (f *Factory) Delete(operand ast.ExprID) ast.ExprID {
	return f.b.Exprs.NewUnary(source.NoSpan, ast.ExprUnaryDelete, operand)
}

func (f *Factory) Binary(op ast.ExprBinaryOp, left, right ast.ExprID) ast.ExprID {
	return f.b.Exprs.NewBinary(source.NoSpan, op, left, right)
}

func (f *Factory) Assign(left, right ast.ExprID) ast.ExprID {
	return f.Binary(ast.ExprBinaryAssign, left, right)
}

func (f *Factory) Add(left, right ast.ExprID) ast.ExprID {
	return f.Binary(ast.ExprBinaryAdd, left, right)
}

// TypeCheck creates `typeof value === "tag"`.
func (f *Factory) TypeCheck(value ast.ExprID, tag string) ast.ExprID {
	typeOf := f.b.Exprs.NewUnary(source.NoSpan, ast.ExprUnaryTypeof, value)
	return f.Binary(ast.ExprBinaryStrictEq, typeOf, f.String(tag))
}

func (f *Factory) Property(target ast.ExprID, name source.StringID) ast.ExprID {
	return f.b.Exprs.NewProperty(source.NoSpan, target, name, 0)
}

func (f *Factory) Index(target, index ast.ExprID) ast.ExprID {
	return f.b.Exprs.NewIndex(source.NoSpan, target, index, 0)
}

func (f *Factory) Call(callee ast.ExprID, args []ast.ExprID) ast.ExprID {
	return f.b.Exprs.NewCall(source.NoSpan, callee, args, 0)
}

// FunctionCallCall creates `target.call(thisArg, ...args)`.
func (f *Factory) FunctionCallCall(target, thisArg ast.ExprID, args []ast.ExprID) ast.ExprID {
	all := make([]ast.ExprID, 0, len(args)+1)
	all = append(all, thisArg)
	all = append(all, args...)
	return f.Call(f.Property(target, f.name("call")), all)
}

func (f *Factory) Conditional(test, yes, no ast.ExprID) ast.ExprID {
	return f.b.Exprs.NewConditional(source.NoSpan, test, yes, no)
}

func (f *Factory) Paren(inner ast.ExprID) ast.ExprID {
	return f.b.Exprs.NewParen(source.NoSpan, inner)
}

func (f *Factory) Array(elems []ast.ExprID) ast.ExprID {
	return f.b.Exprs.NewArray(source.NoSpan, elems)
}

// GeneratorFunction creates `function* () body`.
func (f *Factory) GeneratorFunction(body ast.StmtID) ast.ExprID {
	return f.b.Exprs.NewFunction(source.NoSpan, ast.ExprFunctionData{Body: body, Generator: true})
}

// VarStatement declares names without initialisers: `var _a, _b;`.
func (f *Factory) VarStatement(names []source.StringID) ast.StmtID {
	decls := make([]ast.VarDecl, len(names))
	for i, n := range names {
		decls[i] = ast.VarDecl{Name: n}
	}
	return f.b.Stmts.NewVar(source.NoSpan, ast.VarVar, decls)
}

// isSideEffectFree reports whether id may be evaluated twice without
// observable difference: identifiers, `this` and `super`.
func (f *Factory) isSideEffectFree(id ast.ExprID) bool {
	switch f.b.Exprs.Kind(id) {
	case ast.ExprIdent, ast.ExprThis, ast.ExprSuper:
		return true
	}
	return false
}
