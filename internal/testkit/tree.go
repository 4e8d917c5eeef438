package testkit

import (
	"downlevel/internal/ast"
	"downlevel/internal/source"
)

// fileExtent is the span length given to every tree file.
const fileExtent = 1 << 24

// Tree builds parse-tree nodes of one file. Every node gets its own
// one-byte span so side-table lookups can attribute it to the file.
type Tree struct {
	B     *ast.Builder
	Files *source.FileSet
	Src   source.FileID
	File  ast.FileID
	pos   uint32
}

func NewTree(path string) *Tree {
	fs := source.NewFileSet()
	src := fs.AddVirtual(path, nil)
	b := ast.NewBuilder(ast.Hints{})
	file := b.NewFile(source.Span{File: src, Start: 0, End: fileExtent}, path)
	return &Tree{B: b, Files: fs, Src: src, File: file, pos: 1}
}

func (t *Tree) span() source.Span {
	sp := source.Span{File: t.Src, Start: t.pos, End: t.pos + 1}
	t.pos++
	return sp
}

func (t *Tree) name(s string) source.StringID { return t.B.Intern(s) }

// Push appends top-level statements to the file.
func (t *Tree) Push(stmts ...ast.StmtID) *Tree {
	for _, st := range stmts {
		t.B.PushStmt(t.File, st)
	}
	return t
}

// Declaration marks the file as an ambient declaration file.
func (t *Tree) Declaration() *Tree {
	t.B.Files.Get(t.File).IsDeclaration = true
	return t
}

// Stmts returns the file's top-level statements.
func (t *Tree) Stmts() []ast.StmtID {
	return t.B.Files.Get(t.File).Stmts
}

func (t *Tree) Id(name string) ast.ExprID { return t.B.Exprs.NewIdent(t.span(), t.name(name)) }
func (t *Tree) This() ast.ExprID          { return t.B.Exprs.NewThis(t.span()) }
func (t *Tree) Super() ast.ExprID         { return t.B.Exprs.NewSuper(t.span()) }

func (t *Tree) lit(kind ast.ExprLitKind, v string) ast.ExprID {
	return t.B.Exprs.NewLiteral(t.span(), kind, t.name(v))
}

func (t *Tree) Null() ast.ExprID           { return t.lit(ast.ExprLitNull, "") }
func (t *Tree) Undefined() ast.ExprID      { return t.lit(ast.ExprLitUndefined, "") }
func (t *Tree) Num(text string) ast.ExprID { return t.lit(ast.ExprLitNumber, text) }
func (t *Tree) Str(s string) ast.ExprID    { return t.lit(ast.ExprLitString, s) }
func (t *Tree) True() ast.ExprID           { return t.lit(ast.ExprLitTrue, "") }
func (t *Tree) False() ast.ExprID          { return t.lit(ast.ExprLitFalse, "") }

// Prop builds `x.name`, OptProp `x?.name` and ChainProp `.name` continuing
// an optional chain started below x.
func (t *Tree) Prop(x ast.ExprID, name string) ast.ExprID {
	return t.B.Exprs.NewProperty(t.span(), x, t.name(name), 0)
}

func (t *Tree) OptProp(x ast.ExprID, name string) ast.ExprID {
	return t.B.Exprs.NewProperty(t.span(), x, t.name(name), ast.ChainLink)
}

func (t *Tree) ChainProp(x ast.ExprID, name string) ast.ExprID {
	return t.B.Exprs.NewProperty(t.span(), x, t.name(name), ast.NodeOptionalChain)
}

func (t *Tree) Idx(x, i ast.ExprID) ast.ExprID {
	return t.B.Exprs.NewIndex(t.span(), x, i, 0)
}

func (t *Tree) OptIdx(x, i ast.ExprID) ast.ExprID {
	return t.B.Exprs.NewIndex(t.span(), x, i, ast.ChainLink)
}

func (t *Tree) ChainIdx(x, i ast.ExprID) ast.ExprID {
	return t.B.Exprs.NewIndex(t.span(), x, i, ast.NodeOptionalChain)
}

func (t *Tree) Call(callee ast.ExprID, args ...ast.ExprID) ast.ExprID {
	return t.B.Exprs.NewCall(t.span(), callee, args, 0)
}

func (t *Tree) OptCall(callee ast.ExprID, args ...ast.ExprID) ast.ExprID {
	return t.B.Exprs.NewCall(t.span(), callee, args, ast.ChainLink)
}

func (t *Tree) ChainCall(callee ast.ExprID, args ...ast.ExprID) ast.ExprID {
	return t.B.Exprs.NewCall(t.span(), callee, args, ast.NodeOptionalChain)
}

func (t *Tree) Bin(op ast.ExprBinaryOp, l, r ast.ExprID) ast.ExprID {
	return t.B.Exprs.NewBinary(t.span(), op, l, r)
}

func (t *Tree) Nullish(l, r ast.ExprID) ast.ExprID {
	return t.Bin(ast.ExprBinaryNullishCoalescing, l, r)
}

func (t *Tree) Assign(l, r ast.ExprID) ast.ExprID { return t.Bin(ast.ExprBinaryAssign, l, r) }

func (t *Tree) Unary(op ast.ExprUnaryOp, x ast.ExprID) ast.ExprID {
	return t.B.Exprs.NewUnary(t.span(), op, x)
}

func (t *Tree) Delete(x ast.ExprID) ast.ExprID { return t.Unary(ast.ExprUnaryDelete, x) }
func (t *Tree) Void(x ast.ExprID) ast.ExprID   { return t.Unary(ast.ExprUnaryVoid, x) }
func (t *Tree) Typeof(x ast.ExprID) ast.ExprID { return t.Unary(ast.ExprUnaryTypeof, x) }
func (t *Tree) Not(x ast.ExprID) ast.ExprID    { return t.Unary(ast.ExprUnaryNot, x) }
func (t *Tree) Neg(x ast.ExprID) ast.ExprID    { return t.Unary(ast.ExprUnaryNeg, x) }

func (t *Tree) Cond(test, yes, no ast.ExprID) ast.ExprID {
	return t.B.Exprs.NewConditional(t.span(), test, yes, no)
}

func (t *Tree) Paren(x ast.ExprID) ast.ExprID { return t.B.Exprs.NewParen(t.span(), x) }

func (t *Tree) Tagged(tag ast.ExprID, raw string) ast.ExprID {
	return t.B.Exprs.NewTaggedTemplate(t.span(), tag, t.name(raw), 0)
}

func (t *Tree) names(ss []string) []source.StringID {
	out := make([]source.StringID, len(ss))
	for i, s := range ss {
		out[i] = t.name(s)
	}
	return out
}

// Fn builds `function (params) { body }`.
func (t *Tree) Fn(params []string, body ...ast.StmtID) ast.ExprID {
	return t.B.Exprs.NewFunction(t.span(), ast.ExprFunctionData{
		Params: t.names(params),
		Body:   t.Block(body...),
	})
}

// Arrow builds `(params) => { body }`.
func (t *Tree) Arrow(params []string, body ...ast.StmtID) ast.ExprID {
	return t.B.Exprs.NewFunction(t.span(), ast.ExprFunctionData{
		Params: t.names(params),
		Body:   t.Block(body...),
		Arrow:  true,
	})
}

// KV is one object literal property.
type KV struct {
	Key   string
	Value ast.ExprID
}

func (t *Tree) Obj(props ...KV) ast.ExprID {
	ps := make([]ast.ObjectProp, len(props))
	for i, p := range props {
		ps[i] = ast.ObjectProp{Key: t.name(p.Key), Value: p.Value}
	}
	return t.B.Exprs.NewObject(t.span(), ps)
}

func (t *Tree) Arr(elems ...ast.ExprID) ast.ExprID {
	return t.B.Exprs.NewArray(t.span(), elems)
}

func (t *Tree) Expr(x ast.ExprID) ast.StmtID { return t.B.Stmts.NewExpr(t.span(), x) }

// Var builds `var name = init;`. A NoExprID init leaves the name uninitialised.
func (t *Tree) Var(name string, init ast.ExprID) ast.StmtID {
	return t.decl(ast.VarVar, name, init)
}

func (t *Tree) Let(name string, init ast.ExprID) ast.StmtID {
	return t.decl(ast.VarLet, name, init)
}

func (t *Tree) Const(name string, init ast.ExprID) ast.StmtID {
	return t.decl(ast.VarConst, name, init)
}

func (t *Tree) decl(kind ast.VarKind, name string, init ast.ExprID) ast.StmtID {
	return t.B.Stmts.NewVar(t.span(), kind, []ast.VarDecl{{Name: t.name(name), Init: init}})
}

func (t *Tree) Return(x ast.ExprID) ast.StmtID { return t.B.Stmts.NewReturn(t.span(), x) }

func (t *Tree) Block(stmts ...ast.StmtID) ast.StmtID {
	if stmts == nil {
		stmts = []ast.StmtID{}
	}
	return t.B.Stmts.NewBlock(t.span(), stmts)
}

// Func builds a function declaration.
func (t *Tree) Func(name string, params []string, body ...ast.StmtID) ast.StmtID {
	return t.B.Stmts.NewFunc(t.span(), ast.StmtFuncData{
		Name:   t.name(name),
		Params: t.names(params),
		Body:   t.Block(body...),
	})
}

func (t *Tree) If(cond ast.ExprID, then, els ast.StmtID) ast.StmtID {
	return t.B.Stmts.NewIf(t.span(), cond, then, els)
}

func (t *Tree) Empty() ast.StmtID { return t.B.Stmts.NewEmpty(t.span()) }
