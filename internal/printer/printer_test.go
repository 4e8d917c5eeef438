package printer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"downlevel/internal/ast"
	"downlevel/internal/emitnode"
	"downlevel/internal/helpers"
	"downlevel/internal/testkit"
)

func printTree(t *testing.T, tr *testkit.Tree, table *emitnode.Table, opts Options) string {
	t.Helper()
	if table == nil {
		table = emitnode.NewTable(tr.B)
	}
	res, err := Print(tr.B, table, tr.File, nil, opts)
	require.NoError(t, err)
	return string(res.Code)
}

func TestPrintPrecedence(t *testing.T) {
	tr := testkit.NewTree("prec.js")
	add := func(l, r ast.ExprID) ast.ExprID { return tr.Bin(ast.ExprBinaryAdd, l, r) }
	mul := func(l, r ast.ExprID) ast.ExprID { return tr.Bin(ast.ExprBinaryMul, l, r) }
	tr.Push(
		// (a + b) * c
		tr.Expr(mul(add(tr.Id("a"), tr.Id("b")), tr.Id("c"))),
		// a + b * c
		tr.Expr(add(tr.Id("a"), mul(tr.Id("b"), tr.Id("c")))),
		// a - (b - c)
		tr.Expr(tr.Bin(ast.ExprBinarySub, tr.Id("a"), tr.Bin(ast.ExprBinarySub, tr.Id("b"), tr.Id("c")))),
		// a = b = c
		tr.Expr(tr.Assign(tr.Id("a"), tr.Assign(tr.Id("b"), tr.Id("c")))),
		// (x = f()) === null
		tr.Expr(tr.Bin(ast.ExprBinaryStrictEq, tr.Assign(tr.Id("x"), tr.Call(tr.Id("f"))), tr.Null())),
		// (a || b) ?? c
		tr.Expr(tr.Nullish(tr.Bin(ast.ExprBinaryLogicalOr, tr.Id("a"), tr.Id("b")), tr.Id("c"))),
		// a ? b : c ? d : e
		tr.Expr(tr.Cond(tr.Id("a"), tr.Id("b"), tr.Cond(tr.Id("c"), tr.Id("d"), tr.Id("e")))),
		// (a ? b : c).d
		tr.Expr(tr.Prop(tr.Cond(tr.Id("a"), tr.Id("b"), tr.Id("c")), "d")),
		// -(-x)
		tr.Expr(tr.Neg(tr.Neg(tr.Id("x")))),
	)
	want := strings.Join([]string{
		"(a + b) * c;",
		"a + b * c;",
		"a - (b - c);",
		"a = b = c;",
		"(x = f()) === null;",
		"(a || b) ?? c;",
		"a ? b : c ? d : e;",
		"(a ? b : c).d;",
		"- -x;",
		"",
	}, "\n")
	assert.Equal(t, want, printTree(t, tr, nil, Options{}))
}

func TestPrintOptionalChains(t *testing.T) {
	tr := testkit.NewTree("chain.js")
	tr.Push(
		tr.Expr(tr.ChainCall(tr.ChainProp(tr.OptProp(tr.Id("a"), "b"), "c"), tr.Num("1"))),
		tr.Expr(tr.OptIdx(tr.Id("a"), tr.Str("k"))),
		tr.Expr(tr.OptCall(tr.Id("f"))),
		tr.Expr(tr.Prop(tr.Paren(tr.OptProp(tr.Id("a"), "b")), "c")),
		tr.Expr(tr.Delete(tr.OptProp(tr.Id("a"), "b"))),
	)
	want := "a?.b.c(1);\na?.[\"k\"];\nf?.();\n(a?.b).c;\ndelete a?.b;\n"
	assert.Equal(t, want, printTree(t, tr, nil, Options{}))
}

func TestPrintStatementStartWrapping(t *testing.T) {
	tr := testkit.NewTree("start.js")
	tr.Push(
		tr.Expr(tr.Call(tr.Fn(nil))),
		tr.Expr(tr.Prop(tr.Obj(testkit.KV{Key: "a", Value: tr.Num("1")}), "a")),
		tr.Expr(tr.Prop(tr.Num("1"), "toString")),
		tr.Expr(tr.Void(tr.Num("0"))),
	)
	want := "(function () {})();\n({ a: 1 }).a;\n(1).toString;\nvoid 0;\n"
	assert.Equal(t, want, printTree(t, tr, nil, Options{}))
}

func TestPrintStatements(t *testing.T) {
	tr := testkit.NewTree("stmts.js")
	tr.Push(
		tr.Var("a", tr.Num("1")),
		tr.Func("f", []string{"x", "y"},
			tr.If(tr.Id("x"), tr.Return(tr.Id("y")), tr.Block(tr.Return(ast.NoExprID))),
		),
		tr.If(tr.Id("a"), tr.If(tr.Id("b"), tr.Expr(tr.Id("c")), ast.NoStmtID), tr.Expr(tr.Id("d"))),
		tr.Empty(),
	)
	want := strings.Join([]string{
		"var a = 1;",
		"function f(x, y) {",
		"    if (x)",
		"        return y;",
		"    else {",
		"        return;",
		"    }",
		"}",
		"if (a) {",
		"    if (b)",
		"        c;",
		"} else",
		"    d;",
		";",
		"",
	}, "\n")
	assert.Equal(t, want, printTree(t, tr, nil, Options{}))
}

func TestPrintStringEscapes(t *testing.T) {
	assert.Equal(t, `"a\"b\\c\n \u0001"`, quoteString("a\"b\\c\n \x01"))
	assert.True(t, isIdentifierName("_$x1"))
	assert.False(t, isIdentifierName("1x"))
	assert.False(t, isIdentifierName("a-b"))
}

func TestPrintSideTableMetadata(t *testing.T) {
	tr := testkit.NewTree("meta.js")
	access := tr.Prop(tr.Id("Color"), "Red")
	stmt := tr.Expr(access)
	quiet := tr.Expr(tr.Id("q"))
	tr.Push(stmt, quiet)

	table := emitnode.NewTable(tr.B)
	require.NoError(t, table.SetConstantValue(ast.ExprNode(access), emitnode.NumberConstant(0)))
	table.AddLeadingComment(ast.StmtNode(stmt), emitnode.SingleLineComment, " enum", true)
	table.AddTrailingComment(ast.StmtNode(quiet), emitnode.MultiLineComment, " hidden ", false)
	table.AddFlags(ast.StmtNode(quiet), emitnode.NoComments)

	want := "// enum\n0 /* Red */;\nq;\n"
	assert.Equal(t, want, printTree(t, tr, table, Options{}))

	want = "0;\nq;\n"
	assert.Equal(t, want, printTree(t, tr, table, Options{RemoveComments: true}))
}

func TestPrintStartsOnNewLine(t *testing.T) {
	tr := testkit.NewTree("newline.js")
	arr := tr.Arr(tr.Id("a"), tr.Id("b"))
	tr.Push(tr.Expr(tr.Call(tr.Id("f"), arr)))
	table := emitnode.NewTable(tr.B)
	table.SetStartsOnNewLine(ast.ExprNode(arr), true)

	want := "f([\n    a,\n    b\n]);\n"
	assert.Equal(t, want, printTree(t, tr, table, Options{}))
}

func TestPrintHelperPrologue(t *testing.T) {
	tr := testkit.NewTree("helpers.js")
	tr.Push(tr.Expr(tr.Id("x")))
	table := emitnode.NewTable(tr.B)
	file := ast.FileNode(tr.File)
	// spread depends on read; param sorts before awaiter
	table.AddHelpers(file, []helpers.ID{helpers.Spread, helpers.Awaiter, helpers.Param})

	res, err := Print(tr.B, table, tr.File, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, []helpers.ID{helpers.Param, helpers.Awaiter, helpers.Read, helpers.Spread}, res.Required)
	assert.Equal(t, res.Required, res.Emitted)

	code := string(res.Code)
	idx := func(id helpers.ID) int {
		i := strings.Index(code, "var "+helpers.MustLookup(id).ImportName+" =")
		require.GreaterOrEqual(t, i, 0, id.String())
		return i
	}
	assert.Less(t, idx(helpers.Param), idx(helpers.Awaiter))
	assert.Less(t, idx(helpers.Awaiter), idx(helpers.Read))
	assert.Less(t, idx(helpers.Read), idx(helpers.Spread))
	assert.True(t, strings.HasSuffix(code, "\nx;\n"))
}

func TestPrintHelperTrackerEmitsOnce(t *testing.T) {
	tracker := NewHelperTracker()
	var outs []*Result
	for _, path := range []string{"a.js", "b.js"} {
		tr := testkit.NewTree(path)
		tr.Push(tr.Expr(tr.Id("x")))
		table := emitnode.NewTable(tr.B)
		table.AddHelper(ast.FileNode(tr.File), helpers.Assign)
		res, err := Print(tr.B, table, tr.File, nil, Options{Tracker: tracker})
		require.NoError(t, err)
		outs = append(outs, res)
	}
	assert.Equal(t, []helpers.ID{helpers.Assign}, outs[0].Emitted)
	assert.Empty(t, outs[1].Emitted)
	assert.Equal(t, []helpers.ID{helpers.Assign}, outs[1].Required)
	assert.True(t, tracker.Emitted(helpers.Assign))
}

func TestPrintHelpersNone(t *testing.T) {
	tr := testkit.NewTree("none.js")
	tr.Push(tr.Expr(tr.Id("x")))
	table := emitnode.NewTable(tr.B)
	table.AddHelper(ast.FileNode(tr.File), helpers.Extends)
	res, err := Print(tr.B, table, tr.File, nil, Options{Helpers: HelpersNone})
	require.NoError(t, err)
	assert.Equal(t, "x;\n", string(res.Code))
	assert.Equal(t, []helpers.ID{helpers.Extends}, res.Required)
}

func TestPrintScopedHelperInBlock(t *testing.T) {
	tr := testkit.NewTree("scoped.js")
	body := tr.Block(tr.Return(tr.Call(tr.Id("_superIndex"), tr.Str("m"))))
	fn := tr.B.Stmts.NewFunc(tr.B.Span(ast.StmtNode(body)), ast.StmtFuncData{Name: tr.B.Intern("f"), Body: body})
	tr.Push(fn)
	table := emitnode.NewTable(tr.B)
	table.AddHelper(ast.StmtNode(body), helpers.AsyncSuper)

	code := printTree(t, tr, table, Options{})
	// the user already has `_superIndex`, so the helper binding is renamed
	assert.Contains(t, code, "function f() {\n    const _superIndex_1 = name => super[name];\n    return _superIndex(\"m\");\n}")
}

func TestParseHelperMode(t *testing.T) {
	m, err := ParseHelperMode("none")
	require.NoError(t, err)
	assert.Equal(t, HelpersNone, m)
	m, err = ParseHelperMode("")
	require.NoError(t, err)
	assert.Equal(t, HelpersInline, m)
	_, err = ParseHelperMode("external")
	assert.Error(t, err)
}
