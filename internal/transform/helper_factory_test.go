package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"downlevel/internal/ast"
	"downlevel/internal/emitnode"
	"downlevel/internal/helpers"
	"downlevel/internal/printer"
	"downlevel/internal/source"
)

func printExpr(t *testing.T, c *Context, expr ast.ExprID) string {
	t.Helper()
	st := c.B.Stmts.NewExpr(source.NoSpan, expr)
	res, err := printer.Print(c.B, c.Table, c.File(), []ast.StmtID{st}, printer.Options{Helpers: printer.HelpersNone})
	require.NoError(t, err)
	return string(res.Code)
}

func TestCreateAssignHelperDependsOnTarget(t *testing.T) {
	c, tr := newFileContext(t, Options{Target: ES5})
	tr.B.Synthesizing(true)
	got := c.Helpers.CreateAssignHelper([]ast.ExprID{tr.Id("a"), tr.Id("b")})
	assert.Equal(t, "__assign(a, b);\n", printExpr(t, c, got))
	assert.Equal(t, []helpers.ID{helpers.Assign}, c.RequestedHelpers())

	c, tr = newFileContext(t, Options{Target: ES2015})
	tr.B.Synthesizing(true)
	got = c.Helpers.CreateAssignHelper([]ast.ExprID{tr.Id("a"), tr.Id("b")})
	assert.Equal(t, "Object.assign(a, b);\n", printExpr(t, c, got))
	assert.Empty(t, c.RequestedHelpers())
}

func TestCreateRestHelper(t *testing.T) {
	c, tr := newFileContext(t, Options{})
	tr.B.Synthesizing(true)
	c.StartScope()
	key := c.NewTempVariable()
	got := c.Helpers.CreateRestHelper(tr.Id("o"), []RestProperty{{Name: "a"}, {Computed: key}})
	assert.Equal(t,
		"__rest(o, [\"a\", typeof _a === \"symbol\" ? _a : _a + \"\"]);\n",
		printExpr(t, c, got))
}

func TestCreateReadHelper(t *testing.T) {
	c, tr := newFileContext(t, Options{})
	tr.B.Synthesizing(true)
	assert.Equal(t, "__read(it, 2);\n", printExpr(t, c, c.Helpers.CreateReadHelper(tr.Id("it"), 2)))
	assert.Equal(t, "__read(it);\n", printExpr(t, c, c.Helpers.CreateReadHelper(tr.Id("it"), -1)))
}

func TestHelperCalleeIsFlagged(t *testing.T) {
	c, tr := newFileContext(t, Options{})
	tr.B.Synthesizing(true)
	call := c.Helpers.CreateParamHelper(tr.Id("dec"), 1)
	data, ok := tr.B.Exprs.Call(call)
	require.True(t, ok)
	assert.True(t, c.Table.Flags(ast.ExprNode(data.Callee)).Has(emitnode.HelperName))
	assert.Equal(t, "__param(1, dec);\n", printExpr(t, c, call))
}

func TestCreateDecorateHelperBreaksDecoratorList(t *testing.T) {
	c, tr := newFileContext(t, Options{})
	tr.B.Synthesizing(true)
	got := c.Helpers.CreateDecorateHelper([]ast.ExprID{tr.Id("a"), tr.Id("b")}, tr.Id("C"), ast.NoExprID, tr.Id("ignored"))
	assert.Equal(t, "__decorate([\n    a,\n    b\n], C);\n", printExpr(t, c, got))
}

func TestAddAsyncSuperHelperAttachesToBlock(t *testing.T) {
	c, tr := newFileContext(t, Options{})
	body := tr.Block(tr.Return(tr.Id("x")))
	c.Helpers.AddAsyncSuperHelper(body, false)
	c.Helpers.AddAsyncSuperHelper(body, false)
	assert.Equal(t, []helpers.ID{helpers.AsyncSuper}, c.Table.Helpers(ast.StmtNode(body)))
	assert.Empty(t, c.RequestedHelpers())

	other := tr.Block()
	c.Helpers.AddAsyncSuperHelper(other, true)
	assert.Equal(t, []helpers.ID{helpers.AdvancedAsyncSuper}, c.Table.Helpers(ast.StmtNode(other)))
}
