package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"downlevel/internal/ast"
	"downlevel/internal/diag"
	"downlevel/internal/emitnode"
	"downlevel/internal/helpers"
	"downlevel/internal/source"
	"downlevel/internal/testkit"
)

// newFileContext returns a context already positioned on a fresh file.
func newFileContext(t *testing.T, opts Options) (*Context, *testkit.Tree) {
	t.Helper()
	tr := testkit.NewTree("ctx.js")
	c := NewContext(tr.B, emitnode.NewTable(tr.B), opts)
	c.StartFile(tr.File)
	return c, tr
}

func TestRequestHelperOrdersByPriorityAndDependencies(t *testing.T) {
	c, tr := newFileContext(t, Options{})
	tr.B.Synthesizing(true)
	c.Helpers.CreateSpreadHelper(nil)
	c.Helpers.CreateParamHelper(tr.Id("p"), 0)
	c.Helpers.CreateSpreadHelper(nil)

	assert.Equal(t, []helpers.ID{helpers.Read, helpers.Spread, helpers.Param}, c.RequestedHelpers())
	got := c.EndFile()
	assert.Equal(t, []helpers.ID{helpers.Param, helpers.Read, helpers.Spread}, got)
	assert.ElementsMatch(t, got, c.Table.Helpers(ast.FileNode(tr.File)))
}

func TestRequestHelperIsOrderIndependent(t *testing.T) {
	first, _ := newFileContext(t, Options{})
	first.RequestHelper(helpers.Await, helpers.AsyncGenerator)
	first.RequestHelper(helpers.Awaiter)

	second, _ := newFileContext(t, Options{})
	second.RequestHelper(helpers.Awaiter)
	second.RequestHelper(helpers.AsyncGenerator, helpers.Await)

	want := []helpers.ID{helpers.Await, helpers.AsyncGenerator, helpers.Awaiter}
	assert.Equal(t, want, first.EndFile())
	assert.Equal(t, want, second.EndFile())
}

func TestRequestHelperRejectsMissingDependency(t *testing.T) {
	c, _ := newFileContext(t, Options{})
	d := catchDefect(t, func() { c.RequestHelper(helpers.Spread) })
	assert.Equal(t, diag.DefectMissingHelperDependency, d.Code)
	assert.Contains(t, d.Msg, "downlevel:read")

	// an earlier request satisfies the dependency
	c.RequestHelper(helpers.Read)
	assert.NotPanics(t, func() { c.RequestHelper(helpers.Spread) })
}

func TestRequestHelperRejectsScopedHelpers(t *testing.T) {
	c, _ := newFileContext(t, Options{})
	d := catchDefect(t, func() { c.RequestHelper(helpers.AsyncSuper) })
	assert.Equal(t, diag.DefectInternal, d.Code)
}

func TestStartFileResetsState(t *testing.T) {
	c, tr := newFileContext(t, Options{})
	c.RequestHelper(helpers.Assign)
	c.StartScope()
	c.NewTempVariable()

	other := tr.B.Files.New(source.NoSpan, "other.js")
	c.StartFile(other)
	assert.Empty(t, c.RequestedHelpers())
	assert.Equal(t, other, c.File())
	c.StartScope()
	id := c.NewTempVariable()
	data, _ := tr.B.Exprs.Ident(id)
	assert.Equal(t, "_a", tr.B.Name(data.Name))
}

func TestHoistingScopes(t *testing.T) {
	c, tr := newFileContext(t, Options{})
	c.StartScope()
	outer := c.NewTempVariable()
	c.StartScope()
	inner := c.NewTempVariable()
	innerNames := c.EndScope()
	outerNames := c.EndScope()

	name := func(id ast.ExprID) source.StringID {
		data, _ := tr.B.Exprs.Ident(id)
		return data.Name
	}
	assert.Equal(t, []source.StringID{name(inner)}, innerNames)
	assert.Equal(t, []source.StringID{name(outer)}, outerNames)
	assert.True(t, c.Table.Flags(ast.ExprNode(inner)).Has(emitnode.Generated|emitnode.FileLevelUniqueName))

	d := catchDefect(t, func() { c.EndScope() })
	assert.Equal(t, diag.DefectInternal, d.Code)
	d = catchDefect(t, func() { c.HoistVariable(name(outer)) })
	assert.Equal(t, diag.DefectInternal, d.Code)
}

func TestNameGenerator(t *testing.T) {
	g := NewNameGenerator(map[string]struct{}{"_b": {}})
	var got []string
	for range 26 {
		got = append(got, g.Next())
	}
	assert.Equal(t, []string{"_a", "_c", "_d", "_e", "_f", "_g", "_h", "_j", "_k", "_l", "_m", "_o"}, got[:12])
	assert.NotContains(t, got, "_i")
	assert.NotContains(t, got, "_n")
	assert.NotContains(t, got, "_b")
	assert.Equal(t, "_z", got[22])
	assert.Equal(t, []string{"_0", "_1", "_2"}, got[23:])

	g.Reserve("_3")
	assert.Equal(t, "_4", g.Next())
}

func TestParseTarget(t *testing.T) {
	cases := map[string]Target{
		"es3":     ES3,
		"ES5":     ES5,
		"es6":     ES2015,
		" es2019": ES2019,
		"esnext":  ESNext,
	}
	for in, want := range cases {
		got, err := ParseTarget(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseTarget("es2077")
	assert.ErrorContains(t, err, "unknown target")
	assert.Equal(t, "unknown", Target(0).String())
}

func TestTargetSupports(t *testing.T) {
	assert.False(t, ES2019.Supports(FeatureOptionalChaining))
	assert.False(t, ES2019.Supports(FeatureNullishCoalescing))
	assert.True(t, ES2020.Supports(FeatureOptionalChaining))
	assert.True(t, ESNext.Supports(FeatureNullishCoalescing))
	assert.False(t, ES5.Supports(FeatureObjectAssign))
	assert.True(t, ES2015.Supports(FeatureObjectAssign))
	assert.Equal(t, ES2019, NewContext(ast.NewBuilder(ast.Hints{}), nil, Options{}).Target)
}
