package emitnode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"downlevel/internal/ast"
	"downlevel/internal/helpers"
	"downlevel/internal/source"
)

type fixture struct {
	b     *ast.Builder
	file  ast.FileID
	ident ast.ExprID
	prop  ast.ExprID
	table *Table
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := ast.NewBuilder(ast.Hints{})
	file := b.NewFile(source.Span{File: 1, Start: 0, End: 40}, "a.js")
	ident := b.Exprs.NewIdent(source.Span{File: 1, Start: 0, End: 1}, b.Intern("a"))
	prop := b.Exprs.NewProperty(source.Span{File: 1, Start: 0, End: 3}, ident, b.Intern("b"), 0)
	b.PushStmt(file, b.Stmts.NewExpr(source.Span{File: 1, Start: 0, End: 4}, prop))
	return &fixture{b: b, file: file, ident: ident, prop: prop, table: NewTable(b)}
}

func TestGetOrCreateRegistersParseTreeNodes(t *testing.T) {
	f := newFixture(t)
	n := ast.ExprNode(f.prop)

	assert.Nil(t, f.table.Get(n))
	m := f.table.GetOrCreate(n)
	require.NotNil(t, m)
	assert.Same(t, m, f.table.GetOrCreate(n))
	assert.Equal(t, []ast.Node{n}, f.table.Annotated(f.file))

	f.table.GetOrCreate(ast.FileNode(f.file))
	assert.Equal(t, []ast.Node{ast.FileNode(f.file), n}, f.table.Annotated(f.file))
}

func TestSynthesizedNodesAreNotTracked(t *testing.T) {
	f := newFixture(t)
	f.b.Synthesizing(true)
	tmp := f.b.Exprs.NewIdent(source.NoSpan, f.b.Intern("_a"))
	f.b.Synthesizing(false)

	f.table.AddFlags(ast.ExprNode(tmp), Generated)
	assert.Empty(t, f.table.Annotated(f.file))
	assert.Equal(t, Generated, f.table.Flags(ast.ExprNode(tmp)))
}

func TestUnresolvedParseNodePanics(t *testing.T) {
	f := newFixture(t)
	orphan := f.b.Exprs.NewIdent(source.Span{File: 9, Start: 1, End: 2}, f.b.Intern("x"))
	assert.PanicsWithError(t, (&UnresolvedNodeError{Node: ast.ExprNode(orphan)}).Error(), func() {
		f.table.GetOrCreate(ast.ExprNode(orphan))
	})
}

func TestDisposeAllClearsFile(t *testing.T) {
	f := newFixture(t)
	nodes := []ast.Node{ast.FileNode(f.file), ast.ExprNode(f.ident), ast.ExprNode(f.prop)}
	for _, n := range nodes {
		f.table.AddFlags(n, NoSourceMap)
		f.table.AddHelper(n, helpers.Assign)
		f.table.AddLeadingComment(n, MultiLineComment, "x", false)
	}

	f.table.DisposeAll(f.file)

	for _, n := range nodes {
		assert.Nil(t, f.table.Get(n), n.String())
		assert.Zero(t, f.table.Flags(n))
		assert.Empty(t, f.table.Helpers(n))
		assert.Empty(t, f.table.LeadingComments(n))
	}
	assert.Empty(t, f.table.Annotated(f.file))
	assert.Zero(t, f.table.Len())
}

func TestFlags(t *testing.T) {
	f := newFixture(t)
	n := ast.ExprNode(f.ident)
	f.table.SetFlags(n, NoComments)
	f.table.AddFlags(n, HelperName|AdviseOnEmitNode)
	assert.Equal(t, NoComments|HelperName|AdviseOnEmitNode, f.table.Flags(n))
	assert.True(t, f.table.Flags(n).Has(HelperName|AdviseOnEmitNode))
	assert.Equal(t, "NoComments|HelperName|AdviseOnEmitNode", f.table.Flags(n).String())

	f.table.SetFlags(n, Generated)
	assert.Equal(t, Generated, f.table.Flags(n))

	assert.False(t, f.table.StartsOnNewLine(n))
	f.table.SetStartsOnNewLine(n, true)
	assert.True(t, f.table.StartsOnNewLine(n))
	f.table.SetStartsOnNewLine(n, false)
	assert.Equal(t, Generated, f.table.Flags(n))
}

func TestRangesDefaultToNodeSpan(t *testing.T) {
	f := newFixture(t)
	n := ast.ExprNode(f.prop)
	own := source.Span{File: 1, Start: 0, End: 3}
	assert.Equal(t, own, f.table.SourceMapRange(n))
	assert.Equal(t, own, f.table.CommentRange(n))
	assert.Nil(t, f.table.Get(n), "reading ranges must not allocate")

	over := source.Span{File: 1, Start: 10, End: 12}
	f.table.SetSourceMapRange(n, over)
	f.table.SetCommentRange(n, source.NoSpan)
	assert.Equal(t, over, f.table.SourceMapRange(n))
	assert.Equal(t, source.NoSpan, f.table.CommentRange(n))

	_, ok := f.table.TokenSourceMapRange(n, TokenDot)
	assert.False(t, ok)
	f.table.SetTokenSourceMapRange(n, TokenDot, source.Span{File: 1, Start: 1, End: 2})
	sp, ok := f.table.TokenSourceMapRange(n, TokenDot)
	assert.True(t, ok)
	assert.Equal(t, uint32(1), sp.Start)
}

func TestConstantValueOnlyOnAccess(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.table.SetConstantValue(ast.ExprNode(f.prop), NumberConstant(3)))
	c, ok := f.table.ConstantValue(ast.ExprNode(f.prop))
	require.True(t, ok)
	assert.Equal(t, "3", c.JS())
	assert.Equal(t, `"x"`, StringConstant("x").JS())

	assert.Error(t, f.table.SetConstantValue(ast.ExprNode(f.ident), NumberConstant(1)))
	_, ok = f.table.ConstantValue(ast.ExprNode(f.ident))
	assert.False(t, ok)
}

func TestSyntheticComments(t *testing.T) {
	f := newFixture(t)
	from, to := ast.ExprNode(f.ident), ast.ExprNode(f.prop)
	f.table.AddLeadingComment(from, SingleLineComment, " one", true)
	f.table.AddLeadingComment(from, MultiLineComment, " two ", false)
	f.table.AddTrailingComment(from, MultiLineComment, " three ", false)

	assert.Len(t, f.table.LeadingComments(from), 2)
	assert.Equal(t, " one", f.table.LeadingComments(from)[0].Text)

	f.table.MoveSyntheticComments(to, from)
	assert.Empty(t, f.table.LeadingComments(from))
	assert.Empty(t, f.table.TrailingComments(from))
	assert.Len(t, f.table.LeadingComments(to), 2)
	assert.Len(t, f.table.TrailingComments(to), 1)

	f.table.RemoveAllComments(to)
	assert.Empty(t, f.table.LeadingComments(to))
	assert.True(t, f.table.Flags(to).Has(NoComments))
}

func TestHelperList(t *testing.T) {
	f := newFixture(t)
	n := ast.ExprNode(f.prop)
	f.table.AddHelper(n, helpers.Read)
	f.table.AddHelpers(n, []helpers.ID{helpers.Spread, helpers.Read, helpers.Values})
	assert.Equal(t, []helpers.ID{helpers.Read, helpers.Spread, helpers.Values}, f.table.Helpers(n))

	assert.True(t, f.table.RemoveHelper(n, helpers.Spread))
	assert.False(t, f.table.RemoveHelper(n, helpers.Spread))
	assert.False(t, f.table.RemoveHelper(ast.ExprNode(f.ident), helpers.Read))
	assert.Equal(t, []helpers.ID{helpers.Read, helpers.Values}, f.table.Helpers(n))
}

func TestMoveHelpersCompactsSource(t *testing.T) {
	f := newFixture(t)
	src, dst := ast.ExprNode(f.prop), ast.FileNode(f.file)
	f.table.AddHelpers(src, []helpers.ID{helpers.Assign, helpers.Read, helpers.Values, helpers.Spread})
	f.table.AddHelper(dst, helpers.Values)

	f.table.MoveHelpers(src, dst, func(id helpers.ID) bool {
		return id == helpers.Read || id == helpers.Values
	})

	assert.Equal(t, []helpers.ID{helpers.Assign, helpers.Spread}, f.table.Helpers(src))
	assert.Equal(t, []helpers.ID{helpers.Values, helpers.Read}, f.table.Helpers(dst))

	f.table.MoveHelpers(ast.ExprNode(f.ident), dst, func(helpers.ID) bool { return true })
	assert.Nil(t, f.table.Get(ast.ExprNode(f.ident)))
}
