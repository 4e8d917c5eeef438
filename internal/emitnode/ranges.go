package emitnode

import (
	"downlevel/internal/ast"
	"downlevel/internal/source"
)

// Token identifies a punctuation or keyword token of a node for per-token
// source mapping.
type Token uint8

const (
	TokenDot Token = iota + 1
	TokenQuestionDot
	TokenOpenBracket
	TokenCloseBracket
	TokenOpenParen
	TokenCloseParen
	TokenQuestion
	TokenColon
	TokenQuestionQuestion
	TokenDelete
)

// SourceMapRange returns the override or the node's own span.
func (t *Table) SourceMapRange(n ast.Node) source.Span {
	if m := t.metas[n]; m != nil && m.SourceMapRange != nil {
		return *m.SourceMapRange
	}
	return t.loc.Span(n)
}

func (t *Table) SetSourceMapRange(n ast.Node, sp source.Span) {
	t.GetOrCreate(n).SourceMapRange = &sp
}

// CommentRange returns the override or the node's own span.
func (t *Table) CommentRange(n ast.Node) source.Span {
	if m := t.metas[n]; m != nil && m.CommentRange != nil {
		return *m.CommentRange
	}
	return t.loc.Span(n)
}

func (t *Table) SetCommentRange(n ast.Node, sp source.Span) {
	t.GetOrCreate(n).CommentRange = &sp
}

// TokenSourceMapRange returns the range recorded for tok, if any.
func (t *Table) TokenSourceMapRange(n ast.Node, tok Token) (source.Span, bool) {
	m := t.metas[n]
	if m == nil || m.TokenRanges == nil {
		return source.NoSpan, false
	}
	sp, ok := m.TokenRanges[tok]
	return sp, ok
}

func (t *Table) SetTokenSourceMapRange(n ast.Node, tok Token, sp source.Span) {
	m := t.GetOrCreate(n)
	if m.TokenRanges == nil {
		m.TokenRanges = make(map[Token]source.Span, 2)
	}
	m.TokenRanges[tok] = sp
}
