package emitnode

import "downlevel/internal/ast"

type CommentKind uint8

const (
	SingleLineComment CommentKind = iota + 1
	MultiLineComment
)

// Comment is a synthetic comment emitted independently of parsed comments.
type Comment struct {
	Kind               CommentKind
	Text               string
	HasTrailingNewLine bool
}

func (t *Table) LeadingComments(n ast.Node) []Comment {
	if m := t.metas[n]; m != nil {
		return m.Leading
	}
	return nil
}

func (t *Table) TrailingComments(n ast.Node) []Comment {
	if m := t.metas[n]; m != nil {
		return m.Trailing
	}
	return nil
}

func (t *Table) SetLeadingComments(n ast.Node, comments []Comment) {
	t.GetOrCreate(n).Leading = comments
}

func (t *Table) SetTrailingComments(n ast.Node, comments []Comment) {
	t.GetOrCreate(n).Trailing = comments
}

func (t *Table) AddLeadingComment(n ast.Node, kind CommentKind, text string, trailingNewLine bool) {
	m := t.GetOrCreate(n)
	m.Leading = append(m.Leading, Comment{Kind: kind, Text: text, HasTrailingNewLine: trailingNewLine})
}

func (t *Table) AddTrailingComment(n ast.Node, kind CommentKind, text string, trailingNewLine bool) {
	m := t.GetOrCreate(n)
	m.Trailing = append(m.Trailing, Comment{Kind: kind, Text: text, HasTrailingNewLine: trailingNewLine})
}

// MoveSyntheticComments replaces the synthetic comments of target with those
// of from and clears them on from.
func (t *Table) MoveSyntheticComments(target, from ast.Node) {
	t.SetLeadingComments(target, t.LeadingComments(from))
	t.SetTrailingComments(target, t.TrailingComments(from))
	m := t.GetOrCreate(from)
	m.Leading = nil
	m.Trailing = nil
}

// RemoveAllComments sets NoComments and drops synthetic comments.
func (t *Table) RemoveAllComments(n ast.Node) {
	m := t.GetOrCreate(n)
	m.Flags |= NoComments
	m.Leading = nil
	m.Trailing = nil
}
