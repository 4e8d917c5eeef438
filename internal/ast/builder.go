package ast

import (
	"downlevel/internal/source"
)

type Hints struct{ Files, Stmts, Exprs uint }

// Builder owns every arena of one compilation unit. It is not safe for
// concurrent use; parallel drivers give each file its own Builder.
type Builder struct {
	Files   *Files
	Stmts   *Stmts
	Exprs   *Exprs
	Strings *source.Interner
}

func NewBuilder(hints Hints) *Builder {
	if hints.Files == 0 {
		hints.Files = 1 << 2
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 7
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	b := &Builder{
		Files:   NewFiles(hints.Files),
		Stmts:   NewStmts(hints.Stmts),
		Exprs:   NewExprs(hints.Exprs),
		Strings: source.NewInterner(),
	}
	b.Stmts.exprs = b.Exprs
	b.Exprs.stmts = b.Stmts
	return b
}

func (b *Builder) NewFile(sp source.Span, path string) FileID {
	return b.Files.New(sp, path)
}

// PushStmt appends a top-level statement while the file is being built.
func (b *Builder) PushStmt(file FileID, stmt StmtID) {
	f := b.Files.Get(file)
	f.Stmts = append(f.Stmts, stmt)
	if st := b.Stmts.Get(stmt); st != nil {
		f.Transform |= st.Transform
	}
}

// Synthesizing toggles NodeSynthesized on every node allocated afterwards.
func (b *Builder) Synthesizing(on bool) {
	b.Exprs.SetSynthesizing(on)
	b.Stmts.SetSynthesizing(on)
}

func (b *Builder) Intern(s string) source.StringID {
	return b.Strings.Intern(s)
}

// Name returns the interned text for id.
func (b *Builder) Name(id source.StringID) string {
	s, _ := b.Strings.Lookup(id)
	return s
}

// Span returns the source span of any node, NoSpan for unknown nodes.
func (b *Builder) Span(n Node) source.Span {
	switch n.Kind {
	case NodeFile:
		if f := b.Files.Get(FileID(n.ID)); f != nil {
			return f.Span
		}
	case NodeStmt:
		if st := b.Stmts.Get(StmtID(n.ID)); st != nil {
			return st.Span
		}
	case NodeExpr:
		if e := b.Exprs.Get(ExprID(n.ID)); e != nil {
			return e.Span
		}
	}
	return source.NoSpan
}

// IsSynthesized reports whether n was created by a transformation.
// Files are always parse-tree nodes.
func (b *Builder) IsSynthesized(n Node) bool {
	switch n.Kind {
	case NodeStmt:
		if st := b.Stmts.Get(StmtID(n.ID)); st != nil {
			return st.Flags&NodeSynthesized != 0
		}
	case NodeExpr:
		if e := b.Exprs.Get(ExprID(n.ID)); e != nil {
			return e.Flags&NodeSynthesized != 0
		}
	}
	return false
}

// FileOf resolves the tree file a parse-tree node belongs to.
func (b *Builder) FileOf(n Node) (FileID, bool) {
	if n.Kind == NodeFile {
		return FileID(n.ID), b.Files.Get(FileID(n.ID)) != nil
	}
	sp := b.Span(n)
	if sp.IsZero() {
		return NoFileID, false
	}
	return b.Files.BySource(sp.File)
}

// ParseTreeNode follows Original links back to the parse tree.
func (b *Builder) ParseTreeNode(id ExprID) ExprID {
	for {
		e := b.Exprs.Get(id)
		if e == nil || e.Flags&NodeSynthesized == 0 {
			return id
		}
		if !e.Original.IsValid() {
			return NoExprID
		}
		id = e.Original
	}
}

// IsAccess reports whether n is a property or element access.
func (b *Builder) IsAccess(n Node) bool {
	if n.Kind != NodeExpr {
		return false
	}
	switch b.Exprs.Kind(ExprID(n.ID)) {
	case ExprProperty, ExprIndex:
		return true
	}
	return false
}
