package emitnode

import (
	"fmt"

	"downlevel/internal/ast"
	"downlevel/internal/helpers"
	"downlevel/internal/source"
)

// Locator answers the structural questions the table needs about a node.
// *ast.Builder implements it.
type Locator interface {
	FileOf(n ast.Node) (ast.FileID, bool)
	IsSynthesized(n ast.Node) bool
	IsAccess(n ast.Node) bool
	Span(n ast.Node) source.Span
}

// Meta is the metadata of one node. Values returned by Table.Get are
// read-only; mutate through Table methods.
type Meta struct {
	Flags          Flags
	SourceMapRange *source.Span
	CommentRange   *source.Span
	TokenRanges    map[Token]source.Span
	Leading        []Comment
	Trailing       []Comment
	Helpers        []helpers.ID
	Constant       *Constant
}

// UnresolvedNodeError is raised when a parse-tree node cannot be attributed
// to any file of the tree. It indicates a broken builder, never bad input.
type UnresolvedNodeError struct {
	Node ast.Node
}

func (e *UnresolvedNodeError) Error() string {
	return fmt.Sprintf("emitnode: parse-tree node %s has no owning file", e.Node)
}

// Table is the side table of one compilation unit. It is not safe for
// concurrent use.
type Table struct {
	loc   Locator
	metas map[ast.Node]*Meta
	// files tracks annotated parse-tree nodes for bulk release.
	files map[ast.FileID][]ast.Node
}

func NewTable(loc Locator) *Table {
	return &Table{
		loc:   loc,
		metas: make(map[ast.Node]*Meta),
		files: make(map[ast.FileID][]ast.Node),
	}
}

// Get returns the metadata of n or nil.
func (t *Table) Get(n ast.Node) *Meta {
	return t.metas[n]
}

// GetOrCreate returns the metadata of n, allocating it on first use.
// Parse-tree nodes are registered in the annotation list of their file;
// allocating for a file node seeds that file's list.
func (t *Table) GetOrCreate(n ast.Node) *Meta {
	if m := t.metas[n]; m != nil {
		return m
	}
	m := &Meta{}
	if n.Kind == ast.NodeFile {
		file := ast.FileID(n.ID)
		t.files[file] = append([]ast.Node{n}, t.files[file]...)
	} else if !t.loc.IsSynthesized(n) {
		file, ok := t.loc.FileOf(n)
		if !ok {
			panic(&UnresolvedNodeError{Node: n})
		}
		t.files[file] = append(t.files[file], n)
	}
	t.metas[n] = m
	return m
}

// DisposeAll drops the metadata of every tracked node of file.
func (t *Table) DisposeAll(file ast.FileID) {
	for _, n := range t.files[file] {
		delete(t.metas, n)
	}
	delete(t.files, file)
}

// Reset drops everything, synthesized nodes included.
func (t *Table) Reset() {
	clear(t.metas)
	clear(t.files)
}

// Len returns the number of annotated nodes.
func (t *Table) Len() int {
	return len(t.metas)
}

// Annotated returns the tracked parse-tree nodes of file in registration order.
func (t *Table) Annotated(file ast.FileID) []ast.Node {
	return t.files[file]
}

func (t *Table) SetFlags(n ast.Node, flags Flags) {
	t.GetOrCreate(n).Flags = flags
}

func (t *Table) AddFlags(n ast.Node, flags Flags) {
	t.GetOrCreate(n).Flags |= flags
}

func (t *Table) Flags(n ast.Node) Flags {
	if m := t.metas[n]; m != nil {
		return m.Flags
	}
	return 0
}

func (t *Table) StartsOnNewLine(n ast.Node) bool {
	return t.Flags(n)&StartOnNewLine != 0
}

func (t *Table) SetStartsOnNewLine(n ast.Node, on bool) {
	m := t.GetOrCreate(n)
	if on {
		m.Flags |= StartOnNewLine
	} else {
		m.Flags &^= StartOnNewLine
	}
}
