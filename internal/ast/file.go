package ast

import (
	"downlevel/internal/source"
)

type File struct {
	Span source.Span
	// Path is the logical file name used for output naming and diagnostics.
	Path  string
	Stmts []StmtID
	// IsDeclaration marks ambient declaration files; transformations leave them untouched.
	IsDeclaration bool
	Transform     TransformFlags
}

type Files struct {
	Arena *Arena[File]
	// bySource resolves a span's source file to the tree file that owns it.
	bySource map[source.FileID]FileID
}

func NewFiles(capHint uint) *Files {
	return &Files{
		Arena:    NewArena[File](capHint),
		bySource: make(map[source.FileID]FileID),
	}
}

func (f *Files) New(sp source.Span, path string) FileID {
	id := FileID(f.Arena.Allocate(File{
		Span:  sp,
		Path:  path,
		Stmts: make([]StmtID, 0),
	}))
	if !sp.IsZero() {
		f.bySource[sp.File] = id
	}
	return id
}

func (f *Files) Get(id FileID) *File {
	return f.Arena.Get(uint32(id))
}

// BySource returns the tree file registered for a source file.
func (f *Files) BySource(src source.FileID) (FileID, bool) {
	id, ok := f.bySource[src]
	return id, ok
}
