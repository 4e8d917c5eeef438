package source

import (
	"testing"
)

func TestFileSet_ReservesSyntheticSlot(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.js", []byte("x"))
	if id == 0 {
		t.Fatal("first real file must not get id 0")
	}
	if fs.Get(0).Flags&FileNoText == 0 {
		t.Error("synthetic slot must be marked FileNoText")
	}
}

func TestFileSet_Resolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.js", []byte("let a;\nfoo?.bar;\n"))

	start, end := fs.Resolve(Span{File: id, Start: 7, End: 15})
	if start != (LineCol{Line: 2, Col: 1}) {
		t.Errorf("start = %+v", start)
	}
	if end != (LineCol{Line: 2, Col: 9}) {
		t.Errorf("end = %+v", end)
	}

	f := fs.Get(id)
	if got := f.Line(2); got != "foo?.bar;" {
		t.Errorf("Line(2) = %q", got)
	}
	if got := f.Text(Span{File: id, Start: 7, End: 10}); got != "foo" {
		t.Errorf("Text = %q", got)
	}
}

func TestFileSet_NormalizesCRLF(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("crlf.js", []byte("a\r\nb"))
	f := fs.Get(id)
	if string(f.Content) != "a\nb" {
		t.Errorf("content = %q", f.Content)
	}
	if f.Flags&FileNormalizedCRLF == 0 {
		t.Error("expected FileNormalizedCRLF")
	}
}

func TestFileSet_NoText(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("tree.jspack", nil, FileVirtual)
	f := fs.Get(id)
	if f.Flags&FileNoText == 0 {
		t.Fatal("nil content must set FileNoText")
	}
	if f.Line(1) != "" {
		t.Error("file without text must render no lines")
	}
	if got, ok := fs.Lookup("./tree.jspack"); !ok || got != id {
		t.Errorf("Lookup = %d, %v", got, ok)
	}
}

func TestInterner(t *testing.T) {
	in := NewInterner()
	a := in.Intern("foo")
	b := in.Intern("foo")
	if a != b {
		t.Fatalf("same text interned twice: %d vs %d", a, b)
	}
	if s := in.MustLookup(a); s != "foo" {
		t.Errorf("MustLookup = %q", s)
	}
	if !in.Contains("foo") || in.Contains("bar") {
		t.Error("Contains mismatch")
	}
	if _, ok := in.Lookup(StringID(99)); ok {
		t.Error("unknown id must not resolve")
	}
}
