package diag

import (
	"bytes"
	"strings"
	"testing"

	"downlevel/internal/source"
)

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("src/sample.js", []byte("a\nb?.c\n"))

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     LowerDepthExceeded,
			Message:  "too deep",
			Primary:  source.Span{File: file, Start: 2, End: 6},
		},
		{
			Severity: SevError,
			Code:     DefectMalformedChain,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: file, Start: 0, End: 1},
			Notes:    []Note{{Span: source.Span{File: file, Start: 3, End: 5}, Msg: "chain starts here"}},
		},
		NewError(PackBadFormat, source.NoSpan, "bad header").WithPath("./broken.jspack"),
	}

	want := "error PCK1002 broken.jspack:0:0 bad header\n" +
		"error DEF9001 src/sample.js:1:1 first line second\n" +
		"warning LOW2001 src/sample.js:2:1 too deep\n" +
		"note DEF9001 src/sample.js:2:2 chain starts here"
	if got := FormatShort(diags, fs, true); got != want {
		t.Fatalf("unexpected output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestFormatPrettyCaretUsesDisplayWidth(t *testing.T) {
	fs := source.NewFileSet()
	content := "let 名前 = a?.b;\n"
	file := fs.AddVirtual("wide.js", []byte(content))
	start := uint32(strings.Index(content, "a?.b"))
	d := NewError(DefectUnexpectedNode, source.Span{File: file, Start: start, End: start + 4}, "unexpected")

	var buf bytes.Buffer
	if err := FormatPretty(&buf, []Diagnostic{d}, fs, PrettyOptions{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "--> wide.js:1:") {
		t.Fatalf("missing location:\n%s", out)
	}
	// "let 名前 = " is 11 columns wide: two wide runes count double.
	if !strings.Contains(out, "  | "+strings.Repeat(" ", 11)+"^^^^\n") {
		t.Fatalf("caret misaligned:\n%s", out)
	}
}

func TestBagLimitSortAndDedup(t *testing.T) {
	b := NewBag(3)
	r := BagReporter{Bag: b}
	ReportError(r, DefectInternal, source.Span{File: 1, Start: 5, End: 6}, "x").Emit()
	ReportWarning(r, LowerDepthExceeded, source.Span{File: 1, Start: 1, End: 2}, "y").Emit()
	ReportError(r, DefectInternal, source.Span{File: 1, Start: 5, End: 6}, "x").Emit()
	if b.Add(NewError(DefectInternal, source.NoSpan, "over limit")) {
		t.Fatal("bag must reject diagnostics over its limit")
	}

	b.Sort()
	if b.Items()[0].Code != LowerDepthExceeded {
		t.Fatalf("sort: first = %v", b.Items()[0].Code)
	}
	b.Dedup()
	if b.Len() != 2 || b.Errors() != 1 || !b.HasWarnings() {
		t.Fatalf("dedup: len=%d errors=%d", b.Len(), b.Errors())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	b := NewBag(10)
	rb := ReportError(NewLockedReporter(BagReporter{Bag: b}), DefectMalformedChain, source.NoSpan, "bad").
		WithPath("a.json").
		WithNote(source.NoSpan, "note")
	rb.Emit()
	rb.Emit()
	if b.Len() != 1 || len(b.Items()[0].Notes) != 1 {
		t.Fatalf("got %d diagnostics", b.Len())
	}
	if b.Items()[0].Path != "a.json" {
		t.Fatalf("path lost: %q", b.Items()[0].Path)
	}
}

func TestCodeIDs(t *testing.T) {
	cases := map[Code]string{
		PackBadFormat:        "PCK1002",
		LowerDepthExceeded:   "LOW2001",
		IOLoadFileError:      "IO4001",
		DefectMalformedChain: "DEF9001",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d: got %s want %s", code, got, want)
		}
	}
	if !DefectUnresolvedNode.IsDefect() || LowerDepthExceeded.IsDefect() {
		t.Error("IsDefect misclassifies codes")
	}
}

func TestLockedReporterKeepsPath(t *testing.T) {
	b := NewBag(10)
	r := NewLockedReporter(BagReporter{Bag: b})
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			r.Add(NewError(PackBadFormat, source.NoSpan, "bad").WithPath("a.json"))
			done <- struct{}{}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
	if b.Len() != 4 || b.Items()[0].Path != "a.json" {
		t.Fatalf("got %d diagnostics, path %q", b.Len(), b.Items()[0].Path)
	}

	nop := NewLockedReporter(NopReporter{})
	if !nop.Add(NewError(PackBadFormat, source.NoSpan, "dropped")) {
		t.Fatal("locked reporter without Adder must fall back to Report")
	}
}
