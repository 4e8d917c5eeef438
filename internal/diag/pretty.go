package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"

	"downlevel/internal/source"
)

// PrettyOptions controls FormatPretty.
type PrettyOptions struct {
	Color bool
	// TabWidth expands tabs in snippets; 0 means 4.
	TabWidth int
}

// FormatPretty writes diagnostics with a source snippet and a caret line
// under the primary span. Snippets are NFC-normalised so that the caret
// lines up with what a terminal displays.
func FormatPretty(w io.Writer, diags []Diagnostic, fs *source.FileSet, opts PrettyOptions) error {
	if opts.TabWidth <= 0 {
		opts.TabWidth = 4
	}
	pal := newPalette(opts.Color)
	for i := range diags {
		if err := writePretty(w, &diags[i], fs, opts, pal); err != nil {
			return err
		}
	}
	return nil
}

type palette struct {
	err, warn, info, note, code, caret, path *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:   mk(color.FgRed, color.Bold),
		warn:  mk(color.FgYellow, color.Bold),
		info:  mk(color.FgBlue, color.Bold),
		note:  mk(color.FgCyan),
		code:  mk(color.Faint),
		caret: mk(color.FgGreen, color.Bold),
		path:  mk(color.Bold),
	}
}

func (p palette) severity(sev Severity) *color.Color {
	switch sev {
	case SevError:
		return p.err
	case SevWarning:
		return p.warn
	default:
		return p.info
	}
}

func writePretty(w io.Writer, d *Diagnostic, fs *source.FileSet, opts PrettyOptions, pal palette) error {
	loc := resolveSpan(fs, d.Primary, d.Path)
	header := fmt.Sprintf("%s %s: %s\n",
		pal.severity(d.Severity).Sprint(severityLabel(d.Severity)),
		pal.code.Sprint(d.Code.ID()),
		d.Message)
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	where := loc.Path
	if loc.Line > 0 {
		where = fmt.Sprintf("%s:%d:%d", loc.Path, loc.Line, loc.Column)
	}
	if where != "" {
		if _, err := fmt.Fprintf(w, "  --> %s\n", pal.path.Sprint(where)); err != nil {
			return err
		}
	}
	if snippet, caret, ok := snippetFor(fs, d.Primary, opts.TabWidth); ok {
		gutter := fmt.Sprintf("%d", loc.Line)
		pad := strings.Repeat(" ", len(gutter))
		if _, err := fmt.Fprintf(w, "%s |\n%s | %s\n%s | %s\n", pad, gutter, snippet, pad, pal.caret.Sprint(caret)); err != nil {
			return err
		}
	}
	for _, n := range d.Notes {
		nloc := resolveSpan(fs, n.Span, d.Path)
		suffix := ""
		if nloc.Line > 0 {
			suffix = fmt.Sprintf(" (%s:%d:%d)", nloc.Path, nloc.Line, nloc.Column)
		}
		if _, err := fmt.Fprintf(w, "  = %s %s%s\n", pal.note.Sprint("note:"), n.Msg, suffix); err != nil {
			return err
		}
	}
	return nil
}

// snippetFor returns the line of span's start and a caret marker aligned by
// display width. Multi-line spans are marked up to the end of the first line.
func snippetFor(fs *source.FileSet, span source.Span, tabWidth int) (line, caret string, ok bool) {
	if fs == nil || span.IsZero() {
		return "", "", false
	}
	file := fs.Get(span.File)
	if file == nil {
		return "", "", false
	}
	start, end := fs.Resolve(span)
	raw := file.Line(start.Line)
	if raw == "" {
		return "", "", false
	}
	tab := strings.Repeat(" ", tabWidth)
	prefixBytes := min(int(start.Col)-1, len(raw))
	endCol := len(raw)
	if end.Line == start.Line {
		endCol = min(int(end.Col)-1, len(raw))
	}
	if endCol < prefixBytes {
		endCol = prefixBytes
	}
	prefix := norm.NFC.String(strings.ReplaceAll(raw[:prefixBytes], "\t", tab))
	marked := norm.NFC.String(strings.ReplaceAll(raw[prefixBytes:endCol], "\t", tab))
	line = norm.NFC.String(strings.ReplaceAll(raw, "\t", tab))

	width := max(runewidth.StringWidth(marked), 1)
	caret = strings.Repeat(" ", runewidth.StringWidth(prefix)) + strings.Repeat("^", width)
	return line, caret, true
}
