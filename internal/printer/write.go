package printer

// writer accumulates output and tracks indentation and line state.
type writer struct {
	buf         []byte
	indent      string
	indentLevel int
	atLineStart bool
}

func newWriter(indent string, sizeHint int) *writer {
	return &writer{
		buf:         make([]byte, 0, sizeHint),
		indent:      indent,
		atLineStart: true,
	}
}

func (w *writer) Bytes() []byte {
	return w.buf
}

func (w *writer) Len() int {
	return len(w.buf)
}

func (w *writer) writeIndent() {
	if !w.atLineStart {
		return
	}
	for range w.indentLevel {
		w.buf = append(w.buf, w.indent...)
	}
	w.atLineStart = false
}

// WriteString writes s, indenting first when at the start of a line.
// Embedded newlines in s are copied as is.
func (w *writer) WriteString(s string) {
	if s == "" {
		return
	}
	w.writeIndent()
	w.buf = append(w.buf, s...)
	w.atLineStart = s[len(s)-1] == '\n'
}

func (w *writer) WriteByte(b byte) error {
	w.writeIndent()
	w.buf = append(w.buf, b)
	w.atLineStart = b == '\n'
	return nil
}

// WriteLines writes a multi-line block, indenting every line at the
// current level.
func (w *writer) WriteLines(text string) {
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			w.WriteString(text[start:i])
			w.Newline()
			start = i + 1
		}
	}
	if start < len(text) {
		w.WriteString(text[start:])
	}
}

// Space writes a single space unless the output already ends with whitespace.
func (w *writer) Space() {
	if len(w.buf) == 0 {
		return
	}
	switch w.buf[len(w.buf)-1] {
	case ' ', '\n', '\t':
		return
	}
	w.buf = append(w.buf, ' ')
}

// Newline terminates the current line. Repeated calls do not produce
// empty lines.
func (w *writer) Newline() {
	if len(w.buf) == 0 || w.buf[len(w.buf)-1] != '\n' {
		w.buf = append(w.buf, '\n')
	}
	w.atLineStart = true
}

func (w *writer) IndentPush() {
	w.indentLevel++
}

func (w *writer) IndentPop() {
	if w.indentLevel > 0 {
		w.indentLevel--
	}
}

// lastByte returns the last written byte or 0.
func (w *writer) lastByte() byte {
	if len(w.buf) == 0 {
		return 0
	}
	return w.buf[len(w.buf)-1]
}
