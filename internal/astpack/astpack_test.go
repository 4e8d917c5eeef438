package astpack

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"downlevel/internal/ast"
	"downlevel/internal/diag"
	"downlevel/internal/source"
)

// a?.b.c(1) ?? "x"
const chainDoc = `{
  "version": 1,
  "path": "src/a.js",
  "source": "a?.b.c(1) ?? \"x\";",
  "body": [
    {"kind": "expression", "start": 0, "end": 17, "children": [
      {"kind": "binary", "op": "??", "start": 0, "end": 16, "children": [
        {"kind": "call", "chain": true, "start": 0, "end": 9, "children": [
          {"kind": "member", "name": "c", "chain": true, "start": 0, "end": 6, "children": [
            {"kind": "member", "name": "b", "optional": true, "start": 0, "end": 4, "children": [
              {"kind": "ident", "name": "a", "start": 0, "end": 1}
            ]}
          ]},
          {"kind": "number", "value": "1", "start": 7, "end": 8}
        ]},
        {"kind": "string", "value": "x", "start": 13, "end": 16}
      ]}
    ]}
  ]
}`

func build(t *testing.T, data []byte, format Format, opts Options) (*ast.Builder, *source.FileSet, ast.FileID, error) {
	t.Helper()
	b := ast.NewBuilder(ast.Hints{})
	fs := source.NewFileSet()
	file, err := Decode(b, fs, "in"+format.Ext(), data, format, opts)
	return b, fs, file, err
}

func packErr(t *testing.T, err error) *Error {
	t.Helper()
	var pe *Error
	require.True(t, errors.As(err, &pe), "error %v is not a document error", err)
	return pe
}

func TestDecodeBuildsChain(t *testing.T) {
	b, fs, file, err := build(t, []byte(chainDoc), FormatJSON, Options{})
	require.NoError(t, err)

	f := b.Files.Get(file)
	assert.Equal(t, "src/a.js", f.Path)
	assert.Equal(t, ast.ContainsES2020, f.Transform&ast.ContainsES2020)
	require.Len(t, f.Stmts, 1)

	st, _ := b.Stmts.Expr(f.Stmts[0])
	bin, ok := b.Exprs.Binary(st.Expr)
	require.True(t, ok)
	assert.Equal(t, ast.ExprBinaryNullishCoalescing, bin.Op)

	call := b.Exprs.MustGet(bin.Left)
	assert.True(t, call.IsOptionalChain())
	assert.False(t, call.HasQuestionDot())
	cd, _ := b.Exprs.Call(bin.Left)
	c, _ := b.Exprs.Property(cd.Callee)
	root := b.Exprs.MustGet(c.Target)
	assert.True(t, root.HasQuestionDot())

	sf := fs.Get(f.Span.File)
	assert.Equal(t, "a?.b", sf.Text(root.Span))
	assert.Equal(t, uint32(17), f.Span.End)
}

func TestMsgpackRoundTrip(t *testing.T) {
	b, _, file, err := build(t, []byte(chainDoc), FormatJSON, Options{})
	require.NoError(t, err)
	doc, err := Encode(b, file, nil)
	require.NoError(t, err)
	doc.Source = "a?.b.c(1) ?? \"x\";"

	packed, err := Marshal(doc, FormatMsgpack)
	require.NoError(t, err)
	again, err := Unmarshal("in.jspack", packed, FormatMsgpack)
	require.NoError(t, err)
	assert.Equal(t, doc, again)

	b2, _, file2, err := build(t, packed, FormatMsgpack, Options{})
	require.NoError(t, err)
	doc2, err := Encode(b2, file2, nil)
	require.NoError(t, err)
	doc2.Source = doc.Source
	assert.Equal(t, doc, doc2)
}

func TestEncodeStatements(t *testing.T) {
	doc := &Document{Version: Version, Path: "f.js", Declaration: true, Body: []*Node{
		{Kind: "func", Name: "g", Params: []string{"x"}, Kids: []*Node{
			{Kind: "block", Kids: []*Node{
				{Kind: "var", Op: "let", Kids: []*Node{{Kind: "decl", Name: "y"}}},
				{Kind: "if", Kids: []*Node{
					{Kind: "ident", Name: "x"},
					{Kind: "return", Kids: []*Node{{Kind: "object", Kids: []*Node{
						{Kind: "prop", Name: "k", Kids: []*Node{{Kind: "array", Kids: []*Node{{Kind: "null"}}}}},
					}}}},
					{Kind: "empty"},
				}},
				{Kind: "return"},
			}},
		}},
		{Kind: "expression", Kids: []*Node{{Kind: "function", Arrow: true, Async: true, Kids: []*Node{{Kind: "block"}}}}},
	}}
	data, err := Marshal(doc, FormatJSON)
	require.NoError(t, err)
	b, _, file, err := build(t, data, FormatJSON, Options{})
	require.NoError(t, err)
	assert.True(t, b.Files.Get(file).IsDeclaration)

	out, err := Encode(b, file, nil)
	require.NoError(t, err)
	assert.Equal(t, doc, out)
}

func TestDecodeRejectsDeepNesting(t *testing.T) {
	// !!!!...x nested 64 deep
	var sb strings.Builder
	sb.WriteString(`{"version":1,"path":"deep.js","body":[{"kind":"expression","children":[`)
	for range 64 {
		sb.WriteString(`{"kind":"unary","op":"!","children":[`)
	}
	sb.WriteString(`{"kind":"ident","name":"x"}`)
	sb.WriteString(strings.Repeat("]}", 64))
	sb.WriteString(`]}]}`)

	_, _, _, err := build(t, []byte(sb.String()), FormatJSON, Options{MaxDepth: 32})
	assert.Equal(t, diag.PackTooDeep, packErr(t, err).Code)

	_, _, _, err = build(t, []byte(sb.String()), FormatJSON, Options{})
	assert.NoError(t, err)
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		code diag.Code
	}{
		{"garbage", `{"version":`, diag.PackBadFormat},
		{"unknown field", `{"version":1,"path":"a.js","body":[],"extra":1}`, diag.PackBadFormat},
		{"version", `{"version":2,"path":"a.js","body":[]}`, diag.PackVersionMismatch},
		{"unknown statement", `{"version":1,"body":[{"kind":"while"}]}`, diag.PackUnknownKind},
		{"unknown expression", `{"version":1,"body":[{"kind":"expression","children":[{"kind":"yield"}]}]}`, diag.PackUnknownKind},
		{"unknown operator", `{"version":1,"body":[{"kind":"expression","children":[{"kind":"binary","op":"**","children":[{"kind":"this"},{"kind":"this"}]}]}]}`, diag.PackUnknownKind},
		{"arity", `{"version":1,"body":[{"kind":"expression","children":[{"kind":"index","children":[{"kind":"this"}]}]}]}`, diag.PackBadFormat},
		{"chain on binary", `{"version":1,"body":[{"kind":"expression","children":[{"kind":"binary","op":"+","optional":true,"children":[{"kind":"this"},{"kind":"this"}]}]}]}`, diag.PackBadFormat},
		{"inverted span", `{"version":1,"body":[{"kind":"empty","start":4,"end":2}]}`, diag.PackBadFormat},
		{"span past text", `{"version":1,"source":";","body":[{"kind":"empty","start":0,"end":9}]}`, diag.PackDanglingRef},
		{"null child", `{"version":1,"body":[{"kind":"expression","children":[null]}]}`, diag.PackBadFormat},
		{"body not block", `{"version":1,"body":[{"kind":"func","name":"f","children":[{"kind":"empty"}]}]}`, diag.PackBadFormat},
		{"anonymous declaration", `{"version":1,"body":[{"kind":"var","op":"var","children":[{"kind":"decl"}]}]}`, diag.PackBadFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := build(t, []byte(tc.doc), FormatJSON, Options{})
			require.Error(t, err)
			pe := packErr(t, err)
			assert.Equal(t, tc.code, pe.Code, pe.Error())
			assert.Equal(t, tc.code, pe.Diagnostic().Code)
		})
	}
}

func TestFormatForPath(t *testing.T) {
	f, ok := FormatForPath("dir/A.JSPACK")
	assert.True(t, ok)
	assert.Equal(t, FormatMsgpack, f)
	f, ok = FormatForPath("a.json")
	assert.True(t, ok)
	assert.Equal(t, FormatJSON, f)
	_, ok = FormatForPath("a.js")
	assert.False(t, ok)
}
