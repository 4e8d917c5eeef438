package astpack

import (
	"path/filepath"
	"strings"
)

// Version is the document schema written by Encode and accepted by Build.
const Version = 1

// Document is one file's tree. Offsets in nodes refer to Source after
// CRLF normalisation; Source may be empty when the producer keeps no text.
type Document struct {
	Version     int     `msgpack:"version" json:"version"`
	Path        string  `msgpack:"path" json:"path"`
	Source      string  `msgpack:"source,omitempty" json:"source,omitempty"`
	Declaration bool    `msgpack:"declaration,omitempty" json:"declaration,omitempty"`
	Body        []*Node `msgpack:"body" json:"body"`
}

// Node is a statement or an expression. Kids are positional, their meaning
// depends on Kind:
//
//	member      [target]            Name is the property
//	index       [target, index]
//	call        [callee, args...]
//	binary      [left, right]       Op is the operator text
//	unary       [operand]           Op is delete|void|typeof|!|-|+
//	conditional [test, yes, no]
//	paren       [inner]
//	tagged      [tag]               Value is the raw template text
//	function    [body block]        Name, Params, Arrow, Async, Generator
//	object      [prop...]           prop: Name and [value]
//	array       [elem...]
//	expression  [expr]
//	var         [decl...]           Op is var|let|const; decl: Name and [init]
//	return      [] or [value]
//	block       [stmt...]
//	func        [body block]        Name, Params, Async, Generator
//	if          [cond, then] or [cond, then, else]
//
// Leaves are ident (Name), this, super, null, undefined, number (Value is
// the literal text), string (Value is the decoded string), true, false
// and empty.
type Node struct {
	Kind      string   `msgpack:"k" json:"kind"`
	Start     uint32   `msgpack:"s,omitempty" json:"start,omitempty"`
	End       uint32   `msgpack:"e,omitempty" json:"end,omitempty"`
	Name      string   `msgpack:"n,omitempty" json:"name,omitempty"`
	Value     string   `msgpack:"v,omitempty" json:"value,omitempty"`
	Op        string   `msgpack:"op,omitempty" json:"op,omitempty"`
	Optional  bool     `msgpack:"q,omitempty" json:"optional,omitempty"`
	Chain     bool     `msgpack:"c,omitempty" json:"chain,omitempty"`
	Params    []string `msgpack:"p,omitempty" json:"params,omitempty"`
	Arrow     bool     `msgpack:"arrow,omitempty" json:"arrow,omitempty"`
	Async     bool     `msgpack:"async,omitempty" json:"async,omitempty"`
	Generator bool     `msgpack:"gen,omitempty" json:"generator,omitempty"`
	Kids      []*Node  `msgpack:"x,omitempty" json:"children,omitempty"`
}

// Format is the document encoding.
type Format uint8

const (
	FormatMsgpack Format = iota + 1
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatMsgpack:
		return "msgpack"
	case FormatJSON:
		return "json"
	}
	return "unknown"
}

// Ext is the file extension used for f.
func (f Format) Ext() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".jspack"
}

// FormatForPath picks the format from the file extension.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jspack":
		return FormatMsgpack, true
	case ".json":
		return FormatJSON, true
	}
	return 0, false
}
