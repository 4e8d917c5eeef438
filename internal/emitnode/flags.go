package emitnode

import "strings"

// Flags are printer directives attached to a node.
type Flags uint16

const (
	// NoComments suppresses both parsed and synthetic comments.
	NoComments Flags = 1 << iota
	// NoSourceMap suppresses source-map entries for the node.
	NoSourceMap
	// HelperName marks the name node of a helper binding. The printer may
	// rename it file-uniquely; it is not a user identifier.
	HelperName
	// AdviseOnEmitNode asks the printer to consult the side table before emitting.
	AdviseOnEmitNode
	// AsyncFunctionBody marks the boundary of a lowered async body.
	AsyncFunctionBody
	// ReuseTempVariableScope lets a nested function share the enclosing temp scope.
	ReuseTempVariableScope
	// Generated nodes are excluded from rename and highlight.
	Generated
	// FileLevelUniqueName requires a name unique across the whole file.
	FileLevelUniqueName
	// StartOnNewLine asks the printer to put each element of the node on its own line.
	StartOnNewLine
)

var flagNames = [...]string{
	"NoComments",
	"NoSourceMap",
	"HelperName",
	"AdviseOnEmitNode",
	"AsyncFunctionBody",
	"ReuseTempVariableScope",
	"Generated",
	"FileLevelUniqueName",
	"StartOnNewLine",
}

func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

func (f Flags) String() string {
	if f == 0 {
		return "0"
	}
	var parts []string
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}
