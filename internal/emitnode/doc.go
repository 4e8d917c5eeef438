// Package emitnode stores emit-time metadata for syntax nodes out of line.
//
// Tree nodes are immutable and identity-addressed by ast.Node. Transformations
// record printer directives, synthetic comments, range overrides and requested
// runtime helpers here instead of on the node, so metadata never changes the
// structural shape of the tree. Entries for parse-tree nodes are tracked per
// file and released together by DisposeAll.
package emitnode
