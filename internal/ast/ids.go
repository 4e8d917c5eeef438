package ast

import "fmt"

type (
	FileID    uint32
	StmtID    uint32
	ExprID    uint32
	PayloadID uint32
)

const (
	NoFileID    FileID    = 0
	NoStmtID    StmtID    = 0
	NoExprID    ExprID    = 0
	NoPayloadID PayloadID = 0
)

func (id FileID) IsValid() bool { return id != NoFileID }
func (id StmtID) IsValid() bool { return id != NoStmtID }
func (id ExprID) IsValid() bool { return id != NoExprID }

// NodeKind tells which arena a Node points into.
type NodeKind uint8

const (
	NodeInvalid NodeKind = iota
	NodeFile
	NodeStmt
	NodeExpr
)

// Node is the identity of a tree node across all arenas. It is comparable
// and is the key used by side tables.
type Node struct {
	Kind NodeKind
	ID   uint32
}

func FileNode(id FileID) Node { return Node{Kind: NodeFile, ID: uint32(id)} }
func StmtNode(id StmtID) Node { return Node{Kind: NodeStmt, ID: uint32(id)} }
func ExprNode(id ExprID) Node { return Node{Kind: NodeExpr, ID: uint32(id)} }

func (n Node) IsValid() bool { return n.Kind != NodeInvalid && n.ID != 0 }

func (n Node) String() string {
	switch n.Kind {
	case NodeFile:
		return fmt.Sprintf("file#%d", n.ID)
	case NodeStmt:
		return fmt.Sprintf("stmt#%d", n.ID)
	case NodeExpr:
		return fmt.Sprintf("expr#%d", n.ID)
	default:
		return "node#invalid"
	}
}
