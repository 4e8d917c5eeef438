package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"downlevel/internal/ast"
	"downlevel/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a tree file:
// 1) file.Span is non-empty and, when sf has text, within its bounds
// 2) every parse-tree node below stmts lies inside file.Span and sf
// 3) synthesized nodes either have no span or one inside file.Span
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, stmts []ast.StmtID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.Files.Get(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}

	// 1) file span sanity
	if f.Span.End <= f.Span.Start {
		return fmt.Errorf("file span is empty: %v", f.Span)
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	if sf.Flags&source.FileNoText == 0 {
		lenContent, err := safecast.Conv[uint32](len(sf.Content))
		if err != nil {
			return fmt.Errorf("len content overflow: %w", err)
		}
		if f.Span.End > lenContent {
			return fmt.Errorf("file span end beyond content: %d > %d", f.Span.End, lenContent)
		}
	}

	// 2) and 3)
	var failure error
	for _, st := range stmts {
		b.Walk(ast.StmtNode(st), func(n ast.Node) bool {
			if failure != nil {
				return false
			}
			sp := b.Span(n)
			if sp.IsZero() {
				if !b.IsSynthesized(n) {
					failure = fmt.Errorf("parse-tree node %s has no span", n)
				}
				return true
			}
			if sp.File != sf.ID {
				failure = fmt.Errorf("node %s span file mismatch: got=%d want=%d", n, sp.File, sf.ID)
				return false
			}
			if sp.Start < f.Span.Start || sp.End > f.Span.End {
				failure = fmt.Errorf("node %s span %v is outside file span %v", n, sp, f.Span)
				return false
			}
			return true
		})
	}
	return failure
}

// CheckNoES2020 reports the first optional-chain link or `??` left below stmts.
func CheckNoES2020(b *ast.Builder, stmts []ast.StmtID) error {
	var failure error
	for _, st := range stmts {
		b.Walk(ast.StmtNode(st), func(n ast.Node) bool {
			if failure != nil || n.Kind != ast.NodeExpr {
				return failure == nil
			}
			id := ast.ExprID(n.ID)
			if e := b.Exprs.Get(id); e.IsOptionalChain() {
				failure = fmt.Errorf("optional chain link %s (%s) survived lowering", n, e.Kind)
				return false
			}
			if data, ok := b.Exprs.Binary(id); ok && data.Op == ast.ExprBinaryNullishCoalescing {
				failure = fmt.Errorf("nullish coalescing %s survived lowering", n)
				return false
			}
			return true
		})
	}
	return failure
}
