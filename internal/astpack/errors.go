package astpack

import (
	"fmt"

	"downlevel/internal/diag"
	"downlevel/internal/source"
)

// Error is a problem with a tree document. Span points into the document's
// file when the offending node carries a position.
type Error struct {
	Code diag.Code
	Path string
	Span source.Span
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Code.ID(), e.Msg)
}

// Diagnostic converts e for the driver's bag.
func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.NewError(e.Code, e.Span, e.Msg).WithPath(e.Path)
}
