package transform

import (
	"errors"
	"fmt"

	"downlevel/internal/diag"
	"downlevel/internal/source"
)

// Defect is an internal invariant violation: a malformed tree from upstream
// or a pass calling the engine incorrectly. It is raised with panic and only
// recovered at the driver's file boundary, where it aborts the run.
type Defect struct {
	Code diag.Code
	Msg  string
	Span source.Span
}

func (d *Defect) Error() string {
	return fmt.Sprintf("%s: %s", d.Code.ID(), d.Msg)
}

func defectf(code diag.Code, span source.Span, format string, args ...any) {
	panic(&Defect{Code: code, Msg: fmt.Sprintf(format, args...), Span: span})
}

// ErrDepthExceeded is wrapped by errors for inputs nested deeper than MaxDepth.
var ErrDepthExceeded = errors.New("lowering depth limit exceeded")

// DepthError reports the node at which the depth guard tripped.
type DepthError struct {
	Limit int
	Span  source.Span
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("%s (limit %d) at %s", ErrDepthExceeded, e.Limit, e.Span)
}

func (e *DepthError) Unwrap() error { return ErrDepthExceeded }
