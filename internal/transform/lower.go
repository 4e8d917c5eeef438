package transform

import (
	"slices"
	"strconv"

	"downlevel/internal/ast"
	"downlevel/internal/diag"
	"downlevel/internal/helpers"
	"downlevel/internal/source"
	"downlevel/internal/trace"
)

// Output is the lowered form of one file. Stmts replace the file's
// top-level statements; the file node itself is left untouched.
type Output struct {
	File    ast.FileID
	Stmts   []ast.StmtID
	Helpers []helpers.ID
	Changed bool
}

// Lower rewrites file for c.Target. Declaration files and files without
// ES2020 syntax come back unchanged. Inputs nested deeper than MaxDepth
// fail with a *DepthError; internal defects panic with *Defect.
func Lower(c *Context, file ast.FileID) (out *Output, err error) {
	f := c.B.Files.Get(file)
	if f == nil {
		defectf(diag.DefectUnexpectedNode, source.NoSpan, "file %d does not exist", file)
	}
	span := trace.Begin(c.tracer, trace.ScopePass, "lower", c.parentSpan).
		WithExtra("file", f.Path).
		WithExtra("target", c.Target.String())
	defer func() {
		detail := "ok"
		if err != nil {
			detail = err.Error()
		}
		span.End(detail)
	}()

	c.StartFile(file)
	out = &Output{File: file, Stmts: f.Stmts}
	if f.IsDeclaration || !needsES2020(c.Target, f.Transform) {
		out.Helpers = c.EndFile()
		return out, nil
	}

	c.B.Synthesizing(true)
	defer c.B.Synthesizing(false)
	defer func() {
		if r := recover(); r != nil {
			de, ok := r.(*DepthError)
			if !ok {
				panic(r)
			}
			out, err = nil, de
		}
	}()

	out.Stmts = c.VisitFile(file, newESNext(c))
	out.Changed = !slices.Equal(out.Stmts, f.Stmts)
	out.Helpers = c.EndFile()
	span.WithExtra("stmts", strconv.Itoa(len(out.Stmts)))
	return out, nil
}

func needsES2020(t Target, tf ast.TransformFlags) bool {
	if tf&ast.ContainsES2020 == 0 {
		return false
	}
	return !t.Supports(FeatureOptionalChaining) || !t.Supports(FeatureNullishCoalescing)
}
