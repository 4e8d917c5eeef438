package transform

import (
	"slices"

	"downlevel/internal/ast"
	"downlevel/internal/diag"
	"downlevel/internal/emitnode"
	"downlevel/internal/helpers"
	"downlevel/internal/source"
	"downlevel/internal/trace"
)

// DefaultMaxDepth bounds recursion of the lowering visitor.
const DefaultMaxDepth = 4096

type Options struct {
	Target   Target
	MaxDepth int
	Tracer   trace.Tracer
	// ParentSpan links pass spans to the caller's trace span.
	ParentSpan uint64
}

// Context carries per-file state of a lowering run: the builder, the side
// table, requested helpers, hoisted temporaries and the temp allocator.
// A Context serves one file at a time and is not safe for concurrent use.
type Context struct {
	B        *ast.Builder
	Table    *emitnode.Table
	Factory  *Factory
	Helpers  *HelperFactory
	Target   Target
	MaxDepth int

	tracer     trace.Tracer
	parentSpan uint64

	file      ast.FileID
	requested *helpers.Set
	scopes    [][]source.StringID
	names     *NameGenerator
}

func NewContext(b *ast.Builder, table *emitnode.Table, opts Options) *Context {
	if opts.Target == 0 {
		opts.Target = DefaultTarget
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	c := &Context{
		B:          b,
		Table:      table,
		Factory:    &Factory{b: b, table: table},
		Target:     opts.Target,
		MaxDepth:   opts.MaxDepth,
		tracer:     opts.Tracer,
		parentSpan: opts.ParentSpan,
		requested:  helpers.NewSet(),
	}
	c.Helpers = &HelperFactory{ctx: c}
	return c
}

// File returns the file being transformed.
func (c *Context) File() ast.FileID {
	return c.file
}

// StartFile resets per-file state. Names used anywhere in the file are
// reserved so temporaries cannot shadow them.
func (c *Context) StartFile(file ast.FileID) {
	c.file = file
	c.requested = helpers.NewSet()
	c.scopes = c.scopes[:0]
	c.names = NewNameGenerator(c.B.Identifiers(ast.FileNode(file)))
}

// EndFile attaches the requested helpers to the file node and returns them
// in emission order.
func (c *Context) EndFile() []helpers.ID {
	ids := c.requested.IDs()
	if len(ids) > 0 {
		c.Table.AddHelpers(ast.FileNode(c.file), ids)
	}
	return c.requested.Sorted()
}

// RequestHelper registers helpers for the current file. Each helper's
// dependencies must be part of the same call or already requested;
// anything else is a defect in the calling pass.
func (c *Context) RequestHelper(ids ...helpers.ID) {
	for _, id := range ids {
		d := helpers.Lookup(id)
		if d == nil {
			defectf(diag.DefectInternal, source.NoSpan, "unknown helper id %d", id)
		}
		if d.Scope == helpers.Scoped {
			defectf(diag.DefectInternal, source.NoSpan, "scoped helper %s requested at file level", d.Name)
		}
		for _, dep := range d.Deps {
			if !slices.Contains(ids, dep) && !c.requested.Has(dep) {
				defectf(diag.DefectMissingHelperDependency, source.NoSpan,
					"helper %s requested without its dependency %s", d.Name, helpers.MustLookup(dep).Name)
			}
		}
	}
	for _, id := range ids {
		// dependencies register first so equal priorities keep them ahead
		c.requested.AddAll(helpers.MustLookup(id).Deps)
		c.requested.Add(id)
	}
}

// RequestedHelpers returns the helpers requested so far in registration order.
func (c *Context) RequestedHelpers() []helpers.ID {
	return c.requested.IDs()
}

// StartScope opens a hoisting scope for a function body or the file.
func (c *Context) StartScope() {
	c.scopes = append(c.scopes, nil)
}

// EndScope closes the innermost scope and returns the names hoisted into it.
func (c *Context) EndScope() []source.StringID {
	n := len(c.scopes)
	if n == 0 {
		defectf(diag.DefectInternal, source.NoSpan, "EndScope without StartScope")
	}
	names := c.scopes[n-1]
	c.scopes = c.scopes[:n-1]
	return names
}

// HoistVariable declares name in the nearest function or file scope.
func (c *Context) HoistVariable(name source.StringID) {
	n := len(c.scopes)
	if n == 0 {
		defectf(diag.DefectInternal, source.NoSpan, "hoisting outside of any scope")
	}
	c.scopes[n-1] = append(c.scopes[n-1], name)
}

// NewTempVariable allocates a file-unique temporary, hoists its declaration
// and returns an identifier referring to it.
func (c *Context) NewTempVariable() ast.ExprID {
	name := c.B.Intern(c.names.Next())
	c.HoistVariable(name)
	id := c.Factory.IdentID(name)
	c.Table.SetFlags(ast.ExprNode(id), emitnode.Generated|emitnode.FileLevelUniqueName)
	return id
}

// withHoisted prepends `var <names>;` to stmts when names is not empty.
func (c *Context) withHoisted(stmts []ast.StmtID, names []source.StringID) []ast.StmtID {
	if len(names) == 0 {
		return stmts
	}
	out := make([]ast.StmtID, 0, len(stmts)+1)
	out = append(out, c.Factory.VarStatement(names))
	return append(out, stmts...)
}
