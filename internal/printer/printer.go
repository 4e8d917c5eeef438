package printer

import (
	"fmt"

	"downlevel/internal/ast"
	"downlevel/internal/emitnode"
	"downlevel/internal/helpers"
	"downlevel/internal/source"
)

type Options struct {
	// Indent is one indentation step. Defaults to four spaces.
	Indent  string
	Helpers HelperMode
	// Tracker is shared by outputs of one compilation unit. Nil means the
	// output is a unit of its own.
	Tracker        *HelperTracker
	RemoveComments bool
}

func (o Options) withDefaults() Options {
	if o.Indent == "" {
		o.Indent = "    "
	}
	if o.Tracker == nil {
		o.Tracker = NewHelperTracker()
	}
	return o
}

// Result is the printed form of one file.
type Result struct {
	Code []byte
	// Required lists every global helper the code refers to, in emission order.
	Required []helpers.ID
	// Emitted lists the helpers whose definitions this output carries.
	Emitted []helpers.ID
}

type printer struct {
	b     *ast.Builder
	table *emitnode.Table
	w     *writer
	opts  Options
	names *uniqueNamer
	// stmtStart is the output offset of the current expression statement.
	stmtStart int
	err       error
}

// Print writes the helper prologue followed by stmts. A nil stmts prints
// the file's own statements.
func Print(b *ast.Builder, table *emitnode.Table, file ast.FileID, stmts []ast.StmtID, opts Options) (*Result, error) {
	f := b.Files.Get(file)
	if f == nil {
		return nil, fmt.Errorf("printer: file %d does not exist", file)
	}
	if stmts == nil {
		stmts = f.Stmts
	}
	opts = opts.withDefaults()
	p := &printer{
		b:         b,
		table:     table,
		w:         newWriter(opts.Indent, 64*len(stmts)),
		opts:      opts,
		names:     newUniqueNamer(b.Identifiers(ast.FileNode(file))),
		stmtStart: -1,
	}

	res := &Result{Required: CollectHelpers(b, table, file, stmts)}
	if opts.Helpers == HelpersInline {
		for _, id := range res.Required {
			if !opts.Tracker.Claim(id) {
				continue
			}
			text, err := helpers.MustLookup(id).Render(p.names.name)
			if err != nil {
				return nil, fmt.Errorf("printer: %w", err)
			}
			p.w.WriteLines(text)
			p.w.Newline()
			res.Emitted = append(res.Emitted, id)
		}
	}

	p.printStmts(stmts)
	if p.err != nil {
		return nil, p.err
	}
	res.Code = p.w.Bytes()
	return res, nil
}

func (p *printer) fail(format string, args ...any) {
	if p.err == nil {
		p.err = fmt.Errorf("printer: "+format, args...)
	}
}

func (p *printer) commentsOff(n ast.Node) bool {
	return p.opts.RemoveComments || p.table.Flags(n).Has(emitnode.NoComments)
}

func (p *printer) printStmts(ids []ast.StmtID) {
	for _, id := range ids {
		p.printStmt(id)
		p.w.Newline()
	}
}

func (p *printer) printStmtComments(n ast.Node, leading bool) {
	if p.commentsOff(n) {
		return
	}
	if leading {
		for _, c := range p.table.LeadingComments(n) {
			if c.Kind == emitnode.SingleLineComment {
				p.w.WriteString("//" + c.Text)
				p.w.Newline()
				continue
			}
			p.w.WriteString("/*" + c.Text + "*/")
			if c.HasTrailingNewLine {
				p.w.Newline()
			} else {
				p.w.Space()
			}
		}
		return
	}
	for _, c := range p.table.TrailingComments(n) {
		p.w.Space()
		if c.Kind == emitnode.SingleLineComment {
			p.w.WriteString("//" + c.Text)
		} else {
			p.w.WriteString("/*" + c.Text + "*/")
		}
	}
}

func (p *printer) printStmt(id ast.StmtID) {
	st := p.b.Stmts.Get(id)
	if st == nil {
		p.fail("statement %d does not exist", id)
		return
	}
	n := ast.StmtNode(id)
	p.printStmtComments(n, true)
	switch st.Kind {
	case ast.StmtExpr:
		data, _ := p.b.Stmts.Expr(id)
		p.stmtStart = p.w.Len()
		p.printExpr(data.Expr, lLowest)
		p.w.WriteString(";")
	case ast.StmtVar:
		data, _ := p.b.Stmts.Var(id)
		p.w.WriteString(data.Kind.String())
		for i, d := range data.Decls {
			if i > 0 {
				p.w.WriteString(",")
			}
			p.w.WriteString(" " + p.b.Name(d.Name))
			if d.Init.IsValid() {
				p.w.WriteString(" = ")
				p.printExpr(d.Init, lComma)
			}
		}
		p.w.WriteString(";")
	case ast.StmtReturn:
		data, _ := p.b.Stmts.Return(id)
		p.w.WriteString("return")
		if data.Value.IsValid() {
			p.w.WriteString(" ")
			p.printExpr(data.Value, lLowest)
		}
		p.w.WriteString(";")
	case ast.StmtBlock:
		p.printBlock(id)
	case ast.StmtFunc:
		data, _ := p.b.Stmts.Func(id)
		p.printFunction(data.Name, data.Params, data.Body, data.Async, data.Generator)
	case ast.StmtIf:
		p.printIf(id)
	case ast.StmtEmpty:
		p.w.WriteString(";")
	default:
		p.fail("unexpected statement kind %s", st.Kind)
	}
	p.printStmtComments(n, false)
}

// printBlock writes `{ ... }`. Scoped helpers attached to the block open
// its body.
func (p *printer) printBlock(id ast.StmtID) {
	data, ok := p.b.Stmts.Block(id)
	if !ok {
		p.fail("statement %d is not a block", id)
		return
	}
	scoped := p.scopedHelpers(id)
	if len(data.Stmts) == 0 && len(scoped) == 0 {
		p.w.WriteString("{}")
		return
	}
	p.w.WriteString("{")
	p.w.Newline()
	p.w.IndentPush()
	for _, h := range scoped {
		text, err := helpers.MustLookup(h).Render(p.names.name)
		if err != nil {
			p.fail("%v", err)
			continue
		}
		p.w.WriteLines(text)
		p.w.Newline()
	}
	p.printStmts(data.Stmts)
	p.w.IndentPop()
	p.w.WriteString("}")
}

func (p *printer) scopedHelpers(block ast.StmtID) []helpers.ID {
	var out []helpers.ID
	for _, id := range p.table.Helpers(ast.StmtNode(block)) {
		if d := helpers.Lookup(id); d != nil && d.Scope == helpers.Scoped {
			out = append(out, id)
		}
	}
	return out
}

func (p *printer) printFunction(name source.StringID, params []source.StringID, body ast.StmtID, async, generator bool) {
	if async {
		p.w.WriteString("async ")
	}
	p.w.WriteString("function")
	if generator {
		p.w.WriteString("*")
	}
	p.w.WriteString(" ")
	p.w.WriteString(p.b.Name(name))
	p.printParams(params)
	p.w.WriteString(" ")
	p.printBlock(body)
}

func (p *printer) printParams(params []source.StringID) {
	p.w.WriteString("(")
	for i, prm := range params {
		if i > 0 {
			p.w.WriteString(", ")
		}
		p.w.WriteString(p.b.Name(prm))
	}
	p.w.WriteString(")")
}

func (p *printer) printIf(id ast.StmtID) {
	data, _ := p.b.Stmts.If(id)
	p.w.WriteString("if (")
	p.printExpr(data.Cond, lLowest)
	p.w.WriteString(")")

	thenIsBlock := p.b.Stmts.Get(data.Then).Kind == ast.StmtBlock
	switch {
	case thenIsBlock:
		p.w.WriteString(" ")
		p.printBlock(data.Then)
	case data.Else.IsValid() && p.endsWithIfWithoutElse(data.Then):
		// `if (a) if (b) x; else y` would bind the else to the inner if.
		p.w.WriteString(" {")
		p.w.Newline()
		p.w.IndentPush()
		p.printStmt(data.Then)
		p.w.Newline()
		p.w.IndentPop()
		p.w.WriteString("}")
		thenIsBlock = true
	default:
		p.printNested(data.Then)
	}
	if !data.Else.IsValid() {
		return
	}
	if thenIsBlock {
		p.w.WriteString(" else")
	} else {
		p.w.Newline()
		p.w.WriteString("else")
	}
	switch p.b.Stmts.Get(data.Else).Kind {
	case ast.StmtIf:
		p.w.WriteString(" ")
		p.printStmt(data.Else)
	case ast.StmtBlock:
		p.w.WriteString(" ")
		p.printBlock(data.Else)
	default:
		p.printNested(data.Else)
	}
}

func (p *printer) printNested(id ast.StmtID) {
	p.w.Newline()
	p.w.IndentPush()
	p.printStmt(id)
	p.w.IndentPop()
}

func (p *printer) endsWithIfWithoutElse(id ast.StmtID) bool {
	for {
		data, ok := p.b.Stmts.If(id)
		if !ok {
			return false
		}
		if !data.Else.IsValid() {
			return true
		}
		id = data.Else
	}
}
