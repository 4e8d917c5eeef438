package astpack

import (
	"bytes"
	"encoding/json"
	"fmt"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"downlevel/internal/ast"
	"downlevel/internal/diag"
	"downlevel/internal/source"
)

// DefaultMaxDepth bounds node nesting accepted by Build.
const DefaultMaxDepth = 4096

type Options struct {
	MaxDepth int
}

// Sources registers document text so spans can be rendered later.
// *source.FileSet satisfies it; the driver wraps one in a mutex.
type Sources interface {
	Add(path string, content []byte, flags source.FileFlags) source.FileID
	Get(id source.FileID) *source.File
}

// Unmarshal parses data without building any nodes.
func Unmarshal(path string, data []byte, format Format) (*Document, error) {
	doc := &Document{}
	var err error
	switch format {
	case FormatMsgpack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields(true)
		err = dec.Decode(doc)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(doc)
	default:
		return nil, &Error{Code: diag.PackBadFormat, Path: path, Msg: fmt.Sprintf("unknown document format %d", format)}
	}
	if err != nil {
		return nil, &Error{Code: diag.PackBadFormat, Path: path, Msg: fmt.Sprintf("cannot decode %s document: %v", format, err)}
	}
	if doc.Path == "" {
		doc.Path = path
	}
	return doc, nil
}

// Decode unmarshals data and builds it into b. See Build.
func Decode(b *ast.Builder, fs Sources, path string, data []byte, format Format, opts Options) (ast.FileID, error) {
	doc, err := Unmarshal(path, data, format)
	if err != nil {
		return 0, err
	}
	return Build(b, fs, doc, opts)
}

// Build allocates the document's nodes in b and registers its text in fs.
// Nesting deeper than opts.MaxDepth fails with PackTooDeep instead of
// exhausting the stack.
func Build(b *ast.Builder, fs Sources, doc *Document, opts Options) (ast.FileID, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if doc.Version != Version {
		return 0, &Error{Code: diag.PackVersionMismatch, Path: doc.Path,
			Msg: fmt.Sprintf("document version %d, expected %d", doc.Version, Version)}
	}
	var text []byte
	if doc.Source != "" {
		text = []byte(doc.Source)
	}
	src := fs.Add(doc.Path, text, source.FileVirtual)
	content := fs.Get(src).Content
	textLen, err := safecast.Conv[uint32](len(content))
	if err != nil {
		return 0, &Error{Code: diag.PackBadFormat, Path: doc.Path, Msg: "source text too large"}
	}

	d := &decoder{b: b, path: doc.Path, src: src, textLen: textLen, hasText: text != nil, maxDepth: opts.MaxDepth}
	file := b.NewFile(source.Span{File: src}, doc.Path)
	for _, n := range doc.Body {
		st, err := d.stmt(n)
		if err != nil {
			return 0, err
		}
		b.PushStmt(file, st)
	}
	f := b.Files.Get(file)
	f.IsDeclaration = doc.Declaration
	f.Span.End = max(d.maxEnd, textLen)
	return file, nil
}

type decoder struct {
	b        *ast.Builder
	path     string
	src      source.FileID
	textLen  uint32
	hasText  bool
	maxDepth int
	depth    int
	maxEnd   uint32
}

func (d *decoder) errorf(code diag.Code, n *Node, format string, args ...any) error {
	sp := source.Span{File: d.src}
	if n != nil {
		sp.Start, sp.End = n.Start, n.End
	}
	return &Error{Code: code, Path: d.path, Span: sp, Msg: fmt.Sprintf(format, args...)}
}

// enter checks the node before any of its children are visited.
func (d *decoder) enter(n *Node) (source.Span, error) {
	if n == nil {
		return source.Span{}, d.errorf(diag.PackBadFormat, nil, "null node")
	}
	d.depth++
	if d.depth > d.maxDepth {
		return source.Span{}, d.errorf(diag.PackTooDeep, n, "nesting exceeds %d levels", d.maxDepth)
	}
	if n.End < n.Start {
		return source.Span{}, d.errorf(diag.PackBadFormat, n, "%s ends before it starts (%d < %d)", n.Kind, n.End, n.Start)
	}
	if d.hasText && n.End > d.textLen {
		return source.Span{}, d.errorf(diag.PackDanglingRef, n, "%s ends at %d past the end of the source (%d)", n.Kind, n.End, d.textLen)
	}
	d.maxEnd = max(d.maxEnd, n.End)
	return source.Span{File: d.src, Start: n.Start, End: n.End}, nil
}

func (d *decoder) leave() { d.depth-- }

func (d *decoder) kids(n *Node, minKids, maxKids int) error {
	if len(n.Kids) < minKids || (maxKids >= 0 && len(n.Kids) > maxKids) {
		if minKids == maxKids {
			return d.errorf(diag.PackBadFormat, n, "%s needs %d children, got %d", n.Kind, minKids, len(n.Kids))
		}
		return d.errorf(diag.PackBadFormat, n, "%s has %d children", n.Kind, len(n.Kids))
	}
	return nil
}

func (d *decoder) name(s string) source.StringID { return d.b.Intern(s) }

func (d *decoder) names(ss []string) []source.StringID {
	if len(ss) == 0 {
		return nil
	}
	out := make([]source.StringID, len(ss))
	for i, s := range ss {
		out[i] = d.name(s)
	}
	return out
}

func chainFlags(n *Node) ast.NodeFlags {
	switch {
	case n.Optional:
		return ast.ChainLink
	case n.Chain:
		return ast.NodeOptionalChain
	}
	return 0
}

var litKinds = map[string]ast.ExprLitKind{
	"null":      ast.ExprLitNull,
	"undefined": ast.ExprLitUndefined,
	"number":    ast.ExprLitNumber,
	"string":    ast.ExprLitString,
	"true":      ast.ExprLitTrue,
	"false":     ast.ExprLitFalse,
}

var (
	binaryOps = func() map[string]ast.ExprBinaryOp {
		m := make(map[string]ast.ExprBinaryOp)
		for op := ast.ExprBinaryAdd; op <= ast.ExprBinaryComma; op++ {
			m[op.String()] = op
		}
		return m
	}()
	unaryOps = func() map[string]ast.ExprUnaryOp {
		m := make(map[string]ast.ExprUnaryOp)
		for op := ast.ExprUnaryDelete; op <= ast.ExprUnaryPos; op++ {
			m[op.String()] = op
		}
		return m
	}()
	varKinds = map[string]ast.VarKind{"var": ast.VarVar, "let": ast.VarLet, "const": ast.VarConst}
)

func (d *decoder) exprs(ns []*Node) ([]ast.ExprID, error) {
	if len(ns) == 0 {
		return nil, nil
	}
	out := make([]ast.ExprID, len(ns))
	for i, n := range ns {
		id, err := d.expr(n)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

func (d *decoder) expr(n *Node) (ast.ExprID, error) {
	sp, err := d.enter(n)
	if err != nil {
		return ast.NoExprID, err
	}
	defer d.leave()

	ex := d.b.Exprs
	if (n.Optional || n.Chain) && !isLinkKind(n.Kind) {
		return ast.NoExprID, d.errorf(diag.PackBadFormat, n, "%s cannot be part of an optional chain", n.Kind)
	}
	if lit, ok := litKinds[n.Kind]; ok {
		if err := d.kids(n, 0, 0); err != nil {
			return ast.NoExprID, err
		}
		value := source.NoStringID
		if lit == ast.ExprLitNumber || lit == ast.ExprLitString {
			value = d.name(n.Value)
		}
		return ex.NewLiteral(sp, lit, value), nil
	}

	switch n.Kind {
	case "ident":
		if n.Name == "" {
			return ast.NoExprID, d.errorf(diag.PackBadFormat, n, "identifier without a name")
		}
		return ex.NewIdent(sp, d.name(n.Name)), nil
	case "this":
		return ex.NewThis(sp), nil
	case "super":
		return ex.NewSuper(sp), nil
	case "member":
		if err := d.kids(n, 1, 1); err != nil {
			return ast.NoExprID, err
		}
		target, err := d.expr(n.Kids[0])
		if err != nil {
			return ast.NoExprID, err
		}
		return ex.NewProperty(sp, target, d.name(n.Name), chainFlags(n)), nil
	case "index":
		if err := d.kids(n, 2, 2); err != nil {
			return ast.NoExprID, err
		}
		xs, err := d.exprs(n.Kids)
		if err != nil {
			return ast.NoExprID, err
		}
		return ex.NewIndex(sp, xs[0], xs[1], chainFlags(n)), nil
	case "call":
		if err := d.kids(n, 1, -1); err != nil {
			return ast.NoExprID, err
		}
		xs, err := d.exprs(n.Kids)
		if err != nil {
			return ast.NoExprID, err
		}
		return ex.NewCall(sp, xs[0], xs[1:], chainFlags(n)), nil
	case "binary":
		op, ok := binaryOps[n.Op]
		if !ok {
			return ast.NoExprID, d.errorf(diag.PackUnknownKind, n, "unknown binary operator %q", n.Op)
		}
		if err := d.kids(n, 2, 2); err != nil {
			return ast.NoExprID, err
		}
		xs, err := d.exprs(n.Kids)
		if err != nil {
			return ast.NoExprID, err
		}
		return ex.NewBinary(sp, op, xs[0], xs[1]), nil
	case "unary":
		op, ok := unaryOps[n.Op]
		if !ok {
			return ast.NoExprID, d.errorf(diag.PackUnknownKind, n, "unknown unary operator %q", n.Op)
		}
		if err := d.kids(n, 1, 1); err != nil {
			return ast.NoExprID, err
		}
		x, err := d.expr(n.Kids[0])
		if err != nil {
			return ast.NoExprID, err
		}
		return ex.NewUnary(sp, op, x), nil
	case "conditional":
		if err := d.kids(n, 3, 3); err != nil {
			return ast.NoExprID, err
		}
		xs, err := d.exprs(n.Kids)
		if err != nil {
			return ast.NoExprID, err
		}
		return ex.NewConditional(sp, xs[0], xs[1], xs[2]), nil
	case "paren":
		if err := d.kids(n, 1, 1); err != nil {
			return ast.NoExprID, err
		}
		x, err := d.expr(n.Kids[0])
		if err != nil {
			return ast.NoExprID, err
		}
		return ex.NewParen(sp, x), nil
	case "tagged":
		if err := d.kids(n, 1, 1); err != nil {
			return ast.NoExprID, err
		}
		tag, err := d.expr(n.Kids[0])
		if err != nil {
			return ast.NoExprID, err
		}
		return ex.NewTaggedTemplate(sp, tag, d.name(n.Value), chainFlags(n)), nil
	case "function":
		body, err := d.body(n)
		if err != nil {
			return ast.NoExprID, err
		}
		name := source.NoStringID
		if n.Name != "" {
			name = d.name(n.Name)
		}
		return ex.NewFunction(sp, ast.ExprFunctionData{
			Name:      name,
			Params:    d.names(n.Params),
			Body:      body,
			Arrow:     n.Arrow,
			Async:     n.Async,
			Generator: n.Generator,
		}), nil
	case "object":
		props := make([]ast.ObjectProp, 0, len(n.Kids))
		for _, p := range n.Kids {
			prop, err := d.prop(p)
			if err != nil {
				return ast.NoExprID, err
			}
			props = append(props, prop)
		}
		return ex.NewObject(sp, props), nil
	case "array":
		xs, err := d.exprs(n.Kids)
		if err != nil {
			return ast.NoExprID, err
		}
		return ex.NewArray(sp, xs), nil
	}
	return ast.NoExprID, d.errorf(diag.PackUnknownKind, n, "unknown expression kind %q", n.Kind)
}

func isLinkKind(kind string) bool {
	switch kind {
	case "member", "index", "call", "tagged":
		return true
	}
	return false
}

func (d *decoder) prop(n *Node) (ast.ObjectProp, error) {
	if _, err := d.enter(n); err != nil {
		return ast.ObjectProp{}, err
	}
	defer d.leave()
	if n.Kind != "prop" {
		return ast.ObjectProp{}, d.errorf(diag.PackBadFormat, n, "object member must be a prop, got %q", n.Kind)
	}
	if err := d.kids(n, 1, 1); err != nil {
		return ast.ObjectProp{}, err
	}
	v, err := d.expr(n.Kids[0])
	if err != nil {
		return ast.ObjectProp{}, err
	}
	return ast.ObjectProp{Key: d.name(n.Name), Value: v}, nil
}

// body decodes the single block child of a function.
func (d *decoder) body(n *Node) (ast.StmtID, error) {
	if err := d.kids(n, 1, 1); err != nil {
		return ast.NoStmtID, err
	}
	if n.Kids[0] == nil || n.Kids[0].Kind != "block" {
		return ast.NoStmtID, d.errorf(diag.PackBadFormat, n, "%s body must be a block", n.Kind)
	}
	return d.stmt(n.Kids[0])
}

func (d *decoder) stmt(n *Node) (ast.StmtID, error) {
	sp, err := d.enter(n)
	if err != nil {
		return ast.NoStmtID, err
	}
	defer d.leave()

	st := d.b.Stmts
	switch n.Kind {
	case "expression":
		if err := d.kids(n, 1, 1); err != nil {
			return ast.NoStmtID, err
		}
		x, err := d.expr(n.Kids[0])
		if err != nil {
			return ast.NoStmtID, err
		}
		return st.NewExpr(sp, x), nil
	case "var":
		kind, ok := varKinds[n.Op]
		if !ok {
			return ast.NoStmtID, d.errorf(diag.PackUnknownKind, n, "unknown declaration keyword %q", n.Op)
		}
		if len(n.Kids) == 0 {
			return ast.NoStmtID, d.errorf(diag.PackBadFormat, n, "%s declares nothing", n.Op)
		}
		decls := make([]ast.VarDecl, 0, len(n.Kids))
		for _, k := range n.Kids {
			decl, err := d.decl(k)
			if err != nil {
				return ast.NoStmtID, err
			}
			decls = append(decls, decl)
		}
		return st.NewVar(sp, kind, decls), nil
	case "return":
		if err := d.kids(n, 0, 1); err != nil {
			return ast.NoStmtID, err
		}
		value := ast.NoExprID
		if len(n.Kids) == 1 {
			if value, err = d.expr(n.Kids[0]); err != nil {
				return ast.NoStmtID, err
			}
		}
		return st.NewReturn(sp, value), nil
	case "block":
		stmts, err := d.stmts(n.Kids)
		if err != nil {
			return ast.NoStmtID, err
		}
		return st.NewBlock(sp, stmts), nil
	case "func":
		if n.Name == "" {
			return ast.NoStmtID, d.errorf(diag.PackBadFormat, n, "function declaration without a name")
		}
		body, err := d.body(n)
		if err != nil {
			return ast.NoStmtID, err
		}
		return st.NewFunc(sp, ast.StmtFuncData{
			Name:      d.name(n.Name),
			Params:    d.names(n.Params),
			Body:      body,
			Async:     n.Async,
			Generator: n.Generator,
		}), nil
	case "if":
		if err := d.kids(n, 2, 3); err != nil {
			return ast.NoStmtID, err
		}
		cond, err := d.expr(n.Kids[0])
		if err != nil {
			return ast.NoStmtID, err
		}
		then, err := d.stmt(n.Kids[1])
		if err != nil {
			return ast.NoStmtID, err
		}
		els := ast.NoStmtID
		if len(n.Kids) == 3 {
			if els, err = d.stmt(n.Kids[2]); err != nil {
				return ast.NoStmtID, err
			}
		}
		return st.NewIf(sp, cond, then, els), nil
	case "empty":
		return st.NewEmpty(sp), nil
	}
	return ast.NoStmtID, d.errorf(diag.PackUnknownKind, n, "unknown statement kind %q", n.Kind)
}

func (d *decoder) stmts(ns []*Node) ([]ast.StmtID, error) {
	out := make([]ast.StmtID, 0, len(ns))
	for _, n := range ns {
		id, err := d.stmt(n)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (d *decoder) decl(n *Node) (ast.VarDecl, error) {
	if _, err := d.enter(n); err != nil {
		return ast.VarDecl{}, err
	}
	defer d.leave()
	if n.Kind != "decl" || n.Name == "" {
		return ast.VarDecl{}, d.errorf(diag.PackBadFormat, n, "declaration list entry must be a named decl")
	}
	if err := d.kids(n, 0, 1); err != nil {
		return ast.VarDecl{}, err
	}
	init := ast.NoExprID
	if len(n.Kids) == 1 {
		var err error
		if init, err = d.expr(n.Kids[0]); err != nil {
			return ast.VarDecl{}, err
		}
	}
	return ast.VarDecl{Name: d.name(n.Name), Init: init}, nil
}
