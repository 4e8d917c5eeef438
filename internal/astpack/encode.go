package astpack

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"downlevel/internal/ast"
	"downlevel/internal/source"
)

// Marshal writes doc in format. JSON output is indented for review.
func Marshal(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatMsgpack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetOmitEmpty(true)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode %s: %w", doc.Path, err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", doc.Path, err)
		}
		return append(data, '\n'), nil
	}
	return nil, fmt.Errorf("encode %s: unknown format %d", doc.Path, format)
}

// Encode turns the statements of file back into a document. Synthesized
// nodes have no position and come out with zero offsets.
func Encode(b *ast.Builder, file ast.FileID, stmts []ast.StmtID) (*Document, error) {
	f := b.Files.Get(file)
	if f == nil {
		return nil, fmt.Errorf("encode: file %d does not exist", file)
	}
	if stmts == nil {
		stmts = f.Stmts
	}
	e := &encoder{b: b}
	doc := &Document{Version: Version, Path: f.Path, Declaration: f.IsDeclaration}
	for _, id := range stmts {
		n, err := e.stmt(id)
		if err != nil {
			return nil, err
		}
		doc.Body = append(doc.Body, n)
	}
	return doc, nil
}

type encoder struct {
	b *ast.Builder
}

func (e *encoder) node(kind string, n ast.Node) *Node {
	sp := e.b.Span(n)
	return &Node{Kind: kind, Start: sp.Start, End: sp.End}
}

func (e *encoder) strs(ids []source.StringID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = e.b.Name(id)
	}
	return out
}

func (e *encoder) exprs(ids []ast.ExprID) ([]*Node, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		n, err := e.expr(id)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func setChain(n *Node, x *ast.Expr) {
	n.Optional = x.HasQuestionDot()
	n.Chain = x.IsOptionalChain() && !n.Optional
}

var litNames = map[ast.ExprLitKind]string{
	ast.ExprLitNull:      "null",
	ast.ExprLitUndefined: "undefined",
	ast.ExprLitNumber:    "number",
	ast.ExprLitString:    "string",
	ast.ExprLitTrue:      "true",
	ast.ExprLitFalse:     "false",
}

func (e *encoder) expr(id ast.ExprID) (*Node, error) {
	ex := e.b.Exprs
	x := ex.Get(id)
	if x == nil {
		return nil, fmt.Errorf("encode: expression %d does not exist", id)
	}
	self := ast.ExprNode(id)
	var n *Node
	var err error
	switch x.Kind {
	case ast.ExprIdent:
		data, _ := ex.Ident(id)
		n = e.node("ident", self)
		n.Name = e.b.Name(data.Name)
	case ast.ExprThis:
		n = e.node("this", self)
	case ast.ExprSuper:
		n = e.node("super", self)
	case ast.ExprLit:
		data, _ := ex.Literal(id)
		n = e.node(litNames[data.Kind], self)
		if data.Kind == ast.ExprLitNumber || data.Kind == ast.ExprLitString {
			n.Value = e.b.Name(data.Value)
		}
	case ast.ExprProperty:
		data, _ := ex.Property(id)
		n = e.node("member", self)
		n.Name = e.b.Name(data.Name)
		n.Kids, err = e.exprs([]ast.ExprID{data.Target})
		setChain(n, x)
	case ast.ExprIndex:
		data, _ := ex.Index(id)
		n = e.node("index", self)
		n.Kids, err = e.exprs([]ast.ExprID{data.Target, data.Index})
		setChain(n, x)
	case ast.ExprCall:
		data, _ := ex.Call(id)
		n = e.node("call", self)
		n.Kids, err = e.exprs(append([]ast.ExprID{data.Callee}, data.Args...))
		setChain(n, x)
	case ast.ExprBinary:
		data, _ := ex.Binary(id)
		n = e.node("binary", self)
		n.Op = data.Op.String()
		n.Kids, err = e.exprs([]ast.ExprID{data.Left, data.Right})
	case ast.ExprUnary:
		data, _ := ex.Unary(id)
		n = e.node("unary", self)
		n.Op = data.Op.String()
		n.Kids, err = e.exprs([]ast.ExprID{data.Operand})
	case ast.ExprConditional:
		data, _ := ex.Conditional(id)
		n = e.node("conditional", self)
		n.Kids, err = e.exprs([]ast.ExprID{data.Test, data.Yes, data.No})
	case ast.ExprParen:
		data, _ := ex.Paren(id)
		n = e.node("paren", self)
		n.Kids, err = e.exprs([]ast.ExprID{data.Inner})
	case ast.ExprTaggedTemplate:
		data, _ := ex.TaggedTemplate(id)
		n = e.node("tagged", self)
		n.Value = e.b.Name(data.Raw)
		n.Kids, err = e.exprs([]ast.ExprID{data.Tag})
		setChain(n, x)
	case ast.ExprFunction:
		data, _ := ex.Function(id)
		n = e.node("function", self)
		if data.Name != source.NoStringID {
			n.Name = e.b.Name(data.Name)
		}
		n.Params = e.strs(data.Params)
		n.Arrow, n.Async, n.Generator = data.Arrow, data.Async, data.Generator
		var body *Node
		body, err = e.stmt(data.Body)
		n.Kids = []*Node{body}
	case ast.ExprObject:
		data, _ := ex.Object(id)
		n = e.node("object", self)
		for _, p := range data.Props {
			var v *Node
			if v, err = e.expr(p.Value); err != nil {
				break
			}
			n.Kids = append(n.Kids, &Node{Kind: "prop", Name: e.b.Name(p.Key), Kids: []*Node{v}})
		}
	case ast.ExprArray:
		data, _ := ex.Array(id)
		n = e.node("array", self)
		n.Kids, err = e.exprs(data.Elems)
	default:
		return nil, fmt.Errorf("encode: expression kind %s has no document form", x.Kind)
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (e *encoder) stmt(id ast.StmtID) (*Node, error) {
	st := e.b.Stmts
	s := st.Get(id)
	if s == nil {
		return nil, fmt.Errorf("encode: statement %d does not exist", id)
	}
	self := ast.StmtNode(id)
	var n *Node
	var err error
	switch s.Kind {
	case ast.StmtExpr:
		data, _ := st.Expr(id)
		n = e.node("expression", self)
		n.Kids, err = e.exprs([]ast.ExprID{data.Expr})
	case ast.StmtVar:
		data, _ := st.Var(id)
		n = e.node("var", self)
		n.Op = data.Kind.String()
		for _, d := range data.Decls {
			decl := &Node{Kind: "decl", Name: e.b.Name(d.Name)}
			if d.Init.IsValid() {
				if decl.Kids, err = e.exprs([]ast.ExprID{d.Init}); err != nil {
					break
				}
			}
			n.Kids = append(n.Kids, decl)
		}
	case ast.StmtReturn:
		data, _ := st.Return(id)
		n = e.node("return", self)
		if data.Value.IsValid() {
			n.Kids, err = e.exprs([]ast.ExprID{data.Value})
		}
	case ast.StmtBlock:
		data, _ := st.Block(id)
		n = e.node("block", self)
		for _, c := range data.Stmts {
			var k *Node
			if k, err = e.stmt(c); err != nil {
				break
			}
			n.Kids = append(n.Kids, k)
		}
	case ast.StmtFunc:
		data, _ := st.Func(id)
		n = e.node("func", self)
		n.Name = e.b.Name(data.Name)
		n.Params = e.strs(data.Params)
		n.Async, n.Generator = data.Async, data.Generator
		var body *Node
		body, err = e.stmt(data.Body)
		n.Kids = []*Node{body}
	case ast.StmtIf:
		data, _ := st.If(id)
		n = e.node("if", self)
		var cond, then *Node
		if cond, err = e.expr(data.Cond); err == nil {
			then, err = e.stmt(data.Then)
		}
		n.Kids = []*Node{cond, then}
		if err == nil && data.Else.IsValid() {
			var els *Node
			els, err = e.stmt(data.Else)
			n.Kids = append(n.Kids, els)
		}
	case ast.StmtEmpty:
		n = e.node("empty", self)
	default:
		return nil, fmt.Errorf("encode: statement kind %s has no document form", s.Kind)
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}
