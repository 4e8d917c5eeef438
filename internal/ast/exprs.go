package ast

import (
	"fmt"

	"downlevel/internal/source"
)

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena        *Arena[Expr]
	Idents       *Arena[ExprIdentData]
	Literals     *Arena[ExprLiteralData]
	Properties   *Arena[ExprPropertyData]
	Indices      *Arena[ExprIndexData]
	Calls        *Arena[ExprCallData]
	Binaries     *Arena[ExprBinaryData]
	Unaries      *Arena[ExprUnaryData]
	Conds        *Arena[ExprConditionalData]
	Parens       *Arena[ExprParenData]
	Templates    *Arena[ExprTaggedTemplateData]
	Functions    *Arena[ExprFunctionData]
	Objects      *Arena[ExprObjectData]
	Arrays       *Arena[ExprArrayData]
	stmts        *Stmts
	synthesizing bool
}

// NewExprs creates a new Exprs with per-kind arenas preallocated using capHint as the initial capacity.
// If capHint is 0, a default capacity of 1<<8 is used.
func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	small := capHint/4 + 1
	return &Exprs{
		Arena:      NewArena[Expr](capHint),
		Idents:     NewArena[ExprIdentData](capHint),
		Literals:   NewArena[ExprLiteralData](small),
		Properties: NewArena[ExprPropertyData](small),
		Indices:    NewArena[ExprIndexData](small),
		Calls:      NewArena[ExprCallData](small),
		Binaries:   NewArena[ExprBinaryData](small),
		Unaries:    NewArena[ExprUnaryData](small),
		Conds:      NewArena[ExprConditionalData](small),
		Parens:     NewArena[ExprParenData](small),
		Templates:  NewArena[ExprTaggedTemplateData](1),
		Functions:  NewArena[ExprFunctionData](small),
		Objects:    NewArena[ExprObjectData](small),
		Arrays:     NewArena[ExprArrayData](small),
	}
}

// SetSynthesizing switches allocation mode. While on, every new node is
// flagged NodeSynthesized. Transformations turn it on; decoders leave it off.
func (e *Exprs) SetSynthesizing(on bool) {
	e.synthesizing = on
}

func (e *Exprs) new(kind ExprKind, span source.Span, flags NodeFlags, tf TransformFlags, payload PayloadID) ExprID {
	if e.synthesizing {
		flags |= NodeSynthesized
	}
	return ExprID(e.Arena.Allocate(Expr{
		Kind:      kind,
		Span:      span,
		Flags:     flags,
		Transform: tf,
		Payload:   payload,
	}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

// MustGet is Get for ids the caller already validated.
func (e *Exprs) MustGet(id ExprID) *Expr {
	expr := e.Get(id)
	if expr == nil {
		panic(fmt.Sprintf("ast: unknown expression id %d", id))
	}
	return expr
}

// Kind returns the kind of id, or 0 for NoExprID.
func (e *Exprs) Kind(id ExprID) ExprKind {
	if expr := e.Get(id); expr != nil {
		return expr.Kind
	}
	return 0
}

func (e *Exprs) transformOf(ids ...ExprID) TransformFlags {
	var tf TransformFlags
	for _, id := range ids {
		if expr := e.Get(id); expr != nil {
			tf |= expr.Transform
		}
	}
	return tf
}

// SetOriginal links a synthesized node to the parse-tree node it replaces.
// Parse-tree nodes are immutable, so linking them is a programming error.
func (e *Exprs) SetOriginal(id, original ExprID) ExprID {
	expr := e.MustGet(id)
	if expr.Flags&NodeSynthesized == 0 {
		panic(fmt.Sprintf("ast: SetOriginal on parse-tree node %d", id))
	}
	expr.Original = original
	return id
}

// NewIdent creates a new identifier expression.
func (e *Exprs) NewIdent(span source.Span, name source.StringID) ExprID {
	payload := e.Idents.Allocate(ExprIdentData{Name: name})
	return e.new(ExprIdent, span, 0, 0, PayloadID(payload))
}

// Ident returns the identifier data for the given expression ID.
func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIdent {
		return nil, false
	}
	return e.Idents.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewThis(span source.Span) ExprID {
	return e.new(ExprThis, span, 0, ContainsLexicalThis, NoPayloadID)
}

func (e *Exprs) NewSuper(span source.Span) ExprID {
	return e.new(ExprSuper, span, 0, ContainsLexicalThis, NoPayloadID)
}

// NewLiteral creates a new literal expression.
func (e *Exprs) NewLiteral(span source.Span, kind ExprLitKind, value source.StringID) ExprID {
	payload := e.Literals.Allocate(ExprLiteralData{Kind: kind, Value: value})
	return e.new(ExprLit, span, 0, 0, PayloadID(payload))
}

// Literal returns the literal data for the given expression ID.
func (e *Exprs) Literal(id ExprID) (*ExprLiteralData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprLit {
		return nil, false
	}
	return e.Literals.Get(uint32(expr.Payload)), true
}

// Any chain link marks the subtree, so malformed chains still reach the
// lowering pass and surface as defects.
func chainTransform(chain NodeFlags) TransformFlags {
	if chain&(NodeOptionalChain|NodeQuestionDot) != 0 {
		return ContainsOptionalChain
	}
	return 0
}

// NewProperty creates `target.name`. chain carries NodeOptionalChain/NodeQuestionDot for chain links.
func (e *Exprs) NewProperty(span source.Span, target ExprID, name source.StringID, chain NodeFlags) ExprID {
	payload := e.Properties.Allocate(ExprPropertyData{Target: target, Name: name})
	return e.new(ExprProperty, span, chain, e.transformOf(target)|chainTransform(chain), PayloadID(payload))
}

func (e *Exprs) Property(id ExprID) (*ExprPropertyData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprProperty {
		return nil, false
	}
	return e.Properties.Get(uint32(expr.Payload)), true
}

// NewIndex creates `target[index]`.
func (e *Exprs) NewIndex(span source.Span, target, index ExprID, chain NodeFlags) ExprID {
	payload := e.Indices.Allocate(ExprIndexData{Target: target, Index: index})
	return e.new(ExprIndex, span, chain, e.transformOf(target, index)|chainTransform(chain), PayloadID(payload))
}

func (e *Exprs) Index(id ExprID) (*ExprIndexData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIndex {
		return nil, false
	}
	return e.Indices.Get(uint32(expr.Payload)), true
}

// NewCall creates `callee(args...)`.
func (e *Exprs) NewCall(span source.Span, callee ExprID, args []ExprID, chain NodeFlags) ExprID {
	payload := e.Calls.Allocate(ExprCallData{Callee: callee, Args: args})
	tf := e.transformOf(callee) | e.transformOf(args...) | chainTransform(chain)
	return e.new(ExprCall, span, chain, tf, PayloadID(payload))
}

func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprCall {
		return nil, false
	}
	return e.Calls.Get(uint32(expr.Payload)), true
}

// NewBinary creates a new binary expression.
func (e *Exprs) NewBinary(span source.Span, op ExprBinaryOp, left, right ExprID) ExprID {
	payload := e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right})
	tf := e.transformOf(left, right)
	if op == ExprBinaryNullishCoalescing {
		tf |= ContainsNullish
	}
	return e.new(ExprBinary, span, 0, tf, PayloadID(payload))
}

// Binary returns the binary data for the given expression ID.
func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprBinary {
		return nil, false
	}
	return e.Binaries.Get(uint32(expr.Payload)), true
}

// NewUnary creates a new unary expression.
func (e *Exprs) NewUnary(span source.Span, op ExprUnaryOp, operand ExprID) ExprID {
	payload := e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand})
	return e.new(ExprUnary, span, 0, e.transformOf(operand), PayloadID(payload))
}

// Unary returns the unary data for the given expression ID.
func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprUnary {
		return nil, false
	}
	return e.Unaries.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewConditional(span source.Span, test, yes, no ExprID) ExprID {
	payload := e.Conds.Allocate(ExprConditionalData{Test: test, Yes: yes, No: no})
	return e.new(ExprConditional, span, 0, e.transformOf(test, yes, no), PayloadID(payload))
}

func (e *Exprs) Conditional(id ExprID) (*ExprConditionalData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprConditional {
		return nil, false
	}
	return e.Conds.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewParen(span source.Span, inner ExprID) ExprID {
	payload := e.Parens.Allocate(ExprParenData{Inner: inner})
	return e.new(ExprParen, span, 0, e.transformOf(inner), PayloadID(payload))
}

func (e *Exprs) Paren(id ExprID) (*ExprParenData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprParen {
		return nil, false
	}
	return e.Parens.Get(uint32(expr.Payload)), true
}

// SkipParens unwraps any number of parenthesized expressions.
func (e *Exprs) SkipParens(id ExprID) ExprID {
	for {
		p, ok := e.Paren(id)
		if !ok {
			return id
		}
		id = p.Inner
	}
}

// NewTaggedTemplate creates tag`raw`. A tag inside an optional chain keeps the chain flag.
func (e *Exprs) NewTaggedTemplate(span source.Span, tag ExprID, raw source.StringID, chain NodeFlags) ExprID {
	payload := e.Templates.Allocate(ExprTaggedTemplateData{Tag: tag, Raw: raw})
	return e.new(ExprTaggedTemplate, span, chain&NodeOptionalChain, e.transformOf(tag), PayloadID(payload))
}

func (e *Exprs) TaggedTemplate(id ExprID) (*ExprTaggedTemplateData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprTaggedTemplate {
		return nil, false
	}
	return e.Templates.Get(uint32(expr.Payload)), true
}

// NewFunction creates a function or arrow expression around an existing block body.
func (e *Exprs) NewFunction(span source.Span, data ExprFunctionData) ExprID {
	payload := e.Functions.Allocate(data)
	var tf TransformFlags
	if e.stmts != nil {
		if body := e.stmts.Get(data.Body); body != nil {
			tf = body.Transform
		}
	}
	if !data.Arrow {
		tf &^= scopedTransformFlags
	}
	return e.new(ExprFunction, span, 0, tf, PayloadID(payload))
}

func (e *Exprs) Function(id ExprID) (*ExprFunctionData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprFunction {
		return nil, false
	}
	return e.Functions.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewObject(span source.Span, props []ObjectProp) ExprID {
	payload := e.Objects.Allocate(ExprObjectData{Props: props})
	var tf TransformFlags
	for _, p := range props {
		tf |= e.transformOf(p.Value)
	}
	return e.new(ExprObject, span, 0, tf, PayloadID(payload))
}

func (e *Exprs) Object(id ExprID) (*ExprObjectData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprObject {
		return nil, false
	}
	return e.Objects.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewArray(span source.Span, elems []ExprID) ExprID {
	payload := e.Arrays.Allocate(ExprArrayData{Elems: elems})
	return e.new(ExprArray, span, 0, e.transformOf(elems...), PayloadID(payload))
}

func (e *Exprs) Array(id ExprID) (*ExprArrayData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprArray {
		return nil, false
	}
	return e.Arrays.Get(uint32(expr.Payload)), true
}
