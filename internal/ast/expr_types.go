package ast

import (
	"downlevel/internal/source"
)

// ExprKind enumerates the different kinds of expressions.
type ExprKind uint8

const (
	// ExprIdent represents an identifier expression.
	ExprIdent ExprKind = iota + 1
	ExprThis
	ExprSuper
	// ExprLit represents a literal expression.
	ExprLit
	// ExprProperty is `target.name` or `target?.name`.
	ExprProperty
	// ExprIndex is `target[index]` or `target?.[index]`.
	ExprIndex
	// ExprCall is `callee(args)` or `callee?.(args)`.
	ExprCall
	ExprBinary
	ExprUnary
	// ExprConditional is `test ? yes : no`.
	ExprConditional
	// ExprParen represents a parenthesized expression kept from the source.
	ExprParen
	ExprTaggedTemplate
	ExprFunction
	ExprObject
	ExprArray
)

var exprKindNames = [...]string{
	ExprIdent:          "Ident",
	ExprThis:           "This",
	ExprSuper:          "Super",
	ExprLit:            "Lit",
	ExprProperty:       "Property",
	ExprIndex:          "Index",
	ExprCall:           "Call",
	ExprBinary:         "Binary",
	ExprUnary:          "Unary",
	ExprConditional:    "Conditional",
	ExprParen:          "Paren",
	ExprTaggedTemplate: "TaggedTemplate",
	ExprFunction:       "Function",
	ExprObject:         "Object",
	ExprArray:          "Array",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) && exprKindNames[k] != "" {
		return exprKindNames[k]
	}
	return "ExprKind(?)"
}

// Expr represents an expression node in the AST.
type Expr struct {
	Kind      ExprKind
	Span      source.Span
	Flags     NodeFlags
	Transform TransformFlags
	Payload   PayloadID
	// Original points at the parse-tree node a synthesized node replaces.
	Original ExprID
}

// IsOptionalChain reports whether the expression is a link of an optional chain.
func (e *Expr) IsOptionalChain() bool {
	return e != nil && e.Flags&NodeOptionalChain != 0
}

// HasQuestionDot reports whether this link was written with `?.`.
func (e *Expr) HasQuestionDot() bool {
	return e != nil && e.Flags&NodeQuestionDot != 0
}

// ExprLitKind enumerates literal kinds.
type ExprLitKind uint8

const (
	ExprLitNull ExprLitKind = iota + 1
	ExprLitUndefined
	ExprLitNumber
	ExprLitString
	ExprLitTrue
	ExprLitFalse
)

// ExprBinaryOp enumerates binary operator kinds.
type ExprBinaryOp uint8

const (
	ExprBinaryAdd ExprBinaryOp = iota + 1
	ExprBinarySub
	ExprBinaryMul
	ExprBinaryDiv
	ExprBinaryMod

	ExprBinaryLooseEq
	ExprBinaryLooseNotEq
	ExprBinaryStrictEq
	ExprBinaryStrictNotEq
	ExprBinaryLess
	ExprBinaryLessEq
	ExprBinaryGreater
	ExprBinaryGreaterEq
	ExprBinaryIn
	ExprBinaryInstanceof

	ExprBinaryLogicalAnd
	ExprBinaryLogicalOr
	// ExprBinaryNullishCoalescing represents the `??` operator.
	ExprBinaryNullishCoalescing

	ExprBinaryAssign
	ExprBinaryComma
)

var binaryOpText = [...]string{
	ExprBinaryAdd:               "+",
	ExprBinarySub:               "-",
	ExprBinaryMul:               "*",
	ExprBinaryDiv:               "/",
	ExprBinaryMod:               "%",
	ExprBinaryLooseEq:           "==",
	ExprBinaryLooseNotEq:        "!=",
	ExprBinaryStrictEq:          "===",
	ExprBinaryStrictNotEq:       "!==",
	ExprBinaryLess:              "<",
	ExprBinaryLessEq:            "<=",
	ExprBinaryGreater:           ">",
	ExprBinaryGreaterEq:         ">=",
	ExprBinaryIn:                "in",
	ExprBinaryInstanceof:        "instanceof",
	ExprBinaryLogicalAnd:        "&&",
	ExprBinaryLogicalOr:         "||",
	ExprBinaryNullishCoalescing: "??",
	ExprBinaryAssign:            "=",
	ExprBinaryComma:             ",",
}

// String returns the symbol representation of a binary operator.
func (op ExprBinaryOp) String() string {
	if int(op) < len(binaryOpText) && binaryOpText[op] != "" {
		return binaryOpText[op]
	}
	return "?op?"
}

// ExprUnaryOp enumerates prefix operators.
type ExprUnaryOp uint8

const (
	ExprUnaryDelete ExprUnaryOp = iota + 1
	ExprUnaryVoid
	ExprUnaryTypeof
	ExprUnaryNot
	ExprUnaryNeg
	ExprUnaryPos
)

func (op ExprUnaryOp) String() string {
	switch op {
	case ExprUnaryDelete:
		return "delete"
	case ExprUnaryVoid:
		return "void"
	case ExprUnaryTypeof:
		return "typeof"
	case ExprUnaryNot:
		return "!"
	case ExprUnaryNeg:
		return "-"
	case ExprUnaryPos:
		return "+"
	}
	return "?op?"
}

// IsKeyword reports whether the operator is spelled as a word.
func (op ExprUnaryOp) IsKeyword() bool {
	return op == ExprUnaryDelete || op == ExprUnaryVoid || op == ExprUnaryTypeof
}

type ExprIdentData struct {
	Name source.StringID
}

type ExprLiteralData struct {
	Kind ExprLitKind
	// Value holds the raw numeric text or the decoded string contents.
	Value source.StringID
}

type ExprPropertyData struct {
	Target ExprID
	Name   source.StringID
}

type ExprIndexData struct {
	Target ExprID
	Index  ExprID
}

type ExprCallData struct {
	Callee ExprID
	Args   []ExprID
}

type ExprBinaryData struct {
	Op    ExprBinaryOp
	Left  ExprID
	Right ExprID
}

type ExprUnaryData struct {
	Op      ExprUnaryOp
	Operand ExprID
}

type ExprConditionalData struct {
	Test ExprID
	Yes  ExprID
	No   ExprID
}

type ExprParenData struct {
	Inner ExprID
}

type ExprTaggedTemplateData struct {
	Tag ExprID
	// Raw is the template text between the backticks, substitutions excluded.
	Raw source.StringID
}

type ExprFunctionData struct {
	Name      source.StringID
	Params    []source.StringID
	Body      StmtID
	Arrow     bool
	Async     bool
	Generator bool
}

type ObjectProp struct {
	Key   source.StringID
	Value ExprID
}

type ExprObjectData struct {
	Props []ObjectProp
}

type ExprArrayData struct {
	Elems []ExprID
}
