package ast

// NodeFlags are structural facts fixed at construction time.
type NodeFlags uint16

const (
	// NodeSynthesized marks nodes created by a transformation rather than the parser.
	NodeSynthesized NodeFlags = 1 << iota
	// NodeOptionalChain marks every link of an optional chain.
	NodeOptionalChain
	// NodeQuestionDot marks the link that carries the `?.` token.
	NodeQuestionDot
)

// ChainLink is the flag set of a link written with `?.`.
const ChainLink = NodeOptionalChain | NodeQuestionDot

// TransformFlags summarise which newer constructs a subtree contains.
// A node's value always includes the values of all its children.
type TransformFlags uint8

const (
	ContainsOptionalChain TransformFlags = 1 << iota
	ContainsNullish
	// ContainsLexicalThis is set when `this` or `super` appears outside nested functions.
	ContainsLexicalThis
)

// ContainsES2020 covers everything the ES2020 lowering pass rewrites.
const ContainsES2020 = ContainsOptionalChain | ContainsNullish

// scopedTransformFlags do not propagate through function boundaries.
const scopedTransformFlags = ContainsLexicalThis
