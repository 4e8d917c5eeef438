package printer

import "downlevel/internal/ast"

// level is an operator precedence. An expression printed at level L is
// wrapped in parentheses when its own precedence is not above L.
type level uint8

const (
	lLowest level = iota
	lComma
	lSpread
	lYield
	lAssign
	lConditional
	lNullishCoalescing
	lLogicalOr
	lLogicalAnd
	lBitwiseOr
	lBitwiseXor
	lBitwiseAnd
	lEquals
	lCompare
	lShift
	lAdd
	lMultiply
	lExponentiation
	lPrefix
	lPostfix
	lNew
	lCall
	lMember
)

type opEntry struct {
	level     level
	isKeyword bool
	rightAsoc bool
}

var binaryOps = [...]opEntry{
	ast.ExprBinaryAdd:               {level: lAdd},
	ast.ExprBinarySub:               {level: lAdd},
	ast.ExprBinaryMul:               {level: lMultiply},
	ast.ExprBinaryDiv:               {level: lMultiply},
	ast.ExprBinaryMod:               {level: lMultiply},
	ast.ExprBinaryLooseEq:           {level: lEquals},
	ast.ExprBinaryLooseNotEq:        {level: lEquals},
	ast.ExprBinaryStrictEq:          {level: lEquals},
	ast.ExprBinaryStrictNotEq:       {level: lEquals},
	ast.ExprBinaryLess:              {level: lCompare},
	ast.ExprBinaryLessEq:            {level: lCompare},
	ast.ExprBinaryGreater:           {level: lCompare},
	ast.ExprBinaryGreaterEq:         {level: lCompare},
	ast.ExprBinaryIn:                {level: lCompare, isKeyword: true},
	ast.ExprBinaryInstanceof:        {level: lCompare, isKeyword: true},
	ast.ExprBinaryLogicalAnd:        {level: lLogicalAnd},
	ast.ExprBinaryLogicalOr:         {level: lLogicalOr},
	ast.ExprBinaryNullishCoalescing: {level: lNullishCoalescing},
	ast.ExprBinaryAssign:            {level: lAssign, rightAsoc: true},
	ast.ExprBinaryComma:             {level: lComma},
}

func binaryEntry(op ast.ExprBinaryOp) opEntry {
	if int(op) < len(binaryOps) && binaryOps[op].level != lLowest {
		return binaryOps[op]
	}
	return opEntry{level: lLowest}
}
