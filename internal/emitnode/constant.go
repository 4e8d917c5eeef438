package emitnode

import (
	"fmt"
	"strconv"

	"downlevel/internal/ast"
)

// Constant is a statically known value substituted for an access expression.
type Constant struct {
	IsString bool
	Str      string
	Num      float64
}

func NumberConstant(v float64) Constant { return Constant{Num: v} }
func StringConstant(s string) Constant  { return Constant{IsString: true, Str: s} }

// JS renders the constant as a JavaScript literal.
func (c Constant) JS() string {
	if c.IsString {
		return strconv.Quote(c.Str)
	}
	return strconv.FormatFloat(c.Num, 'g', -1, 64)
}

func (t *Table) ConstantValue(n ast.Node) (Constant, bool) {
	if m := t.metas[n]; m != nil && m.Constant != nil {
		return *m.Constant, true
	}
	return Constant{}, false
}

// SetConstantValue records c for a property or element access. Other nodes
// cannot carry a constant.
func (t *Table) SetConstantValue(n ast.Node, c Constant) error {
	if !t.loc.IsAccess(n) {
		return fmt.Errorf("emitnode: constant value on non-access node %s", n)
	}
	t.GetOrCreate(n).Constant = &c
	return nil
}
