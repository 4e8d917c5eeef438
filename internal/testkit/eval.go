package testkit

import (
	"math"
	"strconv"

	"downlevel/internal/ast"
	"downlevel/internal/source"
)

// maxCallDepth bounds recursion of evaluated programs.
const maxCallDepth = 256

// Call records one invocation of a host function.
type Call struct {
	Name string
	This Value
	Args []Value
}

type binding struct {
	v        Value
	constant bool
}

type env struct {
	vars    map[string]*binding
	parent  *env
	fnScope bool
	hasThis bool
	this    Value
}

func newEnv(parent *env, fnScope bool) *env {
	return &env{vars: make(map[string]*binding), parent: parent, fnScope: fnScope}
}

func (e *env) lookup(name string) *binding {
	for s := e; s != nil; s = s.parent {
		if b := s.vars[name]; b != nil {
			return b
		}
	}
	return nil
}

func (e *env) function() *env {
	s := e
	for !s.fnScope {
		s = s.parent
	}
	return s
}

func (e *env) thisValue() Value {
	for s := e; s != nil; s = s.parent {
		if s.hasThis {
			return s.this
		}
	}
	return Undefined
}

type closure struct {
	params []string
	body   ast.StmtID
	arrow  bool
	env    *env
}

// Interp is a small reference evaluator for the tree language. It runs
// both original and lowered trees, so tests can compare their behaviour
// and count side effects through host functions.
type Interp struct {
	b      *ast.Builder
	global *env
	Calls  []Call
	depth  int
}

func NewInterp(b *ast.Builder) *Interp {
	g := newEnv(nil, true)
	g.hasThis = true
	return &Interp{b: b, global: g}
}

// Define binds a global variable.
func (in *Interp) Define(name string, v Value) {
	in.global.vars[name] = &binding{v: v}
}

// Lookup reads a global variable.
func (in *Interp) Lookup(name string) (Value, bool) {
	if b := in.global.vars[name]; b != nil {
		return b.v, true
	}
	return Undefined, false
}

// Func creates a recorded host function. A nil fn returns undefined.
func (in *Interp) Func(name string, fn HostFunc) Value {
	if fn == nil {
		fn = func(Value, []Value) (Value, error) { return Undefined, nil }
	}
	o := NewObject()
	o.Name = name
	o.host = fn
	o.record = true
	return ObjectValue(o)
}

// Host creates a recorded host function and binds it globally.
func (in *Interp) Host(name string, fn HostFunc) Value {
	v := in.Func(name, fn)
	in.Define(name, v)
	return v
}

// Count returns how many times the host function name was called.
func (in *Interp) Count(name string) int {
	n := 0
	for _, c := range in.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

func (in *Interp) CallsTo(name string) []Call {
	var out []Call
	for _, c := range in.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Run executes stmts in the global scope and returns the value of the last
// expression statement.
func (in *Interp) Run(stmts []ast.StmtID) (Value, error) {
	in.hoist(stmts, in.global, in.global)
	last := Undefined
	for _, id := range stmts {
		if data, ok := in.b.Stmts.Expr(id); ok {
			v, err := in.expr(data.Expr, in.global)
			if err != nil {
				return Undefined, err
			}
			last = v
			continue
		}
		if _, _, err := in.exec(id, in.global); err != nil {
			return Undefined, err
		}
	}
	return last, nil
}

// EvalExpr evaluates a single expression in the global scope.
func (in *Interp) EvalExpr(id ast.ExprID) (Value, error) {
	return in.expr(id, in.global)
}

// hoist declares var names and function declarations of stmts. Vars go to
// fn, functions to block.
func (in *Interp) hoist(stmts []ast.StmtID, block, fn *env) {
	for _, id := range stmts {
		in.hoistVars(id, fn)
		if data, ok := in.b.Stmts.Func(id); ok {
			block.vars[in.b.Name(data.Name)] = &binding{v: in.closure(data.Params, data.Body, false, block, in.b.Name(data.Name))}
		}
	}
}

func (in *Interp) hoistVars(id ast.StmtID, fn *env) {
	switch in.b.Stmts.Get(id).Kind {
	case ast.StmtVar:
		data, _ := in.b.Stmts.Var(id)
		if data.Kind != ast.VarVar {
			return
		}
		for _, d := range data.Decls {
			name := in.b.Name(d.Name)
			if fn.vars[name] == nil {
				fn.vars[name] = &binding{v: Undefined}
			}
		}
	case ast.StmtBlock:
		data, _ := in.b.Stmts.Block(id)
		for _, st := range data.Stmts {
			in.hoistVars(st, fn)
		}
	case ast.StmtIf:
		data, _ := in.b.Stmts.If(id)
		in.hoistVars(data.Then, fn)
		if data.Else.IsValid() {
			in.hoistVars(data.Else, fn)
		}
	}
}

func (in *Interp) closure(params []source.StringID, body ast.StmtID, arrow bool, scope *env, name string) Value {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = in.b.Name(p)
	}
	o := NewObject()
	o.Name = name
	o.fn = &closure{params: names, body: body, arrow: arrow, env: scope}
	return ObjectValue(o)
}

type flow uint8

const (
	flowNormal flow = iota
	flowReturn
)

func (in *Interp) exec(id ast.StmtID, e *env) (flow, Value, error) {
	st := in.b.Stmts.Get(id)
	switch st.Kind {
	case ast.StmtExpr:
		data, _ := in.b.Stmts.Expr(id)
		_, err := in.expr(data.Expr, e)
		return flowNormal, Undefined, err
	case ast.StmtVar:
		data, _ := in.b.Stmts.Var(id)
		for _, d := range data.Decls {
			name := in.b.Name(d.Name)
			v := Undefined
			if d.Init.IsValid() {
				var err error
				if v, err = in.expr(d.Init, e); err != nil {
					return flowNormal, Undefined, err
				}
			}
			if data.Kind == ast.VarVar {
				b := e.lookup(name)
				if b == nil {
					b = &binding{}
					e.function().vars[name] = b
				}
				if d.Init.IsValid() {
					b.v = v
				}
				continue
			}
			e.vars[name] = &binding{v: v, constant: data.Kind == ast.VarConst}
		}
		return flowNormal, Undefined, nil
	case ast.StmtReturn:
		data, _ := in.b.Stmts.Return(id)
		if !data.Value.IsValid() {
			return flowReturn, Undefined, nil
		}
		v, err := in.expr(data.Value, e)
		return flowReturn, v, err
	case ast.StmtBlock:
		data, _ := in.b.Stmts.Block(id)
		inner := newEnv(e, false)
		in.hoist(data.Stmts, inner, e.function())
		return in.execList(data.Stmts, inner)
	case ast.StmtFunc:
		return flowNormal, Undefined, nil
	case ast.StmtIf:
		data, _ := in.b.Stmts.If(id)
		cond, err := in.expr(data.Cond, e)
		if err != nil {
			return flowNormal, Undefined, err
		}
		if cond.Truthy() {
			return in.exec(data.Then, e)
		}
		if data.Else.IsValid() {
			return in.exec(data.Else, e)
		}
		return flowNormal, Undefined, nil
	case ast.StmtEmpty:
		return flowNormal, Undefined, nil
	}
	return flowNormal, Undefined, &Throw{Kind: "SyntaxError", Msg: "unsupported statement " + st.Kind.String()}
}

func (in *Interp) execList(stmts []ast.StmtID, e *env) (flow, Value, error) {
	for _, id := range stmts {
		f, v, err := in.exec(id, e)
		if err != nil || f == flowReturn {
			return f, v, err
		}
	}
	return flowNormal, Undefined, nil
}

func (in *Interp) callFunction(fn Value, this Value, args []Value) (Value, error) {
	if !fn.IsFunction() {
		return Undefined, typeError("%s is not a function", fn)
	}
	o := fn.Obj
	if o.record {
		in.Calls = append(in.Calls, Call{Name: o.Name, This: this, Args: args})
	}
	if in.depth >= maxCallDepth {
		return Undefined, &Throw{Kind: "RangeError", Msg: "maximum call stack size exceeded"}
	}
	in.depth++
	defer func() { in.depth-- }()
	if o.host != nil {
		return o.host(this, args)
	}

	c := o.fn
	scope := newEnv(c.env, true)
	if !c.arrow {
		scope.hasThis = true
		scope.this = this
	}
	for i, p := range c.params {
		v := Undefined
		if i < len(args) {
			v = args[i]
		}
		scope.vars[p] = &binding{v: v}
	}
	body, _ := in.b.Stmts.Block(c.body)
	in.hoist(body.Stmts, scope, scope)
	_, v, err := in.execList(body.Stmts, scope)
	return v, err
}

func (in *Interp) expr(id ast.ExprID, e *env) (Value, error) {
	x := in.b.Exprs.Get(id)
	if x == nil {
		return Undefined, &Throw{Kind: "SyntaxError", Msg: "missing expression"}
	}
	switch x.Kind {
	case ast.ExprIdent:
		data, _ := in.b.Exprs.Ident(id)
		name := in.b.Name(data.Name)
		if b := e.lookup(name); b != nil {
			return b.v, nil
		}
		if name == "undefined" {
			return Undefined, nil
		}
		return Undefined, referenceError(name)
	case ast.ExprThis:
		return e.thisValue(), nil
	case ast.ExprSuper:
		return Undefined, &Throw{Kind: "SyntaxError", Msg: "super is not supported by the evaluator"}
	case ast.ExprLit:
		return in.literal(id), nil
	case ast.ExprProperty, ast.ExprIndex, ast.ExprCall, ast.ExprTaggedTemplate:
		v, short, err := in.link(id, e)
		if short {
			return Undefined, err
		}
		return v, err
	case ast.ExprBinary:
		return in.binary(id, e)
	case ast.ExprUnary:
		return in.unary(id, e)
	case ast.ExprConditional:
		data, _ := in.b.Exprs.Conditional(id)
		test, err := in.expr(data.Test, e)
		if err != nil {
			return Undefined, err
		}
		if test.Truthy() {
			return in.expr(data.Yes, e)
		}
		return in.expr(data.No, e)
	case ast.ExprParen:
		data, _ := in.b.Exprs.Paren(id)
		return in.expr(data.Inner, e)
	case ast.ExprFunction:
		data, _ := in.b.Exprs.Function(id)
		return in.closure(data.Params, data.Body, data.Arrow, e, in.b.Name(data.Name)), nil
	case ast.ExprObject:
		data, _ := in.b.Exprs.Object(id)
		o := NewObject()
		for _, p := range data.Props {
			v, err := in.expr(p.Value, e)
			if err != nil {
				return Undefined, err
			}
			o.Set(in.b.Name(p.Key), v)
		}
		return ObjectValue(o), nil
	case ast.ExprArray:
		data, _ := in.b.Exprs.Array(id)
		o := NewObject()
		for i, el := range data.Elems {
			v, err := in.expr(el, e)
			if err != nil {
				return Undefined, err
			}
			o.Set(strconv.Itoa(i), v)
		}
		o.Set("length", NumberValue(float64(len(data.Elems))))
		return ObjectValue(o), nil
	}
	return Undefined, &Throw{Kind: "SyntaxError", Msg: "unsupported expression " + x.Kind.String()}
}

func (in *Interp) literal(id ast.ExprID) Value {
	data, _ := in.b.Exprs.Literal(id)
	switch data.Kind {
	case ast.ExprLitNull:
		return NullValue
	case ast.ExprLitNumber:
		return NumberValue(toNumber(StringValue(in.b.Name(data.Value))))
	case ast.ExprLitString:
		return StringValue(in.b.Name(data.Value))
	case ast.ExprLitTrue:
		return BoolValue(true)
	case ast.ExprLitFalse:
		return BoolValue(false)
	}
	return Undefined
}

// link evaluates an access, call or tagged template. short reports that an
// optional link below it found a nullish value; the enclosing chain then
// yields undefined.
func (in *Interp) link(id ast.ExprID, e *env) (Value, bool, error) {
	x := in.b.Exprs.Get(id)
	switch x.Kind {
	case ast.ExprProperty, ast.ExprIndex:
		base, key, short, err := in.memberRef(id, x, e)
		if err != nil || short {
			return Undefined, short, err
		}
		v, err := in.getMember(base, key)
		return v, false, err
	case ast.ExprCall:
		data, _ := in.b.Exprs.Call(id)
		this, fn, short, err := in.calleeRef(x, data.Callee, e)
		if err != nil || short {
			return Undefined, short, err
		}
		if x.HasQuestionDot() && fn.IsNullish() {
			return Undefined, true, nil
		}
		args := make([]Value, len(data.Args))
		for i, a := range data.Args {
			if args[i], err = in.expr(a, e); err != nil {
				return Undefined, false, err
			}
		}
		v, err := in.callFunction(fn, this, args)
		return v, false, err
	case ast.ExprTaggedTemplate:
		data, _ := in.b.Exprs.TaggedTemplate(id)
		this, fn, short, err := in.calleeRef(x, data.Tag, e)
		if err != nil || short {
			return Undefined, short, err
		}
		strs := NewObject().Set("0", StringValue(in.b.Name(data.Raw))).Set("length", NumberValue(1))
		v, err := in.callFunction(fn, this, []Value{ObjectValue(strs)})
		return v, false, err
	}
	v, err := in.expr(id, e)
	return v, false, err
}

// operand evaluates the object of a link. Links of the same chain pass
// short-circuits through; anything else is an ordinary expression.
func (in *Interp) operand(parent *ast.Expr, target ast.ExprID, e *env) (Value, bool, error) {
	if parent.IsOptionalChain() && in.b.Exprs.Get(target).IsOptionalChain() {
		return in.link(target, e)
	}
	v, err := in.expr(target, e)
	return v, false, err
}

func (in *Interp) memberRef(id ast.ExprID, x *ast.Expr, e *env) (Value, string, bool, error) {
	var target ast.ExprID
	if data, ok := in.b.Exprs.Property(id); ok {
		target = data.Target
	} else {
		data, _ := in.b.Exprs.Index(id)
		target = data.Target
	}
	base, short, err := in.operand(x, target, e)
	if err != nil || short {
		return Undefined, "", short, err
	}
	if x.HasQuestionDot() && base.IsNullish() {
		return Undefined, "", true, nil
	}
	if data, ok := in.b.Exprs.Property(id); ok {
		return base, in.b.Name(data.Name), false, nil
	}
	data, _ := in.b.Exprs.Index(id)
	key, err := in.expr(data.Index, e)
	if err != nil {
		return Undefined, "", false, err
	}
	return base, toString(key), false, nil
}

// calleeRef evaluates a callee and its receiver. Parentheses keep the
// receiver: `(a.b)()` calls b with this = a.
func (in *Interp) calleeRef(call *ast.Expr, callee ast.ExprID, e *env) (this, fn Value, short bool, err error) {
	propagate := call.IsOptionalChain() && in.b.Exprs.Get(callee).IsOptionalChain()
	if !propagate {
		callee = in.b.Exprs.SkipParens(callee)
	}
	x := in.b.Exprs.Get(callee)
	switch x.Kind {
	case ast.ExprProperty, ast.ExprIndex:
		base, key, s, err := in.memberRef(callee, x, e)
		if err != nil {
			return Undefined, Undefined, false, err
		}
		if s {
			return Undefined, Undefined, propagate, nil
		}
		v, err := in.getMember(base, key)
		return base, v, false, err
	}
	if propagate {
		v, s, err := in.link(callee, e)
		return Undefined, v, s, err
	}
	v, err := in.expr(callee, e)
	return Undefined, v, false, err
}

func (in *Interp) getMember(base Value, key string) (Value, error) {
	switch base.Kind {
	case KindUndefined, KindNull:
		return Undefined, typeError("cannot read properties of %s (reading '%s')", base, key)
	case KindString:
		if key == "length" {
			return NumberValue(float64(len(base.Str))), nil
		}
		return Undefined, nil
	case KindObject:
		o := base.Obj
		if g := o.getters[key]; g != nil {
			return in.callFunction(ObjectValue(g), base, nil)
		}
		if v, ok := o.props[key]; ok {
			return v, nil
		}
		if key == "call" && o.callable() {
			return in.callIntrinsic(base), nil
		}
	}
	return Undefined, nil
}

// callIntrinsic is Function.prototype.call bound to fn.
func (in *Interp) callIntrinsic(fn Value) Value {
	o := NewObject()
	o.Name = fn.Obj.Name + ".call"
	o.host = func(_ Value, args []Value) (Value, error) {
		this := Undefined
		if len(args) > 0 {
			this, args = args[0], args[1:]
		}
		return in.callFunction(fn, this, args)
	}
	return ObjectValue(o)
}

func (in *Interp) assign(target ast.ExprID, rhs ast.ExprID, e *env) (Value, error) {
	target = in.b.Exprs.SkipParens(target)
	x := in.b.Exprs.Get(target)
	switch x.Kind {
	case ast.ExprIdent:
		data, _ := in.b.Exprs.Ident(target)
		name := in.b.Name(data.Name)
		b := e.lookup(name)
		if b == nil {
			return Undefined, referenceError(name)
		}
		v, err := in.expr(rhs, e)
		if err != nil {
			return Undefined, err
		}
		if b.constant {
			return Undefined, typeError("assignment to constant variable %s", name)
		}
		b.v = v
		return v, nil
	case ast.ExprProperty, ast.ExprIndex:
		base, key, _, err := in.memberRef(target, x, e)
		if err != nil {
			return Undefined, err
		}
		v, err := in.expr(rhs, e)
		if err != nil {
			return Undefined, err
		}
		if base.Kind != KindObject {
			return Undefined, typeError("cannot set properties of %s (setting '%s')", base, key)
		}
		base.Obj.Set(key, v)
		return v, nil
	}
	return Undefined, &Throw{Kind: "SyntaxError", Msg: "invalid assignment target"}
}

func (in *Interp) binary(id ast.ExprID, e *env) (Value, error) {
	data, _ := in.b.Exprs.Binary(id)
	switch data.Op {
	case ast.ExprBinaryAssign:
		return in.assign(data.Left, data.Right, e)
	case ast.ExprBinaryLogicalAnd, ast.ExprBinaryLogicalOr, ast.ExprBinaryNullishCoalescing:
		l, err := in.expr(data.Left, e)
		if err != nil {
			return Undefined, err
		}
		var takeLeft bool
		switch data.Op {
		case ast.ExprBinaryLogicalAnd:
			takeLeft = !l.Truthy()
		case ast.ExprBinaryLogicalOr:
			takeLeft = l.Truthy()
		default:
			takeLeft = !l.IsNullish()
		}
		if takeLeft {
			return l, nil
		}
		return in.expr(data.Right, e)
	}

	l, err := in.expr(data.Left, e)
	if err != nil {
		return Undefined, err
	}
	r, err := in.expr(data.Right, e)
	if err != nil {
		return Undefined, err
	}
	switch data.Op {
	case ast.ExprBinaryComma:
		return r, nil
	case ast.ExprBinaryAdd:
		if l.Kind == KindString || r.Kind == KindString || l.Kind == KindObject || r.Kind == KindObject {
			return StringValue(toString(l) + toString(r)), nil
		}
		return NumberValue(toNumber(l) + toNumber(r)), nil
	case ast.ExprBinarySub:
		return NumberValue(toNumber(l) - toNumber(r)), nil
	case ast.ExprBinaryMul:
		return NumberValue(toNumber(l) * toNumber(r)), nil
	case ast.ExprBinaryDiv:
		return NumberValue(toNumber(l) / toNumber(r)), nil
	case ast.ExprBinaryMod:
		return NumberValue(math.Mod(toNumber(l), toNumber(r))), nil
	case ast.ExprBinaryStrictEq:
		return BoolValue(StrictEquals(l, r)), nil
	case ast.ExprBinaryStrictNotEq:
		return BoolValue(!StrictEquals(l, r)), nil
	case ast.ExprBinaryLooseEq:
		return BoolValue(LooseEquals(l, r)), nil
	case ast.ExprBinaryLooseNotEq:
		return BoolValue(!LooseEquals(l, r)), nil
	case ast.ExprBinaryLess, ast.ExprBinaryLessEq, ast.ExprBinaryGreater, ast.ExprBinaryGreaterEq:
		return BoolValue(compare(data.Op, l, r)), nil
	case ast.ExprBinaryIn:
		if r.Kind != KindObject {
			return Undefined, typeError("cannot use 'in' operator on %s", r)
		}
		return BoolValue(r.Obj.Has(toString(l))), nil
	}
	return Undefined, &Throw{Kind: "SyntaxError", Msg: "unsupported operator " + data.Op.String()}
}

func compare(op ast.ExprBinaryOp, l, r Value) bool {
	if l.Kind == KindString && r.Kind == KindString {
		switch op {
		case ast.ExprBinaryLess:
			return l.Str < r.Str
		case ast.ExprBinaryLessEq:
			return l.Str <= r.Str
		case ast.ExprBinaryGreater:
			return l.Str > r.Str
		default:
			return l.Str >= r.Str
		}
	}
	a, b := toNumber(l), toNumber(r)
	switch op {
	case ast.ExprBinaryLess:
		return a < b
	case ast.ExprBinaryLessEq:
		return a <= b
	case ast.ExprBinaryGreater:
		return a > b
	default:
		return a >= b
	}
}

func (in *Interp) unary(id ast.ExprID, e *env) (Value, error) {
	data, _ := in.b.Exprs.Unary(id)
	switch data.Op {
	case ast.ExprUnaryDelete:
		return in.delete(data.Operand, e)
	case ast.ExprUnaryTypeof:
		if ident, ok := in.b.Exprs.Ident(data.Operand); ok && e.lookup(in.b.Name(ident.Name)) == nil {
			return StringValue("undefined"), nil
		}
	}
	v, err := in.expr(data.Operand, e)
	if err != nil {
		return Undefined, err
	}
	switch data.Op {
	case ast.ExprUnaryVoid:
		return Undefined, nil
	case ast.ExprUnaryTypeof:
		return StringValue(v.TypeOf()), nil
	case ast.ExprUnaryNot:
		return BoolValue(!v.Truthy()), nil
	case ast.ExprUnaryNeg:
		return NumberValue(-toNumber(v)), nil
	case ast.ExprUnaryPos:
		return NumberValue(toNumber(v)), nil
	}
	return Undefined, &Throw{Kind: "SyntaxError", Msg: "unsupported operator " + data.Op.String()}
}

// delete removes a property. A short-circuited optional operand deletes
// nothing and yields true.
func (in *Interp) delete(operand ast.ExprID, e *env) (Value, error) {
	target := in.b.Exprs.SkipParens(operand)
	x := in.b.Exprs.Get(target)
	if x.Kind != ast.ExprProperty && x.Kind != ast.ExprIndex {
		_, err := in.expr(operand, e)
		return BoolValue(true), err
	}
	base, key, short, err := in.memberRef(target, x, e)
	if err != nil || short {
		return BoolValue(true), err
	}
	switch base.Kind {
	case KindUndefined, KindNull:
		return Undefined, typeError("cannot convert %s to object", base)
	case KindObject:
		base.Obj.Delete(key)
	}
	return BoolValue(true), nil
}
