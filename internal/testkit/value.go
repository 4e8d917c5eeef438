package testkit

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
)

// Value is a JavaScript value of the reference evaluator.
type Value struct {
	Kind Kind
	Bool bool
	Num  float64
	Str  string
	Obj  *Object
}

var (
	Undefined = Value{Kind: KindUndefined}
	NullValue = Value{Kind: KindNull}
)

func NumberValue(f float64) Value { return Value{Kind: KindNumber, Num: f} }
func StringValue(s string) Value  { return Value{Kind: KindString, Str: s} }
func BoolValue(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func ObjectValue(o *Object) Value { return Value{Kind: KindObject, Obj: o} }

func (v Value) IsNullish() bool {
	return v.Kind == KindUndefined || v.Kind == KindNull
}

func (v Value) IsFunction() bool {
	return v.Kind == KindObject && v.Obj.callable()
}

func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Num != 0 && !math.IsNaN(v.Num)
	case KindString:
		return v.Str != ""
	case KindObject:
		return true
	}
	return false
}

func (v Value) TypeOf() string {
	switch v.Kind {
	case KindUndefined:
		return "undefined"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		if v.Obj.callable() {
			return "function"
		}
	}
	return "object"
}

// String renders v for test failure messages.
func (v Value) String() string {
	switch v.Kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNumber:
		return formatNumber(v.Num)
	case KindString:
		return strconv.Quote(v.Str)
	}
	if v.Obj.callable() {
		return "[function " + v.Obj.Name + "]"
	}
	return "[object]"
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toNumber(v Value) float64 {
	switch v.Kind {
	case KindNull:
		return 0
	case KindBool:
		if v.Bool {
			return 1
		}
		return 0
	case KindNumber:
		return v.Num
	case KindString:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

func toString(v Value) string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return formatNumber(v.Num)
	case KindObject:
		if v.Obj.callable() {
			return "function " + v.Obj.Name + "() { [native code] }"
		}
		return "[object Object]"
	}
	return v.String()
}

// StrictEquals implements `===`.
func StrictEquals(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		return a.Num == b.Num
	case KindString:
		return a.Str == b.Str
	case KindObject:
		return a.Obj == b.Obj
	}
	return true
}

// LooseEquals implements `==` for primitives and object identity.
func LooseEquals(a, b Value) bool {
	if a.Kind == b.Kind {
		return StrictEquals(a, b)
	}
	if a.IsNullish() || b.IsNullish() {
		return a.IsNullish() && b.IsNullish()
	}
	if a.Kind == KindObject || b.Kind == KindObject {
		return false
	}
	return toNumber(a) == toNumber(b)
}

// HostFunc implements a function provided by the test.
type HostFunc func(this Value, args []Value) (Value, error)

// Object is a property bag, optionally callable.
type Object struct {
	Name    string
	props   map[string]Value
	keys    []string
	getters map[string]*Object
	host    HostFunc
	fn      *closure
	record  bool
}

func NewObject() *Object {
	return &Object{props: make(map[string]Value)}
}

func (o *Object) callable() bool {
	return o != nil && (o.host != nil || o.fn != nil)
}

// Set defines or replaces an own property and returns o.
func (o *Object) Set(key string, v Value) *Object {
	if _, ok := o.props[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.props[key] = v
	return o
}

// SetGetter installs an accessor; fn must be a function value.
func (o *Object) SetGetter(key string, fn Value) *Object {
	if o.getters == nil {
		o.getters = make(map[string]*Object)
	}
	o.getters[key] = fn.Obj
	return o
}

func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.props[key]
	return v, ok
}

func (o *Object) Has(key string) bool {
	if _, ok := o.props[key]; ok {
		return true
	}
	_, ok := o.getters[key]
	return ok
}

// Delete removes an own property and reports whether it existed.
func (o *Object) Delete(key string) bool {
	delete(o.getters, key)
	if _, ok := o.props[key]; !ok {
		return false
	}
	delete(o.props, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns own property names in insertion order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Throw is a JavaScript exception raised during evaluation.
type Throw struct {
	Kind string
	Msg  string
}

func (t *Throw) Error() string { return t.Kind + ": " + t.Msg }

func typeError(format string, args ...any) error {
	return &Throw{Kind: "TypeError", Msg: fmt.Sprintf(format, args...)}
}

func referenceError(name string) error {
	return &Throw{Kind: "ReferenceError", Msg: name + " is not defined"}
}
