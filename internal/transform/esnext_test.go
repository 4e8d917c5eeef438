package transform

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"downlevel/internal/ast"
	"downlevel/internal/emitnode"
	"downlevel/internal/printer"
	"downlevel/internal/testkit"
)

func lowerTree(t *testing.T, tr *testkit.Tree, opts Options) (*Output, *emitnode.Table) {
	t.Helper()
	table := emitnode.NewTable(tr.B)
	out, err := Lower(NewContext(tr.B, table, opts), tr.File)
	require.NoError(t, err)
	return out, table
}

func printOutput(t *testing.T, tr *testkit.Tree, table *emitnode.Table, out *Output) string {
	t.Helper()
	res, err := printer.Print(tr.B, table, tr.File, out.Stmts, printer.Options{})
	require.NoError(t, err)
	return string(res.Code)
}

func TestLowerPrintedForms(t *testing.T) {
	cases := []struct {
		name  string
		build func(tr *testkit.Tree) ast.ExprID
		want  string
	}{
		{
			name:  "property",
			build: func(tr *testkit.Tree) ast.ExprID { return tr.OptProp(tr.Id("a"), "b") },
			want:  "a === null || a === void 0 ? void 0 : a.b;\n",
		},
		{
			name:  "element",
			build: func(tr *testkit.Tree) ast.ExprID { return tr.OptIdx(tr.Id("a"), tr.Id("k")) },
			want:  "a === null || a === void 0 ? void 0 : a[k];\n",
		},
		{
			name:  "call",
			build: func(tr *testkit.Tree) ast.ExprID { return tr.OptCall(tr.Id("f"), tr.Num("1")) },
			want:  "f === null || f === void 0 ? void 0 : f(1);\n",
		},
		{
			name:  "captured base",
			build: func(tr *testkit.Tree) ast.ExprID { return tr.OptProp(tr.Call(tr.Id("f")), "b") },
			want:  "var _a;\n(_a = f()) === null || _a === void 0 ? void 0 : _a.b;\n",
		},
		{
			name: "long chain",
			build: func(tr *testkit.Tree) ast.ExprID {
				return tr.ChainCall(tr.ChainProp(tr.OptProp(tr.Id("a"), "b"), "c"))
			},
			want: "a === null || a === void 0 ? void 0 : a.b.c();\n",
		},
		{
			name:  "bound method call",
			build: func(tr *testkit.Tree) ast.ExprID { return tr.OptCall(tr.Prop(tr.Id("o"), "m"), tr.Id("x")) },
			want:  "var _a;\n(_a = o.m) === null || _a === void 0 ? void 0 : _a.call(o, x);\n",
		},
		{
			name: "bound call on computed receiver",
			build: func(tr *testkit.Tree) ast.ExprID {
				return tr.OptCall(tr.Prop(tr.Call(tr.Id("g")), "m"))
			},
			want: "var _a, _b;\n(_b = (_a = g()).m) === null || _b === void 0 ? void 0 : _b.call(_a);\n",
		},
		{
			name:  "super receiver",
			build: func(tr *testkit.Tree) ast.ExprID { return tr.OptCall(tr.Prop(tr.Super(), "m")) },
			want:  "var _a;\n(_a = super.m) === null || _a === void 0 ? void 0 : _a.call(this);\n",
		},
		{
			name: "parenthesised chain call",
			build: func(tr *testkit.Tree) ast.ExprID {
				return tr.Call(tr.Paren(tr.OptProp(tr.Id("a"), "b")))
			},
			want: "(a === null || a === void 0 ? void 0 : a.b).call(a);\n",
		},
		{
			name: "parenthesised chain access",
			build: func(tr *testkit.Tree) ast.ExprID {
				return tr.Prop(tr.Paren(tr.OptProp(tr.Id("a"), "b")), "c")
			},
			want: "(a === null || a === void 0 ? void 0 : a.b).c;\n",
		},
		{
			name:  "delete",
			build: func(tr *testkit.Tree) ast.ExprID { return tr.Delete(tr.OptProp(tr.Id("a"), "b")) },
			want:  "a === null || a === void 0 ? true : delete a.b;\n",
		},
		{
			name:  "nullish",
			build: func(tr *testkit.Tree) ast.ExprID { return tr.Nullish(tr.Id("a"), tr.Id("b")) },
			want:  "a !== null && a !== void 0 ? a : b;\n",
		},
		{
			name:  "nullish captured",
			build: func(tr *testkit.Tree) ast.ExprID { return tr.Nullish(tr.Call(tr.Id("f")), tr.Id("b")) },
			want:  "var _a;\n(_a = f()) !== null && _a !== void 0 ? _a : b;\n",
		},
		{
			name: "nullish over chain",
			build: func(tr *testkit.Tree) ast.ExprID {
				return tr.Nullish(tr.OptProp(tr.Id("a"), "b"), tr.Id("c"))
			},
			want: "var _a;\n(_a = a === null || a === void 0 ? void 0 : a.b) !== null && _a !== void 0 ? _a : c;\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := testkit.NewTree("case.js")
			tr.Push(tr.Expr(tc.build(tr)))
			out, table := lowerTree(t, tr, Options{})
			require.True(t, out.Changed)
			require.NoError(t, testkit.CheckNoES2020(tr.B, out.Stmts))
			assert.Equal(t, tc.want, printOutput(t, tr, table, out))
		})
	}
}

// evalBoth runs the original and the lowered program on fresh evaluators
// and returns both results.
func evalBoth(t *testing.T, tr *testkit.Tree, setup func(*testkit.Interp)) (orig, lowered testkit.Value, origIn, lowIn *testkit.Interp) {
	t.Helper()
	out, _ := lowerTree(t, tr, Options{})
	require.NoError(t, testkit.CheckNoES2020(tr.B, out.Stmts))

	origIn = testkit.NewInterp(tr.B)
	setup(origIn)
	orig, err := origIn.Run(tr.Stmts())
	require.NoError(t, err)

	lowIn = testkit.NewInterp(tr.B)
	setup(lowIn)
	lowered, err = lowIn.Run(out.Stmts)
	require.NoError(t, err)
	return orig, lowered, origIn, lowIn
}

func TestLowerEvaluatesBaseOnce(t *testing.T) {
	for _, nullA := range []bool{false, true} {
		tr := testkit.NewTree("once.js")
		// f().a?.b()
		tr.Push(tr.Expr(tr.ChainCall(tr.OptProp(tr.Prop(tr.Call(tr.Id("f")), "a"), "b"))))

		orig, lowered, origIn, lowIn := evalBoth(t, tr, func(in *testkit.Interp) {
			a := testkit.NullValue
			if !nullA {
				a = testkit.ObjectValue(testkit.NewObject().Set("b", in.Func("b", func(testkit.Value, []testkit.Value) (testkit.Value, error) {
					return testkit.NumberValue(42), nil
				})))
			}
			res := testkit.ObjectValue(testkit.NewObject().Set("a", a))
			in.Host("f", func(testkit.Value, []testkit.Value) (testkit.Value, error) { return res, nil })
		})
		assert.Equal(t, 1, origIn.Count("f"))
		assert.Equal(t, 1, lowIn.Count("f"), "nullA=%v", nullA)
		assert.True(t, testkit.StrictEquals(orig, lowered), "orig %s lowered %s", orig, lowered)
		if nullA {
			assert.Equal(t, testkit.KindUndefined, lowered.Kind)
			assert.Zero(t, lowIn.Count("b"))
		} else {
			assert.Equal(t, testkit.NumberValue(42), lowered)
			assert.Equal(t, 1, lowIn.Count("b"))
		}
	}
}

func TestLowerShortCircuits(t *testing.T) {
	tr := testkit.NewTree("short.js")
	// ({a: null}).a?.b.c
	obj := tr.Paren(tr.Obj(testkit.KV{Key: "a", Value: tr.Null()}))
	tr.Push(tr.Expr(tr.ChainProp(tr.OptProp(tr.Prop(obj, "a"), "b"), "c")))
	orig, lowered, _, _ := evalBoth(t, tr, func(*testkit.Interp) {})
	assert.Equal(t, testkit.KindUndefined, orig.Kind)
	assert.Equal(t, testkit.KindUndefined, lowered.Kind)

	// o.a?.b[k()] must not evaluate k() when o.a is undefined
	tr = testkit.NewTree("short2.js")
	tr.Push(tr.Expr(tr.ChainIdx(tr.OptProp(tr.Prop(tr.Id("o"), "a"), "b"), tr.Call(tr.Id("k")))))
	orig, lowered, origIn, lowIn := evalBoth(t, tr, func(in *testkit.Interp) {
		in.Define("o", testkit.ObjectValue(testkit.NewObject().Set("a", testkit.Undefined)))
		in.Host("k", nil)
	})
	assert.Equal(t, testkit.KindUndefined, orig.Kind)
	assert.Equal(t, testkit.KindUndefined, lowered.Kind)
	assert.Zero(t, origIn.Count("k"))
	assert.Zero(t, lowIn.Count("k"))
}

func TestLowerPreservesReceiver(t *testing.T) {
	cases := []struct {
		name  string
		build func(tr *testkit.Tree) ast.ExprID
	}{
		{"chain call", func(tr *testkit.Tree) ast.ExprID { return tr.ChainCall(tr.OptProp(tr.Id("obj"), "method")) }},
		{"optional call", func(tr *testkit.Tree) ast.ExprID { return tr.OptCall(tr.Prop(tr.Id("obj"), "method")) }},
		{"parenthesised", func(tr *testkit.Tree) ast.ExprID { return tr.Call(tr.Paren(tr.OptProp(tr.Id("obj"), "method"))) }},
		{"element", func(tr *testkit.Tree) ast.ExprID {
			return tr.OptCall(tr.Idx(tr.Id("obj"), tr.Str("method")))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := testkit.NewTree("recv.js")
			tr.Push(tr.Expr(tc.build(tr)))
			obj := testkit.NewObject()
			_, _, _, lowIn := evalBoth(t, tr, func(in *testkit.Interp) {
				obj.Set("method", in.Func("method", nil))
				in.Define("obj", testkit.ObjectValue(obj))
			})
			calls := lowIn.CallsTo("method")
			require.Len(t, calls, 1)
			assert.Same(t, obj, calls[0].This.Obj)
		})
	}
}

func TestLowerDeleteGuard(t *testing.T) {
	tr := testkit.NewTree("delete.js")
	tr.Push(tr.Expr(tr.Delete(tr.OptProp(tr.Id("a"), "b"))))

	_, lowered, _, _ := evalBoth(t, tr, func(in *testkit.Interp) { in.Define("a", testkit.NullValue) })
	assert.Equal(t, testkit.BoolValue(true), lowered)

	_, lowered, _, lowIn := evalBoth(t, tr, func(in *testkit.Interp) {
		in.Define("a", testkit.ObjectValue(testkit.NewObject().Set("b", testkit.NumberValue(1))))
	})
	assert.Equal(t, testkit.BoolValue(true), lowered)
	a, _ := lowIn.Lookup("a")
	assert.False(t, a.Obj.Has("b"))
}

func TestLowerNullishLaws(t *testing.T) {
	cases := []struct {
		name string
		left func(tr *testkit.Tree) ast.ExprID
		want testkit.Value
	}{
		{"null", func(tr *testkit.Tree) ast.ExprID { return tr.Null() }, testkit.StringValue("x")},
		{"undefined", func(tr *testkit.Tree) ast.ExprID { return tr.Undefined() }, testkit.StringValue("x")},
		{"void", func(tr *testkit.Tree) ast.ExprID { return tr.Void(tr.Num("0")) }, testkit.StringValue("x")},
		{"zero", func(tr *testkit.Tree) ast.ExprID { return tr.Num("0") }, testkit.NumberValue(0)},
		{"empty string", func(tr *testkit.Tree) ast.ExprID { return tr.Str("") }, testkit.StringValue("")},
		{"false", func(tr *testkit.Tree) ast.ExprID { return tr.False() }, testkit.BoolValue(false)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := testkit.NewTree("nullish.js")
			// (left) ?? rhs() where rhs returns "x"
			tr.Push(tr.Expr(tr.Nullish(tc.left(tr), tr.Call(tr.Id("rhs")))))
			orig, lowered, origIn, lowIn := evalBoth(t, tr, func(in *testkit.Interp) {
				in.Host("rhs", func(testkit.Value, []testkit.Value) (testkit.Value, error) {
					return testkit.StringValue("x"), nil
				})
			})
			assert.True(t, testkit.StrictEquals(tc.want, lowered), "got %s", lowered)
			assert.True(t, testkit.StrictEquals(orig, lowered))
			assert.Equal(t, origIn.Count("rhs"), lowIn.Count("rhs"))
		})
	}
}

func TestLowerHoistsIntoFunctionScope(t *testing.T) {
	tr := testkit.NewTree("fn.js")
	tr.Push(tr.Func("g", nil, tr.Return(tr.Nullish(tr.Call(tr.Id("f")), tr.Num("1")))))
	out, table := lowerTree(t, tr, Options{})

	want := strings.Join([]string{
		"function g() {",
		"    var _a;",
		"    return (_a = f()) !== null && _a !== void 0 ? _a : 1;",
		"}",
		"",
	}, "\n")
	assert.Equal(t, want, printOutput(t, tr, table, out))
}

func TestLowerTempsAvoidUserNames(t *testing.T) {
	tr := testkit.NewTree("names.js")
	tr.Push(
		tr.Var("_a", tr.Num("1")),
		tr.Expr(tr.Nullish(tr.Call(tr.Id("f")), tr.Id("_a"))),
	)
	out, table := lowerTree(t, tr, Options{})
	assert.Equal(t, "var _b;\nvar _a = 1;\n(_b = f()) !== null && _b !== void 0 ? _b : _a;\n", printOutput(t, tr, table, out))

	temp := ast.NoExprID
	tr.B.Walk(ast.StmtNode(out.Stmts[2]), func(n ast.Node) bool {
		if id, ok := tr.B.Exprs.Ident(ast.ExprID(n.ID)); n.Kind == ast.NodeExpr && ok && tr.B.Name(id.Name) == "_b" {
			temp = ast.ExprID(n.ID)
		}
		return true
	})
	require.True(t, temp.IsValid())
	assert.True(t, table.Flags(ast.ExprNode(temp)).Has(emitnode.Generated|emitnode.FileLevelUniqueName))
}

func TestLowerKeepsUntouchedInput(t *testing.T) {
	t.Run("no newer syntax", func(t *testing.T) {
		tr := testkit.NewTree("plain.js")
		tr.Push(tr.Expr(tr.Call(tr.Prop(tr.Id("a"), "b"))))
		out, _ := lowerTree(t, tr, Options{})
		assert.False(t, out.Changed)
		assert.Equal(t, tr.Stmts(), out.Stmts)
	})
	t.Run("declaration file", func(t *testing.T) {
		tr := testkit.NewTree("types.d.js")
		tr.Push(tr.Expr(tr.OptProp(tr.Id("a"), "b"))).Declaration()
		out, _ := lowerTree(t, tr, Options{})
		assert.False(t, out.Changed)
		assert.Equal(t, tr.Stmts(), out.Stmts)
	})
	t.Run("target has the syntax", func(t *testing.T) {
		for _, target := range []Target{ES2020, ESNext} {
			tr := testkit.NewTree("modern.js")
			tr.Push(tr.Expr(tr.Nullish(tr.Id("a"), tr.Id("b"))))
			out, _ := lowerTree(t, tr, Options{Target: target})
			assert.False(t, out.Changed, target.String())
		}
	})
}

func TestLowerSkipsSubtreesWithoutNewerSyntax(t *testing.T) {
	tr := testkit.NewTree("fast.js")
	plain := tr.Call(tr.Prop(tr.Id("x"), "y"))
	untouched := tr.Expr(tr.Id("z"))
	tr.Push(untouched, tr.Expr(tr.Bin(ast.ExprBinaryAdd, plain, tr.Nullish(tr.Id("a"), tr.Id("b")))))
	out, _ := lowerTree(t, tr, Options{})

	require.Len(t, out.Stmts, 2)
	assert.Equal(t, untouched, out.Stmts[0])
	st, ok := tr.B.Stmts.Expr(out.Stmts[1])
	require.True(t, ok)
	bin, ok := tr.B.Exprs.Binary(st.Expr)
	require.True(t, ok)
	assert.Equal(t, plain, bin.Left)
	assert.True(t, tr.B.IsSynthesized(ast.ExprNode(bin.Right)))
}

func TestLowerLinksOriginals(t *testing.T) {
	tr := testkit.NewTree("orig.js")
	chain := tr.OptProp(tr.Id("a"), "b")
	tr.Push(tr.Expr(chain))
	out, _ := lowerTree(t, tr, Options{})

	st, _ := tr.B.Stmts.Expr(out.Stmts[0])
	assert.Equal(t, chain, tr.B.ParseTreeNode(st.Expr))
	assert.Equal(t, tr.B.Span(ast.ExprNode(chain)), tr.B.Span(ast.ExprNode(st.Expr)))
}

func TestLowerDepthGuard(t *testing.T) {
	tr := testkit.NewTree("deep.js")
	x := tr.Id("a")
	for range 64 {
		x = tr.Nullish(x, tr.Id("b"))
	}
	tr.Push(tr.Expr(x))
	table := emitnode.NewTable(tr.B)
	out, err := Lower(NewContext(tr.B, table, Options{MaxDepth: 16}), tr.File)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, ErrDepthExceeded))
	var de *DepthError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 16, de.Limit)
}

func TestLowerMalformedChainIsDefect(t *testing.T) {
	tr := testkit.NewTree("bad.js")
	// a continuation link without any `?.` below it
	tr.Push(tr.Expr(tr.ChainProp(tr.Id("a"), "b")))
	table := emitnode.NewTable(tr.B)
	d := catchDefect(t, func() {
		_, _ = Lower(NewContext(tr.B, table, Options{}), tr.File)
	})
	assert.Equal(t, "DEF9001", d.Code.ID())
}

func catchDefect(t *testing.T, fn func()) (d *Defect) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a defect panic")
		var ok bool
		d, ok = r.(*Defect)
		require.True(t, ok, "panic value %T is not a *Defect", r)
	}()
	fn()
	return nil
}
