// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package emit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/mir/ir"
)

func newTestEmitter(t *testing.T) (*Emitter, *ir.Module) {
	t.Helper()
	m := ir.NewModule("M_Test")
	return New(m, Options{}), m
}

// scalarParam returns a runtime scalar so tests can build non-constant values.
func scalarParam(e *Emitter, name string) ir.ValueID {
	return e.Parameter(ir.ParameterInfo{Name: name}, ir.ParameterMetadata{Kind: ir.ParameterScalar})
}

func requireDiagnostic(t *testing.T, m *ir.Module, kind ir.ErrorKind, substr string) {
	t.Helper()
	for _, d := range m.Diagnostics {
		if d.Kind == kind && strings.Contains(d.Message, substr) {
			return
		}
	}
	t.Fatalf("no %s diagnostic containing %q in %v", kind, substr, m.Diagnostics)
}

type testInput string

func (in testInput) InputName() string { return string(in) }

type testBinder struct {
	inputs  map[string]ir.ValueID
	outputs map[int]ir.ValueID
}

func (b *testBinder) Fetch(in Input) ir.ValueID { return b.inputs[in.InputName()] }

func (b *testBinder) Bind(output int, v ir.ValueID) {
	if b.outputs == nil {
		b.outputs = make(map[int]ir.ValueID)
	}
	b.outputs[output] = v
}

func TestHashConsing(t *testing.T) {
	e, m := newTestEmitter(t)

	require.Equal(t, e.ConstantFloat(1.5), e.ConstantFloat(1.5))
	require.NotEqual(t, e.ConstantFloat(1), e.ConstantInt(1))
	require.Equal(t, e.ConstantBool(true), e.ConstantTrue())

	x := scalarParam(e, "X")
	y := scalarParam(e, "Y")
	require.Equal(t, x, scalarParam(e, "X"))

	n := len(m.Values)
	sum := e.Add(x, y)
	require.Len(t, m.Values, n+1)
	require.Equal(t, sum, e.Add(y, x), "commutative operands are ordered")
	require.Len(t, m.Values, n+1)
	require.NotEqual(t, e.Subtract(x, y), e.Subtract(y, x))
}

func TestConstantFolding(t *testing.T) {
	e, _ := newTestEmitter(t)
	f := e.ConstantFloat
	i := e.ConstantInt

	tests := []struct {
		name string
		got  ir.ValueID
		want ir.ValueID
	}{
		{"add", e.Add(f(2), f(3)), f(5)},
		{"sub", e.Subtract(f(2), f(3)), f(-1)},
		{"mul", e.Multiply(f(2), f(3)), f(6)},
		{"div", e.Divide(f(3), f(2)), f(1.5)},
		{"int div", e.Divide(i(7), i(2)), i(3)},
		{"mixed promotes", e.Add(i(1), f(0.5)), f(1.5)},
		{"sqrt", e.Sqrt(f(16)), f(4)},
		{"floor", e.Floor(f(-1.5)), f(-2)},
		{"saturate", e.Saturate(f(3)), f(1)},
		{"min", e.Min(f(2), f(-1)), f(-1)},
		{"clamp", e.Clamp(f(5), f(0), f(2)), f(2)},
		{"lerp", e.Lerp(f(0), f(10), f(0.25)), f(2.5)},
		{"less", e.LessThan(f(1), f(2)), e.ConstantTrue()},
		{"greater", e.GreaterThan(f(1), f(2)), e.ConstantFalse()},
		{"and", e.And(e.ConstantTrue(), e.ConstantFalse()), e.ConstantFalse()},
		{"not", e.Not(e.ConstantFalse()), e.ConstantTrue()},
		{"shift", e.Operator(ir.OpBitShiftLeft, i(1), i(4), ir.NoValue), i(16)},
		{"modulo", e.Operator(ir.OpModulo, i(7), i(3), ir.NoValue), i(1)},
		{"length", e.Length(e.ConstantFloat2([2]float32{3, 4})), f(5)},
		{"dot", e.Dot(e.ConstantFloat2([2]float32{1, 2}), e.ConstantFloat2([2]float32{3, 4})), f(11)},
		{"cross", e.Cross(e.ConstantFloat3([3]float32{1, 0, 0}), e.ConstantFloat3([3]float32{0, 1, 0})), e.ConstantFloat3([3]float32{0, 0, 1})},
		{"vector add", e.Add(e.ConstantFloat2([2]float32{1, 2}), f(1)), e.ConstantFloat2([2]float32{2, 3})},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, e.Value(tt.got), e.Value(tt.want))
		}
	}
}

func TestIntegerDivisionByZeroIsNotFolded(t *testing.T) {
	e, m := newTestEmitter(t)

	v := e.Divide(e.ConstantInt(1), e.ConstantInt(0))
	require.True(t, m.IsValid())
	require.IsType(t, ir.Operator{}, e.Value(v).Kind)
}

func TestSimplify(t *testing.T) {
	e, _ := newTestEmitter(t)
	x := scalarParam(e, "X")
	y := scalarParam(e, "Y")
	zero, one := e.ConstantFloat(0), e.ConstantFloat(1)

	tests := []struct {
		name string
		got  ir.ValueID
		want ir.ValueID
	}{
		{"x+0", e.Add(x, zero), x},
		{"0+x", e.Add(zero, x), x},
		{"x-0", e.Subtract(x, zero), x},
		{"0-x", e.Subtract(zero, x), e.Negate(x)},
		{"x*1", e.Multiply(x, one), x},
		{"x*0", e.Multiply(x, zero), zero},
		{"0/x", e.Divide(zero, x), zero},
		{"x/1", e.Divide(x, one), x},
		{"pow(x, 0)", e.Pow(x, zero), one},
		{"x<x", e.LessThan(x, x), e.ConstantFalse()},
		{"x==x", e.Operator(ir.OpEquals, x, x, ir.NoValue), e.ConstantTrue()},
		{"lerp t=0", e.Lerp(x, y, zero), x},
		{"lerp t=1", e.Lerp(x, y, one), y},
		{"select true", e.Select(e.ConstantTrue(), x, y), x},
		{"select false", e.Select(e.ConstantFalse(), x, y), y},
		{"clamp01", e.Clamp(x, zero, one), e.Saturate(x)},
		{"length scalar", e.Length(x), e.Abs(x)},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, e.Value(tt.got), e.Value(tt.want))
		}
	}
}

func TestSelfComparisonKeepsShape(t *testing.T) {
	e, m := newTestEmitter(t)
	uv := e.ExternalInput(ir.TexCoord0)
	bool2 := ir.Vector(ir.ScalarBool, 2)

	tests := []struct {
		op   ir.Op
		want bool
	}{
		{ir.OpEquals, true},
		{ir.OpLessThanOrEquals, true},
		{ir.OpGreaterThanOrEquals, true},
		{ir.OpNotEquals, false},
		{ir.OpLessThan, false},
		{ir.OpGreaterThan, false},
	}
	for _, tt := range tests {
		got := e.Operator(tt.op, uv, uv, ir.NoValue)
		if typ := e.Type(got); typ != bool2 {
			t.Errorf("%v(uv, uv) type = %s, want %s", tt.op, typ, bool2)
		}
		if tt.want && !e.AreAllTrue(got) {
			t.Errorf("%v(uv, uv) = %v, want all true", tt.op, e.Value(got))
		}
		if !tt.want && !e.AreAllFalse(got) {
			t.Errorf("%v(uv, uv) = %v, want all false", tt.op, e.Value(got))
		}
	}

	// The folded mask still selects between float2 arms.
	sel := e.Select(e.LessThan(uv, uv), uv, e.ConstantFloat2([2]float32{1, 2}))
	require.Equal(t, e.ConstantFloat2([2]float32{1, 2}), sel)
	require.Empty(t, m.Diagnostics)
}

func TestComponentwisePartialFold(t *testing.T) {
	e, _ := newTestEmitter(t)
	x := scalarParam(e, "X")
	one, two := e.ConstantFloat(1), e.ConstantFloat(2)

	v := e.Multiply(e.Vector2(x, one), e.Vector2(two, one))

	d, ok := e.Value(v).Kind.(ir.Dimensional)
	require.True(t, ok, "partially folded vector is a Dimensional")
	require.Equal(t, ir.Float2(), e.Type(v))
	require.Equal(t, e.Multiply(x, two), d.Components[0])
	require.Equal(t, one, d.Components[1])
}

func TestComponentwiseIdentityReturnsArgument(t *testing.T) {
	e, _ := newTestEmitter(t)
	x := scalarParam(e, "X")
	v := e.Vector2(x, e.ConstantFloat(3))

	require.Equal(t, v, e.Multiply(v, e.ConstantFloat2([2]float32{1, 1})))
	require.Equal(t, v, e.Add(e.ConstantFloat(0), v))
}

func TestOperatorErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(e *Emitter) ir.ValueID
		kind  ir.ErrorKind
		msg   string
	}{
		{
			name: "vector width mismatch",
			build: func(e *Emitter) ir.ValueID {
				return e.Add(e.ConstantFloat2([2]float32{1, 2}), e.ConstantFloat3([3]float32{1, 2, 3}))
			},
			kind: ir.ErrTypeError,
			msg:  "No common type between 'float2' and 'float3'",
		},
		{
			name:  "sqrt of negative constant",
			build: func(e *Emitter) ir.ValueID { return e.Sqrt(e.ConstantFloat(-1)) },
			kind:  ir.ErrTypeError,
			msg:   "Expected non-negative value.",
		},
		{
			name:  "log of zero",
			build: func(e *Emitter) ir.ValueID { return e.Logarithm(e.ConstantFloat(0)) },
			kind:  ir.ErrTypeError,
			msg:   "Expected non-zero value.",
		},
		{
			name:  "acos above one",
			build: func(e *Emitter) ir.ValueID { return e.Operator(ir.OpACos, e.ConstantFloat(2), ir.NoValue, ir.NoValue) },
			kind:  ir.ErrTypeError,
			msg:   "Expected a value between -1 and 1.",
		},
		{
			name: "asin below minus one",
			build: func(e *Emitter) ir.ValueID {
				return e.Operator(ir.OpASin, e.ConstantFloat2([2]float32{0, -1.5}), ir.NoValue, ir.NoValue)
			},
			kind: ir.ErrTypeError,
			msg:  "Expected a value between -1 and 1.",
		},
		{
			name: "bitwise on float",
			build: func(e *Emitter) ir.ValueID {
				return e.Operator(ir.OpBitwiseAnd, e.ConstantFloat(1), e.ConstantFloat(2), ir.NoValue)
			},
			kind: ir.ErrTypeError,
			msg:  "Expected an integer value",
		},
		{
			name: "not on float",
			build: func(e *Emitter) ir.ValueID { return e.Not(e.ConstantFloat(1)) },
			kind: ir.ErrTypeError,
			msg:  "Expected a boolean.",
		},
		{
			name: "cross of float2",
			build: func(e *Emitter) ir.ValueID {
				return e.Cross(e.ConstantFloat2([2]float32{1, 2}), e.ConstantFloat2([2]float32{1, 2}))
			},
			kind: ir.ErrTypeError,
			msg:  "Expected a 3D vector.",
		},
		{
			name:  "missing argument",
			build: func(e *Emitter) ir.ValueID { return e.Add(e.ConstantFloat(1), ir.NoValue) },
			kind:  ir.ErrMissingValue,
			msg:   "missing its second argument",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, m := newTestEmitter(t)
			got := tt.build(e)
			if got != ir.PoisonValue {
				t.Errorf("result = %v, want poison", e.Value(got))
			}
			requireDiagnostic(t, m, tt.kind, tt.msg)
		})
	}
}

func TestPoisonPropagatesSilently(t *testing.T) {
	e, m := newTestEmitter(t)

	v := e.Add(ir.PoisonValue, e.ConstantFloat(1))
	v = e.Sqrt(v)
	v = e.Branch(e.ConstantTrue(), v, e.ConstantFloat(2))

	require.Equal(t, ir.PoisonValue, v)
	require.Empty(t, m.Diagnostics)
}

func TestCast(t *testing.T) {
	e, m := newTestEmitter(t)

	v := e.Cast(e.ConstantFloat3([3]float32{1, 2, 3}), ir.Float())
	require.Equal(t, e.ConstantFloat(1), v)

	v = e.Cast(e.ConstantFloat2([2]float32{1, 2}), ir.Float4())
	require.Equal(t, e.ConstantFloat4([4]float32{1, 2, 0, 0}), v)

	v = e.Cast(e.ConstantFloat(2), ir.Float3())
	require.Equal(t, e.ConstantFloat3([3]float32{2, 2, 2}), v)

	v = e.Cast(e.ConstantFloat(2.75), ir.Int())
	require.Equal(t, e.ConstantInt(2), v)

	require.True(t, m.IsValid())

	v = e.Cast(e.ConstantFloat3([3]float32{1, 2, 3}), ir.Vector(ir.ScalarBool, 3))
	require.Equal(t, ir.PoisonValue, v)
	require.Len(t, m.Diagnostics, 1)
}

func TestSwizzle(t *testing.T) {
	e, _ := newTestEmitter(t)
	x, y, z := scalarParam(e, "X"), scalarParam(e, "Y"), scalarParam(e, "Z")
	v := e.Vector3(x, y, z)

	mask, ok := ParseMask("zx")
	require.True(t, ok)
	require.Equal(t, e.Vector2(z, x), e.Swizzle(v, mask))

	mask, _ = ParseMask("rgb")
	require.Equal(t, v, e.Swizzle(v, mask))

	mask, _ = ParseMask("y")
	require.Equal(t, y, e.Swizzle(v, mask))

	_, ok = ParseMask("xq")
	require.False(t, ok)
}

func TestBranch(t *testing.T) {
	e, m := newTestEmitter(t)
	x := scalarParam(e, "X")
	y := e.Vector2(scalarParam(e, "Y"), x)
	c := e.LessThan(x, e.ConstantFloat(0.5))

	require.Equal(t, x, e.Branch(e.ConstantTrue(), x, y))
	require.Equal(t, x, e.Branch(c, x, x))

	b := e.Branch(c, x, y)
	require.Equal(t, ir.Float2(), e.Type(b))
	br, ok := e.Value(b).Kind.(ir.Branch)
	require.True(t, ok)
	require.Equal(t, c, br.Condition)
	require.Equal(t, e.Cast(x, ir.Float2()), br.True)
	require.True(t, m.IsValid())

	e.Branch(e.ConstantFloat(1), x, y)
	requireDiagnostic(t, m, ir.ErrTypeError, "Cannot implicitly convert a 'float' to 'bool'")
}

func TestNodeInputs(t *testing.T) {
	e, m := newTestEmitter(t)
	b := &testBinder{inputs: map[string]ir.ValueID{"A": e.ConstantFloat2([2]float32{1, 2})}}

	e.BeginNode("Add_1", "Add", b)
	a := e.Input(testInput("A"))
	missing := e.Input(testInput("B"))
	def := e.InputDefaultFloat(testInput("C"), 4)
	e.Output(0, e.Add(a, def))
	hasErrors := e.EndNode()

	require.True(t, hasErrors)
	require.Equal(t, ir.PoisonValue, missing)
	require.Equal(t, e.ConstantFloat2([2]float32{5, 6}), b.outputs[0])
	require.Len(t, m.Diagnostics, 1)
	d := m.Diagnostics[0]
	require.Equal(t, "Add_1", d.Origin)
	require.Equal(t, ir.ErrMissingValue, d.Kind)
	require.Equal(t, "(Node Add) Missing 'B' input value.", d.Message)
}

func TestErrorNamesInput(t *testing.T) {
	e, m := newTestEmitter(t)
	b := &testBinder{inputs: map[string]ir.ValueID{"Value": e.ConstantFloat(-4)}}

	e.BeginNode("Sqrt_1", "Sqrt", b)
	e.Output(0, e.Sqrt(e.Input(testInput("Value"))))
	e.EndNode()

	require.Len(t, m.Diagnostics, 1)
	require.Equal(t, "(Node Sqrt) From input 'Value': Expected non-negative value.", m.Diagnostics[0].Message)
}
