// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package emit

import (
	"math"

	"golang.org/x/exp/constraints"

	"github.com/gogpu/mir/ir"
)

type number interface {
	constraints.Integer | constraints.Float
}

// foldCompare evaluates a comparison between two scalars.
func foldCompare[T constraints.Ordered](op ir.Op, a, b T) (bool, bool) {
	switch op {
	case ir.OpGreaterThan:
		return a > b, true
	case ir.OpGreaterThanOrEquals:
		return a >= b, true
	case ir.OpLessThan:
		return a < b, true
	case ir.OpLessThanOrEquals:
		return a <= b, true
	case ir.OpEquals:
		return a == b, true
	case ir.OpNotEquals:
		return a != b, true
	}
	return false, false
}

// foldFloatClass evaluates the float classification operators.
func foldFloatClass[T constraints.Float](op ir.Op, a T) (bool, bool) {
	f := float64(a)
	switch op {
	case ir.OpIsFinite:
		return !math.IsInf(f, 0) && !math.IsNaN(f), true
	case ir.OpIsInf:
		return math.IsInf(f, 0), true
	case ir.OpIsNan:
		return math.IsNaN(f), true
	}
	return false, false
}

// foldGeneric evaluates the operators defined the same way on every
// arithmetic kind.
func foldGeneric[T number](op ir.Op, a, b, c T) (T, bool) {
	switch op {
	case ir.OpAbs:
		if a < 0 {
			return -a, true
		}
		return a, true
	case ir.OpNegate:
		return -a, true
	case ir.OpSaturate:
		return min(max(a, 0), 1), true
	case ir.OpSign:
		switch {
		case a > 0:
			return 1, true
		case a < 0:
			return T(0) - 1, true
		}
		return 0, true
	case ir.OpAdd:
		return a + b, true
	case ir.OpSubtract:
		return a - b, true
	case ir.OpMultiply:
		return a * b, true
	case ir.OpMin:
		return min(a, b), true
	case ir.OpMax:
		return max(a, b), true
	case ir.OpStep:
		if b >= a {
			return 1, true
		}
		return 0, true
	case ir.OpClamp:
		return min(max(a, b), c), true
	}
	return 0, false
}

// foldInteger evaluates an operator on integer scalars. Divisions by zero
// and out of range shifts are left to the target compiler.
func foldInteger[T constraints.Signed](op ir.Op, a, b, c T) (T, bool) {
	switch op {
	case ir.OpNot:
		if a == 0 {
			return 1, true
		}
		return 0, true
	case ir.OpBitwiseNot:
		return ^a, true
	case ir.OpAnd, ir.OpBitwiseAnd:
		return a & b, true
	case ir.OpOr, ir.OpBitwiseOr:
		return a | b, true
	case ir.OpBitShiftLeft:
		if b < 0 || b >= 32 {
			return 0, false
		}
		return a << b, true
	case ir.OpBitShiftRight:
		if b < 0 || b >= 32 {
			return 0, false
		}
		return a >> b, true
	case ir.OpModulo:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	case ir.OpDivide:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	}
	return foldGeneric(op, a, b, c)
}

// foldFloat evaluates an operator on float scalars with the semantics of
// the corresponding HLSL intrinsic.
func foldFloat[T constraints.Float](op ir.Op, a, b, c T) (T, bool) {
	x, y, z := float64(a), float64(b), float64(c)
	var r float64
	switch op {
	case ir.OpACos:
		r = math.Acos(x)
	case ir.OpACosh:
		r = math.Log(x + math.Sqrt(x*x-1))
	case ir.OpASin:
		r = math.Asin(x)
	case ir.OpASinh:
		r = math.Log(x + math.Sqrt(x*x+1))
	case ir.OpATan:
		r = math.Atan(x)
	case ir.OpATanh:
		r = 0.5 * math.Log((1+x)/(1-x))
	case ir.OpCeil:
		r = math.Ceil(x)
	case ir.OpCos:
		r = math.Cos(x)
	case ir.OpCosh:
		r = math.Cosh(x)
	case ir.OpExponential:
		r = math.Exp(x)
	case ir.OpExponential2:
		r = math.Exp2(x)
	case ir.OpFloor:
		r = math.Floor(x)
	case ir.OpFrac:
		r = x - math.Floor(x)
	case ir.OpLogarithm:
		r = math.Log(x)
	case ir.OpLogarithm2:
		r = math.Log2(x)
	case ir.OpLogarithm10:
		r = math.Log10(x)
	case ir.OpRound:
		r = math.Floor(x + 0.5)
	case ir.OpSin:
		r = math.Sin(x)
	case ir.OpSinh:
		r = math.Sinh(x)
	case ir.OpSqrt:
		r = math.Sqrt(x)
	case ir.OpTan:
		r = math.Tan(x)
	case ir.OpTanh:
		r = math.Tanh(x)
	case ir.OpTruncate:
		r = math.Trunc(x)
	case ir.OpDivide:
		r = x / y
	case ir.OpFmod:
		r = math.Mod(x, y)
	case ir.OpPow:
		r = math.Pow(x, y)
	case ir.OpLerp:
		r = x + z*(y-x)
	case ir.OpSmoothstep:
		r = smoothstep(x, y, z)
	default:
		return foldGeneric(op, a, b, c)
	}
	return T(r), true
}

func smoothstep(lo, hi, x float64) float64 {
	if x < lo {
		return 0
	}
	if x >= hi {
		return 1
	}
	t := (x - lo) / (hi - lo)
	return t * t * (3 - 2*t)
}

// foldScalarConstants evaluates op on constant scalar operands of the
// given kind. b and c are ignored for operators that do not take them.
func (e *Emitter) foldScalarConstants(op ir.Op, kind ir.ScalarKind, a, b, c ir.Constant) (ir.ValueID, bool) {
	if op.IsComparison() {
		var r, ok bool
		switch kind {
		case ir.ScalarBool, ir.ScalarInt:
			r, ok = foldCompare(op, a.Int(), b.Int())
		case ir.ScalarFloat:
			if r, ok = foldFloatClass(op, a.Float()); !ok {
				r, ok = foldCompare(op, a.Float(), b.Float())
			}
		}
		if !ok {
			return ir.NoValue, false
		}
		return e.ConstantBool(r), true
	}

	switch kind {
	case ir.ScalarBool:
		r, ok := foldInteger(op, a.Int(), b.Int(), c.Int())
		if !ok {
			return ir.NoValue, false
		}
		return e.ConstantBool(r&1 != 0), true

	case ir.ScalarInt:
		r, ok := foldInteger(op, int32(a.Int()), int32(b.Int()), int32(c.Int()))
		if !ok {
			return ir.NoValue, false
		}
		return e.ConstantInt(int64(r)), true

	case ir.ScalarFloat:
		r, ok := foldFloat(op, a.Float(), b.Float(), c.Float())
		if !ok {
			return ir.NoValue, false
		}
		return e.ConstantFloat(r), true
	}
	panic(ir.Unreachable(kind))
}
