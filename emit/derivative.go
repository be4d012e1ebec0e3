// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package emit

import (
	"math"

	"github.com/gogpu/mir/ir"
)

type derivativeKey struct {
	v    ir.ValueID
	axis ir.DerivativeAxis
}

// StageSwitch returns a value of type t that evaluates to args[s] in stage s.
// If every stage uses the same value, that value is returned.
func (e *Emitter) StageSwitch(t *ir.Type, args [ir.NumStages]ir.ValueID) ir.ValueID {
	same := true
	for i := range args {
		args[i] = e.Cast(args[i], t)
		if !e.IsValid(args[i]) {
			return ir.PoisonValue
		}
		same = same && args[i] == args[0]
	}
	if same {
		return args[0]
	}
	return e.Emit(ir.Value{Type: t, Kind: ir.StageSwitch{Args: args}})
}

// hardwareOrAnalytical picks hw in the stages with hardware derivatives and
// an in the others.
func (e *Emitter) hardwareOrAnalytical(t *ir.Type, hw, an ir.ValueID) ir.ValueID {
	var args [ir.NumStages]ir.ValueID
	for _, s := range ir.Stages {
		if s.SupportsHardwareDerivatives() {
			args[s] = hw
		} else {
			args[s] = an
		}
	}
	return e.StageSwitch(t, args)
}

// PartialDerivative returns the screen-space derivative of v along axis.
// Stages with hardware derivatives compute it with ddx/ddy; the others use
// the analytical derivative.
func (e *Emitter) PartialDerivative(v ir.ValueID, axis ir.DerivativeAxis) ir.ValueID {
	if !e.IsValid(v) {
		return v
	}
	t := e.Type(v)
	if !t.IsFloat() {
		e.errorAt(v, "Expected a float value, got a '%s' instead.", t)
		return ir.PoisonValue
	}

	an := e.derivative(v, axis)
	hw := e.ZeroOf(t)
	if _, uniform := e.Value(v).Kind.(ir.UniformParameter); !uniform && !e.isConstant(v) {
		hw = e.Emit(ir.Value{Type: t, Kind: ir.HardwarePartialDerivative{Arg: v, Axis: axis}})
	}
	return e.hardwareOrAnalytical(t, hw, an)
}

// AnalyticalPartialDerivative returns the derivative of v along axis,
// computed by applying the chain rule through the graph down to the texture
// coordinate derivative inputs. Values the rule cannot see through, such as
// texture reads and inline code, are treated as constant.
func (e *Emitter) AnalyticalPartialDerivative(v ir.ValueID, axis ir.DerivativeAxis) ir.ValueID {
	if !e.IsValid(v) {
		return v
	}
	if t := e.Type(v); !t.IsFloat() {
		e.errorAt(v, "Expected a float value, got a '%s' instead.", t)
		return ir.PoisonValue
	}
	return e.derivative(v, axis)
}

func (e *Emitter) derivative(v ir.ValueID, axis ir.DerivativeAxis) ir.ValueID {
	if !e.IsValid(v) {
		return v
	}
	key := derivativeKey{v, axis}
	if d, ok := e.derivatives[key]; ok {
		return d
	}
	d := e.computeDerivative(v, axis)
	e.derivatives[key] = d
	return d
}

func (e *Emitter) computeDerivative(v ir.ValueID, axis ir.DerivativeAxis) ir.ValueID {
	val := e.Value(v)
	t := val.Type
	if !t.IsPrimitive() {
		return ir.PoisonValue
	}
	if !t.IsFloat() {
		return e.ZeroOf(t)
	}

	switch k := val.Kind.(type) {
	case ir.ExternalInput:
		if k.ID.IsTexCoord() {
			return e.ExternalInput(ir.TexCoordDerivative(k.ID.TexCoordIndex(), axis))
		}
		return e.ZeroOf(t)

	case ir.Dimensional:
		lanes := make([]ir.ValueID, t.Lanes())
		for i := range lanes {
			lanes[i] = e.derivative(k.Components[i], axis)
		}
		return e.dimensional(t, lanes)

	case ir.Operator:
		return e.differentiateOperator(v, k, axis)

	case ir.Branch:
		return e.Branch(k.Condition, e.derivative(k.True, axis), e.derivative(k.False, axis))

	case ir.Subscript:
		return e.Subscript(e.derivative(k.Arg, axis), k.Index)

	case ir.Cast:
		return e.Cast(e.derivative(k.Arg, axis), t)

	case ir.StageSwitch:
		var args [ir.NumStages]ir.ValueID
		for i, arg := range k.Args {
			args[i] = e.derivative(arg, axis)
		}
		return e.StageSwitch(t, args)

	case ir.Constant, ir.UniformParameter, ir.TextureRead, ir.InlineCode,
		ir.HardwarePartialDerivative:
		return e.ZeroOf(t)

	case ir.Poison, ir.TextureObject, ir.SetOutput:
		return ir.PoisonValue
	}
	panic(ir.Unreachable(val.Kind))
}

// differentiateOperator applies the derivative rule of an operator. v is
// the operator instruction itself, o its payload.
func (e *Emitter) differentiateOperator(v ir.ValueID, o ir.Operator, axis ir.DerivativeAxis) ir.ValueID {
	t := e.Type(v)
	f, g, h := o.A, o.B, o.C
	var df, dg, dh ir.ValueID
	if f != ir.NoValue && !e.Type(f).IsBoolean() {
		df = e.derivative(f, axis)
	}
	if g != ir.NoValue && !e.Type(g).IsBoolean() {
		dg = e.derivative(g, axis)
	}
	if h != ir.NoValue && !e.Type(h).IsBoolean() {
		dh = e.derivative(h, axis)
	}

	one := e.ConstantFloat(1)
	zero := e.ZeroOf(t)
	sq := func(x ir.ValueID) ir.ValueID { return e.Multiply(x, x) }

	switch o.Op {
	case ir.OpNegate:
		return e.Negate(df)
	case ir.OpAbs:
		return e.Divide(e.Multiply(f, df), v)
	case ir.OpLength:
		return e.Divide(e.Dot(f, df), v)
	case ir.OpACos:
		return e.Negate(e.Divide(df, e.Sqrt(e.Subtract(one, sq(f)))))
	case ir.OpACosh:
		return e.Divide(df, e.Sqrt(e.Subtract(sq(f), one)))
	case ir.OpASin:
		return e.Divide(df, e.Sqrt(e.Subtract(one, sq(f))))
	case ir.OpASinh:
		return e.Divide(df, e.Sqrt(e.Add(sq(f), one)))
	case ir.OpATan:
		return e.Divide(df, e.Add(one, sq(f)))
	case ir.OpATanh:
		return e.Divide(df, e.Subtract(one, sq(f)))
	case ir.OpCos:
		return e.Negate(e.Multiply(e.Sin(f), df))
	case ir.OpCosh:
		return e.Multiply(e.Sinh(f), df)
	case ir.OpExponential:
		return e.Multiply(v, df)
	case ir.OpExponential2:
		return e.Multiply(e.Multiply(e.ConstantFloat(math.Ln2), v), df)
	case ir.OpFrac:
		return df
	case ir.OpLogarithm:
		return e.Divide(df, f)
	case ir.OpLogarithm2:
		return e.Divide(df, e.Multiply(f, e.ConstantFloat(math.Ln2)))
	case ir.OpLogarithm10:
		return e.Divide(df, e.Multiply(f, e.ConstantFloat(math.Ln10)))
	case ir.OpSaturate:
		inside := e.And(e.LessThan(e.ZeroOf(t), f), e.LessThan(f, e.Cast(one, t)))
		return e.Select(inside, df, zero)
	case ir.OpSin:
		return e.Multiply(e.Cos(f), df)
	case ir.OpSinh:
		return e.Multiply(e.Cosh(f), df)
	case ir.OpSqrt:
		return e.Divide(df, e.Multiply(e.ConstantFloat(2), v))
	case ir.OpTan:
		return e.Divide(df, sq(e.Cos(f)))
	case ir.OpTanh:
		return e.Multiply(e.Subtract(one, sq(v)), df)

	case ir.OpAdd:
		return e.Add(df, dg)
	case ir.OpSubtract:
		return e.Subtract(df, dg)
	case ir.OpMultiply:
		return e.Add(e.Multiply(df, g), e.Multiply(f, dg))
	case ir.OpDivide:
		return e.Divide(e.Subtract(e.Multiply(df, g), e.Multiply(f, dg)), sq(g))
	case ir.OpFmod:
		return e.Subtract(df, e.Multiply(dg, e.Floor(e.Divide(f, g))))
	case ir.OpMax:
		return e.Select(e.GreaterThan(f, g), df, dg)
	case ir.OpMin:
		return e.Select(e.LessThan(f, g), df, dg)
	case ir.OpPow:
		inner := e.Divide(e.Multiply(g, df), f)
		if !e.AreAllNearlyZero(dg) {
			inner = e.Add(e.Multiply(dg, e.Logarithm(f)), inner)
		}
		return e.Multiply(v, inner)
	case ir.OpDot:
		return e.Add(e.Dot(df, g), e.Dot(f, dg))
	case ir.OpCross:
		return e.Add(e.Cross(df, g), e.Cross(f, dg))
	case ir.OpDistance:
		return e.Divide(e.Dot(e.Subtract(f, g), e.Subtract(df, dg)), v)

	case ir.OpClamp:
		inside := e.And(e.LessThan(g, f), e.LessThan(f, h))
		return e.Select(inside, df, zero)
	case ir.OpLerp:
		return e.Add(df, e.Add(e.Multiply(dh, e.Subtract(g, f)), e.Multiply(h, e.Subtract(dg, df))))
	case ir.OpSelect:
		return e.Select(f, dg, dh)
	case ir.OpSmoothstep:
		z := e.Saturate(e.Divide(e.Subtract(h, f), e.Subtract(g, f)))
		dz := e.derivative(z, axis)
		return e.Multiply(dz, e.Multiply(e.ConstantFloat(6), e.Subtract(z, sq(z))))

	case ir.OpCeil, ir.OpFloor, ir.OpRound, ir.OpTruncate, ir.OpSign, ir.OpStep,
		ir.OpBitwiseNot, ir.OpNot, ir.OpIsFinite, ir.OpIsInf, ir.OpIsNan,
		ir.OpModulo, ir.OpBitwiseAnd, ir.OpBitwiseOr, ir.OpBitShiftLeft, ir.OpBitShiftRight,
		ir.OpEquals, ir.OpNotEquals, ir.OpGreaterThan, ir.OpGreaterThanOrEquals,
		ir.OpLessThan, ir.OpLessThanOrEquals, ir.OpAnd, ir.OpOr:
		return zero
	}
	panic(ir.Unreachable(o.Op))
}
