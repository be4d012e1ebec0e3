// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package emit

import (
	"math"

	"github.com/gogpu/mir/ir"
)

// ConstantTrue returns the true constant.
func (e *Emitter) ConstantTrue() ir.ValueID { return e.trueConstant }

// ConstantFalse returns the false constant.
func (e *Emitter) ConstantFalse() ir.ValueID { return e.falseConstant }

// ConstantBool returns the boolean constant b.
func (e *Emitter) ConstantBool(b bool) ir.ValueID {
	if b {
		return e.trueConstant
	}
	return e.falseConstant
}

// ConstantInt returns the integer constant i.
func (e *Emitter) ConstantInt(i int64) ir.ValueID {
	return e.Emit(ir.Value{Type: ir.Int(), Kind: ir.IntConstant(i)})
}

// ConstantFloat returns the float constant f.
func (e *Emitter) ConstantFloat(f float32) ir.ValueID {
	return e.Emit(ir.Value{Type: ir.Float(), Kind: ir.FloatConstant(f)})
}

// ConstantFloat2 returns a float2 constant.
func (e *Emitter) ConstantFloat2(v [2]float32) ir.ValueID {
	return e.Vector2(e.ConstantFloat(v[0]), e.ConstantFloat(v[1]))
}

// ConstantFloat3 returns a float3 constant.
func (e *Emitter) ConstantFloat3(v [3]float32) ir.ValueID {
	return e.Vector3(e.ConstantFloat(v[0]), e.ConstantFloat(v[1]), e.ConstantFloat(v[2]))
}

// ConstantFloat4 returns a float4 constant.
func (e *Emitter) ConstantFloat4(v [4]float32) ir.ValueID {
	return e.Vector4(e.ConstantFloat(v[0]), e.ConstantFloat(v[1]), e.ConstantFloat(v[2]), e.ConstantFloat(v[3]))
}

// ConstantFloats returns a float scalar or vector constant with the given lanes.
func (e *Emitter) ConstantFloats(lanes []float32) ir.ValueID {
	comps := make([]ir.ValueID, len(lanes))
	for i, f := range lanes {
		comps[i] = e.ConstantFloat(f)
	}
	if len(comps) == 1 {
		return comps[0]
	}
	return e.Vector(comps...)
}

// ConstantZero returns the zero scalar of the given kind.
func (e *Emitter) ConstantZero(kind ir.ScalarKind) ir.ValueID {
	switch kind {
	case ir.ScalarBool:
		return e.falseConstant
	case ir.ScalarInt:
		return e.ConstantInt(0)
	case ir.ScalarFloat:
		return e.ConstantFloat(0)
	default:
		panic(ir.Unreachable(kind))
	}
}

// ConstantOne returns the one scalar of the given kind.
func (e *Emitter) ConstantOne(kind ir.ScalarKind) ir.ValueID {
	switch kind {
	case ir.ScalarBool:
		return e.trueConstant
	case ir.ScalarInt:
		return e.ConstantInt(1)
	case ir.ScalarFloat:
		return e.ConstantFloat(1)
	default:
		panic(ir.Unreachable(kind))
	}
}

// ZeroOf returns the zero value of the primitive type t.
func (e *Emitter) ZeroOf(t *ir.Type) ir.ValueID {
	return e.Cast(e.ConstantZero(t.Scalar), t)
}

/*---------------------------------- Lane predicates ----------------------------------*/

const nearlyZeroTolerance = 1e-8

// constantLanes calls fn with each lane of v if every lane is constant.
// It reports false if v is not a constant scalar, vector or matrix.
func (e *Emitter) constantLanes(v ir.ValueID, fn func(kind ir.ScalarKind, c ir.Constant) bool) bool {
	if !e.IsValid(v) {
		return false
	}
	val := e.Value(v)
	switch k := val.Kind.(type) {
	case ir.Constant:
		return fn(val.Type.Scalar, k)
	case ir.Dimensional:
		for _, comp := range k.Components[:val.Type.Lanes()] {
			c, ok := e.Value(comp).Kind.(ir.Constant)
			if !ok || !fn(val.Type.Scalar, c) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isNearly(kind ir.ScalarKind, c ir.Constant, want float64) bool {
	switch kind {
	case ir.ScalarBool:
		return c.Bool() == (want != 0)
	case ir.ScalarInt:
		return float64(c.Int()) == want
	default:
		return math.Abs(float64(c.Float())-want) <= nearlyZeroTolerance
	}
}

// isConstant reports whether every lane of v is constant.
func (e *Emitter) isConstant(v ir.ValueID) bool {
	return e.constantLanes(v, func(ir.ScalarKind, ir.Constant) bool { return true })
}

// AreAllNearlyZero reports whether every lane of v is a constant close to zero.
func (e *Emitter) AreAllNearlyZero(v ir.ValueID) bool {
	return e.constantLanes(v, func(k ir.ScalarKind, c ir.Constant) bool { return isNearly(k, c, 0) })
}

// AreAllNearlyOne reports whether every lane of v is a constant close to one.
func (e *Emitter) AreAllNearlyOne(v ir.ValueID) bool {
	return e.constantLanes(v, func(k ir.ScalarKind, c ir.Constant) bool { return isNearly(k, c, 1) })
}

// AreAllExactlyZero reports whether every lane of v is a constant with all bits zero.
func (e *Emitter) AreAllExactlyZero(v ir.ValueID) bool {
	return e.constantLanes(v, func(_ ir.ScalarKind, c ir.Constant) bool { return c.Bits == 0 })
}

// AreAllTrue reports whether every lane of v is the true constant.
func (e *Emitter) AreAllTrue(v ir.ValueID) bool {
	return e.constantLanes(v, func(k ir.ScalarKind, c ir.Constant) bool { return k == ir.ScalarBool && c.Bool() })
}

// AreAllFalse reports whether every lane of v is the false constant.
func (e *Emitter) AreAllFalse(v ir.ValueID) bool {
	return e.constantLanes(v, func(k ir.ScalarKind, c ir.Constant) bool { return k == ir.ScalarBool && !c.Bool() })
}

// AsConstant returns the constant payload of v if v is a scalar constant.
func (e *Emitter) AsConstant(v ir.ValueID) (ir.Constant, bool) {
	if !e.IsValid(v) {
		return ir.Constant{}, false
	}
	c, ok := e.Value(v).Kind.(ir.Constant)
	return c, ok
}

// unpackConstantVector returns the lanes of a constant scalar or vector.
func (e *Emitter) unpackConstantVector(v ir.ValueID) ([]ir.Constant, bool) {
	if !e.IsValid(v) || e.Type(v).IsMatrix() || !e.Type(v).IsPrimitive() {
		return nil, false
	}
	var lanes []ir.Constant
	ok := e.constantLanes(v, func(_ ir.ScalarKind, c ir.Constant) bool {
		lanes = append(lanes, c)
		return true
	})
	return lanes, ok
}
