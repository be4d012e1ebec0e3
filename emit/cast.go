// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package emit

import (
	"github.com/gogpu/mir/ir"
)

// Vector returns the vector made of the given scalar components. Components
// of different scalar kinds are converted to their common kind.
func (e *Emitter) Vector(components ...ir.ValueID) ir.ValueID {
	if e.anyNotValid(components...) {
		return ir.PoisonValue
	}
	if len(components) < 1 || len(components) > ir.MaxRows {
		panic("emit: invalid vector component count")
	}

	kind := ir.ScalarBool
	for _, c := range components {
		t := e.Type(c)
		if !t.IsScalar() {
			e.errorAt(c, "Expected a scalar value, got a '%s' instead.", t)
			return ir.PoisonValue
		}
		kind = max(kind, t.Scalar)
	}
	if len(components) == 1 {
		return e.Cast(components[0], ir.Scalar(kind))
	}

	var d ir.Dimensional
	for i, c := range components {
		d.Components[i] = e.Cast(c, ir.Scalar(kind))
	}
	return e.Emit(ir.Value{Type: ir.Vector(kind, len(components)), Kind: d})
}

// Vector2 returns the two-lane vector (x, y).
func (e *Emitter) Vector2(x, y ir.ValueID) ir.ValueID { return e.Vector(x, y) }

// Vector3 returns the three-lane vector (x, y, z).
func (e *Emitter) Vector3(x, y, z ir.ValueID) ir.ValueID { return e.Vector(x, y, z) }

// Vector4 returns the four-lane vector (x, y, z, w).
func (e *Emitter) Vector4(x, y, z, w ir.ValueID) ir.ValueID { return e.Vector(x, y, z, w) }

// dimensional emits a Dimensional of type t with the given lanes.
func (e *Emitter) dimensional(t *ir.Type, lanes []ir.ValueID) ir.ValueID {
	for _, l := range lanes {
		if !e.IsValid(l) {
			return ir.PoisonValue
		}
	}
	var d ir.Dimensional
	copy(d.Components[:], lanes)
	return e.Emit(ir.Value{Type: t, Kind: d})
}

/*------------------------------------ Subscript ------------------------------------*/

// Subscript returns lane index of v. Subscripting lane 0 of a scalar returns
// the scalar itself.
func (e *Emitter) Subscript(v ir.ValueID, index int) ir.ValueID {
	if !e.IsValid(v) {
		return v
	}

	t := e.Type(v)
	if !t.IsPrimitive() {
		e.errorAt(v, "Value of type '%s' cannot be subscripted.", t)
		return ir.PoisonValue
	}
	if index == 0 && t.IsScalar() {
		return v
	}
	if index < 0 || index >= t.Lanes() {
		e.errorAt(v, "Value of type '%s' has fewer dimensions than subscript index `%d`.", t, index)
		return ir.PoisonValue
	}

	val := e.Value(v)
	if d, ok := val.Kind.(ir.Dimensional); ok {
		return d.Components[index]
	}

	// No value.xy.x: subscript the inner value directly.
	if s, ok := val.Kind.(ir.Subscript); ok {
		v = s.Arg
	}

	return e.Emit(ir.Value{Type: t.ToScalar(), Kind: ir.Subscript{Arg: v, Index: index}})
}

/*------------------------------------- Swizzle -------------------------------------*/

// Component is a vector lane selector.
type Component uint8

const (
	X Component = iota
	Y
	Z
	W
)

// String returns the HLSL component letter.
func (c Component) String() string {
	return string("xyzw"[c])
}

// Mask is a swizzle mask of one to four components.
type Mask struct {
	Components [4]Component
	Len        int
}

// ParseMask parses a mask such as "xy" or "rgba".
func ParseMask(s string) (Mask, bool) {
	if len(s) < 1 || len(s) > 4 {
		return Mask{}, false
	}
	var m Mask
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'x', 'r':
			m.Components[i] = X
		case 'y', 'g':
			m.Components[i] = Y
		case 'z', 'b':
			m.Components[i] = Z
		case 'w', 'a':
			m.Components[i] = W
		default:
			return Mask{}, false
		}
	}
	m.Len = len(s)
	return m, true
}

// String returns the mask as HLSL component letters.
func (m Mask) String() string {
	b := make([]byte, m.Len)
	for i := 0; i < m.Len; i++ {
		b[i] = "xyzw"[m.Components[i]]
	}
	return string(b)
}

// Swizzle returns the vector made of the lanes of v selected by mask.
// A full mask in identity order returns v unchanged.
func (e *Emitter) Swizzle(v ir.ValueID, mask Mask) ir.ValueID {
	if !e.IsValid(v) {
		return v
	}

	t := e.Type(v)
	if !t.IsPrimitive() || t.IsMatrix() {
		e.errorAt(v, "Cannot swizzle a '%s' value.", t)
		return ir.PoisonValue
	}
	for i := 0; i < mask.Len; i++ {
		if int(mask.Components[i]) >= t.Rows {
			e.errorAt(v, "Value of type '%s' has no component '%s'.", t, mask.Components[i])
			return ir.PoisonValue
		}
	}

	if mask.Len == t.Lanes() {
		inOrder := true
		for i := 0; i < mask.Len; i++ {
			if mask.Components[i] != Component(i) {
				inOrder = false
				break
			}
		}
		if inOrder {
			return v
		}
	}

	if mask.Len == 1 {
		return e.Subscript(v, int(mask.Components[0]))
	}

	lanes := make([]ir.ValueID, mask.Len)
	for i := range lanes {
		lanes[i] = e.Subscript(v, int(mask.Components[i]))
	}
	return e.dimensional(ir.Vector(t.Scalar, mask.Len), lanes)
}

/*--------------------------------------- Cast ---------------------------------------*/

// Cast converts v to the target type.
//
// Scalars convert between kinds, except that nothing converts implicitly to
// bool. Scalars broadcast to vectors and matrices. Vectors convert to vectors
// by truncation or zero extension. Matrices only convert to matrices of the
// same shape. Any other conversion records an error and returns poison.
func (e *Emitter) Cast(v ir.ValueID, target *ir.Type) ir.ValueID {
	if !e.IsValid(v) {
		return v
	}
	src := e.Type(v)
	if src == target {
		return v
	}
	if !target.IsPrimitive() || !src.IsPrimitive() {
		e.errorAt(v, "Cannot construct a '%s' from a '%s'.", target, src)
		return ir.PoisonValue
	}
	if target.IsBoolean() && !src.IsBoolean() {
		e.errorAt(v, "Cannot implicitly convert a '%s' to '%s'.", src, target)
		return ir.PoisonValue
	}

	switch {
	case target.IsScalar():
		return e.castToScalar(v, target)

	case src.IsScalar():
		lane := e.Cast(v, target.ToScalar())
		if !e.IsValid(lane) {
			return lane
		}
		lanes := make([]ir.ValueID, target.Lanes())
		for i := range lanes {
			lanes[i] = lane
		}
		return e.dimensional(target, lanes)

	case target.IsVector() && src.IsVector():
		laneType := target.ToScalar()
		lanes := make([]ir.ValueID, target.Lanes())
		for i := range lanes {
			if i < src.Lanes() {
				lanes[i] = e.Cast(e.Subscript(v, i), laneType)
			} else {
				lanes[i] = e.ConstantZero(laneType.Scalar)
			}
		}
		return e.dimensional(target, lanes)

	case target.Rows == src.Rows && target.Cols == src.Cols:
		if d, ok := e.Value(v).Kind.(ir.Dimensional); ok {
			laneType := target.ToScalar()
			lanes := make([]ir.ValueID, target.Lanes())
			for i := range lanes {
				lanes[i] = e.Cast(d.Components[i], laneType)
			}
			return e.dimensional(target, lanes)
		}
		return e.Emit(ir.Value{Type: target, Kind: ir.Cast{Arg: v}})
	}

	e.errorAt(v, "Cannot construct a '%s' from a '%s'.", target, src)
	return ir.PoisonValue
}

func (e *Emitter) castToScalar(v ir.ValueID, target *ir.Type) ir.ValueID {
	v = e.Subscript(v, 0)
	if !e.IsValid(v) {
		return v
	}
	src := e.Type(v)
	if src == target {
		return v
	}

	if c, ok := e.AsConstant(v); ok {
		switch {
		case target.Scalar == ir.ScalarInt && src.Scalar == ir.ScalarFloat:
			return e.ConstantInt(int64(c.Float()))
		case target.Scalar == ir.ScalarInt:
			return e.ConstantInt(c.Int())
		default:
			return e.ConstantFloat(float32(c.Int()))
		}
	}
	return e.Emit(ir.Value{Type: target, Kind: ir.Cast{Arg: v}})
}

// CastToScalar converts v to the scalar of its own kind, keeping lane 0.
func (e *Emitter) CastToScalar(v ir.ValueID) ir.ValueID {
	v = e.CheckIsPrimitive(v)
	if !e.IsValid(v) {
		return v
	}
	return e.Cast(v, e.Type(v).ToScalar())
}
