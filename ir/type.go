// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"fmt"
	"strconv"
)

// TypeKind identifies the family of a Type.
type TypeKind uint8

const (
	TypeVoid TypeKind = iota
	TypePoison
	TypePrimitive
	TypeObject
)

// ScalarKind is the scalar component kind of a primitive type.
// The order matters: promotion always picks the larger kind.
type ScalarKind uint8

const (
	ScalarBool ScalarKind = iota
	ScalarInt
	ScalarFloat
)

// String returns the HLSL spelling of the scalar kind.
func (k ScalarKind) String() string {
	switch k {
	case ScalarBool:
		return "bool"
	case ScalarInt:
		return "int"
	case ScalarFloat:
		return "float"
	default:
		return "unknown"
	}
}

// ObjectKind identifies non-primitive object types.
type ObjectKind uint8

const (
	ObjectTexture2D ObjectKind = iota
	ObjectTextureCube
	ObjectTexture2DArray
)

// String returns the HLSL spelling of the object kind.
func (k ObjectKind) String() string {
	switch k {
	case ObjectTexture2D:
		return "Texture2D"
	case ObjectTextureCube:
		return "TextureCube"
	case ObjectTexture2DArray:
		return "Texture2DArray"
	default:
		return "unknown"
	}
}

// MaxRows and MaxColumns bound the primitive type shapes.
const (
	MaxRows    = 4
	MaxColumns = 4
)

// Type describes the type of a Value.
//
// Types are interned: there is exactly one *Type per distinct type, so two
// types are equal if and only if their pointers are equal. Types must only be
// obtained through the constructor functions of this package.
type Type struct {
	Kind   TypeKind
	Scalar ScalarKind
	Rows   int
	Cols   int
	Object ObjectKind

	spelling string
}

var (
	voidType   = &Type{Kind: TypeVoid, spelling: "void"}
	poisonType = &Type{Kind: TypePoison, spelling: "poison"}

	// primitiveTypes[kind][rows-1][cols-1]
	primitiveTypes [3][MaxRows][MaxColumns]*Type

	objectTypes = [...]*Type{
		ObjectTexture2D:      {Kind: TypeObject, Object: ObjectTexture2D, spelling: "Texture2D"},
		ObjectTextureCube:    {Kind: TypeObject, Object: ObjectTextureCube, spelling: "TextureCube"},
		ObjectTexture2DArray: {Kind: TypeObject, Object: ObjectTexture2DArray, spelling: "Texture2DArray"},
	}
)

// The primitive table is built once and never mutated afterwards, so it can
// be read from concurrent compilations without synchronization.
func init() {
	for kind := ScalarBool; kind <= ScalarFloat; kind++ {
		for r := 1; r <= MaxRows; r++ {
			for c := 1; c <= MaxColumns; c++ {
				primitiveTypes[kind][r-1][c-1] = &Type{
					Kind:     TypePrimitive,
					Scalar:   kind,
					Rows:     r,
					Cols:     c,
					spelling: primitiveSpelling(kind, r, c),
				}
			}
		}
	}
}

func primitiveSpelling(kind ScalarKind, rows, cols int) string {
	s := kind.String()
	switch {
	case rows == 1 && cols == 1:
		return s
	case cols == 1:
		return s + strconv.Itoa(rows)
	default:
		return s + strconv.Itoa(rows) + "x" + strconv.Itoa(cols)
	}
}

// Void returns the void type, used by instructions that produce no value.
func Void() *Type { return voidType }

// PoisonType returns the type of the poison value.
func PoisonType() *Type { return poisonType }

// Primitive returns the interned primitive type with the given shape.
// Vectors are represented as rows x 1.
func Primitive(kind ScalarKind, rows, cols int) *Type {
	if kind > ScalarFloat || rows < 1 || rows > MaxRows || cols < 1 || cols > MaxColumns {
		panic(fmt.Sprintf("ir: invalid primitive type %s %dx%d", kind, rows, cols))
	}
	return primitiveTypes[kind][rows-1][cols-1]
}

// Scalar returns the scalar type of the given kind.
func Scalar(kind ScalarKind) *Type { return Primitive(kind, 1, 1) }

// Vector returns the vector type of the given kind and lane count.
// A lane count of one yields the scalar type.
func Vector(kind ScalarKind, lanes int) *Type { return Primitive(kind, lanes, 1) }

// Object returns the interned object type of the given kind.
func Object(kind ObjectKind) *Type { return objectTypes[kind] }

// Shorthands for the most common types.
func Bool() *Type   { return Scalar(ScalarBool) }
func Int() *Type    { return Scalar(ScalarInt) }
func Float() *Type  { return Scalar(ScalarFloat) }
func Float2() *Type { return Vector(ScalarFloat, 2) }
func Float3() *Type { return Vector(ScalarFloat, 3) }
func Float4() *Type { return Vector(ScalarFloat, 4) }

// Texture2D returns the 2D texture object type.
func Texture2D() *Type { return Object(ObjectTexture2D) }

// String returns the HLSL spelling of the type.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.spelling
}

// IsPrimitive reports whether t is a primitive (scalar, vector or matrix) type.
func (t *Type) IsPrimitive() bool { return t.Kind == TypePrimitive }

// IsScalar reports whether t is a primitive scalar.
func (t *Type) IsScalar() bool { return t.Kind == TypePrimitive && t.Rows == 1 && t.Cols == 1 }

// IsVector reports whether t is a primitive with more than one lane in a single column.
func (t *Type) IsVector() bool { return t.Kind == TypePrimitive && t.Cols == 1 && t.Rows > 1 }

// IsMatrix reports whether t is a primitive with more than one column.
func (t *Type) IsMatrix() bool { return t.Kind == TypePrimitive && t.Cols > 1 }

// IsBoolean reports whether t is a primitive of boolean kind.
func (t *Type) IsBoolean() bool { return t.Kind == TypePrimitive && t.Scalar == ScalarBool }

// IsInteger reports whether t is a primitive of integer kind.
func (t *Type) IsInteger() bool { return t.Kind == TypePrimitive && t.Scalar == ScalarInt }

// IsFloat reports whether t is a primitive of float kind.
func (t *Type) IsFloat() bool { return t.Kind == TypePrimitive && t.Scalar == ScalarFloat }

// IsArithmetic reports whether t supports arithmetic operations.
func (t *Type) IsArithmetic() bool { return t.Kind == TypePrimitive && t.Scalar != ScalarBool }

// IsTexture reports whether t is a texture object type.
func (t *Type) IsTexture() bool { return t.Kind == TypeObject }

// IsPoison reports whether t is the poison type.
func (t *Type) IsPoison() bool { return t.Kind == TypePoison }

// Lanes returns the number of scalar components of a primitive type, zero otherwise.
func (t *Type) Lanes() int {
	if t.Kind != TypePrimitive {
		return 0
	}
	return t.Rows * t.Cols
}

// WithScalar returns the primitive type with the same shape as t and the given scalar kind.
func (t *Type) WithScalar(kind ScalarKind) *Type {
	return Primitive(kind, t.Rows, t.Cols)
}

// ToScalar returns the scalar type of t's component kind.
func (t *Type) ToScalar() *Type {
	return Scalar(t.Scalar)
}

// CommonType returns the type both a and b can be implicitly converted to.
//
// Identical types are their own common type. Matrices only unify with a matrix
// of identical shape, differing in scalar kind. Scalars and vectors unify to
// the larger scalar kind; their lane counts must either match or one of them
// must be a scalar, which is broadcast.
func CommonType(a, b *Type) (*Type, bool) {
	if a == b {
		return a, true
	}
	if !a.IsPrimitive() || !b.IsPrimitive() {
		return nil, false
	}

	kind := max(a.Scalar, b.Scalar)

	if a.IsMatrix() || b.IsMatrix() {
		if a.Rows != b.Rows || a.Cols != b.Cols {
			return nil, false
		}
		return Primitive(kind, a.Rows, a.Cols), true
	}

	if a.Rows != b.Rows && a.Rows != 1 && b.Rows != 1 {
		return nil, false
	}
	return Vector(kind, max(a.Rows, b.Rows)), true
}

// ParseType returns the type with the given HLSL spelling, e.g. "float3",
// "bool" or "float4x4".
func ParseType(name string) (*Type, bool) {
	for _, t := range objectTypes {
		if t.spelling == name {
			return t, true
		}
	}
	for kind := ScalarBool; kind <= ScalarFloat; kind++ {
		for r := 0; r < MaxRows; r++ {
			for c := 0; c < MaxColumns; c++ {
				if t := primitiveTypes[kind][r][c]; t.spelling == name {
					return t, true
				}
			}
		}
	}
	return nil, false
}
