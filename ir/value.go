// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"fmt"
	"math"
)

// ValueID references a value in a Module's value arena.
type ValueID uint32

const (
	// NoValue marks an absent operand.
	NoValue ValueID = 0

	// PoisonValue is the single poison instance of every module.
	PoisonValue ValueID = 1
)

// MaxComponents is the number of lanes of the largest primitive type.
const MaxComponents = MaxRows * MaxColumns

// MaxInlineArguments bounds the number of arguments of an inline code value.
const MaxInlineArguments = 16

// Value is a node of the value graph: a leaf or an instruction.
//
// Values are immutable and comparable. Two values are the same computation
// if and only if they compare equal with ==, which is what the emitter uses to
// unify them. Scheduling data is kept outside of Value.
type Value struct {
	Type *Type
	Kind ValueKind
}

// ValueKind is the payload of a Value. It is a closed set: only the types in
// this file implement it.
type ValueKind interface {
	valueKind()
}

// Poison is the invalid value produced by failed constructions.
type Poison struct{}

func (Poison) valueKind() {}

// Constant is a scalar constant. Vector and matrix constants are Dimensional
// values whose components are constants. The interpretation of Bits depends
// on the value type: bools are 0 or 1, ints are two's complement int64 and
// floats are IEEE-754 binary32 bits.
type Constant struct {
	Bits uint64
}

func (Constant) valueKind() {}

// BoolConstant returns the payload of a boolean constant.
func BoolConstant(b bool) Constant {
	if b {
		return Constant{Bits: 1}
	}
	return Constant{}
}

// IntConstant returns the payload of an integer constant.
func IntConstant(i int64) Constant { return Constant{Bits: uint64(i)} }

// FloatConstant returns the payload of a float constant.
func FloatConstant(f float32) Constant { return Constant{Bits: uint64(math.Float32bits(f))} }

// Bool returns the constant as a boolean.
func (c Constant) Bool() bool { return c.Bits != 0 }

// Int returns the constant as an integer.
func (c Constant) Int() int64 { return int64(c.Bits) }

// Float returns the constant as a float.
func (c Constant) Float() float32 { return math.Float32frombits(uint32(c.Bits)) }

// ExternalInput reads a value provided by the surrounding shader.
type ExternalInput struct {
	ID ExternalInputID
}

func (ExternalInput) valueKind() {}

// TextureObject references a texture asset.
type TextureObject struct {
	Texture     string
	SamplerType SamplerType
}

func (TextureObject) valueKind() {}

// UniformParameter references a runtime-settable material parameter.
type UniformParameter struct {
	Parameter   uint32
	SamplerType SamplerType
}

func (UniformParameter) valueKind() {}

// SetOutput assigns a value to a material output attribute.
type SetOutput struct {
	Property Property
	Arg      ValueID
}

func (SetOutput) valueKind() {}

// Dimensional aggregates scalar components into a vector or matrix.
// Only the first Type.Lanes() entries of Components are used.
type Dimensional struct {
	Components [MaxComponents]ValueID
}

func (Dimensional) valueKind() {}

// Operator applies an operator to up to three arguments.
type Operator struct {
	Op      Op
	A, B, C ValueID
}

func (Operator) valueKind() {}

// Branch selects between two values. Its arms are lazily evaluated: the
// scheduler places instructions only needed by one arm inside that arm.
type Branch struct {
	Condition ValueID
	True      ValueID
	False     ValueID
}

func (Branch) valueKind() {}

// Subscript extracts a single component of a vector or matrix.
type Subscript struct {
	Arg   ValueID
	Index int
}

func (Subscript) valueKind() {}

// Cast converts its argument to the value type.
type Cast struct {
	Arg ValueID
}

func (Cast) valueKind() {}

// TextureRead samples a texture.
type TextureRead struct {
	Texture       ValueID
	TexCoord      ValueID
	Mip           ValueID // mip level or mip bias, depending on Mode
	TexCoordDdx   ValueID
	TexCoordDdy   ValueID
	Mode          TextureReadMode
	SamplerSource SamplerSourceMode
	SamplerType   SamplerType
}

func (TextureRead) valueKind() {}

// InlineCode is a fragment of target code with positional arguments $0..$N.
// Either Code or Declaration is set.
type InlineCode struct {
	Code        string
	Declaration *ExternalCodeDeclaration
	NumArgs     int
	Args        [MaxInlineArguments]ValueID
	Flags       ValueFlags
	Properties  GraphProperties
}

func (InlineCode) valueKind() {}

// StageSwitch evaluates to a different argument in each stage.
type StageSwitch struct {
	Args [NumStages]ValueID
}

func (StageSwitch) valueKind() {}

// HardwarePartialDerivative computes ddx/ddy of its argument using the
// pixel quad. It is only valid in stages supporting hardware derivatives.
type HardwarePartialDerivative struct {
	Arg  ValueID
	Axis DerivativeAxis
}

func (HardwarePartialDerivative) valueKind() {}

// ValueFlags carries per-value facts the analyzer and translator need.
type ValueFlags uint8

const (
	// FlagHasDynamicCode marks inline code written by the user in the graph.
	FlagHasDynamicCode ValueFlags = 1 << iota
)

// Has reports whether all bits of f2 are set in f.
func (f ValueFlags) Has(f2 ValueFlags) bool { return f&f2 == f2 }

// IsPoison reports whether v is the poison value.
func (v Value) IsPoison() bool {
	_, ok := v.Kind.(Poison)
	return ok
}

// IsInstruction reports whether v is an instruction, that is a value that
// must be scheduled into a block and evaluated at runtime.
func (v Value) IsInstruction() bool {
	switch v.Kind.(type) {
	case Poison, Constant, ExternalInput, TextureObject, UniformParameter:
		return false
	case SetOutput, Dimensional, Operator, Branch, Subscript, Cast,
		TextureRead, InlineCode, StageSwitch, HardwarePartialDerivative:
		return true
	default:
		panic(Unreachable(v.Kind))
	}
}

// Operands appends every operand of v to dst and returns the extended slice.
func (v Value) Operands(dst []ValueID) []ValueID {
	add := func(ids ...ValueID) {
		for _, id := range ids {
			if id != NoValue {
				dst = append(dst, id)
			}
		}
	}

	switch k := v.Kind.(type) {
	case Poison, Constant, ExternalInput, TextureObject, UniformParameter:
	case SetOutput:
		add(k.Arg)
	case Dimensional:
		add(k.Components[:v.Type.Lanes()]...)
	case Operator:
		add(k.A, k.B, k.C)
	case Branch:
		add(k.Condition, k.True, k.False)
	case Subscript:
		add(k.Arg)
	case Cast:
		add(k.Arg)
	case TextureRead:
		add(k.Texture, k.TexCoord, k.Mip, k.TexCoordDdx, k.TexCoordDdy)
	case InlineCode:
		add(k.Args[:k.NumArgs]...)
	case StageSwitch:
		add(k.Args[:]...)
	case HardwarePartialDerivative:
		add(k.Arg)
	default:
		panic(Unreachable(v.Kind))
	}
	return dst
}

// StageOperands is like Operands but only returns the operands used when v is
// evaluated in the given stage. A StageSwitch only uses its stage argument.
func (v Value) StageOperands(dst []ValueID, stage Stage) []ValueID {
	if sw, ok := v.Kind.(StageSwitch); ok {
		if arg := sw.Args[stage]; arg != NoValue {
			dst = append(dst, arg)
		}
		return dst
	}
	return v.Operands(dst)
}

// Unreachable returns the message used when a closed kind switch meets an
// unknown variant. It is a programming error, never a user error.
func Unreachable(kind any) string {
	return fmt.Sprintf("ir: unhandled kind %T", kind)
}
