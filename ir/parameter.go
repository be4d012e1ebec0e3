// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

// ParameterKind is the kind of a runtime-settable material parameter.
type ParameterKind uint8

const (
	ParameterScalar ParameterKind = iota
	ParameterVector
	ParameterTexture
	ParameterStaticSwitch
)

// String returns the parameter kind name.
func (k ParameterKind) String() string {
	switch k {
	case ParameterScalar:
		return "Scalar"
	case ParameterVector:
		return "Vector"
	case ParameterTexture:
		return "Texture"
	case ParameterStaticSwitch:
		return "StaticSwitch"
	default:
		return "Unknown"
	}
}

// ParseParameterKind returns the parameter kind with the given name.
func ParseParameterKind(name string) (ParameterKind, bool) {
	for k := ParameterScalar; k <= ParameterStaticSwitch; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// ParameterInfo identifies a parameter. Two parameter nodes with the same
// info refer to the same parameter.
type ParameterInfo struct {
	Name string
}

// ParameterMetadata describes a parameter's kind and default value.
type ParameterMetadata struct {
	Kind ParameterKind

	// Default holds the default lanes of scalar and vector parameters.
	Default [4]float32

	// Texture is the default texture asset of texture parameters.
	Texture string

	// SamplerType is the sampler semantic of texture parameters.
	SamplerType SamplerType

	// Switch is the default value of static switch parameters.
	Switch bool

	// Group is a free-form grouping label for tools.
	Group string
}

// Type returns the type of the values reading the parameter.
func (md *ParameterMetadata) Type() *Type {
	switch md.Kind {
	case ParameterScalar:
		return Float()
	case ParameterVector:
		return Float4()
	case ParameterTexture:
		return Texture2D()
	default:
		return Bool()
	}
}

// Parameter is an entry of a Module's parameter table.
type Parameter struct {
	Info     ParameterInfo
	Metadata ParameterMetadata
}

// UniformAllocation locates a scalar or vector parameter in the packed
// uniform buffer: NumLanes lanes starting at lane Lane of float4 slot Slot.
type UniformAllocation struct {
	Slot     int
	Lane     int
	NumLanes int
}

// Swizzle returns the HLSL component selector of the allocation, e.g. "yz".
func (a UniformAllocation) Swizzle() string {
	const lanes = "xyzw"
	return lanes[a.Lane : a.Lane+a.NumLanes]
}

// TextureBinding is an entry of a Module's texture table.
type TextureBinding struct {
	// Texture is the texture asset name.
	Texture string

	// Parameter is the texture parameter index, or -1 for a fixed texture.
	Parameter int

	SamplerType SamplerType
}
