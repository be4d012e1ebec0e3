// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

// SamplerType is the semantic of the data stored in a texture. It selects the
// post-processing applied to a texture lookup.
type SamplerType uint8

const (
	SamplerColor SamplerType = iota
	SamplerGrayscale
	SamplerAlpha
	SamplerNormal
	SamplerMasks
	SamplerDistanceFieldFont
	SamplerLinearColor
	SamplerLinearGrayscale
	SamplerData
)

var samplerTypeNames = [...]string{
	SamplerColor:             "Color",
	SamplerGrayscale:         "Grayscale",
	SamplerAlpha:             "Alpha",
	SamplerNormal:            "Normal",
	SamplerMasks:             "Masks",
	SamplerDistanceFieldFont: "DistanceFieldFont",
	SamplerLinearColor:       "LinearColor",
	SamplerLinearGrayscale:   "LinearGrayscale",
	SamplerData:              "Data",
}

// String returns the sampler type name.
func (s SamplerType) String() string {
	if int(s) < len(samplerTypeNames) {
		return samplerTypeNames[s]
	}
	return "Unknown"
}

// ParseSamplerType returns the sampler type with the given name.
func ParseSamplerType(name string) (SamplerType, bool) {
	for i, n := range samplerTypeNames {
		if n == name {
			return SamplerType(i), true
		}
	}
	return 0, false
}

// SamplerSourceMode selects where the sampler state of a texture read comes from.
type SamplerSourceMode uint8

const (
	SamplerSourceFromTextureAsset SamplerSourceMode = iota
	SamplerSourceWrapWorldGroupSettings
	SamplerSourceClampWorldGroupSettings
)

// TextureReadMode is the kind of texture lookup performed by a TextureRead.
type TextureReadMode uint8

const (
	ReadGatherRed TextureReadMode = iota
	ReadGatherGreen
	ReadGatherBlue
	ReadGatherAlpha
	ReadMipAuto
	ReadMipLevel
	ReadMipBias
	ReadDerivatives
)

// String returns the read mode name.
func (m TextureReadMode) String() string {
	switch m {
	case ReadGatherRed:
		return "GatherRed"
	case ReadGatherGreen:
		return "GatherGreen"
	case ReadGatherBlue:
		return "GatherBlue"
	case ReadGatherAlpha:
		return "GatherAlpha"
	case ReadMipAuto:
		return "MipAuto"
	case ReadMipLevel:
		return "MipLevel"
	case ReadMipBias:
		return "MipBias"
	case ReadDerivatives:
		return "Derivatives"
	default:
		return "Unknown"
	}
}

// IsGather reports whether the mode is one of the channel gather modes.
func (m TextureReadMode) IsGather() bool { return m <= ReadGatherAlpha }

// DerivativeAxis is the screen-space axis of a partial derivative.
type DerivativeAxis uint8

const (
	AxisX DerivativeAxis = iota
	AxisY
)

// String returns "x" or "y".
func (a DerivativeAxis) String() string {
	if a == AxisX {
		return "x"
	}
	return "y"
}
