// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import "strconv"

// ExternalInputID identifies a value provided by the surrounding shader
// rather than computed by the graph.
type ExternalInputID uint8

// MaxTexCoords is the number of texture coordinate interpolants a material
// can read.
const MaxTexCoords = 8

const (
	// TexCoord0 .. TexCoord7 are the mesh texture coordinates.
	TexCoord0 ExternalInputID = iota
	TexCoord1
	TexCoord2
	TexCoord3
	TexCoord4
	TexCoord5
	TexCoord6
	TexCoord7

	// TexCoord0Ddx .. TexCoord7Ddx are the precomputed screen-space x derivatives.
	TexCoord0Ddx
	TexCoord1Ddx
	TexCoord2Ddx
	TexCoord3Ddx
	TexCoord4Ddx
	TexCoord5Ddx
	TexCoord6Ddx
	TexCoord7Ddx

	// TexCoord0Ddy .. TexCoord7Ddy are the precomputed screen-space y derivatives.
	TexCoord0Ddy
	TexCoord1Ddy
	TexCoord2Ddy
	TexCoord3Ddy
	TexCoord4Ddy
	TexCoord5Ddy
	TexCoord6Ddy
	TexCoord7Ddy

	WorldPosition
	WorldNormal
	VertexColor
	ScreenPosition
	PixelPosition
	CameraVector
	ViewMaterialTextureMipBias
	ViewMaterialTextureDerivativeMultiply

	NumExternalInputs
)

type externalInputInfo struct {
	name   string
	typ    func() *Type
	code   string
	stages StageMask
}

var externalInputInfos [NumExternalInputs]externalInputInfo

func init() {
	for i := 0; i < MaxTexCoords; i++ {
		n := strconv.Itoa(i)
		externalInputInfos[TexCoord0+ExternalInputID(i)] = externalInputInfo{
			name:   "TexCoord" + n,
			typ:    Float2,
			code:   "Parameters.TexCoords[" + n + "].xy",
			stages: AllStages,
		}
		externalInputInfos[TexCoord0Ddx+ExternalInputID(i)] = externalInputInfo{
			name:   "TexCoord" + n + "_Ddx",
			typ:    Float2,
			code:   "Parameters.TexCoords_DDX[" + n + "].xy",
			stages: AllStages,
		}
		externalInputInfos[TexCoord0Ddy+ExternalInputID(i)] = externalInputInfo{
			name:   "TexCoord" + n + "_Ddy",
			typ:    Float2,
			code:   "Parameters.TexCoords_DDY[" + n + "].xy",
			stages: AllStages,
		}
	}

	externalInputInfos[WorldPosition] = externalInputInfo{"WorldPosition", Float3, "GetWorldPosition(Parameters)", AllStages}
	externalInputInfos[WorldNormal] = externalInputInfo{"WorldNormal", Float3, "Parameters.WorldNormal", StagePixel.Mask() | StageCompute.Mask()}
	externalInputInfos[VertexColor] = externalInputInfo{"VertexColor", Float4, "Parameters.VertexColor", AllStages}
	externalInputInfos[ScreenPosition] = externalInputInfo{"ScreenPosition", Float4, "GetScreenPosition(Parameters)", StagePixel.Mask() | StageCompute.Mask()}
	externalInputInfos[PixelPosition] = externalInputInfo{"PixelPosition", Float4, "Parameters.SvPosition", StagePixel.Mask() | StageCompute.Mask()}
	externalInputInfos[CameraVector] = externalInputInfo{"CameraVector", Float3, "Parameters.CameraVector", AllStages}
	externalInputInfos[ViewMaterialTextureMipBias] = externalInputInfo{"ViewMaterialTextureMipBias", Float, "View.MaterialTextureMipBias", AllStages}
	externalInputInfos[ViewMaterialTextureDerivativeMultiply] = externalInputInfo{"ViewMaterialTextureDerivativeMultiply", Float, "View.MaterialTextureDerivativeMultiply", AllStages}
}

// String returns the external input name.
func (id ExternalInputID) String() string {
	if id < NumExternalInputs {
		return externalInputInfos[id].name
	}
	return "Unknown"
}

// Type returns the type of the external input.
func (id ExternalInputID) Type() *Type {
	return externalInputInfos[id].typ()
}

// Code returns the HLSL expression that reads the external input.
func (id ExternalInputID) Code() string {
	return externalInputInfos[id].code
}

// AvailableIn reports whether the input can be read in the given stage.
func (id ExternalInputID) AvailableIn(s Stage) bool {
	return externalInputInfos[id].stages.Has(s)
}

// IsTexCoord reports whether id is one of TexCoord0..TexCoord7.
func (id ExternalInputID) IsTexCoord() bool {
	return id <= TexCoord7
}

// IsTexCoordDerivative reports whether id is a precomputed texture coordinate derivative.
func (id ExternalInputID) IsTexCoordDerivative() bool {
	return id >= TexCoord0Ddx && id <= TexCoord7Ddy
}

// TexCoordIndex returns the texture coordinate index of a texture coordinate
// or texture coordinate derivative input.
func (id ExternalInputID) TexCoordIndex() int {
	return int(id) % MaxTexCoords
}

// TexCoordDerivative returns the input holding the derivative of texture
// coordinate index along the given axis.
func TexCoordDerivative(index int, axis DerivativeAxis) ExternalInputID {
	if axis == AxisX {
		return TexCoord0Ddx + ExternalInputID(index)
	}
	return TexCoord0Ddy + ExternalInputID(index)
}

// ParseExternalInput returns the external input with the given name.
func ParseExternalInput(name string) (ExternalInputID, bool) {
	for i := ExternalInputID(0); i < NumExternalInputs; i++ {
		if externalInputInfos[i].name == name {
			return i, true
		}
	}
	return 0, false
}
