// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

// Property is a material output attribute.
type Property uint8

const (
	PropertyBaseColor Property = iota
	PropertyMetallic
	PropertySpecular
	PropertyRoughness
	PropertyAnisotropy
	PropertyEmissiveColor
	PropertyOpacity
	PropertyOpacityMask
	PropertyNormal
	PropertyTangent
	PropertyWorldPositionOffset
	PropertySubsurfaceColor
	PropertyAmbientOcclusion
	PropertyRefraction
	PropertyPixelDepthOffset

	NumProperties
)

type propertyInfo struct {
	name         string
	typ          func() *Type
	stages       StageMask
	defaultValue [4]float32
}

// Pixel attributes are also evaluated by the compute stage (e.g. for
// material cache capture), which has no hardware derivatives.
const pixelStages = 1<<StagePixel | 1<<StageCompute

var propertyInfos = [NumProperties]propertyInfo{
	PropertyBaseColor:           {"BaseColor", Float3, pixelStages, [4]float32{0, 0, 0, 0}},
	PropertyMetallic:            {"Metallic", Float, pixelStages, [4]float32{}},
	PropertySpecular:            {"Specular", Float, pixelStages, [4]float32{0.5}},
	PropertyRoughness:           {"Roughness", Float, pixelStages, [4]float32{0.5}},
	PropertyAnisotropy:          {"Anisotropy", Float, pixelStages, [4]float32{}},
	PropertyEmissiveColor:       {"EmissiveColor", Float3, pixelStages, [4]float32{}},
	PropertyOpacity:             {"Opacity", Float, pixelStages, [4]float32{1}},
	PropertyOpacityMask:         {"OpacityMask", Float, pixelStages, [4]float32{1}},
	PropertyNormal:              {"Normal", Float3, pixelStages, [4]float32{0, 0, 1}},
	PropertyTangent:             {"Tangent", Float3, pixelStages, [4]float32{1, 0, 0}},
	PropertyWorldPositionOffset: {"WorldPositionOffset", Float3, 1 << StageVertex, [4]float32{}},
	PropertySubsurfaceColor:     {"SubsurfaceColor", Float3, pixelStages, [4]float32{1, 1, 1}},
	PropertyAmbientOcclusion:    {"AmbientOcclusion", Float, pixelStages, [4]float32{1}},
	PropertyRefraction:          {"Refraction", Float3, pixelStages, [4]float32{1, 0, 0}},
	PropertyPixelDepthOffset:    {"PixelDepthOffset", Float, pixelStages, [4]float32{}},
}

// String returns the property name.
func (p Property) String() string {
	if p < NumProperties {
		return propertyInfos[p].name
	}
	return "Unknown"
}

// Type returns the type values assigned to the property are cast to.
func (p Property) Type() *Type {
	return propertyInfos[p].typ()
}

// Default returns the lanes of the value used when the property is not connected.
func (p Property) Default() []float32 {
	d := propertyInfos[p].defaultValue
	return d[:p.Type().Lanes()]
}

// EvaluatesInStage reports whether the property is computed in the given stage.
func (p Property) EvaluatesInStage(s Stage) bool {
	return propertyInfos[p].stages.Has(s)
}

// ParseProperty returns the property with the given name.
func ParseProperty(name string) (Property, bool) {
	for i := Property(0); i < NumProperties; i++ {
		if propertyInfos[i].name == name {
			return i, true
		}
	}
	return 0, false
}
