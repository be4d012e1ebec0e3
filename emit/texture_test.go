// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package emit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/mir/ir"
)

func stageArgs(t *testing.T, e *Emitter, v ir.ValueID) (pixel, vertex ir.TextureRead) {
	t.Helper()
	sw, ok := e.Value(v).Kind.(ir.StageSwitch)
	require.True(t, ok, "expected a stage switch, got %v", e.Value(v))
	pixel, ok = e.Value(sw.Args[ir.StagePixel]).Kind.(ir.TextureRead)
	require.True(t, ok)
	vertex, ok = e.Value(sw.Args[ir.StageVertex]).Kind.(ir.TextureRead)
	require.True(t, ok)
	require.Equal(t, sw.Args[ir.StageVertex], sw.Args[ir.StageCompute])
	return pixel, vertex
}

func TestTextureSample(t *testing.T) {
	e, m := newTestEmitter(t)
	tex := e.TextureObject("T_Albedo", ir.SamplerColor)
	uv := e.ExternalInput(ir.TexCoord0)

	s := e.TextureSample(TextureSampleParams{Texture: tex, TexCoord: uv})

	require.Equal(t, ir.Float4(), e.Type(s))
	hw, an := stageArgs(t, e, s)
	require.Equal(t, ir.ReadMipAuto, hw.Mode)
	require.Equal(t, tex, hw.Texture)
	require.Equal(t, uv, hw.TexCoord)
	require.Equal(t, ir.ReadDerivatives, an.Mode)
	require.Equal(t, e.ExternalInput(ir.TexCoord0Ddx), an.TexCoordDdx)
	require.Equal(t, e.ExternalInput(ir.TexCoord0Ddy), an.TexCoordDdy)
	require.Equal(t, ir.SamplerColor, an.SamplerType)
	require.True(t, m.IsValid())

	// Sampling twice is the same value.
	require.Equal(t, s, e.TextureSample(TextureSampleParams{Texture: tex, TexCoord: uv}))
}

func TestTextureSampleWithViewMipBias(t *testing.T) {
	e, _ := newTestEmitter(t)
	tex := e.TextureObject("T_Albedo", ir.SamplerColor)
	uv := e.ExternalInput(ir.TexCoord0)
	bias := e.ExternalInput(ir.ViewMaterialTextureMipBias)

	s := e.TextureSample(TextureSampleParams{Texture: tex, TexCoord: uv, AutomaticViewMipBias: true})

	hw, an := stageArgs(t, e, s)
	require.Equal(t, ir.ReadMipBias, hw.Mode)
	require.Equal(t, bias, hw.Mip)
	scale := e.Exponential2(bias)
	require.Equal(t, e.Multiply(e.ExternalInput(ir.TexCoord0Ddx), scale), an.TexCoordDdx)
	require.Equal(t, e.Multiply(e.ExternalInput(ir.TexCoord0Ddy), scale), an.TexCoordDdy)
}

func TestTextureSampleBias(t *testing.T) {
	e, _ := newTestEmitter(t)
	tex := e.TextureObject("T_Albedo", ir.SamplerColor)
	uv := e.ExternalInput(ir.TexCoord2)

	s := e.TextureSampleBias(TextureSampleParams{Texture: tex, TexCoord: uv}, e.ConstantInt(1))

	hw, an := stageArgs(t, e, s)
	require.Equal(t, ir.ReadMipBias, hw.Mode)
	require.Equal(t, e.ConstantFloat(1), hw.Mip)
	require.Equal(t, e.Multiply(e.ExternalInput(ir.TexCoord2Ddx), e.ConstantFloat(2)), an.TexCoordDdx)
}

func TestTextureSampleLevelAndGrad(t *testing.T) {
	e, m := newTestEmitter(t)
	p := TextureSampleParams{
		Texture:       e.TextureObject("T_Mask", ir.SamplerMasks),
		TexCoord:      e.ConstantFloat2([2]float32{0.5, 0.5}),
		SamplerSource: ir.SamplerSourceClampWorldGroupSettings,
	}

	lvl := e.Value(e.TextureSampleLevel(p, e.ConstantFloat(2))).Kind.(ir.TextureRead)
	require.Equal(t, ir.ReadMipLevel, lvl.Mode)
	require.Equal(t, e.ConstantFloat(2), lvl.Mip)
	require.Equal(t, ir.SamplerSourceClampWorldGroupSettings, lvl.SamplerSource)
	require.Equal(t, ir.SamplerMasks, lvl.SamplerType)

	ddx := e.ConstantFloat2([2]float32{0.1, 0})
	ddy := e.ConstantFloat2([2]float32{0, 0.1})
	grad := e.Value(e.TextureSampleGrad(p, ddx, ddy)).Kind.(ir.TextureRead)
	require.Equal(t, ir.ReadDerivatives, grad.Mode)
	require.Equal(t, ddx, grad.TexCoordDdx)
	require.Equal(t, ddy, grad.TexCoordDdy)

	p.AutomaticViewMipBias = true
	grad = e.Value(e.TextureSampleGrad(p, ddx, ddy)).Kind.(ir.TextureRead)
	mul := e.ExternalInput(ir.ViewMaterialTextureDerivativeMultiply)
	require.Equal(t, e.Multiply(ddx, mul), grad.TexCoordDdx)

	gather := e.Value(e.TextureGather(p, ir.ReadGatherGreen)).Kind.(ir.TextureRead)
	require.Equal(t, ir.ReadGatherGreen, gather.Mode)
	require.True(t, m.IsValid())
}

func TestTextureSampleErrors(t *testing.T) {
	e, m := newTestEmitter(t)

	v := e.TextureSample(TextureSampleParams{Texture: e.ConstantFloat(1), TexCoord: e.ExternalInput(ir.TexCoord0)})
	require.Equal(t, ir.PoisonValue, v)
	requireDiagnostic(t, m, ir.ErrTypeError, "Expected a texture value, got a 'float' instead.")

	require.Panics(t, func() {
		e.TextureGather(TextureSampleParams{}, ir.ReadMipAuto)
	})
}

func TestParameter(t *testing.T) {
	m := ir.NewModule("M_Test")
	e := New(m, Options{StaticSwitchOverrides: map[string]bool{"UseDetail": false}})

	sw := e.Parameter(ir.ParameterInfo{Name: "UseDetail"}, ir.ParameterMetadata{Kind: ir.ParameterStaticSwitch, Switch: true})
	require.Equal(t, e.ConstantFalse(), sw)
	sw = e.Parameter(ir.ParameterInfo{Name: "UseRim"}, ir.ParameterMetadata{Kind: ir.ParameterStaticSwitch, Switch: true})
	require.Equal(t, e.ConstantTrue(), sw)
	require.Empty(t, m.Parameters)

	tint := e.Parameter(ir.ParameterInfo{Name: "Tint"}, ir.ParameterMetadata{Kind: ir.ParameterVector})
	require.Equal(t, ir.Float4(), e.Type(tint))
	require.Equal(t, tint, e.Parameter(ir.ParameterInfo{Name: "Tint"}, ir.ParameterMetadata{Kind: ir.ParameterVector}))

	tex := e.Parameter(ir.ParameterInfo{Name: "Detail"}, ir.ParameterMetadata{
		Kind:        ir.ParameterTexture,
		Texture:     "T_Detail",
		SamplerType: ir.SamplerNormal,
	})
	require.Equal(t, ir.Texture2D(), e.Type(tex))
	require.Len(t, m.Parameters, 2)

	read := e.TextureSampleLevel(TextureSampleParams{Texture: tex, TexCoord: e.ExternalInput(ir.TexCoord0)}, e.ConstantFloat(0))
	require.Equal(t, ir.SamplerNormal, e.Value(read).Kind.(ir.TextureRead).SamplerType)
	require.True(t, m.IsValid())

	bad := e.Parameter(ir.ParameterInfo{Name: "Tint"}, ir.ParameterMetadata{Kind: ir.ParameterScalar})
	require.Equal(t, ir.PoisonValue, bad)
	requireDiagnostic(t, m, ir.ErrTypeError, "Parameter 'Tint' was declared as a Vector parameter")
}
