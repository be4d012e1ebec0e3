// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/mir/analyze"
	"github.com/gogpu/mir/emit"
	"github.com/gogpu/mir/ir"
	"github.com/gogpu/mir/schedule"
)

// buildModule lowers a material built by fn and runs the analysis and
// scheduling passes on it.
func buildModule(t *testing.T, fn func(e *emit.Emitter)) *ir.Module {
	t.Helper()
	m := ir.NewModule("M_Test")
	e := emit.New(m, emit.Options{})
	fn(e)
	require.Empty(t, m.Diagnostics)

	analyze.Analyze(m, ir.MaterialConfig{Domain: ir.DomainSurface})
	require.Empty(t, m.Diagnostics)
	schedule.Schedule(m)
	return m
}

func translate(t *testing.T, opts *Options, fn func(e *emit.Emitter)) *Translation {
	t.Helper()
	tr, err := Translate(buildModule(t, fn), opts)
	require.NoError(t, err)
	return tr
}

func sharedSample(e *emit.Emitter) {
	s := e.TextureSample(emit.TextureSampleParams{
		Texture:  e.TextureObject("T_Albedo", ir.SamplerColor),
		TexCoord: e.ExternalInput(ir.TexCoord0),
	})
	e.SetOutput(ir.PropertyBaseColor, e.Add(s, s))
}

func TestTranslate_ConstantColor(t *testing.T) {
	tr := translate(t, nil, func(e *emit.Emitter) {
		e.SetOutput(ir.PropertyBaseColor, e.ConstantFloat3([3]float32{1, 0, 0}))
	})

	pixel := tr.Code[ir.StagePixel]
	require.Empty(t, pixel.Body)
	require.Equal(t, []OutputFragment{
		{Property: ir.PropertyBaseColor, Code: "float3(1.0, 0.0, 0.0)"},
	}, pixel.Outputs)

	require.Empty(t, tr.Code[ir.StageVertex].Outputs)
	require.Equal(t, FeatureNone, tr.Info.UsedFeatures)
	require.Equal(t, "ps_5_1", tr.Info.Profiles[ir.StagePixel])
}

func TestTranslate_SharedTextureSample(t *testing.T) {
	tr := translate(t, nil, sharedSample)

	pixel := tr.Code[ir.StagePixel]
	require.Equal(t,
		"float4 Sample = ProcessMaterialColorTextureLookup(Texture2DSample(Material.Texture2D_0, Material.Texture2D_0Sampler, Parameters.TexCoords[0].xy));\n"+
			"float4 Local = Sample + Sample;\n",
		pixel.Body)
	require.Equal(t, []OutputFragment{
		{Property: ir.PropertyBaseColor, Code: "float3(Local.x, Local.y, Local.z)"},
	}, pixel.Outputs)

	// No hardware derivatives: the mip comes from the texture coordinate derivatives.
	compute := tr.Code[ir.StageCompute]
	require.Equal(t,
		"float4 Sample = ProcessMaterialColorTextureLookup(Texture2DSampleGrad(Material.Texture2D_0, Material.Texture2D_0Sampler, Parameters.TexCoords[0].xy, Parameters.TexCoords_DDX[0].xy, Parameters.TexCoords_DDY[0].xy));\n"+
			"float4 Local = Sample + Sample;\n",
		compute.Body)

	require.Len(t, tr.Info.Textures, 1)
	require.Equal(t, "T_Albedo", tr.Info.Textures[0].Texture)
	require.True(t, tr.Info.UsedFeatures.Has(FeatureTextureSampling))
	require.True(t, tr.Info.UsedFeatures.Has(FeatureDerivatives))
	require.True(t, tr.Info.Properties.Has(ir.UsesTextures))
}

func TestTranslate_Deterministic(t *testing.T) {
	first := translate(t, nil, sharedSample)
	for i := 0; i < 3; i++ {
		require.Equal(t, first, translate(t, nil, sharedSample))
	}
}

func branchOnParameters(e *emit.Emitter) {
	p := e.Parameter(ir.ParameterInfo{Name: "P"}, ir.ParameterMetadata{Kind: ir.ParameterScalar})
	q := e.Parameter(ir.ParameterInfo{Name: "Q"}, ir.ParameterMetadata{Kind: ir.ParameterScalar})
	cond := e.LessThan(p, e.ConstantFloat(0.5))
	e.SetOutput(ir.PropertyMetallic, e.Branch(cond, e.Sin(q), e.ConstantFloat(0)))
}

func TestTranslate_BranchArms(t *testing.T) {
	tr := translate(t, nil, branchOnParameters)

	pixel := tr.Code[ir.StagePixel]
	require.Equal(t,
		"float Branch;\n"+
			"if (Material.PreshaderBuffer[0].y < 0.5) {\n"+
			"    Branch = sin(Material.PreshaderBuffer[0].x);\n"+
			"} else {\n"+
			"    Branch = 0.0;\n"+
			"}\n",
		pixel.Body)
	require.Equal(t, []OutputFragment{{Property: ir.PropertyMetallic, Code: "Branch"}}, pixel.Outputs)
	require.True(t, tr.Info.UsedFeatures.Has(FeatureDynamicBranching))
	require.Equal(t, 1, tr.Info.NumUniformSlots)
}

func TestTranslate_TernaryBranches(t *testing.T) {
	opts := DefaultOptions()
	opts.TernaryBranches = true
	tr := translate(t, opts, branchOnParameters)

	pixel := tr.Code[ir.StagePixel]
	require.Empty(t, pixel.Body)
	require.Equal(t,
		"(Material.PreshaderBuffer[0].y < 0.5) ? sin(Material.PreshaderBuffer[0].x) : 0.0",
		pixel.Outputs[0].Code)
	require.False(t, tr.Info.UsedFeatures.Has(FeatureDynamicBranching))
}

func TestTranslate_TextureParameter(t *testing.T) {
	tr := translate(t, nil, func(e *emit.Emitter) {
		tex := e.Parameter(ir.ParameterInfo{Name: "NormalMap"}, ir.ParameterMetadata{
			Kind:        ir.ParameterTexture,
			Texture:     "T_FlatNormal",
			SamplerType: ir.SamplerNormal,
		})
		s := e.TextureSampleLevel(emit.TextureSampleParams{
			Texture:       tex,
			TexCoord:      e.ExternalInput(ir.TexCoord0),
			SamplerSource: ir.SamplerSourceWrapWorldGroupSettings,
		}, e.ConstantFloat(0))
		e.SetOutput(ir.PropertyNormal, s)
	})

	pixel := tr.Code[ir.StagePixel]
	require.Equal(t,
		"float4 Sample = UnpackNormalMap(Texture2DSampleLevel(Material.Texture2D_0, View.MaterialTextureBilinearWrapedSampler, Parameters.TexCoords[0].xy, 0.0));\n",
		pixel.Body)
	require.Equal(t, "float3(Sample.x, Sample.y, Sample.z)", pixel.Outputs[0].Code)
	require.Equal(t, []ir.TextureBinding{
		{Texture: "T_FlatNormal", Parameter: 0, SamplerType: ir.SamplerNormal},
	}, tr.Info.Textures)
	require.False(t, tr.Info.UsedFeatures.Has(FeatureDerivatives))
}

func TestTranslate_PartialDerivative(t *testing.T) {
	tr := translate(t, nil, func(e *emit.Emitter) {
		e.SetOutput(ir.PropertyEmissiveColor, e.PartialDerivative(e.ExternalInput(ir.WorldPosition), ir.AxisX))
	})

	require.Equal(t, "ddx(GetWorldPosition(Parameters))", tr.Code[ir.StagePixel].Outputs[0].Code)
	require.Equal(t, "float3(0.0, 0.0, 0.0)", tr.Code[ir.StageCompute].Outputs[0].Code)
	require.True(t, tr.Info.Properties.Has(ir.UsesWorldPosition))
}

func TestTranslate_InlineCode(t *testing.T) {
	tr := translate(t, nil, func(e *emit.Emitter) {
		uv := e.ExternalInput(ir.TexCoord0)
		color := e.ExternalInput(ir.VertexColor)
		e.SetOutput(ir.PropertyMetallic, e.InlineCode(ir.Float(), "$0.x + $1.y", []ir.ValueID{uv, color}, ir.NoGraphProperties))
		e.SetOutput(ir.PropertyRoughness, e.InlineExternalCode("ViewTime", nil))
	})

	require.Equal(t, []OutputFragment{
		{Property: ir.PropertyMetallic, Code: "Parameters.TexCoords[0].xy.x + Parameters.VertexColor.y"},
		{Property: ir.PropertyRoughness, Code: "View.GameTime"},
	}, tr.Code[ir.StagePixel].Outputs)
	require.True(t, tr.Info.UsedFeatures.Has(FeatureInlineCode))
	require.True(t, tr.Info.Properties.Has(ir.UsesTime))
	require.True(t, tr.Info.Stats.UsesVertexColor)
}

func TestTranslate_VectorLogic(t *testing.T) {
	build := func(e *emit.Emitter) {
		v := e.ExternalInput(ir.CameraVector)
		inside := e.And(e.GreaterThan(v, e.ConstantFloat(0)), e.LessThan(v, e.ConstantFloat(1)))
		e.SetOutput(ir.PropertyBaseColor, e.Select(inside, v, e.ConstantFloat(1)))
	}

	tests := []struct {
		sm       ShaderModel
		contains []string
	}{
		{ShaderModel5_1, []string{" && ", " ? "}},
		{ShaderModel6_0, []string{"and(", "select("}},
	}

	for _, tt := range tests {
		t.Run(tt.sm.String(), func(t *testing.T) {
			tr := translate(t, &Options{ShaderModel: tt.sm}, build)
			code := tr.Code[ir.StagePixel].Outputs[0].Code
			for _, s := range tt.contains {
				require.Contains(t, code, s)
			}
		})
	}
}

func TestTranslate_Gather(t *testing.T) {
	build := func(mode ir.TextureReadMode) func(e *emit.Emitter) {
		return func(e *emit.Emitter) {
			g := e.TextureGather(emit.TextureSampleParams{
				Texture:  e.TextureObject("T_Mask", ir.SamplerMasks),
				TexCoord: e.ExternalInput(ir.TexCoord1),
			}, mode)
			e.SetOutput(ir.PropertyOpacity, g)
		}
	}

	tests := []struct {
		name string
		sm   ShaderModel
		mode ir.TextureReadMode
		want string
	}{
		{"sm5 green", ShaderModel5_0, ir.ReadGatherGreen, "Material.Texture2D_0.GatherGreen(Material.Texture2D_0Sampler, Parameters.TexCoords[1].xy).x"},
		{"sm4.1 red", ShaderModel4_1, ir.ReadGatherRed, "Material.Texture2D_0.Gather(Material.Texture2D_0Sampler, Parameters.TexCoords[1].xy).x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := translate(t, &Options{ShaderModel: tt.sm}, build(tt.mode))
			require.Equal(t, tt.want, tr.Code[ir.StagePixel].Outputs[0].Code)
			require.True(t, tr.Info.UsedFeatures.Has(FeatureGather))
		})
	}

	t.Run("sm4.1 green", func(t *testing.T) {
		_, err := Translate(buildModule(t, build(ir.ReadGatherGreen)), &Options{ShaderModel: ShaderModel4_1})
		var hlslErr *Error
		require.True(t, errors.As(err, &hlslErr))
		require.True(t, hlslErr.IsUnsupportedFeature())
	})
}

func TestTranslate_InvalidInput(t *testing.T) {
	_, err := Translate(nil, nil)
	var hlslErr *Error
	require.True(t, errors.As(err, &hlslErr))
	require.True(t, hlslErr.IsInternalError())

	unscheduled := ir.NewModule("M_Unscheduled")
	_, err = Translate(unscheduled, nil)
	require.True(t, errors.As(err, &hlslErr))
	require.Equal(t, ErrInvalidModule, hlslErr.Kind)

	invalid := ir.NewModule("M_Invalid")
	invalid.AddError("Node", ir.ErrTypeError, "broken")
	_, err = Translate(invalid, nil)
	require.True(t, errors.As(err, &hlslErr))
	require.Equal(t, ErrInvalidModule, hlslErr.Kind)

	_, err = Translate(buildModule(t, sharedSample), &Options{ShaderModel: ShaderModel(99)})
	require.True(t, errors.As(err, &hlslErr))
	require.Equal(t, ErrInvalidShaderModel, hlslErr.Kind)
}

func TestTranslate_NonFiniteConstants(t *testing.T) {
	tr := translate(t, nil, func(e *emit.Emitter) {
		p := e.Parameter(ir.ParameterInfo{Name: "P"}, ir.ParameterMetadata{Kind: ir.ParameterScalar})
		e.SetOutput(ir.PropertyMetallic, e.Divide(p, e.ConstantFloat(float32(math.NaN()))))
		e.SetOutput(ir.PropertySpecular, e.Subtract(p, e.ConstantFloat(float32(math.Inf(-1)))))
		e.SetOutput(ir.PropertyRoughness, e.Add(p, e.ConstantFloat(float32(math.Inf(1)))))
	})

	require.Equal(t, []OutputFragment{
		{Property: ir.PropertyMetallic, Code: "Material.PreshaderBuffer[0].x / asfloat(0x7fc00000)"},
		{Property: ir.PropertySpecular, Code: "Material.PreshaderBuffer[0].x - asfloat(0xff800000)"},
		{Property: ir.PropertyRoughness, Code: "Material.PreshaderBuffer[0].x + asfloat(0x7f800000)"},
	}, tr.Code[ir.StagePixel].Outputs)
}

func TestStripParens(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"(a + b)", "a + b"},
		{"(a) + (b)", "(a) + (b)"},
		{"((a))", "(a)"},
		{"f(x)", "f(x)"},
		{"x", "x"},
	}
	for _, tt := range tests {
		if got := stripParens(tt.in); got != tt.want {
			t.Errorf("stripParens(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatFloat32(t *testing.T) {
	tests := []struct {
		in   float32
		want string
	}{
		{1, "1.0"},
		{0.5, "0.5"},
		{-2, "-2.0"},
		{1e20, "1e+20"},
		{float32(math.Inf(1)), "asfloat(0x7f800000)"},
		{float32(math.Inf(-1)), "asfloat(0xff800000)"},
		{float32(math.NaN()), "asfloat(0x7fc00000)"},
	}
	for _, tt := range tests {
		if got := formatFloat32(tt.in); got != tt.want {
			t.Errorf("formatFloat32(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFeatureFlags_String(t *testing.T) {
	if got := FeatureNone.String(); got != "none" {
		t.Errorf("FeatureNone.String() = %q, want \"none\"", got)
	}
	if got := (FeatureTextureSampling | FeatureGather).String(); got != "TextureSampling, Gather" {
		t.Errorf("String() = %q, want \"TextureSampling, Gather\"", got)
	}
}
