// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gogpu/mir/graph"
	"github.com/gogpu/mir/hlsl"
	"github.com/gogpu/mir/ir"
)

func link(node string) graph.Link { return graph.Link{Node: node} }

func constant(name string, v ...float32) *graph.Constant {
	return &graph.Constant{Base: graph.Base{NodeName: name}, Value: v}
}

func scalarParameter(name string) *graph.Parameter {
	return &graph.Parameter{
		Base:      graph.Base{NodeName: name},
		Parameter: name,
		Metadata:  ir.ParameterMetadata{Kind: ir.ParameterScalar},
	}
}

func operator(name string, op ir.Op, args ...string) *graph.Operator {
	n := graph.NewOperator(name, op)
	for i, in := range n.Inputs() {
		if i < len(args) {
			in.Link = link(args[i])
		}
	}
	return n
}

func surface(name string) *graph.Material {
	return &graph.Material{
		Name:    name,
		Config:  ir.MaterialConfig{Domain: ir.DomainSurface},
		Outputs: make(map[ir.Property]graph.Link),
	}
}

func build(t *testing.T, m *graph.Material) *Result {
	t.Helper()
	r, err := Build(context.Background(), m, DefaultOptions())
	require.NoError(t, err)
	return r
}

// pixelCode joins the body and the output fragments of a stage.
func pixelCode(c hlsl.StageCode) string {
	code := c.Body
	for _, o := range c.Outputs {
		code += o.Code + "\n"
	}
	return code
}

func TestBuild_ConstantColor(t *testing.T) {
	m := surface("M_Red")
	m.Nodes = []graph.Expression{constant("Red", 1, 0, 0)}
	m.Outputs[ir.PropertyBaseColor] = link("Red")

	r := build(t, m)
	pixel := r.Code[ir.StagePixel]
	require.Empty(t, pixel.Body)
	require.Equal(t, []hlsl.OutputFragment{
		{Property: ir.PropertyBaseColor, Code: "float3(1.0, 0.0, 0.0)"},
	}, pixel.Outputs)
	require.Equal(t, "ps_5_1", r.Info.Profiles[ir.StagePixel])
	require.Empty(t, r.Info.Textures)
	require.Zero(t, r.Info.NumUniformSlots)
}

func TestBuild_SharedTextureSample(t *testing.T) {
	m := surface("M_Shared")
	sample := graph.NewTextureSample("Sample", graph.SampleAuto)
	sample.Texture.Link = link("Albedo")
	m.Nodes = []graph.Expression{
		&graph.TextureObject{Base: graph.Base{NodeName: "Albedo"}, Texture: "T_Albedo"},
		sample,
		operator("Sum", ir.OpAdd, "Sample", "Sample"),
	}
	m.Outputs[ir.PropertyBaseColor] = link("Sum")

	r := build(t, m)
	pixel := r.Code[ir.StagePixel]
	require.Equal(t,
		"float4 Sample = ProcessMaterialColorTextureLookup(Texture2DSample(Material.Texture2D_0, Material.Texture2D_0Sampler, Parameters.TexCoords[0].xy));\n"+
			"float4 Local = Sample + Sample;\n",
		pixel.Body)
	require.Equal(t, "float3(Local.x, Local.y, Local.z)", pixel.Outputs[0].Code)
	require.Contains(t, r.Code[ir.StageCompute].Body, "Texture2DSampleGrad(")
	require.True(t, r.Info.UsedFeatures.Has(hlsl.FeatureTextureSampling))
}

func TestBuild_BranchArms(t *testing.T) {
	m := surface("M_Branch")
	br := graph.NewBranch("Branch")
	br.Condition.Link = link("Less")
	br.True.Link = link("Sin")
	br.False.Link = link("Zero")
	m.Nodes = []graph.Expression{
		scalarParameter("P"),
		scalarParameter("Q"),
		constant("Half", 0.5),
		constant("Zero", 0),
		operator("Less", ir.OpLessThan, "P", "Half"),
		operator("Sin", ir.OpSin, "Q"),
		br,
	}
	m.Outputs[ir.PropertyMetallic] = link("Branch")

	r := build(t, m)
	require.Equal(t,
		"float Branch;\n"+
			"if (Material.PreshaderBuffer[0].y < 0.5) {\n"+
			"    Branch = sin(Material.PreshaderBuffer[0].x);\n"+
			"} else {\n"+
			"    Branch = 0.0;\n"+
			"}\n",
		r.Code[ir.StagePixel].Body)
	require.Equal(t, "Branch", r.Code[ir.StagePixel].Outputs[0].Code)
}

func TestBuild_Deterministic(t *testing.T) {
	first, err := graph.Load("../graph/testdata/rock.yaml")
	require.NoError(t, err)
	second, err := graph.Load("../graph/testdata/rock.yaml")
	require.NoError(t, err)

	a := build(t, first)
	b := build(t, second)
	require.Equal(t, a.Code, b.Code)
	require.Equal(t, a.Info, b.Info)

	pixel := a.Code[ir.StagePixel]
	require.Equal(t, ir.PropertyBaseColor, pixel.Outputs[0].Property)
	code := pixelCode(pixel)
	require.Contains(t, code, "UnpackNormalMap(Texture2DSampleLevel(")
	require.Contains(t, code, "View.MaterialTextureBilinearWrapedSampler")
	require.Len(t, a.Info.Textures, 2)
}

func TestBuild_StaticSwitchOverride(t *testing.T) {
	m, err := graph.Load("../graph/testdata/rock.yaml")
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.StaticSwitches = map[string]bool{"UseDetail": false}
	r, err := Build(context.Background(), m, opts)
	require.NoError(t, err)

	require.NotContains(t, pixelCode(r.Code[ir.StagePixel]), "UnpackNormalMap")
	require.Len(t, r.Info.Textures, 1)
}

func TestBuild_Diagnostics(t *testing.T) {
	m := surface("M_Broken")
	m.Nodes = []graph.Expression{
		constant("V2", 1, 2),
		constant("V3", 1, 2, 3),
		operator("Mul", ir.OpMultiply, "V2", "V3"),
		operator("Sin", ir.OpSin),
	}
	m.Outputs[ir.PropertyBaseColor] = link("Mul")
	m.Outputs[ir.PropertyRoughness] = link("Sin")

	_, err := Build(context.Background(), m, DefaultOptions())
	require.Error(t, err)

	diags, ok := Diagnostics(err)
	require.True(t, ok)
	require.Len(t, diags, 2)

	require.Equal(t, "Mul", diags[0].Origin)
	require.Equal(t, ir.ErrTypeError, diags[0].Kind)
	require.Contains(t, diags[0].Message, "No common type between 'float2' and 'float3'")

	require.Equal(t, "Sin", diags[1].Origin)
	require.Equal(t, ir.ErrMissingValue, diags[1].Kind)
	require.Equal(t, "(Node Sin) Missing 'A' input value.", diags[1].Message)

	var d *ir.Diagnostic
	require.True(t, errors.As(err, &d))
	require.Contains(t, err.Error(), "material M_Broken: 2 errors")
}

func TestBuild_Cycle(t *testing.T) {
	m := surface("M_Cycle")
	m.Nodes = []graph.Expression{
		constant("One", 1),
		operator("A", ir.OpAdd, "B", "One"),
		operator("B", ir.OpSin, "A"),
	}
	m.Outputs[ir.PropertyMetallic] = link("A")

	_, err := Build(context.Background(), m, DefaultOptions())
	diags, ok := Diagnostics(err)
	require.True(t, ok)
	require.Len(t, diags, 1)
	require.Equal(t, "Node 'B' depends on itself through 'A'.", diags[0].Message)
}

func TestBuild_CycleThroughMultipleOutputs(t *testing.T) {
	sample := graph.NewTextureSample("B", graph.SampleAuto)
	sample.Texture.Link = link("Tex")
	sample.TexCoord.Link = link("A")

	m := surface("M_CycleOutputs")
	m.Nodes = []graph.Expression{
		&graph.TextureObject{Base: graph.Base{NodeName: "Tex"}, Texture: "T_Noise", SamplerType: ir.SamplerColor},
		sample,
		operator("A", ir.OpAdd, "B", "B"),
	}
	a, _ := m.Node("A")
	a.Inputs()[0].Link = graph.Link{Node: "B", Output: 1}
	a.Inputs()[1].Link = graph.Link{Node: "B", Output: 2}
	m.Outputs[ir.PropertyMetallic] = link("A")
	m.Outputs[ir.PropertyRoughness] = graph.Link{Node: "B", Output: 3}

	_, err := Build(context.Background(), m, DefaultOptions())
	diags, ok := Diagnostics(err)
	require.True(t, ok)
	require.Len(t, diags, 1)
	require.Equal(t, "Node 'B' depends on itself through 'A'.", diags[0].Message)
}

func TestBuild_StageConstraint(t *testing.T) {
	m := surface("M_Wpo")
	m.Nodes = []graph.Expression{
		&graph.ExternalInput{Base: graph.Base{NodeName: "N"}, Input: ir.WorldNormal},
	}
	m.Outputs[ir.PropertyWorldPositionOffset] = link("N")

	_, err := Build(context.Background(), m, DefaultOptions())
	diags, ok := Diagnostics(err)
	require.True(t, ok)
	require.Equal(t, "External input 'WorldNormal' is not available in the vertex stage.", diags[0].Message)
}

func TestBuild_InvalidGraph(t *testing.T) {
	m := surface("M_Dangling")
	m.Outputs[ir.PropertyBaseColor] = link("Nowhere")

	_, err := Build(context.Background(), m, DefaultOptions())
	require.Error(t, err)
	_, isDiag := Diagnostics(err)
	require.False(t, isDiag)
	require.Contains(t, err.Error(), `link to unknown node "Nowhere"`)
}

func TestBuild_Canceled(t *testing.T) {
	m := surface("M_Red")
	m.Nodes = []graph.Expression{constant("Red", 1, 0, 0)}
	m.Outputs[ir.PropertyBaseColor] = link("Red")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, m, DefaultOptions())
	require.ErrorIs(t, err, context.Canceled)
}

func TestBuild_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m := surface("M_Red")
	m.Nodes = []graph.Expression{constant("Red", 1, 0, 0)}
	m.Outputs[ir.PropertyBaseColor] = link("Red")

	opts := DefaultOptions()
	opts.Logger = zap.New(core)
	_, err := Build(context.Background(), m, opts)
	require.NoError(t, err)

	var steps []string
	for _, e := range logs.All() {
		steps = append(steps, e.Message)
		require.Equal(t, "M_Red", e.ContextMap()["material"])
	}
	require.Equal(t, []string{"built", "analyzed", "scheduled", "translated"}, steps)
}

type recordingBackend struct {
	results []*Result
	err     error
}

func (b *recordingBackend) Submit(_ context.Context, r *Result) error {
	b.results = append(b.results, r)
	return b.err
}

func TestCompile(t *testing.T) {
	m := surface("M_Red")
	m.Nodes = []graph.Expression{constant("Red", 1, 0, 0)}
	m.Outputs[ir.PropertyBaseColor] = link("Red")

	backend := &recordingBackend{}
	r, err := Compile(context.Background(), m, DefaultOptions(), backend)
	require.NoError(t, err)
	require.Equal(t, []*Result{r}, backend.results)

	backend = &recordingBackend{err: errors.New("device lost")}
	_, err = Compile(context.Background(), m, DefaultOptions(), backend)
	require.ErrorContains(t, err, "material M_Red: submit: device lost")

	m.Outputs[ir.PropertyBaseColor] = link("Missing")
	backend = &recordingBackend{}
	_, err = Compile(context.Background(), m, DefaultOptions(), backend)
	require.Error(t, err)
	require.Empty(t, backend.results, "invalid materials never reach the backend")
}
