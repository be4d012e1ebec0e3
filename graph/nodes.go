// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"github.com/gogpu/mir/emit"
	"github.com/gogpu/mir/ir"
)

// Base carries the name shared by every node.
type Base struct {
	NodeName string
}

// Name returns the node name.
func (b *Base) Name() string { return b.NodeName }

// =============================================================================
// Leaves
// =============================================================================

// Constant is a float scalar or vector constant.
type Constant struct {
	Base
	Value []float32
}

func (n *Constant) Kind() string     { return "Constant" }
func (n *Constant) Inputs() []*Input { return nil }

func (n *Constant) Build(e *emit.Emitter) {
	if len(n.Value) < 1 || len(n.Value) > 4 {
		e.Errorf("Constant has %d components, expected 1 to 4.", len(n.Value))
		e.Output(0, ir.PoisonValue)
		return
	}
	e.Output(0, e.ConstantFloats(n.Value))
}

// Parameter reads a material parameter. Static switch parameters evaluate
// to a constant bool.
type Parameter struct {
	Base
	Parameter string
	Metadata  ir.ParameterMetadata
}

func (n *Parameter) Kind() string     { return n.Metadata.Kind.String() + "Parameter" }
func (n *Parameter) Inputs() []*Input { return nil }

func (n *Parameter) Build(e *emit.Emitter) {
	e.Output(0, e.Parameter(ir.ParameterInfo{Name: n.Parameter}, n.Metadata))
}

// ExternalInput reads a value provided by the surrounding shader.
type ExternalInput struct {
	Base
	Input ir.ExternalInputID
}

func (n *ExternalInput) Kind() string     { return "ExternalInput" }
func (n *ExternalInput) Inputs() []*Input { return nil }

func (n *ExternalInput) Build(e *emit.Emitter) {
	e.Output(0, e.ExternalInput(n.Input))
}

// TexCoord reads a mesh texture coordinate.
type TexCoord struct {
	Base
	Index int
}

func (n *TexCoord) Kind() string     { return "TexCoord" }
func (n *TexCoord) Inputs() []*Input { return nil }

func (n *TexCoord) Build(e *emit.Emitter) {
	if n.Index < 0 || n.Index >= ir.MaxTexCoords {
		e.ErrorKindf(ir.ErrUnsupportedConstruct, "Texture coordinate index %d is out of range [0, %d).",
			n.Index, ir.MaxTexCoords)
		e.Output(0, ir.PoisonValue)
		return
	}
	e.Output(0, e.ExternalInput(ir.TexCoord0+ir.ExternalInputID(n.Index)))
}

// TextureObject references a texture asset.
type TextureObject struct {
	Base
	Texture     string
	SamplerType ir.SamplerType
}

func (n *TextureObject) Kind() string     { return "TextureObject" }
func (n *TextureObject) Inputs() []*Input { return nil }

func (n *TextureObject) Build(e *emit.Emitter) {
	e.Output(0, e.TextureObject(n.Texture, n.SamplerType))
}

// =============================================================================
// Math
// =============================================================================

// Operator applies an operator to its A, B and C inputs. Only the first
// Arity inputs are read.
type Operator struct {
	Base
	Op      ir.Op
	A, B, C Input
}

// NewOperator returns an operator node with its slots named.
func NewOperator(name string, op ir.Op) *Operator {
	return &Operator{
		Base: Base{NodeName: name},
		Op:   op,
		A:    Input{Name: "A"},
		B:    Input{Name: "B"},
		C:    Input{Name: "C"},
	}
}

func (n *Operator) Kind() string { return n.Op.String() }

func (n *Operator) Inputs() []*Input {
	return []*Input{&n.A, &n.B, &n.C}[:n.Op.Arity()]
}

func (n *Operator) Build(e *emit.Emitter) {
	args := [3]ir.ValueID{}
	for i, in := range n.Inputs() {
		args[i] = e.Input(in)
	}
	e.Output(0, e.Operator(n.Op, args[0], args[1], args[2]))
}

// Branch evaluates True or False depending on Condition. Only the taken
// input is evaluated at runtime.
type Branch struct {
	Base
	Condition, True, False Input
}

// NewBranch returns a branch node with its slots named.
func NewBranch(name string) *Branch {
	return &Branch{
		Base:      Base{NodeName: name},
		Condition: Input{Name: "Condition"},
		True:      Input{Name: "True"},
		False:     Input{Name: "False"},
	}
}

func (n *Branch) Kind() string     { return "Branch" }
func (n *Branch) Inputs() []*Input { return []*Input{&n.Condition, &n.True, &n.False} }

func (n *Branch) Build(e *emit.Emitter) {
	cond := e.Input(&n.Condition)
	t := e.Input(&n.True)
	f := e.Input(&n.False)
	e.Output(0, e.Branch(cond, t, f))
}

// StaticSwitch picks True or False at build time from a static switch
// parameter.
type StaticSwitch struct {
	Base
	Parameter   string
	Default     bool
	True, False Input
}

// NewStaticSwitch returns a static switch node with its slots named.
func NewStaticSwitch(name, parameter string, def bool) *StaticSwitch {
	return &StaticSwitch{
		Base:      Base{NodeName: name},
		Parameter: parameter,
		Default:   def,
		True:      Input{Name: "True"},
		False:     Input{Name: "False"},
	}
}

func (n *StaticSwitch) Kind() string     { return "StaticSwitch" }
func (n *StaticSwitch) Inputs() []*Input { return []*Input{&n.True, &n.False} }

func (n *StaticSwitch) Build(e *emit.Emitter) {
	sw := e.Parameter(ir.ParameterInfo{Name: n.Parameter},
		ir.ParameterMetadata{Kind: ir.ParameterStaticSwitch, Switch: n.Default})
	if e.ToConstantBool(sw) {
		e.Output(0, e.Input(&n.True))
	} else {
		e.Output(0, e.Input(&n.False))
	}
}

// =============================================================================
// Vectors
// =============================================================================

// Swizzle selects lanes of its input.
type Swizzle struct {
	Base
	Mask  emit.Mask
	Input Input
}

func (n *Swizzle) Kind() string     { return "Swizzle" }
func (n *Swizzle) Inputs() []*Input { return []*Input{&n.Input} }

func (n *Swizzle) Build(e *emit.Emitter) {
	e.Output(0, e.Swizzle(e.Input(&n.Input), n.Mask))
}

// MakeVector builds a vector from scalar inputs. Unconnected trailing
// components are dropped.
type MakeVector struct {
	Base
	Components [4]Input
}

// NewMakeVector returns a vector node with slots X, Y, Z and W.
func NewMakeVector(name string) *MakeVector {
	n := &MakeVector{Base: Base{NodeName: name}}
	for i := range n.Components {
		n.Components[i].Name = emit.Component(i).String()
	}
	return n
}

func (n *MakeVector) Kind() string { return "MakeVector" }

func (n *MakeVector) Inputs() []*Input {
	ins := make([]*Input, len(n.Components))
	for i := range n.Components {
		ins[i] = &n.Components[i]
	}
	return ins
}

func (n *MakeVector) Build(e *emit.Emitter) {
	var comps []ir.ValueID
	for i := range n.Components {
		v := e.TryInput(&n.Components[i])
		if v == ir.NoValue {
			break
		}
		comps = append(comps, e.CastToScalar(v))
	}
	if len(comps) == 0 {
		e.ErrorKindf(ir.ErrMissingValue, "Missing 'x' input value.")
		e.Output(0, ir.PoisonValue)
		return
	}
	e.Output(0, e.Vector(comps...))
}

// Cast converts its input to a type.
type Cast struct {
	Base
	Type  *ir.Type
	Input Input
}

func (n *Cast) Kind() string     { return "Cast" }
func (n *Cast) Inputs() []*Input { return []*Input{&n.Input} }

func (n *Cast) Build(e *emit.Emitter) {
	e.Output(0, e.Cast(e.Input(&n.Input), n.Type))
}

// =============================================================================
// Textures
// =============================================================================

// SampleMode selects the texture lookup a TextureSample performs.
type SampleMode uint8

const (
	SampleAuto SampleMode = iota
	SampleLevel
	SampleBias
	SampleGrad
	GatherRed
	GatherGreen
	GatherBlue
	GatherAlpha
)

var sampleModeNames = [...]string{
	SampleAuto:  "Auto",
	SampleLevel: "Level",
	SampleBias:  "Bias",
	SampleGrad:  "Grad",
	GatherRed:   "GatherRed",
	GatherGreen: "GatherGreen",
	GatherBlue:  "GatherBlue",
	GatherAlpha: "GatherAlpha",
}

func (m SampleMode) String() string {
	if int(m) < len(sampleModeNames) {
		return sampleModeNames[m]
	}
	return "Unknown"
}

// ParseSampleMode returns the sample mode with the given name.
func ParseSampleMode(name string) (SampleMode, bool) {
	for i, n := range sampleModeNames {
		if n == name {
			return SampleMode(i), true
		}
	}
	return 0, false
}

// TextureSample reads a texture. Output 0 is the RGBA value, outputs 1 to 4
// are its R, G, B and A lanes.
//
// An unconnected TexCoord reads texture coordinate 0.
type TextureSample struct {
	Base
	Mode                 SampleMode
	SamplerSource        ir.SamplerSourceMode
	AutomaticViewMipBias bool

	Texture  Input
	TexCoord Input
	Level    Input // SampleLevel
	Bias     Input // SampleBias
	Ddx, Ddy Input // SampleGrad
}

// NewTextureSample returns a texture sample node with its slots named.
func NewTextureSample(name string, mode SampleMode) *TextureSample {
	return &TextureSample{
		Base:     Base{NodeName: name},
		Mode:     mode,
		Texture:  Input{Name: "Texture"},
		TexCoord: Input{Name: "UVs"},
		Level:    Input{Name: "Level"},
		Bias:     Input{Name: "Bias"},
		Ddx:      Input{Name: "DDX"},
		Ddy:      Input{Name: "DDY"},
	}
}

func (n *TextureSample) Kind() string { return "TextureSample" }

func (n *TextureSample) Inputs() []*Input {
	ins := []*Input{&n.Texture, &n.TexCoord}
	switch n.Mode {
	case SampleLevel:
		ins = append(ins, &n.Level)
	case SampleBias:
		ins = append(ins, &n.Bias)
	case SampleGrad:
		ins = append(ins, &n.Ddx, &n.Ddy)
	}
	return ins
}

func (n *TextureSample) Build(e *emit.Emitter) {
	uv := e.TryInput(&n.TexCoord)
	if uv == ir.NoValue {
		uv = e.ExternalInput(ir.TexCoord0)
	}
	p := emit.TextureSampleParams{
		Texture:              e.Input(&n.Texture),
		TexCoord:             uv,
		SamplerSource:        n.SamplerSource,
		AutomaticViewMipBias: n.AutomaticViewMipBias,
	}

	var rgba ir.ValueID
	switch n.Mode {
	case SampleAuto:
		rgba = e.TextureSample(p)
	case SampleLevel:
		rgba = e.TextureSampleLevel(p, e.Input(&n.Level))
	case SampleBias:
		rgba = e.TextureSampleBias(p, e.Input(&n.Bias))
	case SampleGrad:
		rgba = e.TextureSampleGrad(p, e.Input(&n.Ddx), e.Input(&n.Ddy))
	case GatherRed, GatherGreen, GatherBlue, GatherAlpha:
		rgba = e.TextureGather(p, ir.ReadGatherRed+ir.TextureReadMode(n.Mode-GatherRed))
	default:
		panic(ir.Unreachable(n.Mode))
	}

	e.Output(0, rgba)
	for i := 0; i < 4; i++ {
		if e.IsValid(rgba) {
			e.Output(i+1, e.Subscript(rgba, i))
		} else {
			e.Output(i+1, rgba)
		}
	}
}

// =============================================================================
// Derivatives
// =============================================================================

// Derivative computes the screen-space derivative of its input.
type Derivative struct {
	Base
	Axis  ir.DerivativeAxis
	Input Input
}

func (n *Derivative) Kind() string {
	if n.Axis == ir.AxisX {
		return "DDX"
	}
	return "DDY"
}

func (n *Derivative) Inputs() []*Input { return []*Input{&n.Input} }

func (n *Derivative) Build(e *emit.Emitter) {
	e.Output(0, e.PartialDerivative(e.Input(&n.Input), n.Axis))
}

// =============================================================================
// Code
// =============================================================================

// Custom splices user HLSL code. Arguments are referenced as $0, $1, ...
type Custom struct {
	Base
	Code       string
	ReturnType *ir.Type
	Properties ir.GraphProperties
	Args       []Input
}

func (n *Custom) Kind() string { return "Custom" }

func (n *Custom) Inputs() []*Input {
	ins := make([]*Input, len(n.Args))
	for i := range n.Args {
		ins[i] = &n.Args[i]
	}
	return ins
}

func (n *Custom) Build(e *emit.Emitter) {
	args := make([]ir.ValueID, len(n.Args))
	for i := range n.Args {
		args[i] = e.Input(&n.Args[i])
	}
	e.Output(0, e.InlineCode(n.ReturnType, n.Code, args, n.Properties))
}

// ExternalCode calls a built-in code declaration by name.
type ExternalCode struct {
	Base
	Declaration string
	Args        []Input
}

func (n *ExternalCode) Kind() string { return n.Declaration }

func (n *ExternalCode) Inputs() []*Input {
	ins := make([]*Input, len(n.Args))
	for i := range n.Args {
		ins[i] = &n.Args[i]
	}
	return ins
}

func (n *ExternalCode) Build(e *emit.Emitter) {
	args := make([]ir.ValueID, len(n.Args))
	for i := range n.Args {
		args[i] = e.Input(&n.Args[i])
	}
	e.Output(0, e.InlineExternalCode(n.Declaration, args))
}
