// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package analyze computes the facts code generation needs about a module:
// per-stage user counts, the external inputs each stage reads, packed uniform
// locations, the texture table, environment defines and graph properties.
// It also enforces the material domain constraints.
package analyze

import (
	"slices"

	"github.com/gogpu/mir/ir"
)

const slotLanes = 4

// Analyzer holds the state of one analysis.
type Analyzer struct {
	module *ir.Module
	config ir.MaterialConfig

	// analyzed marks values whose stage independent analysis is done.
	analyzed []bool

	// freeSlots[n] lists the uniform slots with exactly n free lanes.
	freeSlots [slotLanes][]int
	numSlots  int

	// usedParameters lists the uniform parameters in the order reached.
	usedParameters []uint32
	usedParameter  []bool
}

// Analyze analyzes m for the given material configuration. Problems found
// are recorded as module diagnostics.
func Analyze(m *ir.Module, config ir.MaterialConfig) {
	a := &Analyzer{
		module:        m,
		config:        config,
		analyzed:      make([]bool, len(m.Values)),
		usedParameter: make([]bool, len(m.Parameters)),
	}
	a.run()
}

func (a *Analyzer) run() {
	m := a.module
	m.ResetSchedule()
	m.Stats = ir.Statistics{}
	m.Textures = m.Textures[:0]
	m.EnvironmentDefines = make(map[string]struct{})
	m.Properties = make([]ir.GraphProperties, len(m.Values))
	m.Uniforms = make([]ir.UniformAllocation, len(m.Parameters))

	reached := make([]bool, len(m.Values))
	for _, s := range ir.Stages {
		a.analyzeStage(s, reached)
	}

	a.allocateUniforms()
	a.propagateProperties(reached)
	a.checkDomainConstraints()
}

// analyzeStage visits every value reachable from the outputs of stage s,
// counting the uses made in that stage.
func (a *Analyzer) analyzeStage(s ir.Stage, reached []bool) {
	m := a.module
	sched := m.Sched[s]
	visited := make([]bool, len(m.Values))

	stack := slices.Clone(m.Outputs[s])
	for _, out := range stack {
		visited[out] = true
	}
	var operands []ir.ValueID
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		reached[id] = true

		if !a.analyzed[id] {
			a.analyzed[id] = true
			a.analyzeValue(id)
		}
		a.analyzeValueInStage(id, s)

		operands = m.Values[id].StageOperands(operands[:0], s)
		for _, op := range operands {
			sched[op].NumUsers++
			if !visited[op] {
				visited[op] = true
				stack = append(stack, op)
			}
		}
	}
}

// analyzeValue performs the stage independent analysis of a value.
func (a *Analyzer) analyzeValue(id ir.ValueID) {
	m := a.module
	v := m.Values[id]
	var props ir.GraphProperties

	switch k := v.Kind.(type) {
	case ir.ExternalInput:
		switch k.ID {
		case ir.WorldPosition:
			props |= ir.UsesWorldPosition
		case ir.WorldNormal:
			props |= ir.ReadsPixelNormal
		}

	case ir.UniformParameter:
		md := m.Parameters[k.Parameter].Metadata
		if md.Kind == ir.ParameterTexture {
			a.addTexture(md.Texture, int(k.Parameter), k.SamplerType)
		} else if !a.usedParameter[k.Parameter] {
			a.usedParameter[k.Parameter] = true
			a.usedParameters = append(a.usedParameters, k.Parameter)
		}

	case ir.TextureObject:
		a.addTexture(k.Texture, -1, k.SamplerType)

	case ir.TextureRead:
		props |= ir.UsesTextures
		if k.Mode == ir.ReadMipAuto || k.Mode == ir.ReadMipBias {
			props |= ir.UsesDerivatives
		}

	case ir.HardwarePartialDerivative:
		props |= ir.UsesDerivatives

	case ir.InlineCode:
		props |= k.Properties
	}
	m.Properties[id] = props
}

// analyzeValueInStage performs the analysis of a value that depends on the
// stage it is evaluated in.
func (a *Analyzer) analyzeValueInStage(id ir.ValueID, s ir.Stage) {
	m := a.module
	switch k := m.Values[id].Kind.(type) {
	case ir.ExternalInput:
		a.useExternalInput(k.ID, s)

	case ir.InlineCode:
		decl := k.Declaration
		if decl == nil {
			return
		}
		if !decl.AvailableIn(s) {
			m.AddError(s.String(), ir.ErrUnsupportedConstruct,
				"'%s' is not available in the %s stage.", decl.Name, s)
			return
		}
		for _, d := range decl.Defines {
			if d.Stages.Has(s) {
				a.useDefine(d.Name)
			}
		}

	case ir.HardwarePartialDerivative:
		if !s.SupportsHardwareDerivatives() {
			m.AddError(s.String(), ir.ErrUnsupportedConstruct,
				"Hardware derivatives are not available in the %s stage.", s)
		}

	case ir.TextureRead:
		if (k.Mode == ir.ReadMipAuto || k.Mode == ir.ReadMipBias) && !s.SupportsHardwareDerivatives() {
			m.AddError(s.String(), ir.ErrUnsupportedConstruct,
				"Automatic mip selection is not available in the %s stage.", s)
		}
	}
}

func (a *Analyzer) useExternalInput(id ir.ExternalInputID, s ir.Stage) {
	m := a.module
	if !id.AvailableIn(s) {
		m.AddError(s.String(), ir.ErrUnsupportedConstruct,
			"External input '%s' is not available in the %s stage.", id, s)
		return
	}

	m.Stats.ExternalInputs[s] |= 1 << id
	if id.IsTexCoord() || id.IsTexCoordDerivative() {
		m.Stats.NumTexCoords[s] = max(m.Stats.NumTexCoords[s], id.TexCoordIndex()+1)
	}
	switch id {
	case ir.VertexColor:
		m.Stats.UsesVertexColor = true
	case ir.PixelPosition:
		m.Stats.UsesPixelPosition = true
	}
}

func (a *Analyzer) addTexture(texture string, parameter int, samplerType ir.SamplerType) {
	m := a.module
	if m.FindTexture(texture, parameter) >= 0 {
		return
	}
	m.Textures = append(m.Textures, ir.TextureBinding{
		Texture:     texture,
		Parameter:   parameter,
		SamplerType: samplerType,
	})
}

/*------------------------------------ Uniforms ------------------------------------*/

// allocateUniforms packs the scalar and vector parameters into float4 slots.
func (a *Analyzer) allocateUniforms() {
	m := a.module
	for _, p := range a.usedParameters {
		lanes := m.Parameters[p].Metadata.Type().Lanes()
		m.Uniforms[p] = a.allocate(lanes)
	}
	m.Stats.NumUniformSlots = a.numSlots
}

// allocate returns the location of numLanes consecutive lanes. Partially
// filled slots are searched first, smallest fitting gap first.
func (a *Analyzer) allocate(numLanes int) ir.UniformAllocation {
	for free := numLanes; free < slotLanes; free++ {
		n := len(a.freeSlots[free])
		if n == 0 {
			continue
		}
		slot := a.freeSlots[free][n-1]
		a.freeSlots[free] = a.freeSlots[free][:n-1]
		a.release(slot, free-numLanes)
		return ir.UniformAllocation{Slot: slot, Lane: slotLanes - free, NumLanes: numLanes}
	}

	slot := a.numSlots
	a.numSlots++
	a.release(slot, slotLanes-numLanes)
	return ir.UniformAllocation{Slot: slot, NumLanes: numLanes}
}

// release pushes the trailing free lanes of slot back into their bucket.
func (a *Analyzer) release(slot, free int) {
	if free > 0 {
		a.freeSlots[free] = append(a.freeSlots[free], slot)
	}
}

/*----------------------------------- Properties -----------------------------------*/

// propagateProperties makes every value inherit the graph properties of its
// operands. Operands always precede their users in the value arena, so one
// forward sweep is enough.
func (a *Analyzer) propagateProperties(reached []bool) {
	m := a.module
	var operands []ir.ValueID
	for id := range m.Values {
		if !reached[id] {
			continue
		}
		operands = m.Values[id].Operands(operands[:0])
		for _, op := range operands {
			m.Properties[id] |= m.Properties[op]
		}
	}
}

/*------------------------------------ Domains -------------------------------------*/

// checkDomainConstraints validates the outputs against the material
// configuration.
func (a *Analyzer) checkDomainConstraints() {
	m := a.module
	seen := make(map[ir.Property]bool)
	for _, s := range ir.Stages {
		for _, out := range m.Outputs[s] {
			set := m.Values[out].Kind.(ir.SetOutput)
			if seen[set.Property] {
				continue
			}
			seen[set.Property] = true
			a.checkOutput(set, m.Properties[out])
		}
	}
}

func (a *Analyzer) checkOutput(set ir.SetOutput, props ir.GraphProperties) {
	m := a.module
	origin := set.Property.String()

	switch set.Property {
	case ir.PropertyNormal:
		if props.Has(ir.ReadsPixelNormal) {
			m.AddError(origin, ir.ErrDomainConstraint,
				"The Normal output cannot depend on the pixel normal it defines.")
		}
	case ir.PropertyPixelDepthOffset, ir.PropertyRefraction:
		if a.config.Domain != ir.DomainSurface {
			m.AddError(origin, ir.ErrDomainConstraint,
				"Output '%s' is not supported by the %s domain.", set.Property, a.config.Domain)
		}
	case ir.PropertyWorldPositionOffset:
		if a.config.Domain == ir.DomainPostProcess {
			m.AddError(origin, ir.ErrDomainConstraint,
				"Output '%s' is not supported by the %s domain.", set.Property, a.config.Domain)
		}
	}
}

// useDefine records an environment define, unless the material
// configuration makes it irrelevant.
func (a *Analyzer) useDefine(name string) {
	cfg := &a.config
	if cfg.AllowedDefines != nil && !slices.Contains(cfg.AllowedDefines, name) {
		return
	}
	if !domainSupportsDefine(cfg, name) {
		return
	}
	a.module.AddEnvironmentDefine(name)
}

// domainSupportsDefine reports whether a material with the given
// configuration can make use of a define.
func domainSupportsDefine(cfg *ir.MaterialConfig, name string) bool {
	switch name {
	case "NEEDS_SCENE_TEXTURES":
		return cfg.Domain == ir.DomainPostProcess || cfg.BlendMode.IsTranslucent()
	case "NEEDS_PARTICLE_COLOR", "NEEDS_PARTICLE_POSITION", "USES_PER_INSTANCE_RANDOM":
		return cfg.Domain == ir.DomainSurface
	case "USES_EYE_ADAPTATION":
		return cfg.Domain != ir.DomainUI
	}
	return true
}
