// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"fmt"
	"sort"
)

// Instruction holds the per-stage scheduling state of an instruction value.
// It is kept out of Value so that it never takes part in value equality.
type Instruction struct {
	// Block is the block the instruction is evaluated in.
	Block BlockID

	// Next links to the following instruction of Block.
	Next ValueID

	// NumUsers is the number of uses of the instruction in this stage.
	NumUsers int

	// NumProcessedUsers counts the users already placed by the scheduler.
	NumProcessedUsers int

	// ArmBlocks are the inner blocks of a Branch's true and false arms.
	ArmBlocks [2]BlockID
}

// Statistics records what the generated code needs from the surrounding shader.
type Statistics struct {
	// ExternalInputs is the set of external inputs read per stage, indexed
	// by 1<<ExternalInputID.
	ExternalInputs [NumStages]uint64

	// NumTexCoords is the number of texture coordinate interpolants needed
	// per stage: one past the highest texture coordinate index read.
	NumTexCoords [NumStages]int

	// NumInstructions is the number of scheduled instructions per stage.
	NumInstructions [NumStages]int

	// NumUniformSlots is the number of float4 slots of the uniform buffer.
	NumUniformSlots int

	UsesVertexColor   bool
	UsesPixelPosition bool
}

// ReadsExternalInput reports whether the given stage reads input id.
func (s *Statistics) ReadsExternalInput(stage Stage, id ExternalInputID) bool {
	return s.ExternalInputs[stage]&(1<<id) != 0
}

// Module is the result of lowering a material graph. It owns every value,
// block, parameter and diagnostic of one compilation.
type Module struct {
	// Name of the material the module was built from.
	Name string

	// Values is the value arena. Index 0 is unused (NoValue), index 1 is
	// the poison value.
	Values []Value

	// Blocks is the block arena. Index 0 is unused (NoBlock).
	Blocks []Block

	// RootBlocks are the top-level scopes of each stage.
	RootBlocks [NumStages]BlockID

	// Outputs lists the SetOutput instructions evaluated in each stage, in
	// property order.
	Outputs [NumStages][]ValueID

	// Sched holds per-stage scheduling state, indexed by ValueID. It is
	// allocated by ResetSchedule.
	Sched [NumStages][]Instruction

	// Properties holds the graph properties of each value, indexed by
	// ValueID. It is filled by the analyzer.
	Properties []GraphProperties

	// Parameters is the parameter table, indexed by UniformParameter.Parameter.
	Parameters []Parameter

	// Uniforms holds the packed location of each scalar or vector parameter,
	// indexed like Parameters.
	Uniforms []UniformAllocation

	// Textures is the texture table.
	Textures []TextureBinding

	// EnvironmentDefines is the set of capability flags the generated code needs.
	EnvironmentDefines map[string]struct{}

	// Diagnostics is the list of errors found while building the module.
	// The module is valid if and only if it is empty.
	Diagnostics []Diagnostic

	Stats Statistics

	parameterIDs map[ParameterInfo]uint32
}

// NewModule returns an empty module with its poison value and stage root
// blocks in place.
func NewModule(name string) *Module {
	m := &Module{Name: name}
	m.Reset()
	return m
}

// Reset releases every value, block and table of the module.
func (m *Module) Reset() {
	m.Values = append(m.Values[:0],
		Value{Type: Void(), Kind: Poison{}}, // NoValue placeholder
		Value{Type: PoisonType(), Kind: Poison{}},
	)
	m.Blocks = append(m.Blocks[:0], Block{})
	for _, s := range Stages {
		m.RootBlocks[s] = m.NewBlock(NoBlock)
		m.Outputs[s] = m.Outputs[s][:0]
		m.Sched[s] = nil
	}
	m.Properties = nil
	m.Parameters = nil
	m.Uniforms = nil
	m.Textures = nil
	m.EnvironmentDefines = make(map[string]struct{})
	m.Diagnostics = nil
	m.Stats = Statistics{}
	m.parameterIDs = make(map[ParameterInfo]uint32)
}

// Value returns the value with the given ID.
func (m *Module) Value(id ValueID) Value { return m.Values[id] }

// Type returns the type of the value with the given ID.
func (m *Module) Type(id ValueID) *Type { return m.Values[id].Type }

// Append adds v to the arena without unification and returns its ID.
// Only the emitter should call it.
func (m *Module) Append(v Value) ValueID {
	m.Values = append(m.Values, v)
	return ValueID(len(m.Values) - 1)
}

// IsValid reports whether no diagnostic was recorded.
func (m *Module) IsValid() bool { return len(m.Diagnostics) == 0 }

// AddError records a diagnostic.
func (m *Module) AddError(origin string, kind ErrorKind, format string, args ...any) {
	m.Diagnostics = append(m.Diagnostics, Diagnostic{
		Origin:  origin,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
}

// FindOrAddParameter returns the index of the parameter with the given info,
// registering it with md if it is new. The boolean reports whether the
// parameter already existed.
func (m *Module) FindOrAddParameter(info ParameterInfo, md ParameterMetadata) (uint32, bool) {
	if id, ok := m.parameterIDs[info]; ok {
		return id, true
	}
	id := uint32(len(m.Parameters))
	m.Parameters = append(m.Parameters, Parameter{Info: info, Metadata: md})
	m.parameterIDs[info] = id
	return id, false
}

// ResetSchedule allocates zeroed scheduling state for every value.
func (m *Module) ResetSchedule() {
	for _, s := range Stages {
		m.Sched[s] = make([]Instruction, len(m.Values))
		m.Blocks[m.RootBlocks[s]].First = NoValue
	}
	m.Blocks = m.Blocks[:NumStages+1]
}

// AddEnvironmentDefine records a capability flag.
func (m *Module) AddEnvironmentDefine(name string) {
	m.EnvironmentDefines[name] = struct{}{}
}

// DefineNames returns the environment defines in sorted order.
func (m *Module) DefineNames() []string {
	names := make([]string, 0, len(m.EnvironmentDefines))
	for name := range m.EnvironmentDefines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FindTexture returns the index in Textures of the binding for the given
// texture asset and parameter, or -1.
func (m *Module) FindTexture(texture string, parameter int) int {
	for i, t := range m.Textures {
		if t.Texture == texture && t.Parameter == parameter {
			return i
		}
	}
	return -1
}
