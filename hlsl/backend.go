// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/mir/ir"
)

// Options configures HLSL code generation.
type Options struct {
	// ShaderModel specifies the target shader model.
	// Defaults to ShaderModel5_1 for maximum compatibility.
	ShaderModel ShaderModel

	// TernaryBranches lowers every branch to a conditional expression, even
	// when one of its arms holds instructions of its own. Both arms are
	// then evaluated unconditionally.
	TernaryBranches bool
}

// DefaultOptions returns sensible default options for HLSL generation.
func DefaultOptions() *Options {
	return &Options{
		ShaderModel: ShaderModel5_1,
	}
}

// FeatureFlags indicates which HLSL features are used by the generated code.
type FeatureFlags uint32

const (
	// FeatureNone indicates no special features are used.
	FeatureNone FeatureFlags = 0

	// FeatureDerivatives indicates screen-space derivatives are computed,
	// explicitly or by automatic mip selection.
	FeatureDerivatives FeatureFlags = 1 << (iota - 1)

	// FeatureTextureSampling indicates textures are sampled.
	FeatureTextureSampling

	// FeatureGather indicates texture gathers are used (SM 4.1+).
	FeatureGather

	// FeatureDynamicBranching indicates an if/else statement was emitted.
	FeatureDynamicBranching

	// FeatureInlineCode indicates code written in the graph was spliced in.
	FeatureInlineCode
)

// Has returns true if the flags contain the specified feature.
func (f FeatureFlags) Has(feature FeatureFlags) bool {
	return f&feature != 0
}

// String returns a human-readable list of enabled features.
func (f FeatureFlags) String() string {
	var features []string
	if f.Has(FeatureDerivatives) {
		features = append(features, "Derivatives")
	}
	if f.Has(FeatureTextureSampling) {
		features = append(features, "TextureSampling")
	}
	if f.Has(FeatureGather) {
		features = append(features, "Gather")
	}
	if f.Has(FeatureDynamicBranching) {
		features = append(features, "DynamicBranching")
	}
	if f.Has(FeatureInlineCode) {
		features = append(features, "InlineCode")
	}
	if len(features) == 0 {
		return "none"
	}
	return strings.Join(features, ", ")
}

// OutputFragment is the expression assigned to one material output.
type OutputFragment struct {
	Property ir.Property
	Code     string
}

// StageCode is the generated code of one stage. Body declares the locals
// the output fragments refer to, and must be placed before them.
type StageCode struct {
	Stage   ir.Stage
	Body    string
	Outputs []OutputFragment
}

// TranslationInfo contains what the surrounding shader needs to host the
// generated code.
type TranslationInfo struct {
	// UsedFeatures indicates which shader features are used.
	UsedFeatures FeatureFlags

	// Profiles holds the compiler profile of each stage, e.g. "ps_5_1".
	Profiles [ir.NumStages]string

	// EnvironmentDefines lists the capability flags to define, sorted.
	EnvironmentDefines []string

	// Textures is the texture table; Material.Texture2D_N is entry N.
	Textures []ir.TextureBinding

	// NumUniformSlots is the number of float4 entries of Material.PreshaderBuffer.
	NumUniformSlots int

	// Properties is the union of the graph properties of every output.
	Properties ir.GraphProperties

	Stats ir.Statistics
}

// Translation is the result of translating a module.
type Translation struct {
	Code map[ir.Stage]StageCode
	Info TranslationInfo
}

// Translate generates the HLSL code of every stage of an analyzed and
// scheduled module.
func Translate(module *ir.Module, options *Options) (*Translation, error) {
	if module == nil {
		return nil, NewError(ErrInternalError, "module is nil")
	}
	if options == nil {
		options = DefaultOptions()
	}
	if !options.ShaderModel.IsValid() {
		return nil, NewError(ErrInvalidShaderModel, fmt.Sprintf("unknown shader model %d", options.ShaderModel))
	}
	if !module.IsValid() {
		return nil, NewError(ErrInvalidModule, fmt.Sprintf("module has %d diagnostics", len(module.Diagnostics)))
	}

	t := &Translation{
		Code: make(map[ir.Stage]StageCode, ir.NumStages),
		Info: TranslationInfo{
			EnvironmentDefines: module.DefineNames(),
			Textures:           module.Textures,
			NumUniformSlots:    module.Stats.NumUniformSlots,
			Stats:              module.Stats,
		},
	}
	for _, s := range ir.Stages {
		if module.Sched[s] == nil {
			return nil, NewError(ErrInvalidModule, "module is not scheduled")
		}

		w := newWriter(module, options, s)
		code, err := w.writeStage()
		if err != nil {
			return nil, fmt.Errorf("hlsl: %s stage: %w", s, err)
		}
		t.Code[s] = code
		t.Info.UsedFeatures |= w.usedFeatures
		t.Info.Profiles[s] = ShaderProfile(s, options.ShaderModel)
		for _, out := range module.Outputs[s] {
			t.Info.Properties |= module.Properties[out]
		}
	}
	return t, nil
}
