// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/mir/ir"
)

// ShaderModel represents a DirectX Shader Model version.
type ShaderModel uint8

// Supported Shader Model versions.
const (
	// ShaderModel4_0 is the DirectX 10 feature level. It has no channel gathers.
	ShaderModel4_0 ShaderModel = iota

	// ShaderModel4_1 adds Gather on the red channel.
	ShaderModel4_1

	// ShaderModel5_0 adds per-channel gathers (DirectX 11).
	ShaderModel5_0

	// ShaderModel5_1 provides improved resource binding (default).
	ShaderModel5_1

	// ShaderModel6_0 introduces DXIL and HLSL 2021 vector logic rules.
	ShaderModel6_0

	// ShaderModel6_6 adds dynamic resources.
	ShaderModel6_6
)

// String returns a human-readable representation of the shader model.
// Example: "SM 5.1", "SM 6.0"
func (sm ShaderModel) String() string {
	major, minor := sm.version()
	return fmt.Sprintf("SM %d.%d", major, minor)
}

// ProfileSuffix returns the shader profile suffix for this model.
// Example: "5_1", "6_0"
func (sm ShaderModel) ProfileSuffix() string {
	major, minor := sm.version()
	return fmt.Sprintf("%d_%d", major, minor)
}

func (sm ShaderModel) version() (major, minor uint8) {
	switch sm {
	case ShaderModel4_0:
		return 4, 0
	case ShaderModel4_1:
		return 4, 1
	case ShaderModel5_0:
		return 5, 0
	case ShaderModel5_1:
		return 5, 1
	case ShaderModel6_0:
		return 6, 0
	case ShaderModel6_6:
		return 6, 6
	default:
		return 5, 1
	}
}

// ParseShaderModel returns the shader model written as "6.0" or "6_0".
func ParseShaderModel(s string) (ShaderModel, bool) {
	for sm := ShaderModel4_0; sm.IsValid(); sm++ {
		major, minor := sm.version()
		if s == fmt.Sprintf("%d.%d", major, minor) || s == sm.ProfileSuffix() {
			return sm, true
		}
	}
	return 0, false
}

// IsValid reports whether sm is one of the declared shader models.
func (sm ShaderModel) IsValid() bool {
	return sm <= ShaderModel6_6
}

// SupportsDXIL returns true if this shader model uses DXIL output.
// DXIL compilers reject && and || on vectors.
func (sm ShaderModel) SupportsDXIL() bool {
	return sm >= ShaderModel6_0
}

// SupportsChannelGather returns true if GatherRed, GatherGreen,
// GatherBlue and GatherAlpha are available.
func (sm ShaderModel) SupportsChannelGather() bool {
	return sm >= ShaderModel5_0
}

// ShaderProfile returns the compiler profile of a stage, e.g. "ps_5_1".
func ShaderProfile(stage ir.Stage, sm ShaderModel) string {
	var prefix string
	switch stage {
	case ir.StageVertex:
		prefix = "vs"
	case ir.StagePixel:
		prefix = "ps"
	case ir.StageCompute:
		prefix = "cs"
	default:
		panic(ir.Unreachable(stage))
	}
	return prefix + "_" + sm.ProfileSuffix()
}
