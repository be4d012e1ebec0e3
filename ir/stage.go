// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

// Stage is an execution phase a material is evaluated in. A value may need a
// different implementation per stage, e.g. hardware derivatives only exist
// in the pixel stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StagePixel
	StageCompute
)

// NumStages is the number of execution stages.
const NumStages = 3

// Stages lists every stage in evaluation order.
var Stages = [NumStages]Stage{StageVertex, StagePixel, StageCompute}

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StagePixel:
		return "pixel"
	case StageCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// SupportsHardwareDerivatives reports whether ddx/ddy are available in the stage.
func (s Stage) SupportsHardwareDerivatives() bool {
	return s == StagePixel
}

// StageMask is a set of stages.
type StageMask uint8

// Mask returns the single-stage mask for s.
func (s Stage) Mask() StageMask { return 1 << s }

// AllStages contains every stage.
const AllStages StageMask = 1<<NumStages - 1

// Has reports whether the mask contains s.
func (m StageMask) Has(s Stage) bool { return m&s.Mask() != 0 }

// ParseStage returns the stage with the given name.
func ParseStage(name string) (Stage, bool) {
	for _, s := range Stages {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}
