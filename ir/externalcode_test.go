// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuiltinExternalCode(t *testing.T) {
	reg := BuiltinExternalCode()
	require.NotEmpty(t, reg.Names())

	d, ok := reg.Lookup("PixelNormalWS")
	require.True(t, ok)
	require.Equal(t, Float3(), d.ReturnType)
	require.True(t, d.Properties.Has(ReadsPixelNormal))
	require.False(t, d.AvailableIn(StageVertex))
	require.True(t, d.AvailableIn(StagePixel))

	d, ok = reg.Lookup("SceneDepth")
	require.True(t, ok)
	require.Len(t, d.Defines, 1)
	require.Equal(t, "NEEDS_SCENE_TEXTURES", d.Defines[0].Name)
	require.Equal(t, StagePixel.Mask()|StageCompute.Mask(), d.Defines[0].Stages)

	d, ok = reg.Lookup("SphereMask")
	require.True(t, ok)
	require.Equal(t, []*Type{Float3(), Float3(), Float(), Float()}, d.Args)
}

func TestParseExternalCodeRegistryErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "declarations: [\n"},
		{"missing name", "declarations:\n  - returns: float\n    code: X\n"},
		{"bad type", "declarations:\n  - name: A\n    returns: float5\n    code: X\n"},
		{"bad stage", "declarations:\n  - name: A\n    returns: float\n    code: X\n    stages: [geometry]\n"},
		{"bad property", "declarations:\n  - name: A\n    returns: float\n    code: X\n    properties: [Nope]\n"},
		{"duplicate", "declarations:\n  - {name: A, returns: float, code: X}\n  - {name: A, returns: float, code: Y}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExternalCodeRegistry([]byte(tt.doc))
			require.Error(t, err)
		})
	}
}

func TestGraphPropertiesString(t *testing.T) {
	p := ReadsPixelNormal | UsesTextures
	require.Equal(t, "ReadsPixelNormal|UsesTextures", p.String())
	require.Equal(t, "None", NoGraphProperties.String())

	got, ok := ParseGraphProperty("UsesTime")
	require.True(t, ok)
	require.Equal(t, UsesTime, got)
}
