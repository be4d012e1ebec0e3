// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlsl generates HLSL source text from an analyzed and scheduled
// material module.
//
// The generated code is not a complete shader. Each stage yields a body of
// local declarations and one expression per material output; the
// surrounding shader template splices them into its material evaluation
// function and provides the globals the code refers to:
//
//	Material.PreshaderBuffer[N]  // packed float4 uniform slots
//	Material.Texture2D_N         // entry N of the texture table
//	View                         // per-view constants and shared samplers
//	Parameters                   // interpolants and per-pixel inputs
//
// # Usage
//
//	analyze.Analyze(module, config)
//	schedule.Schedule(module)
//
//	t, err := hlsl.Translate(module, hlsl.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pixel := t.Code[ir.StagePixel]
//
// An instruction used more than once is stored in a local; any other
// instruction is inlined into its single user. Branches whose arms hold
// instructions of their own become if/else statements so that the arm not
// taken is not evaluated.
package hlsl
