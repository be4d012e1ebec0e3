// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package builder compiles material graphs into HLSL.
//
// Build runs the whole pipeline on one material:
//
//  1. build the graph nodes reachable from the outputs, inputs first,
//     creating the module values through an emit.Emitter
//  2. analyze the module (analyze.Analyze)
//  3. schedule its instructions (schedule.Schedule)
//  4. translate every stage (hlsl.Translate)
//
// Node errors do not stop the build: every diagnostic of the material is
// collected and returned in a *DiagnosticsError before any code is
// generated.
//
// Example:
//
//	m, err := graph.Load("M_Rock.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := builder.Build(ctx, m, builder.DefaultOptions())
//	if diags, ok := builder.Diagnostics(err); ok {
//	    for _, d := range diags {
//	        fmt.Println(d.Error())
//	    }
//	}
package builder
