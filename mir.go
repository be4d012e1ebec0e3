// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package mir provides a Pure Go material graph compiler.
//
// mir compiles node-based material graphs to HLSL fragments for the
// vertex, pixel and compute stages of a material shader. Materials are
// built in Go with the graph package or loaded from YAML files.
//
// The package provides a simple, high-level API as well as access to the
// individual compilation steps through the builder, analyze, schedule
// and hlsl packages.
//
// Example usage:
//
//	m, err := mir.Load("rock.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r, err := mir.Compile(ctx, m)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mir.WriteHLSL(os.Stdout, r)
//
// A material with errors fails with a *builder.DiagnosticsError listing
// every diagnostic.
package mir

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/mir/builder"
	"github.com/gogpu/mir/graph"
	"github.com/gogpu/mir/ir"
)

// Version is the compiler version.
const Version = "0.3.0"

// DefaultOptions returns sensible default options.
func DefaultOptions() builder.Options {
	return builder.DefaultOptions()
}

// Load reads a material file.
func Load(path string) (*graph.Material, error) {
	return graph.Load(path)
}

// Parse decodes a material from YAML.
func Parse(data []byte) (*graph.Material, error) {
	return graph.Parse(data)
}

// Compile compiles a material using default options.
func Compile(ctx context.Context, m *graph.Material) (*builder.Result, error) {
	return CompileWithOptions(ctx, m, DefaultOptions())
}

// CompileWithOptions compiles a material with custom options.
//
// The compilation pipeline is:
//  1. Build the graph into IR, folding constants and checking types
//  2. Analyze the IR (stage availability, uniforms, textures, defines)
//  3. Schedule instructions into blocks per stage
//  4. Generate HLSL per stage
func CompileWithOptions(ctx context.Context, m *graph.Material, opts builder.Options) (*builder.Result, error) {
	return builder.Build(ctx, m, opts)
}

// CompileFile loads and compiles a material file.
func CompileFile(ctx context.Context, path string, opts builder.Options) (*builder.Result, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	return CompileWithOptions(ctx, m, opts)
}

// OutputPrefix is the struct the material outputs are assigned to in the
// generated include.
const OutputPrefix = "Out"

// WriteHLSL writes r as an include file: a header describing the
// bindings, then the body and output assignments of every stage that
// has outputs.
func WriteHLSL(w io.Writer, r *builder.Result) error {
	bw := bufio.NewWriter(w)
	info := &r.Info

	fmt.Fprintf(bw, "// Material: %s\n", r.Module.Name)
	fmt.Fprintf(bw, "// Features: %s\n", info.UsedFeatures)
	fmt.Fprintf(bw, "// Uniform slots: %d\n", info.NumUniformSlots)
	for i, t := range info.Textures {
		fmt.Fprintf(bw, "// Texture2D_%d: %s (%s)\n", i, t.Texture, t.SamplerType)
	}
	for _, d := range info.EnvironmentDefines {
		fmt.Fprintf(bw, "#define %s 1\n", d)
	}

	for _, s := range ir.Stages {
		code := r.Code[s]
		if len(code.Outputs) == 0 {
			continue
		}
		fmt.Fprintf(bw, "\n// Stage: %s (%s)\n", s, info.Profiles[s])
		bw.WriteString(code.Body)
		for _, o := range code.Outputs {
			fmt.Fprintf(bw, "%s.%s = %s;\n", OutputPrefix, o.Property, o.Code)
		}
	}
	return bw.Flush()
}

// FormatHLSL returns the include file of r as a string.
func FormatHLSL(r *builder.Result) string {
	var sb strings.Builder
	_ = WriteHLSL(&sb, r)
	return sb.String()
}
