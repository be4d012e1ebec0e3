// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package graph describes authored materials: node graphs whose outputs
// are assigned to material properties.
//
// Each node implements Expression. Its Build method reads the values of its
// inputs through an emit.Emitter and binds the values of its outputs. The
// builder package builds the nodes in dependency order.
//
// Materials can be written in Go or loaded from YAML:
//
//	version: 1.1.0
//	name: M_Rock
//	domain: Surface
//	nodes:
//	  - {name: Albedo, kind: TextureObject, texture: T_Rock_D}
//	  - {name: Sample, kind: TextureSample, inputs: {Texture: Albedo}}
//	  - {name: Tint, kind: VectorParameter, value: [1, 0.9, 0.8, 1]}
//	  - {name: Color, kind: Multiply, inputs: {A: Sample, B: Tint}}
//	outputs:
//	  BaseColor: Color
//
// A link names a node and, after a dot, one of its outputs: "Sample.4" is
// the alpha lane of a texture sample. Files are versioned; Parse accepts
// the versions matching SupportedVersions.
package graph
