// Package ir defines the intermediate representation of material graphs.
//
// A material graph is lowered into a purely functional value graph. Values
// are either leaves (constants, external inputs, textures and parameters) or
// instructions computing a result from other values. Values are immutable
// and unified: the emitter never creates two values that compare equal, so
// a ValueID identifies a computation.
//
// # Structure
//
// A Module owns:
//   - Values: the value arena, indexed by ValueID
//   - Blocks: one tree of lexical scopes per stage, indexed by BlockID
//   - Outputs: the SetOutput instructions evaluated in each stage
//   - Parameters, Uniforms and Textures: the resource tables
//   - Diagnostics: every error found while building the module
//
// # Pipeline
//
// The typical pipeline is:
//
//	graph -> emit -> analyze -> schedule -> hlsl
//
// Scheduling state is kept in Module.Sched, separate from the values, so
// that structural equality of values never depends on where they are placed.
package ir
