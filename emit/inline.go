// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package emit

import (
	"slices"

	"github.com/gogpu/mir/ir"
)

// ExternalInput returns the value of an input provided by the shader.
func (e *Emitter) ExternalInput(id ir.ExternalInputID) ir.ValueID {
	return e.Emit(ir.Value{Type: id.Type(), Kind: ir.ExternalInput{ID: id}})
}

// InlineCode returns a fragment of HLSL code of type t. $0..$N in code are
// replaced with the arguments. The fragment is written by the user, so it
// is flagged as dynamic code.
func (e *Emitter) InlineCode(t *ir.Type, code string, args []ir.ValueID, props ir.GraphProperties) ir.ValueID {
	if len(args) > ir.MaxInlineArguments {
		e.ErrorKindf(ir.ErrUnsupportedConstruct, "Too many arguments: %d, at most %d are supported.",
			len(args), ir.MaxInlineArguments)
		return ir.PoisonValue
	}
	if e.anyNotValid(args...) {
		return ir.PoisonValue
	}
	if !t.IsPrimitive() {
		e.Errorf("Inline code cannot return a '%s'.", t)
		return ir.PoisonValue
	}

	ic := ir.InlineCode{
		Code:       code,
		NumArgs:    len(args),
		Flags:      ir.FlagHasDynamicCode,
		Properties: props,
	}
	copy(ic.Args[:], args)
	return e.Emit(ir.Value{Type: t, Kind: ic})
}

// InlineExternalCode returns a call to the external code declaration with
// the given name. The arguments are converted to the declared types.
func (e *Emitter) InlineExternalCode(name string, args []ir.ValueID) ir.ValueID {
	decl, ok := e.options.ExternalCode.Lookup(name)
	if !ok {
		e.ErrorKindf(ir.ErrUnsupportedConstruct, "Unknown external code '%s'.", name)
		return ir.PoisonValue
	}
	if len(args) != len(decl.Args) {
		e.Errorf("External code '%s' expects %d arguments, got %d.", name, len(decl.Args), len(args))
		return ir.PoisonValue
	}

	ic := ir.InlineCode{
		Declaration: decl,
		NumArgs:     len(args),
		Properties:  decl.Properties,
	}
	for i, a := range args {
		ic.Args[i] = e.Cast(a, decl.Args[i])
		if !e.IsValid(ic.Args[i]) {
			return ir.PoisonValue
		}
	}
	return e.Emit(ir.Value{Type: decl.ReturnType, Kind: ic})
}

// SetOutput assigns v to a material output property. The value is converted
// to the property type. Each property can only be set once.
func (e *Emitter) SetOutput(p ir.Property, v ir.ValueID) ir.ValueID {
	v = e.Cast(e.CheckIsPrimitive(v), p.Type())
	if !e.IsValid(v) {
		return ir.PoisonValue
	}

	out := e.Emit(ir.Value{Type: ir.Void(), Kind: ir.SetOutput{Property: p, Arg: v}})
	for _, s := range ir.Stages {
		if !p.EvaluatesInStage(s) {
			continue
		}
		outputs := e.module.Outputs[s]
		i, found := slices.BinarySearchFunc(outputs, p, func(id ir.ValueID, p ir.Property) int {
			return int(e.Value(id).Kind.(ir.SetOutput).Property) - int(p)
		})
		if found {
			if outputs[i] != out {
				e.Errorf("Property '%s' is assigned more than once.", p)
				return ir.PoisonValue
			}
			continue
		}
		e.module.Outputs[s] = slices.Insert(outputs, i, out)
	}
	return out
}
