// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package emit constructs the values of an ir.Module.
//
// The Emitter is the only way to create values. Every construction goes
// through hash-consing, so structurally identical values are unified, and
// through constant folding and algebraic simplification, so the graph never
// holds work that can be done at compile time.
//
// Failing constructions never panic and never stop the build: they record
// one diagnostic on the module and return ir.PoisonValue. Operations on
// poison silently return poison.
package emit

import (
	"fmt"

	"github.com/gogpu/mir/ir"
)

// Input is a named input slot of a graph node.
type Input interface {
	InputName() string
}

// Binder connects the emitter to the graph being lowered. The module builder
// implements it for the node currently being built.
type Binder interface {
	// Fetch returns the value flowing into in, or ir.NoValue if the input is
	// not connected.
	Fetch(in Input) ir.ValueID

	// Bind sets the value of the node output with the given index.
	Bind(output int, v ir.ValueID)
}

// Options configures an Emitter.
type Options struct {
	// StaticSwitchOverrides replaces the default value of static switch
	// parameters, by parameter name.
	StaticSwitchOverrides map[string]bool

	// ExternalCode resolves external code declarations by name.
	// Defaults to ir.BuiltinExternalCode().
	ExternalCode *ir.ExternalCodeRegistry
}

// Emitter creates the values of a module.
type Emitter struct {
	module  *ir.Module
	options Options
	values  map[ir.Value]ir.ValueID

	trueConstant  ir.ValueID
	falseConstant ir.ValueID

	derivatives map[derivativeKey]ir.ValueID

	// State of the node being built.
	nodeName  string
	nodeKind  string
	binder    Binder
	inputs    map[ir.ValueID]string
	hasErrors bool
}

// New returns an emitter creating values into m.
func New(m *ir.Module, opts Options) *Emitter {
	if opts.ExternalCode == nil {
		opts.ExternalCode = ir.BuiltinExternalCode()
	}
	e := &Emitter{
		module:  m,
		options: opts,
		values:  make(map[ir.Value]ir.ValueID, len(m.Values)),

		derivatives: make(map[derivativeKey]ir.ValueID),
	}
	for i := int(ir.PoisonValue); i < len(m.Values); i++ {
		e.values[m.Values[i]] = ir.ValueID(i)
	}
	e.trueConstant = e.Emit(ir.Value{Type: ir.Bool(), Kind: ir.BoolConstant(true)})
	e.falseConstant = e.Emit(ir.Value{Type: ir.Bool(), Kind: ir.BoolConstant(false)})
	return e
}

// Module returns the module values are created into.
func (e *Emitter) Module() *ir.Module { return e.module }

// Emit returns the ID of the value equal to proto, adding proto to the
// module if no such value exists yet.
func (e *Emitter) Emit(proto ir.Value) ir.ValueID {
	if id, ok := e.values[proto]; ok {
		return id
	}
	id := e.module.Append(proto)
	e.values[proto] = id
	return id
}

// Value returns the value with the given ID.
func (e *Emitter) Value(id ir.ValueID) ir.Value { return e.module.Values[id] }

// Type returns the type of the value with the given ID.
func (e *Emitter) Type(id ir.ValueID) *ir.Type { return e.module.Values[id].Type }

// Poison returns the poison value.
func (e *Emitter) Poison() ir.ValueID { return ir.PoisonValue }

// IsValid reports whether v is present and not poison.
func (e *Emitter) IsValid(v ir.ValueID) bool {
	return v != ir.NoValue && v != ir.PoisonValue
}

func (e *Emitter) anyNotValid(vs ...ir.ValueID) bool {
	for _, v := range vs {
		if !e.IsValid(v) {
			return true
		}
	}
	return false
}

/*------------------------------------ Nodes -------------------------------------*/

// BeginNode makes the emitter build the node with the given name and kind.
// Diagnostics raised until EndNode are attributed to it.
func (e *Emitter) BeginNode(name, kind string, b Binder) {
	e.nodeName = name
	e.nodeKind = kind
	e.binder = b
	e.inputs = nil
	e.hasErrors = false
}

// EndNode finishes the current node. It reports whether the node raised
// any diagnostic.
func (e *Emitter) EndNode() (hasErrors bool) {
	hasErrors = e.hasErrors
	e.nodeName, e.nodeKind, e.binder, e.inputs = "", "", nil, nil
	e.hasErrors = false
	return hasErrors
}

// NodeName returns the name of the node being built.
func (e *Emitter) NodeName() string { return e.nodeName }

/*------------------------------------ Errors ------------------------------------*/

// Errorf records a type error on the current node.
func (e *Emitter) Errorf(format string, args ...any) {
	e.ErrorKindf(ir.ErrTypeError, format, args...)
}

// ErrorKindf records a diagnostic of the given kind on the current node.
func (e *Emitter) ErrorKindf(kind ir.ErrorKind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if e.nodeKind != "" {
		msg = fmt.Sprintf("(Node %s) %s", e.nodeKind, msg)
	}
	e.module.AddError(e.nodeName, kind, "%s", msg)
	e.hasErrors = true
}

// errorAt records a type error about v, naming the node input v was read
// from when known.
func (e *Emitter) errorAt(v ir.ValueID, format string, args ...any) {
	if name, ok := e.inputs[v]; ok {
		format = "From input '" + name + "': " + format
	}
	e.Errorf(format, args...)
}

// CommonType returns the common type of a and b, recording an error if
// there is none.
func (e *Emitter) CommonType(a, b *ir.Type) (*ir.Type, bool) {
	t, ok := ir.CommonType(a, b)
	if !ok {
		e.Errorf("No common type between '%s' and '%s'.", a, b)
	}
	return t, ok
}

/*------------------------------------ Inputs ------------------------------------*/

// TryInput returns the value flowing into in, or ir.NoValue if in is not connected.
func (e *Emitter) TryInput(in Input) ir.ValueID {
	if e.binder == nil || in == nil {
		return ir.NoValue
	}
	v := e.binder.Fetch(in)
	if v != ir.NoValue {
		if e.inputs == nil {
			e.inputs = make(map[ir.ValueID]string)
		}
		if _, seen := e.inputs[v]; !seen {
			e.inputs[v] = in.InputName()
		}
	}
	return v
}

// Input returns the value flowing into in, recording an error if in is not
// connected.
func (e *Emitter) Input(in Input) ir.ValueID {
	v := e.TryInput(in)
	if v == ir.NoValue {
		name := "<nil>"
		if in != nil {
			name = in.InputName()
		}
		e.ErrorKindf(ir.ErrMissingValue, "Missing '%s' input value.", name)
		return ir.PoisonValue
	}
	return v
}

// InputDefaultFloat returns the value flowing into in, or def if unconnected.
func (e *Emitter) InputDefaultFloat(in Input, def float32) ir.ValueID {
	if v := e.TryInput(in); v != ir.NoValue {
		return v
	}
	return e.ConstantFloat(def)
}

// Output sets the value of the current node's output with the given index.
func (e *Emitter) Output(index int, v ir.ValueID) *Emitter {
	if e.binder != nil {
		e.binder.Bind(index, v)
	}
	return e
}

/*------------------------------------ Checks ------------------------------------*/

// CheckIsPrimitive returns v if it is a primitive value, poison otherwise.
func (e *Emitter) CheckIsPrimitive(v ir.ValueID) ir.ValueID {
	if e.IsValid(v) && !e.Type(v).IsPrimitive() {
		e.errorAt(v, "Expected a primitive value, got a '%s' instead.", e.Type(v))
		return ir.PoisonValue
	}
	return v
}

// CheckIsArithmetic returns v if it is an int or float value, poison otherwise.
func (e *Emitter) CheckIsArithmetic(v ir.ValueID) ir.ValueID {
	if e.IsValid(v) && !e.Type(v).IsArithmetic() {
		e.errorAt(v, "Expected an arithmetic value, got a '%s' instead.", e.Type(v))
		return ir.PoisonValue
	}
	return v
}

// CheckIsInteger returns v if it is an integer value, poison otherwise.
func (e *Emitter) CheckIsInteger(v ir.ValueID) ir.ValueID {
	if e.IsValid(v) && !e.Type(v).IsInteger() {
		e.errorAt(v, "Expected an integer value, got a '%s' instead.", e.Type(v))
		return ir.PoisonValue
	}
	return v
}

// CheckIsScalarOrVector returns v if it is a scalar or vector value, poison otherwise.
func (e *Emitter) CheckIsScalarOrVector(v ir.ValueID) ir.ValueID {
	if e.IsValid(v) && (!e.Type(v).IsPrimitive() || e.Type(v).IsMatrix()) {
		e.errorAt(v, "Expected a scalar or vector value, got a '%s' instead.", e.Type(v))
		return ir.PoisonValue
	}
	return v
}

// CheckIsTexture returns v if it is a texture value, poison otherwise.
func (e *Emitter) CheckIsTexture(v ir.ValueID) ir.ValueID {
	if e.IsValid(v) && !e.Type(v).IsTexture() {
		e.errorAt(v, "Expected a texture value, got a '%s' instead.", e.Type(v))
		return ir.PoisonValue
	}
	return v
}

// ToConstantBool returns the value of a constant boolean. It records an
// error and returns false if v is not one.
func (e *Emitter) ToConstantBool(v ir.ValueID) bool {
	if !e.IsValid(v) {
		return false
	}
	val := e.Value(v)
	c, ok := val.Kind.(ir.Constant)
	if !ok {
		e.errorAt(v, "Expected a constant bool value, got a non-constant value instead.")
		return false
	}
	if val.Type != ir.Bool() {
		e.errorAt(v, "Expected a constant bool value, got a '%s' instead.", val.Type)
		return false
	}
	return c.Bool()
}
