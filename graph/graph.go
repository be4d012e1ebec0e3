// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gogpu/mir/emit"
	"github.com/gogpu/mir/ir"
)

// Link references one output of a node. The zero Link is unconnected.
type Link struct {
	Node   string
	Output int
}

// IsConnected reports whether the link references a node.
func (l Link) IsConnected() bool { return l.Node != "" }

// String returns "Node" for the first output and "Node.N" for the others.
func (l Link) String() string {
	if l.Output == 0 {
		return l.Node
	}
	return fmt.Sprintf("%s.%d", l.Node, l.Output)
}

// Input is a node input slot. It implements emit.Input.
type Input struct {
	Name string
	Link Link
}

// InputName returns the slot name.
func (in *Input) InputName() string { return in.Name }

// Expression is a node of a material graph.
//
// Build reads the node inputs through the emitter and binds its outputs
// with emit.Emitter.Output. The inputs are built before the node is.
type Expression interface {
	// Name is unique within a material.
	Name() string

	// Kind is the node kind, used in diagnostics.
	Kind() string

	// Inputs returns the input slots of the node.
	Inputs() []*Input

	Build(e *emit.Emitter)
}

// Material is an authored material: a node graph plus the links assigned
// to each output property.
type Material struct {
	Name    string
	Config  ir.MaterialConfig
	Outputs map[ir.Property]Link
	Nodes   []Expression

	// StaticSwitches overrides the default value of static switch
	// parameters, by parameter name.
	StaticSwitches map[string]bool

	index map[string]Expression
}

// Node returns the node with the given name.
func (m *Material) Node(name string) (Expression, bool) {
	if m.index == nil || len(m.index) != len(m.Nodes) {
		m.index = make(map[string]Expression, len(m.Nodes))
		for _, n := range m.Nodes {
			m.index[n.Name()] = n
		}
	}
	n, ok := m.index[name]
	return n, ok
}

// Properties returns the assigned output properties in property order.
func (m *Material) Properties() []ir.Property {
	props := make([]ir.Property, 0, len(m.Outputs))
	for p := range m.Outputs {
		props = append(props, p)
	}
	sort.Slice(props, func(i, j int) bool { return props[i] < props[j] })
	return props
}

// Validate checks the graph structure: node names are unique and every
// link references an existing node. Type errors are left to the builder.
func (m *Material) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(m.Nodes))
	for _, n := range m.Nodes {
		switch {
		case n.Name() == "":
			errs = append(errs, fmt.Errorf("%s node without name", n.Kind()))
		case seen[n.Name()]:
			errs = append(errs, fmt.Errorf("duplicate node name %q", n.Name()))
		}
		seen[n.Name()] = true
	}
	m.index = nil

	check := func(owner string, l Link) {
		if !l.IsConnected() {
			return
		}
		if !seen[l.Node] {
			errs = append(errs, fmt.Errorf("%s: link to unknown node %q", owner, l.Node))
		} else if l.Output < 0 {
			errs = append(errs, fmt.Errorf("%s: negative output index %d", owner, l.Output))
		}
	}
	for _, n := range m.Nodes {
		for _, in := range n.Inputs() {
			check(n.Name()+"."+in.Name, in.Link)
		}
	}
	for _, p := range m.Properties() {
		check(p.String(), m.Outputs[p])
	}

	if len(errs) > 0 {
		return fmt.Errorf("material %s: %w", m.Name, errors.Join(errs...))
	}
	return nil
}
