// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import "strings"

// GraphProperties is a set of facts about a value that hold if they hold for
// any value it depends on. The analyzer propagates them along use edges.
type GraphProperties uint16

const (
	// ReadsPixelNormal is set by values reading the shaded pixel normal.
	ReadsPixelNormal GraphProperties = 1 << iota

	// UsesWorldPosition is set by values reading the world position.
	UsesWorldPosition

	// UsesTime is set by values reading the view time.
	UsesTime

	// UsesDerivatives is set by values computing screen-space derivatives.
	UsesDerivatives

	// UsesTextures is set by values sampling a texture.
	UsesTextures

	// NoGraphProperties is the empty set.
	NoGraphProperties GraphProperties = 0
)

var graphPropertyNames = [...]string{
	"ReadsPixelNormal",
	"UsesWorldPosition",
	"UsesTime",
	"UsesDerivatives",
	"UsesTextures",
}

// Has reports whether all properties of p2 are set in p.
func (p GraphProperties) Has(p2 GraphProperties) bool { return p&p2 == p2 }

// String returns the set properties joined by '|'.
func (p GraphProperties) String() string {
	if p == 0 {
		return "None"
	}
	var parts []string
	for i, name := range graphPropertyNames {
		if p&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseGraphProperty returns the property with the given name.
func ParseGraphProperty(name string) (GraphProperties, bool) {
	for i, n := range graphPropertyNames {
		if n == name {
			return 1 << i, true
		}
	}
	return 0, false
}
