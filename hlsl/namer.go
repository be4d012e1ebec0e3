// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"
)

// namer generates unique identifiers for the locals of a stage body.
// Names are compared case-insensitively, like legacy HLSL keywords.
type namer struct {
	// usedNames tracks generated names, lowercased.
	usedNames map[string]struct{}

	// counter is used to generate unique suffixes.
	counter uint32
}

func newNamer() *namer {
	n := &namer{
		usedNames: make(map[string]struct{}),
	}
	for _, name := range []string{
		MaterialGlobal,
		ViewGlobal,
		ParametersGlobal,
		PrimitiveGlobal,
		PixelMaterialInputsGlobal,
		ResolvedViewGlobal,
	} {
		n.reserve(name)
	}
	return n
}

// call generates a unique name based on the given base.
// It escapes reserved keywords and adds numeric suffixes if needed.
func (n *namer) call(base string) string {
	escaped := Escape(base)

	lowerEscaped := strings.ToLower(escaped)
	if !n.isUsedLower(lowerEscaped) {
		n.usedNames[lowerEscaped] = struct{}{}
		return escaped
	}

	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", escaped, n.counter)
		lowerCandidate := strings.ToLower(candidate)
		if !n.isUsedLower(lowerCandidate) {
			n.usedNames[lowerCandidate] = struct{}{}
			return candidate
		}
	}
}

func (n *namer) isUsed(name string) bool {
	return n.isUsedLower(strings.ToLower(name))
}

func (n *namer) isUsedLower(lowerName string) bool {
	_, used := n.usedNames[lowerName]
	return used
}

// reserve marks a name as used without returning it.
func (n *namer) reserve(name string) {
	n.usedNames[strings.ToLower(name)] = struct{}{}
}

// count returns the number of unique names tracked.
func (n *namer) count() int {
	return len(n.usedNames)
}
