// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import "slices"

// Domain is the kind of surface a material is rendered on.
type Domain uint8

const (
	DomainSurface Domain = iota
	DomainPostProcess
	DomainUI
)

var domainNames = [...]string{
	DomainSurface:     "Surface",
	DomainPostProcess: "PostProcess",
	DomainUI:          "UI",
}

// String returns the domain name.
func (d Domain) String() string {
	if int(d) < len(domainNames) {
		return domainNames[d]
	}
	return "Unknown"
}

// ParseDomain returns the domain with the given name.
func ParseDomain(name string) (Domain, bool) {
	i := slices.Index(domainNames[:], name)
	return Domain(max(i, 0)), i >= 0
}

// BlendMode is how a material is composited with the scene.
type BlendMode uint8

const (
	BlendOpaque BlendMode = iota
	BlendMasked
	BlendTranslucent
	BlendAdditive
)

var blendModeNames = [...]string{
	BlendOpaque:      "Opaque",
	BlendMasked:      "Masked",
	BlendTranslucent: "Translucent",
	BlendAdditive:    "Additive",
}

// String returns the blend mode name.
func (b BlendMode) String() string {
	if int(b) < len(blendModeNames) {
		return blendModeNames[b]
	}
	return "Unknown"
}

// ParseBlendMode returns the blend mode with the given name.
func ParseBlendMode(name string) (BlendMode, bool) {
	i := slices.Index(blendModeNames[:], name)
	return BlendMode(max(i, 0)), i >= 0
}

// IsTranslucent reports whether the blend mode composites over the scene
// color, which lets the material read scene textures.
func (b BlendMode) IsTranslucent() bool {
	return b == BlendTranslucent || b == BlendAdditive
}

// MaterialConfig is the global configuration of a material.
type MaterialConfig struct {
	Domain    Domain
	BlendMode BlendMode
	TwoSided  bool

	// AllowedDefines restricts the environment defines the generated code
	// may request. Nil allows every define.
	AllowedDefines []string
}
