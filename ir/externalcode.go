// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// EnvironmentDefine is a capability flag required by a piece of external code.
// The define is only requested when the code is evaluated in one of Stages.
type EnvironmentDefine struct {
	Name   string
	Stages StageMask
}

// ExternalCodeDeclaration describes a named fragment of target code a
// material can reference, together with the capabilities it requires.
type ExternalCodeDeclaration struct {
	Name       string
	ReturnType *Type
	Args       []*Type
	Code       string
	Stages     StageMask
	Properties GraphProperties
	Defines    []EnvironmentDefine
}

// AvailableIn reports whether the code can be evaluated in the given stage.
func (d *ExternalCodeDeclaration) AvailableIn(s Stage) bool {
	return d.Stages.Has(s)
}

// ExternalCodeRegistry maps declaration names to declarations.
type ExternalCodeRegistry struct {
	Version      string
	declarations map[string]*ExternalCodeDeclaration
}

// Lookup returns the declaration with the given name.
func (r *ExternalCodeRegistry) Lookup(name string) (*ExternalCodeDeclaration, bool) {
	d, ok := r.declarations[name]
	return d, ok
}

// Names returns the sorted names of all declarations.
func (r *ExternalCodeRegistry) Names() []string {
	names := make([]string, 0, len(r.declarations))
	for name := range r.declarations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type yamlRegistry struct {
	Version      string            `yaml:"version"`
	Declarations []yamlDeclaration `yaml:"declarations"`
}

type yamlDeclaration struct {
	Name       string       `yaml:"name"`
	Returns    string       `yaml:"returns"`
	Args       []string     `yaml:"args"`
	Code       string       `yaml:"code"`
	Stages     []string     `yaml:"stages"`
	Properties []string     `yaml:"properties"`
	Defines    []yamlDefine `yaml:"defines"`
}

type yamlDefine struct {
	Name   string   `yaml:"name"`
	Stages []string `yaml:"stages"`
}

// ParseExternalCodeRegistry decodes a registry from its YAML form.
func ParseExternalCodeRegistry(data []byte) (*ExternalCodeRegistry, error) {
	var doc yamlRegistry
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("external code registry: %w", err)
	}

	reg := &ExternalCodeRegistry{
		Version:      doc.Version,
		declarations: make(map[string]*ExternalCodeDeclaration, len(doc.Declarations)),
	}
	for i, yd := range doc.Declarations {
		d, err := yd.declaration()
		if err != nil {
			return nil, fmt.Errorf("external code registry: declaration %d: %w", i, err)
		}
		if _, dup := reg.declarations[d.Name]; dup {
			return nil, fmt.Errorf("external code registry: duplicate declaration %q", d.Name)
		}
		reg.declarations[d.Name] = d
	}
	return reg, nil
}

func (yd *yamlDeclaration) declaration() (*ExternalCodeDeclaration, error) {
	if yd.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	if strings.TrimSpace(yd.Code) == "" {
		return nil, fmt.Errorf("%s: missing code", yd.Name)
	}

	ret, ok := ParseType(yd.Returns)
	if !ok || !ret.IsPrimitive() {
		return nil, fmt.Errorf("%s: invalid return type %q", yd.Name, yd.Returns)
	}
	if len(yd.Args) > MaxInlineArguments {
		return nil, fmt.Errorf("%s: too many arguments (%d, max %d)", yd.Name, len(yd.Args), MaxInlineArguments)
	}

	d := &ExternalCodeDeclaration{
		Name:       yd.Name,
		ReturnType: ret,
		Code:       yd.Code,
	}
	for _, a := range yd.Args {
		t, ok := ParseType(a)
		if !ok || !t.IsPrimitive() {
			return nil, fmt.Errorf("%s: invalid argument type %q", yd.Name, a)
		}
		d.Args = append(d.Args, t)
	}

	var err error
	if d.Stages, err = parseStageMask(yd.Stages); err != nil {
		return nil, fmt.Errorf("%s: %w", yd.Name, err)
	}
	for _, p := range yd.Properties {
		gp, ok := ParseGraphProperty(p)
		if !ok {
			return nil, fmt.Errorf("%s: unknown graph property %q", yd.Name, p)
		}
		d.Properties |= gp
	}
	for _, yDef := range yd.Defines {
		if yDef.Name == "" {
			return nil, fmt.Errorf("%s: define without name", yd.Name)
		}
		mask, err := parseStageMask(yDef.Stages)
		if err != nil {
			return nil, fmt.Errorf("%s: define %s: %w", yd.Name, yDef.Name, err)
		}
		d.Defines = append(d.Defines, EnvironmentDefine{Name: yDef.Name, Stages: mask})
	}
	return d, nil
}

// An empty list means every stage.
func parseStageMask(names []string) (StageMask, error) {
	if len(names) == 0 {
		return AllStages, nil
	}
	var mask StageMask
	for _, n := range names {
		s, ok := ParseStage(n)
		if !ok {
			return 0, fmt.Errorf("unknown stage %q", n)
		}
		mask |= s.Mask()
	}
	return mask, nil
}

//go:embed externalcode.yaml
var builtinExternalCode []byte

var (
	builtinRegistryOnce sync.Once
	builtinRegistry     *ExternalCodeRegistry
)

// BuiltinExternalCode returns the registry of built-in code declarations.
// It is decoded on first use and shared, read-only, afterwards.
func BuiltinExternalCode() *ExternalCodeRegistry {
	builtinRegistryOnce.Do(func() {
		reg, err := ParseExternalCodeRegistry(builtinExternalCode)
		if err != nil {
			panic(err)
		}
		builtinRegistry = reg
	})
	return builtinRegistry
}
