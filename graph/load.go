// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/mir/emit"
	"github.com/gogpu/mir/ir"
)

// FormatVersion is the version of the material file format written by
// this package.
const FormatVersion = "1.1.0"

// SupportedVersions is the range of material file versions Parse accepts.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

var supportedVersions = func() *semver.Constraints {
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		panic(err)
	}
	return c
}()

type yamlMaterial struct {
	Version        string            `yaml:"version"`
	Name           string            `yaml:"name"`
	Domain         string            `yaml:"domain,omitempty"`
	BlendMode      string            `yaml:"blendMode,omitempty"`
	TwoSided       bool              `yaml:"twoSided,omitempty"`
	AllowedDefines []string          `yaml:"allowedDefines,omitempty"`
	StaticSwitches map[string]bool   `yaml:"staticSwitches,omitempty"`
	Nodes          []yamlNode        `yaml:"nodes"`
	Outputs        map[string]string `yaml:"outputs"`
}

type yamlNode struct {
	Name   string            `yaml:"name"`
	Kind   string            `yaml:"kind"`
	Inputs map[string]string `yaml:"inputs,omitempty"`
	Args   []string          `yaml:"args,omitempty"`

	Value         []float32 `yaml:"value,omitempty"`
	Parameter     string    `yaml:"parameter,omitempty"`
	Group         string    `yaml:"group,omitempty"`
	Switch        bool      `yaml:"switch,omitempty"`
	Texture       string    `yaml:"texture,omitempty"`
	Sampler       string    `yaml:"sampler,omitempty"`
	SamplerSource string    `yaml:"samplerSource,omitempty"`
	ViewMipBias   bool      `yaml:"viewMipBias,omitempty"`
	Mode          string    `yaml:"mode,omitempty"`
	Input         string    `yaml:"input,omitempty"`
	Index         int       `yaml:"index,omitempty"`
	Mask          string    `yaml:"mask,omitempty"`
	Type          string    `yaml:"type,omitempty"`
	Code          string    `yaml:"code,omitempty"`
	Properties    []string  `yaml:"properties,omitempty"`
}

// Load reads a material file. The material name defaults to the file name
// without extension.
func Load(path string) (*Material, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read material: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// Parse decodes a material from its YAML form and validates its structure.
func Parse(data []byte) (*Material, error) {
	var doc yamlMaterial
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode material: %w", err)
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}

	m := &Material{
		Name:           doc.Name,
		Outputs:        make(map[ir.Property]Link, len(doc.Outputs)),
		StaticSwitches: doc.StaticSwitches,
	}
	if err := doc.config(&m.Config); err != nil {
		return nil, err
	}

	for i := range doc.Nodes {
		n, err := doc.Nodes[i].expression()
		if err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", i, doc.Nodes[i].Name, err)
		}
		m.Nodes = append(m.Nodes, n)
	}

	for name, link := range doc.Outputs {
		p, ok := ir.ParseProperty(name)
		if !ok {
			return nil, fmt.Errorf("unknown output property %q", name)
		}
		l, err := ParseLink(link)
		if err != nil {
			return nil, fmt.Errorf("output %s: %w", name, err)
		}
		m.Outputs[p] = l
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func checkVersion(version string) error {
	if version == "" {
		return fmt.Errorf("material file has no version")
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("material file version %q: %w", version, err)
	}
	if !supportedVersions.Check(v) {
		return fmt.Errorf("material file version %s is not supported (want %s)", v, SupportedVersions)
	}
	return nil
}

func (doc *yamlMaterial) config(cfg *ir.MaterialConfig) error {
	if doc.Domain != "" {
		d, ok := ir.ParseDomain(doc.Domain)
		if !ok {
			return fmt.Errorf("unknown domain %q", doc.Domain)
		}
		cfg.Domain = d
	}
	if doc.BlendMode != "" {
		b, ok := ir.ParseBlendMode(doc.BlendMode)
		if !ok {
			return fmt.Errorf("unknown blend mode %q", doc.BlendMode)
		}
		cfg.BlendMode = b
	}
	cfg.TwoSided = doc.TwoSided
	cfg.AllowedDefines = doc.AllowedDefines
	return nil
}

// ParseLink parses "Node" or "Node.N".
func ParseLink(s string) (Link, error) {
	if s == "" {
		return Link{}, fmt.Errorf("empty link")
	}
	if i := strings.LastIndexByte(s, '.'); i > 0 {
		if n, err := strconv.Atoi(s[i+1:]); err == nil {
			return Link{Node: s[:i], Output: n}, nil
		}
	}
	return Link{Node: s}, nil
}

var samplerSources = map[string]ir.SamplerSourceMode{
	"":      ir.SamplerSourceFromTextureAsset,
	"Asset": ir.SamplerSourceFromTextureAsset,
	"Wrap":  ir.SamplerSourceWrapWorldGroupSettings,
	"Clamp": ir.SamplerSourceClampWorldGroupSettings,
}

func (yn *yamlNode) expression() (Expression, error) {
	if yn.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	base := Base{NodeName: yn.Name}

	var n Expression
	switch yn.Kind {
	case "Constant":
		n = &Constant{Base: base, Value: yn.Value}

	case "ScalarParameter", "VectorParameter", "TextureParameter", "StaticSwitchParameter":
		p, err := yn.parameter(base)
		if err != nil {
			return nil, err
		}
		n = p

	case "ExternalInput":
		id, ok := ir.ParseExternalInput(yn.Input)
		if !ok {
			return nil, fmt.Errorf("unknown external input %q", yn.Input)
		}
		n = &ExternalInput{Base: base, Input: id}

	case "TexCoord":
		n = &TexCoord{Base: base, Index: yn.Index}

	case "TextureObject":
		st, err := yn.samplerType()
		if err != nil {
			return nil, err
		}
		n = &TextureObject{Base: base, Texture: yn.Texture, SamplerType: st}

	case "TextureSample":
		mode := SampleAuto
		if yn.Mode != "" {
			var ok bool
			if mode, ok = ParseSampleMode(yn.Mode); !ok {
				return nil, fmt.Errorf("unknown sample mode %q", yn.Mode)
			}
		}
		src, ok := samplerSources[yn.SamplerSource]
		if !ok {
			return nil, fmt.Errorf("unknown sampler source %q", yn.SamplerSource)
		}
		ts := NewTextureSample(yn.Name, mode)
		ts.SamplerSource = src
		ts.AutomaticViewMipBias = yn.ViewMipBias
		n = ts

	case "Branch":
		n = NewBranch(yn.Name)

	case "StaticSwitch":
		param := yn.Parameter
		if param == "" {
			param = yn.Name
		}
		n = NewStaticSwitch(yn.Name, param, yn.Switch)

	case "Swizzle":
		mask, ok := emit.ParseMask(yn.Mask)
		if !ok {
			return nil, fmt.Errorf("invalid swizzle mask %q", yn.Mask)
		}
		n = &Swizzle{Base: base, Mask: mask, Input: Input{Name: "Input"}}

	case "MakeVector":
		n = NewMakeVector(yn.Name)

	case "Cast":
		t, ok := ir.ParseType(yn.Type)
		if !ok {
			return nil, fmt.Errorf("unknown type %q", yn.Type)
		}
		n = &Cast{Base: base, Type: t, Input: Input{Name: "Input"}}

	case "DDX", "DDY":
		axis := ir.AxisX
		if yn.Kind == "DDY" {
			axis = ir.AxisY
		}
		n = &Derivative{Base: base, Axis: axis, Input: Input{Name: "Input"}}

	case "Custom":
		t, ok := ir.ParseType(yn.Type)
		if !ok {
			return nil, fmt.Errorf("unknown return type %q", yn.Type)
		}
		c := &Custom{Base: base, Code: yn.Code, ReturnType: t}
		for _, name := range yn.Properties {
			gp, ok := ir.ParseGraphProperty(name)
			if !ok {
				return nil, fmt.Errorf("unknown graph property %q", name)
			}
			c.Properties |= gp
		}
		args, err := argInputs(yn.Args)
		if err != nil {
			return nil, err
		}
		c.Args = args
		return c, yn.bindInputs(c)

	case "ExternalCode":
		args, err := argInputs(yn.Args)
		if err != nil {
			return nil, err
		}
		n = &ExternalCode{Base: base, Declaration: yn.Code, Args: args}
		return n, yn.bindInputs(n)

	default:
		op, ok := ir.ParseOperator(yn.Kind)
		if !ok {
			return nil, fmt.Errorf("unknown node kind %q", yn.Kind)
		}
		n = NewOperator(yn.Name, op)
	}
	return n, yn.bindInputs(n)
}

func (yn *yamlNode) parameter(base Base) (*Parameter, error) {
	kind, _ := ir.ParseParameterKind(strings.TrimSuffix(yn.Kind, "Parameter"))
	name := yn.Parameter
	if name == "" {
		name = yn.Name
	}
	p := &Parameter{
		Base:      base,
		Parameter: name,
		Metadata: ir.ParameterMetadata{
			Kind:    kind,
			Texture: yn.Texture,
			Switch:  yn.Switch,
			Group:   yn.Group,
		},
	}
	if len(yn.Value) > 4 {
		return nil, fmt.Errorf("default value has %d components", len(yn.Value))
	}
	copy(p.Metadata.Default[:], yn.Value)
	if kind == ir.ParameterTexture {
		st, err := yn.samplerType()
		if err != nil {
			return nil, err
		}
		p.Metadata.SamplerType = st
	}
	return p, nil
}

func (yn *yamlNode) samplerType() (ir.SamplerType, error) {
	if yn.Sampler == "" {
		return ir.SamplerColor, nil
	}
	st, ok := ir.ParseSamplerType(yn.Sampler)
	if !ok {
		return 0, fmt.Errorf("unknown sampler type %q", yn.Sampler)
	}
	return st, nil
}

// argInputs returns the positional inputs of code nodes, named $0, $1, ...
func argInputs(links []string) ([]Input, error) {
	ins := make([]Input, len(links))
	for i, s := range links {
		ins[i].Name = "$" + strconv.Itoa(i)
		if s == "" {
			continue
		}
		l, err := ParseLink(s)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		ins[i].Link = l
	}
	return ins, nil
}

// bindInputs connects the named inputs of the node to their links.
func (yn *yamlNode) bindInputs(n Expression) error {
	slots := n.Inputs()
	for name, s := range yn.Inputs {
		var slot *Input
		for _, in := range slots {
			if in.Name == name {
				slot = in
				break
			}
		}
		if slot == nil {
			return fmt.Errorf("%s has no input %q", n.Kind(), name)
		}
		l, err := ParseLink(s)
		if err != nil {
			return fmt.Errorf("input %s: %w", name, err)
		}
		slot.Link = l
	}
	return nil
}
