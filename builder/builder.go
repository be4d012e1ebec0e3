// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package builder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gogpu/mir/analyze"
	"github.com/gogpu/mir/emit"
	"github.com/gogpu/mir/graph"
	"github.com/gogpu/mir/hlsl"
	"github.com/gogpu/mir/ir"
	"github.com/gogpu/mir/schedule"
)

// Options configures a build.
type Options struct {
	// HLSL configures code generation.
	HLSL hlsl.Options

	// ExternalCode resolves external code nodes.
	// Defaults to ir.BuiltinExternalCode().
	ExternalCode *ir.ExternalCodeRegistry

	// StaticSwitches overrides static switch parameters, on top of the
	// overrides stored in the material.
	StaticSwitches map[string]bool

	// Logger receives debug traces of the pipeline steps.
	// Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultOptions returns the options used by Build when none are given.
func DefaultOptions() Options {
	return Options{
		HLSL:   *hlsl.DefaultOptions(),
		Logger: zap.NewNop(),
	}
}

// Result is the output of a successful build.
type Result struct {
	Module *ir.Module
	Code   map[ir.Stage]hlsl.StageCode
	Info   hlsl.TranslationInfo
}

// Backend consumes build results, typically by compiling the generated
// code into a shader pipeline.
type Backend interface {
	Submit(ctx context.Context, r *Result) error
}

// Builder lowers one material graph into a module.
type Builder struct {
	material *graph.Material
	module   *ir.Module
	emitter  *emit.Emitter
	log      *zap.Logger

	// values holds the bound outputs of the built nodes.
	values map[graph.Link]ir.ValueID
	state  map[string]nodeState

	// poisoned holds the nodes cut from a cycle. Every output of such a
	// node reads as poison.
	poisoned map[string]bool

	// node is the node being built, the target of Bind.
	node string
}

type nodeState uint8

const (
	unvisited nodeState = iota
	pending
	built
)

// Build lowers m and generates its code. A material with diagnostics
// returns a *DiagnosticsError and no result.
func Build(ctx context.Context, m *graph.Material, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("material", m.Name))

	module, err := BuildModule(ctx, m, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tr, err := hlsl.Translate(module, &opts.HLSL)
	if err != nil {
		return nil, fmt.Errorf("material %s: %w", m.Name, err)
	}
	log.Debug("translated",
		zap.Stringer("features", tr.Info.UsedFeatures),
		zap.Int("slots", tr.Info.NumUniformSlots),
		zap.Duration("took", time.Since(start)))

	return &Result{Module: module, Code: tr.Code, Info: tr.Info}, nil
}

// BuildModule lowers m into an analyzed and scheduled module, ready for
// translation.
func BuildModule(ctx context.Context, m *graph.Material, opts Options) (*ir.Module, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("material", m.Name))

	if err := m.Validate(); err != nil {
		return nil, err
	}

	overrides := make(map[string]bool, len(m.StaticSwitches)+len(opts.StaticSwitches))
	for k, v := range m.StaticSwitches {
		overrides[k] = v
	}
	for k, v := range opts.StaticSwitches {
		overrides[k] = v
	}

	module := ir.NewModule(m.Name)
	b := &Builder{
		material: m,
		module:   module,
		emitter: emit.New(module, emit.Options{
			StaticSwitchOverrides: overrides,
			ExternalCode:          opts.ExternalCode,
		}),
		log:    log,
		values:   make(map[graph.Link]ir.ValueID),
		state:    make(map[string]nodeState, len(m.Nodes)),
		poisoned: make(map[string]bool),
	}

	start := time.Now()
	if err := b.build(ctx); err != nil {
		return nil, err
	}
	log.Debug("built",
		zap.Int("values", len(module.Values)),
		zap.Int("parameters", len(module.Parameters)),
		zap.Duration("took", time.Since(start)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start = time.Now()
	analyze.Analyze(module, m.Config)
	log.Debug("analyzed",
		zap.Int("textures", len(module.Textures)),
		zap.Strings("defines", module.DefineNames()),
		zap.Duration("took", time.Since(start)))

	if !module.IsValid() {
		log.Debug("invalid material", zap.Int("diagnostics", len(module.Diagnostics)))
		return nil, &DiagnosticsError{Material: m.Name, Diagnostics: module.Diagnostics}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	schedule.Schedule(module)
	log.Debug("scheduled",
		zap.Int("pixel", module.Stats.NumInstructions[ir.StagePixel]),
		zap.Int("vertex", module.Stats.NumInstructions[ir.StageVertex]),
		zap.Int("compute", module.Stats.NumInstructions[ir.StageCompute]))
	return module, nil
}

// Compile builds m and submits the result to backend.
func Compile(ctx context.Context, m *graph.Material, opts Options, backend Backend) (*Result, error) {
	r, err := Build(ctx, m, opts)
	if err != nil {
		return nil, err
	}
	if err := backend.Submit(ctx, r); err != nil {
		return nil, fmt.Errorf("material %s: submit: %w", m.Name, err)
	}
	return r, nil
}

// build builds every node reachable from the material outputs, then sets
// the outputs.
func (b *Builder) build(ctx context.Context) error {
	m := b.material
	props := m.Properties()

	// The worklist holds nodes whose inputs may not be built yet. A node
	// is pushed back under its missing inputs and built once they are.
	var worklist []string
	for i := len(props) - 1; i >= 0; i-- {
		if l := m.Outputs[props[i]]; l.IsConnected() {
			worklist = append(worklist, l.Node)
		}
	}

	for len(worklist) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if b.state[name] == built {
			continue
		}
		n, _ := m.Node(name)

		// Every node pending below the top of the worklist depends on the
		// current one, so an input to a pending node closes a cycle.
		var missing []string
		cycle := ""
		inputs := n.Inputs()
		for i := len(inputs) - 1; i >= 0; i-- {
			l := inputs[i].Link
			if !l.IsConnected() {
				continue
			}
			switch b.state[l.Node] {
			case unvisited:
				missing = append(missing, l.Node)
			case pending:
				cycle = l.Node
			}
		}
		if cycle != "" {
			b.module.AddError(name, ir.ErrUnsupportedConstruct,
				"Node '%s' depends on itself through '%s'.", name, cycle)
			b.poisoned[name] = true
			b.state[name] = built
			continue
		}

		if len(missing) > 0 {
			b.state[name] = pending
			worklist = append(worklist, name)
			worklist = append(worklist, missing...)
			continue
		}
		b.buildNode(n)
	}

	for _, p := range props {
		l := m.Outputs[p]
		if !l.IsConnected() {
			continue
		}
		b.emitter.BeginNode(p.String(), "", nil)
		v, ok := b.value(l)
		if !ok {
			b.emitter.ErrorKindf(ir.ErrMissingValue, "Node '%s' has no output %d.", l.Node, l.Output)
		} else {
			b.emitter.SetOutput(p, v)
		}
		b.emitter.EndNode()
	}
	return nil
}

func (b *Builder) buildNode(n graph.Expression) {
	b.node = n.Name()
	b.emitter.BeginNode(n.Name(), n.Kind(), b)
	n.Build(b.emitter)
	if b.emitter.EndNode() {
		b.log.Debug("node failed", zap.String("node", n.Name()), zap.String("kind", n.Kind()))
	}
	b.state[n.Name()] = built
	b.node = ""
}

// Fetch returns the value bound to the link of in.
func (b *Builder) Fetch(in emit.Input) ir.ValueID {
	gin, ok := in.(*graph.Input)
	if !ok || !gin.Link.IsConnected() {
		return ir.NoValue
	}
	v, ok := b.value(gin.Link)
	if !ok {
		return ir.NoValue
	}
	return v
}

func (b *Builder) value(l graph.Link) (ir.ValueID, bool) {
	if b.poisoned[l.Node] {
		return ir.PoisonValue, true
	}
	v, ok := b.values[l]
	return v, ok
}

// Bind records an output of the node being built.
func (b *Builder) Bind(output int, v ir.ValueID) {
	b.values[graph.Link{Node: b.node, Output: output}] = v
}
