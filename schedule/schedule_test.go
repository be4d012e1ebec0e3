// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package schedule

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/mir/analyze"
	"github.com/gogpu/mir/emit"
	"github.com/gogpu/mir/ir"
)

type fixture struct {
	e    *emit.Emitter
	m    *ir.Module
	p, q ir.ValueID
	cond ir.ValueID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := ir.NewModule("M_Schedule")
	e := emit.New(m, emit.Options{})
	f := &fixture{
		e: e,
		m: m,
		p: e.Parameter(ir.ParameterInfo{Name: "P"}, ir.ParameterMetadata{Kind: ir.ParameterScalar}),
		q: e.Parameter(ir.ParameterInfo{Name: "Q"}, ir.ParameterMetadata{Kind: ir.ParameterScalar}),
	}
	f.cond = e.LessThan(f.q, e.ConstantFloat(0.5))
	return f
}

func (f *fixture) schedule(t *testing.T) {
	t.Helper()
	analyze.Analyze(f.m, ir.MaterialConfig{Domain: ir.DomainSurface})
	require.Empty(t, f.m.Diagnostics)
	Schedule(f.m)
}

func (f *fixture) block(id ir.ValueID) ir.BlockID {
	return f.m.Sched[ir.StagePixel][id].Block
}

func TestBranchArms(t *testing.T) {
	f := newFixture(t)
	e := f.e
	s := e.Sin(f.p)
	c := e.Cos(e.Sin(f.q))
	br := e.Branch(f.cond, s, c)
	out := e.SetOutput(ir.PropertyRoughness, br)
	f.schedule(t)

	root := f.m.RootBlocks[ir.StagePixel]
	arms := f.m.Sched[ir.StagePixel][br].ArmBlocks

	require.Equal(t, []ir.ValueID{f.cond, br, out}, f.m.BlockInstructions(ir.StagePixel, root))
	require.Equal(t, []ir.ValueID{s}, f.m.BlockInstructions(ir.StagePixel, arms[0]))
	require.Equal(t, []ir.ValueID{e.Sin(f.q), c}, f.m.BlockInstructions(ir.StagePixel, arms[1]))

	for i, arm := range arms {
		if got := f.m.Blocks[arm].Parent; got != root {
			t.Errorf("arm %d parent = %d, want %d", i, got, root)
		}
		if got := f.m.Blocks[arm].Level; got != 1 {
			t.Errorf("arm %d level = %d, want 1", i, got)
		}
	}
}

func TestSharedInstructionInCommonAncestor(t *testing.T) {
	f := newFixture(t)
	e := f.e
	x := e.Sin(f.p)
	y := e.Add(x, f.q)
	br := e.Branch(f.cond, y, x)
	e.SetOutput(ir.PropertyRoughness, br)
	f.schedule(t)

	arms := f.m.Sched[ir.StagePixel][br].ArmBlocks
	tests := []struct {
		name string
		id   ir.ValueID
		want ir.BlockID
	}{
		{"shared", x, f.m.RootBlocks[ir.StagePixel]},
		{"true arm", y, arms[0]},
		{"branch", br, f.m.RootBlocks[ir.StagePixel]},
	}
	for _, tt := range tests {
		if got := f.block(tt.id); got != tt.want {
			t.Errorf("%s: block = %d, want %d", tt.name, got, tt.want)
		}
	}
	require.Empty(t, f.m.BlockInstructions(ir.StagePixel, arms[1]))
}

func TestNestedBranches(t *testing.T) {
	f := newFixture(t)
	e := f.e
	inner := e.Branch(e.GreaterThan(f.p, e.ConstantFloat(0)), e.Sqrt(f.p), e.ConstantFloat(0))
	outer := e.Branch(f.cond, inner, e.ConstantFloat(1))
	e.SetOutput(ir.PropertyMetallic, outer)
	f.schedule(t)

	outerArms := f.m.Sched[ir.StagePixel][outer].ArmBlocks
	innerArms := f.m.Sched[ir.StagePixel][inner].ArmBlocks

	require.Equal(t, outerArms[0], f.block(inner))
	require.Equal(t, innerArms[0], f.block(e.Sqrt(f.p)))
	require.Equal(t, 2, f.m.Blocks[innerArms[0]].Level)
	require.Equal(t, outerArms[0], f.m.CommonAncestor(innerArms[0], innerArms[1]))
}

func TestDefinitionsPrecedeUses(t *testing.T) {
	f := newFixture(t)
	e := f.e
	a := e.Sin(f.p)
	b := e.Multiply(a, e.Cos(a))
	c := e.Add(b, e.Sqrt(a))
	e.SetOutput(ir.PropertyMetallic, c)
	f.schedule(t)

	order := f.m.BlockInstructions(ir.StagePixel, f.m.RootBlocks[ir.StagePixel])
	pos := make(map[ir.ValueID]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	var operands []ir.ValueID
	for _, id := range order {
		operands = f.m.Values[id].StageOperands(operands[:0], ir.StagePixel)
		for _, op := range operands {
			if !f.m.Values[op].IsInstruction() {
				continue
			}
			if pos[op] >= pos[id] {
				t.Errorf("operand %%%d is scheduled after its user %%%d", op, id)
			}
		}
	}
}

func TestNumInstructions(t *testing.T) {
	f := newFixture(t)
	e := f.e
	br := e.Branch(f.cond, e.Sin(f.p), e.Cos(f.p))
	e.SetOutput(ir.PropertyRoughness, br)
	e.SetOutput(ir.PropertyWorldPositionOffset, e.ConstantFloat3([3]float32{0, 0, 1}))
	f.schedule(t)

	// SetOutput, Branch, LessThan, Sin and Cos.
	require.Equal(t, 5, f.m.Stats.NumInstructions[ir.StagePixel])
	require.Equal(t, 5, f.m.Stats.NumInstructions[ir.StageCompute])
	// SetOutput and the float3 composed from constant lanes.
	require.Equal(t, 2, f.m.Stats.NumInstructions[ir.StageVertex])
}

func TestRescheduleIsStable(t *testing.T) {
	f := newFixture(t)
	e := f.e
	br := e.Branch(f.cond, e.Sin(f.p), e.Cos(f.p))
	e.SetOutput(ir.PropertyRoughness, br)

	f.schedule(t)
	first := f.m.BlockInstructions(ir.StagePixel, f.m.RootBlocks[ir.StagePixel])
	f.schedule(t)
	second := f.m.BlockInstructions(ir.StagePixel, f.m.RootBlocks[ir.StagePixel])
	require.Equal(t, first, second)
}
