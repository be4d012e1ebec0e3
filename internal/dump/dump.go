// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package dump renders modules as text for debugging.
//
// Instructions lists the scheduled code of every stage, one value per
// line in the "%id = type op operands" form of assembly listings. UseGraph
// renders the operand graph in Graphviz DOT format.
package dump

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/mir/ir"
)

// Instructions returns the leaves of m followed by the instructions of each
// scheduled stage, nested by block.
func Instructions(m *ir.Module) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; module %s\n", m.Name)

	sb.WriteString("; leaves\n")
	for id := ir.PoisonValue + 1; int(id) < len(m.Values); id++ {
		if !m.Values[id].IsInstruction() {
			fmt.Fprintf(&sb, "%s\n", Value(m, id))
		}
	}

	for _, s := range ir.Stages {
		if m.Sched[s] == nil {
			continue
		}
		fmt.Fprintf(&sb, "; stage %s\n", s)
		writeBlock(&sb, m, s, m.RootBlocks[s], 0)
	}
	return sb.String()
}

func writeBlock(sb *strings.Builder, m *ir.Module, s ir.Stage, b ir.BlockID, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, id := range m.BlockInstructions(s, b) {
		fmt.Fprintf(sb, "%s%s\n", indent, Value(m, id))
		if _, ok := m.Values[id].Kind.(ir.Branch); !ok {
			continue
		}
		for i, arm := range m.Sched[s][id].ArmBlocks {
			if arm == ir.NoBlock || m.Blocks[arm].First == ir.NoValue {
				continue
			}
			label := "true"
			if i == 1 {
				label = "false"
			}
			fmt.Fprintf(sb, "%s  %s:\n", indent, label)
			writeBlock(sb, m, s, arm, depth+2)
		}
	}
}

func ref(id ir.ValueID) string { return "%" + strconv.Itoa(int(id)) }

func refs(ids []ir.ValueID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = ref(id)
	}
	return strings.Join(parts, ", ")
}

// Value returns the one-line form of a value.
func Value(m *ir.Module, id ir.ValueID) string {
	v := m.Values[id]
	typ := "?"
	if v.Type != nil {
		typ = v.Type.String()
	}
	return fmt.Sprintf("%s = %s %s", ref(id), typ, describe(m, v))
}

func describe(m *ir.Module, v ir.Value) string {
	switch k := v.Kind.(type) {
	case ir.Poison:
		return "poison"
	case ir.Constant:
		switch {
		case v.Type.IsBoolean():
			return "const " + strconv.FormatBool(k.Bool())
		case v.Type.IsInteger():
			return "const " + strconv.FormatInt(k.Int(), 10)
		default:
			return "const " + strconv.FormatFloat(float64(k.Float()), 'g', -1, 32)
		}
	case ir.ExternalInput:
		return "input " + k.ID.String()
	case ir.TextureObject:
		return fmt.Sprintf("texture %q %s", k.Texture, k.SamplerType)
	case ir.UniformParameter:
		return fmt.Sprintf("parameter %q", m.Parameters[k.Parameter].Info.Name)
	case ir.SetOutput:
		return fmt.Sprintf("output %s %s", k.Property, ref(k.Arg))
	case ir.Dimensional:
		return "compose " + refs(k.Components[:v.Type.Lanes()])
	case ir.Operator:
		return fmt.Sprintf("%s %s", k.Op, refs(v.Operands(nil)))
	case ir.Branch:
		return fmt.Sprintf("branch %s ? %s : %s", ref(k.Condition), ref(k.True), ref(k.False))
	case ir.Subscript:
		return fmt.Sprintf("subscript %s[%d]", ref(k.Arg), k.Index)
	case ir.Cast:
		return "cast " + ref(k.Arg)
	case ir.TextureRead:
		return fmt.Sprintf("sample.%s %s %s", k.Mode, k.SamplerType, refs(v.Operands(nil)))
	case ir.InlineCode:
		name := strconv.Quote(k.Code)
		if k.Declaration != nil {
			name = k.Declaration.Name
		}
		return fmt.Sprintf("inline %s(%s)", name, refs(k.Args[:k.NumArgs]))
	case ir.StageSwitch:
		parts := make([]string, 0, ir.NumStages)
		for _, s := range ir.Stages {
			parts = append(parts, s.String()+": "+ref(k.Args[s]))
		}
		return "stageswitch " + strings.Join(parts, ", ")
	case ir.HardwarePartialDerivative:
		return fmt.Sprintf("derivative.%s %s", k.Axis, ref(k.Arg))
	default:
		panic(ir.Unreachable(v.Kind))
	}
}

// UseGraph returns the operand graph of m in DOT format. Edges point from
// a value to its operands; outputs are drawn as ellipses.
func UseGraph(m *ir.Module) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "digraph %q {\n", m.Name)
	sb.WriteString("  node [shape=box, fontname=monospace];\n")

	var ops []ir.ValueID
	for id := ir.PoisonValue + 1; int(id) < len(m.Values); id++ {
		v := m.Values[id]
		shape := ""
		if _, ok := v.Kind.(ir.SetOutput); ok {
			shape = ", shape=ellipse"
		}
		fmt.Fprintf(&sb, "  v%d [label=%q%s];\n", id, strings.TrimPrefix(Value(m, id), ref(id)+" = "), shape)

		ops = v.Operands(ops[:0])
		for i, op := range ops {
			fmt.Fprintf(&sb, "  v%d -> v%d [label=\"%d\"];\n", id, op, i)
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}
