// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"github.com/gogpu/mir/ir"
)

// =============================================================================
// Block Writing
// =============================================================================

// writeBlock writes the locals of the instructions scheduled in block b.
// Single-use instructions produce no code here; they are inlined into
// their user.
func (w *Writer) writeBlock(b ir.BlockID) error {
	for _, id := range w.module.BlockInstructions(w.stage, b) {
		if err := w.writeInstruction(id); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeInstruction(id ir.ValueID) error {
	switch k := w.module.Values[id].Kind.(type) {
	case ir.SetOutput:
		return nil
	case ir.Branch:
		return w.writeBranch(id, k)
	}

	if !w.needsLocal(id) {
		return nil
	}
	expr, err := w.expression(id)
	if err != nil {
		return err
	}
	w.declareLocal(id, expr)
	return nil
}

func (w *Writer) isEmptyBlock(b ir.BlockID) bool {
	return w.module.Blocks[b].First == ir.NoValue
}

// writeBranch writes a branch whose arms hold instructions as an if/else
// statement assigning a local. Other branches are left to the conditional
// operator.
func (w *Writer) writeBranch(id ir.ValueID, br ir.Branch) error {
	arms := w.sched[id].ArmBlocks
	if w.options.TernaryBranches || (w.isEmptyBlock(arms[0]) && w.isEmptyBlock(arms[1])) {
		for _, arm := range arms {
			if err := w.writeBlock(arm); err != nil {
				return err
			}
		}
		if !w.needsLocal(id) {
			return nil
		}
		expr, err := w.expression(id)
		if err != nil {
			return err
		}
		w.declareLocal(id, expr)
		return nil
	}

	cond, err := w.expression(br.Condition)
	if err != nil {
		return err
	}

	t := w.module.Values[id].Type
	name := w.names.call(w.localBase(id))
	w.writeLine("%s %s;", typeName(t), name)
	w.usedFeatures |= FeatureDynamicBranching

	w.writeLine("if (%s) {", stripParens(cond))
	if err := w.writeArm(name, arms[0], br.True); err != nil {
		return err
	}
	w.writeLine("} else {")
	if err := w.writeArm(name, arms[1], br.False); err != nil {
		return err
	}
	w.writeLine("}")

	w.locals[id] = name
	return nil
}

func (w *Writer) writeArm(name string, block ir.BlockID, value ir.ValueID) error {
	w.pushIndent()
	defer w.popIndent()

	if err := w.writeBlock(block); err != nil {
		return err
	}
	expr, err := w.expression(value)
	if err != nil {
		return err
	}
	w.writeLine("%s = %s;", name, stripParens(expr))
	return nil
}
