// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package schedule places the instructions of an analyzed module into
// blocks.
//
// Each instruction ends up in the innermost block enclosing every block it
// is needed in. Instructions only needed by one arm of a branch are placed
// in that arm, so they are not evaluated when the arm is not taken.
package schedule

import (
	"github.com/gogpu/mir/ir"
)

// Schedule builds the block instruction lists of every stage of m. The user
// counts computed by analyze.Analyze must be in place.
func Schedule(m *ir.Module) {
	for _, s := range ir.Stages {
		m.Stats.NumInstructions[s] = scheduleStage(m, s)
	}
}

func scheduleStage(m *ir.Module, s ir.Stage) int {
	sched := m.Sched[s]
	root := m.RootBlocks[s]

	var worklist []ir.ValueID
	for _, out := range m.Outputs[s] {
		sched[out].Block = root
		worklist = append(worklist, out)
	}

	n := 0
	var operands []ir.ValueID
	for len(worklist) > 0 {
		id := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		n++

		// Every user is placed already, so prepending keeps definitions
		// ahead of their uses.
		inst := &sched[id]
		block := &m.Blocks[inst.Block]
		inst.Next = block.First
		block.First = id

		val := m.Values[id]
		br, isBranch := val.Kind.(ir.Branch)
		if isBranch {
			inst.ArmBlocks[0] = m.NewBlock(inst.Block)
			inst.ArmBlocks[1] = m.NewBlock(inst.Block)
		}

		operands = val.StageOperands(operands[:0], s)
		for i, op := range operands {
			if !m.Values[op].IsInstruction() {
				continue
			}

			desired := inst.Block
			if isBranch {
				switch {
				case i == 1 && op == br.True:
					desired = inst.ArmBlocks[0]
				case i == 2 && op == br.False:
					desired = inst.ArmBlocks[1]
				}
			}

			used := &sched[op]
			used.Block = m.CommonAncestor(used.Block, desired)
			used.NumProcessedUsers++
			if used.NumProcessedUsers == used.NumUsers {
				worklist = append(worklist, op)
			}
		}
	}
	return n
}
