// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

// BlockID references a block in a Module's block arena.
type BlockID uint32

// NoBlock marks an instruction that has not been placed yet.
const NoBlock BlockID = 0

// Block is a lexical scope of instructions. Blocks form one tree per stage;
// nested blocks hold the instructions only needed by one arm of a branch.
type Block struct {
	// Parent is the enclosing block, NoBlock for a stage root.
	Parent BlockID

	// Level is the depth of the block in its tree. Roots are at level 0.
	Level int

	// First is the head of the block's instruction list, linked through
	// Instruction.Next. NoValue if the block is empty.
	First ValueID
}

// NewBlock appends a block nested in parent and returns its ID.
func (m *Module) NewBlock(parent BlockID) BlockID {
	level := 0
	if parent != NoBlock {
		level = m.Blocks[parent].Level + 1
	}
	m.Blocks = append(m.Blocks, Block{Parent: parent, Level: level})
	return BlockID(len(m.Blocks) - 1)
}

// CommonAncestor returns the innermost block enclosing both a and b.
// NoBlock acts as the identity: CommonAncestor(NoBlock, b) == b.
func (m *Module) CommonAncestor(a, b BlockID) BlockID {
	if a == NoBlock {
		return b
	}
	if b == NoBlock {
		return a
	}
	for m.Blocks[a].Level > m.Blocks[b].Level {
		a = m.Blocks[a].Parent
	}
	for m.Blocks[b].Level > m.Blocks[a].Level {
		b = m.Blocks[b].Parent
	}
	for a != b {
		a = m.Blocks[a].Parent
		b = m.Blocks[b].Parent
	}
	return a
}

// BlockInstructions returns the instructions of block b in evaluation order.
func (m *Module) BlockInstructions(stage Stage, b BlockID) []ValueID {
	var ids []ValueID
	for id := m.Blocks[b].First; id != NoValue; id = m.Sched[stage][id].Next {
		ids = append(ids, id)
	}
	return ids
}
