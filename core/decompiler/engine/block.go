package engine

import (
	"sort"

	"github.com/bnb-chain/evmdecompiler/core/decompiler/asm"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/ast"
	"golang.org/x/exp/maps"
)

// Block is a basic block keyed by its entry pc. Every state that
// finished executing the block is recorded, which makes blocks the merge
// points of the graph.
type Block struct {
	PC      int
	PCEnd   int
	Opcodes []asm.Opcode
	States  []ast.StateID
}

// Blocks is the block map of a run.
type Blocks map[int]*Block

// PCs returns the entry pcs in ascending order.
func (b Blocks) PCs() []int {
	pcs := maps.Keys(b)
	sort.Ints(pcs)
	return pcs
}

// Successors returns the distinct entry pcs the block branched to over
// all of its states.
func (blk *Block) Successors(arena *Arena) []int {
	seen := make(map[int]bool)
	var out []int
	add := func(br *ast.Branch) {
		if br != nil && !seen[br.PC] {
			seen[br.PC] = true
			out = append(out, br.PC)
		}
	}
	for _, id := range blk.States {
		switch last := arena.Get(id).Last().(type) {
		case *ast.Jump:
			add(&last.Dest)
		case *ast.Jumpi:
			add(last.Dest)
			add(last.Fall)
		case *ast.JumpDest:
			add(&last.Fall)
		case *ast.SigCase:
			add(&last.Entry)
			add(&last.Fall)
		}
	}
	sort.Ints(out)
	return out
}

// Terminals returns the kind of each recorded state's last instruction.
func (blk *Block) Terminals(arena *Arena) []string {
	out := make([]string, len(blk.States))
	for i, id := range blk.States {
		out[i] = ast.Kind(arena.Get(id).Last())
	}
	return out
}
