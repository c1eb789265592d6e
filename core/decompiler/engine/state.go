package engine

import (
	"github.com/bnb-chain/evmdecompiler/core/decompiler/ast"
)

// State is the mutable per-branch execution context. A state is owned by
// exactly one branch and must not be shared between callers.
type State struct {
	Stack  *Stack
	Memory *Memory
	Stmts  []ast.Stmt

	halted bool
	last   ast.Inst
}

func NewState() *State {
	return &State{Stack: new(Stack), Memory: NewMemory()}
}

// Clone returns the starting state of a successor block: stack and
// memory are deep copied, statements start empty and the clone is running.
func (s *State) Clone() *State {
	return &State{Stack: s.Stack.Copy(), Memory: s.Memory.Copy()}
}

func (s *State) Halted() bool { return s.halted }

// Last is the terminal instruction of a halted state.
func (s *State) Last() ast.Inst { return s.last }

func (s *State) emit(stmt ast.Stmt) {
	s.Stmts = append(s.Stmts, stmt)
}

// Halt records inst as the terminal instruction and appends it to the
// statement list. A state halts exactly once.
func (s *State) Halt(inst ast.Inst) {
	if s.halted {
		panic("engine invariant: halting an already halted state")
	}
	s.Stmts = append(s.Stmts, inst)
	s.last = inst
	s.halted = true
}

// Arena owns every state created by one run. Handles are dense and
// stable for the lifetime of the arena.
type Arena struct {
	states []*State
}

func (a *Arena) Add(s *State) ast.StateID {
	a.states = append(a.states, s)
	return ast.StateID(len(a.states) - 1)
}

// Get returns the state behind id, or nil for an unknown handle.
func (a *Arena) Get(id ast.StateID) *State {
	if id < 0 || int(id) >= len(a.states) {
		return nil
	}
	return a.states[id]
}

func (a *Arena) Len() int { return len(a.states) }
