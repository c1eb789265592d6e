// Package engine symbolically executes EVM bytecode. It explores every
// reachable basic block from pc 0 and from each dispatched function entry,
// recording per-block terminal states, the selector table, the storage
// tables and a log of per-branch failures.
package engine

import (
	"fmt"

	"github.com/bnb-chain/evmdecompiler/core/decompiler/asm"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/ast"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/storage"
	"github.com/ethereum/go-ethereum/log"
)

// MainRoot names the exploration started at pc 0.
const MainRoot = "main"

// Function is a dispatched external function found through a SigCase.
type Function struct {
	Selector string
	PC       int
	Offset   uint32
	State    ast.StateID // entry state, a clone of the dispatcher state
}

type job struct {
	branch ast.Branch
	root   string
}

// Engine holds one run over one program. It is not safe for concurrent
// use; run separate engines for separate programs.
type Engine struct {
	Program   *asm.Program
	Arena     *Arena
	Blocks    Blocks
	Functions map[string]*Function
	Selectors []string // selectors in discovery order
	Tables    *storage.Tables
	Errors    []*ErrorRecord

	// Main is the state the exploration from pc 0 started with.
	Main ast.StateID
	// Dropped counts arrivals discarded by the per-block state bound.
	Dropped int

	cfg    Config
	queue  []job
	locals int
	ran    bool
}

func New(prog *asm.Program, cfg Config) *Engine {
	return &Engine{
		Program:   prog,
		Arena:     new(Arena),
		Blocks:    make(Blocks),
		Functions: make(map[string]*Function),
		Tables:    storage.NewTables(),
		Main:      ast.NoState,
		cfg:       cfg.sanitize(),
	}
}

// Run explores the program to completion. Per-branch failures are
// recorded in Errors; engine invariant violations panic.
func (e *Engine) Run() {
	if e.ran {
		panic("engine invariant: Run called twice")
	}
	e.ran = true

	e.Main = e.Arena.Add(NewState())
	e.queue = append(e.queue, job{branch: ast.Branch{PC: 0, State: e.Main}, root: MainRoot})
	e.drain()

	// Function bodies are explored after the dispatcher, one root at a
	// time. Roots discovered while exploring a function are appended.
	for i := 0; i < len(e.Selectors); i++ {
		fn := e.Functions[e.Selectors[i]]
		e.queue = append(e.queue, job{branch: ast.Branch{PC: fn.PC, State: fn.State}, root: fn.Selector})
		e.drain()
	}
	log.Debug("Symbolic execution finished", "blocks", len(e.Blocks), "states", e.Arena.Len(),
		"functions", len(e.Selectors), "errors", len(e.Errors), "dropped", e.Dropped)
}

func (e *Engine) drain() {
	for len(e.queue) > 0 {
		j := e.queue[0]
		e.queue = e.queue[1:]
		e.step(j)
	}
}

func (e *Engine) step(j job) {
	st := e.Arena.Get(j.branch.State)
	if st == nil {
		panic(fmt.Sprintf("engine invariant: unknown state %d", j.branch.State))
	}
	pc := j.branch.PC
	blk, ok := e.Blocks[pc]
	if !ok {
		blk = &Block{PC: pc, PCEnd: pc}
		e.Blocks[pc] = blk
		blockCounter.Inc(1)
	}
	if len(blk.States) > e.cfg.MaxBlockStates {
		e.Dropped++
		droppedCounter.Inc(1)
		debugInfo("Dropping arrival at saturated block", "pc", pc, "root", j.root, "states", len(blk.States))
		return
	}
	e.execBlock(blk, j, st)
	blk.States = append(blk.States, j.branch.State)
	stateCounter.Inc(1)
}

func (e *Engine) execBlock(blk *Block, j job, st *State) {
	ops := e.Program.Opcodes
	end := blk.PC
	for pc := blk.PC; !st.halted; pc++ {
		if pc >= len(ops) {
			st.Halt(&ast.Stop{})
			break
		}
		op := &ops[pc]
		if pc != blk.PC && op.Op == asm.JUMPDEST {
			st.Halt(&ast.JumpDest{Fall: e.fork(st, pc, j.root)})
			break
		}
		end = pc
		if err := e.exec(st, op, pc, j); err != nil {
			e.throw(st, op, pc, j, err)
			break
		}
		if op.Op.IsTerminator() && !st.halted {
			panic(fmt.Sprintf("engine invariant: %s at pc %d did not halt", op.Op, pc))
		}
	}
	if end > blk.PCEnd {
		blk.PCEnd = end
	}
	if blk.PC < len(ops) {
		blk.Opcodes = ops[blk.PC:min(blk.PCEnd+1, len(ops))]
	}
}

// fork clones st for the successor at pc and queues it.
func (e *Engine) fork(st *State, pc int, root string) ast.Branch {
	br := ast.Branch{PC: pc, State: e.Arena.Add(st.Clone())}
	e.queue = append(e.queue, job{branch: br, root: root})
	return br
}

// discover records a dispatched function; the first entry found for a
// selector wins.
func (e *Engine) discover(st *State, selector string, pc int) ast.Branch {
	if fn, ok := e.Functions[selector]; ok {
		return ast.Branch{PC: fn.PC, State: fn.State}
	}
	fn := &Function{
		Selector: selector,
		PC:       pc,
		State:    e.Arena.Add(st.Clone()),
	}
	if pc < len(e.Program.Opcodes) {
		fn.Offset = e.Program.Opcodes[pc].Offset
	}
	e.Functions[selector] = fn
	e.Selectors = append(e.Selectors, selector)
	selectorCounter.Inc(1)
	log.Debug("Discovered function", "selector", "0x"+selector, "pc", pc)
	return ast.Branch{PC: fn.PC, State: fn.State}
}

// throw is the single place where an instruction failure is contained.
func (e *Engine) throw(st *State, op *asm.Opcode, pc int, j job, err error) {
	xe := &ExecError{Op: op.Op, PC: pc, Offset: op.Offset, Err: err}
	st.Halt(&ast.Throw{
		Reason: reason(err),
		Err:    xe,
		Op:     op.Op.String(),
		Offset: op.Offset,
		State:  j.branch.State,
	})
	e.Errors = append(e.Errors, &ErrorRecord{Root: j.root, PC: pc, Err: xe})
	throwCounter.Inc(1)
	log.Debug("Branch failed", "root", j.root, "pc", pc, "op", op.Op, "err", err)
}

// ErrorsFor returns the recorded failures of one root.
func (e *Engine) ErrorsFor(root string) []*ErrorRecord {
	var out []*ErrorRecord
	for _, rec := range e.Errors {
		if rec.Root == root {
			out = append(out, rec)
		}
	}
	return out
}
