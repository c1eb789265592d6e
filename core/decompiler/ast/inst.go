package ast

import (
	"fmt"

	"github.com/holiman/uint256"
)

// StateID is a stable handle into the engine's state arena.
type StateID int

// NoState marks a branch that has no state attached.
const NoState StateID = -1

// Branch is an edge to the block entered at PC, executed on State. The
// state behind the handle is a private clone owned by this edge.
type Branch struct {
	PC    int
	State StateID
}

// Stmt is either a low level instruction or a reconstructed statement.
type Stmt interface {
	stmt()
}

// Inst is an effectful instruction recorded while executing a block.
type Inst interface {
	Stmt
	inst()
}

func (*MStore) stmt()       {}
func (*Log) stmt()          {}
func (*SStore) stmt()       {}
func (*MappingStore) stmt() {}
func (*Return) stmt()       {}
func (*Revert) stmt()       {}
func (*Stop) stmt()         {}
func (*Invalid) stmt()      {}
func (*SelfDestruct) stmt() {}
func (*Jump) stmt()         {}
func (*Jumpi) stmt()        {}
func (*JumpDest) stmt()     {}
func (*SigCase) stmt()      {}
func (*Throw) stmt()        {}
func (*Locali) stmt()       {}

func (*MStore) inst()       {}
func (*Log) inst()          {}
func (*SStore) inst()       {}
func (*MappingStore) inst() {}
func (*Return) inst()       {}
func (*Revert) inst()       {}
func (*Stop) inst()         {}
func (*Invalid) inst()      {}
func (*SelfDestruct) inst() {}
func (*Jump) inst()         {}
func (*Jumpi) inst()        {}
func (*JumpDest) inst()     {}
func (*SigCase) inst()      {}
func (*Throw) inst()        {}
func (*Locali) inst()       {}

// MStore writes Size bytes (32 or 1) to memory.
type MStore struct {
	Offset, Value Expr
	Size          int
}

type Log struct {
	Offset, Size Expr
	Topics       []Expr
	Args         []Expr // memory words when offset and size are constant
	Event        string // resolved signature of topics[0], if any
}

// SStore writes storage. Var is the variable index, -1 for opaque slots.
type SStore struct {
	Slot, Value Expr
	Var         int
	Transient   bool
}

type MappingStore struct {
	Slot    Expr
	Mapping int
	Keys    []Expr
	Offset  uint256.Int
	Fields  []uint256.Int
	Value   Expr
}

type Return struct {
	Offset, Size Expr
	Args         []Expr
}

// Revert aborts the call. Selector holds the first four bytes of the
// payload when they are constant; Reason is set for Error(string).
type Revert struct {
	Offset, Size Expr
	Args         []Expr
	Selector     string
	Reason       string
}

type Stop struct{}

// Invalid is the designated INVALID opcode or any undefined byte.
type Invalid struct {
	Op byte
}

type SelfDestruct struct {
	Beneficiary Expr
}

type Jump struct {
	Target Expr
	Dest   Branch
}

// Jumpi is a conditional jump. With a constant condition only the taken
// edge exists and the other one is nil.
type Jumpi struct {
	Cond   Expr
	Target Expr
	Dest   *Branch
	Fall   *Branch
}

// JumpDest is synthesized when a block runs into a JUMPDEST.
type JumpDest struct {
	Fall Branch
}

// SigCase is a dispatcher comparison. Entry is where the function body
// starts; Fall is where the dispatcher keeps testing selectors.
type SigCase struct {
	Sig   *Sig
	Entry Branch
	Fall  Branch
}

// Throw halts a branch whose execution failed.
type Throw struct {
	Reason string
	Err    error
	Op     string
	Offset uint32
	State  StateID
}

// Locali introduces a Local at its point of evaluation.
type Locali struct {
	Local *Local
}

// IsHalt reports whether inst ends execution of the whole call.
func IsHalt(inst Inst) bool {
	switch inst.(type) {
	case *Stop, *Return, *Revert, *Invalid, *SelfDestruct, *Throw:
		return true
	}
	return false
}

// Kind is the short instruction name used by listings and tests.
func Kind(s Stmt) string {
	switch s.(type) {
	case *MStore:
		return "MStore"
	case *Log:
		return "Log"
	case *SStore:
		return "SStore"
	case *MappingStore:
		return "MappingStore"
	case *Return:
		return "Return"
	case *Revert:
		return "Revert"
	case *Stop:
		return "Stop"
	case *Invalid:
		return "Invalid"
	case *SelfDestruct:
		return "SelfDestruct"
	case *Jump:
		return "Jump"
	case *Jumpi:
		return "Jumpi"
	case *JumpDest:
		return "JumpDest"
	case *SigCase:
		return "SigCase"
	case *Throw:
		return "Throw"
	case *Locali:
		return "Locali"
	case *If:
		return "If"
	case *Require:
		return "Require"
	case *CallSite:
		return "CallSite"
	}
	panic(fmt.Sprintf("ast: unknown statement %T", s))
}
