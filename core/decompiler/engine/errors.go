package engine

import (
	"errors"
	"fmt"

	"github.com/bnb-chain/evmdecompiler/core/decompiler/asm"
)

var (
	// ErrJumpNotConst is raised for a JUMP or JUMPI whose target does not
	// reduce to a constant.
	ErrJumpNotConst = errors.New("jump target not constant")

	// ErrInvalidJumpDest is raised for a constant target that is not a
	// JUMPDEST.
	ErrInvalidJumpDest = errors.New("invalid jump destination")
)

// ExecError is a failure applying one instruction on one branch.
type ExecError struct {
	Op     asm.OpCode
	PC     int
	Offset uint32
	Err    error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%v at pc %d (offset 0x%x, %s)", e.Err, e.PC, e.Offset, e.Op)
}

func (e *ExecError) Unwrap() error { return e.Err }

// IsControlFlowError reports whether err is a jump resolution failure.
func IsControlFlowError(err error) bool {
	return errors.Is(err, ErrJumpNotConst) || errors.Is(err, ErrInvalidJumpDest)
}

// reason is the short text stored in a Throw.
func reason(err error) string {
	for _, sentinel := range []error{ErrStackUnderflow, ErrStackOverflow, ErrInvalidStackPos, ErrJumpNotConst, ErrInvalidJumpDest} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// ErrorRecord is an entry of the run-wide error log.
type ErrorRecord struct {
	Root string // "main" or the selector whose exploration failed
	PC   int
	Err  *ExecError
}
