package engine

import (
	"errors"

	"github.com/bnb-chain/evmdecompiler/core/decompiler/ast"
)

// StackLimit is the EVM operand stack bound.
const StackLimit = 1024

var (
	ErrStackUnderflow  = errors.New("stack underflow")
	ErrStackOverflow   = errors.New("stack overflow")
	ErrInvalidStackPos = errors.New("invalid stack position")
)

// IsStackError reports whether err is a stack discipline violation.
func IsStackError(err error) bool {
	return errors.Is(err, ErrStackUnderflow) || errors.Is(err, ErrStackOverflow) || errors.Is(err, ErrInvalidStackPos)
}

// Stack is the symbolic operand stack. The top is the last element.
type Stack struct {
	data []ast.Expr
}

func (s *Stack) Len() int { return len(s.data) }

func (s *Stack) Push(e ast.Expr) error {
	if len(s.data) >= StackLimit {
		return ErrStackOverflow
	}
	s.data = append(s.data, e)
	return nil
}

func (s *Stack) Pop() (ast.Expr, error) {
	if len(s.data) == 0 {
		return nil, ErrStackUnderflow
	}
	e := s.data[len(s.data)-1]
	s.data[len(s.data)-1] = nil
	s.data = s.data[:len(s.data)-1]
	return e, nil
}

// PopN pops n items, top first. Nothing is popped when fewer than n
// items are available.
func (s *Stack) PopN(n int) ([]ast.Expr, error) {
	if len(s.data) < n {
		return nil, ErrStackUnderflow
	}
	out := make([]ast.Expr, n)
	for i := 0; i < n; i++ {
		out[i] = s.data[len(s.data)-1-i]
	}
	for i := len(s.data) - n; i < len(s.data); i++ {
		s.data[i] = nil
	}
	s.data = s.data[:len(s.data)-n]
	return out, nil
}

// Peek returns the nth item from the top (0 is the top).
func (s *Stack) Peek(n int) (ast.Expr, error) {
	if n < 0 {
		return nil, ErrInvalidStackPos
	}
	if n >= len(s.data) {
		return nil, ErrStackUnderflow
	}
	return s.data[len(s.data)-1-n], nil
}

// Dup pushes a copy of the nth item (1 based, as DUPn).
func (s *Stack) Dup(n int) error {
	if n < 1 || n > 16 {
		return ErrInvalidStackPos
	}
	e, err := s.Peek(n - 1)
	if err != nil {
		return err
	}
	return s.Push(e)
}

// Swap exchanges the top with the item n below it (1 based, as SWAPn).
func (s *Stack) Swap(n int) error {
	if n < 1 || n > 16 {
		return ErrInvalidStackPos
	}
	if n >= len(s.data) {
		return ErrStackUnderflow
	}
	top := len(s.data) - 1
	s.data[top], s.data[top-n] = s.data[top-n], s.data[top]
	return nil
}

// Items returns the stack bottom first. The slice must not be modified.
func (s *Stack) Items() []ast.Expr { return s.data }

// Copy returns an independent stack sharing the immutable expressions.
func (s *Stack) Copy() *Stack {
	data := make([]ast.Expr, len(s.data), max(len(s.data), 16))
	copy(data, s.data)
	return &Stack{data: data}
}
