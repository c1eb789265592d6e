package engine

import (
	"testing"

	"github.com/bnb-chain/evmdecompiler/core/decompiler/ast"
	"github.com/stretchr/testify/require"
)

func TestStackBounds(t *testing.T) {
	s := new(Stack)
	for i := 0; i < StackLimit; i++ {
		require.NoError(t, s.Push(ast.Uint64(uint64(i))))
	}
	require.ErrorIs(t, s.Push(ast.Uint64(0)), ErrStackOverflow)
	require.Equal(t, StackLimit, s.Len())
	require.ErrorIs(t, s.Dup(1), ErrStackOverflow)

	empty := new(Stack)
	_, err := empty.Pop()
	require.ErrorIs(t, err, ErrStackUnderflow)
	_, err = empty.PopN(1)
	require.ErrorIs(t, err, ErrStackUnderflow)
	require.ErrorIs(t, empty.Dup(1), ErrStackUnderflow)
	require.ErrorIs(t, empty.Swap(1), ErrStackUnderflow)
}

func TestStackPositions(t *testing.T) {
	s := new(Stack)
	for i := 0; i < 16; i++ {
		require.NoError(t, s.Push(ast.Uint64(uint64(i))))
	}
	for _, n := range []int{0, -1, 17} {
		require.ErrorIs(t, s.Dup(n), ErrInvalidStackPos, "dup %d", n)
		require.ErrorIs(t, s.Swap(n), ErrInvalidStackPos, "swap %d", n)
	}
	// SWAP16 needs 17 items.
	require.ErrorIs(t, s.Swap(16), ErrStackUnderflow)
	require.NoError(t, s.Dup(16))
	top, err := s.Peek(0)
	require.NoError(t, err)
	require.Equal(t, ast.Uint64(0), top)

	require.NoError(t, s.Swap(16))
	top, _ = s.Peek(0)
	bottom := s.Items()[0]
	require.Equal(t, ast.Uint64(0), top)
	require.Equal(t, ast.Uint64(0), bottom)
	require.True(t, IsStackError(ErrInvalidStackPos))
}

func TestStackPopOrder(t *testing.T) {
	s := new(Stack)
	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Push(ast.Uint64(uint64(i))))
	}
	_, err := s.PopN(4)
	require.ErrorIs(t, err, ErrStackUnderflow)
	require.Equal(t, 3, s.Len())

	items, err := s.PopN(2)
	require.NoError(t, err)
	require.Equal(t, []ast.Expr{ast.Uint64(3), ast.Uint64(2)}, items)
	require.Equal(t, 1, s.Len())
}

func TestStateCloneIsIndependent(t *testing.T) {
	st := NewState()
	require.NoError(t, st.Stack.Push(ast.Uint64(1)))
	st.Memory.Store(ast.Uint64(0), ast.Uint64(7), 32)
	st.emit(&ast.Stop{})

	cpy := st.Clone()
	require.NoError(t, cpy.Stack.Push(ast.Uint64(2)))
	cpy.Memory.Store(ast.Uint64(0), ast.Uint64(8), 32)

	require.Equal(t, 1, st.Stack.Len())
	require.Equal(t, ast.Uint64(7), st.Memory.Load(ast.Uint64(0)))
	require.Equal(t, ast.Uint64(8), cpy.Memory.Load(ast.Uint64(0)))
	require.Empty(t, cpy.Stmts)
	require.False(t, cpy.Halted())
}
