package engine

import (
	"testing"

	"github.com/bnb-chain/evmdecompiler/core/decompiler/ast"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestMemoryExactAndSymbolic(t *testing.T) {
	m := NewMemory()
	sender := &ast.Prop{Name: "msg.sender"}
	m.Store(ast.Uint64(0x40), sender, 32)
	require.Same(t, sender, m.Load(ast.Uint64(0x40)))

	// Unknown words are symbolic loads.
	require.Equal(t, &ast.MLoad{Offset: ast.Uint64(0x60)}, m.Load(ast.Uint64(0x60)))

	// A partial overlap with a symbolic word cannot be assembled.
	require.IsType(t, &ast.MLoad{}, m.Load(ast.Uint64(0x50)))

	ptr := &ast.CallDataLoad{Offset: ast.Uint64(4)}
	m.Store(ptr, ast.Uint64(5), 32)
	require.Equal(t, ast.Uint64(5), m.Load(&ast.CallDataLoad{Offset: ast.Uint64(4)}))
}

func TestMemoryAssemblesConstantBytes(t *testing.T) {
	m := NewMemory()
	m.Store(ast.Uint64(0), ast.NewVal(uint256.MustFromHex("0x08c379a000000000000000000000000000000000000000000000000000000000")), 32)
	m.Store(ast.Uint64(4), ast.Uint64(0x20), 32)

	word := m.Load(ast.Uint64(0))
	want := uint256.MustFromHex("0x08c379a000000000000000000000000000000000000000000000000000000000")
	require.Equal(t, ast.NewVal(want), word)

	m.Store(ast.Uint64(31), ast.Uint64(0xab), 1)
	b, ok := m.Bytes(28, 4)
	require.True(t, ok)
	require.Equal(t, []byte{0, 0, 0, 0xab}, b)

	_, ok = m.Bytes(60, 8)
	require.False(t, ok)
}

func TestMemoryOverwrite(t *testing.T) {
	m := NewMemory()
	m.Store(ast.Uint64(0), &ast.Prop{Name: "a"}, 32)
	m.Store(ast.Uint64(0), &ast.Prop{Name: "b"}, 32)
	require.Equal(t, 1, m.Len())
	require.Equal(t, &ast.Prop{Name: "b"}, m.Load(ast.Uint64(0)))
}

func TestMemoryBytesRefusesLargeRanges(t *testing.T) {
	m := NewMemory()
	for off := uint64(0); off < 2*maxBytes; off += 32 {
		m.Store(ast.Uint64(off), ast.Uint64(0), 32)
	}
	b, ok := m.Bytes(0, maxBytes)
	require.True(t, ok)
	require.Len(t, b, maxBytes)

	_, ok = m.Bytes(0, maxBytes+1)
	require.False(t, ok)
	_, ok = m.Bytes(0, 0xfffffff0)
	require.False(t, ok)
}

func TestMemoryOffsetKindsAreIndependent(t *testing.T) {
	m := NewMemory()
	ptr := &ast.CallDataLoad{Offset: ast.Uint64(4)}
	m.Store(ptr, ast.Uint64(1), 32)
	m.Store(ast.Uint64(0), ast.Uint64(2), 32)

	require.Equal(t, ast.Uint64(1), m.Load(ptr))
	require.Equal(t, ast.Uint64(2), m.Load(ast.Uint64(0)))
	require.Equal(t, 1, m.Len())
}
