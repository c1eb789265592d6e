package engine

import (
	"slices"

	"github.com/bnb-chain/evmdecompiler/core/decompiler/ast"
	"github.com/holiman/uint256"
)

// memWrite is one store at a constant offset.
type memWrite struct {
	offset uint64
	size   uint64 // 32 for words, 1 for MSTORE8
	value  ast.Expr
	seq    uint64
}

func (w *memWrite) end() uint64 { return w.offset + w.size }

type memKey struct{ offset, size uint64 }

// Memory is the sparse symbolic memory of a state. Stores at constant
// offsets are kept as a write log keyed by offset; a read returns the
// stored expression on an exact hit and otherwise tries to assemble the
// word from constant bytes. Stores at symbolic offsets are remembered by
// the printed form of the offset.
type Memory struct {
	writes   map[memKey]*memWrite
	symbolic map[string]ast.Expr
	seq      uint64
}

func NewMemory() *Memory {
	return &Memory{
		writes:   make(map[memKey]*memWrite),
		symbolic: make(map[string]ast.Expr),
	}
}

// maxTracked bounds the offsets memory tracks; larger constant offsets
// are handled like symbolic ones.
const maxTracked = 1 << 32

func constOffset(e ast.Expr) (uint64, bool) {
	v, ok := e.(*ast.Val)
	if !ok || !v.Value.LtUint64(maxTracked) {
		return 0, false
	}
	return v.Value.Uint64(), true
}

// Store records value at offset. size is 32 or 1.
//
// Constant and symbolic offsets live in separate maps and never
// invalidate each other, so a load can miss an aliasing store made
// through the other kind of offset.
func (m *Memory) Store(offset ast.Expr, value ast.Expr, size uint64) {
	off, ok := constOffset(offset)
	if !ok {
		m.symbolic[offset.String()] = value
		return
	}
	m.seq++
	w := &memWrite{offset: off, size: size, value: value, seq: m.seq}
	for k, old := range m.writes {
		if old.offset >= w.offset && old.end() <= w.end() {
			delete(m.writes, k)
		}
	}
	m.writes[memKey{off, size}] = w
}

// overlapping returns the writes touching [off, off+size) in store order.
func (m *Memory) overlapping(off, size uint64) []*memWrite {
	var out []*memWrite
	for _, w := range m.writes {
		if w.offset < off+size && w.end() > off {
			out = append(out, w)
		}
	}
	slices.SortFunc(out, func(a, b *memWrite) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	return out
}

// Load returns the 32-byte word at offset.
func (m *Memory) Load(offset ast.Expr) ast.Expr {
	off, ok := constOffset(offset)
	if !ok {
		if v, ok := m.symbolic[offset.String()]; ok {
			return v
		}
		return &ast.MLoad{Offset: offset}
	}
	ws := m.overlapping(off, 32)
	if n := len(ws); n > 0 {
		last := ws[n-1]
		if last.offset == off && last.size == 32 {
			return last.value
		}
	}
	if b, ok := assemble(ws, off, 32); ok {
		return ast.NewVal(new(uint256.Int).SetBytes(b))
	}
	return &ast.MLoad{Offset: offset}
}

// maxBytes bounds the ranges Bytes assembles.
const maxBytes = maxArgWords * 32

// Bytes returns the constant content of [off, off+size) if every byte is
// known. Ranges longer than maxBytes are never assembled.
func (m *Memory) Bytes(off, size uint64) ([]byte, bool) {
	if size > maxBytes {
		return nil, false
	}
	return assemble(m.overlapping(off, size), off, size)
}

// assemble replays constant writes over the target range.
func assemble(ws []*memWrite, base, size uint64) ([]byte, bool) {
	out := make([]byte, size)
	known := make([]bool, size)
	for _, w := range ws {
		v, isConst := w.value.(*ast.Val)
		var src [32]byte
		if isConst {
			src = v.Value.Bytes32()
		}
		for pos := max(w.offset, base); pos < min(w.end(), base+size); pos++ {
			idx := pos - base
			if !isConst {
				known[idx] = false
				continue
			}
			if w.size == 1 {
				out[idx] = src[31]
			} else {
				out[idx] = src[pos-w.offset]
			}
			known[idx] = true
		}
	}
	for _, k := range known {
		if !k {
			return nil, false
		}
	}
	return out, true
}

// Copy returns an independent memory sharing the immutable expressions.
func (m *Memory) Copy() *Memory {
	cpy := &Memory{
		writes:   make(map[memKey]*memWrite, len(m.writes)),
		symbolic: make(map[string]ast.Expr, len(m.symbolic)),
		seq:      m.seq,
	}
	for k, w := range m.writes {
		cw := *w
		cpy.writes[k] = &cw
	}
	for k, v := range m.symbolic {
		cpy.symbolic[k] = v
	}
	return cpy
}

// Len is the number of tracked constant-offset writes.
func (m *Memory) Len() int { return len(m.writes) }
