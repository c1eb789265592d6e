// Package storage infers scalar variables and mappings from the shape of
// the slot expressions seen by SLOAD and SSTORE.
package storage

import (
	"github.com/bnb-chain/evmdecompiler/core/decompiler/ast"
	"github.com/holiman/uint256"
)

// Kind is the classification of a slot expression.
type Kind int

const (
	Opaque Kind = iota // not understood, kept as a raw slot
	Scalar             // constant slot
	MappingSlot        // keccak of keys and a declaration slot
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case MappingSlot:
		return "mapping"
	}
	return "opaque"
}

// Shape is the result of classifying a slot expression.
type Shape struct {
	Kind   Kind
	Slot   uint256.Int // constant slot or mapping declaration slot
	Keys   []ast.Expr  // outermost key last
	Offset uint256.Int // struct field offset added to the hashed slot

	// Fields holds the struct field offset added after each key, so
	// m[k1].f[k2] keeps f. The last entry equals Offset.
	Fields []uint256.Int
}

// Classify inspects a storage address. Constants are scalar slots; a
// keccak (optionally plus a constant) over keys and exactly one
// declaration slot is a mapping; anything else is opaque.
func Classify(addr ast.Expr) Shape {
	if v, ok := addr.(*ast.Val); ok {
		return Shape{Kind: Scalar, Slot: v.Value}
	}
	slot, keys, fields, ok := unwrapMapping(addr)
	if !ok {
		return Shape{Kind: Opaque}
	}
	return Shape{Kind: MappingSlot, Slot: slot, Keys: keys, Offset: fields[len(fields)-1], Fields: fields}
}

// splitOffset separates Add(Sha3, c) and Add(c, Sha3) into the hash and c.
func splitOffset(e ast.Expr) (*ast.Sha3, uint256.Int, bool) {
	var zero uint256.Int
	switch e := e.(type) {
	case *ast.Sha3:
		return e, zero, true
	case *ast.BinaryExpr:
		if e.Op != ast.ADD {
			break
		}
		if h, ok := e.X.(*ast.Sha3); ok {
			if c, ok := e.Y.(*ast.Val); ok {
				return h, c.Value, true
			}
		}
		if h, ok := e.Y.(*ast.Sha3); ok {
			if c, ok := e.X.(*ast.Val); ok {
				return h, c.Value, true
			}
		}
	}
	return nil, zero, false
}

// unwrapMapping returns the declaration slot, the keys and the field
// offset following each key.
func unwrapMapping(e ast.Expr) (slot uint256.Int, keys []ast.Expr, fields []uint256.Int, ok bool) {
	h, offset, ok := splitOffset(e)
	if !ok || len(h.Args) == 0 {
		return slot, nil, nil, false
	}
	args := h.Args

	// Nested mapping: one of the hashed words is itself a mapping slot.
	for i, a := range args {
		if _, _, isHash := splitOffset(a); !isHash {
			continue
		}
		inner, innerKeys, innerFields, ok := unwrapMapping(a)
		if !ok {
			break
		}
		keys = append(keys, innerKeys...)
		keys = append(keys, args[:i]...)
		keys = append(keys, args[i+1:]...)
		fields = append(fields, innerFields...)
		return inner, keys, withOffset(fields, len(keys), offset), true
	}

	// Solidity hashes key . slot, so a trailing constant is the slot even
	// when a key is constant too.
	idx := -1
	if _, isConst := args[len(args)-1].(*ast.Val); isConst {
		idx = len(args) - 1
	} else {
		for i, a := range args {
			if _, isConst := a.(*ast.Val); isConst {
				if idx >= 0 {
					return slot, nil, nil, false
				}
				idx = i
			}
		}
	}
	if idx < 0 || len(args) == 1 {
		// No declaration slot, or a bare keccak(slot) array base.
		return slot, nil, nil, false
	}
	slot = args[idx].(*ast.Val).Value
	keys = append(keys, args[:idx]...)
	keys = append(keys, args[idx+1:]...)
	return slot, keys, withOffset(nil, len(keys), offset), true
}

// withOffset pads fields with zero offsets up to n entries and sets the
// last one to offset.
func withOffset(fields []uint256.Int, n int, offset uint256.Int) []uint256.Int {
	for len(fields) < n {
		fields = append(fields, uint256.Int{})
	}
	fields[n-1] = offset
	return fields
}
