package storage

import (
	"fmt"
	"strings"

	"github.com/bnb-chain/evmdecompiler/core/decompiler/ast"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/holiman/uint256"
)

// Variable is a scalar storage slot.
type Variable struct {
	Slot   uint256.Int
	Label  string
	Values []ast.Expr // every value stored to the slot
}

// Type returns a best-effort Solidity type for the variable.
func (v *Variable) Type() string {
	return inferType(v.Values)
}

// Mapping is a (possibly nested) mapping rooted at a declaration slot.
type Mapping struct {
	Slot    uint256.Int
	Label   string
	Offsets mapset.Set[uint64] // struct field offsets seen
	Keys    [][]ast.Expr       // distinct key tuples
	Values  []ast.Expr

	seen mapset.Set[string]
}

// Depth is the number of keys of the widest access seen.
func (m *Mapping) Depth() int {
	d := 0
	for _, k := range m.Keys {
		if len(k) > d {
			d = len(k)
		}
	}
	return d
}

// ValueType returns a best-effort type of the stored values.
func (m *Mapping) ValueType() string {
	return inferType(m.Values)
}

// Tables are the storage facts collected by one engine run. Entries are
// append-only and addressed by dense indices carried in SLoad.Var and
// MappingLoad.Mapping.
type Tables struct {
	Variables []*Variable
	Mappings  []*Mapping

	vars     map[uint256.Int]int
	mappings map[uint256.Int]int
}

func NewTables() *Tables {
	return &Tables{
		vars:     make(map[uint256.Int]int),
		mappings: make(map[uint256.Int]int),
	}
}

func (t *Tables) variable(slot uint256.Int) int {
	if i, ok := t.vars[slot]; ok {
		return i
	}
	t.Variables = append(t.Variables, &Variable{Slot: slot})
	t.vars[slot] = len(t.Variables) - 1
	return len(t.Variables) - 1
}

func (t *Tables) mapping(shape *Shape) int {
	i, ok := t.mappings[shape.Slot]
	if !ok {
		t.Mappings = append(t.Mappings, &Mapping{
			Slot:    shape.Slot,
			Offsets: mapset.NewThreadUnsafeSet[uint64](),
			seen:    mapset.NewThreadUnsafeSet[string](),
		})
		i = len(t.Mappings) - 1
		t.mappings[shape.Slot] = i
	}
	m := t.Mappings[i]
	if shape.Offset.IsUint64() {
		m.Offsets.Add(shape.Offset.Uint64())
	}
	key := keyString(shape.Keys)
	if m.seen.Add(key) {
		m.Keys = append(m.Keys, shape.Keys)
	}
	return i
}

func keyString(keys []ast.Expr) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, "|")
}

// Load classifies addr and returns the read expression for it.
func (t *Tables) Load(addr ast.Expr) ast.Expr {
	shape := Classify(addr)
	switch shape.Kind {
	case Scalar:
		return &ast.SLoad{Slot: addr, Var: t.variable(shape.Slot)}
	case MappingSlot:
		return &ast.MappingLoad{Slot: addr, Mapping: t.mapping(&shape), Keys: shape.Keys, Offset: shape.Offset, Fields: shape.Fields}
	}
	return &ast.SLoad{Slot: addr, Var: -1}
}

// Store classifies addr, records value and returns the write instruction.
func (t *Tables) Store(addr, value ast.Expr) ast.Inst {
	shape := Classify(addr)
	switch shape.Kind {
	case Scalar:
		i := t.variable(shape.Slot)
		t.Variables[i].Values = append(t.Variables[i].Values, value)
		return &ast.SStore{Slot: addr, Value: value, Var: i}
	case MappingSlot:
		i := t.mapping(&shape)
		t.Mappings[i].Values = append(t.Mappings[i].Values, value)
		return &ast.MappingStore{Slot: addr, Mapping: i, Keys: shape.Keys, Offset: shape.Offset, Fields: shape.Fields, Value: value}
	}
	return &ast.SStore{Slot: addr, Value: value, Var: -1}
}

// VariableByIndex and MappingByIndex return nil for out of range indices.
func (t *Tables) VariableByIndex(i int) *Variable {
	if i < 0 || i >= len(t.Variables) {
		return nil
	}
	return t.Variables[i]
}

func (t *Tables) MappingByIndex(i int) *Mapping {
	if i < 0 || i >= len(t.Mappings) {
		return nil
	}
	return t.Mappings[i]
}

// VariableAt looks a scalar up by its slot.
func (t *Tables) VariableAt(slot *uint256.Int) (*Variable, bool) {
	i, ok := t.vars[*slot]
	if !ok {
		return nil, false
	}
	return t.Variables[i], true
}

// MappingAt looks a mapping up by its declaration slot.
func (t *Tables) MappingAt(slot *uint256.Int) (*Mapping, bool) {
	i, ok := t.mappings[*slot]
	if !ok {
		return nil, false
	}
	return t.Mappings[i], true
}

func (t *Tables) VariableName(i int) string {
	v := t.VariableByIndex(i)
	if v == nil {
		return fmt.Sprintf("var%d", i)
	}
	if v.Label != "" {
		return v.Label
	}
	return "storage_" + v.Slot.Hex()
}

func (t *Tables) MappingName(i int) string {
	m := t.MappingByIndex(i)
	if m == nil {
		return fmt.Sprintf("mapping%d", i)
	}
	if m.Label != "" {
		return m.Label
	}
	return "mapping_" + m.Slot.Hex()
}
