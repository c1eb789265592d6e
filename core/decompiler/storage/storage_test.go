package storage

import (
	"testing"

	"github.com/bnb-chain/evmdecompiler/core/decompiler/ast"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hash(args ...ast.Expr) *ast.Sha3 {
	return &ast.Sha3{Offset: ast.Uint64(0), Size: ast.Uint64(uint64(32 * len(args))), Args: args}
}

var (
	sender = &ast.Prop{Name: "msg.sender"}
	arg0   = &ast.CallDataLoad{Offset: ast.Uint64(4)}
	arg1   = &ast.CallDataLoad{Offset: ast.Uint64(36)}
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		addr   ast.Expr
		kind   Kind
		slot   uint64
		keys   []ast.Expr
		offset uint64
	}{
		{"constant", ast.Uint64(7), Scalar, 7, nil, 0},
		{"mapping", hash(sender, ast.Uint64(3)), MappingSlot, 3, []ast.Expr{sender}, 0},
		{"constant key", hash(ast.Uint64(9), ast.Uint64(3)), MappingSlot, 3, []ast.Expr{ast.Uint64(9)}, 0},
		{"slot first", hash(ast.Uint64(5), arg0), MappingSlot, 5, []ast.Expr{arg0}, 0},
		{"struct field", ast.NewAdd(hash(arg0, ast.Uint64(2)), ast.Uint64(1)), MappingSlot, 2, []ast.Expr{arg0}, 1},
		{"struct field mirrored", &ast.BinaryExpr{Op: ast.ADD, X: ast.Uint64(4), Y: hash(arg0, ast.Uint64(2))}, MappingSlot, 2, []ast.Expr{arg0}, 4},
		{"nested", hash(arg1, hash(arg0, ast.Uint64(1))), MappingSlot, 1, []ast.Expr{arg0, arg1}, 0},
		{"no constant", hash(arg0, arg1), Opaque, 0, nil, 0},
		{"array base", hash(ast.Uint64(3)), Opaque, 0, nil, 0},
		{"array element", ast.NewAdd(hash(ast.Uint64(3)), arg0), Opaque, 0, nil, 0},
		{"symbolic", arg0, Opaque, 0, nil, 0},
		{"unknown memory", &ast.Sha3{Offset: arg0, Size: ast.Uint64(64)}, Opaque, 0, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape := Classify(tt.addr)
			require.Equal(t, tt.kind, shape.Kind)
			if tt.kind == Opaque {
				return
			}
			assert.Equal(t, uint256.NewInt(tt.slot), &shape.Slot)
			assert.Equal(t, tt.keys, shape.Keys)
			assert.Equal(t, uint256.NewInt(tt.offset), &shape.Offset)
		})
	}
}

func TestMappingStoreThenLoad(t *testing.T) {
	tables := NewTables()
	addr := hash(sender, ast.Uint64(3))

	store := tables.Store(addr, ast.Uint64(100))
	load := tables.Load(addr)

	ms, ok := store.(*ast.MappingStore)
	require.True(t, ok)
	ml, ok := load.(*ast.MappingLoad)
	require.True(t, ok)
	require.Equal(t, ms.Mapping, ml.Mapping)

	require.Empty(t, tables.Variables)
	require.Len(t, tables.Mappings, 1)
	m := tables.Mappings[0]
	require.Equal(t, uint256.NewInt(3), &m.Slot)
	require.Equal(t, [][]ast.Expr{{sender}}, m.Keys)
	require.True(t, m.Offsets.Contains(0))
	require.Equal(t, 1, m.Depth())

	_, scalar := tables.VariableAt(uint256.NewInt(3))
	require.False(t, scalar)
}

func TestScalarVariables(t *testing.T) {
	tables := NewTables()
	tables.Store(ast.Uint64(0), sender)
	tables.Store(ast.Uint64(1), ast.NewIsZero(arg0))
	tables.Store(ast.Uint64(1), ast.Uint64(0))
	tables.Store(ast.Uint64(2), arg0)
	load := tables.Load(ast.Uint64(0)).(*ast.SLoad)

	require.Equal(t, 0, load.Var)
	require.Len(t, tables.Variables, 3)
	require.Equal(t, "address", tables.Variables[0].Type())
	require.Equal(t, "bool", tables.Variables[1].Type())
	require.Equal(t, "uint256", tables.Variables[2].Type())

	tables.Variables[0].Label = "owner"
	require.Equal(t, "owner", tables.VariableName(0))
	require.Equal(t, "storage_0x1", tables.VariableName(1))
	require.Equal(t, "owner", ast.Sprint(load, tables))
}

func TestOpaqueSlot(t *testing.T) {
	tables := NewTables()
	inst := tables.Store(arg0, ast.Uint64(1)).(*ast.SStore)
	require.Equal(t, -1, inst.Var)
	require.Empty(t, tables.Variables)
	require.Empty(t, tables.Mappings)
}

func TestMappingKeysDeduplicated(t *testing.T) {
	tables := NewTables()
	tables.Load(hash(sender, ast.Uint64(3)))
	tables.Load(hash(sender, ast.Uint64(3)))
	tables.Load(hash(arg0, ast.Uint64(3)))
	tables.Load(ast.NewAdd(hash(arg0, ast.Uint64(3)), ast.Uint64(2)))
	require.Len(t, tables.Mappings, 1)
	require.Len(t, tables.Mappings[0].Keys, 2)
	require.ElementsMatch(t, []uint64{0, 2}, tables.Mappings[0].Offsets.ToSlice())
}

func TestNestedMappingKeepsInnerField(t *testing.T) {
	// mapping(k1 => struct { uint a; mapping(k2 => uint) b; }) at slot 1,
	// reading m[arg0].b[arg1].
	inner := ast.NewAdd(hash(arg0, ast.Uint64(1)), ast.Uint64(1))
	shape := Classify(hash(arg1, inner))
	require.Equal(t, MappingSlot, shape.Kind)
	require.Equal(t, []ast.Expr{arg0, arg1}, shape.Keys)
	require.Equal(t, []uint256.Int{*uint256.NewInt(1), {}}, shape.Fields)
	require.True(t, shape.Offset.IsZero())

	tables := NewTables()
	load := tables.Load(ast.NewAdd(hash(arg1, inner), ast.Uint64(2)))
	require.Equal(t, "mapping_0x1[calldata[4]].field1[calldata[36]].field2", ast.Sprint(load, tables))
}
