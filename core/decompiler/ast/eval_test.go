package ast

import (
	"math/rand"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func u(v uint64) *Val { return Uint64(v) }

func word(s string) *Val { return NewVal(uint256.MustFromHex(s)) }

func sym(name string) Expr { return &Prop{Name: name} }

func randWord(rng *rand.Rand) *uint256.Int {
	var b [32]byte
	rng.Read(b[:])
	// Mix in small values so that 0 and 1 are exercised as well.
	switch rng.Intn(4) {
	case 0:
		return uint256.NewInt(uint64(rng.Intn(3)))
	case 1:
		return new(uint256.Int).SetBytes(b[:8])
	}
	return new(uint256.Int).SetBytes(b[:])
}

func TestFoldingSoundness(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		a, b := randWord(rng), randWord(rng)
		x, y := NewVal(a), NewVal(b)

		require.Equal(t, new(uint256.Int).Add(a, b), &NewAdd(x, y).(*Val).Value)
		require.Equal(t, new(uint256.Int).Mul(a, b), &NewMul(x, y).(*Val).Value)
		require.Equal(t, new(uint256.Int).Sub(a, b), &NewSub(x, y).(*Val).Value)
		require.Equal(t, boolWord(a.Lt(b)), &NewLt(x, y).(*Val).Value)
		require.Equal(t, boolWord(a.Gt(b)), &NewGt(x, y).(*Val).Value)
		require.Equal(t, boolWord(a.Eq(b)), &NewEq(x, y).(*Val).Value)

		if b.IsZero() {
			require.IsType(t, &BinaryExpr{}, NewDiv(x, y))
			require.IsType(t, &BinaryExpr{}, NewMod(x, y))
			continue
		}
		require.Equal(t, new(uint256.Int).Div(a, b), &NewDiv(x, y).(*Val).Value)
		require.Equal(t, new(uint256.Int).Mod(a, b), &NewMod(x, y).(*Val).Value)
	}
}

func TestDivisionByZeroStaysSymbolic(t *testing.T) {
	for _, op := range []BinaryOp{DIV, SDIV, MOD, SMOD} {
		e := NewBinary(op, u(7), u(0))
		bin, ok := e.(*BinaryExpr)
		require.True(t, ok, "op %v folded", op)
		require.Equal(t, op, bin.Op)
	}
}

func TestIdentities(t *testing.T) {
	x := sym("msg.sender")
	require.Same(t, x, NewAdd(x, u(0)))
	require.Same(t, x, NewAdd(u(0), x))
	require.Same(t, x, NewSub(x, u(0)))
	require.Same(t, x, NewDiv(x, u(1)))
	require.Equal(t, u(0), NewMul(x, u(0)))
	require.Equal(t, u(0), NewMul(u(0), x))
	require.Equal(t, word("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"), NewNot(u(0)))
	require.Same(t, x, NewNot(NewNot(x)))
	require.Equal(t, u(1), NewExp(u(0), u(0)))
	require.Equal(t, u(1024), NewExp(u(2), u(10)))
}

func TestMaskIdempotence(t *testing.T) {
	x := NewCallDataLoad(u(4))
	for bits := uint(8); bits <= 256; bits += 8 {
		mask := new(uint256.Int).Lsh(uint256.NewInt(1), bits)
		mask.SubUint64(mask, 1)
		require.Same(t, x, NewAnd(NewVal(mask), x), "mask of %d bits", bits)
		require.Same(t, x, NewAnd(x, NewVal(mask)), "mask of %d bits", bits)
	}
	// 0x0fff is not byte aligned and must stay.
	require.IsType(t, &BinaryExpr{}, NewAnd(u(0x0fff), x))
}

func TestAndCollapse(t *testing.T) {
	x := sym("msg.sender")
	k := u(0x0f0f)
	inner := NewAnd(k, x)
	require.Same(t, inner, NewAnd(u(0x0f0f), inner))
	require.NotSame(t, inner, NewAnd(u(0x00f0), inner))
}

func TestSelectorRecognition(t *testing.T) {
	cdl := &CallDataLoad{Offset: u(0)}
	div := &BinaryExpr{Op: DIV, X: cdl, Y: NewVal(new(uint256.Int).Lsh(uint256.NewInt(1), 224))}
	shr := &BinaryExpr{Op: SHR, X: cdl, Y: u(0xe0)}
	want := &Sig{Selector: "12345678", Positive: true}

	for name, e := range map[string]Expr{
		"div":          &BinaryExpr{Op: EQ, X: u(0x12345678), Y: div},
		"div mirrored": &BinaryExpr{Op: EQ, X: div, Y: u(0x12345678)},
		"shr":          &BinaryExpr{Op: EQ, X: u(0x12345678), Y: shr},
		"shr mirrored": &BinaryExpr{Op: EQ, X: shr, Y: u(0x12345678)},
		"masked": &BinaryExpr{Op: EQ, X: u(0x12345678), Y: &BinaryExpr{
			Op: AND, X: div, Y: u(0xffffffff),
		}},
	} {
		require.Equal(t, want, e.Eval(), name)
	}
	// Leading zeros are kept.
	require.Equal(t, &Sig{Selector: "00000001", Positive: true}, NewEq(u(1), shr))

	// Wrong shift or wrong calldata word is a plain comparison.
	require.IsType(t, &BinaryExpr{}, NewEq(u(0x12345678), NewShr(cdl, u(0xe8))))
	require.IsType(t, &BinaryExpr{}, NewEq(u(0x12345678), NewShr(NewCallDataLoad(u(4)), u(0xe0))))
	// Constants wider than four bytes are not selectors.
	require.IsType(t, &BinaryExpr{}, NewEq(u(0x1234567890), shr))
}

func TestIsZeroRewrites(t *testing.T) {
	a, b := sym("a"), sym("b")
	require.Equal(t, &BinaryExpr{Op: GE, X: a, Y: b}, NewIsZero(NewLt(a, b)))
	require.Equal(t, &BinaryExpr{Op: LE, X: a, Y: b}, NewIsZero(NewGt(a, b)))
	require.Equal(t, &BinaryExpr{Op: LT, X: a, Y: b}, NewIsZero(NewIsZero(NewLt(a, b))))
	require.Same(t, a, NewIsZero(NewIsZero(a)))
	require.Equal(t, u(1), NewIsZero(u(0)))
	require.Equal(t, u(0), NewIsZero(u(9)))

	sig := &Sig{Selector: "a9059cbb", Positive: true}
	require.Equal(t, &Sig{Selector: "a9059cbb"}, NewIsZero(sig))
	require.Equal(t, sig, NewIsZero(NewIsZero(sig)))
}

func TestEvalIdempotent(t *testing.T) {
	cdl := &CallDataLoad{Offset: u(0)}
	a, b := sym("a"), sym("b")
	exprs := []Expr{
		u(3),
		&BinaryExpr{Op: ADD, X: u(1), Y: &BinaryExpr{Op: MUL, X: u(2), Y: u(3)}},
		&IsZeroExpr{X: &IsZeroExpr{X: &IsZeroExpr{X: a}}},
		&IsZeroExpr{X: &BinaryExpr{Op: SLT, X: a, Y: b}},
		&BinaryExpr{Op: AND, X: u(0xff), Y: &BinaryExpr{Op: AND, X: u(0xff), Y: a}},
		&BinaryExpr{Op: AND, X: u(0x0f), Y: &BinaryExpr{Op: AND, X: u(0x0f), Y: a}},
		&BinaryExpr{Op: EQ, X: u(0x70a08231), Y: &BinaryExpr{Op: SHR, X: cdl, Y: u(0xe0)}},
		&IsZeroExpr{X: &BinaryExpr{Op: EQ, X: u(0x70a08231), Y: &BinaryExpr{Op: SHR, X: cdl, Y: u(0xe0)}}},
		&BinaryExpr{Op: DIV, X: a, Y: u(0)},
		&NotExpr{X: &NotExpr{X: &NotExpr{X: b}}},
		&Sha3{Offset: u(0), Size: u(64), Args: []Expr{&BinaryExpr{Op: ADD, X: a, Y: u(0)}, u(3)}},
		&SLoad{Slot: &BinaryExpr{Op: ADD, X: u(1), Y: u(1)}, Var: -1},
		&Fn{Name: "addmod", Args: []Expr{u(5), u(6), u(7)}},
		&Fn{Name: "balance", Args: []Expr{&BinaryExpr{Op: OR, X: a, Y: u(0)}}},
		&CallExpr{Kind: StaticCall, Gas: sym("gas"), Address: a, ArgsOffset: u(0), ArgsSize: u(0), RetOffset: u(0), RetSize: u(32)},
		&BinaryExpr{Op: BYTE, X: u(31), Y: u(0x1234)},
		&BinaryExpr{Op: SAR, X: word("0x8000000000000000000000000000000000000000000000000000000000000000"), Y: u(300)},
	}
	for i, e := range exprs {
		once := e.Eval()
		require.Equal(t, once, once.Eval(), "expr %d: %s", i, e)
	}
}

func TestShiftsAndByte(t *testing.T) {
	require.Equal(t, u(0x34), NewBinary(BYTE, u(31), u(0x1234)))
	require.Equal(t, u(0), NewBinary(BYTE, u(32), u(0x1234)))
	require.Equal(t, u(0x100), NewShl(u(1), u(8)))
	require.Equal(t, u(0), NewShl(u(1), u(256)))
	require.Equal(t, u(1), NewShr(u(0x100), u(8)))
	all := word("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	require.Equal(t, all, NewBinary(SAR, all, u(400)))
	x := sym("x")
	require.Same(t, x, NewShr(x, u(0)))
}

func TestSprint(t *testing.T) {
	a := sym("msg.sender")
	require.Equal(t, "(msg.sender + 1)", NewAdd(a, u(1)).String())
	require.Equal(t, "msg.sig != 0xa9059cbb", (&Sig{Selector: "a9059cbb"}).String())
	require.Equal(t, "0x10000", u(0x10000).String())
	require.Equal(t, "keccak256(msg.sender, 3)", (&Sha3{Offset: u(0), Size: u(64), Args: []Expr{a, u(3)}}).String())
}
