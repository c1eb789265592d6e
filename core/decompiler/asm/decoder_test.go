package asm

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	// PUSH2 0x5b5b JUMPDEST PUSH0 STOP
	prog := Decode([]byte{0x61, 0x5b, 0x5b, 0x5b, 0x5f, 0x00})

	require.Len(t, prog.Opcodes, 4)
	require.Equal(t, PUSH1+1, prog.Opcodes[0].Op)
	require.Equal(t, uint256.NewInt(0x5b5b), prog.Opcodes[0].Value())
	require.Equal(t, uint32(3), prog.Opcodes[1].Offset)
	require.Equal(t, uint32(1), prog.Opcodes[1].PC)
	require.Equal(t, PUSH0, prog.Opcodes[2].Op)
	require.True(t, prog.Opcodes[2].Value().IsZero())

	// Bytes inside the push immediate are not destinations.
	require.Equal(t, map[uint32]int{3: 1}, prog.JumpDests)
	_, ok := prog.Resolve(1)
	require.False(t, ok)
	pc, ok := prog.Resolve(3)
	require.True(t, ok)
	require.Equal(t, 1, pc)
	_, ok = prog.Resolve(1 << 40)
	require.False(t, ok)
}

func TestDecodeTruncatedPush(t *testing.T) {
	prog := Decode([]byte{0x00, 0x63, 0xaa, 0xbb})
	require.Len(t, prog.Opcodes, 2)
	push := prog.Opcodes[1]
	require.Equal(t, PUSH1+3, push.Op)
	require.Equal(t, []byte{0xaa, 0xbb, 0x00, 0x00}, push.PushData)
	require.Equal(t, "00001: PUSH4 0xaabb0000", push.String())
}

func TestDecodeUndefined(t *testing.T) {
	prog := Decode([]byte{0x0c, 0xfe})
	require.Equal(t, "INVALID", prog.Opcodes[0].Mnemonic())
	require.False(t, prog.Opcodes[0].Op.IsDefined())
	require.True(t, prog.Opcodes[0].Op.IsTerminator())
	require.Equal(t, "INVALID", prog.Opcodes[1].Mnemonic())
}

func TestParseHex(t *testing.T) {
	code, err := ParseHex("0x6001\n 6002 01")
	require.NoError(t, err)
	require.Equal(t, []byte{0x60, 0x01, 0x60, 0x02, 0x01}, code)

	code, err = ParseHex("5b00")
	require.NoError(t, err)
	require.Equal(t, []byte{0x5b, 0x00}, code)

	_, err = ParseHex("0x")
	require.ErrorIs(t, err, ErrEmptyCode)
	_, err = ParseHex("  ")
	require.ErrorIs(t, err, ErrEmptyCode)

	_, err = ParseHex("0x600")
	require.ErrorIs(t, err, ErrInvalidHex)
	require.ErrorIs(t, err, hexutil.ErrOddLength)

	_, err = ParseHex("0x60zz")
	require.ErrorIs(t, err, ErrInvalidHex)
	require.ErrorIs(t, err, hexutil.ErrSyntax)
}

func TestLeaders(t *testing.T) {
	// PUSH1 4 JUMP JUMPDEST STOP ADD
	prog, err := DecodeHex("6004565b0001")
	require.NoError(t, err)
	require.Equal(t, []int{0, 2, 4}, prog.Leaders())
}

func TestOpcodeClasses(t *testing.T) {
	require.Equal(t, 32, PUSH32.PushSize())
	require.Equal(t, 0, PUSH0.PushSize())
	require.False(t, PUSH0.IsPush())
	require.True(t, DUP16.IsDup())
	require.True(t, SWAP1.IsSwap())
	require.True(t, LOG4.IsLog())
	require.True(t, TSTORE.IsDefined())
	require.Equal(t, "MCOPY", MCOPY.String())
	for _, op := range []OpCode{STOP, JUMP, JUMPI, RETURN, REVERT, INVALID, SELFDESTRUCT} {
		require.True(t, op.IsTerminator(), op.String())
	}
	require.False(t, JUMPDEST.IsTerminator())
}
