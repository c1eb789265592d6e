package asm

import "github.com/ethereum/go-ethereum/core/vm"

// OpCode is a single EVM instruction byte. The numbering mirrors
// go-ethereum's core/vm table; mnemonics are taken from there as well so
// that printed listings match geth's disassembler.
type OpCode byte

// 0x0 range - arithmetic ops.
const (
	STOP       OpCode = 0x0
	ADD        OpCode = 0x1
	MUL        OpCode = 0x2
	SUB        OpCode = 0x3
	DIV        OpCode = 0x4
	SDIV       OpCode = 0x5
	MOD        OpCode = 0x6
	SMOD       OpCode = 0x7
	ADDMOD     OpCode = 0x8
	MULMOD     OpCode = 0x9
	EXP        OpCode = 0xa
	SIGNEXTEND OpCode = 0xb
)

// 0x10 range - comparison ops.
const (
	LT     OpCode = 0x10
	GT     OpCode = 0x11
	SLT    OpCode = 0x12
	SGT    OpCode = 0x13
	EQ     OpCode = 0x14
	ISZERO OpCode = 0x15
	AND    OpCode = 0x16
	OR     OpCode = 0x17
	XOR    OpCode = 0x18
	NOT    OpCode = 0x19
	BYTE   OpCode = 0x1a
	SHL    OpCode = 0x1b
	SHR    OpCode = 0x1c
	SAR    OpCode = 0x1d
)

// 0x20 range - crypto.
const (
	KECCAK256 OpCode = 0x20
)

// 0x30 range - closure state.
const (
	ADDRESS        OpCode = 0x30
	BALANCE        OpCode = 0x31
	ORIGIN         OpCode = 0x32
	CALLER         OpCode = 0x33
	CALLVALUE      OpCode = 0x34
	CALLDATALOAD   OpCode = 0x35
	CALLDATASIZE   OpCode = 0x36
	CALLDATACOPY   OpCode = 0x37
	CODESIZE       OpCode = 0x38
	CODECOPY       OpCode = 0x39
	GASPRICE       OpCode = 0x3a
	EXTCODESIZE    OpCode = 0x3b
	EXTCODECOPY    OpCode = 0x3c
	RETURNDATASIZE OpCode = 0x3d
	RETURNDATACOPY OpCode = 0x3e
	EXTCODEHASH    OpCode = 0x3f
)

// 0x40 range - block operations.
const (
	BLOCKHASH   OpCode = 0x40
	COINBASE    OpCode = 0x41
	TIMESTAMP   OpCode = 0x42
	NUMBER      OpCode = 0x43
	PREVRANDAO  OpCode = 0x44
	GASLIMIT    OpCode = 0x45
	CHAINID     OpCode = 0x46
	SELFBALANCE OpCode = 0x47
	BASEFEE     OpCode = 0x48
	BLOBHASH    OpCode = 0x49
	BLOBBASEFEE OpCode = 0x4a
)

// 0x50 range - 'storage' and execution.
const (
	POP      OpCode = 0x50
	MLOAD    OpCode = 0x51
	MSTORE   OpCode = 0x52
	MSTORE8  OpCode = 0x53
	SLOAD    OpCode = 0x54
	SSTORE   OpCode = 0x55
	JUMP     OpCode = 0x56
	JUMPI    OpCode = 0x57
	PC       OpCode = 0x58
	MSIZE    OpCode = 0x59
	GAS      OpCode = 0x5a
	JUMPDEST OpCode = 0x5b
	TLOAD    OpCode = 0x5c
	TSTORE   OpCode = 0x5d
	MCOPY    OpCode = 0x5e
	PUSH0    OpCode = 0x5f
)

// 0x60 range - pushes.
const (
	PUSH1  OpCode = 0x60
	PUSH32 OpCode = 0x7f
)

// 0x80 range - dups.
const (
	DUP1  OpCode = 0x80
	DUP16 OpCode = 0x8f
)

// 0x90 range - swaps.
const (
	SWAP1  OpCode = 0x90
	SWAP16 OpCode = 0x9f
)

// 0xa0 range - logging ops.
const (
	LOG0 OpCode = 0xa0
	LOG4 OpCode = 0xa4
)

// 0xf0 range - closures.
const (
	CREATE       OpCode = 0xf0
	CALL         OpCode = 0xf1
	CALLCODE     OpCode = 0xf2
	RETURN       OpCode = 0xf3
	DELEGATECALL OpCode = 0xf4
	CREATE2      OpCode = 0xf5
	STATICCALL   OpCode = 0xfa
	REVERT       OpCode = 0xfd
	INVALID      OpCode = 0xfe
	SELFDESTRUCT OpCode = 0xff
)

var defined [256]bool

func init() {
	for op := STOP; op <= SIGNEXTEND; op++ {
		defined[op] = true
	}
	for op := LT; op <= SAR; op++ {
		defined[op] = true
	}
	defined[KECCAK256] = true
	for op := ADDRESS; op <= BLOBBASEFEE; op++ {
		defined[op] = true
	}
	for op := POP; op <= LOG4; op++ {
		defined[op] = true
	}
	for _, op := range []OpCode{CREATE, CALL, CALLCODE, RETURN, DELEGATECALL, CREATE2, STATICCALL, REVERT, INVALID, SELFDESTRUCT} {
		defined[op] = true
	}
}

// IsDefined reports whether op is an instruction of the current fork set.
// Undefined bytes execute as INVALID.
func (op OpCode) IsDefined() bool { return defined[op] }

// IsPush reports whether op is PUSH1..PUSH32. PUSH0 carries no immediate.
func (op OpCode) IsPush() bool { return op >= PUSH1 && op <= PUSH32 }

// PushSize returns the immediate length of a PUSH instruction.
func (op OpCode) PushSize() int {
	if !op.IsPush() {
		return 0
	}
	return int(op-PUSH1) + 1
}

func (op OpCode) IsDup() bool  { return op >= DUP1 && op <= DUP16 }
func (op OpCode) IsSwap() bool { return op >= SWAP1 && op <= SWAP16 }
func (op OpCode) IsLog() bool  { return op >= LOG0 && op <= LOG4 }

// IsTerminator reports whether op ends a basic block unconditionally
// or by branching.
func (op OpCode) IsTerminator() bool {
	switch op {
	case STOP, RETURN, REVERT, INVALID, SELFDESTRUCT, JUMP, JUMPI:
		return true
	}
	return !op.IsDefined()
}

func (op OpCode) String() string {
	if !op.IsDefined() {
		return "INVALID"
	}
	return vm.OpCode(op).String()
}
