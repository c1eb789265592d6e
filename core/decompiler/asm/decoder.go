package asm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

var (
	// ErrEmptyCode is returned when the hex input carries no bytes at all.
	ErrEmptyCode = errors.New("empty bytecode")

	// ErrInvalidHex is returned for malformed hex input (odd length or a
	// non-hex digit). The underlying hexutil error is wrapped.
	ErrInvalidHex = errors.New("invalid bytecode hex")
)

// Opcode is one decoded instruction.
type Opcode struct {
	Offset   uint32 // raw byte position, the space jump targets live in
	PC       uint32 // dense index into Program.Opcodes
	Op       OpCode
	PushData []byte // immediate of PUSH1..PUSH32, zero padded if truncated
}

func (o *Opcode) Mnemonic() string { return o.Op.String() }

// Value returns the immediate of a push instruction as a 256-bit word.
// PUSH0 and non-push instructions yield zero.
func (o *Opcode) Value() *uint256.Int {
	return new(uint256.Int).SetBytes(o.PushData)
}

func (o *Opcode) String() string {
	if len(o.PushData) > 0 {
		return fmt.Sprintf("%05x: %s 0x%x", o.Offset, o.Op, o.PushData)
	}
	return fmt.Sprintf("%05x: %s", o.Offset, o.Op)
}

// Program is the decoded form of a code buffer.
type Program struct {
	Code    []byte
	Opcodes []Opcode

	// JumpDests maps the byte offset of every JUMPDEST to its pc.
	JumpDests map[uint32]int
}

// Decode splits code into instructions and records the valid jump
// destinations. Bytes inside push immediates are never jump destinations.
func Decode(code []byte) *Program {
	p := &Program{
		Code:      code,
		JumpDests: make(map[uint32]int),
	}
	for i := 0; i < len(code); {
		op := OpCode(code[i])
		inst := Opcode{
			Offset: uint32(i),
			PC:     uint32(len(p.Opcodes)),
			Op:     op,
		}
		next := i + 1
		if size := op.PushSize(); size > 0 {
			inst.PushData = make([]byte, size)
			end := next + size
			if end > len(code) {
				end = len(code)
			}
			copy(inst.PushData, code[next:end])
			next += size
		}
		if op == JUMPDEST {
			p.JumpDests[inst.Offset] = len(p.Opcodes)
		}
		p.Opcodes = append(p.Opcodes, inst)
		i = next
	}
	return p
}

// DecodeHex parses a hex string (0x prefix and embedded whitespace
// are tolerated) and decodes it.
func DecodeHex(s string) (*Program, error) {
	code, err := ParseHex(s)
	if err != nil {
		return nil, err
	}
	return Decode(code), nil
}

// ParseHex turns user supplied hex into bytes.
func ParseHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	if len(s) == 2 {
		return nil, ErrEmptyCode
	}
	code, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHex, err)
	}
	return code, nil
}

// Resolve maps a jump target offset to the pc of its JUMPDEST.
func (p *Program) Resolve(offset uint64) (int, bool) {
	if offset > uint64(^uint32(0)) {
		return 0, false
	}
	pc, ok := p.JumpDests[uint32(offset)]
	return pc, ok
}

// Leaders returns the pcs that start a basic block: pc 0, every JUMPDEST
// and every instruction following a terminator.
func (p *Program) Leaders() []int {
	var leaders []int
	for i := range p.Opcodes {
		switch {
		case i == 0:
			leaders = append(leaders, i)
		case p.Opcodes[i].Op == JUMPDEST:
			leaders = append(leaders, i)
		case p.Opcodes[i-1].Op.IsTerminator():
			leaders = append(leaders, i)
		}
	}
	return leaders
}

func (p *Program) String() string {
	var b strings.Builder
	for i := range p.Opcodes {
		b.WriteString(p.Opcodes[i].String())
		b.WriteByte('\n')
	}
	return b.String()
}
