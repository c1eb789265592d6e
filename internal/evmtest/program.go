// Package evmtest provides a small bytecode assembler for tests. Jump
// targets are written as labels and resolved when the code is produced.
//
// Example:
//
//	code := evmtest.New().
//		Push(1).JumpI("done").
//		Op(asm.INVALID).
//		Label("done").Op(asm.STOP).
//		Bytes()
package evmtest

import (
	"encoding/hex"
	"fmt"

	"github.com/bnb-chain/evmdecompiler/core/decompiler/asm"
	"github.com/holiman/uint256"
)

type fixup struct {
	at    int // position of the two byte immediate
	label string
}

// Program accumulates code. Methods return the receiver for chaining.
type Program struct {
	code   []byte
	labels map[string]int
	fixups []fixup
}

func New() *Program {
	return &Program{labels: make(map[string]int)}
}

// Op appends raw instructions.
func (p *Program) Op(ops ...asm.OpCode) *Program {
	for _, op := range ops {
		p.code = append(p.code, byte(op))
	}
	return p
}

// Raw appends arbitrary bytes.
func (p *Program) Raw(b ...byte) *Program {
	p.code = append(p.code, b...)
	return p
}

// encodePush returns the shortest PUSHn for b (PUSH1 0 for zero).
func encodePush(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	b = b[i:]
	if len(b) == 0 {
		return []byte{byte(asm.PUSH1), 0x00}
	}
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	return append([]byte{byte(asm.PUSH1) + byte(len(b)-1)}, b...)
}

// Push appends the shortest push of v. Supported types are the integer
// kinds, *uint256.Int, []byte and hex strings.
func (p *Program) Push(v interface{}) *Program {
	var b []byte
	switch v := v.(type) {
	case int:
		b = uint256.NewInt(uint64(v)).Bytes()
	case uint32:
		b = uint256.NewInt(uint64(v)).Bytes()
	case uint64:
		b = uint256.NewInt(v).Bytes()
	case *uint256.Int:
		b = v.Bytes()
	case []byte:
		b = v
	case string:
		b = uint256.MustFromHex(v).Bytes()
	default:
		panic(fmt.Sprintf("evmtest: cannot push %T", v))
	}
	p.code = append(p.code, encodePush(b)...)
	return p
}

// PushN appends a PUSHn with exactly n immediate bytes of v.
func (p *Program) PushN(n int, v uint64) *Program {
	w := uint256.NewInt(v).Bytes32()
	p.code = append(p.code, byte(asm.PUSH1)+byte(n-1))
	p.code = append(p.code, w[32-n:]...)
	return p
}

// PushLabel appends a PUSH2 of the label's offset.
func (p *Program) PushLabel(name string) *Program {
	p.code = append(p.code, byte(asm.PUSH1)+1, 0, 0)
	p.fixups = append(p.fixups, fixup{at: len(p.code) - 2, label: name})
	return p
}

// Label defines name at the current offset and emits a JUMPDEST.
func (p *Program) Label(name string) *Program {
	if _, ok := p.labels[name]; ok {
		panic("evmtest: duplicate label " + name)
	}
	p.labels[name] = len(p.code)
	return p.Op(asm.JUMPDEST)
}

func (p *Program) Jump(label string) *Program {
	return p.PushLabel(label).Op(asm.JUMP)
}

// JumpI jumps to label when the top of the stack is non-zero.
func (p *Program) JumpI(label string) *Program {
	return p.PushLabel(label).Op(asm.JUMPI)
}

// Offset returns the byte offset of a defined label.
func (p *Program) Offset(name string) int {
	off, ok := p.labels[name]
	if !ok {
		panic("evmtest: unknown label " + name)
	}
	return off
}

// Len is the current code size.
func (p *Program) Len() int { return len(p.code) }

// Bytes resolves labels and returns a copy of the code.
func (p *Program) Bytes() []byte {
	code := append([]byte(nil), p.code...)
	for _, f := range p.fixups {
		off := p.Offset(f.label)
		code[f.at] = byte(off >> 8)
		code[f.at+1] = byte(off)
	}
	return code
}

func (p *Program) Hex() string {
	return "0x" + hex.EncodeToString(p.Bytes())
}
