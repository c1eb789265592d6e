package engine

import (
	"encoding/hex"
	"fmt"

	"github.com/bnb-chain/evmdecompiler/core/decompiler/asm"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/ast"
	"github.com/holiman/uint256"
)

// maxArgWords bounds how many memory words are materialized for return,
// revert, log and hash payloads.
const maxArgWords = 64

var binaryOps = map[asm.OpCode]ast.BinaryOp{
	asm.ADD:        ast.ADD,
	asm.MUL:        ast.MUL,
	asm.SUB:        ast.SUB,
	asm.DIV:        ast.DIV,
	asm.SDIV:       ast.SDIV,
	asm.MOD:        ast.MOD,
	asm.SMOD:       ast.SMOD,
	asm.EXP:        ast.EXP,
	asm.SIGNEXTEND: ast.SIGNEXTEND,
	asm.LT:         ast.LT,
	asm.GT:         ast.GT,
	asm.SLT:        ast.SLT,
	asm.SGT:        ast.SGT,
	asm.EQ:         ast.EQ,
	asm.AND:        ast.AND,
	asm.OR:         ast.OR,
	asm.XOR:        ast.XOR,
	asm.BYTE:       ast.BYTE,
}

var shiftOps = map[asm.OpCode]ast.BinaryOp{
	asm.SHL: ast.SHL,
	asm.SHR: ast.SHR,
	asm.SAR: ast.SAR,
}

var props = map[asm.OpCode]string{
	asm.ADDRESS:        "address(this)",
	asm.ORIGIN:         "tx.origin",
	asm.CALLER:         "msg.sender",
	asm.CALLDATASIZE:   "msg.data.length",
	asm.CODESIZE:       "codesize()",
	asm.GASPRICE:       "tx.gasprice",
	asm.RETURNDATASIZE: "returndatasize()",
	asm.COINBASE:       "block.coinbase",
	asm.TIMESTAMP:      "block.timestamp",
	asm.NUMBER:         "block.number",
	asm.PREVRANDAO:     "block.prevrandao",
	asm.GASLIMIT:       "block.gaslimit",
	asm.CHAINID:        "block.chainid",
	asm.SELFBALANCE:    "address(this).balance",
	asm.BASEFEE:        "block.basefee",
	asm.BLOBBASEFEE:    "block.blobbasefee",
	asm.MSIZE:          "msize()",
	asm.GAS:            "gasleft()",
}

var unaryFns = map[asm.OpCode]string{
	asm.BALANCE:     "balance",
	asm.EXTCODESIZE: "extcodesize",
	asm.EXTCODEHASH: "extcodehash",
	asm.BLOCKHASH:   "blockhash",
	asm.BLOBHASH:    "blobhash",
}

// exec applies one instruction to st. A returned error is a per-branch
// failure that the caller turns into a Throw.
func (e *Engine) exec(st *State, op *asm.Opcode, pc int, j job) error {
	if st.halted {
		panic(fmt.Sprintf("engine invariant: exec of %s at pc %d on a halted state", op.Op, pc))
	}
	debugTrace("Exec", "pc", pc, "offset", op.Offset, "op", op.Op, "stack", st.Stack.Len())

	stack := st.Stack
	switch code := op.Op; {
	case code == asm.STOP:
		st.Halt(&ast.Stop{})

	case code == asm.ADD, code == asm.MUL, code == asm.SUB, code == asm.DIV, code == asm.SDIV,
		code == asm.MOD, code == asm.SMOD, code == asm.EXP, code == asm.SIGNEXTEND,
		code == asm.LT, code == asm.GT, code == asm.SLT, code == asm.SGT, code == asm.EQ,
		code == asm.AND, code == asm.OR, code == asm.XOR, code == asm.BYTE:
		args, err := stack.PopN(2)
		if err != nil {
			return err
		}
		return stack.Push(ast.NewBinary(binaryOps[code], args[0], args[1]))

	case code == asm.SHL, code == asm.SHR, code == asm.SAR:
		// Operands are shift then value; nodes store value first.
		args, err := stack.PopN(2)
		if err != nil {
			return err
		}
		return stack.Push(ast.NewBinary(shiftOps[code], args[1], args[0]))

	case code == asm.ADDMOD || code == asm.MULMOD:
		args, err := stack.PopN(3)
		if err != nil {
			return err
		}
		name := "addmod"
		if code == asm.MULMOD {
			name = "mulmod"
		}
		return stack.Push(ast.NewFn(name, args...))

	case code == asm.ISZERO:
		x, err := stack.Pop()
		if err != nil {
			return err
		}
		return stack.Push(ast.NewIsZero(x))

	case code == asm.NOT:
		x, err := stack.Pop()
		if err != nil {
			return err
		}
		return stack.Push(ast.NewNot(x))

	case code == asm.KECCAK256:
		args, err := stack.PopN(2)
		if err != nil {
			return err
		}
		h := &ast.Sha3{Offset: args[0], Size: args[1]}
		if size, ok := constOffset(args[1]); ok && size%32 == 0 {
			h.Args = e.memWords(st, args[0], args[1])
		}
		return stack.Push(h)

	case code == asm.ADDRESS, code == asm.ORIGIN, code == asm.CALLER, code == asm.CALLDATASIZE,
		code == asm.CODESIZE, code == asm.GASPRICE, code == asm.RETURNDATASIZE, code == asm.COINBASE,
		code == asm.TIMESTAMP, code == asm.NUMBER, code == asm.PREVRANDAO, code == asm.GASLIMIT,
		code == asm.CHAINID, code == asm.SELFBALANCE, code == asm.BASEFEE, code == asm.BLOBBASEFEE,
		code == asm.MSIZE, code == asm.GAS:
		return stack.Push(&ast.Prop{Name: props[code]})

	case code == asm.BALANCE, code == asm.EXTCODESIZE, code == asm.EXTCODEHASH, code == asm.BLOCKHASH, code == asm.BLOBHASH:
		x, err := stack.Pop()
		if err != nil {
			return err
		}
		return stack.Push(ast.NewFn(unaryFns[code], x))

	case code == asm.CALLVALUE:
		return stack.Push(&ast.CallValue{})

	case code == asm.CALLDATALOAD:
		x, err := stack.Pop()
		if err != nil {
			return err
		}
		return stack.Push(ast.NewCallDataLoad(x))

	case code == asm.CALLDATACOPY:
		args, err := stack.PopN(3)
		if err != nil {
			return err
		}
		off := args[1]
		e.copyWords(st, args[0], args[2], func(i uint64) ast.Expr {
			return ast.NewCallDataLoad(ast.NewAdd(off, ast.Uint64(32*i)))
		})

	case code == asm.CODECOPY:
		args, err := stack.PopN(3)
		if err != nil {
			return err
		}
		off, size := args[1], args[2]
		e.copyWords(st, args[0], size, func(i uint64) ast.Expr {
			if start, ok := constOffset(off); ok {
				return ast.NewVal(codeWord(e.Program.Code, start+32*i))
			}
			return &ast.DataCopy{Source: "code", Offset: ast.NewAdd(off, ast.Uint64(32*i)), Size: size}
		})

	case code == asm.EXTCODECOPY:
		args, err := stack.PopN(4)
		if err != nil {
			return err
		}
		addr, off, size := args[0], args[2], args[3]
		e.copyWords(st, args[1], size, func(i uint64) ast.Expr {
			return &ast.DataCopy{Source: "extcode", Address: addr, Offset: ast.NewAdd(off, ast.Uint64(32*i)), Size: size}
		})

	case code == asm.RETURNDATACOPY:
		args, err := stack.PopN(3)
		if err != nil {
			return err
		}
		off := args[1]
		e.copyWords(st, args[0], args[2], func(i uint64) ast.Expr {
			return &ast.ReturnData{Offset: ast.NewAdd(off, ast.Uint64(32*i)), Size: ast.Uint64(32)}
		})

	case code == asm.MCOPY:
		args, err := stack.PopN(3)
		if err != nil {
			return err
		}
		// Read the whole source before writing, the ranges may overlap.
		src := e.memWords(st, args[1], args[2])
		e.copyWords(st, args[0], args[2], func(i uint64) ast.Expr {
			if src != nil && i < uint64(len(src)) {
				return src[i]
			}
			return &ast.DataCopy{Source: "memory", Offset: ast.NewAdd(args[1], ast.Uint64(32*i)), Size: args[2]}
		})

	case code == asm.POP:
		_, err := stack.Pop()
		return err

	case code == asm.MLOAD:
		x, err := stack.Pop()
		if err != nil {
			return err
		}
		return stack.Push(st.Memory.Load(x))

	case code == asm.MSTORE || code == asm.MSTORE8:
		args, err := stack.PopN(2)
		if err != nil {
			return err
		}
		size := 32
		if code == asm.MSTORE8 {
			size = 1
		}
		st.Memory.Store(args[0], args[1], uint64(size))
		st.emit(&ast.MStore{Offset: args[0], Value: args[1], Size: size})

	case code == asm.SLOAD:
		x, err := stack.Pop()
		if err != nil {
			return err
		}
		return stack.Push(e.Tables.Load(x))

	case code == asm.SSTORE:
		args, err := stack.PopN(2)
		if err != nil {
			return err
		}
		st.emit(e.Tables.Store(args[0], args[1]))

	case code == asm.TLOAD:
		x, err := stack.Pop()
		if err != nil {
			return err
		}
		return stack.Push(&ast.SLoad{Slot: x, Var: -1, Transient: true})

	case code == asm.TSTORE:
		args, err := stack.PopN(2)
		if err != nil {
			return err
		}
		st.emit(&ast.SStore{Slot: args[0], Value: args[1], Var: -1, Transient: true})

	case code == asm.JUMP:
		target, err := stack.Pop()
		if err != nil {
			return err
		}
		dest, err := e.resolve(target)
		if err != nil {
			return err
		}
		st.Halt(&ast.Jump{Target: target, Dest: e.fork(st, dest, j.root)})

	case code == asm.JUMPI:
		return e.jumpi(st, pc, j)

	case code == asm.PC:
		return stack.Push(ast.Uint64(uint64(op.Offset)))

	case code == asm.JUMPDEST:
		// Only reached at the start of a block.

	case code == asm.PUSH0:
		return stack.Push(ast.NewPush(new(uint256.Int), e.jumpTag(new(uint256.Int))))

	case code.IsPush():
		v := op.Value()
		return stack.Push(ast.NewPush(v, e.jumpTag(v)))

	case code.IsDup():
		if err := stack.Dup(int(code-asm.DUP1) + 1); err != nil {
			return err
		}
		if l, ok := stack.data[len(stack.data)-1].(*ast.Local); ok {
			l.Refs++
		}

	case code.IsSwap():
		return stack.Swap(int(code-asm.SWAP1) + 1)

	case code.IsLog():
		n := int(code - asm.LOG0)
		args, err := stack.PopN(2 + n)
		if err != nil {
			return err
		}
		st.emit(&ast.Log{
			Offset: args[0],
			Size:   args[1],
			Topics: args[2:],
			Args:   e.memWords(st, args[0], args[1]),
		})

	case code == asm.CREATE || code == asm.CREATE2:
		n := 3
		if code == asm.CREATE2 {
			n = 4
		}
		args, err := stack.PopN(n)
		if err != nil {
			return err
		}
		c := &ast.CreateExpr{Value: args[0], Offset: args[1], Size: args[2]}
		if code == asm.CREATE2 {
			c.Salt = args[3]
		}
		return stack.Push(e.local(st, c))

	case code == asm.CALL || code == asm.CALLCODE || code == asm.DELEGATECALL || code == asm.STATICCALL:
		return e.call(st, code)

	case code == asm.RETURN:
		args, err := stack.PopN(2)
		if err != nil {
			return err
		}
		st.Halt(&ast.Return{Offset: args[0], Size: args[1], Args: e.memWords(st, args[0], args[1])})

	case code == asm.REVERT:
		args, err := stack.PopN(2)
		if err != nil {
			return err
		}
		r := &ast.Revert{Offset: args[0], Size: args[1], Args: e.memWords(st, args[0], args[1])}
		r.Selector, r.Reason = revertInfo(st.Memory, args[0], args[1])
		st.Halt(r)

	case code == asm.SELFDESTRUCT:
		x, err := stack.Pop()
		if err != nil {
			return err
		}
		st.Halt(&ast.SelfDestruct{Beneficiary: x})

	default:
		// INVALID and every undefined byte.
		st.Halt(&ast.Invalid{Op: byte(code)})
	}
	return nil
}

func (e *Engine) jumpi(st *State, pc int, j job) error {
	args, err := st.Stack.PopN(2)
	if err != nil {
		return err
	}
	target, cond := args[0], args[1]
	if c, ok := cond.(*ast.Val); ok && c.Value.IsZero() {
		fall := e.fork(st, pc+1, j.root)
		st.Halt(&ast.Jumpi{Cond: cond, Target: target, Fall: &fall})
		return nil
	}
	dest, err := e.resolve(target)
	if err != nil {
		return err
	}
	switch c := cond.(type) {
	case *ast.Val:
		taken := e.fork(st, dest, j.root)
		st.Halt(&ast.Jumpi{Cond: cond, Target: target, Dest: &taken})
	case *ast.Sig:
		// A negated comparison jumps away from the function body.
		entry, next := dest, pc+1
		if !c.Positive {
			entry, next = pc+1, dest
		}
		sig := &ast.Sig{Selector: c.Selector, Positive: true}
		st.Halt(&ast.SigCase{
			Sig:   sig,
			Entry: e.discover(st, sig.Selector, entry),
			Fall:  e.fork(st, next, j.root),
		})
	default:
		taken := e.fork(st, dest, j.root)
		fall := e.fork(st, pc+1, j.root)
		st.Halt(&ast.Jumpi{Cond: cond, Target: target, Dest: &taken, Fall: &fall})
	}
	return nil
}

func (e *Engine) resolve(target ast.Expr) (int, error) {
	v, ok := target.(*ast.Val)
	if !ok {
		return 0, ErrJumpNotConst
	}
	if !v.Value.IsUint64() {
		return 0, ErrInvalidJumpDest
	}
	pc, ok := e.Program.Resolve(v.Value.Uint64())
	if !ok {
		return 0, ErrInvalidJumpDest
	}
	return pc, nil
}

func (e *Engine) jumpTag(v *uint256.Int) int {
	if !v.IsUint64() {
		return ast.NoJumpDest
	}
	if pc, ok := e.Program.Resolve(v.Uint64()); ok {
		return pc
	}
	return ast.NoJumpDest
}

func (e *Engine) local(st *State, value ast.Expr) *ast.Local {
	e.locals++
	l := &ast.Local{ID: e.locals, Value: value}
	st.emit(&ast.Locali{Local: l})
	return l
}

func (e *Engine) call(st *State, code asm.OpCode) error {
	withValue := code == asm.CALL || code == asm.CALLCODE
	n := 6
	if withValue {
		n = 7
	}
	args, err := st.Stack.PopN(n)
	if err != nil {
		return err
	}
	c := &ast.CallExpr{Gas: args[0], Address: args[1]}
	if withValue {
		c.Value = args[2]
		args = args[1:]
	}
	c.ArgsOffset, c.ArgsSize, c.RetOffset, c.RetSize = args[2], args[3], args[4], args[5]
	switch code {
	case asm.CALL:
		c.Kind = ast.Call
	case asm.CALLCODE:
		c.Kind = ast.CallCode
	case asm.DELEGATECALL:
		c.Kind = ast.DelegateCall
	default:
		c.Kind = ast.StaticCall
	}
	l := e.local(st, c)
	e.copyWords(st, c.RetOffset, c.RetSize, func(i uint64) ast.Expr {
		return &ast.ReturnData{Offset: ast.Uint64(32 * i), Size: ast.Uint64(32)}
	})
	return st.Stack.Push(l)
}

// wordCount returns the number of words covering size bytes, or false if
// size is not constant or too large to materialize.
func wordCount(size ast.Expr) (uint64, bool) {
	n, ok := constOffset(size)
	if !ok {
		return 0, false
	}
	words := (n + 31) / 32
	return words, words <= maxArgWords
}

// memWords reads the words of a constant memory range. It returns nil
// when the range is not constant.
func (e *Engine) memWords(st *State, offset, size ast.Expr) []ast.Expr {
	off, ok := constOffset(offset)
	if !ok {
		return nil
	}
	n, ok := wordCount(size)
	if !ok {
		return nil
	}
	words := make([]ast.Expr, 0, n)
	for i := uint64(0); i < n; i++ {
		words = append(words, st.Memory.Load(ast.Uint64(off+32*i)))
	}
	return words
}

// copyWords stores word(i) at dest+32i for every word of a constant copy.
func (e *Engine) copyWords(st *State, dest, size ast.Expr, word func(i uint64) ast.Expr) {
	off, ok := constOffset(dest)
	if !ok {
		return
	}
	n, ok := wordCount(size)
	if !ok {
		return
	}
	for i := uint64(0); i < n; i++ {
		st.Memory.Store(ast.Uint64(off+32*i), word(i), 32)
	}
}

func codeWord(code []byte, off uint64) *uint256.Int {
	var w [32]byte
	if off < uint64(len(code)) {
		copy(w[:], code[off:])
	}
	return new(uint256.Int).SetBytes(w[:])
}

const errorStringSelector = "08c379a0"

// revertInfo extracts the custom error selector and, for Error(string),
// the reason text from a revert payload held in constant memory.
func revertInfo(mem *Memory, offset, size ast.Expr) (selector, reason string) {
	off, ok := constOffset(offset)
	if !ok {
		return "", ""
	}
	n, ok := constOffset(size)
	if !ok || n < 4 {
		return "", ""
	}
	sel, ok := mem.Bytes(off, 4)
	if !ok {
		return "", ""
	}
	selector = hex.EncodeToString(sel)
	if selector != errorStringSelector || n < 68 {
		return selector, ""
	}
	head, ok := mem.Bytes(off+4, 64)
	if !ok {
		return selector, ""
	}
	strOff := new(uint256.Int).SetBytes(head[:32])
	length := new(uint256.Int).SetBytes(head[32:])
	if !strOff.Eq(uint256.NewInt(32)) || !length.LtUint64(n-68+1) || !length.LtUint64(maxBytes+1) {
		return selector, ""
	}
	text, ok := mem.Bytes(off+68, length.Uint64())
	if !ok {
		return selector, ""
	}
	return selector, string(text)
}
