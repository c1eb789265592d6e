// Package ast holds the value and statement language produced by the
// symbolic execution engine. Expressions are immutable once built; every
// constructor returns the evaluated (simplified) form of the node.
package ast

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Expr is a side-effect free symbolic value. The set of implementations is
// closed; code switching over Expr should panic on an unknown node.
type Expr interface {
	// Eval returns the node itself or an algebraically simpler equivalent.
	// It never mutates the receiver and is idempotent.
	Eval() Expr
	String() string
	expr()
}

func (*Val) expr()          {}
func (*BinaryExpr) expr()   {}
func (*NotExpr) expr()      {}
func (*IsZeroExpr) expr()   {}
func (*CallValue) expr()    {}
func (*CallDataLoad) expr() {}
func (*Prop) expr()         {}
func (*Fn) expr()           {}
func (*MLoad) expr()        {}
func (*Sha3) expr()         {}
func (*DataCopy) expr()     {}
func (*SLoad) expr()        {}
func (*MappingLoad) expr()  {}
func (*CallExpr) expr()     {}
func (*CreateExpr) expr()   {}
func (*ReturnData) expr()   {}
func (*Sig) expr()          {}
func (*Local) expr()        {}

// NoJumpDest marks a Val that does not name a jump destination.
const NoJumpDest = -1

// Val is a concrete 256-bit word.
type Val struct {
	Value uint256.Int
	Push  bool // literal introduced by a PUSH instruction
	// JumpDest is the pc of the JUMPDEST this pushed literal points at,
	// or NoJumpDest.
	JumpDest int
}

// NewVal returns a computed (non-literal) constant.
func NewVal(v *uint256.Int) *Val {
	return &Val{Value: *v, JumpDest: NoJumpDest}
}

// Uint64 is a convenience constructor mostly used by tests and the engine
// for small immediates such as PC.
func Uint64(v uint64) *Val {
	return NewVal(uint256.NewInt(v))
}

// NewPush returns a literal introduced by a PUSH with its jump tag.
func NewPush(v *uint256.Int, jumpDest int) *Val {
	return &Val{Value: *v, Push: true, JumpDest: jumpDest}
}

func boolVal(b bool) *Val {
	if b {
		return Uint64(1)
	}
	return Uint64(0)
}

// BinaryOp enumerates the two-operand nodes.
type BinaryOp int

const (
	ADD BinaryOp = iota
	MUL
	SUB
	DIV
	SDIV
	MOD
	SMOD
	EXP
	SIGNEXTEND // X = byte index, Y = value
	LT
	GT
	LE
	GE
	SLT
	SGT
	SLE
	SGE
	EQ
	AND
	OR
	XOR
	SHL  // X = value, Y = shift
	SHR  // X = value, Y = shift
	SAR  // X = value, Y = shift
	BYTE // X = byte position, Y = value
)

var binaryOps = [...]string{
	ADD:        "+",
	MUL:        "*",
	SUB:        "-",
	DIV:        "/",
	SDIV:       "s/",
	MOD:        "%",
	SMOD:       "s%",
	EXP:        "**",
	SIGNEXTEND: "signextend",
	LT:         "<",
	GT:         ">",
	LE:         "<=",
	GE:         ">=",
	SLT:        "s<",
	SGT:        "s>",
	SLE:        "s<=",
	SGE:        "s>=",
	EQ:         "==",
	AND:        "&",
	OR:         "|",
	XOR:        "^",
	SHL:        "<<",
	SHR:        ">>",
	SAR:        "s>>",
	BYTE:       "byte",
}

func (op BinaryOp) String() string {
	if op >= 0 && int(op) < len(binaryOps) {
		return binaryOps[op]
	}
	return fmt.Sprintf("BinaryOp<%d>", int(op))
}

// IsCompare reports whether op yields a boolean.
func (op BinaryOp) IsCompare() bool {
	return op >= LT && op <= EQ
}

// negate returns the comparison that is true exactly when op is false.
func (op BinaryOp) negate() (BinaryOp, bool) {
	switch op {
	case LT:
		return GE, true
	case GE:
		return LT, true
	case GT:
		return LE, true
	case LE:
		return GT, true
	case SLT:
		return SGE, true
	case SGE:
		return SLT, true
	case SGT:
		return SLE, true
	case SLE:
		return SGT, true
	}
	return op, false
}

// BinaryExpr covers arithmetic, comparison, bitwise and shift nodes.
type BinaryExpr struct {
	Op   BinaryOp
	X, Y Expr
}

// NewBinary builds and evaluates a binary node.
func NewBinary(op BinaryOp, x, y Expr) Expr {
	return (&BinaryExpr{Op: op, X: x, Y: y}).Eval()
}

func NewAdd(x, y Expr) Expr { return NewBinary(ADD, x, y) }
func NewSub(x, y Expr) Expr { return NewBinary(SUB, x, y) }
func NewMul(x, y Expr) Expr { return NewBinary(MUL, x, y) }
func NewDiv(x, y Expr) Expr { return NewBinary(DIV, x, y) }
func NewMod(x, y Expr) Expr { return NewBinary(MOD, x, y) }
func NewExp(x, y Expr) Expr { return NewBinary(EXP, x, y) }
func NewLt(x, y Expr) Expr  { return NewBinary(LT, x, y) }
func NewGt(x, y Expr) Expr  { return NewBinary(GT, x, y) }
func NewEq(x, y Expr) Expr  { return NewBinary(EQ, x, y) }
func NewAnd(x, y Expr) Expr { return NewBinary(AND, x, y) }
func NewOr(x, y Expr) Expr  { return NewBinary(OR, x, y) }
func NewXor(x, y Expr) Expr { return NewBinary(XOR, x, y) }

// NewShr shifts value right by shift bits.
func NewShr(value, shift Expr) Expr { return NewBinary(SHR, value, shift) }

// NewShl shifts value left by shift bits.
func NewShl(value, shift Expr) Expr { return NewBinary(SHL, value, shift) }

// NotExpr is the 256-bit bitwise complement.
type NotExpr struct{ X Expr }

func NewNot(x Expr) Expr { return (&NotExpr{X: x}).Eval() }

// IsZeroExpr is the EVM ISZERO, i.e. logical negation.
type IsZeroExpr struct{ X Expr }

func NewIsZero(x Expr) Expr { return (&IsZeroExpr{X: x}).Eval() }

// CallValue is msg.value.
type CallValue struct{}

// CallDataLoad reads a calldata word.
type CallDataLoad struct{ Offset Expr }

func NewCallDataLoad(off Expr) Expr { return (&CallDataLoad{Offset: off}).Eval() }

// Prop is a context field without operands (msg.sender, block.number, ...).
type Prop struct{ Name string }

// Fn is a context query taking operands, e.g. BALANCE(addr) or
// BLOCKHASH(n). ADDMOD and MULMOD are represented here as well and fold
// when all operands are constant.
type Fn struct {
	Name string
	Args []Expr
}

func NewFn(name string, args ...Expr) Expr { return (&Fn{Name: name, Args: args}).Eval() }

// MLoad is a memory word whose content is not known.
type MLoad struct{ Offset Expr }

// Sha3 is a KECCAK256 over memory. Args holds the hashed 32-byte words
// when both offset and size were constant, nil otherwise.
type Sha3 struct {
	Offset, Size Expr
	Args         []Expr
}

// DataCopy is the word left in memory by one of the *COPY instructions.
type DataCopy struct {
	Source  string // calldata, code, extcode, returndata, memory
	Address Expr   // EXTCODECOPY only
	Offset  Expr   // source offset of this word
	Size    Expr   // size of the whole copy
}

// SLoad reads a storage slot. Var indexes the variable table for constant
// slots and is -1 when the slot could not be classified.
type SLoad struct {
	Slot      Expr
	Var       int
	Transient bool
}

// MappingLoad reads a slot recognized as mapping[keys...] (+ Offset).
type MappingLoad struct {
	Slot    Expr // original address expression
	Mapping int  // index into the mapping table
	Keys    []Expr
	Offset  uint256.Int   // struct field offset
	Fields  []uint256.Int // field offset after each key, last is Offset
}

// CallKind tells the flavours of message call apart.
type CallKind int

const (
	Call CallKind = iota
	CallCode
	DelegateCall
	StaticCall
)

var callKinds = [...]string{Call: "call", CallCode: "callcode", DelegateCall: "delegatecall", StaticCall: "staticcall"}

func (k CallKind) String() string { return callKinds[k] }

// CallExpr is the success flag of a message call.
type CallExpr struct {
	Kind       CallKind
	Gas        Expr
	Address    Expr
	Value      Expr // nil for DELEGATECALL and STATICCALL
	ArgsOffset Expr
	ArgsSize   Expr
	RetOffset  Expr
	RetSize    Expr
}

// CreateExpr is the address produced by CREATE or CREATE2.
type CreateExpr struct {
	Value, Offset, Size Expr
	Salt                Expr // nil for CREATE
}

// ReturnData is a word of the last call's return buffer.
type ReturnData struct{ Offset, Size Expr }

// Sig marks a comparison of the call's 4-byte selector. Positive is false
// for the negated form msg.sig != selector.
type Sig struct {
	Selector string // 8 lowercase hex digits
	Positive bool
}

// Local names a value produced by a side-effecting instruction so that it
// is emitted once and referenced afterwards.
type Local struct {
	ID    int
	Value Expr
	Refs  int
}
