package ast

import (
	"fmt"

	"github.com/holiman/uint256"
)

var (
	selectorDivisor = new(uint256.Int).Lsh(uint256.NewInt(1), 224)
	selectorShift   = uint256.NewInt(0xe0)
)

func constOf(e Expr) (*uint256.Int, bool) {
	if v, ok := e.(*Val); ok {
		return &v.Value, true
	}
	return nil, false
}

func isConst(e Expr, n uint64) bool {
	v, ok := constOf(e)
	return ok && v.IsUint64() && v.Uint64() == n
}

// isMask reports whether v is 2^n-1 for n a positive multiple of 8.
func isMask(v *uint256.Int) bool {
	if v.IsZero() || v.BitLen()%8 != 0 {
		return false
	}
	next := new(uint256.Int).AddUint64(v, 1)
	return next.And(next, v).IsZero()
}

func evalOpt(e Expr) Expr {
	if e == nil {
		return nil
	}
	return e.Eval()
}

func evalAll(xs []Expr) ([]Expr, bool) {
	var out []Expr
	for i, x := range xs {
		y := x.Eval()
		if y != x && out == nil {
			out = make([]Expr, len(xs))
			copy(out, xs[:i])
		}
		if out != nil {
			out[i] = y
		}
	}
	if out == nil {
		return xs, false
	}
	return out, true
}

func (v *Val) Eval() Expr { return v }

func (e *BinaryExpr) Eval() Expr {
	x, y := e.X.Eval(), e.Y.Eval()
	if r := simplifyBinary(e.Op, x, y); r != nil {
		return r
	}
	if x == e.X && y == e.Y {
		return e
	}
	return &BinaryExpr{Op: e.Op, X: x, Y: y}
}

// foldBinary computes op over two constants. Division and modulo by zero
// are left alone so the node stays visible.
func foldBinary(op BinaryOp, a, b *uint256.Int) (*uint256.Int, bool) {
	z := new(uint256.Int)
	switch op {
	case ADD:
		z.Add(a, b)
	case MUL:
		z.Mul(a, b)
	case SUB:
		z.Sub(a, b)
	case DIV, SDIV, MOD, SMOD:
		if b.IsZero() {
			return nil, false
		}
		switch op {
		case DIV:
			z.Div(a, b)
		case SDIV:
			z.SDiv(a, b)
		case MOD:
			z.Mod(a, b)
		default:
			z.SMod(a, b)
		}
	case EXP:
		z.Exp(a, b)
	case SIGNEXTEND:
		z.ExtendSign(b, a)
	case LT:
		return boolWord(a.Lt(b)), true
	case GT:
		return boolWord(a.Gt(b)), true
	case LE:
		return boolWord(!a.Gt(b)), true
	case GE:
		return boolWord(!a.Lt(b)), true
	case SLT:
		return boolWord(a.Slt(b)), true
	case SGT:
		return boolWord(a.Sgt(b)), true
	case SLE:
		return boolWord(!a.Sgt(b)), true
	case SGE:
		return boolWord(!a.Slt(b)), true
	case EQ:
		return boolWord(a.Eq(b)), true
	case AND:
		z.And(a, b)
	case OR:
		z.Or(a, b)
	case XOR:
		z.Xor(a, b)
	case SHL:
		if b.LtUint64(256) {
			z.Lsh(a, uint(b.Uint64()))
		}
	case SHR:
		if b.LtUint64(256) {
			z.Rsh(a, uint(b.Uint64()))
		}
	case SAR:
		if b.LtUint64(256) {
			z.SRsh(a, uint(b.Uint64()))
		} else if a.Sign() < 0 {
			z.SetAllOne()
		}
	case BYTE:
		z.Set(b)
		z.Byte(a)
	default:
		return nil, false
	}
	return z, true
}

func boolWord(b bool) *uint256.Int {
	if b {
		return uint256.NewInt(1)
	}
	return new(uint256.Int)
}

func simplifyBinary(op BinaryOp, x, y Expr) Expr {
	a, aok := constOf(x)
	b, bok := constOf(y)
	if aok && bok {
		if z, ok := foldBinary(op, a, b); ok {
			return NewVal(z)
		}
		return nil
	}
	switch op {
	case ADD:
		if isConst(x, 0) {
			return y
		}
		if isConst(y, 0) {
			return x
		}
	case MUL:
		if isConst(x, 0) || isConst(y, 0) {
			return Uint64(0)
		}
		if isConst(x, 1) {
			return y
		}
		if isConst(y, 1) {
			return x
		}
	case SUB:
		if isConst(y, 0) {
			return x
		}
	case DIV:
		if isConst(y, 1) {
			return x
		}
	case EQ:
		if sig := matchSelector(x, y); sig != nil {
			return sig
		}
		if sig := matchSelector(y, x); sig != nil {
			return sig
		}
	case AND:
		if aok && isMask(a) {
			return y
		}
		if bok && isMask(b) {
			return x
		}
		// k & (k & y) collapses to the inner k & y, not to y, which may
		// carry bits outside k.
		if inner, ok := y.(*BinaryExpr); ok && inner.Op == AND && aok {
			if k, ok := constOf(inner.X); ok && k.Eq(a) {
				return inner
			}
		}
		if inner, ok := x.(*BinaryExpr); ok && inner.Op == AND && bok {
			if k, ok := constOf(inner.Y); ok && k.Eq(b) {
				return inner
			}
		}
	case OR, XOR:
		if isConst(x, 0) {
			return y
		}
		if isConst(y, 0) {
			return x
		}
	case SHL, SHR, SAR:
		if isConst(y, 0) {
			return x
		}
	}
	return nil
}

// matchSelector recognizes k == calldata[0] >> 224 in its DIV and SHR
// spellings.
func matchSelector(k, other Expr) *Sig {
	sel, ok := constOf(k)
	if !ok || sel.BitLen() > 32 {
		return nil
	}
	bin, ok := other.(*BinaryExpr)
	if !ok {
		return nil
	}
	load, ok := bin.X.(*CallDataLoad)
	if !ok || !isConst(load.Offset, 0) {
		return nil
	}
	shift, ok := constOf(bin.Y)
	if !ok {
		return nil
	}
	switch {
	case bin.Op == DIV && shift.Eq(selectorDivisor):
	case bin.Op == SHR && shift.Eq(selectorShift):
	default:
		return nil
	}
	return &Sig{Selector: fmt.Sprintf("%08x", sel.Uint64()), Positive: true}
}

func (e *NotExpr) Eval() Expr {
	x := e.X.Eval()
	if v, ok := constOf(x); ok {
		return NewVal(new(uint256.Int).Not(v))
	}
	if inner, ok := x.(*NotExpr); ok {
		return inner.X
	}
	if x == e.X {
		return e
	}
	return &NotExpr{X: x}
}

func (e *IsZeroExpr) Eval() Expr {
	x := e.X.Eval()
	switch x := x.(type) {
	case *Val:
		return boolVal(x.Value.IsZero())
	case *IsZeroExpr:
		return x.X
	case *Sig:
		return &Sig{Selector: x.Selector, Positive: !x.Positive}
	case *BinaryExpr:
		if op, ok := x.Op.negate(); ok {
			return &BinaryExpr{Op: op, X: x.X, Y: x.Y}
		}
	}
	if x == e.X {
		return e
	}
	return &IsZeroExpr{X: x}
}

func (e *CallValue) Eval() Expr { return e }
func (e *Prop) Eval() Expr      { return e }
func (e *Sig) Eval() Expr       { return e }

// Eval of a Local is the Local itself: the wrapped value was evaluated
// when the local was introduced.
func (e *Local) Eval() Expr { return e }

func (e *CallDataLoad) Eval() Expr {
	if off := e.Offset.Eval(); off != e.Offset {
		return &CallDataLoad{Offset: off}
	}
	return e
}

func (e *Fn) Eval() Expr {
	args, changed := evalAll(e.Args)
	if len(args) == 3 && (e.Name == "addmod" || e.Name == "mulmod") {
		a, aok := constOf(args[0])
		b, bok := constOf(args[1])
		m, mok := constOf(args[2])
		if aok && bok && mok && !m.IsZero() {
			z := new(uint256.Int)
			if e.Name == "addmod" {
				z.AddMod(a, b, m)
			} else {
				z.MulMod(a, b, m)
			}
			return NewVal(z)
		}
	}
	if !changed {
		return e
	}
	return &Fn{Name: e.Name, Args: args}
}

func (e *MLoad) Eval() Expr {
	if off := e.Offset.Eval(); off != e.Offset {
		return &MLoad{Offset: off}
	}
	return e
}

func (e *Sha3) Eval() Expr {
	off, size := e.Offset.Eval(), e.Size.Eval()
	args, changed := evalAll(e.Args)
	if !changed && off == e.Offset && size == e.Size {
		return e
	}
	return &Sha3{Offset: off, Size: size, Args: args}
}

func (e *DataCopy) Eval() Expr {
	addr, off, size := evalOpt(e.Address), e.Offset.Eval(), e.Size.Eval()
	if addr == e.Address && off == e.Offset && size == e.Size {
		return e
	}
	return &DataCopy{Source: e.Source, Address: addr, Offset: off, Size: size}
}

func (e *SLoad) Eval() Expr {
	if slot := e.Slot.Eval(); slot != e.Slot {
		return &SLoad{Slot: slot, Var: e.Var, Transient: e.Transient}
	}
	return e
}

func (e *MappingLoad) Eval() Expr {
	keys, changed := evalAll(e.Keys)
	slot := e.Slot.Eval()
	if !changed && slot == e.Slot {
		return e
	}
	return &MappingLoad{Slot: slot, Mapping: e.Mapping, Keys: keys, Offset: e.Offset, Fields: e.Fields}
}

func (e *CallExpr) Eval() Expr {
	n := &CallExpr{
		Kind:       e.Kind,
		Gas:        e.Gas.Eval(),
		Address:    e.Address.Eval(),
		Value:      evalOpt(e.Value),
		ArgsOffset: e.ArgsOffset.Eval(),
		ArgsSize:   e.ArgsSize.Eval(),
		RetOffset:  e.RetOffset.Eval(),
		RetSize:    e.RetSize.Eval(),
	}
	if *n == *e {
		return e
	}
	return n
}

func (e *CreateExpr) Eval() Expr {
	n := &CreateExpr{
		Value:  e.Value.Eval(),
		Offset: e.Offset.Eval(),
		Size:   e.Size.Eval(),
		Salt:   evalOpt(e.Salt),
	}
	if *n == *e {
		return e
	}
	return n
}

func (e *ReturnData) Eval() Expr {
	off, size := e.Offset.Eval(), e.Size.Eval()
	if off == e.Offset && size == e.Size {
		return e
	}
	return &ReturnData{Offset: off, Size: size}
}
