package ast

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Namer supplies display names for storage entries. The storage tables
// implement it; a nil Namer prints raw slots.
type Namer interface {
	VariableName(index int) string
	MappingName(index int) string
}

var smallLimit = uint256.NewInt(1 << 16)

// Sprint renders an expression on a single line.
func Sprint(e Expr, n Namer) string {
	var b strings.Builder
	fprint(&b, e, n)
	return b.String()
}

func sprintList(xs []Expr, n Namer) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = Sprint(x, n)
	}
	return strings.Join(parts, ", ")
}

func fprint(b *strings.Builder, e Expr, n Namer) {
	switch e := e.(type) {
	case *Val:
		if e.Value.Lt(smallLimit) {
			b.WriteString(e.Value.Dec())
		} else {
			b.WriteString(e.Value.Hex())
		}
	case *BinaryExpr:
		switch e.Op {
		case BYTE, SIGNEXTEND:
			fmt.Fprintf(b, "%s(%s, %s)", e.Op, Sprint(e.X, n), Sprint(e.Y, n))
		default:
			fmt.Fprintf(b, "(%s %s %s)", Sprint(e.X, n), e.Op, Sprint(e.Y, n))
		}
	case *NotExpr:
		fmt.Fprintf(b, "~%s", Sprint(e.X, n))
	case *IsZeroExpr:
		fmt.Fprintf(b, "!%s", Sprint(e.X, n))
	case *CallValue:
		b.WriteString("msg.value")
	case *CallDataLoad:
		fmt.Fprintf(b, "calldata[%s]", Sprint(e.Offset, n))
	case *Prop:
		b.WriteString(e.Name)
	case *Fn:
		fmt.Fprintf(b, "%s(%s)", e.Name, sprintList(e.Args, n))
	case *MLoad:
		fmt.Fprintf(b, "memory[%s]", Sprint(e.Offset, n))
	case *Sha3:
		if e.Args != nil {
			fmt.Fprintf(b, "keccak256(%s)", sprintList(e.Args, n))
		} else {
			fmt.Fprintf(b, "keccak256(memory[%s:+%s])", Sprint(e.Offset, n), Sprint(e.Size, n))
		}
	case *DataCopy:
		if e.Address != nil {
			fmt.Fprintf(b, "%s(%s)[%s]", e.Source, Sprint(e.Address, n), Sprint(e.Offset, n))
		} else {
			fmt.Fprintf(b, "%s[%s]", e.Source, Sprint(e.Offset, n))
		}
	case *SLoad:
		switch {
		case e.Transient:
			fmt.Fprintf(b, "transient[%s]", Sprint(e.Slot, n))
		case e.Var >= 0 && n != nil:
			b.WriteString(n.VariableName(e.Var))
		default:
			fmt.Fprintf(b, "storage[%s]", Sprint(e.Slot, n))
		}
	case *MappingLoad:
		fprintMapping(b, e.Mapping, e.Keys, e.Fields, &e.Offset, n)
	case *CallExpr:
		args := []Expr{e.Gas, e.Address}
		if e.Value != nil {
			args = append(args, e.Value)
		}
		fmt.Fprintf(b, "%s(%s, memory[%s:+%s])", e.Kind, sprintList(args, n), Sprint(e.ArgsOffset, n), Sprint(e.ArgsSize, n))
	case *CreateExpr:
		if e.Salt != nil {
			fmt.Fprintf(b, "create2(%s, memory[%s:+%s], %s)", Sprint(e.Value, n), Sprint(e.Offset, n), Sprint(e.Size, n), Sprint(e.Salt, n))
		} else {
			fmt.Fprintf(b, "create(%s, memory[%s:+%s])", Sprint(e.Value, n), Sprint(e.Offset, n), Sprint(e.Size, n))
		}
	case *ReturnData:
		fmt.Fprintf(b, "returndata[%s:+%s]", Sprint(e.Offset, n), Sprint(e.Size, n))
	case *Sig:
		if e.Positive {
			fmt.Fprintf(b, "msg.sig == 0x%s", e.Selector)
		} else {
			fmt.Fprintf(b, "msg.sig != 0x%s", e.Selector)
		}
	case *Local:
		fmt.Fprintf(b, "local%d", e.ID)
	default:
		panic(fmt.Sprintf("ast: unknown expression %T", e))
	}
}

func fprintMapping(b *strings.Builder, index int, keys []Expr, fields []uint256.Int, offset *uint256.Int, n Namer) {
	if n != nil {
		b.WriteString(n.MappingName(index))
	} else {
		fmt.Fprintf(b, "mapping%d", index)
	}
	for i, k := range keys {
		fmt.Fprintf(b, "[%s]", Sprint(k, n))
		if i < len(keys)-1 && i < len(fields) && !fields[i].IsZero() {
			fmt.Fprintf(b, ".field%s", fields[i].Dec())
		}
	}
	if !offset.IsZero() {
		fmt.Fprintf(b, ".field%s", offset.Dec())
	}
}

func (e *Val) String() string          { return Sprint(e, nil) }
func (e *BinaryExpr) String() string   { return Sprint(e, nil) }
func (e *NotExpr) String() string      { return Sprint(e, nil) }
func (e *IsZeroExpr) String() string   { return Sprint(e, nil) }
func (e *CallValue) String() string    { return Sprint(e, nil) }
func (e *CallDataLoad) String() string { return Sprint(e, nil) }
func (e *Prop) String() string         { return Sprint(e, nil) }
func (e *Fn) String() string           { return Sprint(e, nil) }
func (e *MLoad) String() string        { return Sprint(e, nil) }
func (e *Sha3) String() string         { return Sprint(e, nil) }
func (e *DataCopy) String() string     { return Sprint(e, nil) }
func (e *SLoad) String() string        { return Sprint(e, nil) }
func (e *MappingLoad) String() string  { return Sprint(e, nil) }
func (e *CallExpr) String() string     { return Sprint(e, nil) }
func (e *CreateExpr) String() string   { return Sprint(e, nil) }
func (e *ReturnData) String() string   { return Sprint(e, nil) }
func (e *Sig) String() string          { return Sprint(e, nil) }
func (e *Local) String() string        { return Sprint(e, nil) }
