package ast

import (
	"fmt"
	"strings"
)

// SprintStmt renders the one-line form of a statement. If statements print
// only their header.
func SprintStmt(s Stmt, n Namer) string {
	switch s := s.(type) {
	case *MStore:
		if s.Size == 1 {
			return fmt.Sprintf("memory8[%s] = %s", Sprint(s.Offset, n), Sprint(s.Value, n))
		}
		return fmt.Sprintf("memory[%s] = %s", Sprint(s.Offset, n), Sprint(s.Value, n))
	case *Log:
		name := s.Event
		if name == "" {
			name = fmt.Sprintf("log%d", len(s.Topics))
		}
		return fmt.Sprintf("emit %s(%s)", name, joinArgs(append(append([]Expr{}, s.Topics...), argsOrRange(s.Args, s.Offset, s.Size)...), n))
	case *SStore:
		lhs := Sprint(&SLoad{Slot: s.Slot, Var: s.Var, Transient: s.Transient}, n)
		return fmt.Sprintf("%s = %s", lhs, Sprint(s.Value, n))
	case *MappingStore:
		var b strings.Builder
		fprintMapping(&b, s.Mapping, s.Keys, s.Fields, &s.Offset, n)
		return fmt.Sprintf("%s = %s", b.String(), Sprint(s.Value, n))
	case *Return:
		return fmt.Sprintf("return(%s)", joinArgs(argsOrRange(s.Args, s.Offset, s.Size), n))
	case *Revert:
		if s.Reason != "" {
			return fmt.Sprintf("revert(%q)", s.Reason)
		}
		return fmt.Sprintf("revert(%s)", joinArgs(argsOrRange(s.Args, s.Offset, s.Size), n))
	case *Stop:
		return "stop"
	case *Invalid:
		return fmt.Sprintf("invalid(0x%02x)", s.Op)
	case *SelfDestruct:
		return fmt.Sprintf("selfdestruct(%s)", Sprint(s.Beneficiary, n))
	case *Jump:
		return fmt.Sprintf("goto pc%d", s.Dest.PC)
	case *Jumpi:
		return fmt.Sprintf("if %s goto %s", Sprint(s.Cond, n), Sprint(s.Target, n))
	case *JumpDest:
		return fmt.Sprintf("fallthrough pc%d", s.Fall.PC)
	case *SigCase:
		return fmt.Sprintf("case 0x%s goto pc%d", s.Sig.Selector, s.Entry.PC)
	case *Throw:
		return fmt.Sprintf("throw(%q) at %s 0x%x", s.Reason, s.Op, s.Offset)
	case *Locali:
		return fmt.Sprintf("local%d = %s", s.Local.ID, Sprint(s.Local.Value, n))
	case *If:
		return fmt.Sprintf("if (%s)", Sprint(s.Cond, n))
	case *Require:
		if s.Reason != "" {
			return fmt.Sprintf("require(%s, %q)", Sprint(s.Cond, n), s.Reason)
		}
		if len(s.Args) > 0 {
			return fmt.Sprintf("require(%s, %s)", Sprint(s.Cond, n), joinArgs(s.Args, n))
		}
		return fmt.Sprintf("require(%s)", Sprint(s.Cond, n))
	case *CallSite:
		return fmt.Sprintf("call 0x%s()", s.Selector)
	}
	panic(fmt.Sprintf("ast: unknown statement %T", s))
}

func argsOrRange(args []Expr, off, size Expr) []Expr {
	if args != nil {
		return args
	}
	if off == nil {
		return nil
	}
	return []Expr{&MLoad{Offset: off}, size}
}

func joinArgs(xs []Expr, n Namer) string {
	return sprintList(xs, n)
}
