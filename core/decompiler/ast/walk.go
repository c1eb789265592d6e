package ast

// Children returns the direct operands of e.
func Children(e Expr) []Expr {
	switch e := e.(type) {
	case *BinaryExpr:
		return []Expr{e.X, e.Y}
	case *NotExpr:
		return []Expr{e.X}
	case *IsZeroExpr:
		return []Expr{e.X}
	case *CallDataLoad:
		return []Expr{e.Offset}
	case *Fn:
		return e.Args
	case *MLoad:
		return []Expr{e.Offset}
	case *Sha3:
		if e.Args != nil {
			return e.Args
		}
		return []Expr{e.Offset, e.Size}
	case *DataCopy:
		if e.Address != nil {
			return []Expr{e.Address, e.Offset, e.Size}
		}
		return []Expr{e.Offset, e.Size}
	case *SLoad:
		return []Expr{e.Slot}
	case *MappingLoad:
		return e.Keys
	case *CallExpr:
		out := []Expr{e.Gas, e.Address}
		if e.Value != nil {
			out = append(out, e.Value)
		}
		return append(out, e.ArgsOffset, e.ArgsSize, e.RetOffset, e.RetSize)
	case *CreateExpr:
		out := []Expr{e.Value, e.Offset, e.Size}
		if e.Salt != nil {
			out = append(out, e.Salt)
		}
		return out
	case *ReturnData:
		return []Expr{e.Offset, e.Size}
	}
	return nil
}

// Inspect walks e depth first, calling f for every node. Children are
// skipped when f returns false. Locals are not entered.
func Inspect(e Expr, f func(Expr) bool) {
	if e == nil || !f(e) {
		return
	}
	for _, c := range Children(e) {
		Inspect(c, f)
	}
}

// Contains reports whether any node of e satisfies pred.
func Contains(e Expr, pred func(Expr) bool) bool {
	found := false
	Inspect(e, func(x Expr) bool {
		if found {
			return false
		}
		if pred(x) {
			found = true
			return false
		}
		return true
	})
	return found
}

// WalkStmts calls f for every statement of list in order, descending
// into If bodies after the If itself. Returning false skips the bodies.
func WalkStmts(list []Stmt, f func(Stmt) bool) {
	for _, s := range list {
		if !f(s) {
			continue
		}
		if s, ok := s.(*If); ok {
			WalkStmts(s.Then, f)
			WalkStmts(s.Else, f)
		}
	}
}
