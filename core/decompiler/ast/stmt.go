package ast

func (*If) stmt()       {}
func (*Require) stmt()  {}
func (*CallSite) stmt() {}

// If runs Then when Cond holds and Else otherwise.
type If struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// Require reverts with Args (and Reason) unless Cond holds.
type Require struct {
	Cond   Expr
	Args   []Expr
	Reason string
}

// CallSite stands for the body of the external function Selector.
type CallSite struct {
	Selector string
}
