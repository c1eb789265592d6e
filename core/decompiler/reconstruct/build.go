// Package reconstruct folds the branch graph recorded by the engine back
// into nested statements.
package reconstruct

import (
	"github.com/bnb-chain/evmdecompiler/core/decompiler/ast"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/engine"
	mapset "github.com/deckarep/golang-set/v2"
)

// Builder walks the states reachable from one root. A state handle is
// expanded at most once; a revisit yields no statements.
type Builder struct {
	arena   *engine.Arena
	visited mapset.Set[ast.StateID]
}

// Build reconstructs the statement tree rooted at the state root.
func Build(arena *engine.Arena, root ast.StateID) []ast.Stmt {
	b := &Builder{
		arena:   arena,
		visited: mapset.NewThreadUnsafeSet[ast.StateID](),
	}
	return b.build(root)
}

func (b *Builder) build(id ast.StateID) []ast.Stmt {
	if !b.visited.Add(id) {
		return nil
	}
	st := b.arena.Get(id)
	if st == nil || !st.Halted() {
		// Never executed: the arrival was dropped by the block bound.
		return nil
	}
	body := st.Stmts[:len(st.Stmts)-1]
	out := make([]ast.Stmt, len(body), len(st.Stmts)+2)
	copy(out, body)

	switch last := st.Last().(type) {
	case *ast.Jump:
		out = append(out, b.build(last.Dest.State)...)

	case *ast.JumpDest:
		out = append(out, b.build(last.Fall.State)...)

	case *ast.Jumpi:
		switch {
		case last.Dest == nil:
			out = append(out, b.build(last.Fall.State)...)
		case last.Fall == nil:
			out = append(out, b.build(last.Dest.State)...)
		default:
			fall := b.build(last.Fall.State)
			if len(fall) == 1 {
				if rev, ok := fall[0].(*ast.Revert); ok {
					out = append(out, &ast.Require{Cond: last.Cond, Args: rev.Args, Reason: rev.Reason})
					out = append(out, b.build(last.Dest.State)...)
					return out
				}
			}
			out = append(out, &ast.If{Cond: ast.NewIsZero(last.Cond), Then: fall})
			out = append(out, b.build(last.Dest.State)...)
		}

	case *ast.SigCase:
		out = append(out, &ast.If{
			Cond: last.Sig,
			Then: []ast.Stmt{&ast.CallSite{Selector: last.Sig.Selector}},
			Else: b.build(last.Fall.State),
		})

	default:
		out = append(out, last)
	}
	return out
}
