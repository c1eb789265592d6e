package decompiler

import (
	"github.com/bnb-chain/evmdecompiler/core/decompiler/ast"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/selectors"
	"github.com/ethereum/go-ethereum/common"
)

// enrich labels functions, public getters and log events.
func enrich(c *Contract, r selectors.Resolver) {
	for _, fn := range c.Functions {
		if sig, ok := r.Function(fn.Selector); ok {
			fn.Label = sig
			labelGetter(c, fn)
		}
	}
	// Trees reuse the statement values of the arena states, so labelling
	// the states labels every tree as well.
	for i := 0; i < c.Arena.Len(); i++ {
		for _, s := range c.Arena.Get(ast.StateID(i)).Stmts {
			l, ok := s.(*ast.Log)
			if !ok || l.Event != "" || len(l.Topics) == 0 {
				continue
			}
			if t, ok := l.Topics[0].(*ast.Val); ok {
				if sig, ok := r.Event(common.Hash(t.Value.Bytes32())); ok {
					l.Event = sig
				}
			}
		}
	}
}

// labelGetter names the storage a getter returns. A getter body is
// memory writes and an optional value check ending in a one word return
// of a variable or of a mapping keyed by calldata.
func labelGetter(c *Contract, fn *Function) {
	if len(fn.Body) == 0 {
		return
	}
	for _, s := range fn.Body[:len(fn.Body)-1] {
		switch s.(type) {
		case *ast.MStore, *ast.Require:
		default:
			return
		}
	}
	ret, ok := fn.Body[len(fn.Body)-1].(*ast.Return)
	if !ok || len(ret.Args) != 1 {
		return
	}
	switch v := ret.Args[0].(type) {
	case *ast.SLoad:
		if sv := c.Tables.VariableByIndex(v.Var); sv != nil && sv.Label == "" {
			sv.Label = fn.Name()
		}
	case *ast.MappingLoad:
		for _, k := range v.Keys {
			if _, ok := k.(*ast.CallDataLoad); !ok {
				return
			}
		}
		if m := c.Tables.MappingByIndex(v.Mapping); m != nil && m.Label == "" {
			m.Label = fn.Name()
		}
	}
}

// rejectsValue reports whether body starts with require(!msg.value).
func rejectsValue(body []ast.Stmt) bool {
	for _, s := range body {
		switch s := s.(type) {
		case *ast.MStore:
			continue
		case *ast.Require:
			iz, ok := s.Cond.(*ast.IsZeroExpr)
			if !ok {
				return false
			}
			_, ok = iz.X.(*ast.CallValue)
			return ok
		}
		return false
	}
	return false
}

// hasEffects reports whether any statement of body changes state.
func hasEffects(body []ast.Stmt) bool {
	found := false
	ast.WalkStmts(body, func(s ast.Stmt) bool {
		switch s.(type) {
		case *ast.SStore, *ast.MappingStore, *ast.Log, *ast.Locali, *ast.SelfDestruct:
			found = true
		}
		return !found
	})
	return found
}
