package storage

import "github.com/bnb-chain/evmdecompiler/core/decompiler/ast"

var addressProps = map[string]bool{
	"msg.sender":     true,
	"tx.origin":      true,
	"address(this)":  true,
	"block.coinbase": true,
}

func isBool(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Val:
		return e.Value.IsUint64() && e.Value.Uint64() <= 1
	case *ast.IsZeroExpr, *ast.Sig:
		return true
	case *ast.BinaryExpr:
		return e.Op.IsCompare()
	}
	return false
}

func isAddress(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Prop:
		return addressProps[e.Name]
	case *ast.CreateExpr:
		return true
	case *ast.Local:
		_, ok := e.Value.(*ast.CreateExpr)
		return ok
	}
	return false
}

// inferType picks bool or address when every observed value agrees and
// falls back to uint256. Constant zero stores (deletes) are neutral.
func inferType(values []ast.Expr) string {
	boolean, address, informative := true, true, false
	for _, v := range values {
		if c, ok := v.(*ast.Val); ok && c.Value.IsZero() {
			continue
		}
		informative = true
		boolean = boolean && isBool(v)
		address = address && isAddress(v)
	}
	switch {
	case !informative:
		return "uint256"
	case boolean:
		return "bool"
	case address:
		return "address"
	}
	return "uint256"
}
