package decompiler

import (
	"github.com/bnb-chain/evmdecompiler/core/decompiler/asm"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/ast"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/engine"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/metadata"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/selectors"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/storage"
	"github.com/ethereum/go-ethereum/common"
)

// Function is a dispatched external function with its reconstructed body.
type Function struct {
	Selector string
	Label    string // resolved signature, empty if unknown
	PC       int
	Offset   uint32
	Body     []ast.Stmt

	// Payable is false when the body opens with require(msg.value == 0).
	Payable bool
	// Constant is true when no path of the body writes storage, emits a
	// log, calls out or creates a contract.
	Constant bool
}

// Name is the label without its argument list, or the selector.
func (f *Function) Name() string {
	if f.Label == "" {
		return "0x" + f.Selector
	}
	for i, c := range f.Label {
		if c == '(' {
			return f.Label[:i]
		}
	}
	return f.Label
}

// Contract is the result of decompiling one runtime bytecode.
type Contract struct {
	Hash     common.Hash // keccak256 of the input, metadata included
	Code     []byte      // executed code, metadata stripped
	Metadata *metadata.Metadata
	Program  *asm.Program

	Arena     *engine.Arena
	Blocks    engine.Blocks
	Tables    *storage.Tables
	Errors    []*engine.ErrorRecord
	Dropped   int
	Main      []ast.Stmt
	Functions []*Function // in discovery order
}

// Function returns the function with the given selector, with or
// without 0x prefix.
func (c *Contract) Function(selector string) *Function {
	for _, fn := range c.Functions {
		if fn.Selector == selectors.NormalizeSelector(selector) {
			return fn
		}
	}
	return nil
}

// ErrorsFor returns the failures recorded while exploring root, which is
// engine.MainRoot or a selector.
func (c *Contract) ErrorsFor(root string) []*engine.ErrorRecord {
	if root != engine.MainRoot {
		root = selectors.NormalizeSelector(root)
	}
	var out []*engine.ErrorRecord
	for _, rec := range c.Errors {
		if rec.Root == root {
			out = append(out, rec)
		}
	}
	return out
}

// VariableName and MappingName name storage for printing.
func (c *Contract) VariableName(i int) string { return c.Tables.VariableName(i) }
func (c *Contract) MappingName(i int) string  { return c.Tables.MappingName(i) }
