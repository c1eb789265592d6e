// Package decompiler turns EVM runtime bytecode into structured
// statements: it strips metadata, runs the symbolic engine, rebuilds the
// statement trees of the dispatcher and of every dispatched function and
// labels what the resolver knows.
package decompiler

import (
	"github.com/bnb-chain/evmdecompiler/core/decompiler/asm"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/engine"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/metadata"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/reconstruct"
	"github.com/bnb-chain/evmdecompiler/core/decompiler/selectors"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
)

// Decompile analyses code. A nil resolver leaves every label empty. The
// only error is asm.ErrEmptyCode; execution failures are reported per
// branch in Contract.Errors.
func Decompile(code []byte, cfg *Config, resolver selectors.Resolver) (*Contract, error) {
	if len(code) == 0 {
		return nil, asm.ErrEmptyCode
	}
	if cfg == nil {
		cfg = &DefaultConfig
	}
	c := &Contract{
		Hash: crypto.Keccak256Hash(code),
		Code: code,
	}
	if cfg.StripMetadata {
		if exec, md := metadata.Split(code); md != nil && len(exec) > 0 {
			c.Code, c.Metadata = exec, md
			log.Debug("Stripped contract metadata", "hash", c.Hash, "size", len(code)-len(exec), "meta", md)
		}
	}
	c.Program = asm.Decode(c.Code)

	e := engine.New(c.Program, cfg.engineConfig())
	e.Run()

	c.Arena, c.Blocks, c.Tables = e.Arena, e.Blocks, e.Tables
	c.Errors, c.Dropped = e.Errors, e.Dropped
	c.Main = reconstruct.Build(e.Arena, e.Main)
	for _, sel := range e.Selectors {
		efn := e.Functions[sel]
		fn := &Function{
			Selector: sel,
			PC:       efn.PC,
			Offset:   efn.Offset,
			Body:     reconstruct.Build(e.Arena, efn.State),
		}
		fn.Payable = !rejectsValue(fn.Body)
		fn.Constant = !hasEffects(fn.Body)
		c.Functions = append(c.Functions, fn)
	}
	if resolver != nil {
		enrich(c, resolver)
	}
	log.Debug("Decompiled contract", "hash", c.Hash, "ops", len(c.Program.Opcodes), "blocks", len(c.Blocks),
		"functions", len(c.Functions), "errors", len(c.Errors))
	return c, nil
}

// DecompileHex parses hex input and decompiles it.
func DecompileHex(s string, cfg *Config, resolver selectors.Resolver) (*Contract, error) {
	code, err := asm.ParseHex(s)
	if err != nil {
		return nil, err
	}
	return Decompile(code, cfg, resolver)
}
