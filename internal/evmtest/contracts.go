package evmtest

import (
	"fmt"

	"github.com/bnb-chain/evmdecompiler/core/decompiler/asm"
)

// Dispatcher appends a solc style selector dispatcher: a calldata size
// check, the selector extracted with SHR, one EQ/JUMPI per function and
// a reverting fallback. Function bodies are expected under the labels
// "fn_<selector>" and must be appended by the caller.
func (p *Program) Dispatcher(selectors ...uint32) *Program {
	p.Push(4).Op(asm.CALLDATASIZE, asm.LT).JumpI("fallback")
	p.Push(0).Op(asm.CALLDATALOAD).Push(0xe0).Op(asm.SHR)
	for _, sel := range selectors {
		p.Op(asm.DUP1).PushN(4, uint64(sel)).Op(asm.EQ).JumpI(FunctionLabel(sel))
	}
	p.Label("fallback").Push(0).Op(asm.DUP1).Op(asm.REVERT)
	return p
}

// FunctionLabel is the label Dispatcher jumps to for sel.
func FunctionLabel(sel uint32) string {
	return fmt.Sprintf("fn_%08x", sel)
}

// ReturnTop appends code returning the top of the stack as one word.
func (p *Program) ReturnTop() *Program {
	return p.Push(0).Op(asm.MSTORE).Push(32).Push(0).Op(asm.RETURN)
}

// Mapping slot layout of solc: keccak256(key . slot) with the key at
// memory 0 and the slot at memory 32. The key must be on the stack;
// the slot address is left on the stack.
func (p *Program) MappingSlot(slot uint64) *Program {
	return p.Push(0).Op(asm.MSTORE).Push(slot).Push(32).Op(asm.MSTORE).Push(64).Push(0).Op(asm.KECCAK256)
}

// Token returns a small ERC20-like runtime:
//
//	0x70a08231 balanceOf(address): returns balances[arg0] (slot 3)
//	0x18160ddd totalSupply():      returns slot 2
//	0xa9059cbb transfer(address,uint256): requires non-payable, writes
//	    balances[msg.sender] and balances[to], emits Transfer
func Token() *Program {
	const (
		balanceOf   = 0x70a08231
		totalSupply = 0x18160ddd
		transfer    = 0xa9059cbb
	)
	p := New().Dispatcher(balanceOf, totalSupply, transfer)

	p.Label(FunctionLabel(balanceOf)).Op(asm.POP)
	p.Push(4).Op(asm.CALLDATALOAD).MappingSlot(3).Op(asm.SLOAD).ReturnTop()

	p.Label(FunctionLabel(totalSupply)).Op(asm.POP)
	p.Push(2).Op(asm.SLOAD).ReturnTop()

	p.Label(FunctionLabel(transfer)).Op(asm.POP)
	p.Op(asm.CALLVALUE, asm.ISZERO).JumpI("transfer_body")
	p.Push(0).Op(asm.DUP1, asm.REVERT)
	p.Label("transfer_body")
	// balances[msg.sender] -= amount
	p.Push(36).Op(asm.CALLDATALOAD)
	p.Op(asm.CALLER).MappingSlot(3).Op(asm.DUP1, asm.SLOAD)
	p.Op(asm.DUP1+2, asm.SWAP1, asm.SUB, asm.SWAP1, asm.SSTORE)
	// balances[to] += amount
	p.Push(4).Op(asm.CALLDATALOAD).MappingSlot(3).Op(asm.DUP1, asm.SLOAD)
	p.Op(asm.DUP1+2, asm.ADD, asm.SWAP1, asm.SSTORE)
	// emit Transfer(msg.sender, to, amount)
	p.Push(0).Op(asm.MSTORE)
	p.Push(4).Op(asm.CALLDATALOAD).Op(asm.CALLER)
	p.Push("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	p.Push(32).Push(0).Op(asm.LOG0 + 3)
	p.Push(1).ReturnTop()
	return p
}
