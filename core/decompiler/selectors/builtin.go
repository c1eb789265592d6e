package selectors

// builtin are the token standard signatures known without configuration.
var builtin = []string{
	// ERC-20
	"totalSupply()",
	"balanceOf(address)",
	"transfer(address,uint256)",
	"transferFrom(address,address,uint256)",
	"approve(address,uint256)",
	"allowance(address,address)",
	"name()",
	"symbol()",
	"decimals()",
	"Transfer(address,address,uint256)",
	"Approval(address,address,uint256)",

	// ERC-721
	"ownerOf(uint256)",
	"safeTransferFrom(address,address,uint256)",
	"safeTransferFrom(address,address,uint256,bytes)",
	"setApprovalForAll(address,bool)",
	"getApproved(uint256)",
	"isApprovedForAll(address,address)",
	"tokenURI(uint256)",
	"ApprovalForAll(address,address,bool)",

	// ERC-165 and ownable
	"supportsInterface(bytes4)",
	"owner()",
	"transferOwnership(address)",
	"renounceOwnership()",
	"OwnershipTransferred(address,address)",

	// WETH
	"deposit()",
	"withdraw(uint256)",
	"Deposit(address,uint256)",
	"Withdrawal(address,uint256)",
}

// Builtin returns a fresh table holding the common token signatures.
func Builtin() *Table {
	t := NewTable()
	if err := t.Add(builtin...); err != nil {
		panic(err)
	}
	return t
}
