package enzyme

import "github.com/vaultscan/vaultscan-client-go/ethcall"

// Vault proxies are ERC-20 share tokens that also expose their accessor (the
// comptroller mediating share issuance and valuation).
const vaultABIJSON = `[
	{
		"inputs": [],
		"name": "totalSupply",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "getAccessor",
		"outputs": [{"internalType": "address", "name": "accessor_", "type": "address"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "name",
		"outputs": [{"internalType": "string", "name": "", "type": "string"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "symbol",
		"outputs": [{"internalType": "string", "name": "", "type": "string"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

// calcGrossShareValue is non-view on-chain; eth_call simulates it read-only.
const comptrollerABIJSON = `[
	{
		"inputs": [],
		"name": "calcGrossShareValue",
		"outputs": [{"internalType": "uint256", "name": "grossShareValue_", "type": "uint256"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "getDenominationAsset",
		"outputs": [{"internalType": "address", "name": "denominationAsset_", "type": "address"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

const erc20SymbolABIJSON = `[
	{
		"inputs": [],
		"name": "symbol",
		"outputs": [{"internalType": "string", "name": "", "type": "string"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

// Older tokens return their symbol as bytes32 instead of string.
const erc20SymbolBytes32ABIJSON = `[
	{
		"inputs": [],
		"name": "symbol",
		"outputs": [{"internalType": "bytes32", "name": "", "type": "bytes32"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

var (
	vaultABI              = ethcall.MustParseABI(vaultABIJSON)
	comptrollerABI        = ethcall.MustParseABI(comptrollerABIJSON)
	erc20SymbolABI        = ethcall.MustParseABI(erc20SymbolABIJSON)
	erc20SymbolBytes32ABI = ethcall.MustParseABI(erc20SymbolBytes32ABIJSON)
)
