// Package networks holds the static per-chain deployment registry. The
// registry is populated at init and never mutated afterwards; lookups are
// pure and safe for concurrent use.
package networks

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// ContractRole identifies a well-known contract within a chain's deployment set.
type ContractRole string

const (
	RoleQuoterV2      ContractRole = "quoterV2"
	RoleFactory       ContractRole = "uniswapV3Factory"
	RoleWrappedNative ContractRole = "wrappedNative"
	RoleFundDeployer  ContractRole = "fundDeployer"
)

var ErrUnsupportedNetwork = errors.New("unsupported network")

// NetworkConfig describes one supported chain. Instances handed out by Get
// are copies; Contracts must be treated as read-only.
type NetworkConfig struct {
	ChainID        uint64
	Name           string
	Contracts      map[ContractRole]common.Address
	NativeSymbol   string
	NativeDecimals uint8
	ExplorerURL    string
}

// Contract returns the address registered for the given role.
func (c NetworkConfig) Contract(role ContractRole) (common.Address, bool) {
	addr, ok := c.Contracts[role]
	return addr, ok
}

var registry = map[uint64]NetworkConfig{
	1: {
		ChainID: 1,
		Name:    "ethereum",
		Contracts: map[ContractRole]common.Address{
			RoleQuoterV2:      common.HexToAddress("0x61fFE014bA17989E743c5F6cB21bF9697530B21e"),
			RoleFactory:       common.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984"),
			RoleWrappedNative: common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
			RoleFundDeployer:  common.HexToAddress("0x7e6d3b1161DF9c9c7527F68d651B297d2Fdb820B"),
		},
		NativeSymbol:   "ETH",
		NativeDecimals: 18,
		ExplorerURL:    "https://etherscan.io",
	},
	137: {
		ChainID: 137,
		Name:    "polygon",
		Contracts: map[ContractRole]common.Address{
			RoleQuoterV2:      common.HexToAddress("0x61fFE014bA17989E743c5F6cB21bF9697530B21e"),
			RoleFactory:       common.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984"),
			RoleWrappedNative: common.HexToAddress("0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270"),
			RoleFundDeployer:  common.HexToAddress("0x188d356cAF78bc6694aEE5969FDE99a9D612284F"),
		},
		NativeSymbol:   "POL",
		NativeDecimals: 18,
		ExplorerURL:    "https://polygonscan.com",
	},
	42161: {
		ChainID: 42161,
		Name:    "arbitrum",
		Contracts: map[ContractRole]common.Address{
			RoleQuoterV2:      common.HexToAddress("0x61fFE014bA17989E743c5F6cB21bF9697530B21e"),
			RoleFactory:       common.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984"),
			RoleWrappedNative: common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"),
			RoleFundDeployer:  common.HexToAddress("0xa2B4c827dE13D4e9801eA1Ca837524a1A148dec3"),
		},
		NativeSymbol:   "ETH",
		NativeDecimals: 18,
		ExplorerURL:    "https://arbiscan.io",
	},
}

// Get returns the configuration for a chain id.
func Get(chainID uint64) (NetworkConfig, error) {
	cfg, ok := registry[chainID]
	if !ok {
		return NetworkConfig{}, fmt.Errorf("%w: chain id %d", ErrUnsupportedNetwork, chainID)
	}
	return cfg, nil
}

// Supported returns the registered chain ids in ascending order.
func Supported() []uint64 {
	ids := make([]uint64, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
