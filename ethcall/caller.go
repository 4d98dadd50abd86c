// Package ethcall is the thin read-only contract call layer the rest of the
// module builds on. The RPC handle is injected by the host and never created,
// cached, or closed here.
package ethcall

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// DefaultCallTimeout bounds a single eth_call round trip so one hung node
// connection cannot stall a whole batch.
const DefaultCallTimeout = 12 * time.Second

var ErrEmptyReturnData = errors.New("empty return data")

// Caller is the read-only RPC surface this module depends on. It is satisfied
// by *ethclient.Client. Non-view functions go through the same path as views;
// eth_call simulates them without a transaction.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// MustParseABI parses an ABI JSON literal, panicking on malformed input.
// Intended for package-level ABI constants only.
func MustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("ethcall: invalid ABI literal: %v", err))
	}
	return parsed
}

// Contract binds a parsed ABI to a deployed address over a Caller.
type Contract struct {
	address common.Address
	abi     abi.ABI
	caller  Caller
	timeout time.Duration
}

// NewContract binds abi to a deployed address. A non-positive timeout falls
// back to DefaultCallTimeout.
func NewContract(address common.Address, parsed abi.ABI, caller Caller, timeout time.Duration) *Contract {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &Contract{
		address: address,
		abi:     parsed,
		caller:  caller,
		timeout: timeout,
	}
}

// Address returns the bound contract address.
func (c *Contract) Address() common.Address {
	return c.address
}

// Call packs method and args, performs an eth_call against the latest block
// with a bounded timeout, and returns the unpacked outputs.
func (c *Contract) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	output, err := c.caller.CallContract(callCtx, ethereum.CallMsg{
		To:   &c.address,
		Data: input,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", method, c.address.Hex(), err)
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("call %s on %s: %w", method, c.address.Hex(), ErrEmptyReturnData)
	}

	results, err := c.abi.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("unpack %s from %s: %w", method, c.address.Hex(), err)
	}
	return results, nil
}
