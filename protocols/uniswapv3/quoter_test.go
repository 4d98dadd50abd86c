package uniswapv3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultscan/vaultscan-client-go/networks"
	"github.com/vaultscan/vaultscan-client-go/pricemath"
)

// =================================================================
// Test Helpers
// =================================================================

var (
	tokenA = common.HexToAddress("0x0000000000000000000000000000000000000001")
	tokenB = common.HexToAddress("0x0000000000000000000000000000000000000002")

	q96 = new(big.Int).Lsh(big.NewInt(1), 96)

	errReverted = errors.New("execution reverted")
)

// selectorCaller dispatches stubbed responses by 4-byte selector and counts
// invocations so tests can assert fallback ordering.
type selectorCaller struct {
	mu       sync.Mutex
	counts   map[string]int
	handlers map[string]func(to common.Address, input []byte) ([]byte, error)
}

func newSelectorCaller() *selectorCaller {
	return &selectorCaller{
		counts:   map[string]int{},
		handlers: map[string]func(common.Address, []byte) ([]byte, error){},
	}
}

func (c *selectorCaller) on(selector []byte, fn func(common.Address, []byte) ([]byte, error)) {
	c.handlers[string(selector)] = fn
}

func (c *selectorCaller) count(selector []byte) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[string(selector)]
}

func (c *selectorCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	sel := string(msg.Data[:4])
	c.mu.Lock()
	c.counts[sel]++
	handler, ok := c.handlers[sel]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unexpected selector %x", msg.Data[:4])
	}
	return handler(*msg.To, msg.Data)
}

func testLogger() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestResolver(t *testing.T, caller *selectorCaller) *Resolver {
	t.Helper()
	network, err := networks.Get(1)
	require.NoError(t, err)
	return NewResolver(network, caller, time.Second, testLogger())
}

func testRequest() QuoteRequest {
	return QuoteRequest{
		TokenIn:     tokenA,
		TokenOut:    tokenB,
		FeeTier:     3000,
		AmountIn:    "1",
		DecimalsIn:  18,
		DecimalsOut: 18,
	}
}

var (
	singleHopID = quoterV2ABI.Methods["quoteExactInputSingle"].ID
	pathID      = quoterV2ABI.Methods["quoteExactInput"].ID
	getPoolID   = factoryABI.Methods["getPool"].ID
	slot0ID     = poolABI.Methods["slot0"].ID
	liquidityID = poolABI.Methods["liquidity"].ID
)

func packSingleHop(t *testing.T, amountOut *big.Int, gas uint64) []byte {
	t.Helper()
	out, err := quoterV2ABI.Methods["quoteExactInputSingle"].Outputs.Pack(
		amountOut, big.NewInt(0), uint32(1), new(big.Int).SetUint64(gas))
	require.NoError(t, err)
	return out
}

func packPath(t *testing.T, amountOut *big.Int, gas uint64) []byte {
	t.Helper()
	out, err := quoterV2ABI.Methods["quoteExactInput"].Outputs.Pack(
		amountOut, []*big.Int{}, []uint32{}, new(big.Int).SetUint64(gas))
	require.NoError(t, err)
	return out
}

func packAddress(t *testing.T, addr common.Address) []byte {
	t.Helper()
	out, err := factoryABI.Methods["getPool"].Outputs.Pack(addr)
	require.NoError(t, err)
	return out
}

func packSlot0(t *testing.T, sqrtPriceX96 *big.Int) []byte {
	t.Helper()
	out, err := poolABI.Methods["slot0"].Outputs.Pack(
		sqrtPriceX96, big.NewInt(0), uint16(0), uint16(0), uint16(0), uint8(0), true)
	require.NoError(t, err)
	return out
}

func packLiquidity(t *testing.T, liquidity *big.Int) []byte {
	t.Helper()
	out, err := poolABI.Methods["liquidity"].Outputs.Pack(liquidity)
	require.NoError(t, err)
	return out
}

func reverting(common.Address, []byte) ([]byte, error) {
	return nil, errReverted
}

// =================================================================
// Tests
// =================================================================

func TestQuoteSingleHopSuccess(t *testing.T) {
	caller := newSelectorCaller()
	caller.on(singleHopID, func(common.Address, []byte) ([]byte, error) {
		return packSingleHop(t, fromDecimalOrPanic("2", 18), 150000), nil
	})

	res, err := newTestResolver(t, caller).Quote(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, SourceSingleHop, res.Source)
	assert.Equal(t, "2000000000000000000", res.AmountOutRaw)
	assert.Equal(t, "2", res.AmountOutFormatted)
	assert.EqualValues(t, 150000, res.GasEstimate)
	assert.Zero(t, res.PriceImpactPercent)

	assert.Equal(t, 1, caller.count(singleHopID))
	assert.Zero(t, caller.count(pathID))
	assert.Zero(t, caller.count(getPoolID))
}

func TestQuoteFallsBackToPath(t *testing.T) {
	caller := newSelectorCaller()
	caller.on(singleHopID, reverting)
	caller.on(pathID, func(_ common.Address, input []byte) ([]byte, error) {
		args, err := quoterV2ABI.Methods["quoteExactInput"].Inputs.Unpack(input[4:])
		require.NoError(t, err)
		assert.Equal(t, encodePath(tokenA, tokenB, 3000), args[0].([]byte))
		return packPath(t, fromDecimalOrPanic("1.98", 18), 210000), nil
	})

	res, err := newTestResolver(t, caller).Quote(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, SourcePath, res.Source)
	assert.Equal(t, "1.98", res.AmountOutFormatted)
	assert.EqualValues(t, 210000, res.GasEstimate)

	// Pool-derived estimation must never run once the path quote succeeds.
	assert.Equal(t, 1, caller.count(singleHopID))
	assert.Equal(t, 1, caller.count(pathID))
	assert.Zero(t, caller.count(getPoolID))
	assert.Zero(t, caller.count(slot0ID))
}

func TestQuoteFallsBackToPoolEstimate(t *testing.T) {
	pool := common.HexToAddress("0x00000000000000000000000000000000000000CC")

	caller := newSelectorCaller()
	caller.on(singleHopID, reverting)
	caller.on(pathID, reverting)
	caller.on(getPoolID, func(common.Address, []byte) ([]byte, error) {
		return packAddress(t, pool), nil
	})
	// sqrtPrice = 2*2^96 encodes a raw price of 4 token1 per token0.
	caller.on(slot0ID, func(to common.Address, _ []byte) ([]byte, error) {
		assert.Equal(t, pool, to)
		return packSlot0(t, new(big.Int).Mul(q96, big.NewInt(2))), nil
	})
	caller.on(liquidityID, func(common.Address, []byte) ([]byte, error) {
		return packLiquidity(t, big.NewInt(1_000_000)), nil
	})

	res, err := newTestResolver(t, caller).Quote(context.Background(), testRequest())
	require.NoError(t, err)

	// 1e18 in, price 4, minus the fixed 0.5% discount.
	assert.Equal(t, SourcePoolEstimate, res.Source)
	assert.Equal(t, "3980000000000000000", res.AmountOutRaw)
	assert.Equal(t, "3.98", res.AmountOutFormatted)
	assert.Equal(t, 0.5, res.PriceImpactPercent)
	assert.Zero(t, res.GasEstimate)
}

func TestQuotePoolEstimateInverseDirection(t *testing.T) {
	pool := common.HexToAddress("0x00000000000000000000000000000000000000CC")

	caller := newSelectorCaller()
	caller.on(singleHopID, reverting)
	caller.on(pathID, reverting)
	caller.on(getPoolID, func(common.Address, []byte) ([]byte, error) {
		return packAddress(t, pool), nil
	})
	caller.on(slot0ID, func(common.Address, []byte) ([]byte, error) {
		return packSlot0(t, new(big.Int).Mul(q96, big.NewInt(2))), nil
	})
	caller.on(liquidityID, func(common.Address, []byte) ([]byte, error) {
		return packLiquidity(t, big.NewInt(1_000_000)), nil
	})

	// tokenB is token1; swapping token1 for token0 divides by the price.
	req := testRequest()
	req.TokenIn, req.TokenOut = tokenB, tokenA

	res, err := newTestResolver(t, caller).Quote(context.Background(), req)
	require.NoError(t, err)

	// 1e18 / 4 = 0.25e18, minus the 0.5% discount.
	assert.Equal(t, "248750000000000000", res.AmountOutRaw)
	assert.Equal(t, "0.24875", res.AmountOutFormatted)
}

func TestQuoteNoLiquidityPoolIsTerminal(t *testing.T) {
	caller := newSelectorCaller()
	caller.on(singleHopID, reverting)
	caller.on(pathID, reverting)
	caller.on(getPoolID, func(common.Address, []byte) ([]byte, error) {
		return packAddress(t, common.Address{}), nil
	})

	_, err := newTestResolver(t, caller).Quote(context.Background(), testRequest())
	require.Error(t, err)

	var resolutionErr *QuoteResolutionError
	require.ErrorAs(t, err, &resolutionErr)
	assert.Equal(t, tokenA, resolutionErr.TokenIn)
	assert.Equal(t, tokenB, resolutionErr.TokenOut)
	assert.EqualValues(t, 3000, resolutionErr.FeeTier)
	assert.ErrorIs(t, err, ErrNoLiquidityPool)

	assert.Zero(t, caller.count(slot0ID))
}

func TestQuoteAllStrategiesExhausted(t *testing.T) {
	caller := newSelectorCaller()
	caller.on(singleHopID, reverting)
	caller.on(pathID, reverting)
	caller.on(getPoolID, reverting)

	_, err := newTestResolver(t, caller).Quote(context.Background(), testRequest())
	require.Error(t, err)

	var resolutionErr *QuoteResolutionError
	require.ErrorAs(t, err, &resolutionErr)

	assert.Equal(t, 1, caller.count(singleHopID))
	assert.Equal(t, 1, caller.count(pathID))
	assert.Equal(t, 1, caller.count(getPoolID))
}

func TestQuoteRejectsInvalidInput(t *testing.T) {
	resolver := newTestResolver(t, newSelectorCaller())

	testCases := []struct {
		name     string
		mutate   func(*QuoteRequest)
		expected error
	}{
		{"zero token in", func(r *QuoteRequest) { r.TokenIn = common.Address{} }, pricemath.ErrInvalidParameter},
		{"identical tokens", func(r *QuoteRequest) { r.TokenOut = r.TokenIn }, pricemath.ErrInvalidParameter},
		{"zero fee tier", func(r *QuoteRequest) { r.FeeTier = 0 }, pricemath.ErrInvalidParameter},
		{"negative amount", func(r *QuoteRequest) { r.AmountIn = "-1" }, pricemath.ErrInvalidAmount},
		{"non-numeric amount", func(r *QuoteRequest) { r.AmountIn = "lots" }, pricemath.ErrInvalidAmount},
		{"zero amount", func(r *QuoteRequest) { r.AmountIn = "0" }, pricemath.ErrInvalidAmount},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testRequest()
			tc.mutate(&req)
			_, err := resolver.Quote(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestEncodePath(t *testing.T) {
	path := encodePath(tokenA, tokenB, 3000)
	require.Len(t, path, 43)
	assert.Equal(t, tokenA.Bytes(), path[:20])
	assert.Equal(t, []byte{0x00, 0x0B, 0xB8}, path[20:23])
	assert.Equal(t, tokenB.Bytes(), path[23:])
}

func TestSortTokens(t *testing.T) {
	first, second := sortTokens(tokenB, tokenA)
	assert.Equal(t, tokenA, first)
	assert.Equal(t, tokenB, second)

	first, second = sortTokens(tokenA, tokenB)
	assert.Equal(t, tokenA, first)
	assert.Equal(t, tokenB, second)
}

func fromDecimalOrPanic(s string, decimals uint8) *big.Int {
	raw, err := pricemath.FromDecimal(s, decimals)
	if err != nil {
		panic(err)
	}
	return raw
}
