// Package uniswapv3 resolves exact-input swap quotes against Uniswap-V3-style
// deployments. Resolution walks an explicit ordered strategy chain: the
// QuoterV2 single-hop call, then the path-encoded call, then a spot-price
// estimate read straight from the pool. Each strategy returns a tagged
// outcome so the fallback order and stopping conditions stay testable.
package uniswapv3

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vaultscan/vaultscan-client-go/ethcall"
	"github.com/vaultscan/vaultscan-client-go/networks"
	"github.com/vaultscan/vaultscan-client-go/pricemath"
)

// poolEstimateDiscount approximates fees and slippage on the pool-derived
// path: amountOut * 995 / 1000.
var (
	poolEstimateDiscountNum = big.NewInt(995)
	poolEstimateDiscountDen = big.NewInt(1000)
)

// poolEstimateImpactPercent is reported on pool-derived estimates by
// convention; the strategy does not simulate tick traversal.
const poolEstimateImpactPercent = 0.5

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// outcome tags a strategy result for the fallback chain.
type outcome int

const (
	outcomeOK       outcome = iota
	outcomeContinue         // strategy unavailable, try the next one
	outcomeFatal            // no later strategy can succeed, stop
)

type strategyFunc func(ctx context.Context, req QuoteRequest, amountIn *big.Int) (*QuoteResult, outcome, error)

type strategy struct {
	source QuoteSource
	run    strategyFunc
}

// Resolver estimates swap outputs for one network over an injected caller.
type Resolver struct {
	network networks.NetworkConfig
	caller  ethcall.Caller
	timeout time.Duration
	logger  Logger
}

// NewResolver creates a resolver bound to one network configuration.
func NewResolver(network networks.NetworkConfig, caller ethcall.Caller, timeout time.Duration, logger Logger) *Resolver {
	return &Resolver{
		network: network,
		caller:  caller,
		timeout: timeout,
		logger:  logger,
	}
}

func (r *Resolver) strategies() []strategy {
	return []strategy{
		{source: SourceSingleHop, run: r.quoteSingleHop},
		{source: SourcePath, run: r.quotePath},
		{source: SourcePoolEstimate, run: r.quoteFromPool},
	}
}

// Quote resolves the request through the fallback chain. Caller input errors
// are returned as-is; exhaustion of every strategy returns a
// *QuoteResolutionError.
func (r *Resolver) Quote(ctx context.Context, req QuoteRequest) (QuoteResult, error) {
	if err := req.validate(); err != nil {
		return QuoteResult{}, err
	}
	amountIn, err := pricemath.FromDecimal(req.AmountIn, req.DecimalsIn)
	if err != nil {
		return QuoteResult{}, err
	}
	if amountIn.Sign() == 0 {
		return QuoteResult{}, fmt.Errorf("%w: amountIn is zero", pricemath.ErrInvalidAmount)
	}

	var lastErr error
	for _, s := range r.strategies() {
		res, oc, err := s.run(ctx, req, amountIn)
		switch oc {
		case outcomeOK:
			return *res, nil
		case outcomeContinue:
			lastErr = err
			r.logger.Debug("quote strategy unavailable, falling back",
				"source", string(s.source), "err", err)
		case outcomeFatal:
			return QuoteResult{}, r.resolutionError(req, err)
		}
	}
	return QuoteResult{}, r.resolutionError(req, lastErr)
}

func (r *Resolver) resolutionError(req QuoteRequest, reason error) error {
	return &QuoteResolutionError{
		TokenIn:  req.TokenIn,
		TokenOut: req.TokenOut,
		FeeTier:  req.FeeTier,
		Reason:   reason,
	}
}

// quoteSingleHop asks the QuoterV2 for an exact-input single-hop quote.
// eth_call simulates the non-view quoter entry point without a transaction.
func (r *Resolver) quoteSingleHop(ctx context.Context, req QuoteRequest, amountIn *big.Int) (*QuoteResult, outcome, error) {
	quoterAddr, ok := r.network.Contract(networks.RoleQuoterV2)
	if !ok {
		return nil, outcomeContinue, fmt.Errorf("%w: no quoter registered for %s", errQuoteUnavailable, r.network.Name)
	}

	quoter := ethcall.NewContract(quoterAddr, quoterV2ABI, r.caller, r.timeout)
	out, err := quoter.Call(ctx, "quoteExactInputSingle", quoteExactInputSingleParams{
		TokenIn:           req.TokenIn,
		TokenOut:          req.TokenOut,
		AmountIn:          amountIn,
		Fee:               new(big.Int).SetUint64(uint64(req.FeeTier)),
		SqrtPriceLimitX96: new(big.Int),
	})
	if err != nil {
		return nil, outcomeContinue, fmt.Errorf("%w: single-hop: %v", errQuoteUnavailable, err)
	}

	amountOut, gasEstimate, err := quoteOutputs(out)
	if err != nil {
		return nil, outcomeContinue, fmt.Errorf("%w: single-hop: %v", errQuoteUnavailable, err)
	}
	return r.buildResult(req, amountOut, gasEstimate, 0, SourceSingleHop), outcomeOK, nil
}

// quotePath retries through the path-encoded quoter entry point. Same
// contract, distinct call shape; some deployments revert on the single-hop
// shape but serve path queries.
func (r *Resolver) quotePath(ctx context.Context, req QuoteRequest, amountIn *big.Int) (*QuoteResult, outcome, error) {
	quoterAddr, ok := r.network.Contract(networks.RoleQuoterV2)
	if !ok {
		return nil, outcomeContinue, fmt.Errorf("%w: no quoter registered for %s", errQuoteUnavailable, r.network.Name)
	}

	quoter := ethcall.NewContract(quoterAddr, quoterV2ABI, r.caller, r.timeout)
	out, err := quoter.Call(ctx, "quoteExactInput", encodePath(req.TokenIn, req.TokenOut, req.FeeTier), amountIn)
	if err != nil {
		return nil, outcomeContinue, fmt.Errorf("%w: path: %v", errQuoteUnavailable, err)
	}

	amountOut, gasEstimate, err := quoteOutputs(out)
	if err != nil {
		return nil, outcomeContinue, fmt.Errorf("%w: path: %v", errQuoteUnavailable, err)
	}
	return r.buildResult(req, amountOut, gasEstimate, 0, SourcePath), outcomeOK, nil
}

// quoteFromPool derives an approximate output from the pool's current spot
// price: amountIn scaled by sqrtPriceX96^2/2^192 (direction per canonical
// token order), discounted 0.5% for fees and slippage.
func (r *Resolver) quoteFromPool(ctx context.Context, req QuoteRequest, amountIn *big.Int) (*QuoteResult, outcome, error) {
	factoryAddr, ok := r.network.Contract(networks.RoleFactory)
	if !ok {
		return nil, outcomeContinue, fmt.Errorf("%w: no factory registered for %s", errQuoteUnavailable, r.network.Name)
	}

	token0, token1 := sortTokens(req.TokenIn, req.TokenOut)
	factory := ethcall.NewContract(factoryAddr, factoryABI, r.caller, r.timeout)
	out, err := factory.Call(ctx, "getPool", token0, token1, new(big.Int).SetUint64(uint64(req.FeeTier)))
	if err != nil {
		return nil, outcomeContinue, fmt.Errorf("%w: factory lookup: %v", errQuoteUnavailable, err)
	}
	poolAddr, ok := out[0].(common.Address)
	if !ok {
		return nil, outcomeContinue, fmt.Errorf("%w: factory returned unexpected type", errQuoteUnavailable)
	}
	if poolAddr == (common.Address{}) {
		return nil, outcomeFatal, fmt.Errorf("%w: %s/%s fee %d on %s",
			ErrNoLiquidityPool, token0.Hex(), token1.Hex(), req.FeeTier, r.network.Name)
	}

	pool := ethcall.NewContract(poolAddr, poolABI, r.caller, r.timeout)
	slot0, err := pool.Call(ctx, "slot0")
	if err != nil {
		return nil, outcomeContinue, fmt.Errorf("%w: slot0: %v", errQuoteUnavailable, err)
	}
	sqrtPriceX96, ok := slot0[0].(*big.Int)
	if !ok || sqrtPriceX96.Sign() == 0 {
		return nil, outcomeFatal, fmt.Errorf("%w: pool %s is uninitialized", ErrNoLiquidityPool, poolAddr.Hex())
	}

	liqOut, err := pool.Call(ctx, "liquidity")
	if err != nil {
		return nil, outcomeContinue, fmt.Errorf("%w: liquidity: %v", errQuoteUnavailable, err)
	}
	if liquidity, ok := liqOut[0].(*big.Int); !ok || liquidity.Sign() == 0 {
		return nil, outcomeFatal, fmt.Errorf("%w: pool %s has no active liquidity", ErrNoLiquidityPool, poolAddr.Hex())
	}

	// Exact integer mul-div; the 320-bit square stays in big.Int.
	squared := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	amountOut := new(big.Int)
	if req.TokenIn == token0 {
		amountOut.Mul(amountIn, squared).Div(amountOut, pricemath.Q192)
	} else {
		amountOut.Mul(amountIn, pricemath.Q192).Div(amountOut, squared)
	}
	amountOut.Mul(amountOut, poolEstimateDiscountNum).Div(amountOut, poolEstimateDiscountDen)

	r.logger.Warn("quote served from pool spot price, treat as approximate",
		"pool", poolAddr.Hex(), "tokenIn", req.TokenIn.Hex(), "tokenOut", req.TokenOut.Hex())
	return r.buildResult(req, amountOut, 0, poolEstimateImpactPercent, SourcePoolEstimate), outcomeOK, nil
}

func (r *Resolver) buildResult(req QuoteRequest, amountOut *big.Int, gasEstimate uint64, impact float64, source QuoteSource) *QuoteResult {
	return &QuoteResult{
		AmountOutRaw:       amountOut.String(),
		AmountOutFormatted: pricemath.ToDecimal(amountOut, req.DecimalsOut),
		GasEstimate:        gasEstimate,
		PriceImpactPercent: impact,
		Source:             source,
	}
}

// quoteOutputs extracts (amountOut, gasEstimate) from a quoter return set;
// both quoter entry points place them at positions 0 and 3.
func quoteOutputs(out []any) (*big.Int, uint64, error) {
	if len(out) < 4 {
		return nil, 0, fmt.Errorf("quoter returned %d values, want 4", len(out))
	}
	amountOut, ok := out[0].(*big.Int)
	if !ok {
		return nil, 0, fmt.Errorf("quoter amountOut has unexpected type %T", out[0])
	}
	gasEstimate, ok := out[3].(*big.Int)
	if !ok {
		return nil, 0, fmt.Errorf("quoter gasEstimate has unexpected type %T", out[3])
	}
	return amountOut, gasEstimate.Uint64(), nil
}

// sortTokens returns the pair in canonical order: pools key their tokens by
// ascending address bytes, which matches lowercase-hex string ordering.
func sortTokens(a, b common.Address) (common.Address, common.Address) {
	if bytes.Compare(a.Bytes(), b.Bytes()) < 0 {
		return a, b
	}
	return b, a
}
