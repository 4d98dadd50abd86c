package uniswapv3

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vaultscan/vaultscan-client-go/pricemath"
)

// QuoteSource records which strategy produced a result. Pool-derived
// estimates are lower-confidence than quoter-derived ones and callers should
// treat them accordingly.
type QuoteSource string

const (
	SourceSingleHop    QuoteSource = "quoter_single_hop"
	SourcePath         QuoteSource = "quoter_path"
	SourcePoolEstimate QuoteSource = "pool_estimate"
)

// QuoteRequest describes a hypothetical exact-input swap.
type QuoteRequest struct {
	TokenIn     common.Address `json:"tokenIn"`
	TokenOut    common.Address `json:"tokenOut"`
	FeeTier     uint32         `json:"feeTier"`
	AmountIn    string         `json:"amountIn"`
	DecimalsIn  uint8          `json:"decimalsIn"`
	DecimalsOut uint8          `json:"decimalsOut"`
}

func (r QuoteRequest) validate() error {
	if r.TokenIn == (common.Address{}) || r.TokenOut == (common.Address{}) {
		return fmt.Errorf("%w: token addresses must be non-zero", pricemath.ErrInvalidParameter)
	}
	if r.TokenIn == r.TokenOut {
		return fmt.Errorf("%w: tokenIn and tokenOut are identical", pricemath.ErrInvalidParameter)
	}
	if r.FeeTier == 0 {
		return fmt.Errorf("%w: fee tier must be non-zero", pricemath.ErrInvalidParameter)
	}
	return nil
}

// QuoteResult is the resolved output estimate. Amounts are strings so callers
// never round them through float64.
type QuoteResult struct {
	AmountOutRaw       string      `json:"amountOutRaw"`
	AmountOutFormatted string      `json:"amountOutFormatted"`
	GasEstimate        uint64      `json:"gasEstimate"`
	PriceImpactPercent float64     `json:"priceImpactPercent"`
	Source             QuoteSource `json:"source"`
}
