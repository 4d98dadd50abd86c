package uniswapv3

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrNoLiquidityPool means the factory has no pool deployed for the pair
	// and fee tier. Terminal; no further fallback can produce a quote.
	ErrNoLiquidityPool = errors.New("no liquidity pool for pair and fee tier")

	// errQuoteUnavailable drives progression through the fallback chain. It
	// never escapes this package.
	errQuoteUnavailable = errors.New("quote unavailable")
)

// QuoteResolutionError reports that every strategy in the fallback chain
// failed for one request. It is terminal for that request only; callers treat
// it as "no quote available".
type QuoteResolutionError struct {
	TokenIn  common.Address
	TokenOut common.Address
	FeeTier  uint32
	Reason   error
}

func (e *QuoteResolutionError) Error() string {
	return fmt.Sprintf("quote resolution failed for %s -> %s (fee %d): %v",
		e.TokenIn.Hex(), e.TokenOut.Hex(), e.FeeTier, e.Reason)
}

func (e *QuoteResolutionError) Unwrap() error {
	return e.Reason
}
