// Package pricemath converts between raw on-chain integer amounts and decimal
// string representations, and derives prices from the X96 square-root encoding
// used by Uniswap-V3-style pools. All conversions run on scaled integers;
// float64 only appears at the final display narrowing.
package pricemath

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount    = errors.New("amount must be a non-negative decimal number")
	ErrInvalidParameter = errors.New("parameter out of range")

	// Q192 is 2^192, the divisor for a squared X96 fixed-point ratio.
	Q192 = new(big.Int).Lsh(big.NewInt(1), 192)
)

// ToDecimal converts a raw integer amount to its decimal string form by
// dividing by 10^decimals. The conversion is exact for any amount
// representable in the token's fixed-point resolution.
func ToDecimal(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}

// FromDecimal parses a decimal amount string and scales it to a raw integer
// with the given number of decimals. Digits beyond the token's resolution are
// truncated, matching how on-chain amounts are expressed. The result must fit
// a uint256.
func FromDecimal(s string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	raw := d.Shift(int32(decimals)).Truncate(0).BigInt()
	if _, overflow := uint256.FromBig(raw); overflow {
		return nil, fmt.Errorf("%w: %q does not fit uint256 at %d decimals", ErrInvalidAmount, s, decimals)
	}
	return raw, nil
}

// PriceFromSqrtRatio derives the token1/token0 price from a pool's packed
// sqrtPriceX96 value: (sqrtPriceX96^2) / 2^192. Squaring a 160-bit value needs
// up to 320 bits, so the intermediate stays in big.Int; only the final ratio
// is narrowed to float64.
func PriceFromSqrtRatio(sqrtPriceX96 *big.Int) float64 {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return 0
	}
	squared := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	ratio := new(big.Float).Quo(
		new(big.Float).SetInt(squared),
		new(big.Float).SetInt(Q192),
	)
	price, _ := ratio.Float64()
	return price
}

// ApplySlippage scales a formatted output amount down by slippagePercent and
// returns the raw minimum-out integer: amountOut * (100 - slippage) / 100.
// Slippage outside [0, 50] is rejected, not clamped.
func ApplySlippage(amountOut string, slippagePercent float64, decimals uint8) (*big.Int, error) {
	if slippagePercent < 0 || slippagePercent > 50 {
		return nil, fmt.Errorf("%w: slippage %.2f%% outside [0, 50]", ErrInvalidParameter, slippagePercent)
	}
	raw, err := FromDecimal(amountOut, decimals)
	if err != nil {
		return nil, err
	}
	factor := decimal.NewFromFloat(100 - slippagePercent).Div(decimal.NewFromInt(100))
	return decimal.NewFromBigInt(raw, 0).Mul(factor).Truncate(0).BigInt(), nil
}
