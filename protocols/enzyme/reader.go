// Package enzyme reads Enzyme-style vault contracts and assembles per-vault
// performance records. Reads are split into independent groups so a single
// failing contract call degrades its own fields to documented defaults
// instead of failing the record.
package enzyme

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/vaultscan/vaultscan-client-go/ethcall"
	"github.com/vaultscan/vaultscan-client-go/pricemath"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Reader assembles VaultPerformanceRecords over an injected caller. It holds
// no mutable state; one instance serves concurrent reads.
type Reader struct {
	caller  ethcall.Caller
	timeout time.Duration
	logger  Logger
}

// NewReader creates a vault reader. A non-positive timeout falls back to the
// ethcall default.
func NewReader(caller ethcall.Caller, timeout time.Duration, logger Logger) *Reader {
	return &Reader{
		caller:  caller,
		timeout: timeout,
		logger:  logger,
	}
}

// Read assembles the record for one vault. It never fails: each read group
// that errors leaves its fields at their defaults and logs a warning.
//
// Group A reads total supply and the accessor address. Group B (share value,
// TVL, monthly return, denomination symbol) structurally depends on the
// accessor, so it is skipped when A fails. Group C (name, symbol) is
// independent of both and of each other.
func (r *Reader) Read(ctx context.Context, vault common.Address) VaultPerformanceRecord {
	rec := NewDefaultRecord()
	contract := ethcall.NewContract(vault, vaultABI, r.caller, r.timeout)

	totalSupply, accessor, err := r.readCore(ctx, contract)
	if err != nil {
		r.logger.Warn("vault core read failed, financial fields degraded",
			"vault", vault.Hex(), "err", err)
	} else {
		rec.TotalSupply = pricemath.ToDecimal(totalSupply, sharesDecimals)
		rec.SupplyLive = true
		if err := r.readPerformance(ctx, &rec, totalSupply, accessor); err != nil {
			r.logger.Warn("vault performance read failed, keeping defaults",
				"vault", vault.Hex(), "accessor", accessor.Hex(), "err", err)
		}
	}

	if name, err := readString(ctx, contract, "name"); err != nil {
		r.logger.Warn("vault name unavailable", "vault", vault.Hex(), "err", err)
	} else {
		rec.VaultName = name
		rec.NameLive = true
	}
	if symbol, err := readString(ctx, contract, "symbol"); err != nil {
		r.logger.Warn("vault symbol unavailable", "vault", vault.Hex(), "err", err)
	} else {
		rec.VaultSymbol = symbol
		rec.SymbolLive = true
	}

	return rec
}

// readCore fetches the Group A fields: share supply and accessor address.
func (r *Reader) readCore(ctx context.Context, vault *ethcall.Contract) (*big.Int, common.Address, error) {
	out, err := vault.Call(ctx, "totalSupply")
	if err != nil {
		return nil, common.Address{}, err
	}
	totalSupply, ok := out[0].(*big.Int)
	if !ok {
		return nil, common.Address{}, fmt.Errorf("totalSupply has unexpected type %T", out[0])
	}

	out, err = vault.Call(ctx, "getAccessor")
	if err != nil {
		return nil, common.Address{}, err
	}
	accessor, ok := out[0].(common.Address)
	if !ok {
		return nil, common.Address{}, fmt.Errorf("getAccessor has unexpected type %T", out[0])
	}
	if accessor == (common.Address{}) {
		return nil, common.Address{}, errors.New("vault has no accessor")
	}
	return totalSupply, accessor, nil
}

// readPerformance fills the Group B fields via the vault's comptroller. The
// denomination asset symbol is best-effort on top of the numeric group: its
// failure leaves the default symbol but keeps the numerics live.
func (r *Reader) readPerformance(ctx context.Context, rec *VaultPerformanceRecord, totalSupply *big.Int, accessor common.Address) error {
	comptroller := ethcall.NewContract(accessor, comptrollerABI, r.caller, r.timeout)

	out, err := comptroller.Call(ctx, "calcGrossShareValue")
	if err != nil {
		return err
	}
	gross, ok := out[0].(*big.Int)
	if !ok {
		return fmt.Errorf("calcGrossShareValue has unexpected type %T", out[0])
	}

	sharePrice := decimal.NewFromBigInt(gross, -sharesDecimals)
	supply := decimal.NewFromBigInt(totalSupply, -sharesDecimals)

	rec.SharePrice = sharePrice.String()
	rec.TotalValueLocked = supply.Mul(sharePrice).String()
	rec.MonthlyReturnPercent = monthlyReturn(sharePrice)
	rec.PerformanceLive = true

	if symbol, err := r.readDenominationSymbol(ctx, comptroller); err != nil {
		r.logger.Warn("denomination asset symbol unavailable",
			"accessor", accessor.Hex(), "err", err)
	} else {
		rec.DenominationAssetSymbol = symbol
		rec.DenominationLive = true
	}
	return nil
}

func (r *Reader) readDenominationSymbol(ctx context.Context, comptroller *ethcall.Contract) (string, error) {
	out, err := comptroller.Call(ctx, "getDenominationAsset")
	if err != nil {
		return "", err
	}
	asset, ok := out[0].(common.Address)
	if !ok {
		return "", fmt.Errorf("getDenominationAsset has unexpected type %T", out[0])
	}
	return r.readTokenSymbol(ctx, asset)
}

// readTokenSymbol reads an ERC-20 symbol, tolerating contracts that return
// bytes32 instead of string.
func (r *Reader) readTokenSymbol(ctx context.Context, token common.Address) (string, error) {
	c := ethcall.NewContract(token, erc20SymbolABI, r.caller, r.timeout)
	if out, err := c.Call(ctx, "symbol"); err == nil {
		if s, ok := out[0].(string); ok && s != "" {
			return s, nil
		}
	}

	cb := ethcall.NewContract(token, erc20SymbolBytes32ABI, r.caller, r.timeout)
	out, err := cb.Call(ctx, "symbol")
	if err != nil {
		return "", fmt.Errorf("symbol: %w", err)
	}
	if b, ok := out[0].([32]byte); ok {
		if s := strings.TrimRight(string(b[:]), "\x00"); s != "" {
			return s, nil
		}
	}
	return "", errors.New("empty symbol")
}

func readString(ctx context.Context, c *ethcall.Contract, method string) (string, error) {
	out, err := c.Call(ctx, method)
	if err != nil {
		return "", err
	}
	s, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("%s has unexpected type %T", method, out[0])
	}
	return s, nil
}

var (
	one                 = decimal.NewFromInt(1)
	hundred             = decimal.NewFromInt(100)
	monthlyReturnCapPct = decimal.NewFromInt(50)
)

// monthlyReturn approximates the vault's monthly return from its share price,
// assuming launch at par value 1.0 with no time windowing: sub-par prices
// clamp to zero, gains cap at 50%. Pending real historical-price tracking,
// callers must treat this as approximate.
func monthlyReturn(sharePrice decimal.Decimal) string {
	if sharePrice.LessThanOrEqual(one) {
		return DefaultMonthlyReturn
	}
	ret := sharePrice.Sub(one).Mul(hundred)
	if ret.GreaterThan(monthlyReturnCapPct) {
		ret = monthlyReturnCapPct
	}
	return ret.StringFixed(2)
}
