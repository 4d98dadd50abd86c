// Package scanner is the engine facade: it drives vault performance reads and
// swap quote resolution over a caller-supplied read-only RPC handle, pacing
// batches so a long address list does not overwhelm the endpoint.
package scanner

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vaultscan/vaultscan-client-go/ethcall"
	"github.com/vaultscan/vaultscan-client-go/networks"
	"github.com/vaultscan/vaultscan-client-go/protocols/enzyme"
	"github.com/vaultscan/vaultscan-client-go/protocols/uniswapv3"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

const (
	// DefaultBatchSize bounds concurrent in-flight vault reads.
	DefaultBatchSize = 4
	// DefaultBatchDelay paces consecutive batches for rate-limited endpoints.
	DefaultBatchDelay = 250 * time.Millisecond
)

// Scanner holds no mutable shared state between addresses; every per-address
// computation is independent. One instance serves concurrent callers.
type Scanner struct {
	network  networks.NetworkConfig
	caller   ethcall.Caller
	logger   Logger
	metrics  *metrics
	reader   *enzyme.Reader
	resolver *uniswapv3.Resolver

	batchSize   int
	batchDelay  time.Duration
	callTimeout time.Duration
	progress    func(done, total int)
}

// Option configures the Scanner.
// The interface method is unexported to prevent external modification after New.
type Option interface {
	apply(*Scanner)
}

type funcOption func(*Scanner)

func (f funcOption) apply(s *Scanner) {
	f(s)
}

func newOption(f func(*Scanner)) Option {
	return funcOption(f)
}

// WithBatchSize sets how many vault reads run concurrently per batch.
func WithBatchSize(n int) Option {
	return newOption(func(s *Scanner) {
		if n > 0 {
			s.batchSize = n
		}
	})
}

// WithBatchDelay sets the pacing delay inserted between batches.
func WithBatchDelay(d time.Duration) Option {
	return newOption(func(s *Scanner) {
		if d >= 0 {
			s.batchDelay = d
		}
	})
}

// WithCallTimeout bounds each individual on-chain call.
func WithCallTimeout(d time.Duration) Option {
	return newOption(func(s *Scanner) {
		if d > 0 {
			s.callTimeout = d
		}
	})
}

// WithBatchProgress installs a hook invoked after each settled batch with the
// number of completed addresses; used by pollers to show partial progress.
func WithBatchProgress(fn func(done, total int)) Option {
	return newOption(func(s *Scanner) {
		s.progress = fn
	})
}

// New creates a Scanner for one chain. The caller owns the RPC connection
// lifecycle; the Scanner only issues read calls through it.
func New(
	caller ethcall.Caller,
	chainID uint64,
	logger Logger,
	promRegistry prometheus.Registerer,
	opts ...Option,
) (*Scanner, error) {
	if caller == nil {
		return nil, errors.New("scanner: caller is required")
	}
	if logger == nil {
		return nil, errors.New("scanner: logger is required")
	}
	network, err := networks.Get(chainID)
	if err != nil {
		return nil, err
	}

	s := &Scanner{
		network:     network,
		caller:      caller,
		logger:      logger,
		batchSize:   DefaultBatchSize,
		batchDelay:  DefaultBatchDelay,
		callTimeout: ethcall.DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt.apply(s)
	}

	s.metrics = newMetrics(promRegistry)
	s.reader = enzyme.NewReader(caller, s.callTimeout, logger)
	s.resolver = uniswapv3.NewResolver(network, caller, s.callTimeout, logger)

	logger.Info("Scanner created", "chain", network.Name, "batch_size", s.batchSize)
	return s, nil
}

// Network returns the resolved configuration for the scanner's chain.
func (s *Scanner) Network() networks.NetworkConfig {
	return s.network
}

// GetVaultPerformance reads one vault. Partial on-chain failures degrade the
// affected fields to their defaults; the record is always returned.
func (s *Scanner) GetVaultPerformance(ctx context.Context, vault common.Address) enzyme.VaultPerformanceRecord {
	rec := s.reader.Read(ctx, vault)
	s.observeVaultRead(rec)
	return rec
}

// GetSwapQuote resolves a swap quote through the fallback chain. Returns a
// *uniswapv3.QuoteResolutionError when every strategy is exhausted.
func (s *Scanner) GetSwapQuote(ctx context.Context, req uniswapv3.QuoteRequest) (uniswapv3.QuoteResult, error) {
	res, err := s.resolver.Quote(ctx, req)
	if err != nil {
		s.metrics.quoteResolutions.WithLabelValues("failed").Inc()
		return uniswapv3.QuoteResult{}, err
	}
	s.metrics.quoteResolutions.WithLabelValues(string(res.Source)).Inc()
	return res, nil
}

func (s *Scanner) observeVaultRead(rec enzyme.VaultPerformanceRecord) {
	s.metrics.vaultReadGroups.WithLabelValues("core", liveLabel(rec.SupplyLive)).Inc()
	s.metrics.vaultReadGroups.WithLabelValues("performance", liveLabel(rec.PerformanceLive)).Inc()
	s.metrics.vaultReadGroups.WithLabelValues("denomination", liveLabel(rec.DenominationLive)).Inc()
	s.metrics.vaultReadGroups.WithLabelValues("name", liveLabel(rec.NameLive)).Inc()
	s.metrics.vaultReadGroups.WithLabelValues("symbol", liveLabel(rec.SymbolLive)).Inc()
}
