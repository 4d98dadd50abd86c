package scanner

import (
	"context"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"

	"github.com/vaultscan/vaultscan-client-go/protocols/enzyme"
)

// BatchGetVaultPerformance reads many vaults in fixed-size concurrent
// batches with a pacing delay in between. One address hanging or failing
// never cancels its batch siblings; its record simply comes back degraded.
//
// Cancelling ctx stops issuing new batches; the map gathered so far is
// returned and stays valid. Results are keyed by address, order-independent.
func (s *Scanner) BatchGetVaultPerformance(ctx context.Context, addresses []common.Address) map[common.Address]enzyme.VaultPerformanceRecord {
	ordered := dedupe(addresses)
	total := len(ordered)
	results := make(map[common.Address]enzyme.VaultPerformanceRecord, total)
	if total == 0 {
		return results
	}

	var mu sync.Mutex
	done := 0

	for start := 0; start < total; start += s.batchSize {
		if ctx.Err() != nil {
			s.logger.Info("batch scan cancelled, returning partial results",
				"done", done, "total", total)
			return results
		}

		end := min(start+s.batchSize, total)
		batch := ordered[start:end]
		batchStart := time.Now()

		var wg sync.WaitGroup
		for _, vault := range batch {
			wg.Add(1)
			go func(vault common.Address) {
				defer wg.Done()
				rec := s.GetVaultPerformance(ctx, vault)
				mu.Lock()
				results[vault] = rec
				mu.Unlock()
			}(vault)
		}
		wg.Wait()

		s.metrics.batchDuration.Observe(time.Since(batchStart).Seconds())
		done += len(batch)
		s.logger.Debug("vault batch settled",
			"done", done, "total", total, "duration_ms", time.Since(batchStart).Milliseconds())
		if s.progress != nil {
			s.progress(done, total)
		}

		if end < total {
			select {
			case <-time.After(s.batchDelay):
			case <-ctx.Done():
				s.logger.Info("batch scan cancelled during pacing delay, returning partial results",
					"done", done, "total", total)
				return results
			}
		}
	}

	return results
}

// dedupe drops repeated addresses while keeping first-seen order, so batch
// composition stays deterministic for a given input.
func dedupe(addresses []common.Address) []common.Address {
	seen := mapset.NewThreadUnsafeSet[common.Address]()
	ordered := make([]common.Address, 0, len(addresses))
	for _, addr := range addresses {
		if seen.Add(addr) {
			ordered = append(ordered, addr)
		}
	}
	return ordered
}
