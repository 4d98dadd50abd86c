package scanner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	vaultReadGroups  *prometheus.CounterVec
	quoteResolutions *prometheus.CounterVec
	batchDuration    prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		vaultReadGroups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vaultscan",
			Subsystem: "vault",
			Name:      "read_groups_total",
			Help:      "Vault read groups by group and result (live or degraded).",
		}, []string{"group", "result"}),
		quoteResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vaultscan",
			Subsystem: "quote",
			Name:      "resolutions_total",
			Help:      "Swap quote resolutions by producing source, or failed.",
		}, []string{"source"}),
		batchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vaultscan",
			Subsystem: "batch",
			Name:      "duration_seconds",
			Help:      "Wall time of one concurrently-read vault batch.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

const (
	resultLive     = "live"
	resultDegraded = "degraded"
)

func liveLabel(live bool) string {
	if live {
		return resultLive
	}
	return resultDegraded
}
