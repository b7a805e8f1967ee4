// Package metrics defines the relayer's Prometheus instrumentation,
// grounded on cli/server/metrics.go and pkg/consensus/prometheus.go's
// package-level vector + init/MustRegister convention.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// RelayedNonce is the relayed-nonce high-watermark per lane/direction
	// (spec AMBIENT STACK, "Metrics").
	RelayedNonce = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Help:      "Highest nonce successfully relayed, per lane and direction",
			Name:      "relayed_nonce",
			Namespace: "bridgerelay",
		},
		[]string{"lane", "direction"})

	// StallRestarts counts how many times a lane task hit stall_timeout
	// and reset its progress timer (spec §4.J step 5).
	StallRestarts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of stall-timeout restarts, per lane and direction",
			Name:      "stall_restarts_total",
			Namespace: "bridgerelay",
		},
		[]string{"lane", "direction"})

	// BatchSize is the distribution of message counts per submitted
	// delivery batch (spec §4.J step 3).
	BatchSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Help:      "Number of messages in a submitted delivery batch",
			Name:      "batch_size",
			Namespace: "bridgerelay",
			Buckets:   prometheus.LinearBuckets(1, 8, 16),
		},
		[]string{"lane"})

	// RelayerBalance tracks the relayer's own estimated profitability
	// balance per chain (spec AMBIENT STACK, "Metrics").
	RelayerBalance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Help:      "Relayer's estimated own balance on each chain",
			Name:      "relayer_balance",
			Namespace: "bridgerelay",
		},
		[]string{"chain"})
)

func init() {
	prometheus.MustRegister(
		RelayedNonce,
		StallRestarts,
		BatchSize,
		RelayerBalance,
	)
}
