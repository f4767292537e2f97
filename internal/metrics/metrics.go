package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WebSocket connection metrics
var (
	// ConnectionsCurrent tracks currently open feed connections
	ConnectionsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mockws_connections_current",
			Help: "Current number of open WebSocket connections",
		},
	)

	// ConnectionsTotal tracks every accepted upgrade
	ConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mockws_connections_total",
			Help: "Total WebSocket connections accepted",
		},
	)

	// UpgradeFailures tracks handshakes that could not be upgraded
	UpgradeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mockws_upgrade_failures_total",
			Help: "Total HTTP requests that failed the WebSocket upgrade",
		},
	)
)

// Broadcast tick metrics
var (
	// SnapshotsSent tracks frames written successfully
	SnapshotsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mockws_snapshots_sent_total",
			Help: "Total status snapshots written to clients",
		},
	)

	// SendFailures tracks writes that ended a connection loop
	SendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mockws_send_failures_total",
			Help: "Total snapshot writes that failed because the peer went away",
		},
	)

	// SnapshotBytes tracks serialized payload size
	SnapshotBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mockws_snapshot_bytes",
			Help:    "Size of serialized status snapshots in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 8),
		},
	)

	// MirrorErrors tracks failed side-channel publishes
	MirrorErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mockws_mirror_errors_total",
			Help: "Total snapshot mirror publishes that failed",
		},
	)
)
