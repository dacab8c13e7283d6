package sim

import (
	"log/slog"
	"time"

	"contract-ca/internal/broadcast"
	"contract-ca/internal/metrics"
	"contract-ca/internal/snapshot"
)

// Options configures a Simulation beyond the engine rules.
type Options struct {
	// HistoryLimit bounds the generation history ring.
	HistoryLimit int
	// AuditRetention bounds the audit trail.
	AuditRetention int
	// TPS paces Run; 0 runs as fast as possible.
	TPS float64

	// Store receives a snapshot every SnapshotEvery generations through an
	// async writer. Nil disables snapshots.
	Store         snapshot.Store
	SnapshotEvery int
	SnapshotQueue int

	// Port receives generation and audit events. Nil disables publishing.
	Port broadcast.Port

	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Clock   func() time.Time
}

// DefaultOptions returns the standard retention settings.
func DefaultOptions() Options {
	return Options{
		HistoryLimit:   256,
		AuditRetention: 10000,
		SnapshotEvery:  1,
		SnapshotQueue:  64,
	}
}

func (o *Options) normalize() {
	d := DefaultOptions()
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = d.HistoryLimit
	}
	if o.AuditRetention <= 0 {
		o.AuditRetention = d.AuditRetention
	}
	if o.SnapshotEvery <= 0 {
		o.SnapshotEvery = d.SnapshotEvery
	}
	if o.SnapshotQueue <= 0 {
		o.SnapshotQueue = d.SnapshotQueue
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
}
