package snapshot

import (
	"context"
	"log/slog"
	"sync"

	"contract-ca/internal/core"
)

// Writer feeds a Store from a bounded drop-oldest queue drained by its own
// goroutine, so a slow backend never stalls the simulation.
type Writer struct {
	store    Store
	queue    *core.Mailbox[Record]
	logger   *slog.Logger
	onResult func(error)

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewWriter starts draining into store until Close or ctx ends.
func NewWriter(ctx context.Context, store Store, opts ...Option) *Writer {
	o := applyOptions(opts)
	ctx, cancel := context.WithCancel(ctx)
	w := &Writer{
		store:    store,
		queue:    core.NewMailbox[Record](o.capacity),
		logger:   o.logger,
		onResult: o.onResult,
		cancel:   cancel,
	}
	w.wg.Add(1)
	go w.loop(ctx)
	return w
}

// Enqueue schedules rec for saving and reports whether an older pending
// record was dropped.
func (w *Writer) Enqueue(rec Record) bool {
	dropped := w.queue.Put(rec)
	if dropped {
		w.logger.Warn("snapshot queue full, dropped oldest record", "generation", rec.Generation)
	}
	return dropped
}

// Dropped returns how many records were evicted before being saved.
func (w *Writer) Dropped() int64 { return w.queue.Dropped() }

func (w *Writer) loop(ctx context.Context) {
	defer w.wg.Done()
	for {
		rec, ok := w.queue.Take(ctx)
		if !ok {
			return
		}
		err := w.store.Save(ctx, rec.Generation, rec)
		if err != nil {
			w.logger.Error("snapshot save failed", "generation", rec.Generation, "error", err)
		}
		if w.onResult != nil {
			w.onResult(err)
		}
	}
}

// Close flushes pending records and stops the drain goroutine. It does not
// close the underlying store.
func (w *Writer) Close() {
	w.queue.Close()
	w.wg.Wait()
	w.cancel()
}
