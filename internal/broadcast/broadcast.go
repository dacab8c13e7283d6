// Package broadcast publishes completed generations and audit events to
// observers without coupling the simulation to any transport.
package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"contract-ca/internal/audit"
	"contract-ca/internal/core"
	"contract-ca/internal/sims/validation"
)

// Port receives simulation events. Implementations must not retain or
// modify grid.
type Port interface {
	OnGenerationUpdate(rec validation.GenerationRecord, grid [][][]int)
	OnAuditEvent(entry audit.Entry)
}

// EventKind tags a queued event.
type EventKind string

const (
	KindGeneration EventKind = "generation"
	KindAudit      EventKind = "audit"
)

// Event is one queued notification.
type Event struct {
	Kind   EventKind                    `json:"type"`
	Record *validation.GenerationRecord `json:"record,omitempty"`
	Grid   [][][]int                    `json:"grid,omitempty"`
	Entry  *audit.Entry                 `json:"entry,omitempty"`
}

// Dispatcher fans events out to registered observers from a single
// goroutine. Publishing never blocks: when the queue is full the oldest
// event is dropped. Observer panics are recovered and logged.
type Dispatcher struct {
	mu        sync.RWMutex
	observers []Port

	queue  *core.Mailbox[Event]
	logger *slog.Logger
	onDrop func()
	onFail func()

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the logger used for dropped events and observer failures.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithHooks registers counters for dropped events and observer failures.
func WithHooks(onDrop, onFail func()) DispatcherOption {
	return func(d *Dispatcher) {
		d.onDrop = onDrop
		d.onFail = onFail
	}
}

// NewDispatcher starts a dispatcher with a queue of the given capacity.
func NewDispatcher(ctx context.Context, capacity int, opts ...DispatcherOption) *Dispatcher {
	if capacity <= 0 {
		capacity = 64
	}
	ctx, cancel := context.WithCancel(ctx)
	d := &Dispatcher{
		queue:  core.NewMailbox[Event](capacity),
		logger: slog.Default(),
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.wg.Add(1)
	go d.loop(ctx)
	return d
}

// Subscribe registers an observer.
func (d *Dispatcher) Subscribe(p Port) {
	if p == nil {
		return
	}
	d.mu.Lock()
	d.observers = append(d.observers, p)
	d.mu.Unlock()
}

// OnGenerationUpdate implements Port by queueing the event.
func (d *Dispatcher) OnGenerationUpdate(rec validation.GenerationRecord, grid [][][]int) {
	d.publish(Event{Kind: KindGeneration, Record: &rec, Grid: grid})
}

// OnAuditEvent implements Port by queueing the event.
func (d *Dispatcher) OnAuditEvent(entry audit.Entry) {
	d.publish(Event{Kind: KindAudit, Entry: &entry})
}

func (d *Dispatcher) publish(ev Event) {
	if d.queue.Put(ev) {
		d.logger.Warn("broadcast queue full, dropped oldest event", "type", ev.Kind)
		if d.onDrop != nil {
			d.onDrop()
		}
	}
}

// Dropped returns how many events were evicted before delivery.
func (d *Dispatcher) Dropped() int64 { return d.queue.Dropped() }

func (d *Dispatcher) loop(ctx context.Context) {
	defer d.wg.Done()
	for {
		ev, ok := d.queue.Take(ctx)
		if !ok {
			return
		}
		d.mu.RLock()
		observers := append([]Port(nil), d.observers...)
		d.mu.RUnlock()
		for _, o := range observers {
			if err := deliver(o, ev); err != nil {
				d.logger.Error("broadcast observer failed", "type", ev.Kind, "error", err)
				if d.onFail != nil {
					d.onFail()
				}
			}
		}
	}
}

func deliver(o Port, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panic: %v", r)
		}
	}()
	switch ev.Kind {
	case KindGeneration:
		o.OnGenerationUpdate(*ev.Record, ev.Grid)
	case KindAudit:
		o.OnAuditEvent(*ev.Entry)
	}
	return nil
}

// Close delivers queued events and stops the dispatcher.
func (d *Dispatcher) Close() {
	d.queue.Close()
	d.wg.Wait()
	d.cancel()
}
