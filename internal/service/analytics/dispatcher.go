package analytics

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iamasit07/4-in-a-row/server/internal/domain"
)

const (
	DefaultBufferSize     = 256
	DefaultPublishTimeout = 2 * time.Second
)

// Sink is where analytics events end up.
type Sink interface {
	Publish(ctx context.Context, event domain.AnalyticsEvent) error
}

// Dispatcher hands events to a Sink from a single background goroutine so
// that game logic never waits on, or fails because of, analytics.
type Dispatcher struct {
	sink    Sink
	events  chan domain.AnalyticsEvent
	timeout time.Duration

	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
	dropped atomic.Int64
}

func NewDispatcher(sink Sink, bufferSize int) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	d := &Dispatcher{
		sink:    sink,
		events:  make(chan domain.AnalyticsEvent, bufferSize),
		timeout: DefaultPublishTimeout,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Emit queues the event. When the buffer is full the event is dropped.
func (d *Dispatcher) Emit(event domain.AnalyticsEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return
	}

	select {
	case d.events <- event:
	default:
		d.dropped.Add(1)
		log.Printf("[ANALYTICS] Buffer full, dropping %s for %s", event.Type, event.RoomID)
	}
}

// Dropped reports how many events were discarded because the buffer was full.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for event := range d.events {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.sink.Publish(ctx, event); err != nil {
			log.Printf("[ANALYTICS] Failed to publish %s for %s: %v", event.Type, event.RoomID, err)
		}
		cancel()
	}
}

// Close stops accepting events and waits until the queued ones are published
// or ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
