package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering.
type Config struct {
	Enabled bool
	// BufferSize is the event queue depth between callers and the sink.
	BufferSize int
	// DropIfFull drops events instead of blocking callers when the queue is
	// saturated. Drops are counted, never silent.
	DropIfFull bool
}

// Dispatcher decouples the hot path from the sink: Emit enqueues, a single
// background goroutine delivers. A nil *Dispatcher is valid and inert, which
// is what NewDispatcher returns when auditing is disabled.
type Dispatcher struct {
	config Config
	sink   Sink

	queue chan Event
	quit  chan struct{}

	drained  sync.WaitGroup
	dropped  atomic.Uint64
	stopped  atomic.Bool
	stopOnce sync.Once
}

// NewDispatcher starts the delivery goroutine. Returns nil when cfg.Enabled
// is false; all methods tolerate the nil receiver.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = 1
	}

	d := &Dispatcher{
		config: cfg,
		sink:   sink,
		queue:  make(chan Event, cfg.BufferSize),
		quit:   make(chan struct{}),
	}
	d.drained.Add(1)
	go d.deliver()
	return d
}

func (d *Dispatcher) deliver() {
	defer d.drained.Done()
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		case <-d.quit:
			d.flush()
			return
		}
	}
}

// flush hands every already-queued event to the sink before shutdown.
func (d *Dispatcher) flush() {
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit enqueues an event. With DropIfFull set it never blocks; otherwise it
// waits until there is queue room, the context ends, or the dispatcher is
// closed.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.stopped.Load() {
		return
	}

	if d.config.DropIfFull {
		select {
		case d.queue <- event:
		case <-d.quit:
		default:
			d.dropped.Add(1)
		}
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.queue <- event:
	case <-ctx.Done():
	case <-d.quit:
	}
}

// Close stops intake, delivers everything already queued, and waits for the
// delivery goroutine to exit. Safe to call more than once.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() {
		d.stopped.Store(true)
		close(d.quit)
		d.drained.Wait()
	})
}

// Dropped reports how many events were discarded because the queue was full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
