package progress

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Sink consumes progress events.
type Sink interface {
	Consume(ctx context.Context, evt Event) error
}

const (
	defaultBufferSize = 256
	dropLogInterval   = 5 * time.Second
)

// Hub fans Events out to registered sinks from a background goroutine. Emit
// never blocks; when the buffer is full the event is dropped and counted. A
// nil *Hub is valid and discards everything.
type Hub struct {
	sinks   []Sink
	events  chan Event
	doneCh  chan struct{}
	logger  *zap.Logger
	dropped atomic.Int64
	lastLog atomic.Int64
	closed  atomic.Bool
}

// NewHub starts a Hub delivering to the supplied sinks.
func NewHub(logger *zap.Logger, sinks ...Sink) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		sinks:  append([]Sink(nil), sinks...),
		events: make(chan Event, defaultBufferSize),
		doneCh: make(chan struct{}),
		logger: logger,
	}
	go h.run()
	return h
}

// Emit enqueues an Event for delivery. Invalid events are discarded.
func (h *Hub) Emit(evt Event) {
	if h == nil || h.closed.Load() {
		return
	}
	if err := evt.Validate(); err != nil {
		h.logger.Debug("discarding invalid progress event", zap.Error(err))
		return
	}
	select {
	case h.events <- evt:
	default:
		h.dropped.Add(1)
		now := time.Now().UnixNano()
		last := h.lastLog.Load()
		if now-last > int64(dropLogInterval) && h.lastLog.CompareAndSwap(last, now) {
			h.logger.Warn("progress events dropped due to backpressure",
				zap.Int64("dropped", h.dropped.Swap(0)))
		}
	}
}

// Close drains buffered events and stops the background goroutine. Safe to
// call once; Emit becomes a no-op afterwards.
func (h *Hub) Close(ctx context.Context) error {
	if h == nil || !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(h.events)
	select {
	case <-h.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) run() {
	defer close(h.doneCh)
	for evt := range h.events {
		for _, sink := range h.sinks {
			if err := sink.Consume(context.Background(), evt); err != nil {
				h.logger.Warn("progress sink failed", zap.Error(err))
			}
		}
	}
}
