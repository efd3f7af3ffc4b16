package events

import (
	"context"
	"sync"
	"time"

	"github.com/gocomet/carpool/internal/observability"
	"github.com/gocomet/carpool/pkg/logger"
)

// Handler consumes dispatched events
type Handler interface {
	Name() string
	Handle(ctx context.Context, event Event) error
}

// Dispatcher fans events out to handlers from a buffered queue on its own
// goroutine. Emit never blocks; events are dropped when the queue is full.
type Dispatcher struct {
	queue          chan Event
	handlers       []Handler
	handlerTimeout time.Duration
	logger         *logger.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewDispatcher creates a dispatcher with the given queue size
func NewDispatcher(bufferSize int, handlerTimeout time.Duration, log *logger.Logger, handlers ...Handler) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if handlerTimeout <= 0 {
		handlerTimeout = 5 * time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Dispatcher{
		queue:          make(chan Event, bufferSize),
		handlers:       handlers,
		handlerTimeout: handlerTimeout,
		logger:         log,
		done:           make(chan struct{}),
	}
}

// Start runs the delivery loop until Close drains the queue
func (d *Dispatcher) Start() {
	go func() {
		defer close(d.done)
		for event := range d.queue {
			d.deliver(event)
		}
	}()
}

// Emit enqueues an event for delivery
func (d *Dispatcher) Emit(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		observability.EventsDroppedTotal.Inc()
		d.logger.Warn("Event emitted after dispatcher closed", logger.String("type", string(event.Type)))
		return
	}

	select {
	case d.queue <- event:
		observability.EventsEmittedTotal.WithLabelValues(string(event.Type)).Inc()
	default:
		observability.EventsDroppedTotal.Inc()
		d.logger.Warn("Event queue full, dropping event",
			logger.String("type", string(event.Type)),
			logger.ID("ride_id", event.RideID),
		)
	}
}

// Close stops accepting events and waits until queued ones are delivered
// or ctx is done
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) deliver(event Event) {
	for _, h := range d.handlers {
		ctx, cancel := context.WithTimeout(context.Background(), d.handlerTimeout)
		err := h.Handle(ctx, event)
		cancel()

		if err != nil {
			observability.EventDeliveriesTotal.WithLabelValues(h.Name(), "error").Inc()
			d.logger.Error("Event handler failed",
				logger.String("handler", h.Name()),
				logger.String("type", string(event.Type)),
				logger.ID("event_id", event.ID),
				logger.Err(err),
			)
			continue
		}
		observability.EventDeliveriesTotal.WithLabelValues(h.Name(), "ok").Inc()
	}
}

// Recorder keeps emitted events in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of everything emitted so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the emitted event types in order
func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
