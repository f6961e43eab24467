package notify

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultQueueSize      = 256
	defaultDeliverTimeout = 10 * time.Second
)

// Dispatcher feeds queued events to a Sink on a background goroutine.
// Enqueue never blocks; when the queue is full the event is dropped and
// logged.
type Dispatcher struct {
	sink   Sink
	logger *slog.Logger

	queue  chan Event
	stopCh chan struct{}
	doneCh chan struct{}
}

func NewDispatcher(sink Sink, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sink:   sink,
		logger: logger,
		queue:  make(chan Event, defaultQueueSize),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the delivery goroutine.
func (d *Dispatcher) Start() {
	go d.run()
}

// Stop signals the worker and waits for in-flight delivery to finish.
// Events still queued at stop time are dropped.
func (d *Dispatcher) Stop() {
	close(d.stopCh)
	<-d.doneCh
}

// Enqueue submits an event for delivery. Never blocks the caller.
func (d *Dispatcher) Enqueue(e Event) {
	select {
	case d.queue <- e:
	default:
		d.logger.Warn("notification queue full, dropping event",
			slog.String("kind", e.Kind),
			slog.String("subject", e.Subject))
	}
}

func (d *Dispatcher) run() {
	defer close(d.doneCh)

	for {
		select {
		case <-d.stopCh:
			return
		case e := <-d.queue:
			d.deliver(e)
		}
	}
}

func (d *Dispatcher) deliver(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultDeliverTimeout)
	defer cancel()

	if err := d.sink.Deliver(ctx, e); err != nil {
		d.logger.Error("notification delivery failed",
			slog.String("kind", e.Kind),
			slog.String("subject", e.Subject),
			slog.String("error", err.Error()))
	}
}
