package amqp

import (
	"context"
	"sync/atomic"

	"smartfinance/internal/events"
	"smartfinance/internal/log"
)

const defaultForwardBuffer = 256

// Forwarder relays record store events to a Publisher. Listeners enqueue
// without blocking; Run drains the queue. Events arriving while the queue is
// full are dropped and counted.
type Forwarder struct {
	publisher Publisher
	logger    *log.Logger
	queue     chan events.Event
	dropped   atomic.Int64
}

func NewForwarder(p Publisher, buffer int, logger *log.Logger) *Forwarder {
	if buffer <= 0 {
		buffer = defaultForwardBuffer
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Forwarder{
		publisher: p,
		logger:    logger.WithComponent(log.ComponentAMQP),
		queue:     make(chan events.Event, buffer),
	}
}

// Attach subscribes f to every event on bus.
func (f *Forwarder) Attach(bus *events.Bus) events.Subscription {
	return bus.SubscribeAll(f.enqueue)
}

func (f *Forwarder) enqueue(ev events.Event) {
	select {
	case f.queue <- ev:
	default:
		f.dropped.Add(1)
		f.logger.Warn("Change feed full, event dropped", log.FieldEvent, string(ev.Name))
	}
}

// Dropped returns the number of events lost to a full queue.
func (f *Forwarder) Dropped() int64 {
	return f.dropped.Load()
}

// Run publishes queued events until ctx is done. Publish failures are logged
// and the event is skipped.
func (f *Forwarder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-f.queue:
			f.publish(ctx, ev)
		}
	}
}

// Drain publishes the events still queued and returns how many it took off
// the queue. It stops early when ctx is done.
func (f *Forwarder) Drain(ctx context.Context) int {
	n := 0
	for ctx.Err() == nil {
		select {
		case ev := <-f.queue:
			f.publish(ctx, ev)
			n++
		default:
			return n
		}
	}
	return n
}

func (f *Forwarder) publish(ctx context.Context, ev events.Event) {
	if err := f.publisher.Publish(ctx, NewChangeMessage(ev)); err != nil {
		f.logger.ErrorContext(ctx, "Failed to publish change",
			log.FieldEvent, string(ev.Name),
			log.FieldUserID, ev.UserID,
			log.FieldError, err.Error())
	}
}
