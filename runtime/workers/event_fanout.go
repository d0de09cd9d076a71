package workers

import (
	"chat-sim/contract"
	"chat-sim/domain/event"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// EventFanout broadcasts store events to multiple in-process consumers.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// durability, or retries. EventFanout is not a message broker.
// Each sink sees the events in emission order; a sink slower than the
// sink timeout has its context canceled.
//
// It is intended for side effects (views, logs), not for core domain logic.
type EventFanout struct {
	log         *slog.Logger
	sinks       []contract.EventSink
	registry    contract.IRegistry
	events      chan event.DomainEvent
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, sinks []contract.EventSink, registry contract.IRegistry,
	bufferSize int, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:         log,
		sinks:       sinks,
		registry:    registry,
		events:      make(chan event.DomainEvent, bufferSize),
		sinkTimeout: sinkTimeout,
	}
}

// Emit queues an event without blocking. Events are dropped when the buffer is full.
func (w *EventFanout) Emit(e event.DomainEvent) {
	select {
	case w.events <- e:
	default:
		w.log.Warn("Event buffer full, dropping event",
			"event", fmt.Sprintf("%T", e), "conversation", e.ConversationID())
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.events:
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		}
	}
}

// Fanout hands the event to the permanent sinks and to the sinks
// subscribed to its conversation, concurrently, and waits for all of them.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	sinks := append([]contract.EventSink(nil), w.sinks...)
	if w.registry != nil {
		sinks = append(sinks, w.registry.GetSinksForConversation(evt.ConversationID())...)
	}

	var wg sync.WaitGroup
	for _, sink := range sinks {
		wg.Add(1)
		go func(sink contract.EventSink) {
			defer wg.Done()
			sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
			defer cancel()
			if err := sink.Consume(sinkCtx, evt); err != nil {
				w.log.Error("Sink failed to consume event",
					"event", fmt.Sprintf("%T", evt), "error", err)
			}
		}(sink)
	}
	wg.Wait()
}
