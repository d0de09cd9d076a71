//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-sim/domain/chat"
	"chat-sim/domain/event"
	"context"
	"reflect"
	"time"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used by the supervisor for logging lifecycle events.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Timer is the cancellation handle of a scheduled callback.
// Stop reports whether the call prevented the callback from running.
type Timer interface {
	Stop() bool
}

// Clock gives the current time and runs deferred callbacks.
// Callbacks of one clock never run concurrently with each other
// and run in the order of their due time.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Emitter hands events over without blocking the caller.
type Emitter interface {
	Emit(e event.DomainEvent)
}

type IRegistry interface {
	GetSinksForConversation(conversationID chat.ConversationID) []EventSink
	Subscribe(viewID string, conversationID chat.ConversationID, sink EventSink)
	Unsubscribe(viewID string, conversationID chat.ConversationID)
}

// AccountProvider tells who is acting.
type AccountProvider interface {
	CurrentUser() chat.User
}

// MessageSource loads the thread of a conversation.
type MessageSource interface {
	Messages(conversationID chat.ConversationID) []chat.Message
}
