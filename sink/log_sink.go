package sink

import (
	"chat-sim/domain/event"
	"context"
	"fmt"
	"log/slog"
)

// LogSink writes every store event as a structured log line.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) LogSink {
	return LogSink{log: log}
}

func (s LogSink) Consume(ctx context.Context, e event.DomainEvent) error {
	attrs := []any{"conversation", e.ConversationID(), "at", e.OccurredAt()}
	switch evt := e.(type) {
	case event.ConversationSelected:
		s.log.InfoContext(ctx, "Conversation selected", append(attrs, "previous", evt.Previous)...)
	case event.MessageSent:
		s.log.InfoContext(ctx, "Message sent", append(attrs, "message", evt.MessageID, "sender", evt.SenderID)...)
	case event.MessageDelivered:
		s.log.DebugContext(ctx, "Message delivered", append(attrs, "message", evt.MessageID)...)
	case event.MessagesRead:
		s.log.DebugContext(ctx, "Messages read", append(attrs, "count", len(evt.MessageIDs))...)
	case event.ReactionChanged:
		s.log.DebugContext(ctx, "Reaction changed", append(attrs, "message", evt.MessageID, "user", evt.UserID, "emoji", evt.Emoji)...)
	case event.TypingStarted:
		s.log.DebugContext(ctx, "Typing started", append(attrs, "user", evt.Typing.UserID)...)
	case event.TypingCleared:
		s.log.DebugContext(ctx, "Typing cleared", attrs...)
	default:
		s.log.Debug(fmt.Sprintf("Not implemented event : %T", evt))
	}
	return nil
}
