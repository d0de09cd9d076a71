// Package event defines what the conversation store tells its observers.
// Events are facts about state already applied; they carry ids, not state,
// so observers read the current snapshot when they need more.
package event

import (
	"chat-sim/domain/chat"
	"time"
)

type DomainEvent interface {
	ConversationID() chat.ConversationID
	OccurredAt() time.Time
}

// ConversationSelected is emitted when the active conversation changes.
// Conversation is empty when the selection was cleared.
type ConversationSelected struct {
	Conversation chat.ConversationID
	Previous     chat.ConversationID
	At           time.Time
}

func (e ConversationSelected) ConversationID() chat.ConversationID { return e.Conversation }
func (e ConversationSelected) OccurredAt() time.Time               { return e.At }

type MessageSent struct {
	Conversation chat.ConversationID
	MessageID    chat.MessageID
	SenderID     chat.UserID
	At           time.Time
}

func (e MessageSent) ConversationID() chat.ConversationID { return e.Conversation }
func (e MessageSent) OccurredAt() time.Time               { return e.At }

type MessageDelivered struct {
	Conversation chat.ConversationID
	MessageID    chat.MessageID
	At           time.Time
}

func (e MessageDelivered) ConversationID() chat.ConversationID { return e.Conversation }
func (e MessageDelivered) OccurredAt() time.Time               { return e.At }

// MessagesRead lists the messages whose status moved to read.
// It is also emitted with no ids when only the unread counter was reset.
type MessagesRead struct {
	Conversation chat.ConversationID
	MessageIDs   []chat.MessageID
	At           time.Time
}

func (e MessagesRead) ConversationID() chat.ConversationID { return e.Conversation }
func (e MessagesRead) OccurredAt() time.Time               { return e.At }

// ReactionChanged carries an empty Emoji when the reaction was removed.
type ReactionChanged struct {
	Conversation chat.ConversationID
	MessageID    chat.MessageID
	UserID       chat.UserID
	Emoji        string
	At           time.Time
}

func (e ReactionChanged) ConversationID() chat.ConversationID { return e.Conversation }
func (e ReactionChanged) OccurredAt() time.Time               { return e.At }

type TypingStarted struct {
	Conversation chat.ConversationID
	Typing       chat.Typing
	At           time.Time
}

func (e TypingStarted) ConversationID() chat.ConversationID { return e.Conversation }
func (e TypingStarted) OccurredAt() time.Time               { return e.At }

type TypingCleared struct {
	Conversation chat.ConversationID
	At           time.Time
}

func (e TypingCleared) ConversationID() chat.ConversationID { return e.Conversation }
func (e TypingCleared) OccurredAt() time.Time               { return e.At }
