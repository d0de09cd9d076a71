package chat

import "github.com/samber/lo"

type ConversationID string

// NoConversation clears the active selection when passed to the store.
const NoConversation ConversationID = ""

type Kind string

const (
	Individual Kind = "individual"
	Group      Kind = "group"
)

// Typing is the transient "is typing" marker of a conversation.
type Typing struct {
	UserID UserID
	Name   string
}

// Conversation is an individual or group chat.
// LastMessage is a cache of the last message appended to the thread.
type Conversation struct {
	ID           ConversationID
	Kind         Kind
	Name         string
	Avatar       string
	Participants []User
	LastMessage  *Message
	UnreadCount  int
	Typing       *Typing
}

// DisplayName is the group name, or the name of the sole participant.
func (c Conversation) DisplayName() string {
	if c.Kind == Individual && len(c.Participants) > 0 {
		return c.Participants[0].Name
	}
	return c.Name
}

func (c Conversation) AvatarURL() string {
	if c.Kind == Individual && len(c.Participants) > 0 {
		return c.Participants[0].Avatar
	}
	return c.Avatar
}

func (c Conversation) Clone() Conversation {
	out := c
	out.Participants = append([]User(nil), c.Participants...)
	if c.LastMessage != nil {
		out.LastMessage = lo.ToPtr(c.LastMessage.Clone())
	}
	if c.Typing != nil {
		out.Typing = lo.ToPtr(*c.Typing)
	}
	return out
}
