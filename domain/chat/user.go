// Package chat contains the core concepts of the chat client: users,
// conversations and messages, with the rules that keep them consistent.
// No runtime, timer, or rendering logic should be added here.
package chat

type UserID string

type Presence string

const (
	Online  Presence = "online"
	Away    Presence = "away"
	Offline Presence = "offline"
)

func (p Presence) Valid() bool {
	switch p {
	case Online, Away, Offline:
		return true
	}
	return false
}

// User is a participant of one or more conversations.
// Presence is the only field expected to change during a session.
type User struct {
	ID       UserID
	Name     string
	Email    string
	Avatar   string
	Presence Presence
}
