package chat

import (
	"time"

	"github.com/samber/lo"
)

type MessageID string

// Status is the delivery state of a message.
// It only moves forward: Sent -> Delivered -> Read.
type Status string

const (
	Sent      Status = "sent"
	Delivered Status = "delivered"
	Read      Status = "read"
)

func (s Status) rank() int {
	switch s {
	case Sent:
		return 1
	case Delivered:
		return 2
	case Read:
		return 3
	}
	return 0
}

// Advance returns the next status and whether it moved.
// A regression or an unknown status leaves the current one untouched.
func (s Status) Advance(next Status) (Status, bool) {
	if next.rank() <= s.rank() {
		return s, false
	}
	return next, true
}

type AttachmentKind string

const (
	Image AttachmentKind = "image"
	Video AttachmentKind = "video"
	Audio AttachmentKind = "audio"
	File  AttachmentKind = "file"
)

func (k AttachmentKind) Valid() bool {
	switch k {
	case Image, Video, Audio, File:
		return true
	}
	return false
}

type Attachment struct {
	ID   string
	Kind AttachmentKind
	URL  string
	Name string
	Size *int64
}

type Reaction struct {
	Emoji  string
	UserID UserID
}

// Message is a chat entry of a conversation.
// Status and Reactions are the only fields mutated after creation.
type Message struct {
	ID          MessageID
	SenderID    UserID
	Content     string
	CreatedAt   time.Time
	Status      Status
	Reactions   []Reaction
	Attachments []Attachment
}

// React sets the reaction of a user, replacing any previous one.
// The other reactions keep their relative order and the new one goes last.
func (m *Message) React(userID UserID, emoji string) {
	m.Reactions = append(lo.Reject(m.Reactions, func(r Reaction, _ int) bool {
		return r.UserID == userID
	}), Reaction{Emoji: emoji, UserID: userID})
}

// Unreact removes the reaction of a user and reports whether one existed.
func (m *Message) Unreact(userID UserID) bool {
	before := len(m.Reactions)
	m.Reactions = lo.Reject(m.Reactions, func(r Reaction, _ int) bool {
		return r.UserID == userID
	})
	return len(m.Reactions) != before
}

// MarkAs moves the status forward, returning false when it would regress.
func (m *Message) MarkAs(status Status) bool {
	next, ok := m.Status.Advance(status)
	m.Status = next
	return ok
}

// Clone returns a deep copy safe to hand out as a snapshot.
func (m Message) Clone() Message {
	out := m
	if m.Reactions != nil {
		out.Reactions = append([]Reaction(nil), m.Reactions...)
	}
	if m.Attachments != nil {
		out.Attachments = lo.Map(m.Attachments, func(a Attachment, _ int) Attachment {
			if a.Size != nil {
				a.Size = lo.ToPtr(*a.Size)
			}
			return a
		})
	}
	return out
}
