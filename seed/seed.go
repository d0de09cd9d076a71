// Package seed loads the users, conversations and threads a session starts with.
// In a connected client this would be the fetch layer; here it reads YAML fixtures.
package seed

import (
	"chat-sim/domain/chat"
	"chat-sim/domain/mimetypes"
	"chat-sim/errors"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/demo.yaml
var demo []byte

// Data is the initial state of a session.
type Data struct {
	Account       chat.User
	Users         []chat.User
	Conversations []chat.Conversation
	Threads       map[chat.ConversationID][]chat.Message
}

// Messages returns a copy of the thread of a conversation, nil when there is none.
func (d Data) Messages(conversationID chat.ConversationID) []chat.Message {
	thread, ok := d.Threads[conversationID]
	if !ok {
		return nil
	}
	return lo.Map(thread, func(m chat.Message, _ int) chat.Message { return m.Clone() })
}

// Demo parses the embedded demo fixtures.
func Demo(now time.Time) (Data, error) {
	return Parse(demo, now)
}

// Load reads fixtures from path, or the embedded demo when path is empty.
func Load(path string, now time.Time) (Data, error) {
	if path == "" {
		return Demo(now)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw, now)
}

var validate = validator.New()

type fileUser struct {
	ID       string `yaml:"id" validate:"required"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Avatar   string `yaml:"avatar"`
	Presence string `yaml:"presence" validate:"omitempty,oneof=online away offline"`
}

type fileAttachment struct {
	ID   string `yaml:"id"`
	Kind string `yaml:"kind" validate:"omitempty,oneof=image video audio file"`
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
	Size string `yaml:"size"`
}

type fileReaction struct {
	Emoji string `yaml:"emoji" validate:"required"`
	User  string `yaml:"user" validate:"required"`
}

type fileMessage struct {
	ID          string           `yaml:"id" validate:"required"`
	Sender      string           `yaml:"sender" validate:"required"`
	Content     string           `yaml:"content"`
	Ago         string           `yaml:"ago"`
	Status      string           `yaml:"status" validate:"omitempty,oneof=sent delivered read"`
	Attachments []fileAttachment `yaml:"attachments" validate:"dive"`
	Reactions   []fileReaction   `yaml:"reactions" validate:"dive"`
}

type fileConversation struct {
	ID           string       `yaml:"id" validate:"required"`
	Kind         string       `yaml:"kind" validate:"required,oneof=individual group"`
	Name         string       `yaml:"name" validate:"required_if=Kind group"`
	Avatar       string       `yaml:"avatar"`
	Participants []string     `yaml:"participants" validate:"min=1"`
	Unread       int          `yaml:"unread" validate:"gte=0"`
	LastMessage  *fileMessage `yaml:"last_message"`
}

type file struct {
	Account       fileUser                 `yaml:"account"`
	Users         []fileUser               `yaml:"users" validate:"dive"`
	Conversations []fileConversation       `yaml:"conversations" validate:"dive"`
	Threads       map[string][]fileMessage `yaml:"threads" validate:"dive,dive"`
}

// Parse decodes fixtures, resolving "ago" offsets against now.
// A conversation with a thread caches the last message of that thread;
// the last_message entry is only used for conversations without one.
func Parse(raw []byte, now time.Time) (Data, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Data{}, fmt.Errorf("%w: %v", errors.ErrInvalidSeed, err)
	}
	if err := validate.Struct(f); err != nil {
		return Data{}, fmt.Errorf("%w: %v", errors.ErrInvalidSeed, err)
	}

	account := toUser(f.Account)

	data := Data{Account: account, Threads: make(map[chat.ConversationID][]chat.Message)}
	users := map[chat.UserID]chat.User{account.ID: account}
	for _, fu := range f.Users {
		u := toUser(fu)
		if _, dup := users[u.ID]; dup {
			return Data{}, fmt.Errorf("%w: duplicate user %q", errors.ErrInvalidSeed, u.ID)
		}
		users[u.ID] = u
		data.Users = append(data.Users, u)
	}

	for id, fms := range f.Threads {
		thread := make([]chat.Message, 0, len(fms))
		for _, fm := range fms {
			m, err := toMessage(fm, users, now)
			if err != nil {
				return Data{}, fmt.Errorf("thread %s: %w", id, err)
			}
			thread = append(thread, m)
		}
		data.Threads[chat.ConversationID(id)] = thread
	}

	seen := make(map[chat.ConversationID]struct{})
	for _, fc := range f.Conversations {
		c, err := toConversation(fc, users, now)
		if err != nil {
			return Data{}, err
		}
		if _, dup := seen[c.ID]; dup {
			return Data{}, fmt.Errorf("%w: duplicate conversation %q", errors.ErrInvalidSeed, c.ID)
		}
		seen[c.ID] = struct{}{}
		if thread := data.Threads[c.ID]; len(thread) > 0 {
			c.LastMessage = lo.ToPtr(thread[len(thread)-1].Clone())
		}
		data.Conversations = append(data.Conversations, c)
	}

	for id := range data.Threads {
		if _, ok := seen[id]; !ok {
			return Data{}, fmt.Errorf("%w: thread for unknown conversation %q", errors.ErrInvalidSeed, id)
		}
	}
	return data, nil
}

// The file structs are validated before any conversion: the to* functions
// only apply defaults and resolve references between users, conversations and threads.

func toUser(fu fileUser) chat.User {
	return chat.User{
		ID:       chat.UserID(fu.ID),
		Name:     fu.Name,
		Email:    fu.Email,
		Avatar:   fu.Avatar,
		Presence: chat.Presence(lo.CoalesceOrEmpty(fu.Presence, string(chat.Offline))),
	}
}

func toConversation(fc fileConversation, users map[chat.UserID]chat.User, now time.Time) (chat.Conversation, error) {
	c := chat.Conversation{
		ID:          chat.ConversationID(fc.ID),
		Kind:        chat.Kind(fc.Kind),
		Name:        fc.Name,
		Avatar:      fc.Avatar,
		UnreadCount: fc.Unread,
	}
	for _, pid := range fc.Participants {
		u, ok := users[chat.UserID(pid)]
		if !ok {
			return c, fmt.Errorf("%w: conversation %s references unknown user %q", errors.ErrInvalidSeed, fc.ID, pid)
		}
		c.Participants = append(c.Participants, u)
	}

	if c.Kind == chat.Individual && len(c.Participants) != 1 {
		return c, fmt.Errorf("%w: individual conversation %s needs one participant", errors.ErrInvalidSeed, fc.ID)
	}

	if fc.LastMessage != nil {
		m, err := toMessage(*fc.LastMessage, users, now)
		if err != nil {
			return c, fmt.Errorf("conversation %s: %w", fc.ID, err)
		}
		c.LastMessage = &m
	}
	return c, nil
}

func toMessage(fm fileMessage, users map[chat.UserID]chat.User, now time.Time) (chat.Message, error) {
	if _, ok := users[chat.UserID(fm.Sender)]; !ok {
		return chat.Message{}, fmt.Errorf("%w: message %s has unknown sender %q", errors.ErrInvalidSeed, fm.ID, fm.Sender)
	}
	var ago time.Duration
	if fm.Ago != "" {
		d, err := time.ParseDuration(fm.Ago)
		if err != nil {
			return chat.Message{}, fmt.Errorf("%w: message %s: %v", errors.ErrInvalidSeed, fm.ID, err)
		}
		ago = d
	}
	m := chat.Message{
		ID:        chat.MessageID(fm.ID),
		SenderID:  chat.UserID(fm.Sender),
		Content:   fm.Content,
		CreatedAt: now.Add(-ago),
		Status:    chat.Status(lo.CoalesceOrEmpty(fm.Status, string(chat.Sent))),
	}
	for _, fr := range fm.Reactions {
		m.React(chat.UserID(fr.User), fr.Emoji)
	}
	for i, fa := range fm.Attachments {
		a, err := toAttachment(fa, fm.ID, i)
		if err != nil {
			return chat.Message{}, err
		}
		m.Attachments = append(m.Attachments, a)
	}
	return m, nil
}

func toAttachment(fa fileAttachment, messageID string, i int) (chat.Attachment, error) {
	a := chat.Attachment{ID: fa.ID, Kind: chat.AttachmentKind(fa.Kind), URL: fa.URL, Name: fa.Name}
	if a.ID == "" {
		a.ID = fmt.Sprintf("att-%s-%d", messageID, i)
	}
	if a.Kind == "" {
		a.Kind = mimetypes.KindFromName(fa.Name)
	}
	if fa.Size != "" {
		size, err := humanize.ParseBytes(fa.Size)
		if err != nil {
			return a, fmt.Errorf("%w: attachment %s: %v", errors.ErrInvalidSeed, a.ID, err)
		}
		a.Size = lo.ToPtr(int64(size))
	}
	return a, nil
}
