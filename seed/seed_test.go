package seed

import (
	"chat-sim/domain/chat"
	"chat-sim/errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestDemo(t *testing.T) {
	req := require.New(t)

	data, err := Demo(now)
	req.NoError(err)

	req.Equal(chat.UserID("1"), data.Account.ID)
	req.Equal("John Doe", data.Account.Name)
	req.Len(data.Users, 3)
	req.Len(data.Conversations, 4)

	// Conversation order follows the file
	req.Equal([]chat.ConversationID{"1", "2", "3", "4"}, lo.Map(data.Conversations, func(c chat.Conversation, _ int) chat.ConversationID {
		return c.ID
	}))

	team := data.Conversations[3]
	req.Equal(chat.Group, team.Kind)
	req.Equal("Team Alpha", team.DisplayName())
	req.Len(team.Participants, 3)
	req.Equal(5, team.UnreadCount)
	req.Equal(chat.Delivered, team.LastMessage.Status)
	req.Equal(now.Add(-10*time.Minute), team.LastMessage.CreatedAt)
}

func TestDemo_ThreadDrivesLastMessage(t *testing.T) {
	req := require.New(t)
	data, err := Demo(now)
	req.NoError(err)

	jane := data.Conversations[0]
	thread := data.Messages(jane.ID)
	req.Len(thread, 6)
	req.Equal("Jane Smith", jane.DisplayName())

	// The cached last message is the last one of the thread
	req.NotNil(jane.LastMessage)
	req.Equal(thread[5].ID, jane.LastMessage.ID)
	req.Equal(now.Add(-5*time.Minute), jane.LastMessage.CreatedAt)

	// Attachments get a kind from their name and a parsed size
	a := thread[3].Attachments[0]
	req.Equal(chat.Image, a.Kind)
	req.Equal(int64(1024000), *a.Size)

	req.Equal([]chat.Reaction{{Emoji: "👍", UserID: "1"}, {Emoji: "❤️", UserID: "2"}}, thread[4].Reactions)

	// And the thread is in chronological order
	for i := 1; i < len(thread); i++ {
		req.True(thread[i-1].CreatedAt.Before(thread[i].CreatedAt))
	}
}

func TestData_MessagesReturnsCopies(t *testing.T) {
	req := require.New(t)
	data, err := Demo(now)
	req.NoError(err)

	thread := data.Messages("1")
	thread[4].React("3", "🎉")
	thread[0].Content = "changed"

	again := data.Messages("1")
	req.Len(again[4].Reactions, 2)
	req.Equal("Hey there! How are you doing today?", again[0].Content)

	req.Nil(data.Messages("2"))
	req.Nil(data.Messages("unknown"))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed yaml", "account: [1"},
		{"account without id", "account: {name: x}"},
		{"bad presence", "account: {id: '1', presence: busy}"},
		{"unknown participant", `
account: {id: "1"}
conversations:
  - {id: "1", kind: individual, participants: ["9"]}`},
		{"individual with two participants", `
account: {id: "1"}
users: [{id: "2"}, {id: "3"}]
conversations:
  - {id: "1", kind: individual, participants: ["2", "3"]}`},
		{"group without name", `
account: {id: "1"}
users: [{id: "2"}]
conversations:
  - {id: "1", kind: group, participants: ["2"]}`},
		{"unknown kind", `
account: {id: "1"}
users: [{id: "2"}]
conversations:
  - {id: "1", kind: channel, participants: ["2"]}`},
		{"bad status", `
account: {id: "1"}
users: [{id: "2"}]
conversations:
  - {id: "1", kind: individual, participants: ["2"]}
threads:
  "1": [{id: m, sender: "2", status: seen}]`},
		{"bad size", `
account: {id: "1"}
users: [{id: "2"}]
conversations:
  - {id: "1", kind: individual, participants: ["2"]}
threads:
  "1": [{id: m, sender: "2", attachments: [{name: a.pdf, size: lots}]}]`},
		{"orphan thread", `
account: {id: "1"}
threads:
  "7": [{id: m, sender: "1"}]`},
		{"duplicate user", `
account: {id: "1"}
users: [{id: "1"}]`},
		{"negative unread", `
account: {id: "1"}
users: [{id: "2"}]
conversations:
  - {id: "1", kind: individual, participants: ["2"], unread: -1}`},
		{"conversation without participants", `
account: {id: "1"}
conversations:
  - {id: "1", kind: group, name: Empty}`},
		{"message without sender", `
account: {id: "1"}
users: [{id: "2"}]
conversations:
  - {id: "1", kind: individual, participants: ["2"]}
threads:
  "1": [{id: m, content: hi}]`},
		{"reaction without emoji", `
account: {id: "1"}
users: [{id: "2"}]
conversations:
  - {id: "1", kind: individual, participants: ["2"]}
threads:
  "1": [{id: m, sender: "2", reactions: [{user: "1"}]}]`},
		{"bad attachment kind", `
account: {id: "1"}
users: [{id: "2"}]
conversations:
  - {id: "1", kind: individual, participants: ["2"]}
threads:
  "1": [{id: m, sender: "2", attachments: [{name: a.bin, kind: sticker}]}]`},
		{"bad last message status", `
account: {id: "1"}
users: [{id: "2"}]
conversations:
  - id: "1"
    kind: individual
    participants: ["2"]
    last_message: {id: m, sender: "2", status: lost}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw), now)
			require.ErrorIs(t, err, errors.ErrInvalidSeed)
		})
	}
}

func TestParse_ReportsFailingField(t *testing.T) {
	raw := `
account: {id: "1"}
users: [{id: "2"}]
conversations:
  - {id: "1", kind: channel, participants: ["2"]}`

	_, err := Parse([]byte(raw), now)

	require.ErrorIs(t, err, errors.ErrInvalidSeed)
	require.ErrorContains(t, err, "Conversations[0].Kind")
	require.ErrorContains(t, err, "oneof")
}

func TestParse_Defaults(t *testing.T) {
	req := require.New(t)
	raw := `
account: {id: "1"}
users: [{id: "2", name: Ann}]
conversations:
  - {id: "1", kind: individual, participants: ["2"]}
threads:
  "1":
    - {id: m1, sender: "2", content: hi, attachments: [{name: report.pdf}]}
`
	data, err := Parse([]byte(raw), now)
	req.NoError(err)

	req.Equal(chat.Offline, data.Users[0].Presence)
	m := data.Threads["1"][0]
	req.Equal(chat.Sent, m.Status)
	req.Equal(now, m.CreatedAt)
	req.Equal("att-m1-0", m.Attachments[0].ID)
	req.Equal(chat.File, m.Attachments[0].Kind)
	req.Nil(m.Attachments[0].Size)
}

func TestLoad(t *testing.T) {
	req := require.New(t)

	// Given an empty path the embedded demo is used
	data, err := Load("", now)
	req.NoError(err)
	req.Len(data.Conversations, 4)

	// Given a file on disk
	path := filepath.Join(t.TempDir(), "seed.yaml")
	req.NoError(os.WriteFile(path, []byte("account: {id: '7', name: Solo}"), 0o600))
	data, err = Load(path, now)
	req.NoError(err)
	req.Equal("Solo", data.Account.Name)
	req.Empty(data.Conversations)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), now)
	req.Error(err)
}
