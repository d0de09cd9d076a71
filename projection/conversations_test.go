package projection

import (
	"chat-sim/domain/chat"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

var (
	jane  = chat.User{ID: "2", Name: "Jane Smith", Presence: chat.Online}
	mike  = chat.User{ID: "3", Name: "Mike Johnson", Presence: chat.Offline}
	sarah = chat.User{ID: "4", Name: "Sarah Williams", Presence: chat.Away}
)

func sidebar() []chat.Conversation {
	return []chat.Conversation{
		{ID: "1", Kind: chat.Individual, Participants: []chat.User{jane},
			LastMessage: &chat.Message{ID: "106", SenderID: "2", Content: "Thanks! I spent a lot of time on it."}},
		{ID: "2", Kind: chat.Individual, Participants: []chat.User{mike},
			LastMessage: &chat.Message{ID: "201", SenderID: "3", Content: "Let me know when you're free"}},
		{ID: "3", Kind: chat.Individual, Participants: []chat.User{sarah}},
		{ID: "4", Kind: chat.Group, Name: "Team Alpha", Participants: []chat.User{jane, mike, sarah},
			LastMessage: &chat.Message{ID: "401", SenderID: "2", Content: "Has everyone reviewed the latest updates?"}},
	}
}

func ids(conversations []chat.Conversation) []chat.ConversationID {
	return lo.Map(conversations, func(c chat.Conversation, _ int) chat.ConversationID { return c.ID })
}

func TestFilterConversations(t *testing.T) {
	tests := []struct {
		name  string
		tab   Tab
		query string
		want  []chat.ConversationID
	}{
		{"All tab, empty query", AllTab, "", []chat.ConversationID{"1", "2", "3", "4"}},
		{"Chats tab keeps individuals", ChatsTab, "", []chat.ConversationID{"1", "2", "3"}},
		{"Groups tab keeps groups", GroupsTab, "", []chat.ConversationID{"4"}},
		{"Participant name, any case", AllTab, "sMiTh", []chat.ConversationID{"1", "4"}},
		{"Group name", GroupsTab, "alpha", []chat.ConversationID{"4"}},
		{"Last message content", ChatsTab, "free", []chat.ConversationID{"2"}},
		{"No match", AllTab, "zebra", []chat.ConversationID{}},
		{"Tab applies before query", ChatsTab, "alpha", []chat.ConversationID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ids(FilterConversations(sidebar(), tt.tab, tt.query)))
		})
	}
}

func TestFilterConversations_ResultsAreMatchingSubset(t *testing.T) {
	req := require.New(t)
	all := sidebar()

	for _, q := range []string{"a", "JOHN", "the", "e", "?"} {
		got := FilterConversations(all, AllTab, q)
		req.Subset(ids(all), ids(got))
		for _, c := range got {
			req.True(lo.ContainsBy(searchFields(c), func(f string) bool {
				return strings.Contains(strings.ToLower(f), strings.ToLower(q))
			}), "conversation %s does not contain %q", c.ID, q)
		}
	}
}

func TestPreview(t *testing.T) {
	req := require.New(t)
	c := sidebar()[0]

	req.Equal("Thanks! I spent a lot of time on it.", Preview(c, "1"))

	// Own message gets a prefix
	c.LastMessage.SenderID = "1"
	req.Equal("You: Thanks! I spent a lot of time on it.", Preview(c, "1"))

	// Attachment only
	c.LastMessage.Content = "  "
	c.LastMessage.Attachments = []chat.Attachment{{Name: "design_concept.jpg", Kind: chat.Image}}
	req.Equal("You: design_concept.jpg", Preview(c, "1"))

	// Typing wins over the last message
	c.Typing = &chat.Typing{UserID: "2", Name: "Jane Smith"}
	req.Equal("Jane Smith is typing...", Preview(c, "1"))

	req.Empty(Preview(sidebar()[2], "1"))
}

func TestPresenceLabel(t *testing.T) {
	req := require.New(t)
	c := sidebar()

	req.Equal("Online", PresenceLabel(c[0]))
	req.Equal("Offline", PresenceLabel(c[1]))
	req.Equal("Away", PresenceLabel(c[2]))
	req.Equal("3 members", PresenceLabel(c[3]))
}

func TestTimeAgo(t *testing.T) {
	req := require.New(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := sidebar()[0]
	c.LastMessage.CreatedAt = now.Add(-5 * time.Minute)

	req.Equal("5 minutes ago", TimeAgo(c, now))
	req.Empty(TimeAgo(sidebar()[2], now))
}

func TestParseTab(t *testing.T) {
	req := require.New(t)
	tab, ok := ParseTab("Groups")
	req.True(ok)
	req.Equal(GroupsTab, tab)

	_, ok = ParseTab("archived")
	req.False(ok)
}
