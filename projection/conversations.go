// Package projection builds the read models of the rendering layer.
// Every function is pure: it takes a snapshot and never mutates it.
package projection

import (
	"chat-sim/domain/chat"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
)

// Tab is the sidebar filter on conversation kind.
type Tab string

const (
	AllTab    Tab = "all"
	ChatsTab  Tab = "chats"
	GroupsTab Tab = "groups"
)

func ParseTab(s string) (Tab, bool) {
	switch Tab(strings.ToLower(s)) {
	case AllTab:
		return AllTab, true
	case ChatsTab:
		return ChatsTab, true
	case GroupsTab:
		return GroupsTab, true
	}
	return "", false
}

func (t Tab) accepts(kind chat.Kind) bool {
	switch t {
	case ChatsTab:
		return kind == chat.Individual
	case GroupsTab:
		return kind == chat.Group
	default:
		return true
	}
}

// FilterConversations keeps the conversations of the tab whose name, one of the
// participant names or the last message contains query, ignoring case.
// An empty query keeps the whole tab. Order is preserved.
func FilterConversations(conversations []chat.Conversation, tab Tab, query string) []chat.Conversation {
	needle := strings.ToLower(query)
	return lo.Filter(conversations, func(c chat.Conversation, _ int) bool {
		if !tab.accepts(c.Kind) {
			return false
		}
		if needle == "" {
			return true
		}
		return lo.ContainsBy(searchFields(c), func(field string) bool {
			return strings.Contains(strings.ToLower(field), needle)
		})
	})
}

func searchFields(c chat.Conversation) []string {
	fields := []string{c.Name}
	fields = append(fields, lo.Map(c.Participants, func(u chat.User, _ int) string {
		return u.Name
	})...)
	if c.LastMessage != nil {
		fields = append(fields, c.LastMessage.Content)
	}
	return fields
}

// Preview is the one-line summary shown under a conversation name.
func Preview(c chat.Conversation, currentUserID chat.UserID) string {
	if c.Typing != nil {
		return fmt.Sprintf("%s is typing...", c.Typing.Name)
	}
	if c.LastMessage == nil {
		return ""
	}
	content := c.LastMessage.Content
	if strings.TrimSpace(content) == "" && len(c.LastMessage.Attachments) > 0 {
		content = c.LastMessage.Attachments[0].Name
	}
	if c.LastMessage.SenderID == currentUserID {
		return "You: " + content
	}
	return content
}

// PresenceLabel is the header status: presence for a one-to-one chat,
// member count for a group.
func PresenceLabel(c chat.Conversation) string {
	if c.Kind == chat.Group {
		return fmt.Sprintf("%d members", len(c.Participants))
	}
	if len(c.Participants) == 0 {
		return ""
	}
	switch c.Participants[0].Presence {
	case chat.Online:
		return "Online"
	case chat.Away:
		return "Away"
	default:
		return "Offline"
	}
}

// TimeAgo renders the age of the last message, e.g. "5 minutes ago".
func TimeAgo(c chat.Conversation, now time.Time) string {
	if c.LastMessage == nil {
		return ""
	}
	return humanize.RelTime(c.LastMessage.CreatedAt, now, "ago", "from now")
}
