package services

import (
	"chat-sim/contract"
	"chat-sim/domain/chat"
	"chat-sim/projection"
	"chat-sim/store"
	"time"

	"github.com/samber/lo"
)

// ConversationItem is a row of the sidebar.
type ConversationItem struct {
	ID       chat.ConversationID
	Name     string
	Avatar   string
	Kind     chat.Kind
	Preview  string
	TimeAgo  string
	Unread   int
	Typing   bool
	Active   bool
	Presence chat.Presence
}

// ThreadView is the open conversation: its header and its messages by day.
type ThreadView struct {
	ID       chat.ConversationID
	Name     string
	Avatar   string
	Status   string
	Typing   *chat.Typing
	Groups   []projection.DateGroup
	Accounts map[chat.UserID]chat.User
}

type IChatService interface {
	Sidebar(tab projection.Tab, query string) []ConversationItem
	Thread() (ThreadView, bool)
	Open(id chat.ConversationID)
	Close()
	Send(content string, attachments ...chat.Attachment) chat.MessageID
	React(messageID chat.MessageID, emoji string)
	Unreact(messageID chat.MessageID)
	MarkRead(id chat.ConversationID)
	Typing(isTyping bool)
}

// ChatService turns store snapshots into the view models of the rendering layer.
type ChatService struct {
	store   *store.Store
	account contract.AccountProvider
	clock   contract.Clock
	loc     *time.Location
}

func NewChatService(s *store.Store, account contract.AccountProvider, clk contract.Clock, loc *time.Location) *ChatService {
	if loc == nil {
		loc = time.Local
	}
	return &ChatService{store: s, account: account, clock: clk, loc: loc}
}

func (s *ChatService) Sidebar(tab projection.Tab, query string) []ConversationItem {
	snap := s.store.Snapshot()
	me := s.account.CurrentUser().ID
	now := s.clock.Now()
	return lo.Map(projection.FilterConversations(snap.Conversations, tab, query),
		func(c chat.Conversation, _ int) ConversationItem {
			item := ConversationItem{
				ID:      c.ID,
				Name:    c.DisplayName(),
				Avatar:  c.AvatarURL(),
				Kind:    c.Kind,
				Preview: projection.Preview(c, me),
				TimeAgo: projection.TimeAgo(c, now),
				Unread:  c.UnreadCount,
				Typing:  c.Typing != nil,
				Active:  c.ID == snap.Active,
			}
			if c.Kind == chat.Individual && len(c.Participants) > 0 {
				item.Presence = c.Participants[0].Presence
			}
			return item
		})
}

// Thread returns the active conversation, false when none is open.
func (s *ChatService) Thread() (ThreadView, bool) {
	snap := s.store.Snapshot()
	if snap.Active == chat.NoConversation {
		return ThreadView{}, false
	}
	c, ok := lo.Find(snap.Conversations, func(c chat.Conversation) bool { return c.ID == snap.Active })
	if !ok {
		return ThreadView{}, false
	}
	me := s.account.CurrentUser()
	return ThreadView{
		ID:     c.ID,
		Name:   c.DisplayName(),
		Avatar: c.AvatarURL(),
		Status: projection.PresenceLabel(c),
		Typing: c.Typing,
		Groups: projection.GroupByDate(snap.Messages, s.loc),
		Accounts: lo.SliceToMap(append(c.Participants, me), func(u chat.User) (chat.UserID, chat.User) {
			return u.ID, u
		}),
	}, true
}

func (s *ChatService) Open(id chat.ConversationID) { s.store.SelectConversation(id) }

func (s *ChatService) Close() { s.store.SelectConversation(chat.NoConversation) }

func (s *ChatService) Send(content string, attachments ...chat.Attachment) chat.MessageID {
	return s.store.Send(content, attachments...)
}

func (s *ChatService) React(messageID chat.MessageID, emoji string) {
	s.store.AddReaction(messageID, emoji)
}

func (s *ChatService) Unreact(messageID chat.MessageID) { s.store.RemoveReaction(messageID) }

func (s *ChatService) MarkRead(id chat.ConversationID) { s.store.MarkRead(id) }

func (s *ChatService) Typing(isTyping bool) { s.store.SetTyping(isTyping) }
