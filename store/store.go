// Package store holds the client-side conversation state of a session.
// Every mutation goes through Store and is serialised by its lock; timer
// callbacks take the same lock, so they apply atomically between user actions.
package store

import (
	"chat-sim/contract"
	"chat-sim/domain/chat"
	"chat-sim/domain/event"
	"chat-sim/domain/mimetypes"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

type Config struct {
	DeliveryDelay  time.Duration
	TypingDelay    time.Duration
	TypingDuration time.Duration
}

func DefaultConfig() Config {
	return Config{
		DeliveryDelay:  time.Second,
		TypingDelay:    500 * time.Millisecond,
		TypingDuration: 3 * time.Second,
	}
}

// Censor rewrites outgoing content, returning the words it hid.
type Censor interface {
	Censor(text string) (string, []string)
}

// Snapshot is a deep copy of the store state.
type Snapshot struct {
	Conversations []chat.Conversation
	Active        chat.ConversationID
	Messages      []chat.Message
}

// typingEcho tracks the simulated "is typing" of one conversation.
// start is pending until the indicator shows, clear until it goes away.
type typingEcho struct {
	start contract.Timer
	clear contract.Timer
}

type Store struct {
	mu      sync.Mutex
	log     *slog.Logger
	clock   contract.Clock
	account contract.AccountProvider
	source  contract.MessageSource
	emitter contract.Emitter
	censor  Censor
	cfg     Config

	conversations []chat.Conversation
	index         map[chat.ConversationID]int
	threads       map[chat.ConversationID][]chat.Message
	active        chat.ConversationID

	typing     map[chat.ConversationID]*typingEcho
	deliveries map[chat.MessageID]contract.Timer
	seq        uint64
	closed     bool
}

func New(log *slog.Logger, clk contract.Clock, account contract.AccountProvider,
	source contract.MessageSource, emitter contract.Emitter, cfg Config,
	conversations []chat.Conversation) *Store {
	s := &Store{
		log:        log,
		clock:      clk,
		account:    account,
		source:     source,
		emitter:    emitter,
		cfg:        cfg,
		index:      make(map[chat.ConversationID]int),
		threads:    make(map[chat.ConversationID][]chat.Message),
		typing:     make(map[chat.ConversationID]*typingEcho),
		deliveries: make(map[chat.MessageID]contract.Timer),
	}
	for _, c := range conversations {
		if _, dup := s.index[c.ID]; dup {
			log.Warn("Duplicate conversation ignored", "conversation", c.ID)
			continue
		}
		s.index[c.ID] = len(s.conversations)
		s.conversations = append(s.conversations, c.Clone())
	}
	return s
}

// WithCensor filters the content of every message sent afterwards.
func (s *Store) WithCensor(censor Censor) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.censor = censor
	return s
}

// SelectConversation makes id the active conversation and loads its thread
// the first time. Unread messages are marked read, even when the conversation
// was already active. NoConversation clears the selection; an unknown id is ignored.
func (s *Store) SelectConversation(id chat.ConversationID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	previous := s.active
	if id == chat.NoConversation {
		if previous == chat.NoConversation {
			return
		}
		s.stopTyping(previous)
		s.active = chat.NoConversation
		s.emit(event.ConversationSelected{Previous: previous, At: s.clock.Now()})
		return
	}

	idx, ok := s.index[id]
	if !ok {
		s.log.Debug("Select ignored, unknown conversation", "conversation", id)
		return
	}

	if id != previous {
		if previous != chat.NoConversation {
			s.stopTyping(previous)
		}
		s.active = id
		s.load(id)
		s.emit(event.ConversationSelected{Conversation: id, Previous: previous, At: s.clock.Now()})
	}

	if s.conversations[idx].UnreadCount > 0 {
		s.markRead(id)
	}
}

// Send appends a message from the acting account to the active conversation
// and schedules its delivery acknowledgment. It does nothing when no conversation
// is active, or when content is blank and there is no attachment.
// The returned id is empty when nothing was sent.
func (s *Store) Send(content string, attachments ...chat.Attachment) chat.MessageID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.active == chat.NoConversation {
		return ""
	}
	if strings.TrimSpace(content) == "" && len(attachments) == 0 {
		return ""
	}

	if s.censor != nil {
		censored, words := s.censor.Censor(content)
		if len(words) > 0 {
			s.log.Info("Outgoing message censored", "conversation", s.active, "words", len(words))
		}
		content = censored
	}

	conversationID := s.active
	thread := s.threads[conversationID]
	now := s.clock.Now()
	if n := len(thread); n > 0 && !now.After(thread[n-1].CreatedAt) {
		// Keep the thread strictly ordered when sends land on the same tick.
		now = thread[n-1].CreatedAt.Add(time.Nanosecond)
	}
	s.seq++

	msg := chat.Message{
		ID:          chat.MessageID(fmt.Sprintf("msg-%d-%d", now.UnixNano(), s.seq)),
		SenderID:    s.account.CurrentUser().ID,
		Content:     content,
		CreatedAt:   now,
		Status:      chat.Sent,
		Attachments: s.prepareAttachments(attachments, now),
	}
	s.threads[conversationID] = append(thread, msg)
	s.conversations[s.index[conversationID]].LastMessage = lo.ToPtr(msg.Clone())

	s.stopTyping(conversationID)

	msgID := msg.ID
	s.deliveries[msgID] = s.clock.AfterFunc(s.cfg.DeliveryDelay, func() {
		s.deliver(conversationID, msgID)
	})
	s.log.Debug("Message sent", "conversation", conversationID, "message", msgID)
	s.emit(event.MessageSent{Conversation: conversationID, MessageID: msgID, SenderID: msg.SenderID, At: now})
	return msgID
}

// MarkRead zeroes the unread counter of id and marks its loaded messages read.
// Applying it again changes nothing.
func (s *Store) MarkRead(id chat.ConversationID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, ok := s.index[id]; !ok {
		return
	}
	s.markRead(id)
}

// AddReaction sets the acting account's reaction on a message of the active thread,
// replacing the previous one. Unknown messages and empty emojis are ignored.
func (s *Store) AddReaction(messageID chat.MessageID, emoji string) {
	if emoji == "" {
		return
	}
	s.react(messageID, emoji)
}

// RemoveReaction drops the acting account's reaction on a message of the active thread.
func (s *Store) RemoveReaction(messageID chat.MessageID) {
	s.react(messageID, "")
}

// SetTyping signals that the user is typing in the active conversation.
// On true, the first participant appears to type back after the typing delay,
// and the indicator clears after the typing duration. Further true calls while
// an echo is pending or shown change nothing. False cancels the echo.
func (s *Store) SetTyping(isTyping bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.active == chat.NoConversation {
		return
	}
	conversationID := s.active
	if !isTyping {
		s.stopTyping(conversationID)
		return
	}
	if _, pending := s.typing[conversationID]; pending {
		return
	}
	echo := &typingEcho{}
	echo.start = s.clock.AfterFunc(s.cfg.TypingDelay, func() {
		s.showTyping(conversationID, echo)
	})
	s.typing[conversationID] = echo
}

// Close cancels every pending timer. The store ignores mutations afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, timer := range s.deliveries {
		timer.Stop()
		delete(s.deliveries, id)
	}
	for id, echo := range s.typing {
		echo.stop()
		delete(s.typing, id)
	}
	s.log.Debug("Store closed")
}

func (s *Store) Conversations() []chat.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneConversations()
}

func (s *Store) Conversation(id chat.ConversationID) (chat.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.index[id]
	if !ok {
		return chat.Conversation{}, false
	}
	return s.conversations[idx].Clone(), true
}

// Active returns the active conversation, if any.
func (s *Store) Active() (chat.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == chat.NoConversation {
		return chat.Conversation{}, false
	}
	return s.conversations[s.index[s.active]].Clone(), true
}

// Messages returns the thread of the active conversation.
func (s *Store) Messages() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneThread(s.active)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Conversations: s.cloneConversations(),
		Active:        s.active,
		Messages:      s.cloneThread(s.active),
	}
}

func (s *Store) react(messageID chat.MessageID, emoji string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.active == chat.NoConversation {
		return
	}
	conversationID := s.active
	thread := s.threads[conversationID]
	_, i, found := lo.FindIndexOf(thread, func(m chat.Message) bool { return m.ID == messageID })
	if !found {
		s.log.Debug("Reaction ignored, unknown message", "conversation", conversationID, "message", messageID)
		return
	}

	userID := s.account.CurrentUser().ID
	if emoji == "" {
		if !thread[i].Unreact(userID) {
			return
		}
	} else {
		thread[i].React(userID, emoji)
	}
	s.syncLastMessage(conversationID, i)
	s.emit(event.ReactionChanged{
		Conversation: conversationID,
		MessageID:    messageID,
		UserID:       userID,
		Emoji:        emoji,
		At:           s.clock.Now(),
	})
}

// load fetches the thread of id from the source the first time it is selected.
// Later selections reuse it so that messages sent in this session are kept.
func (s *Store) load(id chat.ConversationID) {
	if _, loaded := s.threads[id]; loaded {
		return
	}
	thread := s.source.Messages(id)
	if thread == nil {
		thread = []chat.Message{}
	}
	s.threads[id] = thread
	if len(thread) > 0 {
		s.syncLastMessage(id, len(thread)-1)
	}
	s.log.Debug("Thread loaded", "conversation", id, "messages", len(thread))
}

func (s *Store) markRead(id chat.ConversationID) {
	c := &s.conversations[s.index[id]]
	hadUnread := c.UnreadCount > 0
	c.UnreadCount = 0

	thread := s.threads[id]
	var read []chat.MessageID
	for i := range thread {
		if thread[i].MarkAs(chat.Read) {
			read = append(read, thread[i].ID)
			if timer, ok := s.deliveries[thread[i].ID]; ok {
				timer.Stop()
				delete(s.deliveries, thread[i].ID)
			}
		}
	}
	if len(thread) > 0 {
		s.syncLastMessage(id, len(thread)-1)
	}
	if !hadUnread && len(read) == 0 {
		return
	}
	s.emit(event.MessagesRead{Conversation: id, MessageIDs: read, At: s.clock.Now()})
}

func (s *Store) deliver(conversationID chat.ConversationID, messageID chat.MessageID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deliveries, messageID)
	if s.closed {
		return
	}
	thread := s.threads[conversationID]
	_, i, found := lo.FindIndexOf(thread, func(m chat.Message) bool { return m.ID == messageID })
	if !found || !thread[i].MarkAs(chat.Delivered) {
		return
	}
	s.syncLastMessage(conversationID, i)
	s.log.Debug("Message delivered", "conversation", conversationID, "message", messageID)
	s.emit(event.MessageDelivered{Conversation: conversationID, MessageID: messageID, At: s.clock.Now()})
}

func (s *Store) showTyping(conversationID chat.ConversationID, echo *typingEcho) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.typing[conversationID] != echo {
		return
	}
	c := &s.conversations[s.index[conversationID]]
	if len(c.Participants) == 0 {
		delete(s.typing, conversationID)
		return
	}
	// Always the first participant, groups included.
	first := c.Participants[0]
	c.Typing = &chat.Typing{UserID: first.ID, Name: first.Name}
	echo.start = nil
	echo.clear = s.clock.AfterFunc(s.cfg.TypingDuration, func() {
		s.clearTyping(conversationID, echo)
	})
	s.emit(event.TypingStarted{Conversation: conversationID, Typing: *c.Typing, At: s.clock.Now()})
}

func (s *Store) clearTyping(conversationID chat.ConversationID, echo *typingEcho) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.typing[conversationID] != echo {
		return
	}
	delete(s.typing, conversationID)
	s.conversations[s.index[conversationID]].Typing = nil
	s.emit(event.TypingCleared{Conversation: conversationID, At: s.clock.Now()})
}

// stopTyping cancels the echo of a conversation and hides its indicator.
func (s *Store) stopTyping(conversationID chat.ConversationID) {
	if echo, ok := s.typing[conversationID]; ok {
		echo.stop()
		delete(s.typing, conversationID)
	}
	c := &s.conversations[s.index[conversationID]]
	if c.Typing == nil {
		return
	}
	c.Typing = nil
	s.emit(event.TypingCleared{Conversation: conversationID, At: s.clock.Now()})
}

func (e *typingEcho) stop() {
	if e.start != nil {
		e.start.Stop()
	}
	if e.clear != nil {
		e.clear.Stop()
	}
}

func (s *Store) syncLastMessage(conversationID chat.ConversationID, i int) {
	thread := s.threads[conversationID]
	if i != len(thread)-1 {
		return
	}
	s.conversations[s.index[conversationID]].LastMessage = lo.ToPtr(thread[i].Clone())
}

func (s *Store) prepareAttachments(attachments []chat.Attachment, now time.Time) []chat.Attachment {
	if len(attachments) == 0 {
		return nil
	}
	return lo.Map(attachments, func(a chat.Attachment, i int) chat.Attachment {
		if a.ID == "" {
			a.ID = fmt.Sprintf("att-%d-%d", now.UnixNano(), i)
		}
		if !a.Kind.Valid() {
			a.Kind = mimetypes.KindFromName(a.Name)
		}
		if a.Size != nil {
			a.Size = lo.ToPtr(*a.Size)
		}
		return a
	})
}

// emit runs under the store lock so that events leave in mutation order.
// Emitters must not block nor call back into the store.
func (s *Store) emit(e event.DomainEvent) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(e)
}

func (s *Store) cloneConversations() []chat.Conversation {
	return lo.Map(s.conversations, func(c chat.Conversation, _ int) chat.Conversation {
		return c.Clone()
	})
}

func (s *Store) cloneThread(id chat.ConversationID) []chat.Message {
	if id == chat.NoConversation {
		return nil
	}
	return lo.Map(s.threads[id], func(m chat.Message, _ int) chat.Message {
		return m.Clone()
	})
}
