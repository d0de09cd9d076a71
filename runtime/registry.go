package runtime

import (
	"chat-sim/contract"
	"chat-sim/domain/chat"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Registry tracks which views follow which conversation.
// A view may follow several conversations, each with its own sink.
type Registry struct {
	mu      sync.RWMutex
	follows map[chat.ConversationID]map[string]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{follows: make(map[chat.ConversationID]map[string]contract.EventSink)}
}

// GetSinksForConversation returns the sinks of the views following a conversation,
// ordered by view id. It returns nil when nobody follows it.
func (r *Registry) GetSinksForConversation(conversationID chat.ConversationID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	views := r.follows[conversationID]
	if len(views) == 0 {
		return nil
	}
	ids := lo.Keys(views)
	slices.Sort(ids)
	return lo.Map(ids, func(id string, _ int) contract.EventSink { return views[id] })
}

// Subscribe makes a view follow a conversation, replacing the sink it used for it.
func (r *Registry) Subscribe(viewID string, conversationID chat.ConversationID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	views, ok := r.follows[conversationID]
	if !ok {
		views = make(map[string]contract.EventSink)
		r.follows[conversationID] = views
	}
	views[viewID] = sink
}

// Unsubscribe stops a view following one conversation. Its other follows are kept.
func (r *Registry) Unsubscribe(viewID string, conversationID chat.ConversationID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	views, ok := r.follows[conversationID]
	if !ok {
		return
	}
	delete(views, viewID)
	if len(views) == 0 {
		delete(r.follows, conversationID)
	}
}
