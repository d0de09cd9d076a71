// Package runtime wires a chat session: timers, event propagation and supervision.
// It orchestrates the system without containing business logic or domain rules.
package runtime

import (
	"chat-sim/contract"
	"chat-sim/domain/chat"
	"chat-sim/moderation"
	"chat-sim/notify"
	"chat-sim/repositories"
	"chat-sim/runtime/workers"
	"chat-sim/seed"
	"chat-sim/sink"
	"chat-sim/store"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

type Options struct {
	Store           store.Config
	NoticeTTL       time.Duration
	BufferSize      int
	SinkTimeout     time.Duration
	RestartInterval time.Duration
	Moderation      bool
	CharReplacement rune
	// Languages of the censored word lists, every embedded list when empty.
	Languages []string
}

func DefaultOptions() Options {
	return Options{
		Store:           store.DefaultConfig(),
		NoticeTTL:       notify.DefaultTTL,
		BufferSize:      100,
		SinkTimeout:     time.Second,
		RestartInterval: 200 * time.Millisecond,
		CharReplacement: '*',
	}
}

// Session is the process-scoped owner of the conversation store and the notice
// broadcaster. Build it once, Start it, and hand its parts to the consumers.
type Session struct {
	mu         sync.Mutex
	log        *slog.Logger
	supervisor contract.ISupervisor
	registry   *Registry
	loop       *workers.TimerLoop
	fanout     *workers.EventFanout
	cancel     context.CancelFunc
	done       chan struct{}

	Account *repositories.AccountRepository
	Store   *store.Store
	Notices *notify.Broadcaster
}

// NewSession prepares every component of a session from seed data.
// Nothing runs, and no timer fires, until Start.
func NewSession(log *slog.Logger, data seed.Data, opts Options) (*Session, error) {
	registry := NewRegistry()
	loop := workers.NewTimerLoop(log)
	fanout := workers.NewEventFanout(log, []contract.EventSink{sink.NewLogSink(log)},
		registry, opts.BufferSize, opts.SinkTimeout)
	account := repositories.NewAccountRepository(data.Account)

	st := store.New(log, loop, account, data, fanout, opts.Store, data.Conversations)
	if opts.Moderation {
		moderator, err := prepareModeration(log, opts.CharReplacement, opts.Languages)
		if err != nil {
			return nil, err
		}
		st.WithCensor(moderator)
	}

	notices := notify.NewBroadcaster(log, loop, opts.NoticeTTL)
	supervisor := workers.NewSupervisor(log, opts.RestartInterval).
		OnRestart(func(string, int, error) {
			notices.Publish("Something went wrong, recovering", notify.Error)
		})

	return &Session{
		log:        log,
		supervisor: supervisor,
		registry:   registry,
		loop:       loop,
		fanout:     fanout,
		Account:    account,
		Store:      st,
		Notices:    notices,
	}, nil
}

// prepareModeration loads censored words and builds the Aho-Corasick automaton.
func prepareModeration(log *slog.Logger, charReplacement rune, languages []string) (*moderation.Moderator, error) {
	dict, err := LoadDictionary(CensoredFiles, "censored", languages...)
	if err != nil {
		return nil, err
	}

	log.Info(fmt.Sprintf("%d censored word lists loaded [%s]",
		len(dict.Languages), strings.Join(dict.Languages, ",")))
	log.Info(fmt.Sprintf("%d unique censored words loaded", len(dict.Words)))

	moderator, err := moderation.NewModerator(dict.Words, charReplacement, log)
	if err != nil {
		return nil, err
	}
	return &moderator, nil
}

// Clock is the real-time clock driving the simulated delays of the session.
func (s *Session) Clock() contract.Clock {
	return s.loop
}

// Follow routes the events of a conversation to the sink of a view.
func (s *Session) Follow(viewID string, conversationID chat.ConversationID, sink contract.EventSink) {
	s.registry.Subscribe(viewID, conversationID, sink)
}

func (s *Session) Unfollow(viewID string, conversationID chat.ConversationID) {
	s.registry.Unsubscribe(viewID, conversationID)
}

// Start runs the timer loop and the event fanout under supervision.
// It returns at once; the workers stop when ctx is canceled or on Stop.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	s.supervisor.Add(s.loop, s.fanout)
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	s.log.Info("Starting session and all supervised workers")
	go func(done chan struct{}) {
		defer close(done)
		s.supervisor.Run(ctx)
	}(s.done)
}

// Stop cancels the pending timers, stops the workers and waits for them.
func (s *Session) Stop() {
	s.log.Info("Requesting session shutdown")
	s.Store.Close()
	s.Notices.Close()
	s.loop.Close()

	s.mu.Lock()
	done, cancel := s.done, s.cancel
	s.mu.Unlock()
	if done == nil {
		return
	}
	cancel()
	s.supervisor.Stop()
	<-done
	s.log.Debug("Session stopped")
}
