// Package notify broadcasts short-lived notices (toasts) to the rendering layer.
package notify

import (
	"chat-sim/contract"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const DefaultTTL = 5 * time.Second

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
)

func (k Kind) Valid() bool {
	return k == Success || k == Error || k == Info
}

type Notice struct {
	ID        string
	Message   string
	Kind      Kind
	CreatedAt time.Time
}

// Observer receives the whole pending queue, in publish order, on every change.
type Observer func(queue []Notice)

type pending struct {
	notice Notice
	expiry contract.Timer
}

type subscription struct {
	id       uint64
	observer Observer
}

// delivery is a queue state waiting to be handed to its observers.
type delivery struct {
	to    []subscription
	queue []Notice
}

// Broadcaster owns the notice queue of a session.
// Observers run outside the broadcaster lock, so they may publish or dismiss.
// Changes are delivered one at a time, in the order they happened, by a single
// goroutine: a change made while another goroutine is delivering, or from an
// observer, is delivered by that goroutine after the current one.
type Broadcaster struct {
	mu        sync.Mutex
	log       *slog.Logger
	clock     contract.Clock
	ttl       time.Duration
	queue     []pending
	observers []subscription
	nextSub   uint64
	closed    bool
	outbox    []delivery
	flushing  bool
}

func NewBroadcaster(log *slog.Logger, clk contract.Clock, ttl time.Duration) *Broadcaster {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Broadcaster{log: log, clock: clk, ttl: ttl}
}

// Publish appends a notice and removes it again once the ttl elapses.
// An unknown kind is published as Info.
func (b *Broadcaster) Publish(message string, kind Kind) string {
	if !kind.Valid() {
		kind = Info
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ""
	}

	n := Notice{ID: uuid.NewString(), Message: message, Kind: kind, CreatedAt: b.clock.Now()}
	id := n.ID
	b.queue = append(b.queue, pending{
		notice: n,
		expiry: b.clock.AfterFunc(b.ttl, func() { b.expire(id) }),
	})
	b.log.Debug("Notice published", "id", id, "kind", kind)
	b.notify()
	b.mu.Unlock()

	b.flush()
	return id
}

// Subscribe registers an observer and hands it the current queue right away.
// The returned function unsubscribes it; calling it more than once is harmless.
// Subscribing to a closed broadcaster does nothing.
func (b *Broadcaster) Subscribe(observer Observer) func() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return func() {}
	}
	b.nextSub++
	id := b.nextSub
	sub := subscription{id: id, observer: observer}
	b.observers = append(b.observers, sub)
	b.outbox = append(b.outbox, delivery{to: []subscription{sub}, queue: b.snapshot()})
	b.mu.Unlock()

	b.flush()

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

// Dismiss removes a notice before it expires. It reports whether it was pending.
func (b *Broadcaster) Dismiss(id string) bool {
	b.mu.Lock()
	p, ok := b.remove(id)
	if !ok {
		b.mu.Unlock()
		return false
	}
	p.expiry.Stop()
	b.log.Debug("Notice dismissed", "id", id)
	b.notify()
	b.mu.Unlock()

	b.flush()
	return true
}

func (b *Broadcaster) Snapshot() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

// Close cancels the expiry timers and drops the observers.
// Publishing after Close does nothing.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, p := range b.queue {
		p.expiry.Stop()
	}
	b.queue = nil
	b.observers = nil
	b.outbox = nil
}

func (b *Broadcaster) expire(id string) {
	b.mu.Lock()
	if _, ok := b.remove(id); !ok {
		b.mu.Unlock()
		return
	}
	b.log.Debug("Notice expired", "id", id)
	b.notify()
	b.mu.Unlock()

	b.flush()
}

func (b *Broadcaster) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = lo.Reject(b.observers, func(s subscription, _ int) bool { return s.id == id })
}

func (b *Broadcaster) remove(id string) (pending, bool) {
	p, i, ok := lo.FindIndexOf(b.queue, func(p pending) bool { return p.notice.ID == id })
	if !ok {
		return pending{}, false
	}
	b.queue = append(b.queue[:i:i], b.queue[i+1:]...)
	return p, true
}

// notify queues the current state for every observer. Callers hold the lock.
func (b *Broadcaster) notify() {
	if len(b.observers) == 0 {
		return
	}
	b.outbox = append(b.outbox, delivery{to: slices.Clone(b.observers), queue: b.snapshot()})
}

// flush delivers the outbox unless another call is already doing it.
func (b *Broadcaster) flush() {
	b.mu.Lock()
	if b.flushing {
		b.mu.Unlock()
		return
	}
	b.flushing = true
	b.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			b.mu.Lock()
			b.flushing = false
			b.mu.Unlock()
			panic(r)
		}
	}()

	for {
		b.mu.Lock()
		if len(b.outbox) == 0 {
			b.flushing = false
			b.mu.Unlock()
			return
		}
		d := b.outbox[0]
		b.outbox = b.outbox[1:]
		b.mu.Unlock()

		for _, s := range d.to {
			if b.subscribed(s.id) {
				s.observer(slices.Clone(d.queue))
			}
		}
	}
}

func (b *Broadcaster) subscribed(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return lo.ContainsBy(b.observers, func(s subscription) bool { return s.id == id })
}

func (b *Broadcaster) snapshot() []Notice {
	return lo.Map(b.queue, func(p pending, _ int) Notice { return p.notice })
}
