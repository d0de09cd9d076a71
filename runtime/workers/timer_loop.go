package workers

import (
	"chat-sim/clock"
	"chat-sim/contract"
	"context"
	"log/slog"
	"time"
)

// TimerLoop is the real-time contract.Clock of a session.
// Every callback runs on the goroutine of Run, one after the other,
// in due-time order. Nothing fires until Run is started.
type TimerLoop struct {
	log   *slog.Logger
	queue *clock.Queue
	wake  chan struct{}
}

func NewTimerLoop(log *slog.Logger) *TimerLoop {
	return &TimerLoop{log: log, queue: clock.NewQueue(), wake: make(chan struct{}, 1)}
}

func (l *TimerLoop) Now() time.Time {
	return time.Now()
}

func (l *TimerLoop) AfterFunc(d time.Duration, fn func()) contract.Timer {
	t := l.queue.Push(time.Now().Add(d), fn)
	select {
	case l.wake <- struct{}{}:
	default:
	}
	return t
}

// Run fires due callbacks until ctx is canceled.
// A panicking callback is lost; the supervisor restarts the loop for the others.
func (l *TimerLoop) Run(ctx context.Context) error {
	for {
		for {
			fn, ok := l.queue.PopDue(time.Now())
			if !ok {
				break
			}
			fn()
		}

		var timeout <-chan time.Time
		var timer *time.Timer
		if next, ok := l.queue.Next(); ok {
			timer = time.NewTimer(time.Until(next))
			timeout = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			l.log.Debug("Timer loop stopped", "pending", l.queue.Len())
			return nil
		case <-l.wake:
		case <-timeout:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

// Close drops every pending callback.
func (l *TimerLoop) Close() {
	if n := l.queue.Clear(); n > 0 {
		l.log.Debug("Pending timers dropped", "count", n)
	}
}
