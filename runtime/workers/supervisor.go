package workers

import (
	"chat-sim/contract"
	"chat-sim/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultRestartInterval = 200 * time.Millisecond
	maxRestartInterval     = 5 * time.Second
)

// RestartHook is told about every crash before the worker is restarted.
type RestartHook func(worker string, crashes int, err error)

// Supervisor keeps the background workers of a session alive.
// A worker that panics or fails is restarted, waiting restartInterval after the
// first crash and twice as long after each consecutive one, up to maxRestartInterval.
// A worker returning nil, or stopped by its context, is not restarted.
type Supervisor struct {
	mu              sync.Mutex
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	log             *slog.Logger
	workers         []contract.Worker
	restartInterval time.Duration
	onRestart       RestartHook
}

func NewSupervisor(log *slog.Logger, restartInterval time.Duration) *Supervisor {
	if restartInterval <= 0 {
		restartInterval = defaultRestartInterval
	}
	return &Supervisor{log: log, restartInterval: restartInterval}
}

// OnRestart registers the hook called on each crash. Set it before Run.
func (s *Supervisor) OnRestart(hook RestartHook) *Supervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRestart = hook
	return s
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, worker...)
	return s
}

// Run starts every added worker and blocks until all of them returned.
func (s *Supervisor) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	workers := append([]contract.Worker(nil), s.workers...)
	s.mu.Unlock()
	defer cancel()

	for _, worker := range workers {
		s.Start(ctx, worker)
	}
	s.wg.Wait()
}

// Start supervises a single worker in its own goroutine.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.supervise(ctx, worker, contract.GetWorkerName(worker))
	}()
}

func (s *Supervisor) supervise(ctx context.Context, worker contract.Worker, name string) {
	crashes := 0
	for ctx.Err() == nil {
		err := runGuarded(ctx, worker)
		switch {
		case err == nil:
			s.log.Info("Worker finished", "name", name)
			return
		case ctx.Err() != nil:
			s.log.Info("Worker stopped", "name", name)
			return
		}

		crashes++
		delay := backoff(s.restartInterval, crashes)
		s.log.Warn("Worker crashed, restarting", "name", name, "crashes", crashes, "in", delay, "error", err)
		if hook := s.hook(); hook != nil {
			hook(name, crashes, err)
		}

		select {
		case <-ctx.Done():
		case <-time.After(delay):
		}
	}
}

// Stop cancels the workers started by Run. Run returns once they all returned.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Supervisor) hook() RestartHook {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onRestart
}

func runGuarded(ctx context.Context, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
		}
	}()
	return worker.Run(ctx)
}

func backoff(base time.Duration, crashes int) time.Duration {
	delay := base
	for i := 1; i < crashes && delay < maxRestartInterval; i++ {
		delay *= 2
	}
	return min(delay, maxRestartInterval)
}
