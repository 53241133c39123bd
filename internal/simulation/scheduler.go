package simulation

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler runs a task at a fixed interval on its own goroutine until it is
// stopped or its context is cancelled.
type Scheduler struct {
	interval time.Duration
	task     func()

	running  atomic.Bool
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewScheduler creates a stopped scheduler for task.
func NewScheduler(interval time.Duration, task func()) *Scheduler {
	return &Scheduler{
		interval: interval,
		task:     task,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins ticking. It is a no-op if the scheduler already started.
// A scheduler cannot be restarted after Stop.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	go s.loop(ctx)
}

// Stop halts the loop and waits for an in-flight task to return. Safe to call
// more than once and before Start.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	if s.running.Load() {
		<-s.done
	}
}

// Done is closed once the loop has exited.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A stop that raced with the tick wins.
			select {
			case <-s.stopChan:
				return
			default:
			}
			s.task()
		}
	}
}
