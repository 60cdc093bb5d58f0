// Package scheduler drives periodic update check passes.
//
// The loop is a single long-lived goroutine: one full pass per tick, passes
// never overlap, and a failed pass is logged and pushed as an error
// notification but never stops the loop. Only context cancellation (process
// shutdown) ends it.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/blackwell-systems/updatewatch/internal/checker"
	"github.com/blackwell-systems/updatewatch/internal/notify"
	"github.com/blackwell-systems/updatewatch/internal/store"
)

// errorNotifyTimeout bounds the error push so a dead notification server
// cannot delay the next tick.
const errorNotifyTimeout = 10 * time.Second

// Scheduler runs notifying check passes on a fixed interval.
type Scheduler struct {
	checker  *checker.Checker
	notifier notify.Notifier
	interval time.Duration

	mu    sync.Mutex
	topic string
}

// New creates a Scheduler publishing to the given topic every interval.
func New(c *checker.Checker, n notify.Notifier, topic string, interval time.Duration) *Scheduler {
	return &Scheduler{
		checker:  c,
		notifier: n,
		interval: interval,
		topic:    topic,
	}
}

// Topic returns the current notification topic.
func (s *Scheduler) Topic() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic
}

// SetTopic swaps the notification topic. Safe to call while Run is active;
// the next pass picks it up. Used for config hot reload.
func (s *Scheduler) SetTopic(topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topic = topic
}

// Run blocks until ctx is cancelled. It executes one pass immediately, then
// one per tick. A pass runs to completion before the next tick is considered,
// so passes never overlap and writes to a given program are never raced.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Printf("scheduler: starting update check loop, interval %s", s.interval)

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Print("scheduler: shutting down")
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce executes a single notifying pass. Failures are reported, never
// propagated: the loop retries on the next tick.
func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	topic := s.Topic()

	log.Print("scheduler: starting update check")
	summary, err := s.checker.RunPass(ctx, checker.PassOptions{
		Type:   store.CheckTimed,
		Notify: true,
		Topic:  topic,
	})
	if err != nil {
		log.Printf("scheduler: update check failed: %v", err)
		s.notifyError(ctx, topic, err)
		return
	}

	log.Printf("scheduler: checked %d programs, %d updates available, %d notified, %d failed",
		summary.ProgramsChecked, summary.UpdatesFound(), summary.Notified, len(summary.Failed))
}

func (s *Scheduler) notifyError(ctx context.Context, topic string, cause error) {
	if ctx.Err() != nil {
		return
	}
	sendCtx, cancel := context.WithTimeout(ctx, errorNotifyTimeout)
	defer cancel()
	if err := s.notifier.SendError(sendCtx, topic, cause.Error()); err != nil {
		log.Printf("scheduler: error notification failed: %v", err)
	}
}
