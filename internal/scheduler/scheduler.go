package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/vocabsheet/internal/batch"
)

// Refresher is the batch pipeline as the scheduler sees it
type Refresher interface {
	ProcessNextWindow(ctx context.Context) (batch.Status, error)
}

// Scheduler drives the batch refresh on a fixed cadence. One window per
// tick; SingletonMode guarantees a new window never starts while the
// previous one is still in flight, so stopping takes effect between windows.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
}

// New creates a scheduler instance
func New(refresher Refresher, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		interval:  interval,
	}
}

// Start begins running the refresh job in the background
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.runWindow)
	if err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates the schedule. An in-flight window finishes first.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runWindow() {
	status, err := s.refresher.ProcessNextWindow(context.Background())
	if err != nil {
		log.Printf("Batch window failed: %v", err)
		return
	}
	if status.Complete {
		log.Printf("Batch refresh complete: %d/%d rows", status.LastProcessed, status.TotalRows)
		return
	}
	log.Printf("Batch refresh at %d/%d rows", status.LastProcessed, status.TotalRows)
}
