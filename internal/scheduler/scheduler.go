package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

// Default janitor settings
const (
	DefaultIdleTimeout   = 30 * time.Minute
	DefaultSweepInterval = time.Minute
)

// SessionEvictor drops conversation state that has been idle for too long
type SessionEvictor interface {
	EvictIdle(idle time.Duration) int
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler     *gocron.Scheduler
	evictors      []SessionEvictor
	idleTimeout   time.Duration
	sweepInterval time.Duration
	log           logrus.FieldLogger
}

// New creates a new scheduler instance
func New(idleTimeout, sweepInterval time.Duration, log logrus.FieldLogger, evictors ...SessionEvictor) *Scheduler {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	return &Scheduler{
		scheduler:     gocron.NewScheduler(time.UTC),
		evictors:      evictors,
		idleTimeout:   idleTimeout,
		sweepInterval: sweepInterval,
		log:           log,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.sweepInterval).Do(s.evictIdleSessions); err != nil {
		return fmt.Errorf("failed to schedule session eviction: %w", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// evictIdleSessions drops sessions nobody answered within the idle timeout
func (s *Scheduler) evictIdleSessions() {
	if n := s.RunNow(); n > 0 {
		s.log.WithField("evicted", n).Info("Evicted idle sessions")
	}
}

// RunNow performs one eviction pass immediately and returns how many
// entries were dropped
func (s *Scheduler) RunNow() int {
	evicted := 0
	for _, e := range s.evictors {
		evicted += e.EvictIdle(s.idleTimeout)
	}
	return evicted
}
