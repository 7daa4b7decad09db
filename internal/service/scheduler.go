package service

import (
	"context"
	"sync"
	"time"

	"dining/internal/model"

	"github.com/rs/zerolog"
)

// IngestRunner runs one ingestion pass
type IngestRunner interface {
	Run(ctx context.Context, force bool) (*model.IngestResult, error)
}

// TaskStatus describes the scheduled ingestion task
type TaskStatus struct {
	LastRun   time.Time `json:"last_run"`
	NextRun   time.Time `json:"next_run"`
	IsRunning bool      `json:"is_running"`
	LastError string    `json:"last_error,omitempty"`
}

// Scheduler runs ingestion on a fixed interval until its context ends
type Scheduler struct {
	runner   IngestRunner
	interval time.Duration
	logger   zerolog.Logger

	mutex  sync.Mutex
	status TaskStatus
}

// NewScheduler creates a scheduler. Start does nothing when interval <= 0.
func NewScheduler(runner IngestRunner, interval time.Duration, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start runs one pass immediately, then one every interval, in a background
// goroutine. The returned channel is closed when the goroutine exits.
func (s *Scheduler) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if s.interval <= 0 {
		s.logger.Info().Msg("scheduled ingestion disabled")
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info().Dur("interval", s.interval).Msg("scheduler started")
		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("scheduler stopped")
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return done
}

// Status returns a snapshot of the task state
func (s *Scheduler) Status() TaskStatus {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.status
}

func (s *Scheduler) runOnce(ctx context.Context) {
	s.mutex.Lock()
	s.status.IsRunning = true
	s.mutex.Unlock()

	result, err := s.runner.Run(ctx, false)

	s.mutex.Lock()
	s.status.IsRunning = false
	s.status.LastRun = time.Now()
	s.status.NextRun = s.status.LastRun.Add(s.interval)
	s.status.LastError = ""
	if err != nil {
		s.status.LastError = err.Error()
	}
	s.mutex.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Msg("scheduled ingestion failed")
		return
	}
	s.logger.Debug().
		Bool("fetched", result.Fetched).
		Str("skipped_reason", result.SkippedReason).
		Msg("scheduled ingestion finished")
}
