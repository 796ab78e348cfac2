package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// DefaultInterval is the sampling period when none is configured.
const DefaultInterval = 5 * time.Minute

// jobTimeout bounds a single sample run.
const jobTimeout = 30 * time.Second

// Job is one periodic unit of work, typically temperature.Sampler.
type Job interface {
	SampleAndStore(ctx context.Context) error
}

// Scheduler periodically runs the sampling job.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       Job
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler.
func New(job Job, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		job:       job,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first sample is taken immediately.
func (s *Scheduler) Start() error {
	if s.job == nil {
		s.logger.Info("scheduler: no job configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = int(DefaultInterval.Minutes())
	}

	if _, err := s.scheduler.Every(minutes).Minutes().Do(s.run); err != nil {
		return err
	}

	s.logger.Info("scheduler started", zap.Int("every_minutes", minutes))
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.job.SampleAndStore(ctx); err != nil {
		s.logger.Error("scheduler: sample failed", zap.Error(err))
	}
}

// Stop stops the scheduler and cancels any future runs. A run already in
// progress is allowed to finish.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
