package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/rsilveira/secretary-bot/internal/config"
	"github.com/rsilveira/secretary-bot/internal/triage"
)

// Scheduler runs the periodic digest using gocron. The first run is pushed
// past the startup delay so the bot has a window of traffic to look at.
type Scheduler struct {
	scheduler gocron.Scheduler
	selector  *triage.Selector
	cfg       config.SchedulerConfig
	logger    *slog.Logger
	mu        sync.Mutex
	running   bool
}

// NewScheduler creates the digest scheduler.
func NewScheduler(selector *triage.Selector, cfg config.SchedulerConfig, logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		selector:  selector,
		cfg:       cfg,
		logger:    logger.With("component", "scheduler"),
	}, nil
}

// Start registers the digest job and begins ticking.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	firstRun := time.Now().Add(s.cfg.StartupDelay)

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.cfg.SummaryInterval),
		gocron.NewTask(func(ctx context.Context) {
			s.logger.Info("Running digest job")
			start := time.Now()
			if err := s.selector.Run(ctx); err != nil {
				s.logger.Error("Digest job failed", "error", err)
			}
			s.logger.Info("Finished digest job", "duration", time.Since(start))
		}, context.Background()),
		gocron.WithName("digest"),
		gocron.WithStartAt(gocron.WithStartDateTime(firstRun)),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule digest job: %w", err)
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started",
		"interval", s.cfg.SummaryInterval, "first_run", firstRun)
	return nil
}

// Stop shuts the scheduler down, waiting for a running digest to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	err := s.scheduler.Shutdown()
	s.running = false
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
		return err
	}

	s.logger.Info("Scheduler stopped gracefully.")
	return nil
}
