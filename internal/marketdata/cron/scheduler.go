package cronjob

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Refresher is a job the scheduler runs periodically.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler refreshes the market news board on a cron spec.
type Scheduler struct {
	cron    *cron.Cron
	job     Refresher
	spec    string
	timeout time.Duration
	log     zerolog.Logger
}

// NewScheduler accepts six-field specs (with seconds) and descriptors such
// as "@every 15m".
func NewScheduler(spec string, job Refresher, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		job:     job,
		spec:    spec,
		timeout: 30 * time.Second,
		log:     log,
	}
}

// Start registers the refresh job, runs it once in the background to warm
// the board and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return fmt.Errorf("failed to create cron job %q: %w", s.spec, err)
	}

	go s.run()
	s.cron.Start()
	s.log.Info().Str("spec", s.spec).Msg("news refresh scheduler started")
	return nil
}

// Stop halts the schedule and returns a context that is done once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	ctx := s.cron.Stop()
	s.log.Info().Msg("news refresh scheduler stopped")
	return ctx
}

func (s *Scheduler) run() {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.job.Refresh(ctx); err != nil {
		s.log.Error().Err(err).Msg("news refresh failed")
		return
	}
	s.log.Debug().Dur("took", time.Since(start)).Msg("news refresh completed")
}
