package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/camsettings-bot/internal/ingest"
	"github.com/camsettings-bot/internal/logging"
)

// refreshTimeout bounds one ingestion cycle including its retries.
const refreshTimeout = 10 * time.Minute

// RefreshScheduler runs the ingestion refresher on a cron schedule.
type RefreshScheduler struct {
	cron      *cron.Cron
	refresher *ingest.Refresher
	schedule  string
	logger    *logging.Logger
}

// NewRefreshScheduler creates a scheduler for the given cron expression.
func NewRefreshScheduler(refresher *ingest.Refresher, schedule string, logger *logging.Logger) *RefreshScheduler {
	return &RefreshScheduler{
		cron:      cron.New(),
		refresher: refresher,
		schedule:  schedule,
		logger:    logger.WithField("component", "refresh_scheduler"),
	}
}

// Start registers the refresh job and starts the cron loop. An invalid
// schedule fails here, before anything runs.
func (s *RefreshScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.runOnce)
	if err != nil {
		return fmt.Errorf("failed to schedule refresh job %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.WithField("schedule", s.schedule).Info("Refresh scheduler started")
	return nil
}

// Stop stops scheduling and waits for a running refresh to finish.
func (s *RefreshScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.logger.Info("Refresh scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *RefreshScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.WithError(err).Error("Scheduled refresh failed")
	}
}
