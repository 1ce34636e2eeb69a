package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// RetentionScheduler runs the audit retention purge on a fixed schedule.
type RetentionScheduler struct {
	cron   *cron.Cron
	audit  AuditService
	logger zerolog.Logger
}

// NewRetentionScheduler wires the nightly purge job.
func NewRetentionScheduler(audit AuditService, logger zerolog.Logger) (*RetentionScheduler, error) {
	scheduler := &RetentionScheduler{
		cron:   cron.New(),
		audit:  audit,
		logger: logger.With().Str("component", "retention_scheduler").Logger(),
	}

	// Off-peak, once a day.
	if _, err := scheduler.cron.AddFunc("0 3 * * *", scheduler.runPurge); err != nil {
		return nil, err
	}

	return scheduler, nil
}

// Start begins the schedule in its own goroutine.
func (s *RetentionScheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("audit retention schedule started")
}

// Stop halts the schedule and waits for a running job to finish.
func (s *RetentionScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *RetentionScheduler) runPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := s.audit.PurgeExpired(ctx); err != nil {
		s.logger.Error().Err(err).Msg("audit retention purge failed")
	}
}
