package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/telegram-report-bot/internal/models"
	"github.com/telegram-report-bot/internal/storage"
	"github.com/telegram-report-bot/internal/summary"
)

// DigestCallback is a function that delivers the digest to a chat
type DigestCallback func(chatID int64, text string) error

// Scheduler runs the daily digest job and the startup retention sweep
type Scheduler struct {
	storage   *storage.Client
	generator *summary.Generator
	config    *models.BotConfig
	callback  DigestCallback
	cron      *cron.Cron
	timezone  *time.Location
	logger    zerolog.Logger
}

// New creates a new scheduler
func New(
	storage *storage.Client,
	generator *summary.Generator,
	config *models.BotConfig,
	callback DigestCallback,
	logger zerolog.Logger,
) (*Scheduler, error) {
	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", config.Timezone, err)
	}

	return &Scheduler{
		storage:   storage,
		generator: generator,
		config:    config,
		callback:  callback,
		cron:      cron.New(cron.WithLocation(loc)),
		timezone:  loc,
		logger:    logger.With().Str("component", "scheduler").Logger(),
	}, nil
}

// Start registers the daily digest job, kicks off the retention sweep in
// the background and blocks until the context is cancelled
func (s *Scheduler) Start(ctx context.Context) error {
	spec := fmt.Sprintf("%d %d * * *", s.config.SummaryMinute, s.config.SummaryHour)
	entryID, err := s.cron.AddFunc(spec, func() {
		s.runDailyDigest(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule daily digest (%s): %w", spec, err)
	}

	s.cron.Start()

	s.logger.Info().
		Str("cron", spec).
		Str("timezone", s.config.Timezone).
		Time("next_run", s.cron.Entry(entryID).Next).
		Msg("Daily digest scheduled")

	// Retention sweep must not block startup, and its failure must not
	// take the service down
	go s.runRetentionSweep(ctx)

	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
	return ctx.Err()
}

// Stop stops the cron runner and waits for any in-flight job
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

// runDailyDigest builds and delivers yesterday's digest
func (s *Scheduler) runDailyDigest(ctx context.Context) {
	now := time.Now().In(s.timezone)
	yesterday := now.AddDate(0, 0, -1)

	logger := s.logger.With().Str("date", yesterday.Format("2006-01-02")).Logger()
	logger.Info().Msg("Running daily digest")

	text, err := s.DigestForDate(ctx, yesterday)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build daily digest")
		return
	}

	if s.callback == nil {
		logger.Warn().Msg("No delivery callback configured, digest dropped")
		return
	}

	if err := s.callback(s.config.GroupChatID, text); err != nil {
		logger.Error().Err(err).Msg("Failed to deliver daily digest")
		return
	}

	logger.Info().Msg("Daily digest delivered")
}

// DigestForDate builds the digest for an arbitrary date
func (s *Scheduler) DigestForDate(ctx context.Context, date time.Time) (string, error) {
	reports, err := s.storage.ReportsForDate(ctx, date)
	if err != nil {
		return "", fmt.Errorf("failed to load reports: %w", err)
	}

	now := time.Now().In(s.timezone)
	return s.generator.Build(date, reports, now), nil
}

// runRetentionSweep removes reports older than the configured horizon
func (s *Scheduler) runRetentionSweep(ctx context.Context) {
	removed, err := s.storage.PurgeOlderThan(ctx, s.config.RetentionDays)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("retention_days", s.config.RetentionDays).
			Msg("Retention sweep failed")
		return
	}

	s.logger.Info().
		Int("retention_days", s.config.RetentionDays).
		Int64("removed", removed).
		Msg("Retention sweep completed")
}
