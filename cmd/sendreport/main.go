// Command sendreport builds the digest for a given date from the report
// database and sends it to the configured group chat. Useful when the
// scheduled delivery was missed.
//
// Usage:
//
//	sendreport [-date YYYY-MM-DD] [-dry-run]
//
// The date defaults to yesterday in the configured timezone.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/telegram-report-bot/internal/config"
	"github.com/telegram-report-bot/internal/roster"
	"github.com/telegram-report-bot/internal/storage"
	"github.com/telegram-report-bot/internal/summary"
)

func main() {
	dateFlag := flag.String("date", "", "digest date in YYYY-MM-DD form (default: yesterday)")
	dryRun := flag.Bool("dry-run", false, "print the digest instead of sending it")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load timezone")
	}

	now := time.Now().In(loc)
	date := now.AddDate(0, 0, -1)
	if *dateFlag != "" {
		date, err = time.ParseInLocation("2006-01-02", *dateFlag, loc)
		if err != nil {
			logger.Fatal().Err(err).Str("date", *dateFlag).Msg("Invalid -date value")
		}
	}

	rst, err := roster.Load(cfg.RosterPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load roster")
	}

	store, err := storage.NewClient(cfg.DatabasePath, cfg.DatabaseTimeout, cfg.Timezone, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open report database")
	}
	defer store.Close()

	ctx := context.Background()
	reports, err := store.ReportsForDate(ctx, date)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load reports")
	}

	digest := summary.NewGenerator(rst, logger).Build(date, reports, now)

	if *dryRun {
		fmt.Println(digest)
		return
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create telegram bot")
	}

	msg := tgbotapi.NewMessage(cfg.GroupChatID, digest)
	msg.ParseMode = "Markdown"
	if _, err := api.Send(msg); err != nil {
		logger.Fatal().Err(err).Msg("Failed to send digest")
	}

	logger.Info().
		Str("date", date.Format("2006-01-02")).
		Int64("chat_id", cfg.GroupChatID).
		Msg("Digest sent")
}
