package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/telegram-report-bot/internal/bot"
	"github.com/telegram-report-bot/internal/config"
	"github.com/telegram-report-bot/internal/parser"
	"github.com/telegram-report-bot/internal/roster"
	"github.com/telegram-report-bot/internal/scheduler"
	"github.com/telegram-report-bot/internal/storage"
	"github.com/telegram-report-bot/internal/summary"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel, cfg.Environment)

	// Load roster
	rst, err := roster.Load(cfg.RosterPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load roster")
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("timezone", cfg.Timezone).
		Str("database", cfg.DatabasePath).
		Int("participants", rst.Size()).
		Int("report_types", len(rst.Types())).
		Msg("Starting Telegram Report Bot")

	// Create context that listens for termination signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage client
	logger.Info().Msg("Initializing report store...")
	storageClient, err := storage.NewClient(cfg.DatabasePath, cfg.DatabaseTimeout, cfg.Timezone, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer func() {
		if err := storageClient.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close storage client")
		}
	}()

	// Verify the database is usable
	if err := storageClient.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	logger.Info().Msg("Database connection successful")

	// Initialize parser and digest generator
	reportParser := parser.New(rst)
	generator := summary.NewGenerator(rst, logger)

	// Initialize bot
	logger.Info().Msg("Initializing Telegram bot...")
	telegramBot, err := bot.New(cfg, storageClient, reportParser, generator, rst, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create bot")
	}

	logger.Info().
		Str("username", telegramBot.GetUsername()).
		Int64("group_chat_id", cfg.GroupChatID).
		Msg("Bot initialized successfully")

	// Initialize scheduler for the daily digest and retention sweep
	sched, err := scheduler.New(storageClient, generator, cfg, telegramBot.SendMessage, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create scheduler")
	}

	// Start scheduler in background
	go func() {
		if err := sched.Start(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("Scheduler stopped with error")
		}
	}()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start bot in a goroutine
	botErrChan := make(chan error, 1)
	go func() {
		if err := telegramBot.Start(ctx); err != nil {
			botErrChan <- err
		}
	}()

	logger.Info().Msg("Bot is running. Press Ctrl+C to stop.")

	// Wait for termination signal or bot error
	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Received termination signal")
	case err := <-botErrChan:
		logger.Error().Err(err).Msg("Bot stopped with error")
	}

	// Graceful shutdown
	logger.Info().Msg("Initiating graceful shutdown...")
	cancel()

	// Stop scheduler
	logger.Info().Msg("Stopping scheduler...")
	sched.Stop()

	// Give the bot some time to finish processing
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Create a channel to signal shutdown complete
	done := make(chan struct{})
	go func() {
		telegramBot.Stop() // This will wait for WaitGroup internally
		close(done)
	}()

	// Wait for shutdown or timeout
	select {
	case <-shutdownCtx.Done():
		logger.Warn().Msg("Shutdown timeout exceeded, some reports may be lost")
	case <-done:
		logger.Info().Msg("Graceful shutdown completed")
	}

	logger.Info().Msg("Bot stopped")
}

// setupLogger configures and returns a zerolog logger
func setupLogger(level, environment string) zerolog.Logger {
	// Parse log level
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	// Configure output format
	var logger zerolog.Logger
	if environment == "development" {
		// Pretty console output for development
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Caller().Logger()
	} else {
		// JSON output for production
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	return logger
}
