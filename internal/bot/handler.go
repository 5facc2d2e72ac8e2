package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/telegram-report-bot/internal/models"
)

// handleUpdate processes incoming update
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	// Wrap in recover middleware
	b.recoverMiddleware(func() {
		// Handle message
		if update.Message != nil {
			b.handleMessage(ctx, update.Message)
		}
	})
}

// handleMessage processes incoming message
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	// Only process messages from the configured group chat
	if message.Chat.ID != b.config.GroupChatID {
		b.logger.Debug().
			Int64("chat_id", message.Chat.ID).
			Int64("expected_chat_id", b.config.GroupChatID).
			Msg("Ignoring message from different chat")
		return
	}

	// Handle commands
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	if message.Text == "" {
		return
	}

	b.handleReportMessage(ctx, message)
}

// handleCommand processes bot commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()

	b.logger.Info().
		Str("command", command).
		Int64("user_id", message.From.ID).
		Str("username", message.From.UserName).
		Msg("Received command")

	switch command {
	case "start", "help":
		b.handleHelpCommand(message)
	case "report":
		b.handleReportCommand(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "❓ Неизвестная команда. Используйте /help для списка команд.")
	}
}

// handleReportMessage extracts report markers from a plain message and
// persists each of them
func (b *Bot) handleReportMessage(ctx context.Context, message *tgbotapi.Message) {
	senderHandle := ""
	if message.From != nil && message.From.UserName != "" {
		senderHandle = "@" + message.From.UserName
	}

	parsed := b.parser.Parse(message.Text, senderHandle)
	if len(parsed) == 0 {
		// Not a report message, nothing to do
		return
	}

	submittedAt := message.Time().In(b.timezone)

	for _, pr := range parsed {
		report := &models.Report{
			UserTag:     pr.UserTag,
			ReportType:  pr.ReportType,
			DayNumber:   pr.DayNumber,
			SubmittedAt: submittedAt,
			Username:    senderHandle,
			MessageID:   int64(message.MessageID),
		}

		if err := b.storage.SaveReport(ctx, report); err != nil {
			// One failed save must not affect the other markers in
			// the same message
			b.logger.Error().
				Err(err).
				Str("user_tag", pr.UserTag).
				Str("report_type", pr.ReportType).
				Int("day_number", pr.DayNumber).
				Msg("Failed to save report")
			continue
		}

		b.logger.Info().
			Str("user_tag", pr.UserTag).
			Str("report_type", pr.ReportType).
			Int("day_number", pr.DayNumber).
			Time("submitted_at", submittedAt).
			Msg("Report saved")
	}
}

// handleReportCommand builds and sends yesterday's digest on demand
func (b *Bot) handleReportCommand(ctx context.Context, message *tgbotapi.Message) {
	now := time.Now().In(b.timezone)
	yesterday := now.AddDate(0, 0, -1)

	reports, err := b.storage.ReportsForDate(ctx, yesterday)
	if err != nil {
		b.logger.Error().
			Err(err).
			Str("date", yesterday.Format("2006-01-02")).
			Msg("Failed to load reports for manual digest")
		b.sendErrorMessage(message.Chat.ID, "❌ Ошибка при получении отчетов")
		return
	}

	digest := b.generator.Build(yesterday, reports, now)
	b.sendMessage(message.Chat.ID, digest)
}

// handleHelpCommand handles /help and /start commands
func (b *Bot) handleHelpCommand(message *tgbotapi.Message) {
	var sb strings.Builder

	sb.WriteString("📋 **Формат отчетов:**\n")
	sb.WriteString("`#типномер #участник`\n\n")

	sb.WriteString("🏷️ **Типы отчетов:**\n")
	for _, def := range b.roster.Types() {
		sb.WriteString(fmt.Sprintf("• `%s` - %s (до %s)\n", def.Code, def.Name, def.Deadline))
	}

	sb.WriteString("\n👥 **Участники:**\n")
	for _, tag := range b.roster.Tags() {
		if handle, ok := b.roster.HandleByTag(tag); ok {
			sb.WriteString(fmt.Sprintf("%s → %s\n", handle, tag))
		}
	}

	sb.WriteString("\n📅 **Пример:**\n")
	sb.WriteString("`#ос100 #тор` = спорт за 100-й день\n\n")
	sb.WriteString("Номер дня можно опустить, участник по умолчанию — отправитель.\n")
	sb.WriteString("/report - сводка за вчера")

	b.sendMessage(message.Chat.ID, sb.String())
}
