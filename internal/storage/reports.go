package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/telegram-report-bot/internal/models"
)

// reportRow is the database shape of a report
type reportRow struct {
	ID         int64          `db:"id"`
	UserTag    string         `db:"user_tag"`
	ReportType string         `db:"report_type"`
	DayNumber  int            `db:"day_number"`
	Datetime   string         `db:"datetime"`
	Username   sql.NullString `db:"username"`
	MessageID  sql.NullInt64  `db:"message_id"`
}

// SaveReport stores a report, replacing any existing report with the same
// (user_tag, report_type, day_number) key. Replacement is the defined
// behavior for resubmissions, not an error.
func (c *Client) SaveReport(ctx context.Context, report *models.Report) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var username interface{}
	if report.Username != "" {
		username = report.Username
	}
	var messageID interface{}
	if report.MessageID != 0 {
		messageID = report.MessageID
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reports
		(user_tag, report_type, day_number, datetime, username, message_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		report.UserTag,
		report.ReportType,
		report.DayNumber,
		report.SubmittedAt.In(c.timezone).Format(timeLayout),
		username,
		messageID,
	)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("user_tag", report.UserTag).
			Str("report_type", report.ReportType).
			Int("day_number", report.DayNumber).
			Msg("Failed to save report")
		return fmt.Errorf("failed to save report %s/%s/%d: %w",
			report.UserTag, report.ReportType, report.DayNumber, err)
	}

	c.logger.Debug().
		Str("user_tag", report.UserTag).
		Str("report_type", report.ReportType).
		Int("day_number", report.DayNumber).
		Time("submitted_at", report.SubmittedAt).
		Msg("Report saved")

	return nil
}

// ReportsForDate retrieves all reports submitted on the given calendar
// date, grouped by participant tag and report type. An empty result is an
// empty map, never an error.
func (c *Client) ReportsForDate(ctx context.Context, date time.Time) (models.DayReports, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	dateStr := date.In(c.timezone).Format("2006-01-02")

	var rows []reportRow
	err := c.db.SelectContext(ctx, &rows, `
		SELECT id, user_tag, report_type, day_number, datetime, username, message_id
		FROM reports
		WHERE date(datetime) = ?
		ORDER BY user_tag, report_type`,
		dateStr,
	)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("date", dateStr).
			Msg("Failed to get reports for date")
		return nil, fmt.Errorf("failed to get reports for %s: %w", dateStr, err)
	}

	reports := make(models.DayReports)
	for _, row := range rows {
		submittedAt, err := time.ParseInLocation(timeLayout, row.Datetime, c.timezone)
		if err != nil {
			return nil, fmt.Errorf("corrupt timestamp %q for %s/%s: %w",
				row.Datetime, row.UserTag, row.ReportType, err)
		}

		if _, ok := reports[row.UserTag]; !ok {
			reports[row.UserTag] = make(map[string]models.Report)
		}
		reports[row.UserTag][row.ReportType] = models.Report{
			ID:          row.ID,
			UserTag:     row.UserTag,
			ReportType:  row.ReportType,
			DayNumber:   row.DayNumber,
			SubmittedAt: submittedAt,
			Username:    row.Username.String,
			MessageID:   row.MessageID.Int64,
		}
	}

	c.logger.Debug().
		Str("date", dateStr).
		Int("report_count", len(rows)).
		Msg("Retrieved reports for date")

	return reports, nil
}

// PurgeOlderThan removes reports whose submission date is strictly older
// than the horizon and returns the number of rows removed. A report aged
// exactly horizonDays is kept.
func (c *Client) PurgeOlderThan(ctx context.Context, horizonDays int) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cutoff := time.Now().In(c.timezone).AddDate(0, 0, -horizonDays).Format("2006-01-02")

	res, err := c.db.ExecContext(ctx, `DELETE FROM reports WHERE date(datetime) < ?`, cutoff)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("cutoff", cutoff).
			Msg("Failed to purge old reports")
		return 0, fmt.Errorf("failed to purge reports before %s: %w", cutoff, err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged reports: %w", err)
	}

	c.logger.Info().
		Str("cutoff", cutoff).
		Int64("removed", removed).
		Msg("Purged old reports")

	return removed, nil
}
