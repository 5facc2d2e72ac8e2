package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telegram-report-bot/internal/models"
)

const testTimezone = "Europe/Moscow"

func testClient(t *testing.T) *Client {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reports.db")
	c, err := NewClient(path, 5, testTimezone, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func mustLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(testTimezone)
	require.NoError(t, err)
	return loc
}

func TestSaveAndReadBack(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()
	loc := mustLocation(t)

	submittedAt := time.Date(2025, 3, 10, 9, 15, 42, 0, loc)
	report := &models.Report{
		UserTag:     "#тор",
		ReportType:  "оу",
		DayNumber:   17,
		SubmittedAt: submittedAt,
		Username:    "@mikhailovmind",
		MessageID:   4242,
	}
	require.NoError(t, c.SaveReport(ctx, report))

	reports, err := c.ReportsForDate(ctx, submittedAt)
	require.NoError(t, err)
	require.Contains(t, reports, "#тор")
	require.Contains(t, reports["#тор"], "оу")

	got := reports["#тор"]["оу"]
	assert.Equal(t, 17, got.DayNumber)
	assert.Equal(t, "@mikhailovmind", got.Username)
	assert.True(t, got.SubmittedAt.Equal(submittedAt), "expected %v, got %v", submittedAt, got.SubmittedAt)
}

func TestSaveOverwritesSameKey(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()
	loc := mustLocation(t)

	first := time.Date(2025, 3, 10, 8, 0, 0, 0, loc)
	second := time.Date(2025, 3, 10, 21, 30, 0, 0, loc)

	for _, ts := range []time.Time{first, second} {
		require.NoError(t, c.SaveReport(ctx, &models.Report{
			UserTag:     "#тор",
			ReportType:  "ос",
			DayNumber:   5,
			SubmittedAt: ts,
			Username:    "@mikhailovmind",
		}))
	}

	reports, err := c.ReportsForDate(ctx, first)
	require.NoError(t, err)
	require.Contains(t, reports["#тор"], "ос")
	assert.True(t, reports["#тор"]["ос"].SubmittedAt.Equal(second))

	var count int
	require.NoError(t, c.db.Get(&count, `SELECT COUNT(*) FROM reports`))
	assert.Equal(t, 1, count, "overwrite must leave exactly one row")
}

func TestOverwriteAcrossDates(t *testing.T) {
	// Same day number resubmitted on a later calendar date replaces the
	// earlier row, so the report moves to the new date's window
	c := testClient(t)
	ctx := context.Background()
	loc := mustLocation(t)

	monday := time.Date(2025, 3, 10, 12, 0, 0, 0, loc)
	tuesday := time.Date(2025, 3, 11, 12, 0, 0, 0, loc)

	for _, ts := range []time.Time{monday, tuesday} {
		require.NoError(t, c.SaveReport(ctx, &models.Report{
			UserTag:     "#ан",
			ReportType:  "ос",
			DayNumber:   9,
			SubmittedAt: ts,
		}))
	}

	mondayReports, err := c.ReportsForDate(ctx, monday)
	require.NoError(t, err)
	assert.Empty(t, mondayReports)

	tuesdayReports, err := c.ReportsForDate(ctx, tuesday)
	require.NoError(t, err)
	require.Contains(t, tuesdayReports, "#ан")
}

func TestReportsForDateEmpty(t *testing.T) {
	c := testClient(t)

	reports, err := c.ReportsForDate(context.Background(), time.Now())
	require.NoError(t, err)
	assert.NotNil(t, reports)
	assert.Empty(t, reports)
}

func TestSaveWithoutUsernameAndMessageID(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()
	loc := mustLocation(t)

	submittedAt := time.Date(2025, 3, 10, 9, 0, 0, 0, loc)
	require.NoError(t, c.SaveReport(ctx, &models.Report{
		UserTag:     "#оля",
		ReportType:  "гсд",
		DayNumber:   1,
		SubmittedAt: submittedAt,
	}))

	reports, err := c.ReportsForDate(ctx, submittedAt)
	require.NoError(t, err)
	got := reports["#оля"]["гсд"]
	assert.Empty(t, got.Username)
	assert.Zero(t, got.MessageID)
}

func TestPurgeOlderThanBoundary(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()
	loc := mustLocation(t)

	now := time.Now().In(loc)
	ages := map[string]int{
		"#ан":  31, // strictly before the horizon, removed
		"#тор": 30, // exactly at the horizon, kept
		"#оля": 1,  // recent, kept
	}
	for tag, age := range ages {
		require.NoError(t, c.SaveReport(ctx, &models.Report{
			UserTag:     tag,
			ReportType:  "ос",
			DayNumber:   age,
			SubmittedAt: now.AddDate(0, 0, -age),
		}))
	}

	removed, err := c.PurgeOlderThan(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	atHorizon, err := c.ReportsForDate(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Contains(t, atHorizon, "#тор")

	beyond, err := c.ReportsForDate(ctx, now.AddDate(0, 0, -31))
	require.NoError(t, err)
	assert.NotContains(t, beyond, "#ан")
}

func TestLegacySchemaMigration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")

	// Build a database with the pre-day-number schema
	raw, err := sqlx.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec(`
		CREATE TABLE reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_tag TEXT NOT NULL,
			report_type TEXT NOT NULL,
			report_date TEXT NOT NULL,
			submission_time TEXT NOT NULL,
			username TEXT,
			message_id INTEGER,
			UNIQUE(user_tag, report_type, report_date)
		)
	`)
	require.NoError(t, err)
	// A legacy table holds one row per date, so the same participant and
	// type appear on several dates
	legacyRows := [][]interface{}{
		{"#тор", "оу", "2025-03-10", "09:15:42", "@mikhailovmind", 77},
		{"#тор", "оу", "2025-03-11", "08:00:00", "@mikhailovmind", 81},
		{"#ан", "ос", "2025-03-10", "12:00:00", "@a_n_yaki", 78},
	}
	for _, row := range legacyRows {
		_, err = raw.Exec(
			`INSERT INTO reports (user_tag, report_type, report_date, submission_time, username, message_id) VALUES (?, ?, ?, ?, ?, ?)`,
			row...,
		)
		require.NoError(t, err)
	}
	require.NoError(t, raw.Close())

	c, err := NewClient(path, 5, testTimezone, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	loc := mustLocation(t)
	ctx := context.Background()

	// Rows colliding on (tag, type) collapse to day number 1 with the
	// newest submission winning; distinct keys migrate untouched
	var count int
	require.NoError(t, c.db.Get(&count, `SELECT COUNT(*) FROM reports`))
	assert.Equal(t, 2, count)

	reports, err := c.ReportsForDate(ctx, time.Date(2025, 3, 11, 0, 0, 0, 0, loc))
	require.NoError(t, err)
	require.Contains(t, reports, "#тор")
	require.Contains(t, reports["#тор"], "оу")

	got := reports["#тор"]["оу"]
	assert.Equal(t, 1, got.DayNumber, "legacy rows default to day number 1")
	assert.Equal(t, "@mikhailovmind", got.Username)
	assert.True(t, got.SubmittedAt.Equal(time.Date(2025, 3, 11, 8, 0, 0, 0, loc)))

	older, err := c.ReportsForDate(ctx, time.Date(2025, 3, 10, 0, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.NotContains(t, older, "#тор", "superseded legacy row must be gone")
	require.Contains(t, older, "#ан")
	assert.Equal(t, 1, older["#ан"]["ос"].DayNumber)

	// Migration is idempotent across restarts
	require.NoError(t, c.Close())
	c2, err := NewClient(path, 5, testTimezone, zerolog.Nop())
	require.NoError(t, err)
	defer c2.Close()

	reports, err = c2.ReportsForDate(ctx, time.Date(2025, 3, 11, 0, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Contains(t, reports, "#тор")
}
