package models

import "time"

// Deadline is a time-of-day cutoff with no date component
type Deadline struct {
	Hour   int
	Minute int
}

// Exceeded reports whether the time-of-day of t is strictly past the cutoff
func (d Deadline) Exceeded(t time.Time) bool {
	cutoff := time.Date(t.Year(), t.Month(), t.Day(), d.Hour, d.Minute, 0, 0, t.Location())
	return t.After(cutoff)
}

// String returns the cutoff in HH:MM form
func (d Deadline) String() string {
	return time.Date(0, 1, 1, d.Hour, d.Minute, 0, 0, time.UTC).Format("15:04")
}

// ReportTypeDef describes one category of expected daily submission
type ReportTypeDef struct {
	// Code is the short marker used in chat messages, e.g. "оу"
	Code string
	// Name is the human-readable display name for the digest
	Name string
	// Deadline is the submission cutoff for this type
	Deadline Deadline
	// HardDeadline marks types whose submissions past the deadline
	// count as late; soft types only distinguish submitted vs missing
	HardDeadline bool
	// Emoji heads this type's block in the digest
	Emoji string
}

// ParsedReport is one report marker extracted from a chat message
type ParsedReport struct {
	ReportType string
	UserTag    string
	DayNumber  int
}

// Report represents a persisted daily report submission.
// At most one report exists per (UserTag, ReportType, DayNumber);
// a resubmission overwrites the previous one.
type Report struct {
	ID          int64
	UserTag     string
	ReportType  string
	DayNumber   int
	SubmittedAt time.Time
	Username    string // originating chat handle, empty if the sender has none
	MessageID   int64  // originating Telegram message id, 0 if unknown
}

// DayReports groups one date's reports by participant tag and report type
type DayReports map[string]map[string]Report

// BotConfig represents bot configuration
type BotConfig struct {
	// Telegram settings
	TelegramToken string
	GroupChatID   int64

	// Storage settings
	DatabasePath    string
	DatabaseTimeout int

	// Roster settings
	RosterPath string // optional JSON override, empty means the built-in roster

	// App settings
	Timezone    string
	LogLevel    string
	Environment string

	// Daily digest schedule
	SummaryHour   int
	SummaryMinute int

	// Retention sweep horizon in days
	RetentionDays int
}
