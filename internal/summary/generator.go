package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/telegram-report-bot/internal/models"
	"github.com/telegram-report-bot/internal/roster"
)

// Generator computes the daily attendance digest over stored reports.
// It never fails: an empty roster or empty report set still renders a
// valid digest.
type Generator struct {
	roster *roster.Roster
	logger zerolog.Logger
}

// NewGenerator creates a new digest generator
func NewGenerator(r *roster.Roster, logger zerolog.Logger) *Generator {
	return &Generator{
		roster: r,
		logger: logger.With().Str("component", "summary").Logger(),
	}
}

// Build renders the digest for one date. The output is deterministic for
// fixed inputs: report types iterate in registration order, participants
// in sorted tag order, and now is caller-supplied.
func (g *Generator) Build(date time.Time, reports models.DayReports, now time.Time) string {
	parts := []string{fmt.Sprintf("📊 **Сводка отчетов за %s**\n", date.Format("02.01.2006"))}

	for _, def := range g.roster.Types() {
		onTime, late, missing := g.classify(def, date, reports, now)

		parts = append(parts, fmt.Sprintf("\n%s **%s:**", def.Emoji, def.Name))
		if len(onTime) > 0 {
			parts = append(parts, "✅ Вовремя: "+strings.Join(onTime, ", "))
		}
		if len(late) > 0 {
			parts = append(parts, "⚠️ Опоздали: "+strings.Join(late, ", "))
		}
		if len(missing) > 0 {
			parts = append(parts, "❌ Не сдали: "+strings.Join(missing, ", "))
		}
	}

	g.logger.Debug().
		Str("date", date.Format("2006-01-02")).
		Int("participants", g.roster.Size()).
		Msg("Built daily digest")

	return strings.Join(parts, "\n")
}

// classify partitions the roster into on-time, late and missing for one
// report type. A participant whose deadline has not passed yet appears in
// none of the three lists.
func (g *Generator) classify(def models.ReportTypeDef, date time.Time, reports models.DayReports, now time.Time) (onTime, late, missing []string) {
	for _, tag := range g.roster.Tags() {
		report, ok := reports[tag][def.Code]
		if ok {
			entry := fmt.Sprintf("%s(%d)", tag, report.DayNumber)
			// Only hard-cutoff types can be late; a 23:59 deadline is
			// satisfied by any same-day submission
			if def.HardDeadline && def.Deadline.Exceeded(report.SubmittedAt) {
				late = append(late, entry)
			} else {
				onTime = append(onTime, entry)
			}
			continue
		}

		if g.deadlinePassed(def, date, now) {
			missing = append(missing, tag)
		}
	}
	return onTime, late, missing
}

// deadlinePassed reports whether an absent submission already counts as
// missing. Hard-cutoff types compare now's time-of-day against the
// deadline; all-day types are missing once the target date is over.
func (g *Generator) deadlinePassed(def models.ReportTypeDef, date, now time.Time) bool {
	if def.HardDeadline {
		return def.Deadline.Exceeded(now)
	}
	return dateAfter(now, date)
}

// dateAfter reports whether a's calendar date is strictly after b's
func dateAfter(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay > by
	}
	if am != bm {
		return am > bm
	}
	return ad > bd
}
