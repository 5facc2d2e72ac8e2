package parser

import (
	"strconv"
	"strings"

	"github.com/telegram-report-bot/internal/models"
	"github.com/telegram-report-bot/internal/roster"
)

// DefaultDayNumber is assigned when a report marker carries no explicit
// day number
const DefaultDayNumber = 1

// Parser extracts report tuples from raw chat messages.
// Parsing is a pure function over the message text, the sender's handle
// and the roster; it never touches storage.
type Parser struct {
	roster *roster.Roster
}

// New creates a parser bound to a roster
func New(r *roster.Roster) *Parser {
	return &Parser{roster: r}
}

// Parse extracts zero or more report tuples from one message.
//
// Tokens are matched case-insensitively. A token is a report marker when
// it starts with '#' and its leading 3-character (then 2-character)
// substring after the prefix is a known report type code; any remaining
// characters must be digits forming the day number, otherwise the token
// is not a marker. The participant is the first following token that
// equals a roster tag; tokens up to and including it are consumed and
// not reused by later markers. Without an explicit tag the sender's own
// tag is used; an unknown sender silently drops the marker.
func (p *Parser) Parse(text, senderHandle string) []models.ParsedReport {
	var reports []models.ParsedReport

	words := strings.Fields(strings.ToLower(text))

	i := 0
	for i < len(words) {
		code, dayNumber, ok := p.matchMarker(words[i])
		if !ok {
			i++
			continue
		}

		// Look forward for an explicit participant tag
		userTag := ""
		consumed := i
		for j := i + 1; j < len(words); j++ {
			if p.roster.IsTag(words[j]) {
				userTag = words[j]
				consumed = j
				break
			}
		}

		// Fall back to the sender's own tag
		if userTag == "" {
			tag, known := p.roster.TagByHandle(senderHandle)
			if !known {
				// Sender is not on the roster and no tag was given:
				// the marker yields nothing
				i++
				continue
			}
			userTag = tag
		}

		reports = append(reports, models.ParsedReport{
			ReportType: code,
			UserTag:    userTag,
			DayNumber:  dayNumber,
		})
		i = consumed + 1
	}

	return reports
}

// matchMarker checks whether a single token is a report marker and
// extracts its type code and day number
func (p *Parser) matchMarker(token string) (string, int, bool) {
	runes := []rune(token)
	if len(runes) < 3 || runes[0] != '#' {
		return "", 0, false
	}
	body := runes[1:]

	// Try the 3-character code first so a 2-character code never
	// shadows the prefix of a longer one
	var code, numberPart string
	if len(body) >= 3 && p.roster.HasType(string(body[:3])) {
		code = string(body[:3])
		numberPart = string(body[3:])
	} else if p.roster.HasType(string(body[:2])) {
		code = string(body[:2])
		numberPart = string(body[2:])
	} else {
		return "", 0, false
	}

	if numberPart == "" {
		return code, DefaultDayNumber, true
	}

	if !allDigits(numberPart) {
		return "", 0, false
	}
	dayNumber, err := strconv.Atoi(numberPart)
	if err != nil {
		return "", 0, false
	}
	return code, dayNumber, true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
