package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/telegram-report-bot/internal/models"
)

// rosterFile is the on-disk JSON shape of a roster override
type rosterFile struct {
	Participants map[string]string `json:"participants"`
	ReportTypes  []struct {
		Code         string `json:"code"`
		Name         string `json:"name"`
		Deadline     string `json:"deadline"` // HH:MM
		HardDeadline bool   `json:"hard_deadline"`
		Emoji        string `json:"emoji"`
	} `json:"report_types"`
}

// Load builds a roster from a JSON file, falling back to the built-in
// roster when path is empty
func Load(path string) (*Roster, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file %s: %w", path, err)
	}

	var file rosterFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse roster file %s: %w", path, err)
	}

	types := make([]models.ReportTypeDef, 0, len(file.ReportTypes))
	for _, rt := range file.ReportTypes {
		deadline, err := parseDeadline(rt.Deadline)
		if err != nil {
			return nil, fmt.Errorf("report type %q: %w", rt.Code, err)
		}
		types = append(types, models.ReportTypeDef{
			Code:         rt.Code,
			Name:         rt.Name,
			Deadline:     deadline,
			HardDeadline: rt.HardDeadline,
			Emoji:        rt.Emoji,
		})
	}

	r, err := New(file.Participants, types)
	if err != nil {
		return nil, fmt.Errorf("invalid roster file %s: %w", path, err)
	}
	return r, nil
}

// parseDeadline parses an HH:MM time-of-day string
func parseDeadline(s string) (models.Deadline, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return models.Deadline{}, fmt.Errorf("invalid deadline %q, expected HH:MM: %w", s, err)
	}
	return models.Deadline{Hour: t.Hour(), Minute: t.Minute()}, nil
}
