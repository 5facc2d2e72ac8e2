package roster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/telegram-report-bot/internal/models"
)

// Roster is the immutable registry of participants and report types.
// It is built once at startup and only queried afterwards.
type Roster struct {
	tagByHandle map[string]string
	handleByTag map[string]string
	typeByCode  map[string]models.ReportTypeDef

	tags  []string // sorted, iteration order for the digest
	types []models.ReportTypeDef
}

// New builds a roster from a handle→tag mapping and an ordered list of
// report type definitions
func New(participants map[string]string, types []models.ReportTypeDef) (*Roster, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("roster has no participants")
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("roster has no report types")
	}

	r := &Roster{
		tagByHandle: make(map[string]string, len(participants)),
		handleByTag: make(map[string]string, len(participants)),
		typeByCode:  make(map[string]models.ReportTypeDef, len(types)),
		tags:        make([]string, 0, len(participants)),
		types:       make([]models.ReportTypeDef, 0, len(types)),
	}

	for handle, tag := range participants {
		handle = strings.ToLower(strings.TrimSpace(handle))
		tag = strings.ToLower(strings.TrimSpace(tag))
		if !strings.HasPrefix(handle, "@") {
			return nil, fmt.Errorf("participant handle %q must start with @", handle)
		}
		if !strings.HasPrefix(tag, "#") {
			return nil, fmt.Errorf("participant tag %q must start with #", tag)
		}
		if prev, ok := r.handleByTag[tag]; ok {
			return nil, fmt.Errorf("tag %q assigned to both %s and %s", tag, prev, handle)
		}
		r.tagByHandle[handle] = tag
		r.handleByTag[tag] = handle
		r.tags = append(r.tags, tag)
	}
	sort.Strings(r.tags)

	for _, def := range types {
		code := strings.ToLower(strings.TrimSpace(def.Code))
		if code == "" {
			return nil, fmt.Errorf("report type with empty code")
		}
		if n := len([]rune(code)); n < 2 || n > 3 {
			return nil, fmt.Errorf("report type code %q must be 2 or 3 characters", code)
		}
		if _, ok := r.typeByCode[code]; ok {
			return nil, fmt.Errorf("duplicate report type code %q", code)
		}
		def.Code = code
		r.typeByCode[code] = def
		r.types = append(r.types, def)
	}

	return r, nil
}

// TagByHandle resolves a chat handle to the participant's tag
func (r *Roster) TagByHandle(handle string) (string, bool) {
	tag, ok := r.tagByHandle[strings.ToLower(handle)]
	return tag, ok
}

// HandleByTag resolves a participant tag back to the chat handle
func (r *Roster) HandleByTag(tag string) (string, bool) {
	handle, ok := r.handleByTag[strings.ToLower(tag)]
	return handle, ok
}

// IsTag reports whether token is a known participant tag
func (r *Roster) IsTag(token string) bool {
	_, ok := r.handleByTag[token]
	return ok
}

// HasType reports whether code is a known report type code
func (r *Roster) HasType(code string) bool {
	_, ok := r.typeByCode[code]
	return ok
}

// TypeByCode returns the definition for a report type code
func (r *Roster) TypeByCode(code string) (models.ReportTypeDef, bool) {
	def, ok := r.typeByCode[code]
	return def, ok
}

// Tags returns all participant tags in stable (sorted) order
func (r *Roster) Tags() []string {
	out := make([]string, len(r.tags))
	copy(out, r.tags)
	return out
}

// Types returns all report type definitions in registration order
func (r *Roster) Types() []models.ReportTypeDef {
	out := make([]models.ReportTypeDef, len(r.types))
	copy(out, r.types)
	return out
}

// Size returns the number of participants
func (r *Roster) Size() int {
	return len(r.tags)
}
