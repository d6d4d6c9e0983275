// Package match associates event records with project-tracker metadata
// when no foreign key exists upstream.
package match

import (
	"strings"

	"github.com/eventhubx/eventhubx/internal/record"
)

// Matcher finds the metadata candidate for an event title. Implementations
// decide how strict the association is; call sites only depend on this
// interface so a stricter matcher can be substituted later.
type Matcher interface {
	Match(title string, candidates []record.Record) (record.Record, bool)
}

// Substring is the historical heuristic: case-insensitive substring match
// in either direction between the event title and the candidate's name
// field. The first match in candidate insertion order wins, not the best
// one. Known-imprecise, kept for compatibility.
type Substring struct {
	// Field is the candidate field compared against the title.
	// Defaults to "name".
	Field string
}

// Match implements Matcher.
func (m Substring) Match(title string, candidates []record.Record) (record.Record, bool) {
	field := m.Field
	if field == "" {
		field = "name"
	}

	needle := strings.ToLower(strings.TrimSpace(title))
	if needle == "" {
		return nil, false
	}

	for _, candidate := range candidates {
		name := strings.ToLower(strings.TrimSpace(candidate.Str(field, "")))
		if name == "" {
			continue
		}
		if strings.Contains(needle, name) || strings.Contains(name, needle) {
			return candidate, true
		}
	}
	return nil, false
}
