// Package record defines the schemaless entity records mirrored from the
// upstream event platform, plus the entity-type and scope vocabulary shared
// by the gateway, view state, and table engine.
package record

import (
	"encoding/json"
	"strconv"
	"strings"
)

// EntityType identifies one of the record kinds handled by the table engine.
type EntityType string

const (
	Events     EntityType = "events"
	Exhibitors EntityType = "exhibitors"
	People     EntityType = "people"
	Sessions   EntityType = "sessions"
	Sponsors   EntityType = "sponsors"

	// Speakers is a presentation alias over People: the table engine
	// pre-filters people whose type contains "speaker".
	Speakers EntityType = "speakers"

	// Projects holds cross-reference metadata rows from the project tracker.
	// It is not a table-engine entity; it only flows through the gateway.
	Projects EntityType = "projects"
)

// Base resolves presentation aliases to the underlying entity type.
func (t EntityType) Base() EntityType {
	if t == Speakers {
		return People
	}
	return t
}

// Valid reports whether t names a known entity type (aliases included).
func (t EntityType) Valid() bool {
	switch t {
	case Events, Exhibitors, People, Sessions, Sponsors, Speakers, Projects:
		return true
	}
	return false
}

// Singular returns the display singular for placeholder rows.
func (t EntityType) Singular() string {
	switch t.Base() {
	case Events:
		return "Event"
	case Exhibitors:
		return "Exhibitor"
	case People:
		return "Person"
	case Sessions:
		return "Session"
	case Sponsors:
		return "Sponsor"
	default:
		return "Record"
	}
}

// Scope partitions cached and mirrored data by event.
type Scope string

// ScopeAll is the sentinel scope covering every event.
const ScopeAll Scope = "all"

// Record is one entity row from the upstream mirror. No field is guaranteed
// present; every consumer reads through the defaulted accessors below.
// A nil Record marks a malformed upstream entry that could not be decoded
// as an object; the renderer turns it into a positional placeholder.
type Record map[string]any

// Str returns the string at key, or def when the field is missing or not a
// string.
func (r Record) Str(key, def string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return def
}

// Float returns the numeric value at key, or def. JSON decoding produces
// float64, but int-typed values from in-process seeds are accepted too, as
// are numeric strings.
func (r Record) Float(key string, def float64) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}

// Int returns the value at key truncated to int64, or def.
func (r Record) Int(key string, def int64) int64 {
	if _, ok := r[key]; !ok {
		return def
	}
	sentinel := float64(def)
	f := r.Float(key, sentinel)
	if f == sentinel {
		return def
	}
	return int64(f)
}

// Bool returns the boolean at key, or def.
func (r Record) Bool(key string, def bool) bool {
	if v, ok := r[key].(bool); ok {
		return v
	}
	return def
}

// Map returns the nested object at key, or an empty Record.
func (r Record) Map(key string) Record {
	switch v := r[key].(type) {
	case Record:
		return v
	case map[string]any:
		return Record(v)
	}
	return Record{}
}

// Slice returns the array at key, or nil.
func (r Record) Slice(key string) []any {
	if v, ok := r[key].([]any); ok {
		return v
	}
	return nil
}

// Clone returns a shallow copy of r. Used when a pipeline stage needs to
// annotate a record without mutating the cached original.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// FromAny converts a decoded JSON value into a Record. Non-object values
// yield a nil Record, the malformed-entry marker.
func FromAny(v any) Record {
	switch m := v.(type) {
	case Record:
		return m
	case map[string]any:
		return Record(m)
	}
	return nil
}

// DecodeList unmarshals a JSON array into records, mapping non-object
// elements to nil placeholders rather than failing the whole payload.
func DecodeList(data []byte) ([]Record, error) {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make([]Record, len(raw))
	for i, v := range raw {
		out[i] = FromAny(v)
	}
	return out, nil
}
