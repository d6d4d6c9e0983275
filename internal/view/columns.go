package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/eventhubx/eventhubx/internal/record"
)

// Kind classifies a column for sorting: string columns compare case-folded,
// number columns compare numerically.
type Kind int

const (
	String Kind = iota
	Number
)

// Column describes one projectable column of an entity table.
type Column struct {
	Name   string
	Header string
	Kind   Kind

	// Text renders the cell and doubles as the string sort key.
	Text func(record.Record) string
	// Value supplies the numeric sort key for Number columns.
	Value func(record.Record) float64
}

// AggSpec describes one aggregate total computed over the filtered set.
type AggSpec struct {
	Key   string
	Label string
	Value func(record.Record) float64
}

// tabPredicate decides whether a record belongs to a filter tab.
type tabPredicate func(r record.Record, now time.Time) bool

// entitySpec bundles everything the engine knows about one entity type.
type entitySpec struct {
	Columns    []Column
	TabOrder   []string
	Tabs       map[string]tabPredicate
	Search     []func(record.Record) string
	Aggregates []AggSpec
}

func str(key string) func(record.Record) string {
	return func(r record.Record) string { return r.Str(key, "") }
}

func num(key string) func(record.Record) float64 {
	return func(r record.Record) float64 { return r.Float(key, 0) }
}

func numText(key string) func(record.Record) string {
	return func(r record.Record) string {
		return fmt.Sprintf("%d", r.Int(key, 0))
	}
}

func stringCol(name, header, key string) Column {
	return Column{Name: name, Header: header, Kind: String, Text: str(key)}
}

func numberCol(name, header, key string) Column {
	return Column{Name: name, Header: header, Kind: Number, Text: numText(key), Value: num(key)}
}

// parseEventDate parses the date formats the upstream export uses. The zero
// time marks an unparsable or missing date.
func parseEventDate(s string) time.Time {
	formats := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// eventDateValue is the numeric sort key for event start dates.
func eventDateValue(r record.Record) float64 {
	t := parseEventDate(r.Str("start_date", ""))
	if t.IsZero() {
		return 0
	}
	return float64(t.Unix())
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// leadStat reads one field of the nested per-event lead breakdown.
func leadStat(key string) func(record.Record) float64 {
	return func(r record.Record) float64 {
		return r.Map("lead_stats").Float(key, 0)
	}
}

var specs = map[record.EntityType]entitySpec{
	record.Events: {
		Columns: []Column{
			stringCol("id", "Event ID", "id"),
			stringCol("title", "Name", "title"),
			stringCol("community", "Community", "community"),
			{Name: "start_date", Header: "Start Date", Kind: Number,
				Text: str("start_date"), Value: eventDateValue},
			stringCol("end_date", "End Date", "end_date"),
			stringCol("city", "City", "city"),
			stringCol("country", "Country", "country"),
			numberCol("registrations", "Registrations", "registrations"),
			numberCol("leads", "Leads", "leads"),
			numberCol("exhibitors", "Exhibitors", "exhibitors"),
			numberCol("members", "Members", "members"),
			numberCol("sessions", "Sessions", "sessions"),
			stringCol("project", "Project", "project_name"),
		},
		TabOrder: []string{"all", "active", "upcoming", "past"},
		Tabs: map[string]tabPredicate{
			"active": func(r record.Record, now time.Time) bool {
				start := parseEventDate(r.Str("start_date", ""))
				end := parseEventDate(r.Str("end_date", ""))
				if end.IsZero() {
					end = start
				}
				return !start.IsZero() && !start.After(now) && !end.Add(24*time.Hour).Before(now)
			},
			"upcoming": func(r record.Record, now time.Time) bool {
				start := parseEventDate(r.Str("start_date", ""))
				return !start.IsZero() && start.After(now)
			},
			"past": func(r record.Record, now time.Time) bool {
				start := parseEventDate(r.Str("start_date", ""))
				end := parseEventDate(r.Str("end_date", ""))
				if end.IsZero() {
					end = start
				}
				return !end.IsZero() && end.Add(24*time.Hour).Before(now)
			},
		},
		Search: []func(record.Record) string{
			str("title"), str("community"), str("city"), str("country"), str("start_date"),
		},
		Aggregates: []AggSpec{
			{Key: "registrations", Label: "Registrations", Value: num("registrations")},
			{Key: "leads", Label: "Leads", Value: num("leads")},
			{Key: "exhibitors", Label: "Exhibitors", Value: num("exhibitors")},
			{Key: "sessions", Label: "Sessions", Value: num("sessions")},
			{Key: "views", Label: "Views", Value: leadStat("views")},
			{Key: "bookmarks", Label: "Bookmarks", Value: leadStat("bookmarks")},
			{Key: "connections", Label: "Connections", Value: leadStat("connections")},
			{Key: "scans", Label: "Scans", Value: leadStat("scans")},
			{Key: "contacts", Label: "Contacts", Value: leadStat("contacts")},
			{Key: "requests", Label: "Requests", Value: leadStat("requests")},
			{Key: "messages", Label: "Messages", Value: leadStat("messages")},
			{Key: "meetings", Label: "Meetings", Value: leadStat("meetings")},
		},
	},

	record.Exhibitors: {
		Columns: []Column{
			stringCol("name", "Name", "name"),
			stringCol("type", "Type", "type"),
			stringCol("country", "Country", "country"),
			numberCol("members", "Members", "members"),
			numberCol("leads", "Leads", "leads"),
			stringCol("logo", "Logo", "logo_url"),
		},
		TabOrder: []string{"all", "no-logo", "zero-members", "zero-leads"},
		Tabs: map[string]tabPredicate{
			"no-logo": func(r record.Record, _ time.Time) bool {
				return r.Str("logo_url", "") == ""
			},
			"zero-members": func(r record.Record, _ time.Time) bool {
				return r.Int("members", 0) == 0
			},
			"zero-leads": func(r record.Record, _ time.Time) bool {
				return r.Int("leads", 0) == 0
			},
		},
		Search: []func(record.Record) string{
			str("name"), str("type"), str("country"),
		},
		Aggregates: []AggSpec{
			{Key: "members", Label: "Members", Value: num("members")},
			{Key: "leads", Label: "Leads", Value: num("leads")},
		},
	},

	record.People: {
		Columns: []Column{
			stringCol("name", "Name", "name"),
			stringCol("email", "Email", "email"),
			stringCol("organization", "Organization", "organization"),
			stringCol("type", "Type", "type"),
			{Name: "featured", Header: "Featured", Kind: String,
				Text: func(r record.Record) string {
					if r.Bool("featured", false) {
						return "yes"
					}
					return "no"
				}},
		},
		TabOrder: []string{"all", "speakers", "featured", "no-email", "no-org"},
		Tabs: map[string]tabPredicate{
			"speakers": func(r record.Record, _ time.Time) bool {
				return containsFold(r.Str("type", ""), "speaker")
			},
			"featured": func(r record.Record, _ time.Time) bool {
				return r.Bool("featured", false)
			},
			"no-email": func(r record.Record, _ time.Time) bool {
				return r.Str("email", "") == ""
			},
			"no-org": func(r record.Record, _ time.Time) bool {
				return r.Str("organization", "") == ""
			},
		},
		Search: []func(record.Record) string{
			str("name"), str("email"), str("organization"),
		},
	},

	record.Sessions: {
		Columns: []Column{
			stringCol("title", "Title", "title"),
			stringCol("location", "Location", "location"),
			stringCol("type", "Type", "type"),
			stringCol("start", "Start", "starts_at"),
			numberCol("speakers", "Speakers", "speakers_count"),
		},
		TabOrder: []string{"all", "with-speakers", "no-location"},
		Tabs: map[string]tabPredicate{
			"with-speakers": func(r record.Record, _ time.Time) bool {
				return r.Int("speakers_count", 0) > 0
			},
			"no-location": func(r record.Record, _ time.Time) bool {
				return r.Str("location", "") == ""
			},
		},
		Search: []func(record.Record) string{
			str("title"), str("location"), str("type"),
		},
	},

	record.Sponsors: {
		Columns: []Column{
			stringCol("name", "Name", "name"),
			stringCol("category", "Category", "category"),
			stringCol("type", "Type", "type"),
		},
		TabOrder: []string{"all", "platinum", "gold", "silver"},
		Tabs: map[string]tabPredicate{
			"platinum": sponsorTier("platinum"),
			"gold":     sponsorTier("gold"),
			"silver":   sponsorTier("silver"),
		},
		Search: []func(record.Record) string{
			str("name"), str("category"), str("type"),
		},
	},
}

// sponsorTier matches when the category or type field contains the tier
// name, case-insensitively.
func sponsorTier(tier string) tabPredicate {
	return func(r record.Record, _ time.Time) bool {
		return containsFold(r.Str("category", ""), tier) ||
			containsFold(r.Str("type", ""), tier)
	}
}

// Columns returns the full column set for an entity type.
func Columns(entity record.EntityType) []Column {
	return specs[entity.Base()].Columns
}

// Tabs returns the filter tab names for an entity type, in display order.
func Tabs(entity record.EntityType) []string {
	return specs[entity.Base()].TabOrder
}

// ValidTab reports whether tab names a known filter for the entity type.
func ValidTab(entity record.EntityType, tab string) bool {
	if tab == "" || tab == "all" {
		return true
	}
	_, ok := specs[entity.Base()].Tabs[tab]
	return ok
}
