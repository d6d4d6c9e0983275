// Package view implements the table engine shared by every list page:
// a fixed filter → sort → aggregate → paginate → project pipeline over
// schemaless records, producing a typed table that the text, JSON, and
// HTML adapters render. The pipeline is synchronous and deterministic;
// identical inputs always produce identical tables.
package view

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/eventhubx/eventhubx/internal/match"
	"github.com/eventhubx/eventhubx/internal/record"
	"github.com/eventhubx/eventhubx/internal/viewstate"
)

// Header is one visible column heading.
type Header struct {
	Name  string
	Label string
}

// Row is one rendered table row. Placeholder rows stand in for malformed
// upstream entries so partial data never breaks a render.
type Row struct {
	Cells       []string
	Placeholder bool
}

// AggValue is one computed aggregate total for the summary strip.
type AggValue struct {
	Key   string
	Label string
	Total float64
}

// Table is the typed output of the pipeline. Hidden columns are absent
// entirely, not merely flagged.
type Table struct {
	Entity        record.EntityType
	Headers       []Header
	Rows          []Row
	TotalFiltered int
	Page          int
	PageCount     int
	PageSize      int
	Aggregates    []AggValue
}

// XRef carries the project-tracker metadata joined onto events by fuzzy
// name match.
type XRef struct {
	Matcher    match.Matcher
	Candidates []record.Record
}

// Engine builds tables. Now is injectable so date-relative filter tabs are
// testable.
type Engine struct {
	Now  func() time.Time
	xref *XRef
}

// NewEngine returns an Engine using the wall clock and no cross-reference.
func NewEngine() *Engine {
	return &Engine{Now: time.Now}
}

// WithXRef returns a copy of the engine that joins project metadata onto
// events. The receiver is never mutated, so one engine can serve concurrent
// requests with different candidate sets.
func (e *Engine) WithXRef(x *XRef) *Engine {
	derived := *e
	derived.xref = x
	return &derived
}

// Filtered runs the selection stages of the pipeline — base selection,
// search, filter tab, sort — and returns the matching records in render
// order. The export path consumes this directly; Build layers aggregates,
// pagination, and projection on top.
func (e *Engine) Filtered(entity record.EntityType, records []record.Record, state viewstate.State) []record.Record {
	spec := specs[entity.Base()]
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}

	// Work on a copy: the sort stage reorders in place and must never
	// touch the gateway's cached slice.
	filtered := append([]record.Record(nil), records...)

	// 1. Base selection: the speakers alias pre-filters people records.
	if entity == record.Speakers {
		filtered = filterRecords(filtered, func(r record.Record) bool {
			return containsFold(r.Str("type", ""), "speaker")
		})
	}

	if entity.Base() == record.Events && e.xref != nil && e.xref.Matcher != nil {
		filtered = e.annotateProjects(filtered)
	}

	// 2. Free-text search over the entity's fixed field set.
	if q := strings.TrimSpace(state.SearchQuery); q != "" {
		needle := strings.ToLower(q)
		filtered = filterRecords(filtered, func(r record.Record) bool {
			for _, field := range spec.Search {
				if strings.Contains(strings.ToLower(field(r)), needle) {
					return true
				}
			}
			return false
		})
	}

	// 3. Filter tab.
	if pred, ok := spec.Tabs[state.FilterTab]; ok && state.FilterTab != "all" {
		filtered = filterRecords(filtered, func(r record.Record) bool {
			return pred(r, now)
		})
	}

	// 4. Sort. Without an explicit column, events default to newest start
	// date first; other entity types keep insertion order.
	sortRecords(entity.Base(), spec, filtered, state)

	return filtered
}

// Build runs the pipeline for one entity type. Stage order is fixed:
// base selection, search, filter tab, sort, aggregates, pagination,
// column projection. Aggregates are computed before pagination so page
// moves never change the summary totals.
func (e *Engine) Build(entity record.EntityType, records []record.Record, state viewstate.State) Table {
	spec := specs[entity.Base()]
	filtered := e.Filtered(entity, records, state)

	// 5. Aggregates over the filtered, pre-pagination set.
	aggregates := make([]AggValue, 0, len(spec.Aggregates))
	for _, agg := range spec.Aggregates {
		total := 0.0
		for _, r := range filtered {
			total += agg.Value(r)
		}
		aggregates = append(aggregates, AggValue{Key: agg.Key, Label: agg.Label, Total: total})
	}

	// 6. Pagination. An out-of-range page renders an empty slice; the
	// cursor is never auto-corrected here.
	pageSize := state.PageSize
	if pageSize < 1 {
		pageSize = 25
	}
	page := state.CurrentPage
	if page < 1 {
		page = 1
	}
	pageCount := (len(filtered) + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	end := start + pageSize
	var slice []record.Record
	if start < len(filtered) {
		if end > len(filtered) {
			end = len(filtered)
		}
		slice = filtered[start:end]
	}

	// 7. Column projection: hidden columns are omitted entirely.
	visible := visibleColumns(spec.Columns, state.VisibleColumns)
	headers := make([]Header, len(visible))
	for i, col := range visible {
		headers[i] = Header{Name: col.Name, Label: col.Header}
	}

	rows := make([]Row, len(slice))
	for i, r := range slice {
		if r == nil {
			rows[i] = placeholderRow(entity, visible, start+i)
			continue
		}
		cells := make([]string, len(visible))
		for j, col := range visible {
			cells[j] = col.Text(r)
		}
		rows[i] = Row{Cells: cells}
	}

	return Table{
		Entity:        entity,
		Headers:       headers,
		Rows:          rows,
		TotalFiltered: len(filtered),
		Page:          page,
		PageCount:     pageCount,
		PageSize:      pageSize,
		Aggregates:    aggregates,
	}
}

// annotateProjects shallow-copies each event that has a fuzzy metadata
// match, attaching the project name and status without touching the cached
// originals.
func (e *Engine) annotateProjects(events []record.Record) []record.Record {
	out := make([]record.Record, len(events))
	for i, ev := range events {
		out[i] = ev
		if ev == nil {
			continue
		}
		meta, ok := e.xref.Matcher.Match(ev.Str("title", ""), e.xref.Candidates)
		if !ok {
			continue
		}
		annotated := ev.Clone()
		annotated["project_name"] = meta.Str("name", "")
		annotated["project_status"] = meta.Str("status", "")
		out[i] = annotated
	}
	return out
}

func filterRecords(records []record.Record, keep func(record.Record) bool) []record.Record {
	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// sortRecords orders filtered in place. String columns compare case-folded,
// number columns numerically; descending inverts the comparator sign. The
// sort is stable so equal keys keep their filter order.
func sortRecords(base record.EntityType, spec entitySpec, filtered []record.Record, state viewstate.State) {
	col, ok := findColumn(spec.Columns, state.SortColumn)
	if !ok {
		if base == record.Events {
			sort.SliceStable(filtered, func(i, j int) bool {
				return eventDateValue(filtered[i]) > eventDateValue(filtered[j])
			})
		}
		return
	}

	desc := state.SortDirection == viewstate.Desc
	sort.SliceStable(filtered, func(i, j int) bool {
		var less bool
		if col.Kind == Number {
			less = col.Value(filtered[i]) < col.Value(filtered[j])
		} else {
			less = strings.ToLower(col.Text(filtered[i])) < strings.ToLower(col.Text(filtered[j]))
		}
		if desc {
			// Invert by swapping operands rather than negating, so the
			// stable sort keeps ties in filter order either way.
			if col.Kind == Number {
				return col.Value(filtered[j]) < col.Value(filtered[i])
			}
			return strings.ToLower(col.Text(filtered[j])) < strings.ToLower(col.Text(filtered[i]))
		}
		return less
	})
}

func findColumn(columns []Column, name string) (Column, bool) {
	if name == "" {
		return Column{}, false
	}
	for _, col := range columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// visibleColumns projects the column set. An empty visibility map means
// everything is visible.
func visibleColumns(columns []Column, visibility map[string]bool) []Column {
	if len(visibility) == 0 {
		return columns
	}
	out := make([]Column, 0, len(columns))
	for _, col := range columns {
		if visibility[col.Name] {
			out = append(out, col)
		}
	}
	return out
}

// placeholderRow renders a malformed upstream entry deterministically by
// its position in the filtered set, so the table never throws on partial
// data.
func placeholderRow(entity record.EntityType, visible []Column, position int) Row {
	cells := make([]string, len(visible))
	for i := range cells {
		if i == 0 {
			cells[i] = fmt.Sprintf("Unknown %s %d", entity.Singular(), position+1)
		} else {
			cells[i] = "—"
		}
	}
	return Row{Cells: cells, Placeholder: true}
}

// DefaultState returns the view state an entity type starts with: page 1,
// every column visible, the "all" tab, ascending sort unset.
func DefaultState(entity record.EntityType, pageSize int) viewstate.State {
	columns := specs[entity.Base()].Columns
	visible := make(map[string]bool, len(columns))
	for _, col := range columns {
		visible[col.Name] = true
	}
	if pageSize < 1 {
		pageSize = 25
	}
	return viewstate.State{
		CurrentPage:    1,
		PageSize:       pageSize,
		VisibleColumns: visible,
		SortDirection:  viewstate.Asc,
		FilterTab:      "all",
	}
}
