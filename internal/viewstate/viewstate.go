// Package viewstate holds the mutable list-view configuration for one
// entity type: pagination cursor, sort, filter tab, visible columns, and
// search. Stores are explicit instances (never package globals) so tests
// and the daemon can run several in parallel without shared-state leakage.
package viewstate

import (
	"github.com/eventhubx/eventhubx/internal/prefs"
	"github.com/eventhubx/eventhubx/internal/record"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// State is the view configuration snapshot consumed by the table engine.
type State struct {
	CurrentPage    int
	PageSize       int
	VisibleColumns map[string]bool
	SortColumn     string
	SortDirection  Direction
	FilterTab      string
	SearchQuery    string
}

// persisted is the durable subset of State. Filter tab and search are
// ephemeral and never survive a restart.
type persisted struct {
	SortColumn     string          `json:"sort_column"`
	SortDirection  Direction       `json:"sort_direction"`
	VisibleColumns map[string]bool `json:"visible_columns"`
	PageSize       int             `json:"page_size"`
}

// Store owns the view state for one entity type and writes the durable
// subset through to the preference store on every mutation.
type Store struct {
	entity record.EntityType
	prefs  *prefs.Store
	state  State
}

// NewStore creates a Store seeded from defaults, then overlaid with any
// persisted preferences. Persisted visible-column entries whose names are
// unknown to the defaults are dropped, so stale preferences referencing
// removed columns cannot resurrect them.
func NewStore(entity record.EntityType, p *prefs.Store, defaults State) *Store {
	s := &Store{entity: entity, prefs: p, state: defaults}
	if s.state.CurrentPage < 1 {
		s.state.CurrentPage = 1
	}
	if s.state.PageSize < 1 {
		s.state.PageSize = 25
	}
	if s.state.SortDirection == "" {
		s.state.SortDirection = Asc
	}
	if s.state.VisibleColumns == nil {
		s.state.VisibleColumns = map[string]bool{}
	}
	if s.state.FilterTab == "" {
		s.state.FilterTab = "all"
	}

	if p != nil {
		var saved persisted
		if ok, err := p.Get(s.prefsKey(), &saved); ok && err == nil {
			if saved.SortColumn != "" {
				s.state.SortColumn = saved.SortColumn
			}
			if saved.SortDirection == Asc || saved.SortDirection == Desc {
				s.state.SortDirection = saved.SortDirection
			}
			if saved.PageSize > 0 {
				s.state.PageSize = saved.PageSize
			}
			for name, visible := range saved.VisibleColumns {
				if _, known := s.state.VisibleColumns[name]; known {
					s.state.VisibleColumns[name] = visible
				}
			}
		}
	}

	return s
}

func (s *Store) prefsKey() string {
	return "viewstate." + string(s.entity)
}

// Entity returns the entity type this store configures.
func (s *Store) Entity() record.EntityType {
	return s.entity
}

// State returns a copy of the current state. The visible-column map is
// copied so callers cannot mutate the store from the outside.
func (s *Store) State() State {
	out := s.state
	out.VisibleColumns = make(map[string]bool, len(s.state.VisibleColumns))
	for k, v := range s.state.VisibleColumns {
		out.VisibleColumns[k] = v
	}
	return out
}

// SetPage moves the pagination cursor. Values below 1 clamp to 1; values
// beyond the last page are kept as-is and render an empty slice.
func (s *Store) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	s.state.CurrentPage = n
}

// SetPageSize changes the page size, resets to page 1, and persists.
func (s *Store) SetPageSize(n int) {
	if n < 1 {
		return
	}
	s.state.PageSize = n
	s.state.CurrentPage = 1
	s.persist()
}

// SetSortColumn selects the sort column. Re-selecting the current column
// flips the direction; a new column starts ascending. Either way the page
// resets, because sort changes invalidate prior page framing.
func (s *Store) SetSortColumn(col string) {
	if col == s.state.SortColumn {
		if s.state.SortDirection == Asc {
			s.state.SortDirection = Desc
		} else {
			s.state.SortDirection = Asc
		}
	} else {
		s.state.SortColumn = col
		s.state.SortDirection = Asc
	}
	s.state.CurrentPage = 1
	s.persist()
}

// SetFilterTab switches the active filter tab and resets to page 1.
func (s *Store) SetFilterTab(tab string) {
	s.state.FilterTab = tab
	s.state.CurrentPage = 1
}

// ToggleColumn flips the visibility of a known column and persists.
// Unknown names are silently ignored; this guards against stale persisted
// preferences referencing removed columns. Returns whether a flip happened.
func (s *Store) ToggleColumn(name string) bool {
	current, known := s.state.VisibleColumns[name]
	if !known {
		return false
	}
	s.state.VisibleColumns[name] = !current
	s.persist()
	return true
}

// SetSearchQuery updates the free-text search and resets to page 1, so a
// query that shrinks the result set can never strand the cursor past the
// end.
func (s *Store) SetSearchQuery(q string) {
	s.state.SearchQuery = q
	s.state.CurrentPage = 1
}

// persist writes the durable subset through the preference store. A nil
// preference store makes the view state fully ephemeral.
func (s *Store) persist() {
	if s.prefs == nil {
		return
	}
	// Preference write failures are non-fatal: the in-memory state is
	// already updated and the next successful write catches up.
	_ = s.prefs.Set(s.prefsKey(), persisted{
		SortColumn:     s.state.SortColumn,
		SortDirection:  s.state.SortDirection,
		VisibleColumns: s.state.VisibleColumns,
		PageSize:       s.state.PageSize,
	})
}
