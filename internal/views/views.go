// Package views manages named snapshots of the Events view configuration
// ("saved views"), persisted through the preference store. One view may be
// marked default and is auto-applied at startup.
package views

import (
	"fmt"
	"sort"

	"github.com/eventhubx/eventhubx/internal/prefs"
	"github.com/eventhubx/eventhubx/internal/viewstate"
)

const (
	savedKey   = "savedviews.events"
	defaultKey = "savedviews.events.default"
)

// SavedView is a named snapshot of the Events view configuration.
type SavedView struct {
	Tab            string            `json:"tab"`
	View           string            `json:"view"`
	Year           string            `json:"year"`
	Search         string            `json:"search"`
	VisibleColumns map[string]bool   `json:"visible_columns"`
	Advanced       map[string]string `json:"advanced"`
}

// Store persists saved views keyed by name.
type Store struct {
	prefs *prefs.Store
}

// NewStore creates a saved-view store over the given preference store.
func NewStore(p *prefs.Store) *Store {
	return &Store{prefs: p}
}

func (s *Store) all() (map[string]SavedView, error) {
	saved := map[string]SavedView{}
	if _, err := s.prefs.Get(savedKey, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// Save stores v under name, replacing any previous snapshot of that name.
func (s *Store) Save(name string, v SavedView) error {
	if name == "" {
		return fmt.Errorf("saved view needs a name")
	}
	saved, err := s.all()
	if err != nil {
		return err
	}
	saved[name] = v
	return s.prefs.Set(savedKey, saved)
}

// Get returns the snapshot stored under name.
func (s *Store) Get(name string) (SavedView, bool, error) {
	saved, err := s.all()
	if err != nil {
		return SavedView{}, false, err
	}
	v, ok := saved[name]
	return v, ok, nil
}

// Names lists saved view names, sorted.
func (s *Store) Names() ([]string, error) {
	saved, err := s.all()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(saved))
	for name := range saved {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the snapshot under name. If it was the default, the
// default pointer is cleared too.
func (s *Store) Delete(name string) error {
	saved, err := s.all()
	if err != nil {
		return err
	}
	if _, ok := saved[name]; !ok {
		return fmt.Errorf("saved view %q not found", name)
	}
	delete(saved, name)
	if err := s.prefs.Set(savedKey, saved); err != nil {
		return err
	}

	var def string
	if ok, err := s.prefs.Get(defaultKey, &def); err == nil && ok && def == name {
		return s.prefs.Delete(defaultKey)
	}
	return nil
}

// SetDefault marks an existing saved view as the default.
func (s *Store) SetDefault(name string) error {
	if _, ok, err := s.Get(name); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("saved view %q not found", name)
	}
	return s.prefs.Set(defaultKey, name)
}

// Default returns the default view's name and snapshot, if one is set and
// still exists.
func (s *Store) Default() (string, SavedView, bool, error) {
	var name string
	ok, err := s.prefs.Get(defaultKey, &name)
	if err != nil || !ok {
		return "", SavedView{}, false, err
	}
	v, ok, err := s.Get(name)
	if err != nil || !ok {
		return "", SavedView{}, false, err
	}
	return name, v, true, nil
}

// Apply copies a snapshot onto the Events view state: filter tab, search,
// and column visibility. Unknown column names are dropped by the store's
// ToggleColumn guard semantics, so stale snapshots stay harmless.
func Apply(v SavedView, st *viewstate.Store) {
	if v.Tab != "" {
		st.SetFilterTab(v.Tab)
	}
	if v.Search != "" {
		st.SetSearchQuery(v.Search)
	}
	current := st.State().VisibleColumns
	for name, want := range v.VisibleColumns {
		if have, known := current[name]; known && have != want {
			st.ToggleColumn(name)
		}
	}
}
