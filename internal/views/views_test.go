package views

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventhubx/eventhubx/internal/prefs"
	"github.com/eventhubx/eventhubx/internal/record"
	"github.com/eventhubx/eventhubx/internal/viewstate"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	p, err := prefs.Open(filepath.Join(t.TempDir(), "preferences.json"))
	require.NoError(t, err)
	return NewStore(p)
}

func sampleView() SavedView {
	return SavedView{
		Tab:    "past",
		Year:   "2026",
		Search: "riyadh",
		VisibleColumns: map[string]bool{
			"title": true,
			"city":  false,
		},
	}
}

func TestSaveGet_Roundtrip(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save("quarterly", sampleView()))

	got, ok, err := s.Get("quarterly")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "past", got.Tab)
	assert.Equal(t, "riyadh", got.Search)
	assert.False(t, got.VisibleColumns["city"])
}

func TestSave_EmptyNameRejected(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.Save("", sampleView()))
}

func TestSave_ReplacesExisting(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save("q", SavedView{Tab: "active"}))
	require.NoError(t, s.Save("q", SavedView{Tab: "past"}))

	got, ok, err := s.Get("q")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "past", got.Tab)

	names, err := s.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"q"}, names)
}

func TestGet_Missing(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.Get("never-saved")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNames_Sorted(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save("zulu", SavedView{}))
	require.NoError(t, s.Save("alpha", SavedView{}))

	names, err := s.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zulu"}, names)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save("q", sampleView()))
	require.NoError(t, s.Delete("q"))

	_, ok, err := s.Get("q")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Error(t, s.Delete("q"), "deleting a missing view is an error")
}

func TestDefault_Lifecycle(t *testing.T) {
	s := openTestStore(t)

	_, _, ok, err := s.Default()
	require.NoError(t, err)
	assert.False(t, ok, "no default until one is set")

	require.NoError(t, s.Save("q", sampleView()))
	require.NoError(t, s.SetDefault("q"))

	name, v, ok, err := s.Default()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "q", name)
	assert.Equal(t, "past", v.Tab)
}

func TestSetDefault_UnknownViewRejected(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.SetDefault("ghost"))
}

func TestDelete_ClearsDefaultPointer(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save("q", sampleView()))
	require.NoError(t, s.SetDefault("q"))
	require.NoError(t, s.Delete("q"))

	_, _, ok, err := s.Default()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApply_CopiesSnapshotOntoState(t *testing.T) {
	st := viewstate.NewStore(record.Events, nil, viewstate.State{
		VisibleColumns: map[string]bool{
			"title": true,
			"city":  true,
			"leads": false,
		},
	})

	Apply(SavedView{
		Tab:    "past",
		Search: "riyadh",
		VisibleColumns: map[string]bool{
			"city":    false, // flip off
			"leads":   true,  // flip on
			"unknown": true,  // dropped
		},
	}, st)

	got := st.State()
	assert.Equal(t, "past", got.FilterTab)
	assert.Equal(t, "riyadh", got.SearchQuery)
	assert.True(t, got.VisibleColumns["title"], "untouched column keeps its setting")
	assert.False(t, got.VisibleColumns["city"])
	assert.True(t, got.VisibleColumns["leads"])
	assert.NotContains(t, got.VisibleColumns, "unknown")
}

func TestApply_EmptyFieldsLeaveStateAlone(t *testing.T) {
	st := viewstate.NewStore(record.Events, nil, viewstate.State{
		FilterTab:      "active",
		VisibleColumns: map[string]bool{"title": true},
	})
	st.SetSearchQuery("existing")

	Apply(SavedView{}, st)

	got := st.State()
	assert.Equal(t, "active", got.FilterTab)
	assert.Equal(t, "existing", got.SearchQuery)
}
