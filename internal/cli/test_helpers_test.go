package cli

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventhubx/eventhubx/internal/config"
	"github.com/eventhubx/eventhubx/internal/gateway"
	"github.com/eventhubx/eventhubx/internal/prefs"
	"github.com/eventhubx/eventhubx/internal/record"
	"github.com/eventhubx/eventhubx/internal/storage"
	"github.com/eventhubx/eventhubx/internal/view"
	"github.com/eventhubx/eventhubx/internal/views"
)

// newTestApp builds an app over an in-memory mirror seeded with a handful
// of events and subpage rows. The engine clock is pinned so date-relative
// tabs behave the same on every run.
func newTestApp(t *testing.T) *app {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.NewMigrationRunner(db).Run())

	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	require.NoError(t, store.UpsertEvent(ctx, "evt-1", record.Record{
		"id": "evt-1", "title": "LEAP", "city": "Riyadh", "country": "SA",
		"start_date": "2026-02-01", "end_date": "2026-02-04",
		"registrations": float64(50),
	}))
	require.NoError(t, store.UpsertEvent(ctx, "evt-2", record.Record{
		"id": "evt-2", "title": "DeepFest", "city": "Riyadh", "country": "SA",
		"start_date": "2026-03-14", "end_date": "2026-03-16",
		"registrations": float64(200),
	}))
	require.NoError(t, store.UpsertSubpage(ctx, "evt-1", record.Exhibitors, []record.Record{
		{"id": "ex-1", "name": "Acme", "leads": float64(5)},
		{"id": "ex-2", "name": "Globex", "leads": float64(0)},
	}))
	require.NoError(t, store.UpsertSubpage(ctx, "evt-1", record.People, []record.Record{
		{"id": "p-1", "name": "Jane", "type": "Keynote Speaker"},
		{"id": "p-2", "name": "Ali", "type": "attendee"},
	}))
	require.NoError(t, store.UpsertSubpage(ctx, "evt-1", record.Projects, []record.Record{
		{"name": "LEAP", "status": "active"},
	}))

	prefStore, err := prefs.Open(filepath.Join(t.TempDir(), "preferences.json"))
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Storage.Path = t.TempDir()
	engine := view.NewEngine()
	engine.Now = func() time.Time {
		return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	}

	return &app{
		cfg:    cfg,
		db:     db,
		store:  store,
		prefs:  prefStore,
		logger: zap.NewNop(),
		gw:     gateway.New(store, nil, nil),
		engine: engine,
		states: newStates(prefStore, cfg.Display.PageSize),
		saved:  views.NewStore(prefStore),
	}
}

// captureOutput redirects stdout for the duration of fn.
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	runErr := fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String(), runErr
}
