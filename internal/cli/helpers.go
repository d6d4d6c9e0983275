package cli

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/eventhubx/eventhubx/internal/api"
	"github.com/eventhubx/eventhubx/internal/config"
	"github.com/eventhubx/eventhubx/internal/gateway"
	"github.com/eventhubx/eventhubx/internal/logging"
	"github.com/eventhubx/eventhubx/internal/prefs"
	"github.com/eventhubx/eventhubx/internal/record"
	"github.com/eventhubx/eventhubx/internal/storage"
	"github.com/eventhubx/eventhubx/internal/view"
	"github.com/eventhubx/eventhubx/internal/views"
	"github.com/eventhubx/eventhubx/internal/viewstate"
)

// tableEntities are the entity types that own a list view and a view state.
var tableEntities = []record.EntityType{
	record.Events, record.Exhibitors, record.People, record.Sessions, record.Sponsors,
}

// app bundles everything a subcommand needs: config, mirror store, gateway,
// table engine, per-entity view states, and saved views.
type app struct {
	cfg    *config.Config
	db     *sql.DB
	store  storage.Store
	prefs  *prefs.Store
	logger *zap.Logger
	gw     *gateway.Gateway
	engine *view.Engine
	states map[record.EntityType]*viewstate.Store
	saved  *views.Store
}

// openApp loads config, opens the mirror database and preference store, and
// wires the gateway. The default saved Events view, if any, is applied to
// the Events view state before the first render.
func openApp(globals *GlobalFlags) (*app, error) {
	var cfg *config.Config
	var err error
	if globals != nil && globals.Config != "" {
		cfg, err = config.Load(globals.Config)
	} else {
		cfg, err = config.LoadOrCreate()
	}
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Logging
	if globals != nil && globals.Verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	runner := storage.NewMigrationRunner(db)
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create store: %w", err)
	}

	prefsPath, err := cfg.PrefsPath()
	if err != nil {
		db.Close()
		return nil, err
	}
	prefStore, err := prefs.Open(prefsPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	client := api.New(cfg.API.BaseURL, cfg.APITimeout())

	a := &app{
		cfg:    cfg,
		db:     db,
		store:  store,
		prefs:  prefStore,
		logger: logger,
		gw:     gateway.New(store, client, logger),
		engine: view.NewEngine(),
		states: newStates(prefStore, cfg.Display.PageSize),
		saved:  views.NewStore(prefStore),
	}

	if _, v, ok, err := a.saved.Default(); err == nil && ok {
		views.Apply(v, a.states[record.Events])
	}

	return a, nil
}

// newStates builds one view-state store per entity type, seeded from the
// engine's default column sets and any persisted preferences.
func newStates(p *prefs.Store, pageSize int) map[record.EntityType]*viewstate.Store {
	states := make(map[record.EntityType]*viewstate.Store, len(tableEntities))
	for _, entity := range tableEntities {
		states[entity] = viewstate.NewStore(entity, p, view.DefaultState(entity, pageSize))
	}
	return states
}

// Close releases the store and database.
func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// parseEntity validates an --entity flag value.
func parseEntity(s string) (record.EntityType, error) {
	entity := record.EntityType(strings.ToLower(strings.TrimSpace(s)))
	if !entity.Valid() || entity == record.Projects {
		return "", fmt.Errorf("unknown entity type %q (use events, exhibitors, people, speakers, sessions, or sponsors)", s)
	}
	return entity, nil
}

// getDatabaseSize returns the database file size in bytes.
// For on-disk databases, it uses os.Stat. For in-memory databases,
// it queries page_count * page_size.
func getDatabaseSize(db *sql.DB, dbPath string) int64 {
	if info, err := os.Stat(dbPath); err == nil {
		return info.Size()
	}

	var pageCount, pageSize int64
	if err := db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}

// checkDaemon attempts an HTTP GET against the daemon health endpoint.
// Returns true if the daemon responds within 1 second.
func checkDaemon(host string, port int) bool {
	client := &http.Client{Timeout: 1 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s:%d/healthz", host, port))
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
		if len(s) > remainder {
			result.WriteString(",")
		}
	}
	for i := remainder; i < len(s); i += 3 {
		if i > remainder {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
