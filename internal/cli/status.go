package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string          `json:"version"`
	DatabasePath      string          `json:"database_path"`
	DatabaseSizeBytes int64           `json:"database_size_bytes"`
	Events            int64           `json:"events"`
	SubpageRows       int64           `json:"subpage_rows"`
	Records           int64           `json:"records"`
	LastUpdated       string          `json:"last_updated,omitempty"`
	PerType           []typeCountJSON `json:"per_type"`
	DaemonRunning     bool            `json:"daemon_running"`
}

type typeCountJSON struct {
	EntityType string `json:"entity_type"`
	Rows       int64  `json:"rows"`
	Records    int64  `json:"records"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	a, err := openApp(c.globals)
	if err != nil {
		return err
	}
	defer a.Close()

	return c.executeWithApp(a)
}

// executeWithApp runs status against a provided app (for testing).
func (c *StatusCommand) executeWithApp(a *app) error {
	ctx := context.Background()

	stats, err := a.store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	dbPath, err := a.cfg.DBPath()
	if err != nil {
		return err
	}
	dbSize := getDatabaseSize(a.db, dbPath)
	daemonRunning := checkDaemon(a.cfg.Server.Host, a.cfg.Server.Port)

	if c.globals != nil && c.globals.JSON {
		out := statusJSON{
			Version:           c.version,
			DatabasePath:      dbPath,
			DatabaseSizeBytes: dbSize,
			Events:            stats.Events,
			SubpageRows:       stats.SubpageRows,
			Records:           stats.Records,
			PerType:           make([]typeCountJSON, len(stats.PerType)),
			DaemonRunning:     daemonRunning,
		}
		if !stats.LastUpdated.IsZero() {
			out.LastUpdated = stats.LastUpdated.UTC().Format(time.RFC3339)
		}
		for i, tc := range stats.PerType {
			out.PerType[i] = typeCountJSON{EntityType: tc.EntityType, Rows: tc.Rows, Records: tc.Records}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Println("EventHubX Status")
	fmt.Println("================")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Database:      %s (%s)\n", dbPath, formatBytes(dbSize))
	fmt.Printf("Events:        %s\n", formatNumber(stats.Events))
	fmt.Printf("Subpage rows:  %s\n", formatNumber(stats.SubpageRows))
	fmt.Printf("Records:       %s\n", formatNumber(stats.Records))

	if !stats.LastUpdated.IsZero() {
		fmt.Printf("Last updated:  %s\n", stats.LastUpdated.Local().Format("2006-01-02 15:04"))
	}

	if len(stats.PerType) > 0 {
		fmt.Println()
		fmt.Println("Per entity type:")
		for _, tc := range stats.PerType {
			fmt.Printf("  %-12s %s rows, %s records\n",
				tc.EntityType, formatNumber(tc.Rows), formatNumber(tc.Records))
		}
	}

	fmt.Println()
	if daemonRunning {
		fmt.Println("Daemon:        running")
	} else {
		fmt.Println("Daemon:        not running")
	}

	return nil
}
