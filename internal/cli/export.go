package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/eventhubx/eventhubx/internal/export"
	"github.com/eventhubx/eventhubx/internal/record"
	"github.com/eventhubx/eventhubx/internal/view"
)

// Execute implements the go-flags Commander interface for ExportCommand.
func (c *ExportCommand) Execute(args []string) error {
	a, err := openApp(c.globals)
	if err != nil {
		return err
	}
	defer a.Close()

	return c.executeWithApp(a)
}

// executeWithApp runs export against a provided app (for testing). The
// spreadsheet covers the filtered set, never a single page of it.
func (c *ExportCommand) executeWithApp(a *app) error {
	if c.Tab != "" && !view.ValidTab(record.Events, c.Tab) {
		return fmt.Errorf("unknown tab %q for events (tabs: %v)", c.Tab, view.Tabs(record.Events))
	}

	state := a.states[record.Events].State()
	if c.Tab != "" {
		state.FilterTab = c.Tab
	}
	if c.Search != "" {
		state.SearchQuery = c.Search
	}

	ctx := context.Background()
	events := a.gw.Fetch(ctx, record.ScopeAll, record.Events)
	filtered := a.engine.Filtered(record.Events, events, state)

	out := os.Stdout
	if c.Output != "-" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := export.EventsCSV(out, filtered); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if c.Output != "-" {
		fmt.Printf("Exported %d events to %s.\n", len(filtered), c.Output)
	}
	return nil
}
