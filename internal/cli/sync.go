package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/eventhubx/eventhubx/internal/api"
	"github.com/eventhubx/eventhubx/internal/record"
)

// Execute implements the go-flags Commander interface for SyncCommand.
func (c *SyncCommand) Execute(args []string) error {
	a, err := openApp(c.globals)
	if err != nil {
		return err
	}
	defer a.Close()

	return c.executeWithApp(a)
}

// executeWithApp runs sync against a provided app (for testing). Subpage
// entity types trigger a backend sync, wait the poll delay, re-fetch, and
// upsert the payload into the mirror; the events type pulls the backend
// event list straight into the mirror. Either way the fetched payload is
// persisted by the command itself, not as a side effect of later reads.
func (c *SyncCommand) executeWithApp(a *app) error {
	entity := record.EntityType(strings.ToLower(strings.TrimSpace(c.Entity)))
	if !entity.Valid() {
		return fmt.Errorf("unknown entity type %q (use events, exhibitors, people, speakers, sessions, sponsors, or projects)", c.Entity)
	}

	client := api.New(a.cfg.API.BaseURL, a.cfg.APITimeout())
	ctx := context.Background()

	if entity.Base() == record.Events {
		if c.Event != "" {
			return fmt.Errorf("--event does not apply to the events type; the full list is mirrored")
		}
		return c.syncEvents(ctx, a, client)
	}

	if c.Event == "" {
		return fmt.Errorf("--event is required")
	}

	if err := client.TriggerSync(ctx, c.Event, entity.Base()); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if c.NoWait {
		fmt.Printf("Sync triggered for %s/%s.\n", c.Event, entity.Base())
		return nil
	}

	delay := a.cfg.SyncPollDelay()
	if c.Delay >= 0 {
		delay = time.Duration(c.Delay) * time.Second
	}
	if delay > 0 {
		fmt.Printf("Sync triggered for %s/%s, re-fetching in %s...\n", c.Event, entity.Base(), delay)
		time.Sleep(delay)
	}

	records, err := client.FetchSubpage(ctx, c.Event, entity.Base())
	if err != nil {
		return fmt.Errorf("re-fetch failed: %w", err)
	}
	if err := a.store.UpsertSubpage(ctx, c.Event, entity.Base(), records); err != nil {
		return fmt.Errorf("mirror update failed: %w", err)
	}
	a.gw.Invalidate(record.Scope(c.Event))
	if entity.Base() == record.Projects {
		// Project rows feed the all-scope cross-reference slot too.
		a.gw.Invalidate(record.ScopeAll)
	}

	return c.report(map[string]any{
		"event":   c.Event,
		"entity":  string(entity.Base()),
		"records": len(records),
	}, fmt.Sprintf("%s/%s now has %d records.\n", c.Event, entity.Base(), len(records)))
}

// syncEvents mirrors the backend event list. Records without an id cannot be
// keyed and are skipped.
func (c *SyncCommand) syncEvents(ctx context.Context, a *app, client *api.Client) error {
	events, err := client.FetchEvents(ctx)
	if err != nil {
		return fmt.Errorf("fetch events failed: %w", err)
	}

	mirrored := 0
	for _, ev := range events {
		if ev == nil {
			continue
		}
		id := ev.Str("id", "")
		if id == "" {
			continue
		}
		if err := a.store.UpsertEvent(ctx, id, ev); err != nil {
			return fmt.Errorf("mirror update failed for event %s: %w", id, err)
		}
		mirrored++
	}
	a.gw.Invalidate(record.ScopeAll)

	return c.report(map[string]any{
		"entity":  string(record.Events),
		"records": mirrored,
	}, fmt.Sprintf("Mirrored %d events.\n", mirrored))
}

func (c *SyncCommand) report(jsonOut map[string]any, human string) error {
	if c.globals != nil && c.globals.JSON {
		return json.NewEncoder(os.Stdout).Encode(jsonOut)
	}
	fmt.Print(human)
	return nil
}
