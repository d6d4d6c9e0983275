package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/eventhubx/eventhubx/internal/match"
	"github.com/eventhubx/eventhubx/internal/record"
	"github.com/eventhubx/eventhubx/internal/view"
	"github.com/eventhubx/eventhubx/internal/viewstate"
)

// Execute implements the go-flags Commander interface for ListCommand.
func (c *ListCommand) Execute(args []string) error {
	a, err := openApp(c.globals)
	if err != nil {
		return err
	}
	defer a.Close()

	return c.executeWithApp(a)
}

// executeWithApp runs list against a provided app (for testing).
func (c *ListCommand) executeWithApp(a *app) error {
	entity, err := parseEntity(c.Entity)
	if err != nil {
		return err
	}
	if c.Tab != "" && !view.ValidTab(entity, c.Tab) {
		return fmt.Errorf("unknown tab %q for %s (tabs: %v)", c.Tab, entity, view.Tabs(entity))
	}
	if c.Dir != "" && c.Dir != string(viewstate.Asc) && c.Dir != string(viewstate.Desc) {
		return fmt.Errorf("invalid --dir %q (use asc or desc)", c.Dir)
	}

	state := c.buildState(a, entity)

	ctx := context.Background()
	scope := record.Scope(c.Event)
	if scope == "" {
		scope = record.ScopeAll
	}
	records := a.gw.Fetch(ctx, scope, entity)

	// Events get the project-tracker cross-reference attached by fuzzy
	// name match; there is no foreign key upstream. The cross-reference
	// rides on a per-call engine copy, never on the shared engine.
	engine := a.engine
	if entity.Base() == record.Events {
		candidates := a.gw.Fetch(ctx, record.ScopeAll, record.Projects)
		if len(candidates) > 0 {
			engine = engine.WithXRef(&view.XRef{Matcher: match.Substring{}, Candidates: candidates})
		}
	}

	table := engine.Build(entity, records, state)

	if c.globals != nil && c.globals.JSON {
		return printTableJSON(table)
	}
	fmt.Print(view.Text(table))
	return nil
}

// buildState overlays the command's flags on the entity's persisted state.
func (c *ListCommand) buildState(a *app, entity record.EntityType) viewstate.State {
	var state viewstate.State
	if st, ok := a.states[entity.Base()]; ok {
		state = st.State()
	} else {
		state = view.DefaultState(entity, a.cfg.Display.PageSize)
	}

	if entity == record.Speakers {
		state.FilterTab = "all"
	}
	if c.Tab != "" {
		state.FilterTab = c.Tab
	}
	if c.Sort != "" {
		state.SortColumn = c.Sort
		state.SortDirection = viewstate.Asc
		if c.Dir == string(viewstate.Desc) {
			state.SortDirection = viewstate.Desc
		}
	}
	if c.Search != "" {
		state.SearchQuery = c.Search
	}
	if c.Page >= 1 {
		state.CurrentPage = c.Page
	}
	if c.PageSize >= 1 {
		state.PageSize = c.PageSize
	}
	return state
}

type tableJSON struct {
	Entity        string            `json:"entity"`
	Page          int               `json:"page"`
	PageCount     int               `json:"page_count"`
	TotalFiltered int               `json:"total_filtered"`
	Columns       []string          `json:"columns"`
	Rows          [][]string        `json:"rows"`
	Aggregates    map[string]float64 `json:"aggregates,omitempty"`
}

func printTableJSON(t view.Table) error {
	out := tableJSON{
		Entity:        string(t.Entity),
		Page:          t.Page,
		PageCount:     t.PageCount,
		TotalFiltered: t.TotalFiltered,
		Columns:       make([]string, len(t.Headers)),
		Rows:          make([][]string, len(t.Rows)),
	}
	for i, h := range t.Headers {
		out.Columns[i] = h.Name
	}
	for i, row := range t.Rows {
		out.Rows[i] = row.Cells
	}
	if len(t.Aggregates) > 0 {
		out.Aggregates = make(map[string]float64, len(t.Aggregates))
		for _, agg := range t.Aggregates {
			out.Aggregates[agg.Key] = agg.Total
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
