package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/eventhubx/eventhubx/internal/view"
)

// Execute implements the go-flags Commander interface for ColumnsCommand.
func (c *ColumnsCommand) Execute(args []string) error {
	a, err := openApp(c.globals)
	if err != nil {
		return err
	}
	defer a.Close()

	return c.executeWithApp(a)
}

// executeWithApp runs columns against a provided app (for testing).
func (c *ColumnsCommand) executeWithApp(a *app) error {
	entity, err := parseEntity(c.Entity)
	if err != nil {
		return err
	}

	st, ok := a.states[entity.Base()]
	if !ok {
		return fmt.Errorf("no view state for %s", entity)
	}

	for _, name := range c.Toggle {
		if !st.ToggleColumn(name) {
			fmt.Fprintf(os.Stderr, "Note: unknown column %q ignored.\n", name)
		}
	}

	state := st.State()
	columns := view.Columns(entity)

	if c.globals != nil && c.globals.JSON {
		out := map[string]bool{}
		for _, col := range columns {
			out[col.Name] = state.VisibleColumns[col.Name]
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Columns for %s:\n", entity.Base())
	for _, col := range columns {
		marker := " "
		if state.VisibleColumns[col.Name] {
			marker = "x"
		}
		fmt.Printf("  [%s] %-15s %s\n", marker, col.Name, col.Header)
	}
	return nil
}
