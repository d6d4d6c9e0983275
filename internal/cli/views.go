package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/eventhubx/eventhubx/internal/record"
	"github.com/eventhubx/eventhubx/internal/views"
)

// Execute implements the go-flags Commander interface for ViewsCommand.
func (c *ViewsCommand) Execute(args []string) error {
	a, err := openApp(c.globals)
	if err != nil {
		return err
	}
	defer a.Close()

	return c.executeWithApp(a)
}

// executeWithApp runs views against a provided app (for testing). With no
// action flag it lists the saved views.
func (c *ViewsCommand) executeWithApp(a *app) error {
	switch {
	case c.Save != "":
		return c.save(a)
	case c.Delete != "":
		if err := a.saved.Delete(c.Delete); err != nil {
			return err
		}
		fmt.Printf("Deleted saved view %q.\n", c.Delete)
		return nil
	case c.SetDefault != "":
		if err := a.saved.SetDefault(c.SetDefault); err != nil {
			return err
		}
		fmt.Printf("Saved view %q is now the default.\n", c.SetDefault)
		return nil
	default:
		return c.list(a)
	}
}

// save snapshots the current Events column visibility together with the
// snapshot flags.
func (c *ViewsCommand) save(a *app) error {
	state := a.states[record.Events].State()
	v := views.SavedView{
		Tab:            c.Tab,
		View:           c.View,
		Year:           c.Year,
		Search:         c.Search,
		VisibleColumns: state.VisibleColumns,
	}
	if err := a.saved.Save(c.Save, v); err != nil {
		return err
	}
	fmt.Printf("Saved view %q.\n", c.Save)
	return nil
}

func (c *ViewsCommand) list(a *app) error {
	names, err := a.saved.Names()
	if err != nil {
		return err
	}
	defName, _, hasDefault, err := a.saved.Default()
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		out := struct {
			Views   []string `json:"views"`
			Default string   `json:"default,omitempty"`
		}{Views: names}
		if hasDefault {
			out.Default = defName
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(names) == 0 {
		fmt.Println("No saved views.")
		return nil
	}
	fmt.Println("Saved views:")
	for _, name := range names {
		marker := " "
		if hasDefault && name == defName {
			marker = "*"
		}
		fmt.Printf("  %s %s\n", marker, name)
	}
	return nil
}
