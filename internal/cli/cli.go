package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	List    *ListCommand
	Columns *ColumnsCommand
	Views   *ViewsCommand
	Sync    *SyncCommand
	Export  *ExportCommand
	Serve   *ServeCommand
	Status  *StatusCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "eventhubx"
	parser.LongDescription = "Event dashboard data engine: mirror, filter, sort, and render event-platform data."

	cmds := &commands{
		List:    &ListCommand{globals: &globals, version: version},
		Columns: &ColumnsCommand{globals: &globals, version: version},
		Views:   &ViewsCommand{globals: &globals, version: version},
		Sync:    &SyncCommand{globals: &globals, version: version},
		Export:  &ExportCommand{globals: &globals, version: version},
		Serve:   &ServeCommand{globals: &globals, version: version},
		Status:  &StatusCommand{globals: &globals, version: version},
	}

	parser.AddCommand("list", "Render an entity table", "Render the filtered, sorted, paginated table for one entity type.", cmds.List)
	parser.AddCommand("columns", "Show or toggle visible columns", "Show or toggle the persisted column visibility for one entity type.", cmds.Columns)
	parser.AddCommand("views", "Manage saved Events views", "Save, list, delete, or mark default named Events view snapshots.", cmds.Views)
	parser.AddCommand("sync", "Sync backend data into the mirror", "Trigger an upstream synchronization and mirror the re-fetched payload; --entity events pulls the full event list.", cmds.Sync)
	parser.AddCommand("export", "Export events to CSV", "Write the fixed-column events spreadsheet.", cmds.Export)
	parser.AddCommand("serve", "Start the EventHubX daemon", "Start the EventHubX daemon (local HTTP service).", cmds.Serve)
	parser.AddCommand("status", "Show mirror statistics", "Show mirror database statistics and configuration summary.", cmds.Status)

	return parser, &globals, cmds
}

// Run is the main entry point for the EventHubX CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("eventhubx %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
