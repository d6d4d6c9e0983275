package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ListCommand — render one entity table with filters, sort, and paging.
type ListCommand struct {
	Entity   string `long:"entity" description:"Entity type: events|exhibitors|people|speakers|sessions|sponsors" default:"events"`
	Event    string `long:"event" description:"Event scope (event id, or 'all')" default:"all"`
	Tab      string `long:"tab" description:"Filter tab (entity-specific; 'all' for no filter)"`
	Sort     string `long:"sort" description:"Sort column name"`
	Dir      string `long:"dir" description:"Sort direction: asc | desc" default:"asc"`
	Search   string `long:"search" description:"Free-text search query"`
	Page     int    `long:"page" description:"Page number (1-based)"`
	PageSize int    `long:"page-size" description:"Rows per page"`

	globals *GlobalFlags
	version string
}

// ColumnsCommand — show or toggle persisted column visibility.
type ColumnsCommand struct {
	Entity string   `long:"entity" description:"Entity type" default:"events"`
	Toggle []string `long:"toggle" description:"Column name to toggle (repeatable)"`

	globals *GlobalFlags
	version string
}

// ViewsCommand — manage named saved views for the Events list.
type ViewsCommand struct {
	Save       string `long:"save" description:"Save the current snapshot flags under this name"`
	Delete     string `long:"delete" description:"Delete the named saved view"`
	SetDefault string `long:"set-default" description:"Mark the named saved view as default"`

	Tab    string `long:"tab" description:"Snapshot: filter tab"`
	View   string `long:"view" description:"Snapshot: view mode"`
	Year   string `long:"year" description:"Snapshot: year filter"`
	Search string `long:"search" description:"Snapshot: search query"`

	globals *GlobalFlags
	version string
}

// SyncCommand — trigger a backend sync, re-fetch after the poll delay, and
// write the payload into the mirror. The events type pulls the backend event
// list directly.
type SyncCommand struct {
	Event  string `long:"event" description:"Event id to sync (required for subpage entity types)"`
	Entity string `long:"entity" description:"Entity type to sync: events|exhibitors|people|speakers|sessions|sponsors|projects" default:"exhibitors"`
	NoWait bool   `long:"no-wait" description:"Trigger only; skip the delayed re-fetch"`
	Delay  int    `long:"delay" description:"Override the configured re-fetch delay (seconds)" default:"-1"`

	globals *GlobalFlags
	version string
}

// ExportCommand — write the events spreadsheet (CSV).
type ExportCommand struct {
	Output string `long:"output" description:"Output file ('-' for stdout)" default:"events.csv"`
	Tab    string `long:"tab" description:"Filter tab applied before export"`
	Search string `long:"search" description:"Search query applied before export"`

	globals *GlobalFlags
	version string
}

// ServeCommand — run the HTTP daemon.
type ServeCommand struct {
	Host string `long:"host" description:"Override listen host"`
	Port int    `long:"port" description:"Override listen port"`

	globals *GlobalFlags
	version string
}

// StatusCommand — show mirror statistics and configuration summary.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}
