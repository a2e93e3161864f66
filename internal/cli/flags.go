package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// TrackCommand — run the sampling daemon and the local HTTP service.
type TrackCommand struct {
	Port     int    `long:"port" description:"Override daemon port"`
	LogLevel string `long:"log-level" description:"Override log level"`
	ProbeCmd string `long:"probe-cmd" description:"Command printing 'app<TAB>window title' for the focused window"`

	globals *GlobalFlags
	version string
}

// StatusCommand — show database statistics and daemon health.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// ReportCommand — per-category totals for one day.
type ReportCommand struct {
	Day string `long:"day" description:"Day to report (YYYY-MM-DD, default today)"`

	globals *GlobalFlags
	version string
}

// TimelineCommand — merged category timeline for one day.
type TimelineCommand struct {
	Day string `long:"day" description:"Day to report (YYYY-MM-DD, default today)"`

	globals *GlobalFlags
	version string
}

// CategoriesCommand — list categories, or create/update/delete one.
type CategoriesCommand struct {
	Create      string `long:"create" description:"Create a custom category with this display name"`
	Update      string `long:"update" description:"Update the category with this id"`
	Delete      string `long:"delete" description:"Delete the custom category with this id"`
	Description string `long:"description" description:"Category description (with --create/--update)"`
	Color       string `long:"color" description:"Category color as #RRGGBB (with --create/--update)"`

	globals *GlobalFlags
	version string
}

// AssignCommand — pin an app to a category, overriding memberships.
type AssignCommand struct {
	App      string `long:"app" description:"App key to assign (required)"`
	Category string `long:"category" description:"Target category id (required)"`

	globals *GlobalFlags
	version string
}
