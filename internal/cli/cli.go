package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Track      *TrackCommand
	Status     *StatusCommand
	Report     *ReportCommand
	Timeline   *TimelineCommand
	Categories *CategoriesCommand
	Assign     *AssignCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "glimpse"
	parser.LongDescription = "Local window-focus activity tracking: sample the focused window, build sessions, and report per-category time."

	cmds := &commands{
		Track:      &TrackCommand{globals: &globals, version: version},
		Status:     &StatusCommand{globals: &globals, version: version},
		Report:     &ReportCommand{globals: &globals, version: version},
		Timeline:   &TimelineCommand{globals: &globals, version: version},
		Categories: &CategoriesCommand{globals: &globals, version: version},
		Assign:     &AssignCommand{globals: &globals, version: version},
	}

	parser.AddCommand("track", "Start the Glimpse daemon", "Start the Glimpse daemon (window sampler + local HTTP service).", cmds.Track)
	parser.AddCommand("status", "Show tracking health and statistics", "Show database statistics, top apps, and daemon health.", cmds.Status)
	parser.AddCommand("report", "Show per-category totals for a day", "Show per-category tracked time for a day, most time first.", cmds.Report)
	parser.AddCommand("timeline", "Show the category timeline for a day", "Show the merged category timeline for a day in chronological order.", cmds.Timeline)
	parser.AddCommand("categories", "List or manage categories", "List categories, or create/update/delete a custom category.", cmds.Categories)
	parser.AddCommand("assign", "Pin an app to a category", "Pin an app to a category, overriding built-in and custom memberships.", cmds.Assign)

	return parser, &globals, cmds
}

// Run is the main entry point for the Glimpse CLI using os.Args.
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
			fmt.Printf("glimpse %s\n", version)
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
