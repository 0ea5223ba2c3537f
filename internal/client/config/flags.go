package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/agentdesk/internal/flagx"
)

// Flag sets of the two front-end commands.
var (
	launcherFlags = []string{"-p", "-d", "-x", "-v"}
	cliFlags      = []string{"-p", "-v"}
)

// LauncherArgs returns args without the flags the launcher consumes, ready to
// be forwarded to the CLI.
func LauncherArgs(args []string) []string {
	return flagx.DropArgs(args, []string{"-p", "-x", "-v"}, []string{"-d"})
}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-p string   pipeline: email, planner or research
//	-d          launcher: start the CLI detached
//	-x string   launcher: CLI executable
//	-v string   front-end log level
//
// Only the flags listed in allowed are considered; os.Args is filtered with
// flagx.FilterArgs so the server settings can share the command line. The
// CLI leaves out -d and -x, which the server uses for its DSN.
func parseFlags(cfg *Config, allowed []string) {
	args := flagx.FilterArgs(os.Args[1:], allowed)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Pipeline, "p", cfg.Pipeline, "pipeline (email, planner, research)")
	fs.BoolVar(&cfg.Detached, "d", cfg.Detached, "start the CLI detached")
	fs.StringVar(&cfg.CLIBinary, "x", cfg.CLIBinary, "CLI executable")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
