package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for steve
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steve",
		Short: "Evidence discovery toolkit for forensic examiners",
		Long: `STEVE (Systematic Tool for Evidence Verification and Examination) locates
artifacts of forensic interest on a mounted filesystem.

The scrape command walks a directory tree and lists every file with a given
extension (db, plist, ips) or every file that starts with the SEGB signature.
Runs are recorded in a local history database so their results can be listed,
compared by fingerprint, and turned into evidence reports.

Configuration is loaded from $STEVE_HOME/config.yaml (default ./.steve).
CLI flags override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints the returned error
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: $STEVE_HOME/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().String("log-dir", "", "Directory for per-run log files")
	cmd.PersistentFlags().Bool("verbose", false, "Show debug output")
	cmd.PersistentFlags().Bool("quiet", false, "Only show errors")

	// Add subcommands
	cmd.AddCommand(NewScrapeCommand())
	cmd.AddCommand(NewMenuCommand())
	cmd.AddCommand(NewBrowserCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewReportCommand())

	return cmd
}
