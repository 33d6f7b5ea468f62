package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/omencyber/steve/internal/history"
	"github.com/omencyber/steve/internal/models"
	"github.com/spf13/cobra"
)

const shortIDLen = 8

// NewHistoryCommand creates the history command with list and show subcommands
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded scrape runs",
		Long: `Inspect scrape runs recorded in the scan history database.

The database lives at $STEVE_HOME/history/scans.db unless history.db_path is set.
Scan IDs may be abbreviated to any unique prefix of at least four characters.`,
	}

	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryShowCommand())
	return cmd
}

func newHistoryListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded scans, newest first",
		Long: `List recorded scans, newest first.

Examples:
  steve history list
  steve history list --root '/Volumes/**' --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			root, _ := cmd.Flags().GetString("root")
			limit, _ := cmd.Flags().GetInt("limit")
			if limit < 0 {
				return fmt.Errorf("--limit must be >= 0, got %d", limit)
			}

			store, err := s.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			scans, err := store.ListScans(cmd.Context(), history.Filter{RootPattern: root, Limit: limit})
			if err != nil {
				return err
			}
			displayScanList(cmd.OutOrStdout(), scans)
			return nil
		},
	}

	cmd.Flags().String("root", "", "Only list scans whose root matches this glob (e.g. '/Volumes/**')")
	cmd.Flags().Int("limit", 20, "Maximum number of scans to list (0 = all)")
	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <scan-id>",
		Short: "Show one recorded scan and its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			store, err := s.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.GetScan(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			filesOnly, _ := cmd.Flags().GetBool("files-only")
			if filesOnly {
				for _, f := range rec.Files {
					fmt.Fprintln(cmd.OutOrStdout(), f)
				}
				return nil
			}
			displayScan(cmd.OutOrStdout(), rec)
			return nil
		},
	}

	cmd.Flags().Bool("files-only", false, "Print only the matched paths, one per line")
	return cmd
}

// displayScanList prints one line per scan.
func displayScanList(w io.Writer, scans []history.Summary) {
	if len(scans) == 0 {
		fmt.Fprintln(w, "No scans recorded.")
		return
	}

	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(w, "%-8s  %-19s  %-16s  %7s  %7s  %s\n", "ID", "STARTED", "MODE", "MATCHED", "SKIPPED", "ROOT")
	for _, sc := range scans {
		fmt.Fprintf(w, "%-8s  %-19s  %-16s  %7d  %7d  %s\n",
			shortID(sc.ID),
			sc.StartedAt.Local().Format("2006-01-02 15:04:05"),
			sc.Mode.String(),
			sc.Matches,
			sc.Skipped,
			sc.Root,
		)
	}
}

// displayScan prints the metadata and files of one scan.
func displayScan(w io.Writer, rec *models.ScanRecord) {
	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow)

	cyan.Fprintf(w, "\n=== Scan %s ===\n\n", rec.ID)
	fmt.Fprintf(w, "  Root: %s\n", rec.Root)
	fmt.Fprintf(w, "  Mode: %s\n", rec.Mode)
	if rec.Host != "" {
		fmt.Fprintf(w, "  Host: %s\n", rec.Host)
	}
	fmt.Fprintf(w, "  Started: %s\n", rec.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(w, "  Duration: %s\n", rec.Duration)
	fmt.Fprintf(w, "  Matched: %d\n", rec.Matches())
	fmt.Fprintf(w, "  Skipped: ")
	if rec.Skipped > 0 {
		yellow.Fprintf(w, "%d\n", rec.Skipped)
	} else {
		fmt.Fprintf(w, "%d\n", rec.Skipped)
	}
	if rec.OutputFile != "" {
		fmt.Fprintf(w, "  Output: %s\n", rec.OutputFile)
	}
	fmt.Fprintf(w, "  Fingerprint: %s\n", rec.Fingerprint)

	if len(rec.Files) == 0 {
		return
	}
	fmt.Fprintf(w, "\n")
	cyan.Fprintf(w, "Files:\n")
	for _, f := range rec.Files {
		fmt.Fprintf(w, "  %s\n", f)
	}
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}
