package cmd

import (
	"fmt"

	"github.com/omencyber/steve/internal/report"
	"github.com/spf13/cobra"
)

// NewReportCommand creates the report command
func NewReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <scan-id>",
		Short: "Write an evidence report for a recorded scan",
		Long: `Write an evidence report for a recorded scan.

The report lists the run metadata, the result fingerprint and every matched
path. With --inspect, each path is stat'ed again and its content type sniffed;
files that are no longer readable are marked unavailable.

The format follows the output extension: .html or .htm renders HTML, anything
else writes Markdown. Without --output the Markdown is printed to stdout.

Examples:
  steve report 3f2a -o evidence.html --inspect
  steve report 3f2a9c1e > evidence.md`,
		Args: cobra.ExactArgs(1),
		RunE: runReportCommand,
	}

	cmd.Flags().StringP("output", "o", "", "Report file (.md or .html)")
	cmd.Flags().Bool("inspect", false, "Stat and MIME-sniff each matched file")
	return cmd
}

func runReportCommand(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	output, _ := cmd.Flags().GetString("output")
	inspect, _ := cmd.Flags().GetBool("inspect")

	store, err := s.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.GetScan(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	opts := report.Options{Inspect: inspect}
	if output == "" {
		_, err := cmd.OutOrStdout().Write(report.Build(rec, opts))
		return err
	}

	if err := report.Write(output, rec, opts); err != nil {
		return err
	}
	s.log.LogInfo(fmt.Sprintf("Report for scan %s written to %s", shortID(rec.ID), output))
	return nil
}
