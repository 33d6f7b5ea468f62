package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/omencyber/steve/internal/models"
	"github.com/omencyber/steve/internal/scraper"
	"github.com/omencyber/steve/internal/sink"
	"github.com/spf13/cobra"
)

// ScrapeParams are the inputs of one scrape run, shared by the scrape
// subcommand and the interactive menu.
type ScrapeParams struct {
	Directory  string
	FileType   string
	OutputFile string

	// NoHistory skips recording the run even when history is enabled.
	NoHistory bool
}

// NewScrapeCommand creates the scrape command
func NewScrapeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Find evidence files under a directory",
		Long: `Walk a directory tree and list every file of the requested type.

File types:
  db, plist, ips   match by file name extension (case-sensitive)
  segb             match files that begin with the SEGB signature

Results are printed one path per line to stdout, or written to --output-file.
The output file's directory must already exist, and a file another run is
still writing is reported as locked rather than overwritten.
Entries that cannot be read are logged and skipped; the run still succeeds.

Examples:
  steve scrape -d /Volumes/evidence -t plist
  steve scrape -d ~/Library/Biome -t segb -o segb-files.txt`,
		Args: cobra.NoArgs,
		RunE: runScrapeCommand,
	}

	cmd.Flags().StringP("directory", "d", "", "Starting directory for the search (required)")
	cmd.Flags().StringP("file-type", "t", "", "Type of files to search for: db, plist, ips, segb (required)")
	cmd.Flags().StringP("output-file", "o", "", "Write results to this file instead of stdout")
	cmd.Flags().Bool("no-history", false, "Do not record this run in the scan history")
	cmd.MarkFlagRequired("directory")
	cmd.MarkFlagRequired("file-type")

	return cmd
}

func runScrapeCommand(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	directory, _ := cmd.Flags().GetString("directory")
	fileType, _ := cmd.Flags().GetString("file-type")
	outputFile, _ := cmd.Flags().GetString("output-file")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	_, err = s.scrape(cmd.Context(), ScrapeParams{
		Directory:  directory,
		FileType:   fileType,
		OutputFile: outputFile,
		NoHistory:  noHistory,
	}, cmd.OutOrStdout())
	return err
}

// scrape runs one scan and emits its Result Set. The file type and root are
// checked before anything is written, so a rejected run leaves no output file.
func (s *session) scrape(ctx context.Context, p ScrapeParams, stdout io.Writer) (*models.ScanRecord, error) {
	mode, err := models.ParseFileType(p.FileType)
	if err != nil {
		return nil, err
	}

	root, err := scraper.ResolveRoot(p.Directory)
	if err != nil {
		return nil, err
	}

	s.log.LogScanStart(root, mode)
	res, err := scraper.Scan(root, mode, scraper.Options{Logger: s.log})
	if err != nil {
		return nil, err
	}

	rec := &models.ScanRecord{
		ID:          uuid.New().String(),
		Root:        res.Root,
		Mode:        mode,
		Files:       res.Files,
		Skipped:     res.Skipped(),
		Fingerprint: models.Fingerprint(res.Files),
		StartedAt:   res.StartedAt,
		Duration:    res.Duration,
	}
	if host, err := os.Hostname(); err == nil {
		rec.Host = host
	}
	if p.OutputFile != "" {
		rec.OutputFile = p.OutputFile
		if abs, err := filepath.Abs(p.OutputFile); err == nil {
			rec.OutputFile = abs
		}
	}

	if err := sink.Emit(res.Files, p.OutputFile, stdout); err != nil {
		return nil, err
	}

	if s.cfg.History.Enabled && !p.NoHistory {
		s.record(ctx, rec)
	} else {
		// Unrecorded runs have no ID to look up later.
		rec.ID = ""
	}

	s.log.LogScanSummary(*rec)
	return rec, nil
}

// record stores rec in the history database. History is an audit aid, so a
// failure is logged and the run still succeeds.
func (s *session) record(ctx context.Context, rec *models.ScanRecord) {
	store, err := s.openHistory()
	if err != nil {
		s.log.LogWarn(fmt.Sprintf("Scan not recorded: %v", err))
		rec.ID = ""
		return
	}
	defer store.Close()

	if err := store.RecordScan(ctx, rec); err != nil {
		s.log.LogWarn(fmt.Sprintf("Scan not recorded: %v", err))
		rec.ID = ""
		return
	}
	s.log.LogDebug(fmt.Sprintf("Recorded scan %s", rec.ID))
}
