package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/omencyber/steve/internal/browser"
	"github.com/omencyber/steve/internal/scraper"
	"github.com/spf13/cobra"
)

const banner = `
   _____ _______ ________      ________
  / ____|__   __|  ____\ \    / /  ____|
 | (___    | |  | |__   \ \  / /| |__
  \___ \   | |  |  __|   \ \/ / |  __|
  ____) |  | |  | |____   \  /  | |____
 |_____/   |_|  |______|   \/   |______|

 Systematic Tool for Evidence Verification and Examination
`

// MenuReader defines interface for reading user input (for testing)
type MenuReader interface {
	ReadString(delim byte) (string, error)
}

// DefaultMenuReader wraps bufio.Reader
type DefaultMenuReader struct {
	reader *bufio.Reader
}

func (d *DefaultMenuReader) ReadString(delim byte) (string, error) {
	return d.reader.ReadString(delim)
}

// menuEntry is one row of the main menu.
type menuEntry struct {
	key   string
	label string
	run   func(m *Menu, ctx context.Context) error
}

var menuEntries = []menuEntry{
	{"1", "Browser Forensics (Chrome, Chromium, Safari)", (*Menu).runBrowserMenu},
	{"2", "Cache Extraction", notImplemented("Cache extraction is not yet implemented.")},
	{"3", "Extract Secrets (GCP, AWS, Azure, and more)", notImplemented("Extracting cloud secrets is not yet implemented.")},
	{"4", "Configure AWS Keys", notImplemented("AWS key configuration is not yet configured.")},
	{"5", "OSX File Scraper", (*Menu).runScraper},
}

const exitKey = "99"

func notImplemented(msg string) func(*Menu, context.Context) error {
	return func(m *Menu, _ context.Context) error {
		fmt.Fprintln(m.out, msg)
		return nil
	}
}

// Menu dispatches numbered choices to the same code paths as the subcommands.
// When not interactive, the banner and prompts are not drawn so the menu can
// be driven from a script.
type Menu struct {
	reader      MenuReader
	out         io.Writer
	interactive bool
	session     *session
}

// NewMenuCommand creates the menu command
func NewMenuCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Interactive menu",
		Long: `Start the interactive STEVE menu.

Choices:
  1   Browser forensics (delegates to the configured browser tool)
  2   Cache extraction (not yet implemented)
  3   Extract cloud secrets (not yet implemented)
  4   Configure AWS keys (not yet configured)
  5   OSX file scraper
  99  Exit

When stdin is not a terminal, the menu reads answers line by line without
drawing prompts. End of input exits the menu.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			in := cmd.InOrStdin()
			interactive := false
			if f, ok := in.(*os.File); ok {
				interactive = isatty.IsTerminal(f.Fd())
			}

			m := &Menu{
				reader:      &DefaultMenuReader{reader: bufio.NewReader(in)},
				out:         cmd.OutOrStdout(),
				interactive: interactive,
				session:     s,
			}
			return m.Run(cmd.Context())
		},
	}
	return cmd
}

// Run loops until the exit choice or end of input.
func (m *Menu) Run(ctx context.Context) error {
	if m.interactive {
		color.New(color.FgCyan).Fprint(m.out, banner)
	}

	for {
		m.printMenu()
		choice, err := m.prompt("Enter your choice: ")
		if err != nil {
			return endOfInput(err)
		}

		if choice == exitKey {
			fmt.Fprintln(m.out, "Exiting...")
			return nil
		}

		entry, ok := lookupEntry(choice)
		if !ok {
			fmt.Fprintln(m.out, "Invalid choice. Please try again.")
			continue
		}
		if err := entry.run(m, ctx); err != nil {
			return endOfInput(err)
		}
	}
}

func lookupEntry(key string) (menuEntry, bool) {
	for _, e := range menuEntries {
		if e.key == key {
			return e, true
		}
	}
	return menuEntry{}, false
}

// endOfInput turns io.EOF into a clean exit.
func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("failed to read input: %w", err)
}

func (m *Menu) printMenu() {
	if !m.interactive {
		return
	}
	bold := color.New(color.Bold)
	bold.Fprintln(m.out, "\nSelect from the menu:")
	fmt.Fprintln(m.out)
	for _, e := range menuEntries {
		fmt.Fprintf(m.out, "  %s) %s\n", e.key, e.label)
	}
	fmt.Fprintf(m.out, "  %s) Exit\n\n", exitKey)
}

// prompt draws label when interactive and returns the trimmed answer.
// A final line without a newline is still returned; io.EOF is reported only
// when nothing was read.
func (m *Menu) prompt(label string) (string, error) {
	if m.interactive {
		color.New(color.FgCyan).Fprint(m.out, label)
	}
	line, err := m.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (m *Menu) runBrowserMenu(ctx context.Context) error {
	if m.interactive {
		fmt.Fprintln(m.out, "\nSelect a browser:")
		fmt.Fprintln(m.out, "  1) Chrome")
		fmt.Fprintln(m.out, "  2) Safari")
		fmt.Fprintln(m.out, "  3) Firefox")
		fmt.Fprintf(m.out, "  %s) Back\n\n", exitKey)
	}

	choice, err := m.prompt("Select a browser: ")
	if err != nil {
		return err
	}

	switch strings.ToLower(choice) {
	case "1", "chrome":
		return m.runBrowserForensics(ctx)
	case exitKey, "back":
		return nil
	default:
		fmt.Fprintln(m.out, "Currently, only Chrome is supported for Browser Forensics.")
		return nil
	}
}

func (m *Menu) runBrowserForensics(ctx context.Context) error {
	input, err := m.prompt("Enter the input path to the browser profile directory: ")
	if err != nil {
		return err
	}
	name, err := m.prompt("Enter the output file name (without extension): ")
	if err != nil {
		return err
	}
	fileType, err := m.prompt("Enter the file type for output (xlsx, sqlite, jsonl): ")
	if err != nil {
		return err
	}

	format, err := browser.ParseFormat(fileType)
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return nil
	}

	fmt.Fprintln(m.out, "Running forensics for Chrome...")
	req := browser.Request{InputPath: input, OutputName: name, Format: format}
	if err := m.session.runBrowser(ctx, req, m.out); err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
	}
	return nil
}

func (m *Menu) runScraper(ctx context.Context) error {
	dir, err := m.prompt("Enter the starting directory for the search: ")
	if err != nil {
		return err
	}
	fileType, err := m.prompt("Enter the type of files to search for (db, plist, ips, segb): ")
	if err != nil {
		return err
	}
	outputFile, err := m.prompt("Enter the path to the output file (optional): ")
	if err != nil {
		return err
	}

	rec, err := m.session.scrape(ctx, ScrapeParams{
		Directory:  dir,
		FileType:   fileType,
		OutputFile: outputFile,
	}, m.out)
	switch {
	case scraper.IsInvalidRoot(err):
		fmt.Fprintln(m.out, "Invalid directory path.")
	case err != nil:
		fmt.Fprintf(m.out, "Error: %v\n", err)
	case outputFile != "":
		fmt.Fprintf(m.out, "Output written to %s\n", rec.OutputFile)
	}
	return nil
}
