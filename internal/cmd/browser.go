package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/omencyber/steve/internal/browser"
	"github.com/spf13/cobra"
)

// NewBrowserCommand creates the browser command
func NewBrowserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browser",
		Short: "Run browser forensics on a profile directory",
		Long: `Run the configured browser forensics tool against a browser profile.

The tool is started as: <browser.command> <browser.args...> -i <input> -o <output> -f <format>
Arguments are passed directly to the process; no shell is involved.

Examples:
  steve browser -i ~/Library/Application\ Support/Google/Chrome/Default -o chrome -f xlsx`,
		Args: cobra.NoArgs,
		RunE: runBrowserCommand,
	}

	cmd.Flags().StringP("input", "i", "", "Browser profile directory (required)")
	cmd.Flags().StringP("output", "o", "", "Output file name without extension (required)")
	cmd.Flags().StringP("format", "f", string(browser.FormatXLSX), "Output format: xlsx, sqlite, jsonl")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")

	return cmd
}

func runBrowserCommand(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	formatStr, _ := cmd.Flags().GetString("format")

	format, err := browser.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	return s.runBrowser(cmd.Context(), browser.Request{
		InputPath:  input,
		OutputName: output,
		Format:     format,
	}, cmd.OutOrStdout())
}

// runBrowser invokes the browser tool and copies its stdout to out.
// The tool's stderr is logged at WARN on failure and at DEBUG otherwise.
func (s *session) runBrowser(ctx context.Context, req browser.Request, out io.Writer) error {
	inv := s.cfg.BrowserInvoker()
	s.log.LogInfo(fmt.Sprintf("Running %s on %s (%s)", inv.Command, req.InputPath, req.Format))

	resp, err := inv.Invoke(ctx, req)
	if resp != nil && resp.Stdout != "" {
		io.WriteString(out, resp.Stdout)
	}
	if err != nil {
		var toolErr *browser.ToolError
		if !errors.As(err, &toolErr) && resp != nil && resp.Stderr != "" {
			s.log.LogWarn(resp.Stderr)
		}
		return err
	}

	if resp.Stderr != "" {
		s.log.LogDebug(resp.Stderr)
	}
	s.log.LogInfo(fmt.Sprintf("Browser forensics finished in %s", resp.Duration.Round(time.Millisecond)))
	return nil
}
