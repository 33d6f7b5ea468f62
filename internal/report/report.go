// Package report turns a recorded scan into an evidence report, as Markdown
// or as HTML rendered from that Markdown.
package report

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/omencyber/steve/internal/models"
	"github.com/omencyber/steve/internal/sink"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Unavailable marks a size or type that could not be determined.
const Unavailable = "unavailable"

// Options controls report content.
type Options struct {
	// Inspect stats each matched file and sniffs its MIME type.
	Inspect bool

	// GeneratedAt is stamped into the report. Zero means time.Now().
	GeneratedAt time.Time
}

// FileDetail is what inspection learned about one matched path.
type FileDetail struct {
	Path string
	Size string
	Type string
}

// Inspect stats path and sniffs its content type. Only regular files are
// opened; anything else, or any error, yields Unavailable.
func Inspect(path string) FileDetail {
	detail := FileDetail{Path: path, Size: Unavailable, Type: Unavailable}

	info, err := os.Lstat(path)
	if err != nil || !info.Mode().IsRegular() {
		return detail
	}
	detail.Size = fmt.Sprintf("%d", info.Size())

	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return detail
	}
	detail.Type = mime.String()
	return detail
}

// Build renders rec as a Markdown document.
func Build(rec *models.ScanRecord, opts Options) []byte {
	generated := opts.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	output := rec.OutputFile
	if output == "" {
		output = "stdout"
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "# Evidence report: %s\n\n", escape(rec.Root))
	fmt.Fprintf(&b, "Generated %s\n\n", generated.UTC().Format(time.RFC3339))

	b.WriteString("| Field | Value |\n|---|---|\n")
	row := func(k, v string) { fmt.Fprintf(&b, "| %s | %s |\n", k, escape(v)) }
	row("Scan ID", rec.ID)
	row("Host", rec.Host)
	row("Root", rec.Root)
	row("Mode", rec.Mode.String())
	row("Started", rec.StartedAt.UTC().Format(time.RFC3339))
	row("Duration", rec.Duration.String())
	row("Matched", fmt.Sprintf("%d", rec.Matches()))
	row("Skipped", fmt.Sprintf("%d", rec.Skipped))
	row("Output", output)
	row("Fingerprint", rec.Fingerprint)

	b.WriteString("\n## Matched files\n\n")
	if rec.Matches() == 0 {
		b.WriteString("No files matched.\n")
		return b.Bytes()
	}

	if opts.Inspect {
		b.WriteString("| # | Path | Size | Type |\n|---:|---|---:|---|\n")
		for i, path := range rec.Files {
			d := Inspect(path)
			fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", i+1, escape(path), d.Size, escape(d.Type))
		}
	} else {
		b.WriteString("| # | Path |\n|---:|---|\n")
		for i, path := range rec.Files {
			fmt.Fprintf(&b, "| %d | %s |\n", i+1, escape(path))
		}
	}

	return b.Bytes()
}

// RenderHTML converts a Markdown report into a standalone HTML page.
func RenderHTML(title string, markdown []byte) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert(markdown, &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(title))
	page.WriteString("<style>table{border-collapse:collapse}td,th{border:1px solid #999;padding:2px 6px;font-family:monospace}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

// IsHTML reports whether path names an HTML report.
func IsHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// Write builds the report for rec and writes it to path through the sink's
// locked atomic writer. The format follows the file extension.
func Write(path string, rec *models.ScanRecord, opts Options) error {
	content := Build(rec, opts)

	if IsHTML(path) {
		rendered, err := RenderHTML("Evidence report "+rec.ID, content)
		if err != nil {
			return err
		}
		content = rendered
	}

	if err := sink.LockAndWrite(path, content); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

// markdownSpecial holds characters that would change table or inline layout.
const markdownSpecial = "\\`*_[]<>|#!"

// escape backslash-escapes Markdown punctuation so paths render literally.
func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(markdownSpecial, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
