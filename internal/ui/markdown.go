package ui

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const (
	defaultWrap = 100
	minWrap     = 40
)

// IsStdoutTTY returns true when stdout is connected to a terminal.
func IsStdoutTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// MarkdownWriter buffers markdown and renders it with glamour on Flush when
// the destination is a terminal. In raw mode, or when out is not a TTY,
// writes pass straight through and Flush does nothing.
type MarkdownWriter struct {
	out   io.Writer
	buf   bytes.Buffer
	raw   bool
	isTTY bool
}

// NewMarkdownWriter creates a MarkdownWriter targeting out.
func NewMarkdownWriter(out io.Writer, raw bool) *MarkdownWriter {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &MarkdownWriter{
		out:   out,
		raw:   raw,
		isTTY: tty,
	}
}

func (m *MarkdownWriter) passthrough() bool {
	return m.raw || !m.isTTY
}

// Write satisfies io.Writer.
func (m *MarkdownWriter) Write(p []byte) (int, error) {
	if m.passthrough() {
		return m.out.Write(p)
	}
	return m.buf.Write(p)
}

// Flush renders the buffered markdown to the underlying writer. If glamour
// fails the raw buffer is written instead, with a note on stderr.
func (m *MarkdownWriter) Flush() error {
	if m.passthrough() || m.buf.Len() == 0 {
		return nil
	}

	rendered, err := render(m.buf.String())
	if err != nil {
		fmt.Fprintln(os.Stderr, Muted.Render("  (markdown rendering failed, showing raw output)"))
		_, werr := m.out.Write(m.buf.Bytes())
		return werr
	}

	_, err = fmt.Fprint(m.out, rendered)
	return err
}

// RenderMarkdown renders a complete markdown string for terminal output.
// Returns md unchanged on any error.
func RenderMarkdown(md string) string {
	out, err := render(md)
	if err != nil {
		return md
	}
	return out
}

func render(md string) (string, error) {
	style := glamour.WithAutoStyle()
	if termenv.EnvNoColor() {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(wrapWidth()),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// wrapWidth fits rendered markdown to the terminal, within sane bounds.
func wrapWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWrap
	}
	return min(max(w-4, minWrap), defaultWrap)
}

// MarkdownTable formats rows as a GitHub-style table. Pipes in cells are
// escaped and short rows are padded.
func MarkdownTable(headers []string, rows [][]string) string {
	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = strings.ReplaceAll(cells[i], "|", `\|`)
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
	}

	writeRow(headers)
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}
