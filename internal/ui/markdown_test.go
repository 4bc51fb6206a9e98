package ui

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

// newMarkdownWriterForTest bypasses the *os.File check so tests can pick
// the TTY mode.
func newMarkdownWriterForTest(out io.Writer, raw, isTTY bool) *MarkdownWriter {
	return &MarkdownWriter{
		out:   out,
		raw:   raw,
		isTTY: isTTY,
	}
}

func TestMarkdownWriter_PassThrough(t *testing.T) {
	tests := []struct {
		name  string
		raw   bool
		isTTY bool
	}{
		{"raw on tty", true, true},
		{"non-tty", false, false},
		{"raw non-tty", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			mdw := newMarkdownWriterForTest(&buf, tt.raw, tt.isTTY)
			input := "# beta_header\n\n- **theme** priority 10\n"
			if _, err := io.WriteString(mdw, input); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if got := buf.String(); got != input {
				t.Errorf("got %q, want %q", got, input)
			}
			if err := mdw.Flush(); err != nil {
				t.Fatalf("Flush: %v", err)
			}
			if got := buf.String(); got != input {
				t.Errorf("Flush should be a no-op, got %q", got)
			}
		})
	}
}

func TestMarkdownWriter_TTY_BuffersUntilFlush(t *testing.T) {
	var buf bytes.Buffer
	mdw := newMarkdownWriterForTest(&buf, false, true)

	io.WriteString(mdw, "# Hooks\n\n")
	io.WriteString(mdw, "Fired for **singular-post**.\n")
	if buf.Len() != 0 {
		t.Errorf("TTY mode should buffer, got %q", buf.String())
	}

	if err := mdw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Hooks") || !strings.Contains(out, "singular-post") {
		t.Errorf("rendered output missing content: %q", out)
	}
}

func TestMarkdownWriter_TTY_EmptyFlush(t *testing.T) {
	var buf bytes.Buffer
	mdw := newMarkdownWriterForTest(&buf, false, true)
	if err := mdw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty flush wrote %q", buf.String())
	}
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("# Title\n\n`beta_footer` fires last.\n")
	if !strings.Contains(out, "Title") || !strings.Contains(out, "beta_footer") {
		t.Errorf("rendered output = %q", out)
	}
}

func TestNewMarkdownWriter(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "mdw-test-*.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if mdw := NewMarkdownWriter(f, false); mdw.raw || mdw.isTTY {
		t.Errorf("regular file: raw=%v isTTY=%v, want false/false", mdw.raw, mdw.isTTY)
	}

	var buf bytes.Buffer
	if mdw := NewMarkdownWriter(&buf, true); !mdw.raw || mdw.isTTY {
		t.Errorf("buffer with raw: raw=%v isTTY=%v, want true/false", mdw.raw, mdw.isTTY)
	}
}

func TestMarkdownTable(t *testing.T) {
	got := MarkdownTable(
		[]string{"Hook", "Priority", "Source"},
		[][]string{
			{"beta_header", "10", "theme"},
			{"beta_a|b", "5"},
		},
	)
	want := "| Hook | Priority | Source |\n" +
		"| --- | --- | --- |\n" +
		"| beta_header | 10 | theme |\n" +
		"| beta_a\\|b | 5 |  |\n"
	if got != want {
		t.Errorf("MarkdownTable() =\n%s\nwant\n%s", got, want)
	}
}

func TestIsStdoutTTY(t *testing.T) {
	_ = IsStdoutTTY()
}

func TestWrapWidth_NotATerminal(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	old := os.Stdout
	os.Stdout = w
	defer func() {
		os.Stdout = old
		w.Close()
	}()

	if got := wrapWidth(); got != defaultWrap {
		t.Errorf("wrapWidth() = %d, want %d", got, defaultWrap)
	}
}
