package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rnwolfe/exmachina/internal/request"
	"github.com/rnwolfe/exmachina/internal/version"
)

func TestWriteVersion(t *testing.T) {
	tests := []struct {
		name             string
		short, generator bool
		want             string
	}{
		{"full", false, false, "exmachina " + version.Full()},
		{"short", true, false, version.Short()},
		{"generator", false, true, version.Generator()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeVersion(&buf, tt.short, tt.generator); err != nil {
				t.Fatalf("writeVersion() error: %v", err)
			}
			if got := strings.TrimSpace(buf.String()); got != tt.want {
				t.Errorf("writeVersion() = %q, want %q", got, tt.want)
			}
		})
	}

	if err := writeVersion(&bytes.Buffer{}, true, true); err == nil {
		t.Error("--short with --generator should fail")
	}
}

func TestRunVersionFlags(t *testing.T) {
	t.Cleanup(func() { versionShort, versionGenerator = false, false })
	versionShort, versionGenerator = false, false
	if err := versionCmd.ParseFlags([]string{"--short"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	out := captureStdout(t, func() {
		if err := runVersion(nil, nil); err != nil {
			t.Errorf("runVersion: %v", err)
		}
	})
	if strings.TrimSpace(out) != version.Short() {
		t.Errorf("version --short = %q, want %q", out, version.Short())
	}
}

// The generator string is what rendered pages advertise.
func TestGeneratorMatchesRenderedMeta(t *testing.T) {
	configTestEnv(t)
	a := testApp(t)

	ctx := request.NewContext(context.Background(), request.NewScope(request.Request{Kind: request.KindHome}))
	var page strings.Builder
	if err := a.theme.Render(ctx, &page); err != nil {
		t.Fatalf("Render: %v", err)
	}

	var buf bytes.Buffer
	if err := writeVersion(&buf, false, true); err != nil {
		t.Fatal(err)
	}
	want := `content="` + strings.TrimSpace(buf.String()) + `"`
	if !strings.Contains(page.String(), want) {
		t.Errorf("rendered page missing %s:\n%s", want, page.String())
	}
}
