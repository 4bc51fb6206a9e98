package hook

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rnwolfe/exmachina/internal/request"
)

func TestParseHookFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		hook     string
		kind     Kind
		priority int
		wantErr  bool
	}{
		{"action with ext", "beta_header.action.sh", "beta_header", KindAction, DefaultPriority, false},
		{"filter with priority", "beta_site_title.5.filter.py", "beta_site_title", KindFilter, 5, false},
		{"negative priority", "beta_footer.-1.action", "beta_footer", KindAction, -1, false},
		{"no extension", "beta_singular-post_header.action", "beta_singular-post_header", KindAction, DefaultPriority, false},
		{"invalid kind", "beta_header.badkind.sh", "", "", 0, true},
		{"no dots", "simple", "", "", 0, true},
		{"only kind", ".action.sh", "", "", 0, true},
		{"readme", "README.md", "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := parseHookFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseHookFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if h.Hook != tt.hook {
				t.Errorf("Hook = %q, want %q", h.Hook, tt.hook)
			}
			if h.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", h.Kind, tt.kind)
			}
			if h.Priority != tt.priority {
				t.Errorf("Priority = %d, want %d", h.Priority, tt.priority)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"action", KindAction, false},
		{"filter", KindFilter, false},
		{"preexec", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func writeScript(t *testing.T, dir, name, body string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), mode); err != nil {
		t.Fatal(err)
	}
	return path
}

func hooksDirForTest(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	hooksDir := filepath.Join(dir, "exmachina", "hooks")
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return hooksDir
}

func TestDiscover(t *testing.T) {
	hooksDir := hooksDirForTest(t)

	validPath := writeScript(t, hooksDir, "beta_header.action.sh", "#!/bin/sh\ncat >/dev/null\n", 0o755)
	writeScript(t, hooksDir, "beta_footer.filter.sh", "#!/bin/sh\ncat\n", 0o644) // not executable
	writeScript(t, hooksDir, "README.md", "docs", 0o755)

	hooks, err := Discover()
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if len(hooks) != 1 {
		t.Fatalf("Discover() found %d hooks, want 1", len(hooks))
	}

	h := hooks[0]
	if h.Hook != "beta_header" {
		t.Errorf("Hook = %q, want %q", h.Hook, "beta_header")
	}
	if h.Kind != KindAction {
		t.Errorf("Kind = %q, want %q", h.Kind, KindAction)
	}
	if h.Path != validPath {
		t.Errorf("Path = %q, want %q", h.Path, validPath)
	}
}

func TestDiscoverEmptyDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	hooks, err := Discover()
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if hooks != nil {
		t.Errorf("Discover() = %v, want nil", hooks)
	}
}

func TestRegisterUserHooks(t *testing.T) {
	hooksDir := hooksDirForTest(t)

	writeScript(t, hooksDir, "beta_singular_header.action.sh", "#!/bin/sh\ncat >/dev/null\nprintf '<p>user</p>'\n", 0o755)
	writeScript(t, hooksDir, "beta_title.filter.sh", "#!/bin/sh\ncat >/dev/null\necho '{\"value\":\"from script\"}'\n", 0o755)

	reg := NewRegistry()
	if err := RegisterUserHooks(reg); err != nil {
		t.Fatalf("RegisterUserHooks() error: %v", err)
	}
	if reg.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", reg.Count())
	}
	for _, e := range reg.Entries() {
		if e.Source != "user" {
			t.Errorf("entry %s source = %q, want user", e.Name, e.Source)
		}
	}

	d := New("beta", reg)
	ctx := request.NewContext(context.Background(), request.WithTokens([]string{"singular"}))

	var buf bytes.Buffer
	if _, err := d.DoAtomic(ctx, "header", &buf); err != nil {
		t.Fatalf("DoAtomic() error: %v", err)
	}
	if buf.String() != "<p>user</p>" {
		t.Errorf("action output = %q", buf.String())
	}

	got, err := d.ApplyAtomicString(ctx, "title", "orig")
	if err != nil {
		t.Fatalf("ApplyAtomicString() error: %v", err)
	}
	if got != "from script" {
		t.Errorf("filter result = %q, want %q", got, "from script")
	}
}

func TestExecHandlerFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "beta_title.filter.sh", "#!/bin/sh\necho nope >&2\nexit 3\n", 0o755)

	cb := ExecHandler(path, "beta_title", KindFilter, 0)
	got, err := cb(context.Background(), "keep")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "nope") {
		t.Errorf("error %q should include stderr", err)
	}
	if got != "keep" {
		t.Errorf("value on failure = %v, want keep", got)
	}
}

func TestParseFilterOutput(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want any
	}{
		{"empty keeps value", "", "fallback"},
		{"wrapped", `{"value":"x"}`, "x"},
		{"bare number stays text", "2024\n", "2024"},
		{"bare bool stays text", "true", "true"},
		{"bare null stays text", "null", "null"},
		{"json string is decoded", `"quoted"`, "quoted"},
		{"object without value stays text", `{"title":"x"}`, `{"title":"x"}`},
		{"plain text", "hello world\n", "hello world"},
		{"wrapped null", `{"value":null}`, nil},
		{"wrapped bool", `{"value":true}`, true},
		{"broken json is text", `{"value":`, `{"value":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFilterOutput([]byte(tt.out), "fallback")
			if got != tt.want {
				t.Errorf("ParseFilterOutput(%q) = %#v, want %#v", tt.out, got, tt.want)
			}
		})
	}
}

func TestParseFilterOutputDocuments(t *testing.T) {
	got := ParseFilterOutput([]byte(`{"value":["a","b"]}`), nil)
	if diff := cmp.Diff([]any{"a", "b"}, got); diff != "" {
		t.Errorf("wrapped list mismatch (-want +got):\n%s", diff)
	}

	got = ParseFilterOutput([]byte(`{"title":"x","n":1}`), nil)
	want := map[string]any{"title": "x", "n": float64(1)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unwrapped object mismatch (-want +got):\n%s", diff)
	}

	if got := ParseFilterOutput([]byte("42"), 7); got != float64(42) {
		t.Errorf("number for a non-string value = %#v, want float64(42)", got)
	}

	title, err := asString("beta_site_title", ParseFilterOutput([]byte("2024\n"), "old title"))
	if err != nil {
		t.Fatalf("numeric output for a string hook: %v", err)
	}
	if title != "2024" {
		t.Errorf("title = %q, want %q", title, "2024")
	}
}

func TestNewPayloadDropsWriters(t *testing.T) {
	var buf bytes.Buffer
	p := NewPayload("beta_header", KindAction, nil, []any{&buf, "a", 1})
	if len(p.Args) != 2 {
		t.Errorf("Args = %v, want writer removed", p.Args)
	}
	if p.Timestamp == "" {
		t.Error("Timestamp should not be empty")
	}
	if _, err := p.JSON(); err != nil {
		t.Errorf("JSON() error: %v", err)
	}
}

func TestCreateHookScript(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := CreateHookScript("beta_singular_header", KindAction)
	if err != nil {
		t.Fatalf("CreateHookScript() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat(%q) error: %v", path, err)
	}
	if info.Mode()&0o111 == 0 {
		t.Error("created script is not executable")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "#!") {
		t.Error("script missing shebang")
	}

	if _, err = CreateHookScript("beta_singular_header", KindAction); err == nil {
		t.Error("expected error creating duplicate hook")
	}
}

func TestCreateHookScriptRejectsTraversal(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	for _, name := range []string{"../evil", "a/b", `a\b`, ""} {
		if _, err := CreateHookScript(name, KindFilter); err == nil {
			t.Errorf("CreateHookScript(%q) should fail", name)
		}
	}
}

func TestTestHook(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := CreateHookScript("beta_title", KindFilter)
	if err != nil {
		t.Fatal(err)
	}
	out, err := TestHook(context.Background(), path)
	if err != nil {
		t.Fatalf("TestHook() error: %v", err)
	}
	if out != "sample value" {
		t.Errorf("TestHook() = %q, want %q", out, "sample value")
	}

	if _, err := TestHook(context.Background(), filepath.Join(t.TempDir(), "missing.action.sh")); err == nil {
		t.Error("expected error for missing hook")
	}
}
