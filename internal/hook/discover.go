package hook

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rnwolfe/exmachina/internal/config"
)

// UserHook represents a hook script discovered from the hooks directory.
type UserHook struct {
	Path     string
	Hook     string // expanded hook name, e.g. "beta_singular-post_header"
	Kind     Kind
	Priority int
	Name     string // file name
}

// HooksDir returns the user hooks directory path.
func HooksDir() string {
	return config.GetPaths().HooksDir
}

// Discover scans the user hooks directory and returns all valid hook scripts.
// Scripts follow the naming convention: <hook-name>[.<priority>].<kind>[.<ext>]
// Examples: beta_header.action.sh, beta_site_title.5.filter.py
func Discover() ([]UserHook, error) {
	dir := HooksDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading hooks dir: %w", err)
	}

	var hooks []UserHook
	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		name := e.Name()
		h, err := parseHookFilename(name)
		if err != nil {
			continue // skip files that don't match the naming convention
		}

		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.Mode()&0o111 == 0 {
			continue // not executable
		}

		h.Path = path
		hooks = append(hooks, h)
	}

	return hooks, nil
}

// parseHookFilename parses a hook filename into its components, right to left.
//
//	beta_header.action.sh          → hook="beta_header", kind=action, priority=10
//	beta_site_title.5.filter.py    → hook="beta_site_title", kind=filter, priority=5
//	beta_footer.-1.action          → hook="beta_footer", kind=action, priority=-1
func parseHookFilename(name string) (UserHook, error) {
	parts := strings.Split(name, ".")
	if len(parts) < 2 {
		return UserHook{}, fmt.Errorf("invalid hook filename: %s", name)
	}

	// Drop a trailing extension unless the last part is already the kind.
	if _, err := parseKind(parts[len(parts)-1]); err != nil {
		parts = parts[:len(parts)-1]
	}
	if len(parts) < 2 {
		return UserHook{}, fmt.Errorf("invalid hook filename: %s", name)
	}

	kind, err := parseKind(parts[len(parts)-1])
	if err != nil {
		return UserHook{}, fmt.Errorf("invalid kind in %s: %w", name, err)
	}
	parts = parts[:len(parts)-1]

	priority := DefaultPriority
	if len(parts) > 1 {
		if p, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			priority = p
			parts = parts[:len(parts)-1]
		}
	}

	hookName := strings.Join(parts, ".")
	if hookName == "" {
		return UserHook{}, fmt.Errorf("empty hook name in %s", name)
	}

	return UserHook{
		Hook:     hookName,
		Kind:     kind,
		Priority: priority,
		Name:     name,
	}, nil
}

// ParseKind converts a kind string to a Kind constant. Exported for CLI use.
func ParseKind(s string) (Kind, error) {
	return parseKind(s)
}

func parseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindAction, KindFilter:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown hook kind: %s", s)
	}
}

// RegisterUserHooks discovers and registers all user hook scripts.
func RegisterUserHooks(reg *Registry) error {
	hooks, err := Discover()
	if err != nil {
		return err
	}

	for _, h := range hooks {
		timeout := DefaultActionTimeout
		if h.Kind == KindFilter {
			timeout = DefaultFilterTimeout
		}

		if _, err := reg.Add(h.Hook, h.Kind, ExecHandler(h.Path, h.Hook, h.Kind, timeout),
			WithPriority(h.Priority),
			WithName(h.Name),
			WithSource("user"),
		); err != nil {
			return fmt.Errorf("registering hook %s: %w", h.Name, err)
		}
	}

	return nil
}

// CreateHookScript generates a starter hook script for an expanded hook name.
func CreateHookScript(hookName string, kind Kind) (string, error) {
	if strings.ContainsAny(hookName, "/\\") {
		return "", fmt.Errorf("hook name %q must not contain path separators", hookName)
	}
	if strings.Contains(hookName, "..") {
		return "", fmt.Errorf("hook name %q must not contain path traversal", hookName)
	}
	if hookName == "" {
		return "", ErrEmptyHookName
	}

	dir := HooksDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating hooks dir: %w", err)
	}

	filename := fmt.Sprintf("%s.%s.sh", hookName, kind)
	path := filepath.Join(dir, filename)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving hooks dir: %w", err)
	}
	if !strings.HasPrefix(absPath, absDir+string(filepath.Separator)) {
		return "", fmt.Errorf("hook path escapes hooks directory")
	}

	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("hook already exists: %s", path)
	}

	script := fmt.Sprintf(`#!/bin/bash
# exmachina hook: %s (%s)
# Created: %s
#
# This script receives a JSON payload on stdin:
# {
#   "hook": "%s",
#   "kind": "%s",
#   "value": "<current value, filters only>",
#   "args": [],
#   "timestamp": "2026-01-15T10:30:00Z"
# }

PAYLOAD=$(cat)
`, hookName, kind, time.Now().Format("2006-01-02"), hookName, kind)

	if kind == KindFilter {
		script += `
# Filters: print the new value. Either {"value": ...}, any JSON, or plain text.
# Printing nothing keeps the value unchanged.
echo "$PAYLOAD" | sed -n 's/.*"value":\("[^"]*"\).*/{"value":\1}/p'
`
	} else {
		script += fmt.Sprintf(`
# Actions: anything printed to stdout is written into the page.
# echo "<!-- %s fired -->"
`, hookName)
	}

	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		return "", fmt.Errorf("writing hook script: %w", err)
	}

	return path, nil
}

// TestHook performs a dry-run of a hook script with sample input.
func TestHook(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("hook not found: %s", path)
	}
	if info.Mode()&0o111 == 0 {
		return "", fmt.Errorf("hook not executable: %s (run: chmod +x %s)", path, path)
	}

	h, err := parseHookFilename(filepath.Base(path))
	if err != nil {
		return "", err
	}

	if h.Kind == KindAction {
		var out strings.Builder
		handler := ExecHandler(path, h.Hook, h.Kind, DefaultActionTimeout)
		if _, err := handler(ctx, nil, &out, "sample"); err != nil {
			return "", fmt.Errorf("hook execution failed: %w", err)
		}
		return out.String(), nil
	}

	handler := ExecHandler(path, h.Hook, h.Kind, DefaultFilterTimeout)
	result, err := handler(ctx, "sample value", "sample")
	if err != nil {
		return "", fmt.Errorf("hook execution failed: %w", err)
	}
	return fmt.Sprintf("%v", result), nil
}
