package cmd

import (
	"strings"
	"testing"
)

func TestAboutCommand(t *testing.T) {
	output := captureStdout(t, func() { runAbout(nil, nil) })

	tests := []struct {
		name     string
		contains string
	}{
		{"has header", "exmachina"},
		{"has tagline", "context-aware hooks"},
		{"has version label", "Version"},
		{"has license label", "License"},
		{"has license", "GPL-2.0-or-later"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(output, tt.contains) {
				t.Errorf("output missing %q\nGot:\n%s", tt.contains, output)
			}
		})
	}
}
