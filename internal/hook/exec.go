package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Payload is the JSON document written to a hook script's stdin.
type Payload struct {
	Hook      string `json:"hook"`
	Kind      Kind   `json:"kind"`
	Value     any    `json:"value,omitempty"`
	Args      []any  `json:"args"`
	Timestamp string `json:"timestamp"`
}

// NewPayload builds the stdin payload. io.Writer arguments are output sinks
// for the script and are left out of the JSON.
func NewPayload(hookName string, kind Kind, value any, args []any) *Payload {
	clean := make([]any, 0, len(args))
	for _, a := range args {
		if _, ok := a.(io.Writer); ok {
			continue
		}
		clean = append(clean, a)
	}
	return &Payload{
		Hook:      hookName,
		Kind:      kind,
		Value:     value,
		Args:      clean,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// JSON serializes the payload.
func (p *Payload) JSON() ([]byte, error) {
	return json.Marshal(p)
}

// ExecHandler creates a Callback that runs an external executable.
//
// Filters read the new value from stdout, either as {"value": ...}, as any
// other JSON document, or as plain text. Empty stdout keeps the value.
// Actions copy stdout to the first io.Writer argument, if any.
func ExecHandler(path, hookName string, kind Kind, timeout time.Duration) Callback {
	if timeout == 0 {
		if kind == KindFilter {
			timeout = DefaultFilterTimeout
		} else {
			timeout = DefaultActionTimeout
		}
	}

	return func(ctx context.Context, value any, args ...any) (any, error) {
		input, err := NewPayload(hookName, kind, value, args).JSON()
		if err != nil {
			return value, fmt.Errorf("serializing payload: %w", err)
		}

		execCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := exec.CommandContext(execCtx, path)
		cmd.Stdin = bytes.NewReader(input)

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
				return value, fmt.Errorf("hook script timed out after %s", timeout)
			}
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return value, fmt.Errorf("hook script failed: %s", msg)
			}
			return value, fmt.Errorf("hook script failed: %w", err)
		}

		if kind == KindAction {
			for _, a := range args {
				if w, ok := a.(io.Writer); ok {
					if _, err := w.Write(stdout.Bytes()); err != nil {
						return value, fmt.Errorf("writing hook output: %w", err)
					}
					break
				}
			}
			return value, nil
		}

		return ParseFilterOutput(stdout.Bytes(), value), nil
	}
}

// ParseFilterOutput decodes a filter script's stdout. Empty output returns
// fallback. A JSON object with a "value" member yields that member. When
// fallback is a string only a JSON string is decoded and any other output
// is plain text, so a script printing 2024 keeps a string hook a string.
// Otherwise any JSON document yields itself and anything else is text.
func ParseFilterOutput(out []byte, fallback any) any {
	trimmed := bytes.TrimSpace(out)
	if len(trimmed) == 0 {
		return fallback
	}
	text := strings.TrimRight(string(out), "\r\n")
	if !gjson.ValidBytes(trimmed) {
		return text
	}

	doc := gjson.ParseBytes(trimmed)
	if v := doc.Get("value"); doc.IsObject() && v.Exists() {
		return v.Value()
	}
	if _, isText := fallback.(string); isText && doc.Type != gjson.String {
		return text
	}
	return doc.Value()
}
