// Package logs builds the process logger: a text handler on stderr, plus an
// optional JSON file and the systemd journal, fanned out with slog-multi.
package logs

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"

	"github.com/rnwolfe/exmachina/internal/config"
)

// Level parses a configured level name. Unknown names mean info.
func Level(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger for cfg writing text to w. The returned func closes
// the log file, if any.
func New(cfg config.LogConfig, logFile string, w io.Writer) (*slog.Logger, func() error) {
	level := new(slog.LevelVar)
	level.Set(Level(cfg.Level))
	opts := &slog.HandlerOptions{Level: level}

	terminal := slog.NewTextHandler(w, opts)
	handlers := []slog.Handler{terminal}
	closer := func() error { return nil }

	if cfg.FileEnabled() && logFile != "" {
		f, err := openLogFile(logFile)
		if err != nil {
			warn(terminal, "opening log file", err)
		} else {
			handlers = append(handlers, slog.NewJSONHandler(f, opts))
			closer = f.Close
		}
	}

	if cfg.JournalEnabled() {
		journal, err := slogjournal.NewHandler(&slogjournal.Options{
			Level: level,
			ReplaceGroup: func(key string) string {
				return toJournalKey(key)
			},
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = toJournalKey(a.Key)
				return a
			},
		})
		if err != nil {
			warn(terminal, "new systemd journal handler", err)
		} else {
			handlers = append(handlers, journal)
		}
	}

	if len(handlers) == 1 {
		return slog.New(terminal), closer
	}
	return slog.New(slogmulti.Fanout(handlers...)), closer
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

func warn(h slog.Handler, msg string, err error) {
	record := slog.NewRecord(time.Now(), slog.LevelWarn, msg, 0)
	record.Add("error", err)
	_ = h.Handle(context.Background(), record)
}

// toJournalKey maps attribute keys to journal field names: upper case
// letters, digits and underscores.
func toJournalKey(str string) string {
	str = strings.ToUpper(str)
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, str)
}
