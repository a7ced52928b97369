package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/thoreinstein/specval/internal/errors"
)

// Format is the encoding of console log output.
type Format string

const (
	// FormatText is the colour-aware text encoding of [Handler].
	FormatText Format = "text"
	// FormatJSON is slog's JSON encoding.
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown log format")

// ParseFormat parses a log format name. The empty string means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%q", s)
	}
}

// Options configures New.
type Options struct {
	// Level is the minimum level written to every destination.
	Level slog.Level
	// Format is the console encoding.
	Format Format
	// Console receives console output; os.Stderr when nil.
	Console io.Writer
	// File, when set, also receives every record as JSON.
	File io.Writer
}

// New builds a logger writing to the console and, optionally, a JSON file.
func New(opts Options) *slog.Logger {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: opts.Level, ReplaceAttr: replaceLevel}

	var h slog.Handler
	if opts.Format == FormatJSON {
		h = slog.NewJSONHandler(console, hopts)
	} else {
		h = NewHandler(console, hopts)
	}
	if opts.File != nil {
		h = fanout{h, slog.NewJSONHandler(opts.File, hopts)}
	}
	return slog.New(h)
}

// replaceLevel names LevelTrace in the JSON encodings.
func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		if l, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(levelName(l))
		}
	}
	return a
}

// NewDiscard returns a logger that drops everything.
func NewDiscard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// ForTest returns a Debug-level text logger writing through t.Log, so
// output shows only for failing or verbose tests.
func ForTest(t testing.TB) *slog.Logger {
	t.Helper()
	return New(Options{Level: slog.LevelDebug, Console: testWriter{t: t}})
}
