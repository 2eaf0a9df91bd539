package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

// Format selects the wire format for log records.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// ParseFormat maps a user-supplied format name to a Format. Unknown
// names fall back to text, matching the handler choice in New.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

// Config describes the logger New builds.
type Config struct {
	// Level is the minimum level emitted.
	Level slog.Level
	// Format selects text or JSON records.
	Format Format
	// Output receives the records; os.Stderr when nil.
	Output io.Writer
}

// New builds a logger from cfg. Text output goes through the colorized
// Handler; JSON output uses slog's stock JSON handler.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(NewHandler(out, opts))
}

// tlogWriter routes handler output through t.Log so records show up
// inside the owning test's output instead of interleaved on stderr.
type tlogWriter struct {
	t *testing.T
}

func (w *tlogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// ForTest builds a debug-level text logger that writes through t.Log.
// Records appear only when the test fails or runs with -v.
func ForTest(t *testing.T) *slog.Logger {
	t.Helper()
	return New(Config{
		Level:  slog.LevelDebug,
		Output: &tlogWriter{t: t},
	})
}
