package runtime

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger returns a slog.Logger backed by a charmbracelet/log handler.
// level is one of debug, info, warn, error.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
		lvl = parsed
	}
	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "gmailpack",
		Level:           lvl,
	})
	return slog.New(handler), nil
}

// DefaultLogger logs at info level to stderr.
func DefaultLogger() *slog.Logger {
	logger, _ := NewLogger(os.Stderr, "")
	return logger
}
