package pbpe

import (
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the diagnostic logging interface accepted by WithLogger. It is
// satisfied directly by *log.Logger from github.com/charmbracelet/log.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
}

// NewLogger returns a charmbracelet/log logger preconfigured for Trainer
// diagnostics, in the style of bastiangx-wordserve's internal/logger.New.
// Training logs at Debug (per-step picky decisions) and Info (phase
// boundaries) are opt-in: pass the result to WithLogger, or pass nil to
// disable diagnostic logging entirely.
func NewLogger(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          prefix,
		ReportTimestamp: true,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// nopLogger discards everything; used when no logger is configured so the
// Trainer never needs to nil-check before logging.
type nopLogger struct{}

func (nopLogger) Debug(interface{}, ...interface{}) {}
func (nopLogger) Info(interface{}, ...interface{})  {}
