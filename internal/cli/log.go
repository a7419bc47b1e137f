// Package cli implements the cargo-sources command-line interface.
//
// The root command runs the manifest pipeline: `cargo fetch`, then
// `cargo metadata`, then writes flatpak/cargo-sources.json. The CLI is
// built using cobra and logs through charmbracelet/log.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Logs go to
// stderr; stdout carries only the guidance text and command output.
// Loggers are passed through context.Context.
//
// # Configuration
//
// Settings come from flags, then an optional cargo-sources.toml in the
// project directory, then the CARGO environment variable.
package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Generated manifest (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// commandLog reports every cargo process at debug level.
type commandLog struct {
	logger *log.Logger
}

func (h commandLog) OnCommandStart(ctx context.Context, name string, args []string) {
	h.logger.Debug("starting", "cmd", commandLine(name, args))
}

func (h commandLog) OnCommandComplete(ctx context.Context, name string, args []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("failed", "cmd", commandLine(name, args), "duration", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("finished", "cmd", commandLine(name, args), "duration", d.Round(time.Millisecond))
}

func commandLine(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}
