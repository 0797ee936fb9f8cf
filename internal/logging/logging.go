// Package logging adapts log/slog to the logger the tag client expects.
package logging

import (
	"context"
	"log/slog"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

// Logger writes client log lines through slog. The detail string, when
// set, goes into a "detail" attribute.
type Logger struct {
	log   *slog.Logger
	debug bool
}

// New wraps l. Debug lines are dropped unless debug is true.
func New(l *slog.Logger, debug bool) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{log: l.With("component", "autotag"), debug: debug}
}

// Setup installs the ancli slog handler as default and returns a Logger
// honoring the DEBUG environment variable.
func Setup() *Logger {
	ancli.SetupSlog()
	return New(slog.Default(), misc.Truthy(os.Getenv("DEBUG")))
}

func (l *Logger) emit(level slog.Level, msg, detail string) {
	if detail == "" {
		l.log.Log(context.Background(), level, msg)
		return
	}
	l.log.Log(context.Background(), level, msg, "detail", detail)
}

// Debug implements ai.Logger.
func (l *Logger) Debug(msg, detail string) {
	if !l.debug {
		return
	}
	l.emit(slog.LevelDebug, msg, detail)
}

// Warn implements ai.Logger.
func (l *Logger) Warn(msg, detail string) {
	l.emit(slog.LevelWarn, msg, detail)
}

// Error implements ai.Logger.
func (l *Logger) Error(msg, detail string) {
	l.emit(slog.LevelError, msg, detail)
}
