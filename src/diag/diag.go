// Package diag wraps log/slog to emit leveled, structured logging of
// pipeline stage transitions (parse, fold, liveness, codegen, validate).
// It is gated entirely behind the CLI's -vb flag: user-facing compiler
// errors (spec.md §6/§7's single-line "Error: "/"Parse error at line N: "
// diagnostics) never go through this package, so the structured debug
// stream and the machine-parseable error output stay separate.
//
// Modeled on GriffinCanCode-Typthon/typthon-compiler/pkg/logger, narrowed
// to a single text handler (this back end has no production/JSON-log
// deployment mode to speak of) and to the stage names this pipeline
// actually has.
package diag

import (
	"io"
	"log/slog"
)

// Logger is a stage-transition logger. A nil *Logger is valid and every
// method on it is a no-op, so callers that construct one only when -vb is
// set don't need to branch on whether logging is enabled.
type Logger struct {
	slog *slog.Logger
}

// New builds a Logger writing leveled text output to w.
func New(w io.Writer) *Logger {
	return &Logger{slog: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))}
}

// Stage logs the start of a pipeline stage with the given item count.
func (l *Logger) Stage(name string, args ...any) {
	if l == nil {
		return
	}
	l.slog.Info("stage", append([]any{"name", name}, args...)...)
}

// StageDone logs the completion of a pipeline stage.
func (l *Logger) StageDone(name string, args ...any) {
	if l == nil {
		return
	}
	l.slog.Info("stage complete", append([]any{"name", name}, args...)...)
}

// Warn logs a non-fatal diagnostic, such as a validator warning.
func (l *Logger) Warn(msg string, args ...any) {
	if l == nil {
		return
	}
	l.slog.Warn(msg, args...)
}

// Debug logs fine-grained tracing detail below stage-transition level.
func (l *Logger) Debug(msg string, args ...any) {
	if l == nil {
		return
	}
	l.slog.Debug(msg, args...)
}
