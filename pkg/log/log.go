// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log renders ingestion progress for people at a terminal. Structured
// logs go through zerolog; the console gets colored, aligned lines.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/gitingest/pkg/status"
)

// 📦 RepoOperation describes the repository being ingested
type RepoOperation struct {
	Name   string // Repository reference as given
	Ref    string // Requested revision, empty for the default branch
	Commit string // Resolved commit
	Action string // "ingesting", "listing", "reading"
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	mu        sync.Mutex
	currentOp *RepoOperation
	records   []status.Record
}

// 🏭 New creates a new logger. Structured logs are written to stderr.
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// Zerolog returns the structured logger, for zerolog.Ctx consumers
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zlog
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context, along with its zerolog logger
func NewContext(ctx context.Context, l *Logger) context.Context {
	ctx = l.zlog.WithContext(ctx)
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 LogRecord prints one file outcome
func (l *Logger) LogRecord(ctx context.Context, rec status.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, rec)

	fmt.Fprintln(l.console, status.FormatRecord(rec))

	l.zlog.Debug().
		Str("file", rec.Path).
		Str("status", rec.Status.String()).
		Int64("size", rec.Size).
		Str("reason", rec.Reason).
		Msg("file record")
}

// 📝 StartRepoOperation prints the repository header
func (l *Logger) StartRepoOperation(ctx context.Context, op RepoOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.records = nil

	action := op.Action
	if action == "" {
		action = "ingesting"
	}
	fmt.Fprintf(l.console, "[%s %s]\n", action, color.New(color.FgCyan).Sprint(op.Name))

	ref := op.Ref
	if ref == "" {
		ref = "default branch"
	}
	line := fmt.Sprintf("%s %s %s %s",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Name),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(ref))
	if op.Commit != "" {
		line += " " + color.New(color.Faint).Sprintf("(%s)", op.Commit)
	}
	fmt.Fprintln(l.console, line)

	l.zlog.Info().
		Str("repo", op.Name).
		Str("ref", op.Ref).
		Str("commit", op.Commit).
		Msg("starting repository operation")
}

// 📝 EndRepoOperation prints the summary of the current repository
func (l *Logger) EndRepoOperation(ctx context.Context, summary status.Summary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	fmt.Fprintf(l.console, "%s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Faint).Sprint(status.FormatSummary(summary)))

	l.zlog.Info().
		Str("repo", l.currentOp.Name).
		Int("files", summary.Files).
		Int("records_logged", len(l.records)).
		Int("included", summary.Included).
		Int("skipped", summary.Skipped()).
		Msg("repository operation complete")

	l.currentOp = nil
	l.records = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
