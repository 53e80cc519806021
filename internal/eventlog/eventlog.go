// Package eventlog records per-chapter crawl outcomes as structured log
// events.
package eventlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lepinkainen/humanlog"
)

// TimestampFormat is the layout of the timestamp field in JSON output.
const TimestampFormat = "2006-01-02 15:04:05"

// Status is the outcome of a crawl step.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Event describes the outcome of fetching or parsing one resource.
type Event struct {
	BookID       string
	BookTitle    string
	ChapterID    string
	ChapterTitle string
	Status       Status
	Message      string
}

// Logger writes crawl events to an slog.Logger.
type Logger struct {
	log *slog.Logger
}

// New wraps l. A nil l discards events.
func New(l *slog.Logger) *Logger {
	if l == nil {
		l = Discard().log
	}
	return &Logger{log: l}
}

// Discard returns a Logger that drops every event.
func Discard() *Logger {
	return &Logger{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// Record logs ev. Errors are logged at WARN since they never abort a run.
func (l *Logger) Record(ctx context.Context, ev Event) {
	level := slog.LevelInfo
	if ev.Status == StatusError {
		level = slog.LevelWarn
	}
	l.log.LogAttrs(ctx, level, "crawl event",
		slog.String("book_id", ev.BookID),
		slog.String("book_title", ev.BookTitle),
		slog.String("chapter_id", ev.ChapterID),
		slog.String("chapter_title", ev.ChapterTitle),
		slog.String("status", string(ev.Status)),
		slog.String("message", ev.Message),
	)
}

// Slog returns the underlying logger for non-event messages.
func (l *Logger) Slog() *slog.Logger { return l.log }

// NewHandler builds the handler for the given format: "json" or "human".
func NewHandler(w io.Writer, format string, level slog.Level) (slog.Handler, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: renameTime,
		}), nil
	case "human":
		return humanlog.NewHandler(w, &humanlog.Options{Level: level}), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func renameTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.String("timestamp", a.Value.Time().Format(TimestampFormat))
	}
	return a
}
