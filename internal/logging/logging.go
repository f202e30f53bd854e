// Package logging builds the structured application logger.
//
// Lines are one JSON object each, shaped like the access log: a "ts" stamp in
// the configured zone, a lower-case "level" and the event name under "event".
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Attribute keys shared across components.
const (
	KeyComponent = "component"
	KeyOperation = "operation"
	KeyRequestID = "request_id"
	KeyError     = "error_message"
	KeyDuration  = "duration_ms"
)

// New returns a JSON logger writing to w with timestamps in loc.
func New(w io.Writer, loc *time.Location, level slog.Leveler) *slog.Logger {
	if loc == nil {
		loc = time.UTC
	}
	if level == nil {
		level = slog.LevelInfo
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				return slog.String("ts", a.Value.Time().In(loc).Format(time.RFC3339Nano))
			case slog.LevelKey:
				return slog.String("level", strings.ToLower(a.Value.String()))
			case slog.MessageKey:
				return slog.Attr{Key: "event", Value: a.Value}
			}
			return a
		},
	})
	return slog.New(h)
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
