package control

import (
	"context"
	"log/slog"
	"strings"
)

// LineHandler is a slog.Handler that formats each record as one plain
// text line ("msg key=value ...", no timestamp) and delivers it on a
// channel for a front end to drain. Delivery is non-blocking: when the
// consumer lags behind the buffer, lines are dropped rather than
// stalling the worker.
type LineHandler struct {
	ch     chan<- string
	level  slog.Leveler
	prefix string
	attrs  string
}

// NewLineHandler creates a handler emitting to ch at the given minimum
// level. A nil level defaults to Info.
func NewLineHandler(ch chan<- string, level slog.Leveler) *LineHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &LineHandler{ch: ch, level: level}
}

func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.prefix, a)
		return true
	})

	select {
	case h.ch <- b.String():
	default:
	}
	return nil
}

func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		writeAttr(&b, h.prefix, a)
	}
	cp.attrs = b.String()
	return &cp
}

func (h *LineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	cp := *h
	cp.prefix = h.prefix + name + "."
	return &cp
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	b.WriteString(" ")
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteString("=")
	b.WriteString(a.Value.String())
}
