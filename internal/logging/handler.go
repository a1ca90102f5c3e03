// Package logging provides the slog handlers and constructors used by strreg.
package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

// RequestIDKey is the attribute the HTTP layer logs request IDs under.
// LineHandler lifts it out of the attribute list into the line prefix.
const RequestIDKey = "requestID"

// timeLayout matches the registry's created_at timestamps.
const timeLayout = "2006-01-02T15:04:05.000Z"

// LineHandler formats records as a single line:
//
//	TIMESTAMP [level] (req=ID) Message | key=value key="two words"
//
// The request prefix is present only when a requestID attribute is set.
type LineHandler struct {
	w      io.Writer
	level  slog.Leveler
	prefix string // group path applied to later attribute keys, with trailing "."
	attrs  []slog.Attr
	reqID  string
	mu     *sync.Mutex
}

// NewLineHandler creates a new line handler.
func NewLineHandler(w io.Writer, opts *slog.HandlerOptions) *LineHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &LineHandler{w: w, level: level, mu: &sync.Mutex{}}
}

// Enabled reports whether the handler handles records at the given level.
func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes the log record.
func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	reqID := h.reqID
	r.Attrs(func(a slog.Attr) bool {
		attrs, reqID = h.collect(attrs, reqID, h.prefix, a)
		return true
	})

	var buf bytes.Buffer
	buf.WriteString(r.Time.UTC().Format(timeLayout))
	buf.WriteString(" [")
	buf.WriteString(strings.ToLower(r.Level.String()))
	buf.WriteString("] ")
	if reqID != "" {
		buf.WriteString("(req=")
		buf.WriteString(reqID)
		buf.WriteString(") ")
	}
	buf.WriteString(r.Message)

	if len(attrs) > 0 {
		buf.WriteString(" |")
		for _, a := range attrs {
			buf.WriteByte(' ')
			buf.WriteString(a.Key)
			buf.WriteByte('=')
			buf.WriteString(quoteIfNeeded(a.Value.String()))
		}
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

// collect resolves a, flattens groups into dotted keys and pulls out the
// request ID. Empty keys and empty groups are dropped.
func (h *LineHandler) collect(attrs []slog.Attr, reqID, prefix string, a slog.Attr) ([]slog.Attr, string) {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			attrs, reqID = h.collect(attrs, reqID, inner, ga)
		}
		return attrs, reqID
	}
	if a.Key == "" {
		return attrs, reqID
	}
	if prefix == "" && a.Key == RequestIDKey {
		return attrs, a.Value.String()
	}
	if a.Value.Kind() == slog.KindTime {
		a.Value = slog.StringValue(a.Value.Time().UTC().Format(timeLayout))
	}
	return append(attrs, slog.Attr{Key: prefix + a.Key, Value: a.Value}), reqID
}

// WithAttrs returns a new handler with the given attributes added.
func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(next.attrs, h.attrs)
	for _, a := range attrs {
		next.attrs, next.reqID = h.collect(next.attrs, next.reqID, h.prefix, a)
	}
	return &next
}

// WithGroup returns a new handler with the given group name added.
func (h *LineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
