package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var levelColors = map[slog.Level]*color.Color{
	slog.LevelDebug: color.New(color.FgCyan),
	slog.LevelInfo:  color.New(color.FgGreen),
	slog.LevelWarn:  color.New(color.FgYellow),
	slog.LevelError: color.New(color.FgHiRed),
}

// ColorHandler is a slog.Handler that writes human-readable, colorized
// lines. Meant for local development; production should use the JSON
// handler.
type ColorHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	level slog.Leveler
	attrs []slog.Attr
	group string
}

// NewColorHandler returns a ColorHandler writing to w at the given minimum
// level. A nil level defaults to slog.LevelInfo.
func NewColorHandler(w io.Writer, level slog.Leveler) *ColorHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &ColorHandler{mu: &sync.Mutex{}, w: w, level: level}
}

func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	b.WriteString(r.Time.Format("2006/01/02 15:04:05"))
	b.WriteByte(' ')

	c, ok := levelColors[r.Level]
	if !ok {
		c = levelColors[slog.LevelInfo]
	}
	b.WriteString(c.Sprintf("[%s]", r.Level.String()))
	b.WriteByte(' ')
	b.WriteString(r.Message)

	appendAttr := func(a slog.Attr) {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		b.WriteString(fmt.Sprintf(" %s=%v", key, a.Value.Resolve()))
	}
	for _, a := range h.attrs {
		appendAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &h2
}

func (h *ColorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	if h.group != "" {
		name = h.group + "." + name
	}
	h2.group = name
	return &h2
}
