package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

const timeFormat = "15:04:05.000"

// Handler prints records on one line: time, level, message, attributes.
type Handler struct {
	mu     *sync.Mutex
	l      *log.Logger
	level  slog.Leveler
	colour bool
	attrs  []slog.Attr
	group  string
}

// NewHandler builds a Handler writing to out.
func NewHandler(out io.Writer, level slog.Leveler, colour bool) *Handler {
	return &Handler{
		mu:     &sync.Mutex{},
		l:      log.New(out, "", 0),
		level:  level,
		colour: colour,
	}
}

// New returns a logger using Handler.
func New(out io.Writer, level slog.Leveler, colour bool) *slog.Logger {
	return slog.New(NewHandler(out, level, colour))
}

// ParseLevel maps "debug", "info", "warn" and "error"; anything else is info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"
	if h.colour {
		switch {
		case r.Level >= slog.LevelError:
			level = color.RedString(level)
		case r.Level >= slog.LevelWarn:
			level = color.YellowString(level)
		case r.Level >= slog.LevelInfo:
			level = color.HiBlueString(level)
		default:
			level = color.MagentaString(level)
		}
	}

	var b strings.Builder
	for _, a := range h.attrs {
		h.writeAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		a.Key = h.qualify(a.Key)
		h.writeAttr(&b, a)
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.l.Println(r.Time.Format(timeFormat), level, r.Message, strings.TrimSpace(b.String()))
	return nil
}

func (h *Handler) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

func (h *Handler) writeAttr(b *strings.Builder, a slog.Attr) {
	key := a.Key
	if h.colour {
		key = color.GreenString(key)
	}
	fmt.Fprintf(b, "%s=%v ", key, a.Value.Any())
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		a.Key = h.qualify(a.Key)
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}

// OrDefault returns l, or slog.Default() when l is nil.
func OrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
