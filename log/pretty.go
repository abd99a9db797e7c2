package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	stringStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	numberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	trueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	falseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	otherStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
)

func levelStyle(level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return falseStyle.Bold(true)
	case level >= slog.LevelWarn:
		return numberStyle.Bold(true)
	case level >= slog.LevelInfo:
		return trueStyle
	default:
		return timeStyle
	}
}

// prettyHandler holds the state shared by both pretty handlers: options,
// pre-bound attributes, and the open group prefix.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	prefix string
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

// header returns the time, level, source, and message attributes of r after
// ReplaceAttr, in output order.
func (h *prettyHandler) header(r slog.Record) []slog.Attr {
	attrs := make([]slog.Attr, 0, 4)

	if !r.Time.IsZero() {
		attrs = append(attrs, slog.Time(slog.TimeKey, r.Time))
	}

	attrs = append(attrs, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			attrs = append(attrs, slog.String(
				slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line),
			))
		}
	}

	attrs = append(attrs, slog.String(slog.MessageKey, r.Message))

	if h.opts.ReplaceAttr == nil {
		return attrs
	}

	out := attrs[:0]

	for _, a := range attrs {
		level, isLevel := a.Value.Any().(slog.Level)

		a = h.opts.ReplaceAttr(nil, a)
		if a.Key == "" {
			continue
		}

		// Keep the level typed so it can be styled by severity.
		if isLevel && a.Key == slog.LevelKey {
			a = slog.Attr{Key: a.Key, Value: slog.StringValue(
				levelStyle(level).Render(a.Value.String()),
			)}
		}

		out = append(out, a)
	}

	return out
}

// body returns the pre-bound attributes followed by the record's own, each
// key qualified by the open group prefix.
func (h *prettyHandler) body(r slog.Record) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		a.Key = h.prefix + a.Key
		attrs = append(attrs, a)

		return true
	})

	return attrs
}

func (h *prettyHandler) write(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) withAttrs(attrs []slog.Attr) *prettyHandler {
	c := *h
	c.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	c.attrs = append(c.attrs, h.attrs...)

	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		c.attrs = append(c.attrs, a)
	}

	return &c
}

func (h *prettyHandler) withGroup(name string) *prettyHandler {
	c := *h
	if name != "" {
		c.prefix = h.prefix + name + "."
	}

	return &c
}

func styleValue(v slog.Value) string {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindString:
		return stringStyle.Render(v.String())

	case slog.KindInt64:
		return numberStyle.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return numberStyle.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return numberStyle.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return trueStyle.Render("true")
		}

		return falseStyle.Render("false")

	case slog.KindDuration:
		return otherStyle.Render(v.Duration().String())

	case slog.KindTime:
		return timeStyle.Render(v.Time().String())

	case slog.KindGroup:
		parts := make([]string, 0, len(v.Group()))
		for _, a := range v.Group() {
			parts = append(parts, keyStyle.Render(a.Key)+"="+styleValue(a.Value))
		}

		return "{" + strings.Join(parts, " ") + "}"

	default:
		if v.Any() == nil {
			return keyStyle.Render("null")
		}

		return otherStyle.Render(fmt.Sprint(v.Any()))
	}
}

// prettyTextHandler writes one colorized key=value line per record.
type prettyTextHandler struct{ *prettyHandler }

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	return prettyTextHandler{&prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w}}
}

func (h prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	for _, a := range append(h.header(r), h.body(r)...) {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(keyStyle.Render(a.Key))
		buf.WriteByte('=')
		buf.WriteString(styleValue(a.Value))
	}

	return h.write(&buf)
}

func (h prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return prettyTextHandler{h.withAttrs(attrs)}
}

func (h prettyTextHandler) WithGroup(name string) slog.Handler {
	return prettyTextHandler{h.withGroup(name)}
}

// prettyJSONHandler writes one indented, colorized JSON-like object per
// record. Values are not quoted; the output is meant for terminals.
type prettyJSONHandler struct{ *prettyHandler }

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	return prettyJSONHandler{&prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w}}
}

func (h prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	buf.WriteString("{")

	for i, a := range append(h.header(r), h.body(r)...) {
		if i > 0 {
			buf.WriteByte(',')
		}

		buf.WriteString("\n  ")
		buf.WriteString(keyStyle.Render(a.Key))
		buf.WriteString(": ")
		buf.WriteString(styleValue(a.Value))
	}

	buf.WriteString("\n}")

	return h.write(&buf)
}

func (h prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return prettyJSONHandler{h.withAttrs(attrs)}
}

func (h prettyJSONHandler) WithGroup(name string) slog.Handler {
	return prettyJSONHandler{h.withGroup(name)}
}
