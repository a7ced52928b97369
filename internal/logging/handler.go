package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// subject is what a record is about: a document checked against a schema.
type subject struct {
	schema, version, document string
}

// set records a subject attribute and reports whether key was one.
func (s *subject) set(key string, v slog.Value) bool {
	switch key {
	case KeySchema:
		s.schema = v.String()
	case KeyVersion:
		s.version = v.String()
	case KeyDocument:
		s.document = v.String()
	default:
		return false
	}
	return true
}

// tag renders "<document> [<schema>@<version>]", omitting empty parts.
func (s subject) tag() string {
	var parts []string
	if s.document != "" {
		parts = append(parts, s.document)
	}
	switch {
	case s.schema != "" && s.version != "":
		parts = append(parts, "["+s.schema+"@"+s.version+"]")
	case s.schema != "":
		parts = append(parts, "["+s.schema+"]")
	case s.version != "":
		parts = append(parts, "[@"+s.version+"]")
	}
	return strings.Join(parts, " ")
}

type field struct {
	key   string
	value slog.Value
}

// Handler writes one line per record for a terminal:
//
//	3:04PM WARN  model.yaml [model.json@0.9.0] message key=value
//
// Top-level schema, version and document attributes form the subject
// prefix; other attributes follow the message, with group names joined
// by dots. Colour is used only when the writer is a terminal.
type Handler struct {
	opts    slog.HandlerOptions
	out     io.Writer
	mu      *sync.Mutex
	subject subject
	fields  []field
	prefix  string

	colors *palette
}

type palette struct {
	time, trace, debug, info, warn, err, key, subject *color.Color
}

// NewHandler returns a Handler writing to out.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	h := &Handler{opts: *opts, out: out, mu: &sync.Mutex{}}
	if colorEnabled(out) {
		h.colors = &palette{
			time:    color.New(color.FgHiBlack),
			trace:   color.New(color.FgHiBlack),
			debug:   color.New(color.FgMagenta),
			info:    color.New(color.FgGreen),
			warn:    color.New(color.FgYellow),
			err:     color.New(color.FgRed, color.Bold),
			key:     color.New(color.FgCyan),
			subject: color.New(color.FgBlue),
		}
	}
	return h
}

// Enabled reports whether level meets the handler's minimum (Info by default).
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle writes r as a single line.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	subj := h.subject
	fields := slices.Clip(h.fields)
	r.Attrs(func(a slog.Attr) bool {
		fields = h.collect(fields, &subj, h.prefix, a)
		return true
	})

	var sb strings.Builder
	if !r.Time.IsZero() {
		sb.WriteString(h.paint(h.timeColor(), r.Time.Format(time.Kitchen)))
		sb.WriteByte(' ')
	}
	level := levelName(r.Level)
	pad := strings.Repeat(" ", max(0, 5-len(level)))
	sb.WriteString(h.paint(h.levelColor(r.Level), level) + pad + " ")
	if tag := subj.tag(); tag != "" {
		sb.WriteString(h.paint(h.subjectColor(), tag) + " ")
	}
	sb.WriteString(r.Message)
	for _, f := range fields {
		fmt.Fprintf(&sb, " %s=%s", h.paint(h.keyColor(), f.key), formatValue(f.value))
	}
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, sb.String())
	return err
}

// collect appends a to fields, or to subj when it is a top-level subject
// attribute. Groups are flattened with dotted keys.
func (h *Handler) collect(fields []field, subj *subject, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return fields
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			fields = h.collect(fields, subj, p, ga)
		}
		return fields
	}
	if prefix == "" && subj.set(a.Key, a.Value) {
		return fields
	}
	return append(fields, field{key: prefix + a.Key, value: a.Value})
}

func formatValue(v slog.Value) string {
	s := v.String()
	if v.Kind() == slog.KindString && (s == "" || strings.ContainsAny(s, " \t\n\"=")) {
		return strconv.Quote(s)
	}
	return s
}

// WithAttrs returns a Handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := *h
	n.fields = append([]field(nil), h.fields...)
	for _, a := range attrs {
		n.fields = n.collect(n.fields, &n.subject, h.prefix, a)
	}
	return &n
}

// WithGroup returns a Handler that prefixes later keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	n := *h
	n.prefix = h.prefix + name + "."
	return &n
}

func (h *Handler) paint(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

func (h *Handler) levelColor(l slog.Level) *color.Color {
	if h.colors == nil {
		return nil
	}
	switch {
	case l >= slog.LevelError:
		return h.colors.err
	case l >= slog.LevelWarn:
		return h.colors.warn
	case l >= slog.LevelInfo:
		return h.colors.info
	case l > LevelTrace:
		return h.colors.debug
	default:
		return h.colors.trace
	}
}

func (h *Handler) timeColor() *color.Color {
	if h.colors == nil {
		return nil
	}
	return h.colors.time
}

func (h *Handler) keyColor() *color.Color {
	if h.colors == nil {
		return nil
	}
	return h.colors.key
}

func (h *Handler) subjectColor() *color.Color {
	if h.colors == nil {
		return nil
	}
	return h.colors.subject
}
