package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

var levelColors = strings.NewReplacer(
	"level=DEBUG", colorCyan+"level=DEBUG"+colorReset,
	"level=INFO", colorGreen+"level=INFO"+colorReset,
	"level=WARN", colorYellow+"level=WARN"+colorReset,
	"level=ERROR", colorRed+"level=ERROR"+colorReset,
)

// coloredHandler is a slog.TextHandler whose level markers are painted when
// the output is a terminal.
type coloredHandler struct {
	handler slog.Handler
}

func newColoredHandler(w io.Writer, opts *slog.HandlerOptions) *coloredHandler {
	return &coloredHandler{
		handler: slog.NewTextHandler(&colorWriter{writer: w, enabled: isTerminal(w)}, opts),
	}
}

func (h *coloredHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *coloredHandler) Handle(ctx context.Context, record slog.Record) error {
	return h.handler.Handle(ctx, record)
}

func (h *coloredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &coloredHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *coloredHandler) WithGroup(name string) slog.Handler {
	return &coloredHandler{handler: h.handler.WithGroup(name)}
}

type colorWriter struct {
	writer  io.Writer
	enabled bool
}

func (cw *colorWriter) Write(p []byte) (int, error) {
	if !cw.enabled {
		return cw.writer.Write(p)
	}
	if _, err := io.WriteString(cw.writer, levelColors.Replace(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// New builds the process logger on stderr, leaving stdout to command output.
// Local and dev environments get coloured text; everything else gets JSON.
func New(appName, level, environment string) *slog.Logger {
	return NewWithWriter(os.Stderr, appName, level, environment)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, appName, level, environment string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case "local", "dev", "development":
		handler = newColoredHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With("app", appName)
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
