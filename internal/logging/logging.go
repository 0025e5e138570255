// Package logging owns the process-wide structured logger: a compact
// colored console handler on top of log/slog.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	infoColor      = color.New(color.FgHiBlack)
	warnColor      = color.New(color.FgHiYellow)
	errorColor     = color.New(color.FgHiRed)
	componentColor = color.New(color.FgCyan)
)

// Setup initializes the global logger. Silent drops everything; debug
// lowers the level to slog.LevelDebug.
func Setup(debug, silent bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := newConsoleHandler(os.Stdout, &consoleHandlerOptions{
		Silent: silent,
		Level:  level,
	})
	slog.SetDefault(slog.New(handler))
}

// Component returns a logger tagged with a component name, rendered as a
// [COMPONENT] prefix on every line.
func Component(name string) *slog.Logger {
	return slog.Default().With(slog.String("component", name))
}

type consoleHandlerOptions struct {
	Silent bool
	Level  slog.Leveler
}

type consoleHandler struct {
	w     io.Writer
	opts  *consoleHandlerOptions
	attrs []slog.Attr
	mu    *sync.Mutex
}

func newConsoleHandler(w io.Writer, opts *consoleHandlerOptions) *consoleHandler {
	if opts == nil {
		opts = &consoleHandlerOptions{Level: slog.LevelInfo}
	}
	return &consoleHandler{w: w, opts: opts, mu: &sync.Mutex{}}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.opts.Silent {
		return false
	}
	return level >= h.opts.Level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var levelStr string
	var levelColor *color.Color
	switch {
	case r.Level >= slog.LevelError:
		levelStr = "ERROR"
		levelColor = errorColor
	case r.Level >= slog.LevelWarn:
		levelStr = "WARN"
		levelColor = warnColor
	default:
		levelStr = "INFO"
		levelColor = infoColor
	}

	component := ""
	var fields strings.Builder
	collect := func(a slog.Attr) bool {
		if a.Key == "component" {
			component = strings.ToUpper(a.Value.String())
			return true
		}
		fmt.Fprintf(&fields, " %s=%v", a.Key, a.Value)
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	// Output: 15:04:05 [INFO] [COMPONENT] message key=val
	fmt.Fprintf(h.w, "%s %s", time.Now().Format("15:04:05"),
		levelColor.Sprintf("[%s]", levelStr))
	if component != "" {
		fmt.Fprintf(h.w, " %s", componentColor.Sprintf("[%s]", component))
	}
	fmt.Fprintf(h.w, " %s%s\n", r.Message, fields.String())
	return nil
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &consoleHandler{
		w:     h.w,
		opts:  h.opts,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
		mu:    h.mu,
	}
}

func (h *consoleHandler) WithGroup(string) slog.Handler { return h }
