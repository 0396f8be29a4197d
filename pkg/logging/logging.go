// Package logging wraps log/slog with a handler tailored to the probe's
// component tags (dp, ap, coresight, efm32) so CLI output and diagnostic
// trace can be routed to different sinks without interfering with each
// other.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Handler formats records as "time level component: message attrs..." and
// can duplicate warn-and-above records to stderr even when the primary
// sink is a file, so a long discovery run still surfaces problems live.
type Handler struct {
	out   io.Writer
	inner slog.Handler
	mu    *sync.Mutex
	debug bool
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{out: h.out, inner: h.inner.WithAttrs(attrs), mu: h.mu, debug: h.debug}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{out: h.out, inner: h.inner.WithGroup(name), mu: h.mu, debug: h.debug}
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	parts := []string{r.Time.Format("2006/01/02 15:04:05"), r.Level.String() + ":", r.Message}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, a.Key+"="+a.Value.String())
		return true
	})
	line := strings.Join(parts, " ") + "\n"

	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.out != nil {
		_, err = h.out.Write([]byte(line))
	}
	if h.debug || r.Level >= slog.LevelWarn {
		_, werr := os.Stderr.Write([]byte(line))
		if err == nil {
			err = werr
		}
	}
	return err
}

// New builds a *slog.Logger writing to out. debug additionally duplicates
// every record (not just warnings and above) to stderr, used when the CLI
// is run with a verbose/trace flag.
func New(out io.Writer, level slog.Level, debug bool) *slog.Logger {
	h := &Handler{
		out:   out,
		inner: slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}),
		mu:    &sync.Mutex{},
		debug: debug,
	}
	return slog.New(h)
}

// Component returns a logger pre-tagged with the owning subsystem, so log
// lines from the DP manager, AP manager, discovery engine, and EFM32
// driver are distinguishable without repeating the tag at every call site.
func Component(l *slog.Logger, name string) *slog.Logger {
	return l.With(slog.String("component", name))
}
