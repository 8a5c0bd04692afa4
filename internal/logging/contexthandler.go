package logging

import (
	"context"
	"log/slog"
)

// ContextProvider returns the attributes of whatever match is running when a
// record is written. SlogManager supplies matchId, phase and round.
type ContextProvider func() []slog.Attr

// ContextHandler stamps every record with the live match context before it
// reaches the wrapped handler. The provider is called once per record, so
// the phase and round are those at write time, not at logger creation.
type ContextHandler struct {
	next    slog.Handler
	current ContextProvider
}

func NewContextHandler(next slog.Handler, current ContextProvider) *ContextHandler {
	return &ContextHandler{next: next, current: current}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.current != nil {
		if attrs := h.current(); len(attrs) > 0 {
			r.AddAttrs(attrs...)
		}
	}
	return h.next.Handle(ctx, r)
}

// WithAttrs and WithGroup keep the provider, so loggers derived with
// logger.With("component", ...) still carry the match context.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewContextHandler(h.next.WithAttrs(attrs), h.current)
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return NewContextHandler(h.next.WithGroup(name), h.current)
}
