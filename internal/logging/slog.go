package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// swapped by tests
var (
	osStdout io.Writer = os.Stdout
	osPipe             = os.Pipe
)

// SlogManager manages slog-based logging with optional OTel and Graylog output.
type SlogManager struct {
	logger *slog.Logger

	// OTel provider for flushing
	logProvider *sdklog.LoggerProvider

	// extra handlers added to every subsequent Setup, e.g. GELF
	extra []slog.Handler

	// Dynamic match context added to every record. Nil callbacks are skipped.
	GetMatchID func() string
	GetPhase   func() string
	GetRound   func() int
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func handlerOptions(level string) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: parseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}
}

// AddHandler registers a handler that every following Setup includes.
func (m *SlogManager) AddHandler(h slog.Handler) {
	if h != nil {
		m.extra = append(m.extra, h)
	}
}

// Setup initializes the logging system. Records go to file when one is
// given, to stdout otherwise, and to OTel when provider is not nil.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider) {
	opts := handlerOptions(level)
	m.logProvider = provider

	var handlers []slog.Handler
	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, opts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(osStdout, opts))
	}

	if provider != nil {
		handlers = append(handlers, otelslog.NewHandler("ringside", otelslog.WithLoggerProvider(provider)))
	}
	handlers = append(handlers, m.extra...)

	m.logger = slog.New(NewContextHandler(NewMultiHandler(handlers...), m.matchContext))
	m.logger.Info("Logging initialized", "level", level)
}

func (m *SlogManager) matchContext() []slog.Attr {
	var attrs []slog.Attr
	if m.GetMatchID != nil {
		if id := m.GetMatchID(); id != "" {
			attrs = append(attrs, slog.String("matchId", id))
		}
	}
	if m.GetPhase != nil {
		attrs = append(attrs, slog.String("phase", m.GetPhase()))
	}
	if m.GetRound != nil {
		attrs = append(attrs, slog.Int("round", m.GetRound()))
	}
	return attrs
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		// Return a default logger if Setup hasn't been called
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}
