package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func zerologLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Zerolog builds the console-format zerolog logger used by the database and
// influx managers. It writes uncoloured lines to w and carries the same
// match context as the slog logger.
func (m *SlogManager) Zerolog(w io.Writer, level string) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	return zerolog.New(out).Level(zerologLevel(level)).With().Timestamp().Logger().
		Hook(zerolog.HookFunc(func(e *zerolog.Event, _ zerolog.Level, _ string) {
			for _, a := range m.matchContext() {
				e.Interface(a.Key, a.Value.Any())
			}
		}))
}
