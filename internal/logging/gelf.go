package logging

import (
	"fmt"
	"log/slog"

	"github.com/Graylog2/go-gelf/gelf"
)

// NewGraylogHandler returns a JSON slog handler that ships records to a
// Graylog GELF UDP input, and the writer so the caller can close it.
func NewGraylogHandler(address, level string) (slog.Handler, *gelf.Writer, error) {
	w, err := gelf.NewWriter(address)
	if err != nil {
		return nil, nil, fmt.Errorf("connect graylog at %s: %w", address, err)
	}
	w.Facility = "ringside"
	return slog.NewJSONHandler(w, handlerOptions(level)), w, nil
}
