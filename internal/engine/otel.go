package engine

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// counters registers engine.ticks and engine.hits on the global meter
// provider. Hits carry kind and blocked attributes.
func counters() (ticks, hits metric.Int64Counter, err error) {
	m := otel.Meter("github.com/ringside/simulator/internal/engine")
	ticks, err = m.Int64Counter("engine.ticks",
		metric.WithDescription("Simulation ticks advanced"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create ticks counter: %w", err)
	}
	hits, err = m.Int64Counter("engine.hits",
		metric.WithDescription("Attacks that connected"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create hits counter: %w", err)
	}
	return ticks, hits, nil
}
