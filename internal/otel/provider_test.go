package otel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(Config{Enabled: false})
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.Nil(t, p.LoggerProvider())
	assert.Equal(t, noop.Meter{}, p.Meter("x"))
	assert.NoError(t, p.Flush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_EnabledWithoutOutputs(t *testing.T) {
	_, err := New(Config{Enabled: true, ServiceName: "ringside"})
	assert.Error(t, err)
}

func TestNew_ExportsMetricsToWriter(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(Config{
		Enabled:        true,
		ServiceName:    "ringside-test",
		BatchTimeout:   time.Second,
		LogWriter:      &buf,
		MetricInterval: time.Hour,
	})
	require.NoError(t, err)
	require.NotNil(t, p.LoggerProvider())

	counter, err := p.Meter("ringside/test").Int64Counter("matches.finished")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	require.NoError(t, p.Flush(context.Background()))
	assert.Contains(t, buf.String(), "matches.finished")
	assert.Contains(t, buf.String(), "ringside-test")

	assert.NoError(t, p.Shutdown(context.Background()))
}
