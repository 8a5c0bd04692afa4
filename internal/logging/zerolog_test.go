package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestZerolog_CarriesMatchContext(t *testing.T) {
	m := NewSlogManager()
	m.GetMatchID = func() string { return "m-1" }
	m.GetRound = func() int { return 2 }

	var buf bytes.Buffer
	zl := m.Zerolog(&buf, "debug")
	zl.Info().Str("bucket", "match_data").Msg("writer ready")

	out := buf.String()
	assert.Contains(t, out, "writer ready")
	assert.Contains(t, out, "bucket=match_data")
	assert.Contains(t, out, "matchId=m-1")
	assert.Contains(t, out, "round=2")
}

func TestZerolog_Level(t *testing.T) {
	var buf bytes.Buffer
	zl := NewSlogManager().Zerolog(&buf, "warn")
	zl.Info().Msg("quiet")
	assert.Empty(t, buf.String())

	assert.Equal(t, zerolog.TraceLevel, zerologLevel("trace"))
	assert.Equal(t, zerolog.InfoLevel, zerologLevel("bogus"))
}
