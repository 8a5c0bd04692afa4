package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringside/simulator/internal/config"
	"github.com/ringside/simulator/internal/storage/gormstore"
	"github.com/ringside/simulator/internal/storage/memory"
	wsstorage "github.com/ringside/simulator/internal/storage/websocket"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDeps() storageDeps {
	return storageDeps{
		Logger:  quietLogger(),
		DBLog:   zerolog.Nop(),
		Session: time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC),
	}
}

func TestHttpToWS(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://localhost:5000", "ws://localhost:5000"},
		{"https://replays.example.com/", "wss://replays.example.com"},
		{"ws://already", "ws://already"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, httpToWS(tt.in), tt.in)
	}
}

func TestSqliteDumpPath(t *testing.T) {
	got := sqliteDumpPath("dumps", testDeps().Session)
	assert.Equal(t, filepath.Join("dumps", "ringside_20260212_213836.db"), got)
}

func TestCreateStorageBackend(t *testing.T) {
	dir := t.TempDir()

	b, err := createStorageBackend(config.StorageConfig{
		Type:   "memory",
		Memory: config.MemoryConfig{OutputDir: dir},
	}, testDeps())
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)

	b, err = createStorageBackend(config.StorageConfig{}, testDeps())
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b, "empty type defaults to memory")

	b, err = createStorageBackend(config.StorageConfig{
		Type:   "sqlite",
		SQLite: config.SQLiteConfig{Dir: filepath.Join(dir, "db")},
	}, testDeps())
	require.NoError(t, err)
	assert.IsType(t, &gormstore.Backend{}, b)

	b, err = createStorageBackend(config.StorageConfig{Type: "websocket"}, testDeps())
	require.NoError(t, err)
	assert.IsType(t, &wsstorage.Backend{}, b)

	_, err = createStorageBackend(config.StorageConfig{Type: "mongo"}, testDeps())
	assert.Error(t, err)
}
