package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ringside/simulator/internal/config"
	"github.com/ringside/simulator/internal/database"
	"github.com/ringside/simulator/internal/storage"
	"github.com/ringside/simulator/internal/storage/gormstore"
	"github.com/ringside/simulator/internal/storage/memory"
	wsstorage "github.com/ringside/simulator/internal/storage/websocket"
)

type storageDeps struct {
	Logger  *slog.Logger
	DBLog   zerolog.Logger
	Session time.Time
}

func createStorageBackend(cfg config.StorageConfig, deps storageDeps) (storage.Backend, error) {
	switch cfg.Type {
	case "postgres":
		mgr := database.NewManager(deps.DBLog)
		if err := mgr.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect database: %w", err)
		}
		gcfg := gormstore.DefaultConfig()
		if mgr.ShouldSaveLocal {
			// postgres was unreachable; keep the in-memory fallback on disk
			gcfg.DumpPath = sqliteDumpPath(cfg.SQLite.Dir, deps.Session)
			gcfg.DumpInterval = cfg.SQLite.DumpInterval
		}
		deps.Logger.Info("Postgres storage backend initialized", "local", mgr.ShouldSaveLocal)
		return gormstore.New(mgr.DB, gcfg, deps.Logger), nil

	case "sqlite":
		if err := os.MkdirAll(cfg.SQLite.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite dir: %w", err)
		}
		if old, err := database.GetBackupDBPaths(cfg.SQLite.Dir); err == nil && len(old) > 0 {
			deps.Logger.Info("Found earlier database dumps", "dir", cfg.SQLite.Dir, "count", len(old))
		}
		db, err := database.GetSqliteDB("")
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		gcfg := gormstore.DefaultConfig()
		gcfg.DumpPath = sqliteDumpPath(cfg.SQLite.Dir, deps.Session)
		gcfg.DumpInterval = cfg.SQLite.DumpInterval
		deps.Logger.Info("SQLite storage backend initialized", "dumpPath", gcfg.DumpPath)
		return gormstore.New(db, gcfg, deps.Logger), nil

	case "websocket":
		wsURL := httpToWS(config.GetString("api.serverUrl")) + "/api"
		deps.Logger.Info("WebSocket storage backend initialized", "url", wsURL)
		return wsstorage.New(wsstorage.Config{
			URL:    wsURL,
			Secret: config.GetString("api.apiKey"),
		}, deps.Logger), nil

	case "memory", "":
		deps.Logger.Info("Memory storage backend initialized", "outputDir", cfg.Memory.OutputDir)
		return memory.New(cfg.Memory), nil
	}
	return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
}

func sqliteDumpPath(dir string, session time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.db", AppName, session.Format("20060102_150405")))
}

// httpToWS converts an HTTP(S) URL to a WebSocket URL.
func httpToWS(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}
