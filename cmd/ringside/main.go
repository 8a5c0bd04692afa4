// Command ringside runs headless AI-vs-AI matches, records them through the
// configured storage backend and optionally serves a spectator API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/ringside/simulator/internal/api"
	"github.com/ringside/simulator/internal/config"
	"github.com/ringside/simulator/internal/dispatcher"
	"github.com/ringside/simulator/internal/influx"
	"github.com/ringside/simulator/internal/logging"
	"github.com/ringside/simulator/internal/monitor"
	intOtel "github.com/ringside/simulator/internal/otel"
	"github.com/ringside/simulator/internal/recorder"
)

// set at build time via ldflags
var (
	Version   = "0.0.1"
	BuildDate = "unknown"
)

const AppName = "ringside"

func main() {
	configDir := flag.String("config", ".", "directory holding "+config.FileName)
	matches := flag.Int("matches", 0, "number of matches to run, overrides sim.matches")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configDir, *matches); err != nil {
		fmt.Fprintln(os.Stderr, "ringside:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configDir string, matchesOverride int) error {
	session := time.Now()

	slogManager := logging.NewSlogManager()
	slogManager.Setup(nil, "info", nil)
	logger := slogManager.Logger()

	if err := config.Load(configDir); err != nil {
		logger.Warn("Failed to load config, using defaults!", "error", err)
	}
	sim, err := config.GetSimConfig()
	if err != nil {
		return err
	}
	if matchesOverride > 0 {
		sim.Matches = matchesOverride
	}
	if err := sim.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level := config.GetString("logLevel")
	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}
	logPath := logging.LogFilePath(logsDir, AppName, session)
	logFile, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	otelCfg := config.GetOTelConfig()
	provider, err := intOtel.New(intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		LogWriter:    logFile,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	})
	if err != nil {
		logger.Error("Failed to initialize OTel provider", "error", err)
		provider, _ = intOtel.New(intOtel.Config{})
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = slogManager.Flush(shutdownCtx)
		_ = provider.Shutdown(shutdownCtx)
	}()

	if config.GetBool("graylog.enabled") {
		h, w, err := logging.NewGraylogHandler(config.GetString("graylog.address"), level)
		if err != nil {
			logger.Warn("Graylog disabled", "error", err)
		} else {
			slogManager.AddHandler(h)
			defer w.Close()
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if provider.Enabled() {
		otelLogProvider = provider.LoggerProvider()
	}
	slogManager.Setup(logFile, level, otelLogProvider)
	logger = slogManager.Logger()
	logger.Info("Starting", "version", Version, "build", BuildDate, "log", logPath)

	view := &liveView{}
	slogManager.GetPhase = view.phase
	slogManager.GetRound = view.round

	backend, err := createStorageBackend(config.GetStorageConfig(), storageDeps{
		Logger:  logger,
		DBLog:   slogManager.Zerolog(logFile, level),
		Session: session,
	})
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("Failed to close storage backend", "error", err)
		}
	}()

	var metrics recorder.MetricsWriter
	if config.GetBool("influx.enabled") {
		im := influx.NewManager(slogManager.Zerolog(logFile, level), filepath.Join(logsDir, fmt.Sprintf("influx_%s.lp.gz", session.Format("20060102_150405"))))
		if err := im.Connect(ctx); err != nil {
			logger.Warn("InfluxDB metrics disabled", "error", err)
		} else {
			metrics = im
			defer im.Close()
		}
	}

	disp, err := dispatcher.New(logging.NewDispatcherLogger(logger))
	if err != nil {
		return fmt.Errorf("create dispatcher: %w", err)
	}
	defer disp.Close()

	recCfg := recorder.DefaultConfig()
	recCfg.CaptureEvery = sim.CaptureEvery
	rec, err := recorder.New(recCfg, backend, disp, metrics, logger)
	if err != nil {
		return err
	}
	slogManager.GetMatchID = rec.MatchID

	mon := monitor.NewService(monitor.Dependencies{
		Sample: func() monitor.Status {
			id, fr, _ := view.snapshot()
			return monitor.Status{
				MatchID: id,
				Frame:   fr.Number,
				Phase:   fr.Match.Phase.String(),
				Round:   fr.Match.Round,
				Dropped: rec.Dropped(),
			}
		},
		Metrics:    metrics,
		StatusPath: filepath.Join(logsDir, "status.json"),
		Logger:     logger,
	})
	if err := mon.Start(); err != nil {
		logger.Warn("Status monitor disabled", "error", err)
	}
	defer mon.Stop()

	if srvCfg := config.GetServerConfig(); srvCfg.Enabled {
		gin.SetMode(gin.ReleaseMode)
		gin.DefaultWriter = io.Discard
		srv := &http.Server{Addr: srvCfg.Address, Handler: newRouter(view, backend)}
		go func() {
			logger.Info("Spectator API listening", "address", srvCfg.Address)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Spectator API stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	client := api.New(config.GetString("api.serverUrl"), config.GetString("api.apiKey"))
	r := &runner{
		sim:    sim,
		rec:    rec,
		view:   view,
		logger: logger,
		tag:    config.GetString("defaultTag"),
	}

	for n := 0; n < sim.Matches; n++ {
		matchID, res, err := r.runMatch(ctx, n)
		if err != nil {
			return err
		}
		logger.Info("match finished",
			"matchId", matchID,
			"winner", winnerLabel(sim.Engine.Names, res.Winner),
			"roundWins", res.RoundWins,
			"duration", res.Duration,
			"dropped", rec.Dropped(),
		)
		if config.GetString("api.apiKey") != "" {
			uploadReplay(ctx, client, backend, logger)
		}
		if err := provider.Flush(ctx); err != nil {
			logger.Debug("OTel flush failed", "error", err)
		}
	}
	return nil
}
