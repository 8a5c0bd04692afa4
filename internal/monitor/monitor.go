// Package monitor periodically publishes runner status to a status file and
// the sim_performance bucket.
package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/ringside/simulator/internal/influx"
)

// Status is one status sample.
type Status struct {
	Time       time.Time `json:"time"`
	MatchID    string    `json:"matchId"`
	Frame      uint64    `json:"frame"`
	Phase      string    `json:"phase"`
	Round      int       `json:"round"`
	Dropped    uint64    `json:"dropped"`
	Goroutines int       `json:"goroutines"`
	HeapMB     float64   `json:"heapMb"`
}

// MetricsWriter receives status points.
type MetricsWriter interface {
	WritePoint(bucket string, point *influxdb2_write.Point) error
}

// Dependencies holds all dependencies for the monitor service.
type Dependencies struct {
	// Sample fills the match fields of a Status. Required.
	Sample     func() Status
	Metrics    MetricsWriter
	StatusPath string
	Interval   time.Duration
	Logger     *slog.Logger
}

// Service manages status monitoring.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service.
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Collect takes one sample with runtime figures filled in.
func (s *Service) Collect() Status {
	st := s.deps.Sample()
	st.Time = time.Now()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	st.Goroutines = runtime.NumGoroutine()
	st.HeapMB = float64(mem.HeapAlloc) / (1 << 20)
	return st
}

// StatusPoint converts a sample into a "status" point.
func StatusPoint(st Status) *influxdb2_write.Point {
	return influxdb2.NewPoint(
		"status",
		map[string]string{"matchId": st.MatchID, "phase": st.Phase},
		map[string]any{
			"frame":      int64(st.Frame),
			"round":      st.Round,
			"dropped":    int64(st.Dropped),
			"goroutines": st.Goroutines,
			"heapMb":     st.HeapMB,
		},
		st.Time,
	)
}

// Start starts the status monitor goroutine.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}

	var statusFile *os.File
	if s.deps.StatusPath != "" {
		f, err := os.Create(s.deps.StatusPath)
		if err != nil {
			return fmt.Errorf("error creating status file: %w", err)
		}
		statusFile = f
	}

	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(statusFile)
	return nil
}

func (s *Service) loop(statusFile *os.File) {
	defer close(s.done)
	if statusFile != nil {
		defer statusFile.Close()
	}

	logger := s.deps.Logger.With("component", "monitor")
	logger.Debug("Starting status monitor", "interval", s.deps.Interval)

	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
		}

		st := s.Collect()
		if st.MatchID == "" {
			continue
		}

		if statusFile != nil {
			if err := writeStatus(statusFile, st); err != nil {
				logger.Error("Error writing status file", "error", err)
			}
		}
		if s.deps.Metrics != nil {
			if err := s.deps.Metrics.WritePoint(influx.BucketSimPerformance, StatusPoint(st)); err != nil {
				logger.Debug("Error writing status point", "error", err)
			}
		}
	}
}

// writeStatus replaces the file contents with st as indented JSON.
func writeStatus(f *os.File, st Status) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.WriteAt(append(data, '\n'), 0); err != nil {
		return err
	}
	return nil
}

// Stop stops the status monitor and waits for its goroutine to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
