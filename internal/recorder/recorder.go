// Package recorder turns the engine's listener stream into storage records.
// Fighter states are sampled every CaptureEvery frames; hits and round
// outcomes are recorded as they happen. Records pass through the dispatcher
// so a slow backend never stalls the tick loop.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/ringside/simulator/internal/dispatcher"
	"github.com/ringside/simulator/internal/geo"
	"github.com/ringside/simulator/internal/influx"
	"github.com/ringside/simulator/internal/storage"
	"github.com/ringside/simulator/pkg/core"
	"github.com/ringside/simulator/pkg/streaming"
)

// ErrMatchNotOver is returned by Finish before MATCH_END was seen.
var ErrMatchNotOver = errors.New("match has not ended")

// MetricsWriter receives InfluxDB points. influx.Manager implements it.
type MetricsWriter interface {
	WritePoint(bucket string, point *influxdb2_write.Point) error
}

// Config sizes the dispatcher queues.
type Config struct {
	CaptureEvery uint
	StateBuffer  int
	HitBuffer    int
	RoundBuffer  int
}

// DefaultConfig samples every sixth frame.
func DefaultConfig() Config {
	return Config{CaptureEvery: 6, StateBuffer: 4096, HitBuffer: 1024, RoundBuffer: 64}
}

// Recorder implements engine.Listener. Begin and Finish bracket one match;
// the same Recorder can record any number of matches in sequence.
type Recorder struct {
	cfg     Config
	backend storage.Backend
	disp    *dispatcher.Dispatcher
	metrics MetricsWriter
	logger  *slog.Logger

	mu      sync.RWMutex
	matchID string
	active  bool

	// touched only from the tick goroutine
	tracks     [2]geo.Track
	roundStart float64
	last       core.Frame
	result     *core.MatchResult
	started    time.Time

	dropped atomic.Uint64
}

// New registers the record handlers on disp. metrics may be nil.
func New(cfg Config, backend storage.Backend, disp *dispatcher.Dispatcher, metrics MetricsWriter, logger *slog.Logger) (*Recorder, error) {
	if cfg.CaptureEvery == 0 {
		return nil, fmt.Errorf("captureEvery must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{
		cfg:     cfg,
		backend: backend,
		disp:    disp,
		metrics: metrics,
		logger:  logger.With("component", "recorder"),
	}

	disp.Register(streaming.TypeFighterState, r.handleState, dispatcher.Buffered(cfg.StateBuffer))
	disp.Register(streaming.TypeHit, r.handleHit, dispatcher.Buffered(cfg.HitBuffer), dispatcher.Logged())
	// round results are rare and never dropped
	disp.Register(streaming.TypeRound, r.handleRound, dispatcher.Buffered(cfg.RoundBuffer), dispatcher.Blocking(), dispatcher.Logged())
	return r, nil
}

// Begin opens a match in the backend and starts accepting records.
func (r *Recorder) Begin(match core.Match, fighters [2]core.Fighter) error {
	if match.CaptureEvery == 0 {
		match.CaptureEvery = r.cfg.CaptureEvery
	}
	if err := r.backend.StartMatch(&match, fighters); err != nil {
		return fmt.Errorf("start match %s: %w", match.ID, err)
	}

	r.mu.Lock()
	r.matchID = match.ID
	r.active = true
	r.mu.Unlock()

	r.tracks[0].Reset()
	r.tracks[1].Reset()
	r.roundStart = 0
	r.last = core.Frame{}
	r.result = nil
	r.started = time.Now()
	r.dropped.Store(0)

	r.logger.Info("recording started", "matchId", match.ID, "captureEvery", r.cfg.CaptureEvery)
	return nil
}

// MatchID returns the match being recorded, or "" between matches.
func (r *Recorder) MatchID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.matchID
}

// Done reports whether MATCH_END was seen and Finish can close the match.
func (r *Recorder) Done() bool { return r.result != nil }

// Dropped returns how many records were discarded this match.
func (r *Recorder) Dropped() uint64 { return r.dropped.Load() }

// Finish waits for queued records and closes the match in the backend.
func (r *Recorder) Finish(ctx context.Context) (*core.MatchResult, error) {
	if r.result == nil {
		return nil, ErrMatchNotOver
	}
	if err := r.disp.Flush(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	matchID := r.matchID
	r.active = false
	r.matchID = ""
	r.mu.Unlock()

	result := r.result
	if err := r.backend.EndMatch(result); err != nil {
		return nil, fmt.Errorf("end match %s: %w", matchID, err)
	}
	r.writeMetric(influx.MatchPoint(matchID, *result, time.Now()))
	r.writeMetric(influx.PerformancePoint(matchID, result.EndFrame, time.Since(r.started), time.Now()))

	r.logger.Info("recording finished",
		"matchId", matchID,
		"frames", result.EndFrame,
		"rounds", result.Rounds,
		"roundWins", result.RoundWins,
		"dropped", r.dropped.Load(),
	)
	return result, nil
}

// OnFrame samples both fighters on capture frames.
func (r *Recorder) OnFrame(fr core.Frame) {
	r.last = fr
	if !r.isActive() || fr.Number%uint64(r.cfg.CaptureEvery) != 0 {
		return
	}

	for slot, f := range fr.Fighters {
		if fr.Match.Phase == core.PhaseFight {
			r.tracks[slot].Add(f.Position)
		}
		r.dispatch(streaming.TypeFighterState, fr.Number, core.FighterState{
			Slot:         uint8(slot),
			CaptureFrame: fr.Number,
			Round:        fr.Match.Round,
			Position:     f.Position,
			FacingRight:  f.FacingRight,
			Health:       f.Health,
			Stamina:      f.Stamina,
			State:        f.State,
			Combo:        f.Combo,
		})
	}
}

// OnHit records a landed attack.
func (r *Recorder) OnHit(res core.AttackResult) {
	if !r.isActive() {
		return
	}
	r.dispatch(streaming.TypeHit, res.Frame, core.HitEvent{
		CaptureFrame: res.Frame,
		Round:        res.Round,
		Attacker:     res.AttackerSlot,
		Defender:     res.DefenderSlot,
		Kind:         res.Kind,
		Damage:       res.Damage,
		Combo:        res.Combo,
		Blocked:      res.Blocked,
		Impact:       res.Impact,
	})
}

// OnPhase closes rounds and the match.
func (r *Recorder) OnPhase(ch core.PhaseChange) {
	if !r.isActive() {
		return
	}

	switch ch.To {
	case core.PhaseFight:
		if ch.From != core.PhasePaused {
			r.roundStart = r.last.Elapsed
			r.tracks[0].Reset()
			r.tracks[1].Reset()
		}

	case core.PhaseRoundEnd:
		ev := core.RoundEvent{
			Round:       ch.Round,
			EndFrame:    ch.Frame,
			Winner:      winnerSlot(ch),
			DurationSec: r.last.Elapsed - r.roundStart,
			Paths:       [2]core.Path{r.tracks[0].Summary(), r.tracks[1].Summary()},
		}
		r.dispatch(streaming.TypeRound, ch.Frame, ev)

	case core.PhaseMatchEnd:
		r.result = &core.MatchResult{
			EndFrame:  ch.Frame,
			Winner:    winnerSlot(ch),
			RoundWins: ch.RoundWins,
			Rounds:    ch.Round,
			Duration:  r.last.Elapsed,
		}
	}
}

func (r *Recorder) isActive() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

func (r *Recorder) currentMatchID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.matchID
}

func winnerSlot(ch core.PhaseChange) *uint8 {
	if ch.Draw || ch.WinnerSlot == nil {
		return nil
	}
	slot := *ch.WinnerSlot
	return &slot
}

func (r *Recorder) dispatch(typ string, frame uint64, payload any) {
	_, err := r.disp.Dispatch(dispatcher.Event{Type: typ, Frame: frame, Payload: payload})
	if err == nil {
		return
	}
	if errors.Is(err, dispatcher.ErrQueueFull) {
		if r.dropped.Add(1) == 1 {
			r.logger.Warn("record queue full, dropping records", "type", typ, "frame", frame)
		}
		return
	}
	r.logger.Error("dispatch failed", "type", typ, "frame", frame, "error", err)
}

func (r *Recorder) writeMetric(p *influxdb2_write.Point) {
	if r.metrics == nil {
		return
	}
	bucket := influx.BucketMatchData
	if p.Name() == "throughput" {
		bucket = influx.BucketSimPerformance
	}
	if err := r.metrics.WritePoint(bucket, p); err != nil {
		r.logger.Debug("metric write failed", "measurement", p.Name(), "error", err)
	}
}

func (r *Recorder) handleState(e dispatcher.Event) (any, error) {
	s := e.Payload.(core.FighterState)
	return nil, r.backend.RecordFighterState(&s)
}

func (r *Recorder) handleHit(e dispatcher.Event) (any, error) {
	h := e.Payload.(core.HitEvent)
	if err := r.backend.RecordHit(&h); err != nil {
		return nil, err
	}
	r.writeMetric(influx.HitPoint(r.currentMatchID(), h, e.Timestamp))
	return nil, nil
}

func (r *Recorder) handleRound(e dispatcher.Event) (any, error) {
	ev := e.Payload.(core.RoundEvent)
	if err := r.backend.RecordRound(&ev); err != nil {
		return nil, err
	}
	r.writeMetric(influx.RoundPoint(r.currentMatchID(), ev, e.Timestamp))
	return nil, nil
}
