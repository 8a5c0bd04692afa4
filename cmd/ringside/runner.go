package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ringside/simulator/internal/ai"
	"github.com/ringside/simulator/internal/api"
	"github.com/ringside/simulator/internal/config"
	"github.com/ringside/simulator/internal/engine"
	"github.com/ringside/simulator/internal/recorder"
	"github.com/ringside/simulator/internal/rng"
	"github.com/ringside/simulator/internal/storage"
	"github.com/ringside/simulator/pkg/core"
)

// errFrameLimit stops a match that never reaches MATCH_END.
var errFrameLimit = errors.New("frame limit reached before match end")

// runner plays AI-vs-AI matches. The human slot is driven by an Autopilot
// with its own random stream.
type runner struct {
	sim    config.SimConfig
	rec    *recorder.Recorder
	view   *liveView
	logger *slog.Logger
	tag    string

	// MaxFrames bounds one match. Zero means one simulated hour.
	maxFrames uint64
}

func (r *runner) seed(n int) uint64 {
	if r.sim.Seed == 0 {
		return uint64(time.Now().UnixNano())
	}
	return r.sim.Seed + uint64(n)
}

func (r *runner) runMatch(ctx context.Context, n int) (string, *core.MatchResult, error) {
	seed := r.seed(n)
	eng, err := engine.New(r.sim.Engine, rng.New(seed), r.logger)
	if err != nil {
		return "", nil, fmt.Errorf("build engine: %w", err)
	}
	pilot := ai.NewAutopilot(ai.NewPolicy(r.sim.Engine.AI, rng.New(^seed)))

	names := r.sim.Engine.Names
	matchID := uuid.NewString()
	match := core.Match{
		ID:           matchID,
		StartTime:    time.Now(),
		Ring:         eng.Arena().RingRectangle(),
		FloorY:       eng.Arena().FloorY(),
		MaxRounds:    r.sim.Engine.Match.MaxRounds,
		CaptureEvery: r.sim.CaptureEvery,
		TickRate:     float64(r.sim.TickRate),
		Tuning:       r.sim.Engine.Tuning,
		Tag:          r.tag,
	}
	fighters := [2]core.Fighter{
		{Slot: engine.Human, Name: names[engine.Human], Side: core.SideHuman},
		{Slot: engine.AI, Name: names[engine.AI], Side: core.SideAI},
	}
	if err := r.rec.Begin(match, fighters); err != nil {
		return "", nil, err
	}
	if r.view != nil {
		r.view.begin(matchID)
		eng.Subscribe(r.view)
	}
	eng.Subscribe(r.rec)

	r.logger.Info("match started", "matchId", matchID, "seed", seed, "match", n+1)

	dt := r.sim.Delta()
	limit := r.maxFrames
	if limit == 0 {
		limit = uint64(r.sim.TickRate) * 3600
	}

	var ticker *time.Ticker
	if r.sim.Realtime {
		ticker = time.NewTicker(time.Duration(dt * float64(time.Second)))
		defer ticker.Stop()
	}

	for !r.rec.Done() {
		if eng.Frame() >= limit {
			return matchID, nil, fmt.Errorf("match %s: %w", matchID, errFrameLimit)
		}
		if ticker != nil {
			select {
			case <-ctx.Done():
				return matchID, nil, ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return matchID, nil, err
		}

		f := eng.Fighters()
		eng.Tick(dt, pilot.Intent(f[engine.Human], f[engine.AI], dt))
	}

	finishCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	res, err := r.rec.Finish(finishCtx)
	if err != nil {
		return matchID, nil, err
	}
	return matchID, res, nil
}

func winnerLabel(names [2]string, slot *uint8) string {
	if slot == nil {
		return "draw"
	}
	if int(*slot) < len(names) {
		return names[*slot]
	}
	return fmt.Sprintf("slot %d", *slot)
}

// uploadReplay sends the last exported replay when the backend produces
// files.
func uploadReplay(ctx context.Context, client *api.Client, backend storage.Backend, logger *slog.Logger) {
	up, ok := backend.(storage.Uploadable)
	if !ok {
		return
	}
	path := up.GetExportedFilePath()
	if path == "" {
		return
	}

	if err := client.Healthcheck(ctx); err != nil {
		logger.Warn("Replay archive offline, keeping local file", "path", path, "error", err)
		return
	}
	if err := client.Upload(ctx, path, up.GetExportMetadata()); err != nil {
		logger.Error("Replay upload failed", "path", path, "error", err)
		return
	}
	logger.Info("Replay uploaded", "path", path)
}
