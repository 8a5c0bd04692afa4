// Package engine is the tick driver. One call to Tick runs, in order: human
// intent, AI decision, both fighters' physics, attack resolution in both
// directions, and the match controller.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ringside/simulator/internal/ai"
	"github.com/ringside/simulator/internal/arena"
	"github.com/ringside/simulator/internal/combat"
	"github.com/ringside/simulator/internal/combatant"
	"github.com/ringside/simulator/internal/match"
	"github.com/ringside/simulator/internal/rng"
	"github.com/ringside/simulator/pkg/core"
)

// ErrInvalidDelta is the panic value's cause when Tick gets a dt that is not
// positive, not finite, or above the configured maximum.
var ErrInvalidDelta = errors.New("invalid tick delta")

const (
	Human = 0
	AI    = 1
)

// Config assembles everything the engine builds.
type Config struct {
	Arena  arena.Config     `json:"arena" mapstructure:"arena"`
	Tuning combatant.Tuning `json:"tuning" mapstructure:"tuning"`
	Rules  combat.Rules     `json:"rules" mapstructure:"rules"`
	Match  match.Config     `json:"match" mapstructure:"match"`
	AI     ai.Config        `json:"ai" mapstructure:"ai"`

	Names [2]string `json:"names" mapstructure:"names"`

	// MaxDelta bounds a single tick's dt, in seconds.
	MaxDelta float64 `json:"maxDelta" mapstructure:"maxDelta"`

	SlowMoScale    float64 `json:"slowMoScale" mapstructure:"slowMoScale"`
	SlowMoDuration float64 `json:"slowMoDuration" mapstructure:"slowMoDuration"` // unscaled seconds
}

// DefaultConfig returns an 800x400 ring with the stock fighters.
func DefaultConfig() Config {
	return Config{
		Arena:          arena.Config{Width: 800, Height: 400, FloorY: 360, HalfWidth: 20},
		Tuning:         combatant.DefaultTuning(),
		Rules:          combat.DefaultRules(),
		Match:          match.DefaultConfig(),
		AI:             ai.DefaultConfig(),
		Names:          [2]string{"player", "cpu"},
		MaxDelta:       0.25,
		SlowMoScale:    0.4,
		SlowMoDuration: 0.35,
	}
}

// ErrInvalidNames is returned when the fighter names are empty or equal.
// Listeners and logs tell fighters apart by name.
var ErrInvalidNames = errors.New("fighter names must be non-empty and distinct")

// Validate checks the engine-level settings and the tuning table.
func (c Config) Validate() error {
	if err := c.Tuning.Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	if c.Names[0] == "" || c.Names[1] == "" || c.Names[0] == c.Names[1] {
		return fmt.Errorf("%w: %q", ErrInvalidNames, c.Names)
	}
	if c.MaxDelta <= 0 {
		return fmt.Errorf("maxDelta must be positive, got %v", c.MaxDelta)
	}
	if c.SlowMoScale <= 0 || c.SlowMoScale > 1 {
		return fmt.Errorf("slowMoScale must be in (0, 1], got %v", c.SlowMoScale)
	}
	return nil
}

// Engine owns one match. It is not safe for concurrent use; listeners get
// copies.
type Engine struct {
	cfg    Config
	tuning combatant.Tuning
	logger *slog.Logger

	arena    *arena.Arena
	fighters [2]*combatant.Combatant
	resolver *combat.Resolver
	policy   *ai.Policy
	match    *match.Controller

	listeners []Listener

	frame      uint64
	elapsed    float64
	timeScale  float64
	slowMoLeft float64

	ticks metric.Int64Counter
	hits  metric.Int64Counter
}

// New builds the arena, fighters and controllers. src feeds both damage
// rolls and AI dice; a seeded source makes the whole match replayable.
func New(cfg Config, src rng.Source, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ring, err := arena.New(cfg.Arena)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		tuning:    cfg.Tuning,
		logger:    logger.With("component", "engine"),
		arena:     ring,
		resolver:  combat.New(cfg.Rules, src),
		policy:    ai.NewPolicy(cfg.AI, src),
		timeScale: 1,
	}
	left, right := ring.Spawn()
	e.fighters[Human] = combatant.New(cfg.Names[Human], core.SideHuman, left, true, &e.tuning)
	e.fighters[AI] = combatant.New(cfg.Names[AI], core.SideAI, right, false, &e.tuning)

	e.match, err = match.New(cfg.Match, e.fighters[Human], e.fighters[AI], match.Hooks{
		ResetRound: e.resetRound,
		ResetMatch: e.resetMatch,
	})
	if err != nil {
		return nil, err
	}

	if e.ticks, e.hits, err = counters(); err != nil {
		return nil, err
	}
	return e, nil
}

// Subscribe registers l for hits, phase changes and frames.
func (e *Engine) Subscribe(l Listener) {
	e.listeners = append(e.listeners, l)
}

// Tick advances the simulation by dt with the given human input. A dt that
// is not positive and finite, or exceeds MaxDelta, panics.
func (e *Engine) Tick(dt float64, in core.Intent) {
	if !(dt > 0) || math.IsInf(dt, 0) || dt > e.cfg.MaxDelta {
		e.logger.Error("rejected tick delta", "dt", dt, "max", e.cfg.MaxDelta)
		panic(fmt.Errorf("%w: %v", ErrInvalidDelta, dt))
	}

	if in.PauseToggle {
		if ch, ok := e.match.TogglePause(); ok {
			e.publishPhase(ch)
		}
	}
	if in.Restart {
		if ch, ok := e.match.Restart(); ok {
			e.publishPhase(ch)
		}
	}
	if e.match.Phase() == core.PhasePaused {
		return
	}

	e.frame++
	scaled := dt * e.timeScale
	if e.slowMoLeft > 0 {
		e.slowMoLeft -= dt
		if e.slowMoLeft <= 0 {
			e.slowMoLeft = 0
			e.timeScale = 1
		}
	}

	if e.match.Simulating() {
		human, cpu := e.fighters[Human], e.fighters[AI]
		human.ApplyIntent(in)
		e.policy.Decide(cpu, human, scaled)
		human.Update(scaled, e.arena)
		cpu.Update(scaled, e.arena)

		for i, res := range e.resolver.ResolvePair(human, cpu) {
			if !res.Hit {
				continue
			}
			res.AttackerSlot, res.DefenderSlot = uint8(i), uint8(1-i)
			res.Frame = e.frame
			res.Round = e.match.Round()
			e.hits.Add(context.Background(), 1, metric.WithAttributes(
				attribute.String("kind", res.Kind.String()),
				attribute.Bool("blocked", res.Blocked),
			))
			if res.Kind != core.AttackLight && !res.Blocked {
				e.startSlowMo()
			}
			for _, l := range e.listeners {
				l.OnHit(res)
			}
		}
	}

	if ch, ok := e.match.Update(scaled); ok {
		e.publishPhase(ch)
	}

	e.elapsed += scaled
	e.ticks.Add(context.Background(), 1)

	if len(e.listeners) > 0 {
		fr := e.Snapshot()
		for _, l := range e.listeners {
			l.OnFrame(fr)
		}
	}
}

// Snapshot returns the current frame.
func (e *Engine) Snapshot() core.Frame {
	return core.Frame{
		Number:    e.frame,
		Elapsed:   e.elapsed,
		Match:     e.match.Snapshot(),
		Fighters:  e.Fighters(),
		TimeScale: e.timeScale,
	}
}

// Fighters returns both fighters' snapshots, human first.
func (e *Engine) Fighters() [2]core.CombatantSnapshot {
	return [2]core.CombatantSnapshot{e.fighters[Human].Snapshot(), e.fighters[AI].Snapshot()}
}

// Fighter returns one fighter's snapshot.
func (e *Engine) Fighter(slot int) core.CombatantSnapshot {
	return e.fighters[slot].Snapshot()
}

// Match returns the controller's snapshot.
func (e *Engine) Match() core.MatchSnapshot { return e.match.Snapshot() }

// Phase returns the current match phase.
func (e *Engine) Phase() core.Phase { return e.match.Phase() }

// Winner returns the match winner's slot once the match is over.
func (e *Engine) Winner() (int, bool) { return e.match.Winner() }

// RoundTime returns the fight time of the current round.
func (e *Engine) RoundTime() float64 { return e.match.RoundTime() }

// LastRoundWinner returns the slot that took the last finished round, or
// match.NoWinner after a double knockout.
func (e *Engine) LastRoundWinner() int { return e.match.LastRoundWinner() }

func (e *Engine) Arena() *arena.Arena       { return e.arena }
func (e *Engine) Config() Config            { return e.cfg }
func (e *Engine) Frame() uint64             { return e.frame }
func (e *Engine) TimeScale() float64        { return e.timeScale }
func (e *Engine) Tuning() *combatant.Tuning { return &e.tuning }

func (e *Engine) startSlowMo() {
	e.timeScale = e.cfg.SlowMoScale
	e.slowMoLeft = e.cfg.SlowMoDuration
}

func (e *Engine) publishPhase(ch core.PhaseChange) {
	ch.Frame = e.frame
	e.logger.Info("phase change",
		"from", ch.From,
		"to", ch.To,
		"round", ch.Round,
		"winner", ch.Winner,
		"draw", ch.Draw,
		"roundWins", ch.RoundWins,
	)
	for _, l := range e.listeners {
		l.OnPhase(ch)
	}
}

func (e *Engine) respawn() {
	e.resolver.Reset()
	e.policy.Reset()
	e.timeScale = 1
	e.slowMoLeft = 0
}

func (e *Engine) resetRound() {
	left, right := e.arena.Spawn()
	e.fighters[Human].ResetForRound(left, true)
	e.fighters[AI].ResetForRound(right, false)
	e.respawn()
}

func (e *Engine) resetMatch() {
	left, right := e.arena.Spawn()
	e.fighters[Human].ResetForMatch(left, true)
	e.fighters[AI].ResetForMatch(right, false)
	e.respawn()
	e.elapsed = 0
}
