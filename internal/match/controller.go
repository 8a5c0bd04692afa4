// Package match runs the round and match state machine on top of the two
// fighters. It never moves or damages anyone; respawning is delegated to the
// Hooks the tick driver provides.
package match

import (
	"fmt"

	"github.com/ringside/simulator/pkg/core"
)

// Config holds the controller timings.
type Config struct {
	MaxRounds     int     `json:"maxRounds" mapstructure:"maxRounds"`
	IntroDelay    float64 `json:"introDelay" mapstructure:"introDelay"`
	RoundEndDelay float64 `json:"roundEndDelay" mapstructure:"roundEndDelay"`
}

// DefaultConfig is a best of three.
func DefaultConfig() Config {
	return Config{MaxRounds: 3, IntroDelay: 2.5, RoundEndDelay: 1.8}
}

// Validate rejects configurations that could never finish a match.
func (c Config) Validate() error {
	if c.MaxRounds < 1 {
		return fmt.Errorf("match: maxRounds must be at least 1, got %d", c.MaxRounds)
	}
	if c.IntroDelay < 0 || c.RoundEndDelay < 0 {
		return fmt.Errorf("match: delays must not be negative")
	}
	return nil
}

// Fighter is the controller's view of a combatant.
type Fighter interface {
	Name() string
	IsKnockedOut() bool
	RoundsWon() int
	AwardRound()
}

// Hooks are invoked when fighters must be put back on their marks.
type Hooks struct {
	ResetRound func()
	ResetMatch func()
}

// NoWinner is returned by Winner while undecided or after a drawn match.
const NoWinner = -1

// Controller is the match state machine.
type Controller struct {
	cfg      Config
	fighters [2]Fighter
	hooks    Hooks

	phase     core.Phase
	phaseTime float64
	roundTime float64
	round     int
	winner    int
	draw      bool

	lastRoundWinner int
}

// New creates a controller in INTRO of round 1.
func New(cfg Config, a, b Fighter, hooks Hooks) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{cfg: cfg, fighters: [2]Fighter{a, b}, hooks: hooks}
	c.start()
	return c, nil
}

func (c *Controller) Phase() core.Phase    { return c.phase }
func (c *Controller) Round() int           { return c.round }
func (c *Controller) MaxRounds() int       { return c.cfg.MaxRounds }
func (c *Controller) PhaseTime() float64   { return c.phaseTime }
func (c *Controller) RoundTime() float64   { return c.roundTime }
func (c *Controller) IsDraw() bool         { return c.draw }
func (c *Controller) Simulating() bool     { return c.phase == core.PhaseFight }
func (c *Controller) LastRoundWinner() int { return c.lastRoundWinner }

// Winner returns the index of the match winner once MATCH_END is reached.
func (c *Controller) Winner() (int, bool) {
	return c.winner, c.winner != NoWinner
}

// RoundWins returns both fighters' round wins.
func (c *Controller) RoundWins() [2]int {
	return [2]int{c.fighters[0].RoundsWon(), c.fighters[1].RoundsWon()}
}

// Snapshot copies the controller's public state.
func (c *Controller) Snapshot() core.MatchSnapshot {
	s := core.MatchSnapshot{
		Phase:     c.phase,
		Round:     c.round,
		MaxRounds: c.cfg.MaxRounds,
		PhaseTime: c.phaseTime,
		Draw:      c.draw,
	}
	if c.winner != NoWinner {
		s.Winner = c.fighters[c.winner].Name()
	}
	return s
}

// Update advances the phase timers by dt and applies at most one
// transition. It returns the transition, if any.
func (c *Controller) Update(dt float64) (core.PhaseChange, bool) {
	switch c.phase {
	case core.PhaseIntro:
		c.phaseTime += dt
		if c.phaseTime >= c.cfg.IntroDelay {
			return c.transition(core.PhaseFight), true
		}

	case core.PhaseFight:
		koA, koB := c.fighters[0].IsKnockedOut(), c.fighters[1].IsKnockedOut()
		if koA || koB {
			return c.endRound(koA, koB), true
		}
		c.phaseTime += dt
		c.roundTime += dt

	case core.PhaseRoundEnd:
		c.phaseTime += dt
		if c.phaseTime < c.cfg.RoundEndDelay {
			break
		}
		if w, done := c.decided(); done {
			c.winner = w
			c.draw = w == NoWinner
			return c.transition(core.PhaseMatchEnd), true
		}
		c.round++
		c.roundTime = 0
		if c.hooks.ResetRound != nil {
			c.hooks.ResetRound()
		}
		return c.transition(core.PhaseFight), true
	}
	return core.PhaseChange{}, false
}

// TogglePause switches between FIGHT and PAUSED. Other phases ignore it.
func (c *Controller) TogglePause() (core.PhaseChange, bool) {
	switch c.phase {
	case core.PhaseFight:
		return c.pauseTransition(core.PhasePaused), true
	case core.PhasePaused:
		return c.pauseTransition(core.PhaseFight), true
	}
	return core.PhaseChange{}, false
}

// Restart starts a fresh match. Only honoured in MATCH_END.
func (c *Controller) Restart() (core.PhaseChange, bool) {
	if c.phase != core.PhaseMatchEnd {
		return core.PhaseChange{}, false
	}
	if c.hooks.ResetMatch != nil {
		c.hooks.ResetMatch()
	}
	from := c.phase
	c.start()
	ch := c.change(from, core.PhaseIntro)
	return ch, true
}

func (c *Controller) start() {
	c.phase = core.PhaseIntro
	c.phaseTime = 0
	c.roundTime = 0
	c.round = 1
	c.winner = NoWinner
	c.draw = false
	c.lastRoundWinner = NoWinner
}

// endRound scores a knockout. A double knockout scores nobody.
func (c *Controller) endRound(koA, koB bool) core.PhaseChange {
	c.lastRoundWinner = NoWinner
	switch {
	case koA && koB:
	case koB:
		c.lastRoundWinner = 0
	default:
		c.lastRoundWinner = 1
	}
	if c.lastRoundWinner != NoWinner {
		c.fighters[c.lastRoundWinner].AwardRound()
	}
	ch := c.transition(core.PhaseRoundEnd)
	if c.lastRoundWinner == NoWinner {
		ch.Draw = true
	} else {
		ch.Winner = c.fighters[c.lastRoundWinner].Name()
		ch.WinnerSlot = slotPtr(c.lastRoundWinner)
	}
	return ch
}

// decided reports whether the match is over and who won it. A majority ends
// the match; so does running out of rounds, where equal wins is a draw.
func (c *Controller) decided() (int, bool) {
	wins := c.RoundWins()
	for i, w := range wins {
		if 2*w > c.cfg.MaxRounds {
			return i, true
		}
	}
	if c.round < c.cfg.MaxRounds {
		return NoWinner, false
	}
	switch {
	case wins[0] > wins[1]:
		return 0, true
	case wins[1] > wins[0]:
		return 1, true
	}
	return NoWinner, true
}

func (c *Controller) transition(to core.Phase) core.PhaseChange {
	from := c.phase
	c.phase = to
	c.phaseTime = 0
	ch := c.change(from, to)
	if to == core.PhaseMatchEnd {
		if c.winner != NoWinner {
			ch.Winner = c.fighters[c.winner].Name()
			ch.WinnerSlot = slotPtr(c.winner)
		}
		ch.Draw = c.draw
	}
	return ch
}

// pauseTransition keeps phaseTime so FIGHT resumes where it stopped.
func (c *Controller) pauseTransition(to core.Phase) core.PhaseChange {
	from := c.phase
	c.phase = to
	return c.change(from, to)
}

func (c *Controller) change(from, to core.Phase) core.PhaseChange {
	return core.PhaseChange{From: from, To: to, Round: c.round, RoundWins: c.RoundWins()}
}

func slotPtr(i int) *uint8 {
	slot := uint8(i)
	return &slot
}
