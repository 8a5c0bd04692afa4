// Package ai drives the computer-controlled fighter. The policy only issues
// requests; the fighter's own gates decide whether they happen.
package ai

import (
	"math"

	"github.com/ringside/simulator/internal/rng"
	"github.com/ringside/simulator/pkg/core"
)

// Target is what the policy reads about a fighter.
type Target interface {
	Position() core.Vec2
	HealthPercent() float64
}

// Actor is the fighter the policy controls.
type Actor interface {
	Target
	FaceToward(x float64)
	Nudge(dvx float64) bool
	RequestAttack(kind core.AttackKind) bool
}

// Config shapes the policy's personality.
type Config struct {
	Aggression float64 `json:"aggression" mapstructure:"aggression"` // 0..1
	RiskTaking float64 `json:"riskTaking" mapstructure:"riskTaking"` // 0..1, shifts weight toward heavy and grapple

	// Decisions are re-evaluated after a random delay in [MinReaction, MaxReaction).
	MinReaction float64 `json:"minReaction" mapstructure:"minReaction"`
	MaxReaction float64 `json:"maxReaction" mapstructure:"maxReaction"`

	NudgeSpeed    float64 `json:"nudgeSpeed" mapstructure:"nudgeSpeed"`
	RetreatChance float64 `json:"retreatChance" mapstructure:"retreatChance"`
}

// DefaultConfig returns a moderately aggressive opponent.
func DefaultConfig() Config {
	return Config{
		Aggression:    0.6,
		RiskTaking:    0.4,
		MinReaction:   0.15,
		MaxReaction:   0.4,
		NudgeSpeed:    120,
		RetreatChance: 0.15,
	}
}

// Decision records what one evaluation asked for.
type Decision struct {
	Evaluated bool
	Engaged   bool
	Retreated bool
	Move      float64 // -1, 0 or 1
	Attack    core.AttackKind
	Accepted  bool // the fighter took the attack request
}

// Policy is a throttled rule-based opponent.
type Policy struct {
	cfg      Config
	src      rng.Source
	cooldown float64
}

// NewPolicy creates a policy drawing its dice from src.
func NewPolicy(cfg Config, src rng.Source) *Policy {
	return &Policy{cfg: cfg, src: src}
}

// Config returns the personality in use.
func (p *Policy) Config() Config { return p.cfg }

// Cooldown returns the time left before the next evaluation.
func (p *Policy) Cooldown() float64 { return p.cooldown }

// Reset makes the next Decide evaluate immediately.
func (p *Policy) Reset() { p.cooldown = 0 }

// Decide advances the reaction timer by dt and, when it has run out, picks
// an action for self against opp.
func (p *Policy) Decide(self Actor, opp Target, dt float64) Decision {
	p.cooldown -= dt
	if p.cooldown > 0 {
		return Decision{}
	}
	p.cooldown = rng.Between(p.src, p.cfg.MinReaction, p.cfg.MaxReaction)

	healthFactor := core.Clamp(1-opp.HealthPercent(), 0, 1)
	toward := direction(self.Position().X, opp.Position().X)

	if p.src.Float64() < p.cfg.Aggression*(0.4+0.6*healthFactor) {
		self.FaceToward(opp.Position().X)
		self.Nudge(toward * p.cfg.NudgeSpeed)
		kind := p.chooseAttack()
		return Decision{
			Evaluated: true,
			Engaged:   true,
			Move:      toward,
			Attack:    kind,
			Accepted:  self.RequestAttack(kind),
		}
	}

	if p.src.Float64() < p.cfg.RetreatChance {
		self.Nudge(-toward * p.cfg.NudgeSpeed)
		return Decision{Evaluated: true, Retreated: true, Move: -toward}
	}
	return Decision{Evaluated: true}
}

// chooseAttack favours light; risk moves weight to heavy and grapple while
// keeping grapple the least likely.
func (p *Policy) chooseAttack() core.AttackKind {
	risk := core.Clamp(p.cfg.RiskTaking, 0, 1)
	grapple := 0.05 + 0.15*risk
	heavy := 0.2 + 0.15*risk

	roll := p.src.Float64()
	switch {
	case roll < grapple:
		return core.AttackGrapple
	case roll < grapple+heavy:
		return core.AttackHeavy
	}
	return core.AttackLight
}

func direction(from, to float64) float64 {
	if to == from {
		return 0
	}
	return math.Copysign(1, to-from)
}
