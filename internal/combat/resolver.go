// Package combat mediates every cross-fighter effect. Fighters never touch
// each other; the resolver reads both, decides, then applies the result.
package combat

import (
	"math"

	"github.com/ringside/simulator/internal/combatant"
	"github.com/ringside/simulator/internal/rng"
	"github.com/ringside/simulator/pkg/core"
)

// Rules are the resolver's tunable constants.
type Rules struct {
	// ComboStep is the damage bonus per combo count: damage *= 1 + ComboStep*combo.
	ComboStep float64 `json:"comboStep" mapstructure:"comboStep"`
	// StaminaDrainRatio is stamina lost per point of damage taken.
	StaminaDrainRatio float64 `json:"staminaDrainRatio" mapstructure:"staminaDrainRatio"`

	BlockDamageFactor     float64 `json:"blockDamageFactor" mapstructure:"blockDamageFactor"`
	BlockReducesKnockback bool    `json:"blockReducesKnockback" mapstructure:"blockReducesKnockback"`
	BlockKnockbackFactor  float64 `json:"blockKnockbackFactor" mapstructure:"blockKnockbackFactor"`
}

// DefaultRules returns the stock resolver rules.
func DefaultRules() Rules {
	return Rules{
		ComboStep:             0.12,
		StaminaDrainRatio:     0.5,
		BlockDamageFactor:     0.3,
		BlockReducesKnockback: true,
		BlockKnockbackFactor:  0.4,
	}
}

type pair struct {
	attacker, defender *combatant.Combatant
}

// strike is a hit decided against the pre-resolution state of both fighters.
type strike struct {
	pair
	kind       core.AttackKind
	spec       combatant.AttackSpec
	combo      int
	activation uint64
	blocked    bool
}

// Resolver decides and applies hits. It remembers which attack activation
// already landed on which defender so an attack window deals damage once.
type Resolver struct {
	rules  Rules
	src    rng.Source
	landed map[pair]uint64
}

// New creates a resolver drawing damage rolls from src.
func New(rules Rules, src rng.Source) *Resolver {
	return &Resolver{
		rules:  rules,
		src:    src,
		landed: make(map[pair]uint64),
	}
}

// Rules returns the active rules.
func (r *Resolver) Rules() Rules { return r.rules }

// CanHit reports whether attacker is in an attack state with defender inside
// that attack's horizontal range.
func (r *Resolver) CanHit(attacker, defender *combatant.Combatant) bool {
	kind, ok := attacker.State().AttackKind()
	if !ok {
		return false
	}
	dx := math.Abs(defender.Position().X - attacker.Position().X)
	return dx <= attacker.Tuning().Attack(kind).Range
}

// ResolveHit resolves one direction on its own. A miss, or an activation
// that already landed on defender, changes nothing.
func (r *Resolver) ResolveHit(attacker, defender *combatant.Combatant) core.AttackResult {
	s, ok := r.plan(attacker, defender)
	if !ok {
		return miss(attacker, defender)
	}
	return r.apply(s)
}

// ResolvePair resolves a against b and b against a. Both directions are
// decided before either is applied, so a trade lands on both fighters and
// the outcome does not depend on argument order.
func (r *Resolver) ResolvePair(a, b *combatant.Combatant) [2]core.AttackResult {
	ab, okAB := r.plan(a, b)
	ba, okBA := r.plan(b, a)

	results := [2]core.AttackResult{miss(a, b), miss(b, a)}
	if okAB {
		results[0] = r.apply(ab)
	}
	if okBA {
		results[1] = r.apply(ba)
	}
	return results
}

// Reset forgets landed activations. Called when fighters are respawned.
func (r *Resolver) Reset() {
	clear(r.landed)
}

func (r *Resolver) plan(attacker, defender *combatant.Combatant) (strike, bool) {
	if !r.CanHit(attacker, defender) {
		return strike{}, false
	}
	p := pair{attacker: attacker, defender: defender}
	if last, ok := r.landed[p]; ok && last == attacker.Activation() {
		return strike{}, false
	}
	kind, _ := attacker.State().AttackKind()
	return strike{
		pair:       p,
		kind:       kind,
		spec:       attacker.Tuning().Attack(kind),
		combo:      attacker.Combo(),
		activation: attacker.Activation(),
		blocked:    defender.State() == core.StateBlocking,
	}, true
}

func (r *Resolver) apply(s strike) core.AttackResult {
	a, d := s.attacker, s.defender

	damage := rng.Between(r.src, s.spec.DamageMin, s.spec.DamageMax) * (1 + r.rules.ComboStep*float64(s.combo))
	knockback := damage * s.spec.Knockback
	if s.blocked {
		damage *= r.rules.BlockDamageFactor
		if r.rules.BlockReducesKnockback {
			knockback *= r.rules.BlockKnockbackFactor
		}
	}

	dir := d.Position().X - a.Position().X
	if dir == 0 {
		dir = 1
		if !a.FacingRight() {
			dir = -1
		}
	}

	d.TakeHit(combatant.Hit{
		Damage:       damage,
		KnockbackX:   math.Copysign(knockback, dir),
		StaminaDrain: damage * r.rules.StaminaDrainRatio,
		Stagger:      !s.blocked,
	})
	r.landed[s.pair] = s.activation
	if s.kind == core.AttackLight && !s.blocked {
		a.RegisterLightHit()
	}

	return core.AttackResult{
		Hit:      true,
		Damage:   damage,
		Impact:   a.Position().Midpoint(d.Position()),
		Kind:     s.kind,
		Combo:    s.combo,
		Blocked:  s.blocked,
		Attacker: a.Name(),
		Defender: d.Name(),
	}
}

func miss(attacker, defender *combatant.Combatant) core.AttackResult {
	res := core.AttackResult{Attacker: attacker.Name(), Defender: defender.Name()}
	if kind, ok := attacker.State().AttackKind(); ok {
		res.Kind = kind
	}
	return res
}
