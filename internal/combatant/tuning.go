package combatant

import (
	"errors"
	"fmt"

	"github.com/ringside/simulator/pkg/core"
)

// ErrInvalidTuning is returned when a tuning table breaks the move ordering
// or the between-round restore floors.
var ErrInvalidTuning = errors.New("invalid tuning")

// AttackSpec holds the constants for one attack move. Times are seconds,
// distances are arena units.
type AttackSpec struct {
	Cost      float64 `json:"cost" mapstructure:"cost"`
	Cooldown  float64 `json:"cooldown" mapstructure:"cooldown"`
	Duration  float64 `json:"duration" mapstructure:"duration"`
	Range     float64 `json:"range" mapstructure:"range"`
	DamageMin float64 `json:"damageMin" mapstructure:"damageMin"`
	DamageMax float64 `json:"damageMax" mapstructure:"damageMax"`
	// Knockback is the horizontal impulse per point of damage dealt.
	Knockback float64 `json:"knockback" mapstructure:"knockback"`
}

// Tuning is the fighter constant table shared by both fighters.
type Tuning struct {
	MaxHealth  float64 `json:"maxHealth" mapstructure:"maxHealth"`
	MaxStamina float64 `json:"maxStamina" mapstructure:"maxStamina"`

	Gravity        float64 `json:"gravity" mapstructure:"gravity"`
	WalkSpeed      float64 `json:"walkSpeed" mapstructure:"walkSpeed"`
	AirControl     float64 `json:"airControl" mapstructure:"airControl"` // per-second blend toward walk speed while airborne
	GroundFriction float64 `json:"groundFriction" mapstructure:"groundFriction"`
	AirFriction    float64 `json:"airFriction" mapstructure:"airFriction"`

	JumpImpulse  float64 `json:"jumpImpulse" mapstructure:"jumpImpulse"`
	JumpCost     float64 `json:"jumpCost" mapstructure:"jumpCost"`
	DashImpulse  float64 `json:"dashImpulse" mapstructure:"dashImpulse"`
	DashCost     float64 `json:"dashCost" mapstructure:"dashCost"`
	DashCooldown float64 `json:"dashCooldown" mapstructure:"dashCooldown"`

	StaminaRegen float64 `json:"staminaRegen" mapstructure:"staminaRegen"` // per second while not attacking
	HitStagger   float64 `json:"hitStagger" mapstructure:"hitStagger"`
	ComboWindow  float64 `json:"comboWindow" mapstructure:"comboWindow"`

	Light   AttackSpec `json:"light" mapstructure:"light"`
	Heavy   AttackSpec `json:"heavy" mapstructure:"heavy"`
	Grapple AttackSpec `json:"grapple" mapstructure:"grapple"`

	// Fractions of max restored at least between rounds.
	RoundHealthFloor  float64 `json:"roundHealthFloor" mapstructure:"roundHealthFloor"`
	RoundStaminaFloor float64 `json:"roundStaminaFloor" mapstructure:"roundStaminaFloor"`
}

// DefaultTuning returns the stock fighter table.
func DefaultTuning() Tuning {
	return Tuning{
		MaxHealth:  100,
		MaxStamina: 100,

		Gravity:        1800,
		WalkSpeed:      240,
		AirControl:     4,
		GroundFriction: 10,
		AirFriction:    1.5,

		JumpImpulse:  650,
		JumpCost:     10,
		DashImpulse:  560,
		DashCost:     15,
		DashCooldown: 0.5,

		StaminaRegen: 18,
		HitStagger:   0.3,
		ComboWindow:  1.2,

		Light:   AttackSpec{Cost: 6, Cooldown: 0.35, Duration: 0.22, Range: 70, DamageMin: 8, DamageMax: 14, Knockback: 12},
		Heavy:   AttackSpec{Cost: 18, Cooldown: 0.8, Duration: 0.45, Range: 90, DamageMin: 18, DamageMax: 28, Knockback: 16},
		Grapple: AttackSpec{Cost: 28, Cooldown: 1.2, Duration: 0.5, Range: 55, DamageMin: 26, DamageMax: 38, Knockback: 10},

		RoundHealthFloor:  0.35,
		RoundStaminaFloor: 0.6,
	}
}

// Attack returns the spec for kind.
func (t *Tuning) Attack(kind core.AttackKind) AttackSpec {
	switch kind {
	case core.AttackHeavy:
		return t.Heavy
	case core.AttackGrapple:
		return t.Grapple
	}
	return t.Light
}

// Validate checks the table for values the state machine cannot honour.
func (t *Tuning) Validate() error {
	if t.MaxHealth <= 0 || t.MaxStamina <= 0 {
		return fmt.Errorf("%w: max health and stamina must be positive", ErrInvalidTuning)
	}
	if t.Gravity <= 0 || t.JumpImpulse <= 0 {
		return fmt.Errorf("%w: gravity and jump impulse must be positive", ErrInvalidTuning)
	}
	for _, kind := range core.AttackKinds {
		a := t.Attack(kind)
		if a.Cost < 0 || a.Duration <= 0 || a.Range <= 0 {
			return fmt.Errorf("%w: %s needs positive duration and range", ErrInvalidTuning, kind)
		}
		if a.Cooldown < a.Duration {
			return fmt.Errorf("%w: %s cooldown %.2fs is shorter than its duration %.2fs", ErrInvalidTuning, kind, a.Cooldown, a.Duration)
		}
		if a.DamageMin <= 0 || a.DamageMax < a.DamageMin {
			return fmt.Errorf("%w: %s damage range [%v, %v]", ErrInvalidTuning, kind, a.DamageMin, a.DamageMax)
		}
	}
	l, h, g := t.Light, t.Heavy, t.Grapple
	switch {
	case !(l.Cost < h.Cost && h.Cost < g.Cost):
		return fmt.Errorf("%w: costs must rise light < heavy < grapple", ErrInvalidTuning)
	case !(l.Cooldown < h.Cooldown && h.Cooldown < g.Cooldown):
		return fmt.Errorf("%w: cooldowns must rise light < heavy < grapple", ErrInvalidTuning)
	case !(l.Duration < h.Duration):
		return fmt.Errorf("%w: heavy must last longer than light", ErrInvalidTuning)
	case !(h.Range > l.Range && h.Range > g.Range):
		return fmt.Errorf("%w: heavy must have the longest range", ErrInvalidTuning)
	case !(l.DamageMax <= h.DamageMax && h.DamageMax <= g.DamageMax):
		return fmt.Errorf("%w: top damage must rise light <= heavy <= grapple", ErrInvalidTuning)
	}
	if t.RoundHealthFloor < 0.10 || t.RoundHealthFloor >= 1 {
		return fmt.Errorf("%w: round health floor %.2f outside [0.10, 1)", ErrInvalidTuning, t.RoundHealthFloor)
	}
	if t.RoundStaminaFloor < 0.25 || t.RoundStaminaFloor > 0.60 {
		return fmt.Errorf("%w: round stamina floor %.2f outside [0.25, 0.60]", ErrInvalidTuning, t.RoundStaminaFloor)
	}
	return nil
}
