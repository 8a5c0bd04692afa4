package core

import (
	"errors"
	"fmt"
)

// ErrUnknownName is returned when decoding an enum name that does not exist.
var ErrUnknownName = errors.New("unknown name")

func nameOf(names []string, i uint8, fallback string) string {
	if int(i) < len(names) {
		return names[i]
	}
	return fallback
}

func parseName(what string, names []string, name string) (uint8, error) {
	for i, n := range names {
		if n == name {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrUnknownName, what, name)
}

// State is a fighter's current action state.
type State uint8

const (
	StateIdle State = iota
	StateWalking
	StateJumping
	StateFalling
	StateAttackLight
	StateAttackHeavy
	StateAttackGrapple
	StateBlocking
	StateHit
)

var stateNames = [...]string{
	StateIdle:          "IDLE",
	StateWalking:       "WALKING",
	StateJumping:       "JUMPING",
	StateFalling:       "FALLING",
	StateAttackLight:   "ATTACK_LIGHT",
	StateAttackHeavy:   "ATTACK_HEAVY",
	StateAttackGrapple: "ATTACK_GRAPPLE",
	StateBlocking:      "BLOCKING",
	StateHit:           "HIT",
}

func (s State) String() string { return nameOf(stateNames[:], uint8(s), "UNKNOWN") }

// ParseState returns the state with the given name.
func ParseState(name string) (State, error) {
	i, err := parseName("state", stateNames[:], name)
	return State(i), err
}

// IsAttacking reports whether s is one of the ATTACK_* states.
func (s State) IsAttacking() bool {
	return s == StateAttackLight || s == StateAttackHeavy || s == StateAttackGrapple
}

// AttackKind returns the attack type for an ATTACK_* state.
func (s State) AttackKind() (AttackKind, bool) {
	switch s {
	case StateAttackLight:
		return AttackLight, true
	case StateAttackHeavy:
		return AttackHeavy, true
	case StateAttackGrapple:
		return AttackGrapple, true
	}
	return 0, false
}

// MarshalText encodes the state by name so replays stay readable.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(text []byte) (err error) {
	*s, err = ParseState(string(text))
	return err
}

// AttackKind identifies one of the three attack moves.
type AttackKind uint8

const (
	AttackLight AttackKind = iota
	AttackHeavy
	AttackGrapple
)

// AttackKinds lists every attack in ascending cost order.
var AttackKinds = []AttackKind{AttackLight, AttackHeavy, AttackGrapple}

var kindNames = [...]string{
	AttackLight:   "light",
	AttackHeavy:   "heavy",
	AttackGrapple: "grapple",
}

func (k AttackKind) String() string { return nameOf(kindNames[:], uint8(k), "unknown") }

// ParseAttackKind returns the attack with the given name.
func ParseAttackKind(name string) (AttackKind, error) {
	i, err := parseName("attack kind", kindNames[:], name)
	return AttackKind(i), err
}

// MarshalText encodes the kind by name.
func (k AttackKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *AttackKind) UnmarshalText(text []byte) (err error) {
	*k, err = ParseAttackKind(string(text))
	return err
}

// State returns the fighter state entered when this attack is thrown.
func (k AttackKind) State() State {
	switch k {
	case AttackHeavy:
		return StateAttackHeavy
	case AttackGrapple:
		return StateAttackGrapple
	}
	return StateAttackLight
}

// Phase is the match controller's current phase.
type Phase uint8

const (
	PhaseIntro Phase = iota
	PhaseFight
	PhaseRoundEnd
	PhaseMatchEnd
	PhasePaused
)

var phaseNames = [...]string{
	PhaseIntro:    "INTRO",
	PhaseFight:    "FIGHT",
	PhaseRoundEnd: "ROUND_END",
	PhaseMatchEnd: "MATCH_END",
	PhasePaused:   "PAUSED",
}

func (p Phase) String() string { return nameOf(phaseNames[:], uint8(p), "UNKNOWN") }

// ParsePhase returns the phase with the given name.
func ParsePhase(name string) (Phase, error) {
	i, err := parseName("phase", phaseNames[:], name)
	return Phase(i), err
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(text []byte) (err error) {
	*p, err = ParsePhase(string(text))
	return err
}

// Side says who drives a fighter.
type Side uint8

const (
	SideHuman Side = iota
	SideAI
)

var sideNames = [...]string{
	SideHuman: "human",
	SideAI:    "ai",
}

func (s Side) String() string { return nameOf(sideNames[:], uint8(s), "human") }

// ParseSide returns the side with the given name.
func ParseSide(name string) (Side, error) {
	i, err := parseName("side", sideNames[:], name)
	return Side(i), err
}

// MarshalText encodes the side by name.
func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Side) UnmarshalText(text []byte) (err error) {
	*s, err = ParseSide(string(text))
	return err
}
