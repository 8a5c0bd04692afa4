package core

import "time"

// Match is the recording header for one match.
type Match struct {
	ID           string    `json:"id"`
	StartTime    time.Time `json:"startTime"`
	Ring         Rect      `json:"ring"`
	FloorY       float64   `json:"floorY"`
	MaxRounds    int       `json:"maxRounds"`
	CaptureEvery uint      `json:"captureEvery"` // frames between sampled fighter states
	TickRate     float64   `json:"tickRate"`
	Tuning       any       `json:"tuning,omitempty"`
	Tag          string    `json:"tag,omitempty"`
}

// Fighter registers one combatant with a recording. Slot is 0 or 1.
type Fighter struct {
	Slot uint8  `json:"slot"`
	Name string `json:"name"`
	Side Side   `json:"side"`
}

// FighterState is one sampled frame of a fighter.
type FighterState struct {
	Slot         uint8   `json:"slot"`
	CaptureFrame uint64  `json:"frame"`
	Round        int     `json:"round"`
	Position     Vec2    `json:"position"`
	FacingRight  bool    `json:"facingRight"`
	Health       float64 `json:"health"`
	Stamina      float64 `json:"stamina"`
	State        State   `json:"state"`
	Combo        int     `json:"combo"`
}

// HitEvent is a landed attack as stored in a recording.
type HitEvent struct {
	CaptureFrame uint64     `json:"frame"`
	Round        int        `json:"round"`
	Attacker     uint8      `json:"attacker"`
	Defender     uint8      `json:"defender"`
	Kind         AttackKind `json:"kind"`
	Damage       float64    `json:"damage"`
	Combo        int        `json:"combo"`
	Blocked      bool       `json:"blocked"`
	Impact       Vec2       `json:"impact"`
}

// RoundEvent closes one round in a recording. Winner is nil for a draw.
type RoundEvent struct {
	Round       int     `json:"round"`
	EndFrame    uint64  `json:"endFrame"`
	Winner      *uint8  `json:"winner,omitempty"`
	DurationSec float64 `json:"duration"`
	Paths       [2]Path `json:"paths"`
}

// Path summarises a fighter's movement through one round.
type Path struct {
	WKT      string  `json:"wkt,omitempty"`
	Distance float64 `json:"distance"`
}

// MatchResult closes a recording.
type MatchResult struct {
	EndFrame  uint64  `json:"endFrame"`
	Winner    *uint8  `json:"winner,omitempty"`
	RoundWins [2]int  `json:"roundWins"`
	Rounds    int     `json:"rounds"`
	Duration  float64 `json:"duration"`
}

// UploadMetadata describes an exported replay for the upload client.
type UploadMetadata struct {
	MatchID  string
	Fighters string
	Duration float64
	Tag      string
}
