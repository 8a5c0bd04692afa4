package model

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []any{
	&Match{},
	&Fighter{},
	&FighterState{},
	&HitEvent{},
	&RoundResult{},
}

// Match is one recorded match. MatchID is the externally visible identifier.
type Match struct {
	gorm.Model
	MatchID      string         `json:"matchId" gorm:"size:64;uniqueIndex:idx_match_match_id"`
	StartTime    time.Time      `json:"startTime" gorm:"index:idx_match_start"`
	Tag          string         `json:"tag" gorm:"size:127"`
	RingWidth    float64        `json:"ringWidth"`
	RingHeight   float64        `json:"ringHeight"`
	FloorY       float64        `json:"floorY"`
	MaxRounds    int            `json:"maxRounds"`
	CaptureEvery uint           `json:"captureEvery"`
	TickRate     float64        `json:"tickRate"`
	Tuning       datatypes.JSON `json:"tuning"`

	// set when the match ends
	EndFrame  uint64        `json:"endFrame"`
	Winner    sql.NullInt16 `json:"winner" gorm:"default:NULL"`
	RoundWins RoundWins     `json:"roundWins" gorm:"embedded;embeddedPrefix:wins_"`
	Rounds    int           `json:"rounds"`
	Duration  float64       `json:"duration"`
	Ended     bool          `json:"ended" gorm:"default:false"`

	Fighters     []Fighter
	RoundResults []RoundResult
}

func (*Match) TableName() string {
	return "matches"
}

// RoundWins counts rounds won per slot.
type RoundWins struct {
	Slot0 int `json:"slot0"`
	Slot1 int `json:"slot1"`
}

// Fighter is one of the two combatants of a match.
// Uses composite primary key (MatchID, Slot)
type Fighter struct {
	MatchID uint   `json:"matchId" gorm:"primaryKey;autoIncrement:false"`
	Slot    uint8  `json:"slot" gorm:"primaryKey;autoIncrement:false"`
	Name    string `json:"name" gorm:"size:64"`
	Side    string `json:"side" gorm:"size:16"` // human or ai
}

func (*Fighter) TableName() string {
	return "fighters"
}

// FighterState is a fighter sampled at one capture frame.
type FighterState struct {
	ID           uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time         time.Time `json:"time"`
	MatchID      uint      `json:"matchId" gorm:"index:idx_fighterstate_match_id"`
	CaptureFrame uint64    `json:"captureFrame" gorm:"index:idx_fighterstate_capture_frame"`
	Slot         uint8     `json:"slot"`
	Round        int       `json:"round"`

	PositionX   float64 `json:"positionX"`
	PositionY   float64 `json:"positionY"`
	FacingRight bool    `json:"facingRight"`
	Health      float64 `json:"health"`
	Stamina     float64 `json:"stamina"`
	State       string  `json:"state" gorm:"size:16"`
	Combo       int     `json:"combo"`
}

func (*FighterState) TableName() string {
	return "fighter_states"
}

// HitEvent is a landed attack.
type HitEvent struct {
	ID           uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time         time.Time `json:"time"`
	MatchID      uint      `json:"matchId" gorm:"index:idx_hitevent_match_id"`
	CaptureFrame uint64    `json:"captureFrame" gorm:"index:idx_hitevent_capture_frame"`
	Round        int       `json:"round"`

	Attacker uint8   `json:"attacker"`
	Defender uint8   `json:"defender"`
	Kind     string  `json:"kind" gorm:"size:16"` // light, heavy, grapple
	Damage   float64 `json:"damage"`
	Combo    int     `json:"combo"`
	Blocked  bool    `json:"blocked" gorm:"default:false"`
	ImpactX  float64 `json:"impactX"`
	ImpactY  float64 `json:"impactY"`
}

func (*HitEvent) TableName() string {
	return "hit_events"
}

// RoundResult closes one round. Paths holds both fighters' movement as
// [{wkt, distance}, {wkt, distance}].
type RoundResult struct {
	ID       uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	MatchID  uint           `json:"matchId" gorm:"index:idx_roundresult_match_id"`
	Round    int            `json:"round"`
	EndFrame uint64         `json:"endFrame"`
	Winner   sql.NullInt16  `json:"winner" gorm:"default:NULL"`
	Duration float64        `json:"duration"`
	Paths    datatypes.JSON `json:"paths"`
}

func (*RoundResult) TableName() string {
	return "round_results"
}
