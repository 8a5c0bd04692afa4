// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"database/sql"
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/ringside/simulator/internal/model"
	"github.com/ringside/simulator/pkg/core"
)

// slotToNull converts an optional slot to a nullable column. nil is a draw.
func slotToNull(slot *uint8) sql.NullInt16 {
	if slot == nil {
		return sql.NullInt16{}
	}
	return sql.NullInt16{Int16: int16(*slot), Valid: true}
}

// toJSON marshals v for a JSON column, storing "{}" for nil.
func toJSON(v any) datatypes.JSON {
	if v == nil {
		return datatypes.JSON("{}")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(data)
}

// CoreToMatch converts a core.Match to a GORM model.Match.
// core.Match.ID maps to GORM Match.MatchID; the row ID is assigned on insert.
func CoreToMatch(m core.Match) model.Match {
	return model.Match{
		MatchID:      m.ID,
		StartTime:    m.StartTime,
		Tag:          m.Tag,
		RingWidth:    m.Ring.Width(),
		RingHeight:   m.Ring.Height(),
		FloorY:       m.FloorY,
		MaxRounds:    m.MaxRounds,
		CaptureEvery: m.CaptureEvery,
		TickRate:     m.TickRate,
		Tuning:       toJSON(m.Tuning),
	}
}

// ApplyMatchResult copies the closing result onto a stored match.
func ApplyMatchResult(m *model.Match, r core.MatchResult) {
	m.EndFrame = r.EndFrame
	m.Winner = slotToNull(r.Winner)
	m.RoundWins = model.RoundWins{Slot0: r.RoundWins[0], Slot1: r.RoundWins[1]}
	m.Rounds = r.Rounds
	m.Duration = r.Duration
	m.Ended = true
}

// CoreToFighter converts a core.Fighter to a GORM model.Fighter.
func CoreToFighter(matchID uint, f core.Fighter) model.Fighter {
	return model.Fighter{
		MatchID: matchID,
		Slot:    f.Slot,
		Name:    f.Name,
		Side:    f.Side.String(),
	}
}

// CoreToFighterState converts a core.FighterState to a GORM model.FighterState.
func CoreToFighterState(matchID uint, s core.FighterState, at time.Time) model.FighterState {
	return model.FighterState{
		Time:         at,
		MatchID:      matchID,
		CaptureFrame: s.CaptureFrame,
		Slot:         s.Slot,
		Round:        s.Round,
		PositionX:    s.Position.X,
		PositionY:    s.Position.Y,
		FacingRight:  s.FacingRight,
		Health:       s.Health,
		Stamina:      s.Stamina,
		State:        s.State.String(),
		Combo:        s.Combo,
	}
}

// CoreToHitEvent converts a core.HitEvent to a GORM model.HitEvent.
func CoreToHitEvent(matchID uint, e core.HitEvent, at time.Time) model.HitEvent {
	return model.HitEvent{
		Time:         at,
		MatchID:      matchID,
		CaptureFrame: e.CaptureFrame,
		Round:        e.Round,
		Attacker:     e.Attacker,
		Defender:     e.Defender,
		Kind:         e.Kind.String(),
		Damage:       e.Damage,
		Combo:        e.Combo,
		Blocked:      e.Blocked,
		ImpactX:      e.Impact.X,
		ImpactY:      e.Impact.Y,
	}
}

// CoreToRoundResult converts a core.RoundEvent to a GORM model.RoundResult.
func CoreToRoundResult(matchID uint, e core.RoundEvent) model.RoundResult {
	return model.RoundResult{
		MatchID:  matchID,
		Round:    e.Round,
		EndFrame: e.EndFrame,
		Winner:   slotToNull(e.Winner),
		Duration: e.DurationSec,
		Paths:    toJSON(e.Paths),
	}
}
