package convert

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ringside/simulator/internal/model"
	"github.com/ringside/simulator/pkg/core"
)

func nullToSlot(n sql.NullInt16) *uint8 {
	if !n.Valid {
		return nil
	}
	slot := uint8(n.Int16)
	return &slot
}

// MatchToCore converts a GORM Match to a core.Match. The result is non-nil
// only for a match that has ended.
func MatchToCore(m model.Match) (core.Match, *core.MatchResult) {
	match := core.Match{
		ID:           m.MatchID,
		StartTime:    m.StartTime,
		Ring:         core.NewRect(0, 0, m.RingWidth, m.RingHeight),
		FloorY:       m.FloorY,
		MaxRounds:    m.MaxRounds,
		CaptureEvery: m.CaptureEvery,
		TickRate:     m.TickRate,
		Tag:          m.Tag,
	}
	if len(m.Tuning) > 0 {
		match.Tuning = json.RawMessage(m.Tuning)
	}
	if !m.Ended {
		return match, nil
	}
	return match, &core.MatchResult{
		EndFrame:  m.EndFrame,
		Winner:    nullToSlot(m.Winner),
		RoundWins: [2]int{m.RoundWins.Slot0, m.RoundWins.Slot1},
		Rounds:    m.Rounds,
		Duration:  m.Duration,
	}
}

// FighterToCore converts a GORM Fighter to a core.Fighter.
func FighterToCore(f model.Fighter) (core.Fighter, error) {
	side, err := core.ParseSide(f.Side)
	if err != nil {
		return core.Fighter{}, fmt.Errorf("fighter slot %d: %w", f.Slot, err)
	}
	return core.Fighter{Slot: f.Slot, Name: f.Name, Side: side}, nil
}

// FighterStateToCore converts a GORM FighterState to a core.FighterState.
func FighterStateToCore(s model.FighterState) (core.FighterState, error) {
	state, err := core.ParseState(s.State)
	if err != nil {
		return core.FighterState{}, fmt.Errorf("fighter state %d: %w", s.ID, err)
	}
	return core.FighterState{
		Slot:         s.Slot,
		CaptureFrame: s.CaptureFrame,
		Round:        s.Round,
		Position:     core.Vec2{X: s.PositionX, Y: s.PositionY},
		FacingRight:  s.FacingRight,
		Health:       s.Health,
		Stamina:      s.Stamina,
		State:        state,
		Combo:        s.Combo,
	}, nil
}

// HitEventToCore converts a GORM HitEvent to a core.HitEvent.
func HitEventToCore(e model.HitEvent) (core.HitEvent, error) {
	kind, err := core.ParseAttackKind(e.Kind)
	if err != nil {
		return core.HitEvent{}, fmt.Errorf("hit %d: %w", e.ID, err)
	}
	return core.HitEvent{
		CaptureFrame: e.CaptureFrame,
		Round:        e.Round,
		Attacker:     e.Attacker,
		Defender:     e.Defender,
		Kind:         kind,
		Damage:       e.Damage,
		Combo:        e.Combo,
		Blocked:      e.Blocked,
		Impact:       core.Vec2{X: e.ImpactX, Y: e.ImpactY},
	}, nil
}

// RoundResultToCore converts a GORM RoundResult to a core.RoundEvent.
func RoundResultToCore(r model.RoundResult) (core.RoundEvent, error) {
	e := core.RoundEvent{
		Round:       r.Round,
		EndFrame:    r.EndFrame,
		Winner:      nullToSlot(r.Winner),
		DurationSec: r.Duration,
	}
	if len(r.Paths) > 0 {
		if err := json.Unmarshal(r.Paths, &e.Paths); err != nil {
			return core.RoundEvent{}, fmt.Errorf("round %d paths: %w", r.Round, err)
		}
	}
	return e, nil
}
