package convert

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringside/simulator/internal/model"
	"github.com/ringside/simulator/pkg/core"
)

// Round-trip: Core → GORM → Core
func TestMatchRoundTrip(t *testing.T) {
	start := time.Now().Truncate(time.Millisecond)
	original := core.Match{
		ID:           "m-1",
		StartTime:    start,
		Ring:         core.NewRect(0, 0, 640, 360),
		FloorY:       320,
		MaxRounds:    5,
		CaptureEvery: 3,
		TickRate:     60,
		Tag:          "Exhibition",
	}

	stored := CoreToMatch(original)
	back, result := MatchToCore(stored)

	assert.Nil(t, result, "open match has no result")
	assert.Equal(t, original.ID, back.ID)
	assert.Equal(t, original.Ring, back.Ring)
	assert.Equal(t, original.FloorY, back.FloorY)
	assert.Equal(t, original.MaxRounds, back.MaxRounds)
	assert.Equal(t, original.CaptureEvery, back.CaptureEvery)
	assert.Equal(t, json.RawMessage("{}"), back.Tuning)
}

func TestMatchToCore_Ended(t *testing.T) {
	stored := CoreToMatch(core.Match{ID: "m-2"})
	ApplyMatchResult(&stored, core.MatchResult{EndFrame: 10, RoundWins: [2]int{1, 1}, Rounds: 3})

	_, result := MatchToCore(stored)
	require.NotNil(t, result)
	assert.Nil(t, result.Winner, "equal wins is a drawn match")
	assert.Equal(t, [2]int{1, 1}, result.RoundWins)
}

func TestFighterRoundTrip(t *testing.T) {
	for _, f := range []core.Fighter{
		{Slot: 0, Name: "player", Side: core.SideHuman},
		{Slot: 1, Name: "cpu", Side: core.SideAI},
	} {
		back, err := FighterToCore(CoreToFighter(1, f))
		require.NoError(t, err)
		assert.Equal(t, f, back)
	}
}

func TestFighterStateRoundTrip(t *testing.T) {
	original := core.FighterState{
		Slot: 0, CaptureFrame: 42, Round: 3,
		Position: core.Vec2{X: 120, Y: 280}, FacingRight: true,
		Health: 70.5, Stamina: 33, State: core.StateJumping, Combo: 2,
	}
	back, err := FighterStateToCore(CoreToFighterState(1, original, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, original, back)
}

func TestHitEventRoundTrip(t *testing.T) {
	original := core.HitEvent{
		CaptureFrame: 7, Round: 1, Attacker: 1, Defender: 0,
		Kind: core.AttackHeavy, Damage: 23, Combo: 0,
		Impact: core.Vec2{X: 300, Y: 360},
	}
	back, err := HitEventToCore(CoreToHitEvent(1, original, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, original, back)
}

func TestRoundResultRoundTrip(t *testing.T) {
	winner := uint8(0)
	original := core.RoundEvent{
		Round: 2, EndFrame: 1800, Winner: &winner, DurationSec: 30,
		Paths: [2]core.Path{
			{WKT: "LINESTRING(200 360,260 360)", Distance: 60},
			{WKT: "LINESTRING(600 360,540 360)", Distance: 60},
		},
	}
	back, err := RoundResultToCore(CoreToRoundResult(1, original))
	require.NoError(t, err)
	assert.Equal(t, original, back)
}

func TestUnknownNamesAreRejected(t *testing.T) {
	_, err := FighterStateToCore(model.FighterState{State: "DANCING"})
	assert.ErrorIs(t, err, core.ErrUnknownName)

	_, err = HitEventToCore(model.HitEvent{Kind: "uppercut"})
	assert.ErrorIs(t, err, core.ErrUnknownName)

	_, err = FighterToCore(model.Fighter{Side: "robot"})
	assert.ErrorIs(t, err, core.ErrUnknownName)
}

func TestRoundResultToCore_CorruptPaths(t *testing.T) {
	_, err := RoundResultToCore(model.RoundResult{Round: 2, Paths: []byte(`{"wkt":`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "round 2 paths")
}
