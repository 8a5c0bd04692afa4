package influx

import (
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/ringside/simulator/pkg/core"
)

func winnerTag(w *uint8) string {
	if w == nil {
		return "draw"
	}
	return strconv.Itoa(int(*w))
}

// HitPoint builds a "hit" point for bucket match_data.
func HitPoint(matchID string, e core.HitEvent, at time.Time) *influxdb2_write.Point {
	return influxdb2.NewPoint(
		"hit",
		map[string]string{
			"matchId":  matchID,
			"attacker": strconv.Itoa(int(e.Attacker)),
			"kind":     e.Kind.String(),
			"blocked":  strconv.FormatBool(e.Blocked),
		},
		map[string]any{
			"damage": e.Damage,
			"combo":  e.Combo,
			"round":  e.Round,
			"frame":  int64(e.CaptureFrame),
		},
		at,
	)
}

// RoundPoint builds a "round" point for bucket match_data.
func RoundPoint(matchID string, e core.RoundEvent, at time.Time) *influxdb2_write.Point {
	return influxdb2.NewPoint(
		"round",
		map[string]string{
			"matchId": matchID,
			"winner":  winnerTag(e.Winner),
		},
		map[string]any{
			"round":     e.Round,
			"duration":  e.DurationSec,
			"distance0": e.Paths[0].Distance,
			"distance1": e.Paths[1].Distance,
		},
		at,
	)
}

// MatchPoint builds a "match" point for bucket match_data.
func MatchPoint(matchID string, r core.MatchResult, at time.Time) *influxdb2_write.Point {
	return influxdb2.NewPoint(
		"match",
		map[string]string{
			"matchId": matchID,
			"winner":  winnerTag(r.Winner),
		},
		map[string]any{
			"rounds":   r.Rounds,
			"wins0":    r.RoundWins[0],
			"wins1":    r.RoundWins[1],
			"duration": r.Duration,
			"frames":   int64(r.EndFrame),
		},
		at,
	)
}

// PerformancePoint builds a "throughput" point for bucket sim_performance.
func PerformancePoint(matchID string, frames uint64, wall time.Duration, at time.Time) *influxdb2_write.Point {
	fps := 0.0
	if wall > 0 {
		fps = float64(frames) / wall.Seconds()
	}
	return influxdb2.NewPoint(
		"throughput",
		map[string]string{"matchId": matchID},
		map[string]any{
			"frames":       int64(frames),
			"wallSeconds":  wall.Seconds(),
			"framesPerSec": fps,
		},
		at,
	)
}
