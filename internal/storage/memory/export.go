package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ringside/simulator/pkg/core"
)

// FormatVersion is written into every export.
const FormatVersion = "1"

// ReplayExport is the root JSON structure
type ReplayExport struct {
	Version      string        `json:"version"`
	MatchID      string        `json:"matchId"`
	Tag          string        `json:"tag,omitempty"`
	StartTime    time.Time     `json:"startTime"`
	TickRate     float64       `json:"tickRate"`
	CaptureEvery uint          `json:"captureEvery"`
	Ring         core.Rect     `json:"ring"`
	FloorY       float64       `json:"floorY"`
	MaxRounds    int           `json:"maxRounds"`
	Tuning       any           `json:"tuning,omitempty"`
	EndFrame     uint64        `json:"endFrame"`
	Duration     float64       `json:"duration"`
	Winner       *uint8        `json:"winner"`
	RoundWins    [2]int        `json:"roundWins"`
	Fighters     []FighterJSON `json:"fighters"`
	Events       [][]any       `json:"events"`
	Rounds       []RoundJSON   `json:"rounds"`
}

// FighterJSON holds one fighter and its sampled positions.
type FighterJSON struct {
	Slot      uint8   `json:"slot"`
	Name      string  `json:"name"`
	Side      string  `json:"side"`
	Positions [][]any `json:"positions"`
}

// RoundJSON summarises one round. Winner is -1 for a draw.
type RoundJSON struct {
	Round    int         `json:"round"`
	EndFrame uint64      `json:"endFrame"`
	Winner   int         `json:"winner"`
	Duration float64     `json:"duration"`
	Paths    [2]PathJSON `json:"paths"`
}

// PathJSON is a fighter's movement through a round.
type PathJSON struct {
	WKT      string  `json:"wkt"`
	Distance float64 `json:"distance"`
}

// exportJSON writes the match data to a (optionally gzipped) JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	matchID := strings.ReplaceAll(b.match.ID, " ", "_")
	matchID = strings.ReplaceAll(matchID, ":", "_")
	timestamp := b.match.StartTime.Format("20060102_150405")

	filename := fmt.Sprintf("%s_%s.json", matchID, timestamp)
	if b.cfg.CompressOutput {
		filename += ".gz"
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeExport(outputPath, export, b.cfg.CompressOutput); err != nil {
		return err
	}

	b.lastExportPath = outputPath
	b.lastExportMetadata = core.UploadMetadata{
		MatchID:  b.match.ID,
		Fighters: b.fighters[0].Fighter.Name + " vs " + b.fighters[1].Fighter.Name,
		Duration: export.Duration,
		Tag:      b.match.Tag,
	}
	return nil
}

func (b *Backend) buildExport() ReplayExport {
	export := ReplayExport{
		Version:      FormatVersion,
		MatchID:      b.match.ID,
		Tag:          b.match.Tag,
		StartTime:    b.match.StartTime,
		TickRate:     b.match.TickRate,
		CaptureEvery: b.match.CaptureEvery,
		Ring:         b.match.Ring,
		FloorY:       b.match.FloorY,
		MaxRounds:    b.match.MaxRounds,
		Tuning:       b.match.Tuning,
		Fighters:     make([]FighterJSON, 0, len(b.fighters)),
		Events:       make([][]any, 0, len(b.hits)),
		Rounds:       make([]RoundJSON, 0, len(b.rounds)),
	}

	var maxFrame uint64
	for _, rec := range b.fighters {
		fighter := FighterJSON{
			Slot:      rec.Fighter.Slot,
			Name:      rec.Fighter.Name,
			Side:      rec.Fighter.Side.String(),
			Positions: make([][]any, 0, len(rec.States)),
		}
		// Format: [frame, [x, y], facingRight, health, stamina, state, combo, round]
		for _, s := range rec.States {
			fighter.Positions = append(fighter.Positions, []any{
				s.CaptureFrame,
				[]float64{s.Position.X, s.Position.Y},
				boolToInt(s.FacingRight),
				s.Health,
				s.Stamina,
				s.State.String(),
				s.Combo,
				s.Round,
			})
			maxFrame = max(maxFrame, s.CaptureFrame)
		}
		export.Fighters = append(export.Fighters, fighter)
	}

	// Format: [frame, "hit", attacker, defender, kind, damage, combo, blocked, [x, y]]
	for _, e := range b.hits {
		export.Events = append(export.Events, []any{
			e.CaptureFrame,
			"hit",
			e.Attacker,
			e.Defender,
			e.Kind.String(),
			e.Damage,
			e.Combo,
			boolToInt(e.Blocked),
			[]float64{e.Impact.X, e.Impact.Y},
		})
		maxFrame = max(maxFrame, e.CaptureFrame)
	}

	for _, r := range b.rounds {
		round := RoundJSON{
			Round:    r.Round,
			EndFrame: r.EndFrame,
			Winner:   slotOrDraw(r.Winner),
			Duration: r.DurationSec,
		}
		for i, p := range r.Paths {
			round.Paths[i] = PathJSON{WKT: p.WKT, Distance: p.Distance}
		}
		export.Rounds = append(export.Rounds, round)
		// Format: [frame, "round", round, winner]
		export.Events = append(export.Events, []any{r.EndFrame, "round", r.Round, round.Winner})
		maxFrame = max(maxFrame, r.EndFrame)
	}

	if b.result != nil {
		export.Winner = b.result.Winner
		export.RoundWins = b.result.RoundWins
		export.Duration = b.result.Duration
		maxFrame = max(maxFrame, b.result.EndFrame)
	}
	export.EndFrame = maxFrame

	return export
}

func writeExport(path string, data ReplayExport, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	if compress {
		gzWriter := gzip.NewWriter(f)
		defer gzWriter.Close()
		w = gzWriter
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode replay: %w", err)
	}
	return nil
}

func slotOrDraw(slot *uint8) int {
	if slot == nil {
		return -1
	}
	return int(*slot)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
