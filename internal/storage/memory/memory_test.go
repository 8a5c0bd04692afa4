package memory

import (
	"errors"
	"testing"
	"time"

	"github.com/ringside/simulator/internal/config"
	"github.com/ringside/simulator/internal/storage"
	"github.com/ringside/simulator/pkg/core"
)

// Verify Backend implements storage.Backend interface
var _ storage.Backend = (*Backend)(nil)

// Verify Backend implements storage.Uploadable interface
var _ storage.Uploadable = (*Backend)(nil)

func testMatch() (*core.Match, [2]core.Fighter) {
	return &core.Match{
			ID:           "3f1c2b7e",
			StartTime:    time.Date(2026, 3, 14, 20, 15, 0, 0, time.UTC),
			Ring:         core.NewRect(0, 0, 800, 400),
			FloorY:       360,
			MaxRounds:    3,
			CaptureEvery: 6,
			TickRate:     60,
			Tag:          "Exhibition",
		}, [2]core.Fighter{
			{Slot: 0, Name: "player", Side: core.SideHuman},
			{Slot: 1, Name: "cpu", Side: core.SideAI},
		}
}

func TestNew(t *testing.T) {
	cfg := config.MemoryConfig{
		OutputDir:      "/tmp/test",
		CompressOutput: true,
	}
	b := New(cfg)

	if b == nil {
		t.Fatal("New returned nil")
	}
	if b.cfg.OutputDir != "/tmp/test" {
		t.Errorf("expected OutputDir=/tmp/test, got %s", b.cfg.OutputDir)
	}
	if !b.cfg.CompressOutput {
		t.Error("expected CompressOutput=true")
	}
}

func TestInitAndClose(t *testing.T) {
	b := New(config.MemoryConfig{})

	if err := b.Init(); err != nil {
		t.Errorf("Init failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestRecordWithoutMatch(t *testing.T) {
	b := New(config.MemoryConfig{})

	if err := b.RecordHit(&core.HitEvent{}); !errors.Is(err, storage.ErrNoMatch) {
		t.Errorf("RecordHit: expected ErrNoMatch, got %v", err)
	}
	if err := b.RecordFighterState(&core.FighterState{}); !errors.Is(err, storage.ErrNoMatch) {
		t.Errorf("RecordFighterState: expected ErrNoMatch, got %v", err)
	}
	if err := b.RecordRound(&core.RoundEvent{}); !errors.Is(err, storage.ErrNoMatch) {
		t.Errorf("RecordRound: expected ErrNoMatch, got %v", err)
	}
	if err := b.EndMatch(&core.MatchResult{}); !errors.Is(err, storage.ErrNoMatch) {
		t.Errorf("EndMatch: expected ErrNoMatch, got %v", err)
	}
}

func TestStartMatchResetsCollections(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	match, fighters := testMatch()

	if err := b.StartMatch(match, fighters); err != nil {
		t.Fatalf("StartMatch failed: %v", err)
	}
	_ = b.RecordHit(&core.HitEvent{CaptureFrame: 10})
	_ = b.RecordFighterState(&core.FighterState{Slot: 1, CaptureFrame: 6})

	if err := b.StartMatch(match, fighters); err != nil {
		t.Fatalf("StartMatch failed: %v", err)
	}
	if len(b.hits) != 0 {
		t.Errorf("expected hits to be reset, got %d", len(b.hits))
	}
	if len(b.fighters[1].States) != 0 {
		t.Errorf("expected states to be reset, got %d", len(b.fighters[1].States))
	}
	if b.fighters[1].Fighter.Name != "cpu" {
		t.Errorf("expected fighter cpu in slot 1, got %s", b.fighters[1].Fighter.Name)
	}
}

func TestRecordFighterState(t *testing.T) {
	b := New(config.MemoryConfig{})
	match, fighters := testMatch()
	_ = b.StartMatch(match, fighters)

	for frame := uint64(0); frame < 30; frame += 6 {
		if err := b.RecordFighterState(&core.FighterState{Slot: 0, CaptureFrame: frame}); err != nil {
			t.Fatalf("RecordFighterState failed: %v", err)
		}
	}

	if len(b.fighters[0].States) != 5 {
		t.Errorf("expected 5 states for slot 0, got %d", len(b.fighters[0].States))
	}
	if len(b.fighters[1].States) != 0 {
		t.Errorf("expected no states for slot 1, got %d", len(b.fighters[1].States))
	}

	if err := b.RecordFighterState(&core.FighterState{Slot: 2}); err == nil {
		t.Error("expected error for unknown slot")
	}
}

func TestEndMatchClosesRecording(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	match, fighters := testMatch()
	_ = b.StartMatch(match, fighters)

	if err := b.EndMatch(&core.MatchResult{EndFrame: 600}); err != nil {
		t.Fatalf("EndMatch failed: %v", err)
	}
	if err := b.RecordHit(&core.HitEvent{}); !errors.Is(err, storage.ErrNoMatch) {
		t.Errorf("expected ErrNoMatch after EndMatch, got %v", err)
	}
}
