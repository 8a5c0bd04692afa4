package memory

import (
	"fmt"
	"sync"

	"github.com/ringside/simulator/internal/config"
	"github.com/ringside/simulator/internal/storage"
	"github.com/ringside/simulator/pkg/core"
)

// FighterRecord groups a fighter with its sampled states.
type FighterRecord struct {
	Fighter core.Fighter
	States  []core.FighterState
}

// Backend stores match data in memory and exports to JSON
type Backend struct {
	cfg   config.MemoryConfig
	match *core.Match

	fighters [2]*FighterRecord
	hits     []core.HitEvent
	rounds   []core.RoundEvent
	result   *core.MatchResult

	lastExportPath     string
	lastExportMetadata core.UploadMetadata

	mu sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartMatch begins recording a new match, discarding anything held from
// the previous one.
func (b *Backend) StartMatch(match *core.Match, fighters [2]core.Fighter) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.match = match
	for i, f := range fighters {
		b.fighters[i] = &FighterRecord{Fighter: f, States: make([]core.FighterState, 0)}
	}
	b.hits = nil
	b.rounds = nil
	b.result = nil

	return nil
}

// EndMatch finalizes and exports the match data
func (b *Backend) EndMatch(result *core.MatchResult) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.match == nil {
		return fmt.Errorf("end match: %w", storage.ErrNoMatch)
	}
	b.result = result

	if err := b.exportJSON(); err != nil {
		return err
	}
	b.match = nil
	return nil
}

// RecordFighterState appends a sampled state to its fighter.
func (b *Backend) RecordFighterState(s *core.FighterState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.match == nil {
		return fmt.Errorf("record fighter state: %w", storage.ErrNoMatch)
	}
	if int(s.Slot) >= len(b.fighters) {
		return fmt.Errorf("record fighter state: unknown slot %d", s.Slot)
	}
	rec := b.fighters[s.Slot]
	rec.States = append(rec.States, *s)
	return nil
}

// RecordHit records a landed attack
func (b *Backend) RecordHit(e *core.HitEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.match == nil {
		return fmt.Errorf("record hit: %w", storage.ErrNoMatch)
	}
	b.hits = append(b.hits, *e)
	return nil
}

// RecordRound records a finished round
func (b *Backend) RecordRound(e *core.RoundEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.match == nil {
		return fmt.Errorf("record round: %w", storage.ErrNoMatch)
	}
	b.rounds = append(b.rounds, *e)
	return nil
}

// GetExportedFilePath returns the path of the last exported replay.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetExportMetadata returns metadata about the last exported replay.
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportMetadata
}
