// Package gormstore implements storage.Backend over GORM. Fighter states and
// hits are queued and written in batches by a background goroutine; match
// and round rows are written synchronously. On SQLite an in-memory database
// can be dumped to disk periodically with VACUUM INTO.
package gormstore

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/ringside/simulator/internal/database"
	"github.com/ringside/simulator/internal/model"
	"github.com/ringside/simulator/internal/model/convert"
	"github.com/ringside/simulator/internal/queue"
	"github.com/ringside/simulator/internal/storage"
	"github.com/ringside/simulator/pkg/core"
)

// Config holds configuration for the GORM storage backend.
type Config struct {
	FlushInterval time.Duration
	BatchSize     int

	// SQLite only: periodic VACUUM INTO dumps
	DumpPath     string
	DumpInterval time.Duration
}

// DefaultConfig flushes twice a second in batches of 2000 rows.
func DefaultConfig() Config {
	return Config{FlushInterval: 500 * time.Millisecond, BatchSize: 2000}
}

type queues struct {
	States *queue.Queue[model.FighterState]
	Hits   *queue.Queue[model.HitEvent]
}

func newQueues() *queues {
	return &queues{
		States: queue.New[model.FighterState](),
		Hits:   queue.New[model.HitEvent](),
	}
}

// Backend implements storage.Backend and storage.Loader with GORM.
type Backend struct {
	db     *gorm.DB
	cfg    Config
	logger *slog.Logger
	queues *queues

	mu    sync.Mutex
	match *model.Match

	// serializes batch writes between the writer loop and EndMatch
	writeMu sync.Mutex

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a new GORM storage backend over an open connection.
func New(db *gorm.DB, cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		db:     db,
		cfg:    cfg,
		logger: logger.With("component", "gormstore", "dialect", db.Dialector.Name()),
		queues: newQueues(),
	}
}

// Init runs schema migration and starts the background goroutines.
func (b *Backend) Init() error {
	if err := database.Migrate(b.db); err != nil {
		return err
	}

	b.stopChan = make(chan struct{})
	if b.cfg.FlushInterval > 0 {
		b.wg.Add(1)
		go b.writeLoop()
	}
	if b.dumpEnabled() && b.cfg.DumpInterval > 0 {
		b.wg.Add(1)
		go b.dumpLoop()
	}
	return nil
}

// Close stops the background goroutines, writes whatever is still queued
// and takes a final dump.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		b.wg.Wait()
		b.stopChan = nil
	}

	err := b.flush()
	if b.dumpEnabled() {
		err = errors.Join(err, database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath))
	}
	return err
}

// StartMatch inserts the match and both fighters.
func (b *Backend) StartMatch(match *core.Match, fighters [2]core.Fighter) error {
	row := convert.CoreToMatch(*match)
	for _, f := range fighters {
		row.Fighters = append(row.Fighters, convert.CoreToFighter(0, f))
	}
	if err := b.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}

	b.mu.Lock()
	b.match = &row
	b.mu.Unlock()

	b.logger.Debug("match stored", "matchId", match.ID, "rowId", row.ID)
	return nil
}

// EndMatch writes every queued record and closes the match row.
func (b *Backend) EndMatch(result *core.MatchResult) error {
	b.mu.Lock()
	row := b.match
	b.match = nil
	b.mu.Unlock()

	if row == nil {
		return fmt.Errorf("end match: %w", storage.ErrNoMatch)
	}

	if err := b.flush(); err != nil {
		return err
	}

	convert.ApplyMatchResult(row, *result)
	err := b.db.Model(&model.Match{}).Where("id = ?", row.ID).Updates(map[string]any{
		"end_frame":  row.EndFrame,
		"winner":     row.Winner,
		"wins_slot0": row.RoundWins.Slot0,
		"wins_slot1": row.RoundWins.Slot1,
		"rounds":     row.Rounds,
		"duration":   row.Duration,
		"ended":      true,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to close match: %w", err)
	}
	return nil
}

// RecordFighterState queues a sampled state.
func (b *Backend) RecordFighterState(s *core.FighterState) error {
	id, err := b.matchRowID()
	if err != nil {
		return fmt.Errorf("record fighter state: %w", err)
	}
	b.queues.States.Push(convert.CoreToFighterState(id, *s, time.Now()))
	return nil
}

// RecordHit queues a landed attack.
func (b *Backend) RecordHit(e *core.HitEvent) error {
	id, err := b.matchRowID()
	if err != nil {
		return fmt.Errorf("record hit: %w", err)
	}
	b.queues.Hits.Push(convert.CoreToHitEvent(id, *e, time.Now()))
	return nil
}

// RecordRound inserts a round result.
func (b *Backend) RecordRound(e *core.RoundEvent) error {
	id, err := b.matchRowID()
	if err != nil {
		return fmt.Errorf("record round: %w", err)
	}
	row := convert.CoreToRoundResult(id, *e)
	if err := b.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert round: %w", err)
	}
	return nil
}

// LoadMatch reads a recorded match back by its match ID.
func (b *Backend) LoadMatch(matchID string) (*storage.Replay, error) {
	var row model.Match
	err := b.db.
		Preload("Fighters", func(db *gorm.DB) *gorm.DB { return db.Order("slot") }).
		Preload("RoundResults", func(db *gorm.DB) *gorm.DB { return db.Order("round") }).
		Where("match_id = ?", matchID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", storage.ErrMatchNotFound, matchID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load match: %w", err)
	}

	replay := &storage.Replay{}
	replay.Match, replay.Result = convert.MatchToCore(row)
	for _, f := range row.Fighters {
		if int(f.Slot) >= len(replay.Fighters) {
			continue
		}
		fighter, err := convert.FighterToCore(f)
		if err != nil {
			return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
		}
		replay.Fighters[f.Slot] = fighter
	}
	for _, r := range row.RoundResults {
		round, err := convert.RoundResultToCore(r)
		if err != nil {
			return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
		}
		replay.Rounds = append(replay.Rounds, round)
	}

	var states []model.FighterState
	if err := b.db.Where("match_id = ?", row.ID).Order("capture_frame, slot").Find(&states).Error; err != nil {
		return nil, fmt.Errorf("failed to load fighter states: %w", err)
	}
	for _, s := range states {
		state, err := convert.FighterStateToCore(s)
		if err != nil {
			return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
		}
		replay.States = append(replay.States, state)
	}

	var hits []model.HitEvent
	if err := b.db.Where("match_id = ?", row.ID).Order("capture_frame, id").Find(&hits).Error; err != nil {
		return nil, fmt.Errorf("failed to load hits: %w", err)
	}
	for _, h := range hits {
		hit, err := convert.HitEventToCore(h)
		if err != nil {
			return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
		}
		replay.Hits = append(replay.Hits, hit)
	}

	return replay, nil
}

func (b *Backend) matchRowID() (uint, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.match == nil {
		return 0, storage.ErrNoMatch
	}
	return b.match.ID, nil
}

func (b *Backend) dumpEnabled() bool {
	return b.cfg.DumpPath != "" && b.db.Dialector.Name() == "sqlite"
}

// flush writes every queued row in batches.
func (b *Backend) flush() error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	for {
		batch := b.queues.States.Drain(b.cfg.BatchSize)
		if len(batch) == 0 {
			break
		}
		if err := b.db.Create(&batch).Error; err != nil {
			return fmt.Errorf("failed to insert %d fighter states: %w", len(batch), err)
		}
	}
	for {
		batch := b.queues.Hits.Drain(b.cfg.BatchSize)
		if len(batch) == 0 {
			break
		}
		if err := b.db.Create(&batch).Error; err != nil {
			return fmt.Errorf("failed to insert %d hits: %w", len(batch), err)
		}
	}
	return nil
}

func (b *Backend) writeLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			states, hits := b.queues.States.Len(), b.queues.Hits.Len()
			if states+hits == 0 {
				continue
			}
			if err := b.flush(); err != nil {
				b.logger.Error("batch write failed", "error", err)
				continue
			}
			b.logger.Debug("batch written", "states", states, "hits", hits, "duration", time.Since(start))
		}
	}
}

// dumpLoop periodically dumps the in-memory SQLite database to disk via VACUUM INTO.
func (b *Backend) dumpLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath); err != nil {
				b.logger.Error("dump to disk failed", "error", err)
			} else {
				b.logger.Debug("dumped to disk", "path", b.cfg.DumpPath, "duration", time.Since(start))
			}
		}
	}
}
