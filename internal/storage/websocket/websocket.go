package websocket

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/ringside/simulator/internal/storage"
	"github.com/ringside/simulator/pkg/core"
	"github.com/ringside/simulator/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
}

// Backend streams match data over WebSocket to a spectator server.
// It implements storage.Backend but not storage.Uploadable.
type Backend struct {
	conn    *connection
	cfg     Config
	active  atomic.Bool
	dropped atomic.Uint64
}

// New creates a new WebSocket storage backend.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger.With("component", "websocket")),
		cfg:  cfg,
	}
}

// Init connects to the spectator server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the spectator server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// Dropped returns how many records were discarded because the send queue
// was full.
func (b *Backend) Dropped() uint64 {
	return b.dropped.Load()
}

// sendEnvelope pushes a fire-and-forget record to the write loop.
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	if !b.active.Load() {
		return fmt.Errorf("send %s: %w", msgType, storage.ErrNoMatch)
	}
	data, err := streaming.Marshal(msgType, payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msgType, err)
	}
	if err := b.conn.send(data); err != nil {
		b.dropped.Add(1)
		return fmt.Errorf("send %s: %w", msgType, err)
	}
	return nil
}

// StartMatch sends the match header and waits for the server ack.
func (b *Backend) StartMatch(match *core.Match, fighters [2]core.Fighter) error {
	data, err := streaming.Marshal(streaming.TypeStartMatch, streaming.StartMatchPayload{
		Match:    match,
		Fighters: fighters,
	})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", streaming.TypeStartMatch, err)
	}

	// Cache for reconnect replay.
	b.conn.mu.Lock()
	b.conn.cachedStart = data
	b.conn.mu.Unlock()

	if err := b.conn.sendAndWait(data, streaming.TypeStartMatch, ackTimeout); err != nil {
		return err
	}
	b.active.Store(true)
	return nil
}

// EndMatch sends the result and waits for the server ack.
func (b *Backend) EndMatch(result *core.MatchResult) error {
	if !b.active.Swap(false) {
		return fmt.Errorf("end match: %w", storage.ErrNoMatch)
	}

	data, err := streaming.Marshal(streaming.TypeEndMatch, result)
	if err == nil {
		err = b.conn.sendAndWait(data, streaming.TypeEndMatch, ackTimeout)
	}

	// Clear cached state regardless of error.
	b.conn.mu.Lock()
	b.conn.cachedStart = nil
	b.conn.mu.Unlock()

	return err
}

func (b *Backend) RecordFighterState(s *core.FighterState) error {
	return b.sendEnvelope(streaming.TypeFighterState, s)
}

func (b *Backend) RecordHit(e *core.HitEvent) error {
	return b.sendEnvelope(streaming.TypeHit, e)
}

func (b *Backend) RecordRound(e *core.RoundEvent) error {
	return b.sendEnvelope(streaming.TypeRound, e)
}
