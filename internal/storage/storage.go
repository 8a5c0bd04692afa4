package storage

import (
	"errors"

	"github.com/ringside/simulator/pkg/core"
)

var (
	// ErrNoMatch is returned when a record arrives outside StartMatch/EndMatch.
	ErrNoMatch = errors.New("no match in progress")
	// ErrMatchNotFound is returned by a Loader for an unknown match ID.
	ErrMatchNotFound = errors.New("match not found")
)

// Backend is the interface all replay storage implementations must satisfy.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Match management
	StartMatch(match *core.Match, fighters [2]core.Fighter) error
	EndMatch(result *core.MatchResult) error

	// Recording
	RecordFighterState(s *core.FighterState) error
	RecordHit(e *core.HitEvent) error
	RecordRound(e *core.RoundEvent) error
}

// Uploadable is an optional interface for storage backends that produce
// files suitable for upload to the replay web service.
type Uploadable interface {
	GetExportedFilePath() string
	GetExportMetadata() core.UploadMetadata
}

// Replay is a stored match read back from a backend.
type Replay struct {
	Match    core.Match          `json:"match"`
	Fighters [2]core.Fighter     `json:"fighters"`
	States   []core.FighterState `json:"states"`
	Hits     []core.HitEvent     `json:"hits"`
	Rounds   []core.RoundEvent   `json:"rounds"`
	Result   *core.MatchResult   `json:"result,omitempty"`
}

// Loader is an optional interface for backends that can read a recorded
// match back.
type Loader interface {
	LoadMatch(matchID string) (*Replay, error)
}
