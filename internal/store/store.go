// internal/store/store.go
//
// Results ledger for finished rounds.
//
// Rooms themselves are never persisted; only the summary of each closed
// round is kept so the HTTP surface can list recent results. Two backends:
//   - memory: bounded in-process list (default, lost on restart)
//   - sqlite: file-backed table, migrated on open
//
// Writes arrive through Writer so the room engine never waits on I/O.

package store

import (
	"context"
	"time"
)

// PlayerResult is one participant line of a Result.
type PlayerResult struct {
	Name    string `json:"name"`
	Guesses int    `json:"guesses"`
	Solved  bool   `json:"solved"`
	Won     bool   `json:"won"`
}

// Result is a persisted summary of one closed round.
type Result struct {
	ID       string         `json:"id"`
	RoomID   string         `json:"roomId"`
	Mode     string         `json:"mode"`
	Reason   string         `json:"reason"`
	Winner   string         `json:"winner,omitempty"`
	Word     string         `json:"word,omitempty"`
	Players  []PlayerResult `json:"players"`
	ClosedAt time.Time      `json:"closedAt"`
}

// Store defines the persistence interface for round results.
type Store interface {
	// Save appends a result.
	Save(ctx context.Context, r Result) error

	// Recent returns up to limit results, newest first.
	Recent(ctx context.Context, limit int) ([]Result, error)

	// Close releases backend resources.
	Close() error
}

const defaultLimit = 20

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > 100 {
		return 100
	}
	return limit
}
