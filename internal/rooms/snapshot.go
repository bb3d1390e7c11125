// internal/rooms/snapshot.go
//
// Broadcast view of a room. Everything the transport sends about a room goes
// through Sanitize.

package rooms

import (
	"maps"
	"slices"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
)

// Snapshot is the client-safe view of a room. Secrets only appear once the
// round that used them is closed.
type Snapshot struct {
	ID          string       `json:"id"`
	Mode        Mode         `json:"mode"`
	HostID      string       `json:"hostId"`
	Started     bool         `json:"started"`
	Winner      string       `json:"winner,omitempty"`
	RoundClosed bool         `json:"roundClosed"`
	CloseReason CloseReason  `json:"closeReason,omitempty"`
	Players     []PlayerView `json:"players"`
	Duel        *DuelView    `json:"duel,omitempty"`
	Shared      *SharedView  `json:"shared,omitempty"`
	Battle      *BattleView  `json:"battle,omitempty"`
}

// PlayerView holds the public fields of a player.
type PlayerView struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Ready            bool         `json:"ready"`
	Guesses          []game.Guess `json:"guesses"`
	Done             bool         `json:"done"`
	Wins             int          `json:"wins"`
	Streak           int          `json:"streak"`
	Connected        bool         `json:"connected"`
	RematchRequested bool         `json:"rematchRequested"`
}

// DuelView is the duel substate. Revealed maps player id to secret once the
// round is closed.
type DuelView struct {
	Deadline int64             `json:"deadline,omitempty"` // unix ms
	Revealed map[string]string `json:"revealed,omitempty"`
}

// SharedView is the shared substate without the secret.
type SharedView struct {
	MaxGuesses int        `json:"maxGuesses"`
	Order      []string   `json:"order"`
	Turn       string     `json:"turn,omitempty"`
	GuessCount int        `json:"guessCount"`
	History    []TurnView `json:"history"`
	Revealed   string     `json:"revealed,omitempty"`
}

// TurnView is one shared history entry.
type TurnView struct {
	PlayerID string       `json:"playerId"`
	Guess    string       `json:"guess"`
	Pattern  game.Pattern `json:"pattern"`
}

// BattleView is the battle substate without the word.
type BattleView struct {
	MaxGuesses   int    `json:"maxGuesses"`
	AIHost       bool   `json:"aiHost"`
	HostClaimed  bool   `json:"hostClaimed"`
	PendingStart bool   `json:"pendingStart"`
	NextRoundAt  int64  `json:"nextRoundAt,omitempty"` // unix ms
	Revealed     string `json:"revealed,omitempty"`
}

// Sanitize derives the broadcast snapshot of room. The result shares no
// mutable state with the room.
func Sanitize(room *Room) Snapshot {
	snap := Snapshot{
		ID:          room.ID,
		Mode:        room.Mode,
		HostID:      room.HostID,
		Started:     room.Started,
		Winner:      room.Winner,
		RoundClosed: room.Round.Closed,
		CloseReason: room.Round.Reason,
		Players:     make([]PlayerView, 0, len(room.Players)),
	}
	for _, p := range room.ordered() {
		snap.Players = append(snap.Players, PlayerView{
			ID:               p.ID,
			Name:             p.Name,
			Ready:            p.Ready,
			Guesses:          slices.Clone(p.Guesses),
			Done:             p.Done,
			Wins:             p.Wins,
			Streak:           p.Streak,
			Connected:        !p.Disconnected,
			RematchRequested: p.RematchRequested,
		})
	}
	revealed := room.Round.Closed

	switch s := room.State.(type) {
	case *DuelState:
		v := &DuelView{}
		if !s.Deadline.IsZero() {
			v.Deadline = s.Deadline.UnixMilli()
		}
		if revealed {
			v.Revealed = maps.Clone(s.Revealed)
		}
		snap.Duel = v
	case *SharedState:
		v := &SharedView{
			MaxGuesses: s.MaxGuesses,
			Order:      slices.Clone(s.Order),
			Turn:       s.Turn,
			GuessCount: len(s.History),
			History:    make([]TurnView, 0, len(s.History)),
		}
		for _, h := range s.History {
			v.History = append(v.History, TurnView{PlayerID: h.PlayerID, Guess: h.Word, Pattern: h.Pattern})
		}
		if revealed {
			v.Revealed = s.Revealed
		}
		snap.Shared = v
	case *BattleState:
		v := &BattleView{
			MaxGuesses:   MaxGuesses,
			AIHost:       s.AI && !s.HostClaimed,
			HostClaimed:  s.HostClaimed,
			PendingStart: s.PendingStart,
		}
		if !s.NextRoundAt.IsZero() {
			v.NextRoundAt = s.NextRoundAt.UnixMilli()
		}
		if revealed {
			v.Revealed = s.Revealed
		}
		snap.Battle = v
	}
	return snap
}
