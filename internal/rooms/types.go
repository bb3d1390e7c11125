// internal/rooms/types.go
//
// Room and player model for the realtime engine.
//
// A Room carries a common header (id, host, players, started, winner, round
// guard) plus exactly one mode substate: *DuelState, *SharedState or
// *BattleState. Players are keyed by connection identity; resuming a seat
// moves the entry to the new identity (see transferIdentity).

package rooms

import (
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
)

// Mode is the rule set of a room. It never changes after creation.
type Mode string

const (
	ModeDuel     Mode = "duel"
	ModeShared   Mode = "shared"
	ModeBattle   Mode = "battle"
	ModeBattleAI Mode = "battle_ai"
)

// ParseMode maps a client-supplied mode. ok is false for unknown values.
func ParseMode(s string) (Mode, bool) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeDuel, ModeShared, ModeBattle, ModeBattleAI:
		return m, true
	}
	return ModeDuel, false
}

// MaxGuesses is the per-player cap in duel and battle rounds.
const MaxGuesses = 6

// Draw is the Winner value of a drawn duel or shared round.
const Draw = "draw"

// CloseReason records which path finalized a round.
type CloseReason string

const (
	ReasonSolved    CloseReason = "solved"
	ReasonExhausted CloseReason = "exhausted"
	ReasonTimeout   CloseReason = "timeout"
	ReasonForfeit   CloseReason = "forfeit"
)

// Round is the Open | Closed(reason) guard of the current round.
// The zero value is an open round.
type Round struct {
	Closed bool
	Reason CloseReason
}

// Player is one connection's participation in a room.
type Player struct {
	ID               string
	Name             string
	Ready            bool
	Secret           string // duel only
	Guesses          []game.Guess
	Done             bool
	Wins             int
	Streak           int
	Disconnected     bool
	DisconnectedAt   time.Time
	RematchRequested bool

	seq int // join order
}

// resetRound clears per-round fields. Wins and streak survive.
func (p *Player) resetRound() {
	p.Ready = false
	p.Secret = ""
	p.Guesses = nil
	p.Done = false
	p.RematchRequested = false
}

func (p *Player) solved() bool {
	n := len(p.Guesses)
	return n > 0 && game.Solved(p.Guesses[n-1].Pattern)
}

// modeState is implemented by the three substates.
type modeState interface{ mode() string }

// DuelState holds the round deadline and the reveal map (player id -> secret).
type DuelState struct {
	Deadline time.Time
	Revealed map[string]string
}

// SharedState holds the room-owned secret and the turn rotation.
type SharedState struct {
	Secret     string
	MaxGuesses int
	Order      []string // participants in join order
	Turn       string
	History    []TurnGuess
	Revealed   string
}

// TurnGuess is one entry of the shared guess history.
type TurnGuess struct {
	PlayerID string
	game.Guess
}

// BattleState holds the host word. AI marks a battle_ai room.
//
// Setter is the player who chose the current word ("" for dictionary
// words). It outlives a host hand-off, and SetterName keeps matching after
// the setter leaves and comes back under a new identity.
type BattleState struct {
	Secret       string
	Revealed     string
	AI           bool
	PendingStart bool
	HostClaimed  bool
	NextRoundAt  time.Time
	Setter       string
	SetterName   string
}

// isSetter reports whether p chose the current word.
func (b *BattleState) isSetter(p *Player) bool {
	if b.Setter == "" {
		return false
	}
	return p.ID == b.Setter || strings.EqualFold(p.Name, b.SetterName)
}

func (*DuelState) mode() string   { return "duel" }
func (*SharedState) mode() string { return "shared" }
func (*BattleState) mode() string { return "battle" }

// Room is the unit of a match. It is owned by the Registry and must only be
// touched from the engine loop.
type Room struct {
	ID        string
	Mode      Mode
	HostID    string
	Players   map[string]*Player
	Started   bool
	Winner    string
	Round     Round
	CreatedAt time.Time

	State modeState

	roundNo int
	seq     int
}

// Duel returns the duel substate or nil.
func (r *Room) Duel() *DuelState {
	s, _ := r.State.(*DuelState)
	return s
}

// Shared returns the shared substate or nil.
func (r *Room) Shared() *SharedState {
	s, _ := r.State.(*SharedState)
	return s
}

// Battle returns the battle substate or nil.
func (r *Room) Battle() *BattleState {
	s, _ := r.State.(*BattleState)
	return s
}

// closeRound is the one-shot transition from Open to Closed(reason).
// It reports false when there is no live round or it is already closed.
func (r *Room) closeRound(reason CloseReason) bool {
	if !r.Started || r.Round.Closed {
		return false
	}
	r.Round = Round{Closed: true, Reason: reason}
	r.Started = false
	return true
}

// openRound starts a new live round.
func (r *Room) openRound() {
	r.Round = Round{}
	r.Started = true
	r.Winner = ""
	r.roundNo++
}

func (r *Room) addPlayer(id, name string) *Player {
	r.seq++
	p := &Player{ID: id, Name: name, seq: r.seq}
	r.Players[id] = p
	return p
}

// ordered returns players sorted by join order.
func (r *Room) ordered() []*Player {
	out := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// connected returns connected players in join order.
func (r *Room) connected() []*Player {
	var out []*Player
	for _, p := range r.ordered() {
		if !p.Disconnected {
			out = append(out, p)
		}
	}
	return out
}

// firstConnectedExcept picks the earliest-joined connected player other than id.
func (r *Room) firstConnectedExcept(id string) string {
	for _, p := range r.connected() {
		if p.ID != id {
			return p.ID
		}
	}
	return ""
}

// guessers returns the players of the current or last battle round in join
// order: everyone but the word setter, or everyone but the host when the
// dictionary chose the word.
func (r *Room) guessers() []*Player {
	b := r.Battle()
	var out []*Player
	for _, p := range r.ordered() {
		if b != nil && b.Setter != "" {
			if b.isSetter(p) {
				continue
			}
		} else if p.ID == r.HostID {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *Room) log(ev *zerolog.Event) *zerolog.Event {
	return ev.Str("room", r.ID).Str("mode", string(r.Mode))
}
