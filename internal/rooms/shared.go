// internal/rooms/shared.go
//
// Shared duel: one room-owned secret, players take turns in join order.
//
//   lobby (host configures) -> live (turn rotates) -> resolved -> lobby
//
// An exact guess wins for the guesser. When the room-wide guess count
// reaches MaxGuesses the round is a draw.

package rooms

import (
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
)

const (
	minSharedGuesses = 2
	maxSharedGuesses = 12
)

// Configure sets the room-wide guess cap. Host only, lobby only.
func (r *Registry) Configure(conn, roomID string, maxGuesses int) error {
	room, _, err := r.member(conn, roomID)
	if err != nil {
		return err
	}
	s := room.Shared()
	if s == nil {
		return ErrWrongMode
	}
	if room.HostID != conn {
		return ErrNotHost
	}
	if room.Started {
		return ErrRoundLive
	}
	if maxGuesses < minSharedGuesses || maxGuesses > maxSharedGuesses {
		return ErrBadSettings
	}
	s.MaxGuesses = maxGuesses
	room.log(log.Debug()).Int("maxGuesses", maxGuesses).Msg("room configured")
	r.broadcast(room)
	return nil
}

// StartShared starts a round with a dictionary-picked secret. The host may
// call it from the lobby or directly after a resolved round.
func (r *Registry) StartShared(conn, roomID string) error {
	room, _, err := r.member(conn, roomID)
	if err != nil {
		return err
	}
	s := room.Shared()
	if s == nil {
		return ErrWrongMode
	}
	if room.HostID != conn {
		return ErrNotHost
	}
	if room.Started {
		return ErrRoundLive
	}
	live := room.connected()
	if len(live) < 2 {
		return ErrNotEnoughPlayers
	}
	secret, err := r.randomWord()
	if err != nil {
		return err
	}

	for _, p := range room.Players {
		p.resetRound()
	}
	room.openRound()
	s.Secret = secret
	s.Order = make([]string, 0, len(live))
	for _, p := range live {
		s.Order = append(s.Order, p.ID)
	}
	s.Turn = s.Order[0]
	s.History = nil
	s.Revealed = ""

	room.log(log.Info()).Int("players", len(s.Order)).Msg("round started")
	r.broadcast(room)
	return nil
}

func (r *Registry) sharedGuess(room *Room, p *Player, raw string) (game.Pattern, error) {
	s := room.Shared()
	if !room.Started {
		return nil, ErrRoundNotLive
	}
	if s.Turn != p.ID {
		return nil, ErrNotYourTurn
	}
	w, err := r.checkWord(raw)
	if err != nil {
		return nil, err
	}
	for _, h := range s.History {
		if h.Word == w {
			return nil, ErrAlreadyGuessed
		}
	}

	pat := game.Score(s.Secret, w)
	g := game.Guess{Word: w, Pattern: pat}
	p.Guesses = append(p.Guesses, g)
	s.History = append(s.History, TurnGuess{PlayerID: p.ID, Guess: g})

	switch {
	case game.Solved(pat):
		r.finish(room, p.ID, ReasonSolved)
	case len(s.History) >= s.MaxGuesses:
		r.finish(room, Draw, ReasonExhausted)
	default:
		r.advanceTurn(room)
	}
	return pat, nil
}

// advanceTurn passes the turn to the next connected participant after the
// current holder. With nobody connected the turn stays where it is.
func (r *Registry) advanceTurn(room *Room) {
	s := room.Shared()
	n := len(s.Order)
	if n == 0 {
		s.Turn = ""
		return
	}
	start := -1
	for i, id := range s.Order {
		if id == s.Turn {
			start = i
			break
		}
	}
	for i := 1; i <= n; i++ {
		id := s.Order[(start+i)%n]
		if p, ok := room.Players[id]; ok && !p.Disconnected {
			if id != s.Turn {
				room.log(log.Debug()).Str("turn", id).Msg("turn passed")
			}
			s.Turn = id
			return
		}
	}
}

func (r *Registry) sharedPlayAgain(room *Room, p *Player) (bool, error) {
	if room.Started {
		return false, ErrRoundLive
	}
	if !room.Round.Closed {
		return false, ErrRoundNotOver
	}
	p.RematchRequested = true
	for _, q := range room.connected() {
		if !q.RematchRequested {
			return false, nil
		}
	}

	for _, q := range room.Players {
		q.resetRound()
	}
	s := room.Shared()
	room.Winner = ""
	room.Round = Round{}
	s.Secret = ""
	s.Order = nil
	s.Turn = ""
	s.History = nil
	s.Revealed = ""
	room.log(log.Info()).Msg("back to lobby")
	return true, nil
}
