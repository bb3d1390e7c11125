// internal/rooms/duel.go
//
// Duel: two players, each guessing the other's secret.
//
//   awaiting-secrets -> live (deadline scheduled) -> resolved -> awaiting-rematch
//
// The round resolves when both players are done, as soon as the outcome can
// no longer change, on the deadline, or when a player leaves mid-round.

package rooms

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
)

func duelKey(roomID string) string { return roomID + "/duel" }

// SetSecret commits conn's secret. The secret may be changed until the round
// goes live, which happens as soon as both players are ready.
func (r *Registry) SetSecret(conn, roomID, raw string) error {
	room, p, err := r.member(conn, roomID)
	if err != nil {
		return err
	}
	if room.Mode != ModeDuel {
		return ErrWrongMode
	}
	if room.Started {
		return ErrRoundLive
	}
	if room.Round.Closed {
		return ErrAwaitingRematch
	}
	w, err := r.checkWord(raw)
	if err != nil {
		return err
	}

	p.Secret = w
	p.Ready = true
	room.log(log.Debug()).Str("player", conn).Msg("secret set")

	if a, b := duelPair(room); b != nil && a.Ready && b.Ready {
		r.startDuel(room)
	}
	r.broadcast(room)
	return nil
}

func (r *Registry) startDuel(room *Room) {
	for _, p := range room.Players {
		p.Guesses = nil
		p.Done = false
		p.RematchRequested = false
	}
	room.openRound()

	d := room.Duel()
	d.Revealed = nil
	d.Deadline = r.now().Add(r.opts.DuelRound)

	id, round := room.ID, room.roundNo
	r.sched.Schedule(duelKey(id), r.opts.DuelRound, func() { r.duelTimeout(id, round) })
	room.log(log.Info()).Time("deadline", d.Deadline).Msg("round started")
}

// duelTimeout is the deadline callback. It is a no-op unless the round it
// was scheduled for is still live.
func (r *Registry) duelTimeout(roomID string, round int) {
	room, ok := r.rooms[roomID]
	if !ok || room.roundNo != round || !room.Started {
		log.Debug().Str("room", roomID).Int("round", round).Msg("stale duel deadline")
		return
	}
	a, b := duelPair(room)
	if b == nil {
		return
	}
	if r.finish(room, duelOutcome(a, b), ReasonTimeout) {
		r.broadcast(room)
	}
}

func (r *Registry) duelGuess(room *Room, p *Player, raw string) (game.Pattern, error) {
	if !room.Started {
		return nil, ErrRoundNotLive
	}
	if p.Done {
		return nil, ErrNoGuessesLeft
	}
	opp := opponent(room, p)
	if opp == nil {
		return nil, ErrRoundNotLive
	}
	w, err := r.checkWord(raw)
	if err != nil {
		return nil, err
	}
	if guessed(p.Guesses, w) {
		return nil, ErrAlreadyGuessed
	}

	pat := game.Score(opp.Secret, w)
	p.Guesses = append(p.Guesses, game.Guess{Word: w, Pattern: pat})
	if game.Solved(pat) || len(p.Guesses) >= MaxGuesses {
		p.Done = true
	}
	r.checkDuel(room)
	return pat, nil
}

// checkDuel resolves the round once the result is fixed.
func (r *Registry) checkDuel(room *Room) {
	a, b := duelPair(room)
	if b == nil {
		return
	}
	if !(a.Done && b.Done) && !decided(a, b) && !decided(b, a) {
		return
	}
	reason := ReasonExhausted
	if a.solved() || b.solved() {
		reason = ReasonSolved
	}
	r.finish(room, duelOutcome(a, b), reason)
}

// decided reports whether a solved and b can no longer tie or beat a.
func decided(a, b *Player) bool {
	return a.solved() && !b.solved() && len(b.Guesses) >= len(a.Guesses)
}

// duelOutcome applies the duel rules: fewer attempts wins when both solved,
// a lone solver wins, anything else is a draw.
func duelOutcome(a, b *Player) string {
	switch as, bs := a.solved(), b.solved(); {
	case as && bs:
		switch {
		case len(a.Guesses) < len(b.Guesses):
			return a.ID
		case len(b.Guesses) < len(a.Guesses):
			return b.ID
		}
		return Draw
	case as:
		return a.ID
	case bs:
		return b.ID
	}
	return Draw
}

func (r *Registry) duelPlayAgain(room *Room, p *Player) (bool, error) {
	if room.Started {
		return false, ErrRoundLive
	}
	if !room.Round.Closed {
		return false, ErrRoundNotOver
	}
	p.RematchRequested = true

	if len(room.Players) < 2 {
		return false, nil
	}
	for _, q := range room.Players {
		if !q.RematchRequested {
			return false, nil
		}
	}

	for _, q := range room.Players {
		q.resetRound()
	}
	room.Winner = ""
	room.Round = Round{}
	d := room.Duel()
	d.Revealed = nil
	d.Deadline = time.Time{}
	r.sched.Cancel(duelKey(room.ID))
	room.log(log.Info()).Msg("rematch accepted")
	return true, nil
}

// duelPair returns the two players in join order. b is nil while the room
// waits for an opponent.
func duelPair(room *Room) (a, b *Player) {
	ps := room.ordered()
	switch len(ps) {
	case 0:
		return nil, nil
	case 1:
		return ps[0], nil
	}
	return ps[0], ps[1]
}

func opponent(room *Room, p *Player) *Player {
	for _, q := range room.Players {
		if q.ID != p.ID {
			return q
		}
	}
	return nil
}
