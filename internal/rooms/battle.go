// internal/rooms/battle.go
//
// Battle royale: a host sets the word, every other player guesses it
// independently with MaxGuesses attempts.
//
//   awaiting-word -> live -> resolved -> awaiting-word
//
// battle_ai rooms have no human host. The first round waits for any player
// to trigger it; after each round a countdown starts the next one with a
// dictionary word. A player may claim the host role to set words by hand and
// release it to hand control back.

package rooms

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
)

func aiKey(roomID string) string { return roomID + "/ai" }

// StartBattle sets the host word and starts a round.
func (r *Registry) StartBattle(conn, roomID, raw string) error {
	room, p, err := r.member(conn, roomID)
	if err != nil {
		return err
	}
	if room.Battle() == nil {
		return ErrWrongMode
	}
	if room.HostID != conn {
		return ErrNotHost
	}
	if room.Started {
		return ErrRoundLive
	}
	if room.firstConnectedExcept(conn) == "" {
		return ErrNotEnoughPlayers
	}
	w, err := r.checkWord(raw)
	if err != nil {
		return err
	}
	r.startBattle(room, w, p)
	r.broadcast(room)
	return nil
}

// StartAIRound opens the pending-start gate of a battle_ai room, or skips
// the countdown to the next round.
func (r *Registry) StartAIRound(conn, roomID string) error {
	room, _, err := r.member(conn, roomID)
	if err != nil {
		return err
	}
	b := room.Battle()
	if b == nil || !b.AI {
		return ErrWrongMode
	}
	if room.Started {
		return ErrRoundLive
	}
	if b.HostClaimed {
		return ErrHostClaimed
	}
	w, err := r.randomWord()
	if err != nil {
		return err
	}
	r.startBattle(room, w, nil)
	r.broadcast(room)
	return nil
}

// ClaimHost makes conn the word-setting host of a battle_ai room.
func (r *Registry) ClaimHost(conn, roomID string) error {
	room, _, err := r.member(conn, roomID)
	if err != nil {
		return err
	}
	b := room.Battle()
	if b == nil || !b.AI {
		return ErrWrongMode
	}
	if b.HostClaimed {
		if room.HostID == conn {
			return nil
		}
		return ErrHostClaimed
	}
	if room.Started {
		return ErrRoundLive
	}

	r.sched.Cancel(aiKey(room.ID))
	room.HostID = conn
	b.HostClaimed = true
	b.PendingStart = false
	b.NextRoundAt = time.Time{}
	room.log(log.Info()).Str("host", conn).Msg("host claimed")
	r.broadcast(room)
	return nil
}

// ReleaseHost hands a claimed battle_ai room back to automatic words.
func (r *Registry) ReleaseHost(conn, roomID string) error {
	room, _, err := r.member(conn, roomID)
	if err != nil {
		return err
	}
	b := room.Battle()
	if b == nil || !b.AI {
		return ErrWrongMode
	}
	if !b.HostClaimed || room.HostID != conn {
		return ErrNotHost
	}
	if room.Started {
		return ErrRoundLive
	}
	r.releaseAIHost(room)
	r.broadcast(room)
	return nil
}

// releaseAIHost returns a battle_ai room to dictionary words. A room that
// never played a round goes back to the start gate instead of counting down.
func (r *Registry) releaseAIHost(room *Room) {
	b := room.Battle()
	room.log(log.Info()).Str("host", room.HostID).Msg("host released")
	room.HostID = ""
	b.HostClaimed = false
	switch {
	case room.Started:
	case room.roundNo == 0:
		b.PendingStart = true
		b.NextRoundAt = time.Time{}
	default:
		r.scheduleAIRound(room)
	}
}

// startBattle opens a round on word. setter is nil for dictionary words.
func (r *Registry) startBattle(room *Room, word string, setter *Player) {
	b := room.Battle()
	r.sched.Cancel(aiKey(room.ID))
	for _, p := range room.Players {
		p.resetRound()
	}
	room.openRound()
	b.Setter, b.SetterName = "", ""
	if setter != nil {
		b.Setter, b.SetterName = setter.ID, setter.Name
	}
	b.Secret = word
	b.Revealed = ""
	b.PendingStart = false
	b.NextRoundAt = time.Time{}
	room.log(log.Info()).Int("guessers", len(room.guessers())).Msg("round started")
}

func (r *Registry) scheduleAIRound(room *Room) {
	b := room.Battle()
	b.PendingStart = false
	b.NextRoundAt = r.now().Add(r.opts.AICountdown)
	id, round := room.ID, room.roundNo
	r.sched.Schedule(aiKey(id), r.opts.AICountdown, func() { r.aiCountdown(id, round) })
	room.log(log.Debug()).Time("at", b.NextRoundAt).Msg("next round scheduled")
}

// aiCountdown starts the next automatic round. Without a connected guesser
// the room falls back to the pending-start gate.
func (r *Registry) aiCountdown(roomID string, round int) {
	room, ok := r.rooms[roomID]
	if !ok || room.roundNo != round || room.Started {
		log.Debug().Str("room", roomID).Int("round", round).Msg("stale ai countdown")
		return
	}
	b := room.Battle()
	if b.HostClaimed {
		return
	}
	b.NextRoundAt = time.Time{}

	if len(room.connected()) == 0 {
		b.PendingStart = true
		room.log(log.Info()).Msg("no guessers, waiting for start")
		r.broadcast(room)
		return
	}
	w, err := r.randomWord()
	if err != nil {
		b.PendingStart = true
		room.log(log.Warn()).Err(err).Msg("auto round skipped")
		r.broadcast(room)
		return
	}
	r.startBattle(room, w, nil)
	r.broadcast(room)
}

func (r *Registry) battleGuess(room *Room, p *Player, raw string) (game.Pattern, error) {
	b := room.Battle()
	if !room.Started {
		return nil, ErrRoundNotLive
	}
	if b.isSetter(p) {
		return nil, ErrHostCannotGuess
	}
	if p.Done {
		return nil, ErrNoGuessesLeft
	}
	w, err := r.checkWord(raw)
	if err != nil {
		return nil, err
	}
	if guessed(p.Guesses, w) {
		return nil, ErrAlreadyGuessed
	}

	pat := game.Score(b.Secret, w)
	p.Guesses = append(p.Guesses, game.Guess{Word: w, Pattern: pat})
	if game.Solved(pat) {
		p.Done = true
		r.finish(room, p.ID, ReasonSolved)
		return pat, nil
	}
	if len(p.Guesses) >= MaxGuesses {
		p.Done = true
	}
	r.checkBattleExhausted(room)
	return pat, nil
}

// checkBattleExhausted closes the round without a winner once every
// connected guesser is done.
func (r *Registry) checkBattleExhausted(room *Room) bool {
	if !room.Started {
		return false
	}
	seen := false
	for _, p := range room.guessers() {
		if p.Disconnected {
			continue
		}
		if !p.Done {
			return false
		}
		seen = true
	}
	if !seen {
		return false
	}
	return r.finish(room, "", ReasonExhausted)
}

// battlePlayAgain clears the finished round once every connected guesser
// asked for another. The next word still comes from the host or the countdown.
func (r *Registry) battlePlayAgain(room *Room, p *Player) (bool, error) {
	if room.Started {
		return false, ErrRoundLive
	}
	if !room.Round.Closed {
		return false, ErrRoundNotOver
	}
	p.RematchRequested = true
	for _, q := range room.guessers() {
		if !q.Disconnected && !q.RematchRequested {
			return false, nil
		}
	}

	for _, q := range room.Players {
		q.resetRound()
	}
	room.Winner = ""
	room.Round = Round{}
	room.Battle().Revealed = ""
	room.log(log.Info()).Msg("board cleared for next round")
	return true, nil
}
