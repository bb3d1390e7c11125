// internal/store/writer.go

package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/rooms"
)

// Writer persists round results off the room engine goroutine. Record never
// blocks: when the buffer is full the result is dropped and logged.
type Writer struct {
	st  Store
	in  chan Result
	wg  sync.WaitGroup
	end sync.Once
}

// NewWriter returns a writer with the given buffer size.
func NewWriter(st Store, buffer int) *Writer {
	if buffer <= 0 {
		buffer = 256
	}
	return &Writer{st: st, in: make(chan Result, buffer)}
}

// Record implements rooms.Recorder.
func (w *Writer) Record(res rooms.RoundResult) {
	r := FromRound(res)
	select {
	case w.in <- r:
	default:
		log.Warn().Str("room", r.RoomID).Msg("result buffer full, dropping round result")
	}
}

// Start launches the drain goroutine.
func (w *Writer) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for r := range w.in {
			if err := w.st.Save(context.Background(), r); err != nil {
				log.Error().Err(err).Str("room", r.RoomID).Msg("save round result")
			}
		}
	}()
}

// Close stops accepting results and waits for the buffer to drain.
// Record must not be called after Close.
func (w *Writer) Close() {
	w.end.Do(func() { close(w.in) })
	w.wg.Wait()
}

// FromRound converts an engine result into a ledger row with a fresh id.
func FromRound(res rooms.RoundResult) Result {
	r := Result{
		ID:       uuid.NewString(),
		RoomID:   res.RoomID,
		Mode:     string(res.Mode),
		Reason:   string(res.Reason),
		Winner:   res.Winner,
		Word:     res.Word,
		Players:  make([]PlayerResult, 0, len(res.Players)),
		ClosedAt: res.ClosedAt,
	}
	for _, p := range res.Players {
		r.Players = append(r.Players, PlayerResult{Name: p.Name, Guesses: p.Guesses, Solved: p.Solved, Won: p.Won})
	}
	return r
}
