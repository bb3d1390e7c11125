package rooms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shared returns a shared lobby with c1 (host), c2 and c3.
func (h *harness) shared(t *testing.T) *Room {
	t.Helper()
	room := h.create(t, "c1", "alice", ModeShared)
	h.join(t, "c2", room, "bob")
	h.join(t, "c3", room, "carol")
	return room
}

func TestSharedStart(t *testing.T) {
	h := newHarness(t)
	room := h.create(t, "c1", "alice", ModeShared)

	assert.ErrorIs(t, h.reg.StartShared("c1", room.ID), ErrNotEnoughPlayers)

	h.join(t, "c2", room, "bob")
	assert.ErrorIs(t, h.reg.StartShared("c2", room.ID), ErrNotHost)

	require.NoError(t, h.reg.StartShared("c1", room.ID))
	s := room.Shared()
	assert.True(t, room.Started)
	assert.Equal(t, "LLAMA", s.Secret)
	assert.Equal(t, []string{"c1", "c2"}, s.Order)
	assert.Equal(t, "c1", s.Turn)

	assert.ErrorIs(t, h.reg.StartShared("c1", room.ID), ErrRoundLive)
	_, err := h.reg.Join("c3", room.ID, "carol")
	assert.ErrorIs(t, err, ErrRoundLive)
}

func TestSharedTurns(t *testing.T) {
	h := newHarness(t)
	room := h.shared(t)
	require.NoError(t, h.reg.StartShared("c1", room.ID))
	s := room.Shared()

	_, err := h.reg.Guess("c2", room.ID, "GHOST")
	assert.ErrorIs(t, err, ErrNotYourTurn)

	h.guess(t, "c1", room, "GHOST")
	assert.Equal(t, "c2", s.Turn)

	_, err = h.reg.Guess("c2", room.ID, "ghost")
	assert.ErrorIs(t, err, ErrAlreadyGuessed, "the room shares one history")
	assert.Equal(t, "c2", s.Turn)
	assert.Len(t, s.History, 1)

	h.reg.Disconnect("c2")
	assert.Equal(t, "c3", s.Turn, "turn leaves a disconnected holder")

	h.guess(t, "c3", room, "FLAME")
	assert.Equal(t, "c1", s.Turn, "disconnected players are skipped")
	assert.Equal(t, 2, len(s.History))

	h.guess(t, "c1", room, "LLAMA")
	assert.False(t, room.Started)
	assert.Equal(t, "c1", room.Winner)
	assert.Equal(t, "LLAMA", s.Revealed)
	assert.Empty(t, s.Turn)
	assert.Equal(t, 1, room.Players["c1"].Wins)
	assert.Zero(t, room.Players["c3"].Streak)

	require.Len(t, h.rec.results, 1)
	assert.Equal(t, "LLAMA", h.rec.results[0].Word)
	assert.Len(t, h.rec.results[0].Players, 3)
}

func TestSharedTurnReturnsOnResume(t *testing.T) {
	h := newHarness(t)
	room := h.create(t, "c1", "alice", ModeShared)
	h.join(t, "c2", room, "bob")
	require.NoError(t, h.reg.StartShared("c1", room.ID))
	s := room.Shared()

	h.guess(t, "c1", room, "GHOST")
	h.reg.Disconnect("c2")
	assert.Equal(t, "c1", s.Turn)

	h.guess(t, "c1", room, "FLAME")
	assert.Equal(t, "c1", s.Turn, "only one connected player left")

	resumed, err := h.reg.Join("c9", room.ID, "bob")
	require.NoError(t, err)
	require.True(t, resumed)
	assert.Equal(t, []string{"c1", "c9"}, s.Order)
	assert.Len(t, s.History, 2)
	assert.Equal(t, "c1", s.Turn)

	h.guess(t, "c1", room, "BRICK")
	assert.Equal(t, "c9", s.Turn)
}

func TestSharedGuessCapDraw(t *testing.T) {
	h := newHarness(t)
	room := h.shared(t)
	require.NoError(t, h.reg.Configure("c1", room.ID, 2))
	require.NoError(t, h.reg.StartShared("c1", room.ID))

	h.guess(t, "c1", room, "GHOST")
	h.guess(t, "c2", room, "FLAME")

	assert.False(t, room.Started)
	assert.Equal(t, Draw, room.Winner)
	assert.Equal(t, ReasonExhausted, room.Round.Reason)
}

func TestSharedConfigure(t *testing.T) {
	h := newHarness(t)
	room := h.shared(t)

	assert.ErrorIs(t, h.reg.Configure("c1", room.ID, 1), ErrBadSettings)
	assert.ErrorIs(t, h.reg.Configure("c1", room.ID, 13), ErrBadSettings)
	assert.ErrorIs(t, h.reg.Configure("c2", room.ID, 8), ErrNotHost)
	require.NoError(t, h.reg.Configure("c1", room.ID, 12))
	assert.Equal(t, 12, room.Shared().MaxGuesses)

	require.NoError(t, h.reg.StartShared("c1", room.ID))
	assert.ErrorIs(t, h.reg.Configure("c1", room.ID, 8), ErrRoundLive)

	battle := h.create(t, "c9", "zed", ModeBattle)
	assert.ErrorIs(t, h.reg.Configure("c9", battle.ID, 8), ErrWrongMode)
}

func TestSharedPlayAgain(t *testing.T) {
	t.Run("all connected players agree", func(t *testing.T) {
		h := newHarness(t)
		room := h.shared(t)
		require.NoError(t, h.reg.StartShared("c1", room.ID))
		h.guess(t, "c1", room, "LLAMA")
		h.reg.Disconnect("c3")

		done, err := h.reg.PlayAgain("c2", room.ID)
		require.NoError(t, err)
		assert.False(t, done)

		done, err = h.reg.PlayAgain("c1", room.ID)
		require.NoError(t, err)
		assert.True(t, done)

		s := room.Shared()
		assert.False(t, room.Round.Closed)
		assert.Empty(t, s.Secret)
		assert.Empty(t, s.History)
		assert.Empty(t, room.Players["c1"].Guesses)
	})

	t.Run("host restarts directly", func(t *testing.T) {
		h := newHarness(t)
		room := h.shared(t)
		require.NoError(t, h.reg.StartShared("c1", room.ID))
		h.guess(t, "c1", room, "LLAMA")

		h.dict.next = "ALLOT"
		require.NoError(t, h.reg.StartShared("c1", room.ID))
		assert.True(t, room.Started)
		assert.Equal(t, "ALLOT", room.Shared().Secret)
		assert.Empty(t, room.Shared().History)
		assert.Empty(t, room.Players["c1"].Guesses)
		assert.Equal(t, 1, room.Players["c1"].Wins)
	})
}

func TestSharedLeaveDuringRound(t *testing.T) {
	h := newHarness(t)
	room := h.shared(t)
	require.NoError(t, h.reg.StartShared("c1", room.ID))
	h.guess(t, "c1", room, "GHOST")

	h.reg.Leave("c2", room.ID)
	s := room.Shared()
	assert.Equal(t, []string{"c1", "c3"}, s.Order)
	assert.Equal(t, "c3", s.Turn)
}
