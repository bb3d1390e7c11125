package rooms

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeHidesDuelSecrets(t *testing.T) {
	h := newHarness(t)
	room := h.duel(t)

	raw, err := json.Marshal(Sanitize(room))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "CRANE")
	assert.NotContains(t, string(raw), "SLATE")

	for conn, snaps := range h.out.sent {
		for _, s := range snaps {
			b, _ := json.Marshal(s)
			assert.NotContains(t, string(b), "CRANE", "snapshot to %s leaked a secret", conn)
		}
	}

	h.guess(t, "c1", room, "SLATE")
	h.guess(t, "c2", room, "GHOST")

	snap := Sanitize(room)
	require.NotNil(t, snap.Duel)
	assert.Equal(t, map[string]string{"c1": "CRANE", "c2": "SLATE"}, snap.Duel.Revealed)
	assert.True(t, snap.RoundClosed)
	assert.Equal(t, "c1", snap.Winner)
}

func TestSanitizeHidesRoomSecrets(t *testing.T) {
	t.Run("shared", func(t *testing.T) {
		h := newHarness(t)
		room := h.create(t, "c1", "alice", ModeShared)
		h.join(t, "c2", room, "bob")
		require.NoError(t, h.reg.StartShared("c1", room.ID))

		raw, _ := json.Marshal(Sanitize(room))
		assert.NotContains(t, string(raw), "LLAMA")

		h.guess(t, "c1", room, "LLAMA")
		assert.Equal(t, "LLAMA", Sanitize(room).Shared.Revealed)
	})

	t.Run("battle", func(t *testing.T) {
		h := newHarness(t)
		room := h.battle(t)
		require.NoError(t, h.reg.StartBattle("c1", room.ID, "crane"))

		raw, _ := json.Marshal(Sanitize(room))
		assert.NotContains(t, string(raw), "CRANE")
		assert.Empty(t, Sanitize(room).Battle.Revealed)
	})
}

func TestSanitizePlayerView(t *testing.T) {
	h := newHarness(t)
	room := h.duel(t)
	h.guess(t, "c1", room, "GHOST")
	h.reg.Disconnect("c2")

	snap := Sanitize(room)
	require.Len(t, snap.Players, 2)
	alice, bob := snap.Players[0], snap.Players[1]
	assert.Equal(t, "alice", alice.Name)
	assert.True(t, alice.Connected)
	assert.Len(t, alice.Guesses, 1)
	assert.False(t, bob.Connected)

	snap.Players[0].Guesses[0].Word = "XXXXX"
	assert.Equal(t, "GHOST", room.Players["c1"].Guesses[0].Word, "snapshot must not alias room state")
}
