package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/versus-server/internal/rooms"
)

func result(id string, at time.Time) Result {
	return Result{
		ID:       id,
		RoomID:   "ABCDE",
		Mode:     "duel",
		Reason:   "solved",
		Winner:   "alice",
		Players:  []PlayerResult{{Name: "alice", Guesses: 3, Solved: true, Won: true}, {Name: "bob", Guesses: 4}},
		ClosedAt: at,
	}
}

// exercise runs the same checks against any backend.
func exercise(t *testing.T, st Store) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	got, err := st.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, st.Save(ctx, result(id, base.Add(time.Duration(i)*time.Second))))
	}

	got, err = st.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r3", got[0].ID)
	assert.Equal(t, "r2", got[1].ID)
	assert.Equal(t, "alice", got[0].Winner)
	require.Len(t, got[0].Players, 2)
	assert.True(t, got[0].Players[0].Won)
	assert.True(t, got[0].ClosedAt.Equal(base.Add(2*time.Second)))
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore(10))
}

func TestMemoryStoreBounded(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore(2)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, st.Save(ctx, Result{ID: id}))
	}
	got, err := st.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestSQLiteStore(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "data", "results.db")
	st, err := OpenSQLite(dsn)
	require.NoError(t, err)
	defer st.Close()

	exercise(t, st)
}

func TestSQLiteMigrateIsIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "results.db")
	st, err := OpenSQLite(dsn)
	require.NoError(t, err)
	require.NoError(t, st.Save(context.Background(), result("r1", time.Now())))
	require.NoError(t, st.Close())

	st, err = OpenSQLite(dsn)
	require.NoError(t, err)
	defer st.Close()
	got, err := st.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestWriter(t *testing.T) {
	st := NewMemoryStore(10)
	w := NewWriter(st, 4)
	w.Start()

	w.Record(rooms.RoundResult{
		RoomID:   "ABCDE",
		Mode:     rooms.ModeBattle,
		Reason:   rooms.ReasonSolved,
		Winner:   "bob",
		Word:     "CRANE",
		Players:  []rooms.ResultPlayer{{Name: "bob", Guesses: 2, Solved: true, Won: true}},
		ClosedAt: time.Now(),
	})
	w.Close()

	got, err := st.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "battle", got[0].Mode)
	assert.Equal(t, "CRANE", got[0].Word)
	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, []PlayerResult{{Name: "bob", Guesses: 2, Solved: true, Won: true}}, got[0].Players)
}

func TestWriterDropsWhenFull(t *testing.T) {
	st := NewMemoryStore(10)
	w := NewWriter(st, 1)

	w.Record(rooms.RoundResult{RoomID: "A"})
	w.Record(rooms.RoundResult{RoomID: "B"})

	w.Start()
	w.Close()

	got, err := st.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].RoomID)
}
