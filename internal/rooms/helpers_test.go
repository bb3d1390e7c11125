package rooms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
)

type fakeScheduler struct {
	pending   map[string]func()
	durations map[string]time.Duration
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{pending: map[string]func(){}, durations: map[string]time.Duration{}}
}

func (s *fakeScheduler) Schedule(key string, d time.Duration, fn func()) {
	s.pending[key] = fn
	s.durations[key] = d
}

func (s *fakeScheduler) Cancel(key string) { delete(s.pending, key) }

func (s *fakeScheduler) has(key string) bool {
	_, ok := s.pending[key]
	return ok
}

// fire runs and removes the callback for key.
func (s *fakeScheduler) fire(key string) bool {
	fn, ok := s.pending[key]
	if !ok {
		return false
	}
	delete(s.pending, key)
	fn()
	return true
}

type fakeBroadcaster struct {
	sent map[string][]Snapshot
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{sent: map[string][]Snapshot{}}
}

func (b *fakeBroadcaster) Send(conn string, snap Snapshot) {
	b.sent[conn] = append(b.sent[conn], snap)
}

func (b *fakeBroadcaster) last(conn string) (Snapshot, bool) {
	s := b.sent[conn]
	if len(s) == 0 {
		return Snapshot{}, false
	}
	return s[len(s)-1], true
}

type fakeRecorder struct {
	results []RoundResult
}

func (r *fakeRecorder) Record(res RoundResult) { r.results = append(r.results, res) }

type fakeDict struct {
	words  map[string]bool
	next   string
	panics bool
}

func newFakeDict(ws ...string) *fakeDict {
	d := &fakeDict{words: map[string]bool{}}
	for _, w := range ws {
		d.words[w] = true
	}
	return d
}

func (d *fakeDict) IsValid(w string) bool {
	if d.panics {
		panic("dictionary down")
	}
	return d.words[w]
}

func (d *fakeDict) Random() string {
	if d.panics {
		panic("dictionary down")
	}
	return d.next
}

// wrong holds six valid words that are never used as secrets below.
var wrong = []string{"GHOST", "FLAME", "BRICK", "PIOUS", "ADIEU", "ROATE"}

type harness struct {
	reg   *Registry
	sched *fakeScheduler
	out   *fakeBroadcaster
	rec   *fakeRecorder
	dict  *fakeDict
	now   time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		sched: newFakeScheduler(),
		out:   newFakeBroadcaster(),
		rec:   &fakeRecorder{},
		dict:  newFakeDict("CRANE", "SLATE", "LLAMA", "ALLOT", "GHOST", "FLAME", "BRICK", "PIOUS", "ADIEU", "ROATE"),
		now:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	h.dict.next = "LLAMA"
	h.reg = NewRegistry(DefaultOptions(), Deps{
		Dict:        h.dict,
		Scheduler:   h.sched,
		Broadcaster: h.out,
		Recorder:    h.rec,
		Now:         func() time.Time { return h.now },
	})
	return h
}

func (h *harness) advance(d time.Duration) { h.now = h.now.Add(d) }

func (h *harness) create(t *testing.T, conn, name string, mode Mode) *Room {
	t.Helper()
	room, err := h.reg.Create(conn, name, string(mode))
	require.NoError(t, err)
	return room
}

func (h *harness) join(t *testing.T, conn string, room *Room, name string) {
	t.Helper()
	resumed, err := h.reg.Join(conn, room.ID, name)
	require.NoError(t, err)
	require.False(t, resumed)
}

func (h *harness) guess(t *testing.T, conn string, room *Room, word string) game.Pattern {
	t.Helper()
	pat, err := h.reg.Guess(conn, room.ID, word)
	require.NoError(t, err)
	return pat
}

// duel returns a live duel: c1/alice holds CRANE, c2/bob holds SLATE.
func (h *harness) duel(t *testing.T) *Room {
	t.Helper()
	room := h.create(t, "c1", "alice", ModeDuel)
	h.join(t, "c2", room, "bob")
	require.NoError(t, h.reg.SetSecret("c1", room.ID, "crane"))
	require.NoError(t, h.reg.SetSecret("c2", room.ID, "slate"))
	require.True(t, room.Started)
	return room
}

// battle returns a battle room hosted by c1 with guessers c2 and c3.
func (h *harness) battle(t *testing.T) *Room {
	t.Helper()
	room := h.create(t, "c1", "host", ModeBattle)
	h.join(t, "c2", room, "bob")
	h.join(t, "c3", room, "carol")
	return room
}
