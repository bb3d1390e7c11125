// internal/rooms/registry.go
//
// Room Registry: the single owner of every active room.
//
// Responsibilities:
//   - Create rooms with unique short codes and register the creator.
//   - Join, resume (by name or by previous identity), disconnect and leave.
//   - Dispatch guesses and round actions to the per-mode handlers.
//   - Sweep players that stayed disconnected longer than the TTL.
//   - Push a sanitized snapshot to every connected member after each change.
//
// Notes:
//   - Registry is NOT safe for concurrent use. Engine serializes every call
//     (client events, timer callbacks, sweeps) onto one goroutine.
//   - Handlers validate before they mutate; an error return means the room
//     was not touched.

package rooms

import (
	"crypto/rand"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
	"github.com/robalobadob/wordle/apps/versus-server/internal/words"
)

// Scheduler runs fn once after d unless the key is cancelled first.
// Scheduling an existing key replaces the pending callback.
type Scheduler interface {
	Schedule(key string, d time.Duration, fn func())
	Cancel(key string)
}

// Broadcaster delivers a room snapshot to one connection.
type Broadcaster interface {
	Send(connID string, snap Snapshot)
}

// Recorder receives every finalized round.
type Recorder interface {
	Record(res RoundResult)
}

// RoundResult summarises a closed round for the results ledger.
type RoundResult struct {
	RoomID   string
	Mode     Mode
	Reason   CloseReason
	Winner   string // winner name, Draw, or empty
	Word     string // shared and battle only
	Players  []ResultPlayer
	ClosedAt time.Time
}

// ResultPlayer is one participant line of a RoundResult.
type ResultPlayer struct {
	Name    string
	Guesses int
	Solved  bool
	Won     bool
}

// Options are the tunables of the registry.
type Options struct {
	DuelRound        time.Duration
	AICountdown      time.Duration
	PlayerTTL        time.Duration
	SharedMaxPlayers int
	SharedMaxGuesses int
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{
		DuelRound:        5 * time.Minute,
		AICountdown:      10 * time.Second,
		PlayerTTL:        30 * time.Minute,
		SharedMaxPlayers: 4,
		SharedMaxGuesses: 6,
	}
}

// Deps are the collaborators of the registry. Broadcaster and Recorder may be nil.
type Deps struct {
	Dict        words.Dictionary
	Scheduler   Scheduler
	Broadcaster Broadcaster
	Recorder    Recorder
	Now         func() time.Time
}

// Registry owns the map of active rooms and the connection index.
type Registry struct {
	rooms map[string]*Room
	conns map[string]string // connection id -> room id

	opts  Options
	dict  words.Dictionary
	sched Scheduler
	out   Broadcaster
	rec   Recorder
	now   func() time.Time
}

// NewRegistry constructs an empty registry.
func NewRegistry(opts Options, deps Deps) *Registry {
	r := &Registry{
		rooms: make(map[string]*Room),
		conns: make(map[string]string),
		opts:  opts,
		dict:  deps.Dict,
		sched: deps.Scheduler,
		out:   deps.Broadcaster,
		rec:   deps.Recorder,
		now:   deps.Now,
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.sched == nil {
		r.sched = nopScheduler{}
	}
	return r
}

type nopScheduler struct{}

func (nopScheduler) Schedule(string, time.Duration, func()) {}
func (nopScheduler) Cancel(string)                          {}

// ------------------------------ lifecycle ----------------------------------

// Create opens a new room with conn as its first player. An unrecognized
// mode falls back to duel.
func (r *Registry) Create(conn, name, mode string) (*Room, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	m, known := ParseMode(mode)

	room := &Room{
		ID:        r.newCode(),
		Mode:      m,
		Players:   make(map[string]*Player),
		CreatedAt: r.now(),
	}
	if !known {
		log.Warn().Str("room", room.ID).Str("requested", mode).Msg("unknown mode, falling back to duel")
	}
	switch m {
	case ModeDuel:
		room.State = &DuelState{}
	case ModeShared:
		room.State = &SharedState{MaxGuesses: r.opts.SharedMaxGuesses}
	case ModeBattle:
		room.State = &BattleState{}
	case ModeBattleAI:
		room.State = &BattleState{AI: true, PendingStart: true}
	}

	r.detach(conn)
	room.addPlayer(conn, name)
	if m != ModeBattleAI {
		room.HostID = conn
	}
	r.rooms[room.ID] = room
	r.conns[conn] = room.ID

	room.log(log.Info()).Str("player", conn).Msg("room created")
	r.broadcast(room)
	return room, nil
}

// Join adds conn to a room. A disconnected player with the same name
// (case-insensitive) is resumed instead; resumed reports which happened.
func (r *Registry) Join(conn, roomID, name string) (resumed bool, err error) {
	name, err = cleanName(name)
	if err != nil {
		return false, err
	}
	room, err := r.lookup(roomID)
	if err != nil {
		return false, err
	}

	if p, ok := room.Players[conn]; ok {
		if !p.Disconnected {
			return false, nil
		}
		r.detach(conn)
		r.transferIdentity(room, conn, conn)
		r.broadcast(room)
		return true, nil
	}

	if oldID, ok := FindResumableIdentity(room, name); ok {
		r.detach(conn)
		r.transferIdentity(room, oldID, conn)
		room.log(log.Info()).Str("player", conn).Str("from", oldID).Msg("player resumed by name")
		r.broadcast(room)
		return true, nil
	}

	for _, p := range room.Players {
		if !p.Disconnected && strings.EqualFold(p.Name, name) {
			return false, ErrNameTaken
		}
	}
	switch room.Mode {
	case ModeDuel:
		if len(room.Players) >= 2 {
			return false, ErrRoomFull
		}
	case ModeShared:
		if room.Started {
			return false, ErrRoundLive
		}
		if len(room.Players) >= r.opts.SharedMaxPlayers {
			return false, ErrRoomFull
		}
	}

	r.detach(conn)
	room.addPlayer(conn, name)
	r.conns[conn] = room.ID

	room.log(log.Info()).Str("player", conn).Msg("player joined")
	r.broadcast(room)
	return false, nil
}

// Resume attaches conn to the seat previously held by oldID.
func (r *Registry) Resume(conn, roomID, oldID string) error {
	room, err := r.lookup(roomID)
	if err != nil {
		return err
	}
	p, ok := room.Players[oldID]
	if !ok {
		return ErrSeatNotFound
	}
	if !p.Disconnected {
		if oldID == conn {
			return nil
		}
		return ErrSeatInUse
	}
	if _, taken := room.Players[conn]; taken && conn != oldID {
		return ErrSeatInUse
	}

	r.detach(conn)
	r.transferIdentity(room, oldID, conn)
	room.log(log.Info()).Str("player", conn).Str("from", oldID).Msg("player resumed")
	r.broadcast(room)
	return nil
}

// FindResumableIdentity returns the id of the earliest-joined disconnected
// player whose name matches case-insensitively.
func FindResumableIdentity(room *Room, name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, p := range room.ordered() {
		if p.Disconnected && strings.EqualFold(p.Name, name) {
			return p.ID, true
		}
	}
	return "", false
}

// transferIdentity moves the seat of oldID to newID, rewriting every
// reference to the old identity, and marks it connected.
func (r *Registry) transferIdentity(room *Room, oldID, newID string) {
	p := room.Players[oldID]
	if oldID != newID {
		delete(room.Players, oldID)
		p.ID = newID
		room.Players[newID] = p

		if room.HostID == oldID {
			room.HostID = newID
		}
		if room.Winner == oldID {
			room.Winner = newID
		}
		switch s := room.State.(type) {
		case *DuelState:
			if secret, ok := s.Revealed[oldID]; ok {
				delete(s.Revealed, oldID)
				s.Revealed[newID] = secret
			}
		case *BattleState:
			if s.Setter == oldID {
				s.Setter = newID
			}
		case *SharedState:
			if s.Turn == oldID {
				s.Turn = newID
			}
			for i, id := range s.Order {
				if id == oldID {
					s.Order[i] = newID
				}
			}
			for i := range s.History {
				if s.History[i].PlayerID == oldID {
					s.History[i].PlayerID = newID
				}
			}
		}
		if r.conns[oldID] == room.ID {
			delete(r.conns, oldID)
		}
	}
	p.Disconnected = false
	p.DisconnectedAt = time.Time{}
	r.conns[newID] = room.ID

	if room.HostID == "" && room.Mode != ModeBattleAI {
		room.HostID = newID
		room.log(log.Info()).Str("host", newID).Msg("host reassigned")
	}
	if s := room.Shared(); s != nil && room.Started {
		if t, ok := room.Players[s.Turn]; !ok || t.Disconnected {
			r.advanceTurn(room)
		}
	}
}

// Disconnect marks the player behind conn as disconnected. The seat is kept
// for resumption until the TTL sweep removes it.
func (r *Registry) Disconnect(conn string) {
	roomID, ok := r.conns[conn]
	if !ok {
		return
	}
	delete(r.conns, conn)
	room, ok := r.rooms[roomID]
	if !ok {
		return
	}
	p, ok := room.Players[conn]
	if !ok {
		return
	}
	p.Disconnected = true
	p.DisconnectedAt = r.now()
	room.log(log.Info()).Str("player", conn).Msg("player disconnected")

	r.onDeparture(room, p, false)
	r.broadcast(room)
}

// Leave removes conn's player permanently. An empty roomID means the room
// the connection is currently in.
func (r *Registry) Leave(conn, roomID string) {
	if roomID == "" {
		roomID = r.conns[conn]
	}
	room, ok := r.rooms[normalizeCode(roomID)]
	if !ok {
		return
	}
	p, ok := room.Players[conn]
	if !ok {
		return
	}
	if r.conns[conn] == room.ID {
		delete(r.conns, conn)
	}
	r.removePlayer(room, p, "left")
}

// Sweep evicts players that have been disconnected for at least the TTL.
// It returns the number of players removed.
func (r *Registry) Sweep(now time.Time) int {
	evicted := 0
	for _, room := range r.rooms {
		for _, p := range room.ordered() {
			if p.Disconnected && now.Sub(p.DisconnectedAt) >= r.opts.PlayerTTL {
				r.removePlayer(room, p, "expired")
				evicted++
			}
		}
	}
	if evicted > 0 {
		log.Info().Int("evicted", evicted).Int("rooms", len(r.rooms)).Msg("sweep finished")
	}
	return evicted
}

// removePlayer deletes p from room, runs the departure hooks and drops the
// room once it is empty.
func (r *Registry) removePlayer(room *Room, p *Player, why string) {
	if room.Mode == ModeDuel && room.Started {
		if opp := opponent(room, p); opp != nil {
			r.finish(room, opp.ID, ReasonForfeit)
		}
	}
	delete(room.Players, p.ID)
	room.log(log.Info()).Str("player", p.ID).Str("why", why).Msg("player removed")

	r.onDeparture(room, p, true)
	if len(room.Players) == 0 {
		r.removeRoom(room)
		return
	}
	r.broadcast(room)
}

// onDeparture applies mode rules after p disconnected (removed=false) or was
// deleted (removed=true).
func (r *Registry) onDeparture(room *Room, p *Player, removed bool) {
	switch room.Mode {
	case ModeDuel:
		r.handOffHost(room, p.ID, removed)
	case ModeShared:
		s := room.Shared()
		if room.Started && s.Turn == p.ID {
			r.advanceTurn(room)
		}
		if removed {
			s.Order = without(s.Order, p.ID)
			if s.Turn == p.ID {
				s.Turn = ""
			}
		}
		r.handOffHost(room, p.ID, removed)
	case ModeBattle:
		if removed {
			r.handOffHost(room, p.ID, true)
		}
		r.checkBattleExhausted(room)
	case ModeBattleAI:
		// A claimed host who drops mid-round keeps the claim until the round
		// closes, so a quick reconnect resumes as host.
		if b := room.Battle(); b.HostClaimed && room.HostID == p.ID && (removed || !room.Started) {
			r.releaseAIHost(room)
		}
		r.checkBattleExhausted(room)
	}
}

// handOffHost moves the host role away from id. Without another connected
// player the host is kept on disconnect and unset on removal.
func (r *Registry) handOffHost(room *Room, id string, removed bool) {
	if room.HostID != id {
		return
	}
	next := room.firstConnectedExcept(id)
	if next == "" && !removed {
		return
	}
	room.HostID = next
	room.log(log.Info()).Str("host", next).Msg("host reassigned")
}

func (r *Registry) removeRoom(room *Room) {
	r.sched.Cancel(duelKey(room.ID))
	r.sched.Cancel(aiKey(room.ID))
	for conn, id := range r.conns {
		if id == room.ID {
			delete(r.conns, conn)
		}
	}
	delete(r.rooms, room.ID)
	room.log(log.Info()).Msg("room removed")
}

// detach disconnects conn from the room it currently belongs to.
func (r *Registry) detach(conn string) {
	if _, ok := r.conns[conn]; ok {
		r.Disconnect(conn)
	}
}

// ------------------------------- dispatch ----------------------------------

// Guess scores a guess for conn under the room's mode rules.
func (r *Registry) Guess(conn, roomID, raw string) (game.Pattern, error) {
	room, p, err := r.member(conn, roomID)
	if err != nil {
		return nil, err
	}
	var pat game.Pattern
	switch room.Mode {
	case ModeDuel:
		pat, err = r.duelGuess(room, p, raw)
	case ModeShared:
		pat, err = r.sharedGuess(room, p, raw)
	default:
		pat, err = r.battleGuess(room, p, raw)
	}
	if err != nil {
		return nil, err
	}
	r.broadcast(room)
	return pat, nil
}

// PlayAgain records a rematch request. done reports whether the request
// completed the set needed to reset the room.
func (r *Registry) PlayAgain(conn, roomID string) (done bool, err error) {
	room, p, err := r.member(conn, roomID)
	if err != nil {
		return false, err
	}
	switch room.Mode {
	case ModeDuel:
		done, err = r.duelPlayAgain(room, p)
	case ModeShared:
		done, err = r.sharedPlayAgain(room, p)
	default:
		done, err = r.battlePlayAgain(room, p)
	}
	if err != nil {
		return false, err
	}
	r.broadcast(room)
	return done, nil
}

// ------------------------------- resolution --------------------------------

// finish is the single idempotent round-closing transition. It returns false
// when the round was already closed, in which case nothing is mutated.
func (r *Registry) finish(room *Room, winner string, reason CloseReason) bool {
	if !room.closeRound(reason) {
		room.log(log.Debug()).Str("reason", string(reason)).Msg("round already closed")
		return false
	}
	room.Winner = winner
	for _, p := range participants(room) {
		if p.ID == winner {
			p.Wins++
			p.Streak++
		} else {
			p.Streak = 0
		}
	}

	switch s := room.State.(type) {
	case *DuelState:
		r.sched.Cancel(duelKey(room.ID))
		s.Deadline = time.Time{}
		s.Revealed = make(map[string]string, len(room.Players))
		for id, p := range room.Players {
			s.Revealed[id] = p.Secret
		}
	case *SharedState:
		s.Revealed = s.Secret
		s.Turn = ""
	case *BattleState:
		s.Revealed = s.Secret
		switch {
		case s.AI && s.HostClaimed:
			if h, ok := room.Players[room.HostID]; !ok || h.Disconnected {
				r.releaseAIHost(room)
			}
		case s.AI:
			r.scheduleAIRound(room)
		}
	}

	room.log(log.Info()).Str("winner", winner).Str("reason", string(reason)).Msg("round closed")
	r.record(room)
	return true
}

// participants are the players whose stats a closed round updates.
func participants(room *Room) []*Player {
	switch s := room.State.(type) {
	case *SharedState:
		var out []*Player
		for _, id := range s.Order {
			if p, ok := room.Players[id]; ok {
				out = append(out, p)
			}
		}
		return out
	case *BattleState:
		return room.guessers()
	}
	return room.ordered()
}

func (r *Registry) record(room *Room) {
	if r.rec == nil {
		return
	}
	res := RoundResult{
		RoomID:   room.ID,
		Mode:     room.Mode,
		Reason:   room.Round.Reason,
		ClosedAt: r.now(),
	}
	switch room.Winner {
	case "", Draw:
		res.Winner = room.Winner
	default:
		if p, ok := room.Players[room.Winner]; ok {
			res.Winner = p.Name
		}
	}
	switch s := room.State.(type) {
	case *SharedState:
		res.Word = s.Secret
	case *BattleState:
		res.Word = s.Secret
	}
	for _, p := range participants(room) {
		res.Players = append(res.Players, ResultPlayer{
			Name:    p.Name,
			Guesses: len(p.Guesses),
			Solved:  p.solved(),
			Won:     p.ID == room.Winner,
		})
	}
	r.rec.Record(res)
}

// ------------------------------- queries -----------------------------------

// Room returns the room with the given code.
func (r *Registry) Room(id string) (*Room, bool) {
	room, ok := r.rooms[normalizeCode(id)]
	return room, ok
}

// RoomOf returns the id of the room conn currently belongs to.
func (r *Registry) RoomOf(conn string) (string, bool) {
	id, ok := r.conns[conn]
	return id, ok
}

// Snapshot returns the sanitized view of a room.
func (r *Registry) Snapshot(id string) (Snapshot, bool) {
	room, ok := r.Room(id)
	if !ok {
		return Snapshot{}, false
	}
	return Sanitize(room), true
}

// RoomSummary is one line of the open-rooms listing.
type RoomSummary struct {
	ID        string    `json:"id"`
	Mode      Mode      `json:"mode"`
	Host      string    `json:"host,omitempty"`
	Players   int       `json:"players"`
	Started   bool      `json:"started"`
	CreatedAt time.Time `json:"createdAt"`
}

// OpenRooms lists rooms a new player could join, oldest first.
func (r *Registry) OpenRooms() []RoomSummary {
	out := []RoomSummary{}
	for _, room := range r.rooms {
		if !r.joinable(room) {
			continue
		}
		sum := RoomSummary{
			ID:        room.ID,
			Mode:      room.Mode,
			Players:   len(room.connected()),
			Started:   room.Started,
			CreatedAt: room.CreatedAt,
		}
		if h, ok := room.Players[room.HostID]; ok {
			sum.Host = h.Name
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *Registry) joinable(room *Room) bool {
	switch room.Mode {
	case ModeDuel:
		return len(room.Players) < 2
	case ModeShared:
		return !room.Started && len(room.Players) < r.opts.SharedMaxPlayers
	}
	return true
}

// Len returns the number of active rooms.
func (r *Registry) Len() int { return len(r.rooms) }

// ------------------------------- helpers -----------------------------------

func (r *Registry) broadcast(room *Room) {
	if r.out == nil {
		return
	}
	snap := Sanitize(room)
	for _, p := range room.connected() {
		r.out.Send(p.ID, snap)
	}
}

func (r *Registry) lookup(roomID string) (*Room, error) {
	room, ok := r.rooms[normalizeCode(roomID)]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// member resolves a room and the connected player behind conn.
func (r *Registry) member(conn, roomID string) (*Room, *Player, error) {
	room, err := r.lookup(roomID)
	if err != nil {
		return nil, nil, err
	}
	p, ok := room.Players[conn]
	if !ok || p.Disconnected {
		return nil, nil, ErrNotInRoom
	}
	return room, p, nil
}

// checkWord normalizes raw and checks dictionary membership.
func (r *Registry) checkWord(raw string) (string, error) {
	w, err := game.Normalize(raw)
	if err != nil {
		return "", err
	}
	ok, err := r.isValid(w)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotInWordList
	}
	return w, nil
}

// guessed reports whether w is already among gs.
func guessed(gs []game.Guess, w string) bool {
	for _, g := range gs {
		if g.Word == w {
			return true
		}
	}
	return false
}

func (r *Registry) isValid(w string) (ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("dictionary lookup failed")
			ok, err = false, ErrDictionaryUnavailable
		}
	}()
	return r.dict.IsValid(w), nil
}

func (r *Registry) randomWord() (w string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("dictionary random pick failed")
			w, err = "", ErrDictionaryUnavailable
		}
	}()
	w, err = game.Normalize(r.dict.Random())
	if err != nil {
		return "", ErrDictionaryUnavailable
	}
	return w, nil
}

const maxNameLen = 20

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLen {
		return "", ErrInvalidName
	}
	return name, nil
}

func normalizeCode(id string) string { return strings.ToUpper(strings.TrimSpace(id)) }

const codeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newCode generates a 5-character room code not used by any active room.
func (r *Registry) newCode() string {
	for {
		b := make([]byte, 5)
		_, _ = rand.Read(b)
		for i := range b {
			b[i] = codeChars[int(b[i])%len(codeChars)]
		}
		if _, exists := r.rooms[string(b)]; !exists {
			return string(b)
		}
	}
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
