// internal/httpserver/server.go
//
// HTTP server wiring for the versus backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, per-IP rate limit).
//   - Public endpoints: "/", "/health".
//   - Word endpoints: /words/valid, /words/random.
//   - Lobby + history: /rooms/open, /rooms/{id}, /results/recent.
//   - Realtime: /ws upgrades to the room event protocol (see ws.go, protocol.go).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled for the configured client origin.
//   - /ws sits outside the timeout group; a hijacked connection must not be
//     bounded by the request timeout.

package httpserver

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
	"github.com/robalobadob/wordle/apps/versus-server/internal/rooms"
	"github.com/robalobadob/wordle/apps/versus-server/internal/seat"
	"github.com/robalobadob/wordle/apps/versus-server/internal/store"
	"github.com/robalobadob/wordle/apps/versus-server/internal/words"
)

// Options tunes the transport.
type Options struct {
	ClientOrigin   string
	RateLimit      float64 // HTTP requests per second per IP
	RateLimitBurst int
	EventRate      float64 // websocket events per second per connection
	EventBurst     int
	RequestTimeout time.Duration
}

// Deps are the collaborators the server routes to.
type Deps struct {
	Engine  *rooms.Engine
	Hub     *Hub
	Dict    words.Dictionary
	Results store.Store
	Seats   *seat.Signer
}

// Server bundles the router and its collaborators.
type Server struct {
	r        *chi.Mux
	opts     Options
	engine   *rooms.Engine
	hub      *Hub
	dict     words.Dictionary
	results  store.Store
	seats    *seat.Signer
	upgrader websocket.Upgrader
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options, deps Deps) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.EventRate <= 0 || opts.EventBurst < 1 {
		opts.EventRate, opts.EventBurst = 5, 10
	}
	if deps.Hub == nil {
		deps.Hub = NewHub()
	}
	if deps.Seats == nil {
		deps.Seats = seat.NewSigner("", 0)
	}

	s := &Server{
		r:       chi.NewRouter(),
		opts:    opts,
		engine:  deps.Engine,
		hub:     deps.Hub,
		dict:    deps.Dict,
		results: deps.Results,
		seats:   deps.Seats,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	if opts.RateLimit > 0 && opts.RateLimitBurst > 0 {
		s.r.Use(NewRateLimiter(opts.RateLimit, opts.RateLimitBurst).Middleware())
	}
	s.r.Use(cors(opts.ClientOrigin))

	s.r.Get("/ws", s.handleWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(opts.RequestTimeout))
		r.Use(jsonContentType)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"wordle-versus","endpoints":["/health","/words/valid","/words/random","/rooms/open","/rooms/{id}","/results/recent","/ws"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "clients": s.hub.Len()})
		})

		r.Get("/words/valid", s.handleWordValid)
		r.Get("/words/random", s.handleWordRandom)
		r.Get("/rooms/open", s.handleOpenRooms)
		r.Get("/rooms/{id}", s.handleRoom)
		r.Get("/results/recent", s.handleRecentResults)

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
		})
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// checkOrigin admits clients without an Origin header, the configured client
// origin, and same-host pages.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == s.opts.ClientOrigin {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// ------------------------------- words -------------------------------------

func (s *Server) handleWordValid(w http.ResponseWriter, r *http.Request) {
	word, err := game.Normalize(r.URL.Query().Get("word"))
	if err != nil {
		http.Error(w, `{"error":"word must be 5 letters"}`, http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"word": word, "valid": s.dict.IsValid(word)})
}

func (s *Server) handleWordRandom(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]string{"word": s.dict.Random()})
}

// ------------------------------ lobby --------------------------------------

func (s *Server) handleOpenRooms(w http.ResponseWriter, r *http.Request) {
	var list []rooms.RoomSummary
	if err := s.engine.Do(r.Context(), func(reg *rooms.Registry) { list = reg.OpenRooms() }); err != nil {
		log.Warn().Err(err).Msg("list open rooms")
		http.Error(w, `{"error":"unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	_ = json.NewEncoder(w).Encode(list)
}

// handleRoom returns the same sanitized snapshot members receive.
func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	var (
		snap rooms.Snapshot
		ok   bool
	)
	id := chi.URLParam(r, "id")
	if err := s.engine.Do(r.Context(), func(reg *rooms.Registry) { snap, ok = reg.Snapshot(id) }); err != nil {
		log.Warn().Err(err).Msg("room snapshot")
		http.Error(w, `{"error":"unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleRecentResults(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, `{"error":"bad_limit"}`, http.StatusBadRequest)
			return
		}
		limit = n
	}
	out, err := s.results.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("recent results")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(out)
}
