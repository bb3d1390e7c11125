// internal/httpserver/protocol.go
//
// Websocket event protocol. Every client message is an envelope
// {"type","ref","data"}; the server answers each one with an "ack" carrying
// the same ref and pushes "room-state" snapshots on its own.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/rooms"
)

// Message types sent by the server.
const (
	msgHello     = "hello"
	msgAck       = "ack"
	msgRoomState = "room-state"
)

var (
	errBadMessage   = errors.New("malformed message")
	errUnknownEvent = errors.New("unknown event")
	errRateLimited  = errors.New("rate limited")
)

// envelope is an inbound client event. Ref is echoed on the ack.
type envelope struct {
	Type string          `json:"type"`
	Ref  string          `json:"ref,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Type string `json:"type"`
	Ref  string `json:"ref,omitempty"`
	Data any    `json:"data,omitempty"`
}

// eventData carries the fields of every client event; each event reads the
// ones it needs.
type eventData struct {
	Name       string `json:"name"`
	Mode       string `json:"mode"`
	RoomID     string `json:"roomId"`
	Secret     string `json:"secret"`
	Guess      string `json:"guess"`
	OldID      string `json:"oldId"`
	Seat       string `json:"seat"`
	MaxGuesses int    `json:"maxGuesses"`
}

type ack map[string]any

func fail(err error) ack { return ack{"error": err.Error()} }

// dispatch applies one client event on the room engine and builds its ack.
func (s *Server) dispatch(ctx context.Context, conn string, env envelope) ack {
	var d eventData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return fail(errBadMessage)
		}
	}
	roomID := strings.ToUpper(strings.TrimSpace(d.RoomID))
	res := ack{"ok": true}

	var opErr error
	run := func(fn func(r *rooms.Registry) error) error {
		if err := s.engine.Do(ctx, func(r *rooms.Registry) { opErr = fn(r) }); err != nil {
			return err
		}
		return opErr
	}

	var err error
	switch env.Type {
	case "create-room":
		err = run(func(r *rooms.Registry) error {
			room, err := r.Create(conn, d.Name, d.Mode)
			if err != nil {
				return err
			}
			roomID = room.ID
			res["roomId"] = room.ID
			return nil
		})
		if err == nil {
			s.issueSeat(res, roomID, conn)
		}
	case "join-room":
		err = run(func(r *rooms.Registry) error {
			resumed, err := r.Join(conn, roomID, d.Name)
			res["resumed"] = resumed
			return err
		})
		if err == nil {
			res["roomId"] = roomID
			s.issueSeat(res, roomID, conn)
		}
	case "resume":
		if err = s.seats.Verify(d.Seat, roomID, d.OldID); err != nil {
			break
		}
		err = run(func(r *rooms.Registry) error { return r.Resume(conn, roomID, d.OldID) })
		if err == nil {
			res["roomId"] = roomID
			s.issueSeat(res, roomID, conn)
		}
	case "leave-room":
		err = run(func(r *rooms.Registry) error {
			r.Leave(conn, roomID)
			return nil
		})
	case "set-secret":
		err = run(func(r *rooms.Registry) error { return r.SetSecret(conn, roomID, d.Secret) })
	case "make-guess":
		err = run(func(r *rooms.Registry) error {
			pat, err := r.Guess(conn, roomID, d.Guess)
			if err == nil {
				res["pattern"] = pat
			}
			return err
		})
	case "configure-room":
		err = run(func(r *rooms.Registry) error { return r.Configure(conn, roomID, d.MaxGuesses) })
	case "start-shared-round":
		err = run(func(r *rooms.Registry) error { return r.StartShared(conn, roomID) })
	case "start-battle", "set-host-word":
		err = run(func(r *rooms.Registry) error { return r.StartBattle(conn, roomID, d.Secret) })
	case "start-ai-round":
		err = run(func(r *rooms.Registry) error { return r.StartAIRound(conn, roomID) })
	case "claim-host":
		err = run(func(r *rooms.Registry) error { return r.ClaimHost(conn, roomID) })
	case "release-host":
		err = run(func(r *rooms.Registry) error { return r.ReleaseHost(conn, roomID) })
	case "play-again":
		err = run(func(r *rooms.Registry) error {
			done, err := r.PlayAgain(conn, roomID)
			res["bothRequested"] = done
			return err
		})
	default:
		err = errUnknownEvent
	}

	if err != nil {
		log.Debug().Err(err).Str("conn", conn).Str("event", env.Type).Str("room", roomID).Msg("event rejected")
		return fail(err)
	}
	return res
}

// issueSeat adds a seat token to res when seat tokens are enabled. A signing
// failure only costs the client its token.
func (s *Server) issueSeat(res ack, roomID, conn string) {
	if !s.seats.Enabled() {
		return
	}
	tok, err := s.seats.Issue(roomID, conn)
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("issue seat token")
		return
	}
	res["seat"] = tok
}

func (s *Server) disconnect(ctx context.Context, conn string) error {
	return s.engine.Do(ctx, func(r *rooms.Registry) { r.Disconnect(conn) })
}
