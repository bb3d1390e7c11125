// internal/httpserver/ws.go
//
// Websocket client lifecycle: upgrade, read pump, write pump, keepalive.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
	eventTimeout   = 5 * time.Second
)

// client is one websocket connection. Its id is the player identity used by
// the room engine.
type client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	limiter *rate.Limiter
}

// enqueue queues msg for the write pump, dropping it if the client is gone
// or too slow.
func (c *client) enqueue(msg []byte) {
	select {
	case c.send <- msg:
	case <-c.done:
	default:
		log.Warn().Str("conn", c.id).Msg("send buffer full, dropping message")
	}
}

func (c *client) reply(v outbound) {
	msg, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("conn", c.id).Msg("encode reply")
		return
	}
	c.enqueue(msg)
}

// handleWS upgrades the request and runs the client until it disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	c := &client{
		id:      uuid.NewString(),
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(rate.Limit(s.opts.EventRate), s.opts.EventBurst),
	}
	s.hub.add(c)
	log.Info().Str("conn", c.id).Str("remote", r.RemoteAddr).Msg("client connected")

	c.reply(outbound{Type: msgHello, Data: map[string]string{"id": c.id}})
	go c.writePump()
	s.readPump(c)
}

// readPump decodes events until the socket fails, then detaches the client
// from its room. Seats survive for resumption.
func (s *Server) readPump(c *client) {
	defer func() {
		close(c.done)
		s.hub.remove(c.id)
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()
		if err := s.disconnect(ctx, c.id); err != nil {
			log.Warn().Err(err).Str("conn", c.id).Msg("disconnect")
		}
		_ = c.conn.Close()
		log.Info().Str("conn", c.id).Msg("client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("conn", c.id).Msg("read")
			}
			return
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.reply(outbound{Type: msgAck, Data: fail(errBadMessage)})
			continue
		}
		if !c.limiter.Allow() {
			c.reply(outbound{Type: msgAck, Ref: env.Ref, Data: fail(errRateLimited)})
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		res := s.dispatch(ctx, c.id, env)
		cancel()
		c.reply(outbound{Type: msgAck, Ref: env.Ref, Data: res})
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
