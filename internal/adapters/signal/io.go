package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/E1Shivank/whispr/internal/app"
	"github.com/E1Shivank/whispr/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.settings.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.settings.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.settings.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, s *session) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(s.id)).Stringer("state", s.state).Msg("readPump closing")
		s.state = stateClosed
		ctl.Orch.Disconnect(s.id)
		s.conn.Close()
	}()

	c := s.conn.conn
	c.SetReadLimit(ctl.settings.ReadLimit)
	_ = c.SetReadDeadline(time.Now().Add(ctl.settings.PongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(ctl.settings.PongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(s.id)).Msg("readPump read error")
			}
			return
		}
		_ = c.SetReadDeadline(time.Now().Add(ctl.settings.PongWait))
		ctl.handleSignal(s, data)
	}
}

func (ctl *SignalWSController) handleSignal(s *session, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "signal").Str("conn", string(s.id)).Interface("panic", r).Msg("handler panic")
		}
	}()

	if s.state == stateClosed {
		return
	}

	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(s.id)).Msg("bad json")
		ctl.sendError(s, "bad_json")
		return
	}

	h, ok := ctl.handlers[env.Type]
	if !ok {
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		return
	}
	if !s.limiter.Allow(time.Now()) {
		log.Warn().Str("module", "signal").Str("conn", string(s.id)).Str("type", env.Type).Msg("rate limited")
		ctl.sendError(s, "rate_limited")
		return
	}
	if h.needsRoom && !ctl.syncRoom(s) {
		log.Warn().Str("module", "signal").Str("conn", string(s.id)).Str("type", env.Type).Msg("not in a room")
		return
	}
	h.fn(s, env.Data)
}

// syncRoom reconciles local state with the registry, which is the authority:
// a superseded connection loses its room without being told.
func (ctl *SignalWSController) syncRoom(s *session) bool {
	chat, user, ok := ctl.Orch.Registry.RoomOf(s.id)
	if !ok {
		s.leftRoom()
		return false
	}
	s.enteredRoom(chat, user)
	return true
}

// decode unmarshals an event body and validates it. A missing body decodes to
// the zero value so events without fields still validate.
func (ctl *SignalWSController) decode(data json.RawMessage, v any) error {
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, v); err != nil {
			return err
		}
	}
	return ctl.validate.Struct(v)
}

// sendJSON replies to the session's own connection through the relay, so
// replies and room traffic share one send path.
func (ctl *SignalWSController) sendJSON(s *session, event string, v any) {
	if err := ctl.Orch.Relay.Send(s.id, event, v); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(s.id)).Str("event", event).Msg("sendJSON")
	}
}

func (ctl *SignalWSController) sendError(s *session, msg string) {
	ctl.sendJSON(s, app.EventError, app.ErrorEvent{Message: msg})
}
