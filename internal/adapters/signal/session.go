package signal

import (
	"github.com/E1Shivank/whispr/internal/core"
	"github.com/E1Shivank/whispr/internal/domain"
)

type sessionState int

const (
	stateConnected sessionState = iota
	stateInRoom
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateConnected:
		return "connected"
	case stateInRoom:
		return "in_room"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// session is the per-connection state. Only the connection's read pump touches it.
type session struct {
	id      core.ConnID
	conn    *WsSignalConn
	limiter *rateLimiter

	state sessionState
	chat  domain.ChatID
	user  domain.UserID
}

func newSession(id core.ConnID, conn *WsSignalConn, limiter *rateLimiter) *session {
	return &session{id: id, conn: conn, limiter: limiter, state: stateConnected}
}

func (s *session) enteredRoom(chat domain.ChatID, user domain.UserID) {
	if s.state == stateClosed {
		return
	}
	s.state, s.chat, s.user = stateInRoom, chat, user
}

func (s *session) leftRoom() {
	if s.state == stateClosed {
		return
	}
	s.state, s.chat, s.user = stateConnected, "", ""
}

// owns reports whether an event naming chatID may be routed through this
// session's room. An empty chatID means the current room.
func (s *session) owns(chatID string) bool {
	return chatID == "" || domain.ChatID(chatID) == s.chat
}
