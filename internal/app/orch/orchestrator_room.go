package orch

import (
	"github.com/E1Shivank/whispr/internal/app"
	"github.com/E1Shivank/whispr/internal/core"
	"github.com/E1Shivank/whispr/internal/domain"
	"github.com/rs/zerolog/log"
)

// Connect registers a transport that has not joined any room yet.
func (o *Orchestrator) Connect(id core.ConnID, conn core.SignalConnection, label string) {
	o.Registry.Bind(id, conn, label)
}

// Join puts the connection into chat under p's identity and announces it to
// the others. A connection sitting in another room leaves it first. The
// returned snapshot includes the joiner.
func (o *Orchestrator) Join(id core.ConnID, chat domain.ChatID, p domain.Participant) []core.MemberDTO {
	if prevChat, prevUser, ok := o.Registry.RoomOf(id); ok && (prevChat != chat || prevUser != p.ID) {
		log.Info().Str("module", "orch").Str("conn", string(id)).Str("from_chat", string(prevChat)).Msg("switching rooms")
		o.Leave(id)
	}

	members, replaced := o.Rooms.Join(chat, p, id)
	o.Registry.Attach(id, chat, p.ID)
	if replaced != nil && replaced.Conn != id {
		o.evict(replaced.Conn)
	}

	o.Relay.Broadcast(chat, p.ID, app.EventUserJoined, app.UserJoined{
		UserID:    p.ID,
		PublicKey: p.PublicKey,
		Timestamp: o.millis(),
	})
	return members
}

// Leave is the explicit leave: the connection stays open and may join again.
func (o *Orchestrator) Leave(id core.ConnID) {
	chat, user, ok := o.Registry.Detach(id)
	if !ok {
		return
	}
	if o.Rooms.LeaveConn(chat, user, id) {
		o.announceDeparture(chat, user)
	}
}

// Disconnect releases everything held for a closed transport. It is safe to
// call more than once.
func (o *Orchestrator) Disconnect(id core.ConnID) {
	chat, user, ok := o.Registry.Unbind(id)
	if !ok {
		return
	}
	if o.Rooms.LeaveConn(chat, user, id) {
		o.announceDeparture(chat, user)
	}
}

// evict takes over for a superseded connection: it no longer speaks for
// anyone, and its transport is closed once the buffered frames drain.
func (o *Orchestrator) evict(id core.ConnID) {
	o.Registry.Detach(id)
	if conn, ok := o.Registry.Connection(id); ok {
		log.Info().Str("module", "orch").Str("conn", string(id)).Msg("evicting superseded connection")
		conn.Close()
	}
}

// announceDeparture tells the room a member is gone. Any call it was part of
// is considered dead, so call-end goes out unconditionally.
func (o *Orchestrator) announceDeparture(chat domain.ChatID, user domain.UserID) {
	o.Relay.Broadcast(chat, user, app.EventUserLeft, app.UserLeft{UserID: user, Timestamp: o.millis()})
	o.Relay.Broadcast(chat, user, app.EventCallEnd, app.CallEnd{})
}
