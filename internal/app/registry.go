package app

import (
	"sync"

	"github.com/E1Shivank/whispr/internal/core"
	"github.com/E1Shivank/whispr/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	Conn   core.SignalConnection
	Label  string
	ChatID domain.ChatID
	UserID domain.UserID
}

// Registry is the connection registry. It exclusively owns the transport
// handle of every live connection; rooms only refer to entries by ConnID.
type Registry struct {
	mu    sync.RWMutex
	conns map[core.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[core.ConnID]*connEntry)}
}

// Bind registers a freshly opened connection that has not joined a room yet.
func (r *Registry) Bind(id core.ConnID, conn core.SignalConnection, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connEntry{Conn: conn, Label: label}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("client", label).Msg("bound connection")
}

// Attach records which room and identity a connection currently speaks for.
func (r *Registry) Attach(id core.ConnID, chat domain.ChatID, user domain.UserID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return false
	}
	e.ChatID, e.UserID = chat, user
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("chat", string(chat)).Str("user", string(user)).Msg("attached to room")
	return true
}

// Detach clears the room association but keeps the transport registered.
func (r *Registry) Detach(id core.ConnID) (domain.ChatID, domain.UserID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok || e.ChatID == "" {
		return "", "", false
	}
	chat, user := e.ChatID, e.UserID
	e.ChatID, e.UserID = "", ""
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("chat", string(chat)).Msg("detached from room")
	return chat, user, true
}

// RoomOf locates the room and identity a connection belongs to. The transport
// layer only reports that a connection closed, so teardown starts here.
func (r *Registry) RoomOf(id core.ConnID) (domain.ChatID, domain.UserID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok || e.ChatID == "" {
		return "", "", false
	}
	return e.ChatID, e.UserID, true
}

func (r *Registry) Connection(id core.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.Conn, true
	}
	return nil, false
}

// Unbind forgets the connection and reports the room it was attached to, if any.
func (r *Registry) Unbind(id core.ConnID) (domain.ChatID, domain.UserID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return "", "", false
	}
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unbind connection")
	if e.ChatID == "" {
		return "", "", false
	}
	return e.ChatID, e.UserID, true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
