package core

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/E1Shivank/whispr/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Member is a Room Table entry. Conn is a back-reference into the connection
// registry; the table never touches transport resources.
type Member struct {
	domain.Participant
	Conn ConnID
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID        domain.UserID   `json:"id"`
	PublicKey json.RawMessage `json:"publicKey,omitempty"`
}

func (m Member) DTO() MemberDTO {
	return MemberDTO{ID: m.ID, PublicKey: m.PublicKey}
}

type RoomStats struct {
	Rooms   int `json:"rooms"`
	Members int `json:"members"`
}

// RoomTable maps a chat id to its members in join order.
// A chat id never maps to an empty slice: rooms exist only while occupied.
type RoomTable struct {
	mu    sync.RWMutex
	rooms map[domain.ChatID][]Member
}

func NewRoomTable() *RoomTable {
	return &RoomTable{rooms: make(map[domain.ChatID][]Member)}
}

// Join appends the participant to the room, creating the room if needed.
// A previous entry with the same identity is removed and returned; its
// connection is left alone, evicting it is the caller's job.
func (t *RoomTable) Join(chat domain.ChatID, p domain.Participant, conn ConnID) ([]MemberDTO, *Member) {
	t.mu.Lock()
	defer t.mu.Unlock()

	members := t.rooms[chat]
	var replaced *Member
	if i := slices.IndexFunc(members, func(m Member) bool { return m.ID == p.ID }); i >= 0 {
		old := members[i]
		replaced = &old
		members = slices.Delete(slices.Clone(members), i, i+1)
	}
	members = append(members, Member{Participant: p, Conn: conn})
	t.rooms[chat] = members

	log.Info().Str("module", "core.rooms").Str("chat", string(chat)).Str("user", string(p.ID)).
		Bool("replaced", replaced != nil).Int("members", len(members)).Msg("member joined")
	return dtos(members), replaced
}

// Leave removes the identity from the room. Leaving a non-member is a no-op.
func (t *RoomTable) Leave(chat domain.ChatID, user domain.UserID) bool {
	return t.remove(chat, func(m Member) bool { return m.ID == user })
}

// LeaveConn removes the identity only while it is still held by conn, so the
// teardown of a superseded connection cannot remove its replacement.
func (t *RoomTable) LeaveConn(chat domain.ChatID, user domain.UserID, conn ConnID) bool {
	return t.remove(chat, func(m Member) bool { return m.ID == user && m.Conn == conn })
}

func (t *RoomTable) remove(chat domain.ChatID, match func(Member) bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	members, ok := t.rooms[chat]
	if !ok {
		return false
	}
	i := slices.IndexFunc(members, match)
	if i < 0 {
		return false
	}
	user := members[i].ID
	members = slices.Delete(slices.Clone(members), i, i+1)
	if len(members) == 0 {
		delete(t.rooms, chat)
		log.Info().Str("module", "core.rooms").Str("chat", string(chat)).Msg("room emptied")
	} else {
		t.rooms[chat] = members
	}
	log.Info().Str("module", "core.rooms").Str("chat", string(chat)).Str("user", string(user)).Msg("member removed")
	return true
}

// Members returns a snapshot in join order; an unknown room yields an empty slice.
func (t *RoomTable) Members(chat domain.ChatID) []MemberDTO {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return dtos(t.rooms[chat])
}

// Peers returns every member except the given identity, with their connections.
func (t *RoomTable) Peers(chat domain.ChatID, except domain.UserID) []Member {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return lo.Filter(t.rooms[chat], func(m Member, _ int) bool { return m.ID != except })
}

// Lookup finds a single member of a room.
func (t *RoomTable) Lookup(chat domain.ChatID, user domain.UserID) (Member, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return lo.Find(t.rooms[chat], func(m Member) bool { return m.ID == user })
}

func (t *RoomTable) Stats() RoomStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := RoomStats{Rooms: len(t.rooms)}
	for _, members := range t.rooms {
		s.Members += len(members)
	}
	return s
}

func dtos(members []Member) []MemberDTO {
	return lo.Map(members, func(m Member, _ int) MemberDTO { return m.DTO() })
}
