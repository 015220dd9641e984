package orch

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/E1Shivank/whispr/internal/app"
	"github.com/E1Shivank/whispr/internal/core"
	"github.com/E1Shivank/whispr/internal/domain"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (r *recorder) TrySend(f core.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return core.ErrConnectionClosed
	}
	r.frames = append(r.frames, f)
	return nil
}

func (r *recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.frames))
	for _, f := range r.frames {
		var env core.Envelope
		_ = json.Unmarshal(f, &env)
		out = append(out, env.Type)
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
}

func newTestOrchestrator() *Orchestrator {
	o := New(nil)
	o.Now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return o
}

func connect(o *Orchestrator, id core.ConnID) *recorder {
	rec := &recorder{}
	o.Connect(id, rec, "")
	return rec
}

func userIDs(members []core.MemberDTO) []domain.UserID {
	out := make([]domain.UserID, 0, len(members))
	for _, m := range members {
		out = append(out, m.ID)
	}
	return out
}

func TestJoin_AnnouncesToExistingMembers(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator()
	a := connect(o, "ca")
	b := connect(o, "cb")

	members := o.Join("ca", "abc123", domain.Participant{ID: "A"})
	req.Equal([]domain.UserID{"A"}, userIDs(members))
	req.Empty(a.types())

	members = o.Join("cb", "abc123", domain.Participant{ID: "B", PublicKey: json.RawMessage(`"kb"`)})
	req.Equal([]domain.UserID{"A", "B"}, userIDs(members))
	req.Empty(b.types())
	req.Equal([]string{app.EventUserJoined}, a.types())
	req.JSONEq(`{"type":"user-joined","data":{"userId":"B","publicKey":"kb","timestamp":1700000000000}}`, string(a.frames[0]))
}

func TestDisconnect_AnnouncesDepartureOnce(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator()
	a := connect(o, "ca")
	connect(o, "cb")
	o.Join("ca", "r", domain.Participant{ID: "A"})
	o.Join("cb", "r", domain.Participant{ID: "B"})

	o.Disconnect("cb")
	o.Disconnect("cb")

	req.Equal([]string{app.EventUserJoined, app.EventUserLeft, app.EventCallEnd}, a.types())
	req.Equal([]domain.UserID{"A"}, userIDs(o.Rooms.Members("r")))
	req.Equal(Stats{RoomStats: core.RoomStats{Rooms: 1, Members: 1}, Connections: 1}, o.Stats())
}

func TestDisconnect_LastMemberRemovesRoom(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator()
	connect(o, "ca")
	o.Join("ca", "r", domain.Participant{ID: "A"})

	o.Disconnect("ca")
	req.Equal(Stats{}, o.Stats())
}

func TestDisconnect_BeforeJoinIsSilent(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator()
	a := connect(o, "ca")
	connect(o, "cb")
	o.Join("ca", "r", domain.Participant{ID: "A"})

	o.Disconnect("cb")
	req.Empty(a.types())
}

func TestJoin_SameIdentityEvictsOldConnection(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator()
	a := connect(o, "ca")
	old := connect(o, "old")
	fresh := connect(o, "new")
	o.Join("ca", "r", domain.Participant{ID: "A"})
	o.Join("old", "r", domain.Participant{ID: "B"})
	a.reset()

	o.Join("new", "r", domain.Participant{ID: "B"})
	req.True(old.closed)
	req.False(fresh.closed)
	req.Equal([]string{app.EventUserJoined}, a.types())

	_, _, inRoom := o.Registry.RoomOf("old")
	req.False(inRoom)

	// the superseded transport closing later must not take B out of the room
	o.Disconnect("old")
	req.Equal([]string{app.EventUserJoined}, a.types())
	req.Equal([]domain.UserID{"A", "B"}, userIDs(o.Rooms.Members("r")))
}

func TestJoin_SwitchingRoomsLeavesTheOldOne(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator()
	a := connect(o, "ca")
	b := connect(o, "cb")
	c := connect(o, "cc")
	o.Join("ca", "one", domain.Participant{ID: "A"})
	o.Join("cb", "one", domain.Participant{ID: "B"})
	o.Join("cc", "two", domain.Participant{ID: "C"})
	a.reset()

	o.Join("cb", "two", domain.Participant{ID: "B"})

	req.Equal([]string{app.EventUserLeft, app.EventCallEnd}, a.types())
	req.Equal([]string{app.EventUserJoined}, c.types())
	req.Equal([]domain.UserID{"A"}, userIDs(o.Rooms.Members("one")))
	req.Equal([]domain.UserID{"C", "B"}, userIDs(o.Rooms.Members("two")))
	req.False(b.closed)
}

func TestLeave_KeepsConnectionOpen(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator()
	a := connect(o, "ca")
	b := connect(o, "cb")
	o.Join("ca", "r", domain.Participant{ID: "A"})
	o.Join("cb", "r", domain.Participant{ID: "B"})
	a.reset()

	o.Leave("cb")
	o.Leave("cb")
	req.Equal([]string{app.EventUserLeft, app.EventCallEnd}, a.types())
	req.False(b.closed)
	req.Equal(2, o.Registry.Count())

	o.Disconnect("cb")
	req.Equal([]string{app.EventUserLeft, app.EventCallEnd}, a.types())
}

func TestForward_StaysInsideTheRoom(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator()
	a := connect(o, "ca")
	b := connect(o, "cb")
	x := connect(o, "cx")
	o.Join("ca", "r", domain.Participant{ID: "A"})
	o.Join("cb", "r", domain.Participant{ID: "B"})
	o.Join("cx", "other", domain.Participant{ID: "X"})
	a.reset()

	res := o.Forward(domain.RelayMessage{Chat: "r", Sender: "A", Class: domain.ClassICECandidate, Payload: app.ICECandidate{Candidate: json.RawMessage(`{}`)}})
	req.Equal(1, res.SendTo)
	req.Empty(a.types())
	req.Equal([]string{app.EventICECandidate}, b.types())
	req.Empty(x.types())
}
