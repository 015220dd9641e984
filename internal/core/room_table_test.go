package core

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/E1Shivank/whispr/internal/domain"
	"github.com/stretchr/testify/require"
)

func participant(id string) domain.Participant {
	return domain.Participant{ID: domain.UserID(id)}
}

func ids(members []MemberDTO) []domain.UserID {
	out := make([]domain.UserID, 0, len(members))
	for _, m := range members {
		out = append(out, m.ID)
	}
	return out
}

func TestRoomTable_JoinReturnsSnapshotInJoinOrder(t *testing.T) {
	req := require.New(t)
	table := NewRoomTable()

	members, replaced := table.Join("abc123", participant("alice"), "c1")
	req.Nil(replaced)
	req.Equal([]domain.UserID{"alice"}, ids(members))

	members, replaced = table.Join("abc123", participant("bob"), "c2")
	req.Nil(replaced)
	req.Equal([]domain.UserID{"alice", "bob"}, ids(members))
	req.Equal(members, table.Members("abc123"))
}

func TestRoomTable_RejoinReplacesAndMovesToEnd(t *testing.T) {
	req := require.New(t)
	table := NewRoomTable()
	table.Join("r", participant("alice"), "c1")
	table.Join("r", participant("bob"), "c2")

	key := json.RawMessage(`"pk-2"`)
	members, replaced := table.Join("r", domain.Participant{ID: "alice", PublicKey: key}, "c3")

	req.NotNil(replaced)
	req.Equal(ConnID("c1"), replaced.Conn)
	req.Equal([]domain.UserID{"bob", "alice"}, ids(members))
	req.Equal(key, members[1].PublicKey)

	m, ok := table.Lookup("r", "alice")
	req.True(ok)
	req.Equal(ConnID("c3"), m.Conn)
}

func TestRoomTable_LeaveLastMemberDeletesRoom(t *testing.T) {
	req := require.New(t)
	table := NewRoomTable()
	table.Join("r", participant("alice"), "c1")

	req.True(table.Leave("r", "alice"))
	req.Empty(table.Members("r"))
	req.Equal(RoomStats{}, table.Stats())

	members, _ := table.Join("r", participant("bob"), "c2")
	req.Equal([]domain.UserID{"bob"}, ids(members))
}

func TestRoomTable_LeaveIsIdempotent(t *testing.T) {
	req := require.New(t)
	table := NewRoomTable()
	table.Join("r", participant("alice"), "c1")

	req.False(table.Leave("r", "bob"))
	req.False(table.Leave("nope", "alice"))
	req.True(table.Leave("r", "alice"))
	req.False(table.Leave("r", "alice"))
}

func TestRoomTable_LeaveConnIgnoresSupersededConnection(t *testing.T) {
	req := require.New(t)
	table := NewRoomTable()
	table.Join("r", participant("alice"), "old")
	table.Join("r", participant("alice"), "new")

	req.False(table.LeaveConn("r", "alice", "old"))
	req.Equal([]domain.UserID{"alice"}, ids(table.Members("r")))

	req.True(table.LeaveConn("r", "alice", "new"))
	req.Empty(table.Members("r"))
}

func TestRoomTable_PeersExcludesSender(t *testing.T) {
	req := require.New(t)
	table := NewRoomTable()
	table.Join("r", participant("alice"), "c1")
	table.Join("r", participant("bob"), "c2")
	table.Join("r", participant("carol"), "c3")
	table.Join("other", participant("dave"), "c4")

	peers := table.Peers("r", "bob")
	req.Len(peers, 2)
	req.Equal(domain.UserID("alice"), peers[0].ID)
	req.Equal(domain.UserID("carol"), peers[1].ID)
	req.Empty(table.Peers("empty", "bob"))
}

func TestRoomTable_MembersSnapshotIsACopy(t *testing.T) {
	req := require.New(t)
	table := NewRoomTable()
	table.Join("r", participant("alice"), "c1")

	snap := table.Members("r")
	snap[0].ID = "mallory"
	req.Equal([]domain.UserID{"alice"}, ids(table.Members("r")))
}

func TestRoomTable_JoinLeaveSequence(t *testing.T) {
	req := require.New(t)
	table := NewRoomTable()

	table.Join("r", participant("a"), "1")
	table.Join("r", participant("b"), "2")
	table.Join("r", participant("c"), "3")
	table.Leave("r", "b")
	table.Join("r", participant("a"), "4")
	table.Join("r", participant("d"), "5")
	table.Leave("r", "x")

	req.Equal([]domain.UserID{"c", "a", "d"}, ids(table.Members("r")))
	req.Equal(RoomStats{Rooms: 1, Members: 3}, table.Stats())
}

func TestRoomTable_ConcurrentJoinsNeverDuplicate(t *testing.T) {
	req := require.New(t)
	table := NewRoomTable()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user := fmt.Sprintf("u%d", i%10)
			table.Join("r", participant(user), ConnID(fmt.Sprintf("c%d", i)))
			_ = table.Members("r")
		}()
	}
	wg.Wait()

	members := table.Members("r")
	req.Len(members, 10)
	seen := map[domain.UserID]bool{}
	for _, m := range members {
		req.False(seen[m.ID], "duplicate %s", m.ID)
		seen[m.ID] = true
	}
}
