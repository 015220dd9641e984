package signal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSession_Owns(t *testing.T) {
	req := require.New(t)
	s := newSession("c1", nil, nil)
	s.enteredRoom("abc", "alice")

	req.True(s.owns(""))
	req.True(s.owns("abc"))
	req.False(s.owns("other"))
	req.Equal("in_room", s.state.String())

	s.state = stateClosed
	s.leftRoom()
	req.Equal("closed", s.state.String())
}

func TestSession_OwnsComparesVerbatim(t *testing.T) {
	req := require.New(t)
	s := newSession("c1", nil, nil)
	s.enteredRoom(" room ", "alice")

	req.True(s.owns(" room "))
	req.False(s.owns("room"))
}
