package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoom(mode string, players ...*Player) *Room {
	r := &Room{
		Id:         "room-1",
		Name:       "Test",
		MaxPlayers: 4,
		GameMode:   mode,
		Status:     StatusWaiting,
	}
	for _, p := range players {
		r.AddPlayer(p)
	}
	return r
}

func TestDefaultPlayerName(t *testing.T) {
	assert.Equal(t, "Player-abcd", NewPlayer("abcdef12", "").Name)
	assert.Equal(t, "Player-ab", NewPlayer("ab", "").Name)
	assert.Equal(t, "alice", NewPlayer("abcdef12", "alice").Name)
	assert.False(t, NewPlayer("x", "").Ready)
}

func TestTryStartNeedsTwoReadyPlayers(t *testing.T) {
	alone := NewPlayer("a", "")
	alone.Ready = true
	r := newRoom(ModeClassic, alone)

	state, started := r.TryStart()
	assert.False(t, started)
	assert.Nil(t, state)
	assert.Equal(t, StatusWaiting, r.Status)
	assert.Nil(t, r.GameState)

	other := NewPlayer("b", "")
	r.AddPlayer(other)
	_, started = r.TryStart()
	assert.False(t, started, "one player is not ready yet")

	other.Ready = true
	state, started = r.TryStart()
	require.True(t, started)
	assert.Equal(t, StatusPlaying, r.Status)
	assert.Same(t, r.GameState, state)
	assert.Equal(t, "a", state.CurrentPlayer)
	assert.Equal(t, 0, state.Turn)
	assert.Equal(t, Board{Type: ModeClassic, State: "initial"}, state.Board)
}

func TestTryStartOnlyFiresFromWaiting(t *testing.T) {
	a, b := NewPlayer("a", ""), NewPlayer("b", "")
	a.Ready, b.Ready = true, true
	r := newRoom(ModeTeam, a, b)

	first, started := r.TryStart()
	require.True(t, started)
	snapshot := *first

	again, startedAgain := r.TryStart()
	assert.False(t, startedAgain)
	assert.Nil(t, again)
	assert.Same(t, first, r.GameState)
	assert.Equal(t, snapshot, *r.GameState)

	r.Status = StatusEnded
	_, startedAgain = r.TryStart()
	assert.False(t, startedAgain)
}

func TestInitializeBoard(t *testing.T) {
	tests := []struct {
		mode string
		want string
	}{
		{ModeClassic, "classic"},
		{ModeTeam, "team"},
		{"battle-royale", "custom"},
		{"", "custom"},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			board := InitializeBoard(tt.mode)
			assert.Equal(t, tt.want, board.Type)
			assert.Equal(t, "initial", board.State)
		})
	}
}

func TestRoomMembership(t *testing.T) {
	r := newRoom(ModeClassic, NewPlayer("a", ""), NewPlayer("b", ""), NewPlayer("c", ""))
	r.MaxPlayers = 3
	r.Password = "secret"

	assert.True(t, r.IsFull())
	assert.True(t, r.HasPassword())
	assert.True(t, r.CheckPassword("secret"))
	assert.False(t, r.CheckPassword(""))
	assert.Equal(t, []string{"a", "b", "c"}, r.ConnectionIds())

	assert.True(t, r.RemovePlayer("b"))
	assert.False(t, r.RemovePlayer("b"))
	assert.Equal(t, []string{"a", "c"}, r.ConnectionIds())
	assert.Nil(t, r.FindPlayer("b"))
	assert.NotNil(t, r.FindPlayer("c"))

	info := r.Info()
	assert.Equal(t, 2, info.CurrentPlayers)
	assert.Equal(t, 3, info.MaxPlayers)
	assert.True(t, r.Summary().HasPassword)
}

func TestCheckPasswordWithoutPassword(t *testing.T) {
	r := newRoom(ModeClassic)
	assert.False(t, r.HasPassword())
	assert.True(t, r.CheckPassword(""))
	assert.True(t, r.CheckPassword("anything"))
}
