package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReaperSweepsUntilCancelled(t *testing.T) {
	s := NewRoomStore()
	room, err := s.Create(CreateRoomParams{Name: "abandoned"})
	require.NoError(t, err)
	room.CreatedAt = time.Now().Add(-time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.RunReaper(ctx, 5*time.Millisecond, time.Minute) }()

	assert.Eventually(t, func() bool { return s.Count() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop")
	}
}

func TestRunReaperDisabled(t *testing.T) {
	s := NewRoomStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.RunReaper(ctx, 0, time.Minute))
}
