package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_FiresAfterDelay(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	fired := make(chan struct{})
	s.Schedule(5*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("scheduled task never fired")
	}
	assert.Equal(t, 0, s.Pending())
}

func TestScheduler_CancelStopsTask(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	var fired atomic.Bool
	cancel := s.Schedule(10*time.Millisecond, func() { fired.Store(true) })
	cancel()
	cancel() // safe to call twice

	time.Sleep(30 * time.Millisecond)
	assert.False(t, fired.Load())
	assert.Equal(t, 0, s.Pending())
}

func TestScheduler_CloseInvalidatesPendingTasks(t *testing.T) {
	s := NewScheduler()

	var fired atomic.Int32
	for i := 0; i < 3; i++ {
		s.Schedule(10*time.Millisecond, func() { fired.Add(1) })
	}
	require.Equal(t, 3, s.Pending())

	s.Close()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load(), "tasks must not act on a disposed session")
}

func TestScheduler_ScheduleAfterCloseIsNoop(t *testing.T) {
	s := NewScheduler()
	s.Close()

	var fired atomic.Bool
	cancel := s.Schedule(time.Millisecond, func() { fired.Store(true) })
	cancel()

	time.Sleep(10 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestStore_PutGetRemove(t *testing.T) {
	store := NewStore()
	activity, units := trueFalseActivity(2)
	s := New(NewID(), activity, units, 0)

	store.Put(s)
	require.Equal(t, 1, store.Len())

	got, err := store.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	store.Remove(s.ID())
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, StatusAbandoned, s.Status())

	_, err = store.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_RemoveUnknownIsNoop(t *testing.T) {
	store := NewStore()
	store.Remove("missing")
	assert.Equal(t, 0, store.Len())
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		require.Len(t, id, 32)
		require.False(t, seen[id])
		seen[id] = true
	}
}
