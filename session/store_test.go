package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"regbot/model"
)

func TestStore_ResetReplacesExistingSession(t *testing.T) {
	s := NewStore()

	first := s.Reset(42)
	first.State = model.StateAccEmail
	first.Fields[model.FieldFullName] = "Ivan Petrov"

	second := s.Reset(42)
	require.Equal(t, model.StateIdle, second.State)
	require.Empty(t, second.Fields)

	got, ok := s.Get(42)
	require.True(t, ok)
	require.Same(t, second, got)
	require.Equal(t, 1, s.Len())
}

func TestStore_GetMissing(t *testing.T) {
	s := NewStore()
	_, ok := s.Get(7)
	require.False(t, ok)
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	s.Reset(1)
	s.Clear(1)
	_, ok := s.Get(1)
	require.False(t, ok)
}

func TestStore_SweepRemovesIdleSessions(t *testing.T) {
	s := NewStore()
	stale := s.Reset(1)
	stale.LastActivity = time.Now().Add(-48 * time.Hour)
	s.Reset(2)

	removed := s.Sweep(24 * time.Hour)
	require.Equal(t, 1, removed)

	_, ok := s.Get(1)
	require.False(t, ok)
	_, ok = s.Get(2)
	require.True(t, ok)
}

func TestStore_GetRefreshesActivity(t *testing.T) {
	s := NewStore()
	sess := s.Reset(5)
	sess.LastActivity = time.Now().Add(-48 * time.Hour)

	_, ok := s.Get(5)
	require.True(t, ok)

	removed := s.Sweep(24 * time.Hour)
	require.Zero(t, removed)
}
