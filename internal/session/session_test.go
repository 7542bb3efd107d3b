package session

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	s := Create("alice", "acc", "ref", "admin")

	_, err := uuid.Parse(s.ID())
	require.NoError(t, err)
	assert.Equal(t, "acc", s.AccessToken())
	assert.Equal(t, "ref", s.RefreshToken())
	assert.Equal(t, "admin", s.Role())
	assert.Equal(t, "alice", s.Username())
	assert.True(t, s.Authenticated())
}

func TestSetAccessKeepsRefreshToken(t *testing.T) {
	s := Create("alice", "old", "ref", "admin")
	before := s.Record().UpdatedAt

	s.SetAccess("new")

	assert.Equal(t, "new", s.AccessToken())
	assert.Equal(t, "ref", s.RefreshToken())
	assert.False(t, s.Record().UpdatedAt.Before(before))
}

func TestInvalidate(t *testing.T) {
	s := Create("alice", "acc", "ref", "admin")

	s.Invalidate()

	assert.False(t, s.Authenticated())
	assert.Empty(t, s.RefreshToken())
	assert.Empty(t, s.Role())
}

func TestNilSessionIsNotAuthenticated(t *testing.T) {
	var s *Session
	assert.False(t, s.Authenticated())
}

func TestFlashIsOneShot(t *testing.T) {
	s := Create("alice", "acc", "ref", "admin")
	s.SetFlash("success", "created")

	rec := s.Record()
	require.NotNil(t, rec.Flash)
	rec.Flash.Message = "mutated"

	f := s.TakeFlash()
	require.NotNil(t, f)
	assert.Equal(t, "created", f.Message)
	assert.Nil(t, s.TakeFlash())
}

func TestConcurrentSetAccess(t *testing.T) {
	s := Create("alice", "acc", "ref", "admin")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.SetAccess("next")
			_ = s.AccessToken()
		}()
	}
	wg.Wait()

	assert.Equal(t, "next", s.AccessToken())
}
