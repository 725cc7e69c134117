package session

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eb4890/thechoiceswemake/pkg/play"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(time.Hour, slog.Default())
	t.Cleanup(r.Close)
	return r
}

func TestRegistryCreateAndWith(t *testing.T) {
	r := newTestRegistry(t)

	s := r.Create()
	assert.Equal(t, play.PhaseSetup, s.Phase)
	assert.Equal(t, 1, r.Len())

	err := r.With(s.ID, func(got *play.Session) error {
		assert.Same(t, s, got)
		return nil
	})
	require.NoError(t, err)
}

func TestRegistryUnknownToken(t *testing.T) {
	r := newTestRegistry(t)

	err := r.With(uuid.New(), func(*play.Session) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryDelete(t *testing.T) {
	r := newTestRegistry(t)

	s := r.Create()
	r.Delete(s.ID)

	assert.Equal(t, 0, r.Len())
	err := r.With(s.ID, func(*play.Session) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryReapDropsIdleSessions(t *testing.T) {
	r := newTestRegistry(t)

	idle := r.Create()
	active := r.Create()

	// Backdate the idle entry's liveness stamp past the cutoff.
	r.mu.Lock()
	r.entries[idle.ID].lastActive.Store(time.Now().Add(-2 * time.Hour).UnixNano())
	r.mu.Unlock()

	n := r.reap(time.Now().Add(-time.Hour))
	assert.Equal(t, 1, n)

	err := r.With(idle.ID, func(*play.Session) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
	err = r.With(active.ID, func(*play.Session) error { return nil })
	assert.NoError(t, err)
}

func TestRegistryReapConcurrentWithSessionWrites(t *testing.T) {
	r := newTestRegistry(t)
	s := r.Create()

	// Sweeping while a session is being mutated must not touch the
	// session struct; the race detector flags it if it does.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.With(s.ID, func(got *play.Session) error {
				got.Reset()
				return nil
			})
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.reap(time.Now().Add(-time.Hour))
		}()
	}
	wg.Wait()

	err := r.With(s.ID, func(*play.Session) error { return nil })
	assert.NoError(t, err)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := newTestRegistry(t)
	s := r.Create()

	// Concurrent With calls on the same session must serialize; the
	// counter would race without the per-session lock.
	count := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.With(s.ID, func(*play.Session) error {
				count++
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, count)
}
