// Package session holds active play sessions in process memory. A
// session lives only for the duration of a playthrough; the token
// returned to the client is the only reference. There is deliberately no
// durable backing: abandoning a session loses it, and nothing mid-flight
// is ever persisted.
package session

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/eb4890/thechoiceswemake/pkg/play"
)

// ErrNotFound is returned for unknown or expired session tokens.
var ErrNotFound = errors.New("session not found")

// DefaultIdleTimeout is how long an untouched session survives before
// the sweeper reclaims it.
const DefaultIdleTimeout = 2 * time.Hour

const sweepInterval = 10 * time.Minute

// lastActive is tracked on the entry, not the session, so the sweeper
// can read it without taking the per-session lock.
type entry struct {
	session    *play.Session
	mu         sync.Mutex
	lastActive atomic.Int64 // unix nanos
}

func (e *entry) touch() {
	e.lastActive.Store(time.Now().UnixNano())
}

// Registry is the in-process session store. Each session carries its own
// lock so one in-flight generation per session is enforced without
// serializing unrelated sessions.
type Registry struct {
	mu          sync.RWMutex
	entries     map[uuid.UUID]*entry
	idleTimeout time.Duration
	logger      *slog.Logger
	done        chan struct{}
	closeOnce   sync.Once
}

func NewRegistry(idleTimeout time.Duration, logger *slog.Logger) *Registry {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	r := &Registry{
		entries:     make(map[uuid.UUID]*entry),
		idleTimeout: idleTimeout,
		logger:      logger,
		done:        make(chan struct{}),
	}
	go r.sweep()
	return r
}

// Create registers a fresh session in the setup phase and returns it.
func (r *Registry) Create() *play.Session {
	s := play.NewSession()
	e := &entry{session: s}
	e.touch()
	r.mu.Lock()
	r.entries[s.ID] = e
	r.mu.Unlock()
	return s
}

// With runs fn while holding the session's own lock. All phase
// transitions and generation calls for a session go through here, so a
// session handles one request at a time.
func (r *Registry) With(id uuid.UUID, fn func(s *play.Session) error) error {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	e.touch()
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.touch()
	return fn(e.session)
}

// Delete removes a session.
func (r *Registry) Delete(id uuid.UUID) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Close stops the sweeper.
func (r *Registry) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

func (r *Registry) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			n := r.reap(time.Now().Add(-r.idleTimeout))
			r.logger.Debug("Session sweep complete", "live_sessions", n)
		}
	}
}

// reap drops entries idle since before the cutoff and reports how many
// remain. It reads only the entry's own liveness stamp, never the
// session struct, so it cannot race an in-flight request.
func (r *Registry) reap(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.entries {
		if e.lastActive.Load() < cutoff.UnixNano() {
			delete(r.entries, id)
		}
	}
	return len(r.entries)
}
