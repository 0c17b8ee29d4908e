package screening

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// SessionRegistry holds in-flight sessions keyed by session id, with an
// index from application id to its live session. A session's lock is only
// ever taken while holding the registry's, never the other way round.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	byApp    map[uuid.UUID]uuid.UUID
	now      func() time.Time
}

// NewSessionRegistry returns an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[uuid.UUID]*Session),
		byApp:    make(map[uuid.UUID]uuid.UUID),
		now:      time.Now,
	}
}

// Put registers s and makes it the live session for its application.
func (r *SessionRegistry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.touch(r.now())
	r.sessions[s.ID] = s
	r.byApp[s.ApplicationID] = s.ID
}

// PutIfAbsent registers s unless its application already has a live
// session. In that case the live session is returned with false and s is
// not registered.
func (r *SessionRegistry) PutIfAbsent(s *Session) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byApp[s.ApplicationID]; ok {
		if existing, ok := r.sessions[id]; ok {
			existing.mu.Lock()
			live := existing.active()
			existing.mu.Unlock()
			if live {
				return existing, false
			}
		}
	}
	s.touch(r.now())
	r.sessions[s.ID] = s
	r.byApp[s.ApplicationID] = s.ID
	return s, true
}

// Get returns a session by id.
func (r *SessionRegistry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	return s, ok
}

// ForApplication returns the live session for an application, if any.
func (r *SessionRegistry) ForApplication(appID uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byApp[appID]
	if !ok {
		return nil, false
	}
	s, ok := r.sessions[id]
	return s, ok
}

// Remove drops a session.
func (r *SessionRegistry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(id)
}

func (r *SessionRegistry) remove(id uuid.UUID) {
	s, ok := r.sessions[id]
	if !ok {
		return
	}
	delete(r.sessions, id)
	if r.byApp[s.ApplicationID] == id {
		delete(r.byApp, s.ApplicationID)
	}
}

// Len returns the number of registered sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle for longer than maxIdle and returns how many
// were removed. Application records are not touched: an abandoned session
// leaves its application at the last committed status.
func (r *SessionRegistry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	removed := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			r.remove(id)
			removed++
		}
	}
	return removed
}

// Sweeper periodically evicts idle sessions from a registry.
type Sweeper struct {
	cron     *cron.Cron
	registry *SessionRegistry
	spec     string
	maxIdle  time.Duration
}

// NewSweeper returns a Sweeper that runs every interval and evicts sessions
// idle longer than maxIdle.
func NewSweeper(registry *SessionRegistry, interval, maxIdle time.Duration) *Sweeper {
	return &Sweeper{
		cron:     cron.New(),
		registry: registry,
		spec:     fmt.Sprintf("@every %s", interval),
		maxIdle:  maxIdle,
	}
}

// Run starts the cron loop and blocks until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, s.sweepOnce); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	log.Printf("[sweeper] Started (spec: %s, max idle: %s)", s.spec, s.maxIdle)

	<-ctx.Done()
	<-s.cron.Stop().Done()
	log.Println("[sweeper] Stopped")
	return nil
}

func (s *Sweeper) sweepOnce() {
	if n := s.registry.Sweep(s.maxIdle); n > 0 {
		log.Printf("[sweeper] Evicted %d idle session(s), %d remaining", n, s.registry.Len())
	}
}
