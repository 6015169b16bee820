package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freshnest/booking-api/pkg/logging"
)

// Store keeps booking sessions in memory for the duration of one flow.
// Sessions expire after the configured TTL of inactivity; there is no
// persistence by design.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	logger   *logging.Logger
	now      func() time.Time
}

// NewStore creates a session store with the given idle TTL.
func NewStore(ttl time.Duration, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the store's clock for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Create starts a new session at the first step with default selections.
func (s *Store) Create() *Session {
	now := s.now().UTC()
	sess := &Session{
		ID:         uuid.NewString(),
		Step:       StepServiceDetails,
		Selections: defaultSelections(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// Get returns a copy of the session, or ErrSessionNotFound if the ID is
// unknown or the session expired.
func (s *Store) Get(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess) {
		return Session{}, ErrSessionNotFound
	}
	return *sess, nil
}

// Update applies fn to the session under the store's lock and bumps its
// activity timestamp. fn errors abort the update and pass through.
func (s *Store) Update(id string, fn func(*Session) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess) {
		return Session{}, ErrSessionNotFound
	}
	if err := fn(sess); err != nil {
		return Session{}, err
	}
	sess.UpdatedAt = s.now().UTC()
	return *sess, nil
}

// Delete removes a session outright.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions on the given interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				s.logger.Info("expired booking sessions swept", "removed", removed, "live", s.Len())
			}
		}
	}
}

// expired must be called with at least a read lock held.
func (s *Store) expired(sess *Session) bool {
	return s.ttl > 0 && s.now().Sub(sess.UpdatedAt) > s.ttl
}
