package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"roxat-report/internal/storage"
)

type entry struct {
	session   storage.Session
	expiresAt time.Time
}

// Storage keeps sessions in process memory. A zero ttl means sessions never expire.
type Storage struct {
	mu       sync.RWMutex
	sessions map[string]entry
	ttl      time.Duration
	now      func() time.Time
}

func New(ttl time.Duration) *Storage {
	return &Storage{
		sessions: make(map[string]entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *Storage) SaveSession(_ context.Context, sess storage.Session) error {
	const op = "storage.memory.SaveSession"

	if sess.ID == "" {
		return fmt.Errorf("%s: пустой id сессии", op)
	}

	e := entry{session: sess}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.sessions[sess.ID] = e
	s.mu.Unlock()

	return nil
}

func (s *Storage) GetSession(_ context.Context, id string) (storage.Session, error) {
	const op = "storage.memory.GetSession"

	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return storage.Session{}, fmt.Errorf("%s: %w", op, storage.ErrSessionNotFound)
	}

	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return storage.Session{}, fmt.Errorf("%s: %w", op, storage.ErrSessionNotFound)
	}

	return e.session, nil
}

func (s *Storage) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	return nil
}
