// Package memory хранит поисковые сессии в памяти процесса
package memory

import (
	"context"
	"sync"
	"time"

	"matjib-service/internal/core/domain"
	"matjib-service/internal/core/port"

	"github.com/google/uuid"
)

// SessionStore - сессии с TTL от последнего обращения. ttl <= 0 - сессии не истекают.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.SearchSession
	ttl      time.Duration
	now      func() time.Time
	logger   port.LoggerPort
	metrics  port.MetricsPort
}

func NewSessionStore(ttl time.Duration, logger port.LoggerPort, metrics port.MetricsPort) *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*domain.SearchSession),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.WithFields(port.Fields{"component": "SessionStore"}),
		metrics:  metrics,
	}
}

func (s *SessionStore) Create(_ context.Context) (*domain.SearchSession, error) {
	session := domain.NewSearchSession(s.now())

	s.mu.Lock()
	s.sessions[session.ID] = session
	n := len(s.sessions)
	s.mu.Unlock()

	s.metrics.ActiveSessionsChanged(n)
	return session, nil
}

// Get продлевает жизнь сессии
func (s *SessionStore) Get(_ context.Context, id uuid.UUID) (*domain.SearchSession, error) {
	now := s.now()

	s.mu.Lock()
	session, ok := s.sessions[id]
	if ok && s.expired(session, now) {
		delete(s.sessions, id)
		ok = false
	}
	n := len(s.sessions)
	s.mu.Unlock()

	s.metrics.ActiveSessionsChanged(n)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	session.Touch(now)
	return session, nil
}

func (s *SessionStore) expired(session *domain.SearchSession, now time.Time) bool {
	return s.ttl > 0 && now.Sub(session.TouchedAt()) > s.ttl
}

// Sweep удаляет истекшие сессии и возвращает их число
func (s *SessionStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	removed := 0
	for id, session := range s.sessions {
		if s.expired(session, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	s.metrics.ActiveSessionsChanged(n)
	if removed > 0 {
		s.logger.Debug("Expired sessions swept", port.Fields{"removed": removed, "active": n})
	}
	return removed
}

// RunSweeper чистит хранилище раз в interval, пока ctx не отменен
func (s *SessionStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
