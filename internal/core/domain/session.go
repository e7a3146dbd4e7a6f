package domain

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SearchSession - явное состояние одного пользователя: точки поездок и последний результат поиска.
// Чистые функции поиска о сессии ничего не знают, она передается только в сценарии.
type SearchSession struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu           sync.RWMutex
	anchors      []CommuteAnchor
	lastCriteria *FilterCriteria
	lastResult   []Listing
	touchedAt    time.Time
}

func NewSearchSession(now time.Time) *SearchSession {
	return &SearchSession{
		ID:        uuid.New(),
		CreatedAt: now,
		touchedAt: now,
	}
}

// AddAnchor добавляет точку; имя должно быть уникальным (точное сравнение с учетом регистра)
func (s *SearchSession) AddAnchor(a CommuteAnchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.anchors {
		if existing.Name == a.Name {
			return ErrDuplicateAnchor
		}
	}
	s.anchors = append(s.anchors, a)
	return nil
}

func (s *SearchSession) HasAnchor(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.ContainsFunc(s.anchors, func(a CommuteAnchor) bool { return a.Name == name })
}

func (s *SearchSession) RemoveAnchor(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.anchors, func(a CommuteAnchor) bool { return a.Name == name })
	if idx < 0 {
		return ErrAnchorNotFound
	}
	s.anchors = slices.Delete(s.anchors, idx, idx+1)
	return nil
}

// Anchors возвращает копию, чтобы вызывающий код не делил срез с сессией
func (s *SearchSession) Anchors() []CommuteAnchor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.anchors)
}

// RememberSearch сохраняет критерии и отфильтрованный набор последнего поиска
func (s *SearchSession) RememberSearch(criteria FilterCriteria, filtered []Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := criteria
	s.lastCriteria = &c
	s.lastResult = filtered
}

// LastSearch возвращает критерии и результат последнего поиска; ok=false, если поиска не было
func (s *SearchSession) LastSearch() (FilterCriteria, []Listing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastCriteria == nil {
		return FilterCriteria{}, nil, false
	}
	return *s.lastCriteria, s.lastResult, true
}

func (s *SearchSession) Touch(now time.Time) {
	s.mu.Lock()
	s.touchedAt = now
	s.mu.Unlock()
}

func (s *SearchSession) TouchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.touchedAt
}
