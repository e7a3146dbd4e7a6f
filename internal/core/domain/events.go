package domain

import (
	"time"

	"github.com/google/uuid"
)

// SearchCompletedEvent уходит в брокер после каждого поиска
type SearchCompletedEvent struct {
	SessionID       uuid.UUID
	DealType        string
	AreaBands       []string
	ActiveLifestyle []string
	AnchorsCount    int
	ResultCount     int
	OccurredAt      time.Time
}

// RecommendationCompletedEvent уходит в брокер после запроса рекомендации
type RecommendationCompletedEvent struct {
	SessionID      uuid.UUID
	AIAvailable    bool
	Keywords       []string
	CandidatesSent int
	MatchedCount   int
	OccurredAt     time.Time
}
