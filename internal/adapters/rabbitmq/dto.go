package rabbitmq

import (
	"time"

	"matjib-service/internal/core/domain"
)

type searchCompletedMessage struct {
	SessionID       string    `json:"session_id"`
	DealType        string    `json:"deal_type"`
	AreaBands       []string  `json:"area_bands"`
	ActiveLifestyle []string  `json:"active_lifestyle"`
	AnchorsCount    int       `json:"anchors_count"`
	ResultCount     int       `json:"result_count"`
	OccurredAt      time.Time `json:"occurred_at"`
}

type recommendationCompletedMessage struct {
	SessionID      string    `json:"session_id"`
	AIAvailable    bool      `json:"ai_available"`
	Keywords       []string  `json:"keywords"`
	CandidatesSent int       `json:"candidates_sent"`
	MatchedCount   int       `json:"matched_count"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toSearchCompletedMessage(e domain.SearchCompletedEvent) searchCompletedMessage {
	return searchCompletedMessage{
		SessionID:       e.SessionID.String(),
		DealType:        e.DealType,
		AreaBands:       emptyIfNil(e.AreaBands),
		ActiveLifestyle: emptyIfNil(e.ActiveLifestyle),
		AnchorsCount:    e.AnchorsCount,
		ResultCount:     e.ResultCount,
		OccurredAt:      e.OccurredAt.UTC(),
	}
}

func toRecommendationCompletedMessage(e domain.RecommendationCompletedEvent) recommendationCompletedMessage {
	return recommendationCompletedMessage{
		SessionID:      e.SessionID.String(),
		AIAvailable:    e.AIAvailable,
		Keywords:       emptyIfNil(e.Keywords),
		CandidatesSent: e.CandidatesSent,
		MatchedCount:   e.MatchedCount,
		OccurredAt:     e.OccurredAt.UTC(),
	}
}
