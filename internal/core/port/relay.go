package port

import (
	"context"

	"matjib-service/internal/core/domain"
)

// RecommendationRelayPort - внешний сервис, который по кандидатам возвращает 2-3 района
type RecommendationRelayPort interface {
	Recommend(ctx context.Context, req domain.RecommendationRequest) ([]domain.Recommendation, error)
}
