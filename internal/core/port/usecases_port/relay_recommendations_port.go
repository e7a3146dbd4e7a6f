package usecases_port

import (
	"context"

	"matjib-service/internal/core/domain"
)

type RelayRecommendationsUseCase interface {
	Execute(ctx context.Context, req domain.RecommendationRequest) ([]domain.Recommendation, error)
}
