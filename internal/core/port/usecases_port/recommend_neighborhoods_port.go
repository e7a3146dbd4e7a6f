package usecases_port

import (
	"context"

	"matjib-service/internal/core/domain"

	"github.com/google/uuid"
)

type RecommendNeighborhoodsUseCase interface {
	// criteria == nil - взять критерии последнего поиска в сессии
	Execute(ctx context.Context, sessionID uuid.UUID, criteria *domain.FilterCriteria) (*domain.RecommendationOutcome, error)
}
