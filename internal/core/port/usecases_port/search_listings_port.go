package usecases_port

import (
	"context"

	"matjib-service/internal/core/domain"

	"github.com/google/uuid"
)

type SearchListingsUseCase interface {
	Execute(ctx context.Context, sessionID uuid.UUID, criteria domain.FilterCriteria) (*domain.SearchResult, error)
}
