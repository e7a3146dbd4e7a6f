package usecases_port

import (
	"context"

	"matjib-service/internal/core/domain"

	"github.com/google/uuid"
)

type SessionsUseCase interface {
	Create(ctx context.Context) (*domain.SearchSession, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.SearchSession, error)
}

type SessionMarkersUseCase interface {
	Execute(ctx context.Context, sessionID uuid.UUID, precision int) ([]domain.MarkerCluster, error)
}
