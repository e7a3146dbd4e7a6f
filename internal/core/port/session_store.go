package port

import (
	"context"

	"matjib-service/internal/core/domain"

	"github.com/google/uuid"
)

type SessionStorePort interface {
	Create(ctx context.Context) (*domain.SearchSession, error)
	// Get возвращает domain.ErrSessionNotFound для неизвестного или истекшего id
	Get(ctx context.Context, id uuid.UUID) (*domain.SearchSession, error)
}
