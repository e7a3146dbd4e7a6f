package usecases_port

import (
	"context"

	"matjib-service/internal/core/domain"

	"github.com/google/uuid"
)

type ManageAnchorsUseCase interface {
	Add(ctx context.Context, sessionID uuid.UUID, names []string) ([]domain.AnchorResult, error)
	Remove(ctx context.Context, sessionID uuid.UUID, name string) error
}
