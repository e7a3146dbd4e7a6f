package port

import (
	"context"

	"matjib-service/internal/core/domain"
)

type GeocoderPort interface {
	// Resolve возвращает координаты места по названию или domain.ErrPlaceNotFound
	Resolve(ctx context.Context, name string) (*domain.CommuteAnchor, error)
}
