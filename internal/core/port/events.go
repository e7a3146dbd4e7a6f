package port

import (
	"context"

	"matjib-service/internal/core/domain"
)

type SearchEventsPort interface {
	PublishSearchCompleted(ctx context.Context, event domain.SearchCompletedEvent) error
	PublishRecommendationCompleted(ctx context.Context, event domain.RecommendationCompletedEvent) error
}
