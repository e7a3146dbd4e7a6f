package usecases_port

import (
	"context"

	"matjib-service/internal/core/domain"
)

type GetListingDetailsUseCase interface {
	Execute(ctx context.Context, id int64) (*domain.ListingDetails, error)
}

type GetListingPhotosUseCase interface {
	Execute(ctx context.Context, id int64) ([]string, error)
}

type SearchByTagUseCase interface {
	Execute(ctx context.Context, tag string) (*domain.TagSearchResult, error)
}

type GetDictionariesUseCase interface {
	Execute(ctx context.Context) domain.Dictionaries
}
