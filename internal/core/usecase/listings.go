package usecase

import (
	"context"
	"fmt"

	"matjib-service/internal/contextkeys"
	"matjib-service/internal/core/domain"
	"matjib-service/internal/core/labels"
	"matjib-service/internal/core/matching"
	"matjib-service/internal/core/port"
)

const topRegionsPerTag = 3

type GetListingDetailsUseCase struct {
	dataset port.DatasetProviderPort
	vocab   domain.TagVocabulary
}

func NewGetListingDetailsUseCase(dataset port.DatasetProviderPort, vocab domain.TagVocabulary) *GetListingDetailsUseCase {
	return &GetListingDetailsUseCase{dataset: dataset, vocab: vocab}
}

func (uc *GetListingDetailsUseCase) Execute(ctx context.Context, id int64) (*domain.ListingDetails, error) {
	ds, err := uc.dataset.Current()
	if err != nil {
		return nil, fmt.Errorf("listing details: %w", err)
	}

	l, ok := ds.FindListing(id)
	if !ok {
		return nil, fmt.Errorf("listing %d: %w", id, domain.ErrListingNotFound)
	}

	details := labels.Details(l, uc.vocab)
	return &details, nil
}

// GetListingPhotosUseCase подбирает стоковые фото для объявлений без своих фотографий.
// Выбор зависит только от id, поэтому существование объявления не проверяется.
type GetListingPhotosUseCase struct {
	photos  port.PhotoSearchPort
	metrics port.MetricsPort
}

func NewGetListingPhotosUseCase(photos port.PhotoSearchPort, metrics port.MetricsPort) *GetListingPhotosUseCase {
	return &GetListingPhotosUseCase{photos: photos, metrics: metrics}
}

// Execute никогда не возвращает ошибку поиска фото: при сбое список пуст
func (uc *GetListingPhotosUseCase) Execute(ctx context.Context, id int64) ([]string, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "GetListingPhotos",
		"listing_id": id,
	})

	results, err := uc.photos.SearchPhotos(ctx)
	if err != nil {
		ucLogger.Warn("Photo search failed, returning empty list", port.Fields{"error": err.Error()})
		uc.metrics.PhotoLookupCompleted(0)
		return []string{}, nil
	}

	pool := matching.PhotoPool(results)
	uc.metrics.PhotoLookupCompleted(len(pool))

	urls := matching.PickPhotoURLs(id, pool)
	ucLogger.Debug("Photos picked", port.Fields{"results": len(results), "pool": len(pool), "picked": len(urls)})
	return urls, nil
}

type SearchByTagUseCase struct {
	dataset port.DatasetProviderPort
	vocab   domain.TagVocabulary
}

func NewSearchByTagUseCase(dataset port.DatasetProviderPort, vocab domain.TagVocabulary) *SearchByTagUseCase {
	return &SearchByTagUseCase{dataset: dataset, vocab: vocab}
}

func (uc *SearchByTagUseCase) Execute(ctx context.Context, tag string) (*domain.TagSearchResult, error) {
	if !uc.vocab.Contains(tag) {
		return nil, fmt.Errorf("tag %q: %w", tag, domain.ErrUnknownTag)
	}

	ds, err := uc.dataset.Current()
	if err != nil {
		return nil, fmt.Errorf("search by tag: %w", err)
	}

	result := &domain.TagSearchResult{
		Tag:        domain.LifestyleTag{Key: tag, Label: uc.vocab.Label(tag)},
		Listings:   matching.ListingsWithTag(ds.Listings, tag),
		TopRegions: matching.TopRegionsByTag(ds.Listings, tag, topRegionsPerTag),
	}

	contextkeys.LoggerFromContext(ctx).Debug("Tag search finished", port.Fields{
		"use_case": "SearchByTag",
		"tag":      tag,
		"found":    len(result.Listings),
	})
	return result, nil
}

type GetDictionariesUseCase struct {
	vocab domain.TagVocabulary
}

func NewGetDictionariesUseCase(vocab domain.TagVocabulary) *GetDictionariesUseCase {
	return &GetDictionariesUseCase{vocab: vocab}
}

func (uc *GetDictionariesUseCase) Execute(ctx context.Context) domain.Dictionaries {
	return domain.Dictionaries{
		Tags:      uc.vocab.Tags,
		AreaBands: domain.AreaBands,
		DealTypes: []string{"전체", domain.DealTypeLease, domain.DealTypeMonthly},
	}
}
