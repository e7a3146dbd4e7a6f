package usecase

import (
	"context"
	"fmt"
	"time"

	"matjib-service/internal/contextkeys"
	"matjib-service/internal/core/domain"
	"matjib-service/internal/core/matching"
	"matjib-service/internal/core/port"

	"github.com/google/uuid"
)

type SearchListingsUseCase struct {
	sessions port.SessionStorePort
	dataset  port.DatasetProviderPort
	vocab    domain.TagVocabulary
	events   port.SearchEventsPort
	metrics  port.MetricsPort
	now      func() time.Time
}

func NewSearchListingsUseCase(sessions port.SessionStorePort,
	dataset port.DatasetProviderPort,
	vocab domain.TagVocabulary,
	events port.SearchEventsPort,
	metrics port.MetricsPort) *SearchListingsUseCase {
	return &SearchListingsUseCase{
		sessions: sessions,
		dataset:  dataset,
		vocab:    vocab,
		events:   events,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Execute фильтрует снапшот, группирует результат по районам и запоминает его в сессии
func (uc *SearchListingsUseCase) Execute(ctx context.Context, sessionID uuid.UUID, criteria domain.FilterCriteria) (*domain.SearchResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "SearchListings",
		"session_id": sessionID.String(),
	})
	ucLogger.Debug("Use case started", nil)

	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}

	ds, err := uc.dataset.Current()
	if err != nil {
		ucLogger.Error("Dataset is not available", err, nil)
		return nil, fmt.Errorf("search listings: %w", err)
	}

	criteria.ActiveLifestyle = knownTags(ucLogger, uc.vocab, criteria.ActiveLifestyle)

	filtered := matching.Filter(ds.Listings, criteria)
	result := &domain.SearchResult{
		CriteriaApplied: !criteria.IsEmpty(),
		Listings:        filtered,
		Groups:          matching.GroupByDistrict(filtered),
		Markers:         matching.BuildMarkers(filtered),
	}

	session.RememberSearch(criteria, filtered)
	session.Touch(uc.now())
	uc.metrics.SearchCompleted(len(filtered))

	event := domain.SearchCompletedEvent{
		SessionID:       sessionID,
		DealType:        criteria.DealType,
		AreaBands:       bandCodes(criteria.AreaBands),
		ActiveLifestyle: criteria.ActiveLifestyle,
		AnchorsCount:    len(session.Anchors()),
		ResultCount:     len(filtered),
		OccurredAt:      uc.now().UTC(),
	}
	if err := uc.events.PublishSearchCompleted(ctx, event); err != nil {
		// событие для аналитики, поиск из-за него не падает
		ucLogger.Warn("Failed to publish search event", port.Fields{"error": err.Error()})
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total":            len(ds.Listings),
		"matched":          len(filtered),
		"criteria_applied": result.CriteriaApplied,
	})
	return result, nil
}

// knownTags отбрасывает теги вне словаря: неизвестный тег отсек бы все объявления
func knownTags(logger port.LoggerPort, vocab domain.TagVocabulary, tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if !vocab.Contains(t) {
			logger.Debug("Ignoring unknown lifestyle tag", port.Fields{"tag": t})
			continue
		}
		out = append(out, t)
	}
	return out
}

func bandCodes(bands []domain.AreaBand) []string {
	out := make([]string, len(bands))
	for i, b := range bands {
		out[i] = string(b)
	}
	return out
}
