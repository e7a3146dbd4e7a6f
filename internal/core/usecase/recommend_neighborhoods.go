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

type RecommendNeighborhoodsUseCase struct {
	sessions       port.SessionStorePort
	dataset        port.DatasetProviderPort
	relay          port.RecommendationRelayPort
	vocab          domain.TagVocabulary
	events         port.SearchEventsPort
	metrics        port.MetricsPort
	candidateLimit int
	now            func() time.Time
}

func NewRecommendNeighborhoodsUseCase(sessions port.SessionStorePort,
	dataset port.DatasetProviderPort,
	relay port.RecommendationRelayPort,
	vocab domain.TagVocabulary,
	events port.SearchEventsPort,
	metrics port.MetricsPort,
	candidateLimit int) *RecommendNeighborhoodsUseCase {
	return &RecommendNeighborhoodsUseCase{
		sessions:       sessions,
		dataset:        dataset,
		relay:          relay,
		vocab:          vocab,
		events:         events,
		metrics:        metrics,
		candidateLimit: candidateLimit,
		now:            time.Now,
	}
}

// Execute: фильтр -> отбор кандидатов -> реле -> сопоставление с отфильтрованным набором.
// Любой сбой реле не ошибка сценария: ответ уходит с AIAvailable=false и полным отфильтрованным набором.
func (uc *RecommendNeighborhoodsUseCase) Execute(ctx context.Context, sessionID uuid.UUID, criteria *domain.FilterCriteria) (*domain.RecommendationOutcome, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "RecommendNeighborhoods",
		"session_id": sessionID.String(),
	})
	ucLogger.Info("Use case started", nil)

	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("recommend neighborhoods: %w", err)
	}

	ds, err := uc.dataset.Current()
	if err != nil {
		ucLogger.Error("Dataset is not available", err, nil)
		return nil, fmt.Errorf("recommend neighborhoods: %w", err)
	}

	applied := uc.resolveCriteria(session, criteria)
	applied.ActiveLifestyle = knownTags(ucLogger, uc.vocab, applied.ActiveLifestyle)

	filtered := matching.Filter(ds.Listings, applied)
	session.RememberSearch(applied, filtered)
	session.Touch(uc.now())

	anchors := session.Anchors()
	candidates := matching.SelectCandidates(filtered, anchors, uc.candidateLimit, ds.Regions)

	outcome := &domain.RecommendationOutcome{
		Filtered:       filtered,
		CandidatesSent: len(candidates),
	}

	if len(candidates) == 0 {
		ucLogger.Info("No candidates for recommendation, skipping relay", nil)
		outcome.Result = matching.Reconcile(filtered, nil)
		uc.metrics.RelayCompleted(port.RelayOutcomeNoCandidate)
		uc.publish(ctx, ucLogger, sessionID, outcome)
		return outcome, nil
	}

	req := domain.RecommendationRequest{
		UserReq:        uc.userRequirements(applied, anchors),
		TopCandidates:  candidates,
		RegionProfiles: matching.RegionProfilesByLabel(candidates),
	}

	ucLogger.Debug("Calling recommendation relay", port.Fields{"candidates": len(candidates), "anchors": len(anchors)})
	recs, err := uc.relay.Recommend(ctx, req)
	switch {
	case err != nil:
		ucLogger.Warn("Recommendation relay failed, returning filtered results", port.Fields{"error": err.Error()})
		uc.metrics.RelayCompleted(port.RelayOutcomeFailed)
		outcome.Result = matching.Reconcile(filtered, nil)
	case len(recs) == 0:
		ucLogger.Warn("Recommendation relay returned no recommendations", nil)
		uc.metrics.RelayCompleted(port.RelayOutcomeEmpty)
		outcome.Result = matching.Reconcile(filtered, nil)
	default:
		uc.metrics.RelayCompleted(port.RelayOutcomeOK)
		outcome.AIAvailable = true
		outcome.Recommendations = recs
		outcome.Result = matching.Reconcile(filtered, recs)
	}

	uc.publish(ctx, ucLogger, sessionID, outcome)

	ucLogger.Info("Use case finished successfully", port.Fields{
		"ai_available": outcome.AIAvailable,
		"matched":      len(outcome.Result.Matched),
		"filtered":     len(filtered),
	})
	return outcome, nil
}

func (uc *RecommendNeighborhoodsUseCase) resolveCriteria(session *domain.SearchSession, criteria *domain.FilterCriteria) domain.FilterCriteria {
	if criteria != nil {
		return *criteria
	}
	if last, _, ok := session.LastSearch(); ok {
		return last
	}
	return domain.DefaultCriteria()
}

func (uc *RecommendNeighborhoodsUseCase) userRequirements(c domain.FilterCriteria, anchors []domain.CommuteAnchor) domain.UserRequirements {
	req := domain.UserRequirements{
		DealType:        c.DealType,
		DepositMin:      c.Deposit.Min,
		DepositMax:      c.Deposit.Max,
		RentMin:         c.Rent.Min,
		RentMax:         c.Rent.Max,
		IncludeFee:      c.IncludeFee,
		AreaBands:       bandCodes(c.AreaBands),
		CommuteNames:    make([]string, len(anchors)),
		ActiveLifestyle: make([]domain.LifestyleTag, len(c.ActiveLifestyle)),
	}
	if req.DealType == "" {
		req.DealType = "전체"
	}
	for i, a := range anchors {
		req.CommuteNames[i] = a.Name
	}
	for i, key := range c.ActiveLifestyle {
		req.ActiveLifestyle[i] = domain.LifestyleTag{Key: key, Label: uc.vocab.Label(key)}
	}
	return req
}

func (uc *RecommendNeighborhoodsUseCase) publish(ctx context.Context, logger port.LoggerPort, sessionID uuid.UUID, outcome *domain.RecommendationOutcome) {
	keywords := make([]string, len(outcome.Recommendations))
	for i, r := range outcome.Recommendations {
		keywords[i] = r.Keyword
	}
	event := domain.RecommendationCompletedEvent{
		SessionID:      sessionID,
		AIAvailable:    outcome.AIAvailable,
		Keywords:       keywords,
		CandidatesSent: outcome.CandidatesSent,
		MatchedCount:   len(outcome.Result.Matched),
		OccurredAt:     uc.now().UTC(),
	}
	if err := uc.events.PublishRecommendationCompleted(ctx, event); err != nil {
		logger.Warn("Failed to publish recommendation event", port.Fields{"error": err.Error()})
	}
}
