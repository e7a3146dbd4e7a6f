package usecase

import (
	"context"
	"fmt"

	"matjib-service/internal/contextkeys"
	"matjib-service/internal/core/domain"
	"matjib-service/internal/core/port"
)

// RelayRecommendationsUseCase - прямой проход к модели для клиентов, которые сами собрали кандидатов
type RelayRecommendationsUseCase struct {
	relay   port.RecommendationRelayPort
	metrics port.MetricsPort
}

func NewRelayRecommendationsUseCase(relay port.RecommendationRelayPort, metrics port.MetricsPort) *RelayRecommendationsUseCase {
	return &RelayRecommendationsUseCase{relay: relay, metrics: metrics}
}

func (uc *RelayRecommendationsUseCase) Execute(ctx context.Context, req domain.RecommendationRequest) ([]domain.Recommendation, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "RelayRecommendations",
		"candidates": len(req.TopCandidates),
	})
	logger.Info("Use case started", nil)

	recs, err := uc.relay.Recommend(ctx, req)
	if err != nil {
		uc.metrics.RelayCompleted(port.RelayOutcomeFailed)
		logger.Error("Recommendation relay failed", err, nil)
		return nil, fmt.Errorf("%w: %w", domain.ErrRelayUnavailable, err)
	}
	if len(recs) == 0 {
		uc.metrics.RelayCompleted(port.RelayOutcomeEmpty)
	} else {
		uc.metrics.RelayCompleted(port.RelayOutcomeOK)
	}

	logger.Info("Use case finished successfully", port.Fields{"recommendations": len(recs)})
	return recs, nil
}
