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

type SessionsUseCase struct {
	sessions port.SessionStorePort
	now      func() time.Time
}

func NewSessionsUseCase(sessions port.SessionStorePort) *SessionsUseCase {
	return &SessionsUseCase{sessions: sessions, now: time.Now}
}

func (uc *SessionsUseCase) Create(ctx context.Context) (*domain.SearchSession, error) {
	session, err := uc.sessions.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	contextkeys.LoggerFromContext(ctx).Info("Search session created", port.Fields{"session_id": session.ID.String()})
	return session, nil
}

func (uc *SessionsUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.SearchSession, error) {
	session, err := uc.sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	session.Touch(uc.now())
	return session, nil
}

// SessionMarkersUseCase кластеризует маркеры последнего результата сессии.
// До первого поиска на карте весь набор.
type SessionMarkersUseCase struct {
	sessions port.SessionStorePort
	dataset  port.DatasetProviderPort
}

func NewSessionMarkersUseCase(sessions port.SessionStorePort, dataset port.DatasetProviderPort) *SessionMarkersUseCase {
	return &SessionMarkersUseCase{sessions: sessions, dataset: dataset}
}

func (uc *SessionMarkersUseCase) Execute(ctx context.Context, sessionID uuid.UUID, precision int) ([]domain.MarkerCluster, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session markers: %w", err)
	}

	_, listings, ok := session.LastSearch()
	if !ok {
		ds, err := uc.dataset.Current()
		if err != nil {
			return nil, fmt.Errorf("session markers: %w", err)
		}
		listings = ds.Listings
	}

	clusters := matching.ClusterMarkers(matching.BuildMarkers(listings), precision)
	contextkeys.LoggerFromContext(ctx).Debug("Markers clustered", port.Fields{
		"session_id": sessionID.String(),
		"markers":    len(listings),
		"clusters":   len(clusters),
		"precision":  precision,
	})
	return clusters, nil
}
