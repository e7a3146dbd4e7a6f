package usecase

import (
	"context"
	"testing"

	"matjib-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions_CreateAndGet(t *testing.T) {
	uc := NewSessionsUseCase(newFakeSessions())

	s, err := uc.Create(context.Background())
	require.NoError(t, err)

	got, err := uc.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = uc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionMarkers(t *testing.T) {
	sessions := newFakeSessions()
	session, _ := sessions.Create(context.Background())
	ds := testDataset()
	uc := NewSessionMarkersUseCase(sessions, &fakeDataset{ds: ds})

	// до поиска - весь набор; при точности 1 все точки Сеула в одном кластере
	clusters, err := uc.Execute(context.Background(), session.ID, 1)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, 3, clusters[0].Count)

	session.RememberSearch(domain.DefaultCriteria(), ds.Listings[:1])
	clusters, err = uc.Execute(context.Background(), session.ID, 12)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, []int64{1}, clusters[0].ListingIDs)
}

func TestRelayRecommendations(t *testing.T) {
	metrics := &fakeMetrics{}
	uc := NewRelayRecommendationsUseCase(&fakeRelay{recs: []domain.Recommendation{{Keyword: "자양동"}}}, metrics)

	recs, err := uc.Execute(context.Background(), domain.RecommendationRequest{})
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	uc = NewRelayRecommendationsUseCase(&fakeRelay{err: errBoom}, metrics)
	_, err = uc.Execute(context.Background(), domain.RecommendationRequest{})
	assert.ErrorIs(t, err, domain.ErrRelayUnavailable)
	assert.ErrorIs(t, err, errBoom)
}
