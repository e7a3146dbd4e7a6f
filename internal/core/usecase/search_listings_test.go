package usecase

import (
	"context"
	"testing"

	"matjib-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchListings_FiltersGroupsAndRemembers(t *testing.T) {
	sessions := newFakeSessions()
	session, _ := sessions.Create(context.Background())
	events := &fakeEvents{}
	metrics := &fakeMetrics{}
	uc := NewSearchListingsUseCase(sessions, &fakeDataset{ds: testDataset()}, testVocab, events, metrics)

	criteria := domain.FilterCriteria{DealType: domain.DealTypeMonthly}
	res, err := uc.Execute(context.Background(), session.ID, criteria)
	require.NoError(t, err)

	assert.True(t, res.CriteriaApplied)
	require.Len(t, res.Listings, 2)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, "광진구", res.Groups[0].District)
	assert.Len(t, res.Markers, 2)

	last, filtered, ok := session.LastSearch()
	require.True(t, ok)
	assert.Equal(t, domain.DealTypeMonthly, last.DealType)
	assert.Len(t, filtered, 2)

	assert.Equal(t, []int{2}, metrics.searches)
	require.Len(t, events.searches, 1)
	assert.Equal(t, session.ID, events.searches[0].SessionID)
	assert.Equal(t, 2, events.searches[0].ResultCount)
}

func TestSearchListings_DefaultCriteriaReturnsAll(t *testing.T) {
	sessions := newFakeSessions()
	session, _ := sessions.Create(context.Background())
	uc := NewSearchListingsUseCase(sessions, &fakeDataset{ds: testDataset()}, testVocab, &fakeEvents{}, &fakeMetrics{})

	res, err := uc.Execute(context.Background(), session.ID, domain.DefaultCriteria())
	require.NoError(t, err)

	assert.False(t, res.CriteriaApplied)
	assert.Len(t, res.Listings, 3)
}

func TestSearchListings_EmptyResultIsNotAnError(t *testing.T) {
	sessions := newFakeSessions()
	session, _ := sessions.Create(context.Background())
	uc := NewSearchListingsUseCase(sessions, &fakeDataset{ds: testDataset()}, testVocab, &fakeEvents{}, &fakeMetrics{})

	res, err := uc.Execute(context.Background(), session.ID, domain.FilterCriteria{DealType: domain.DealTypeLease, ActiveLifestyle: []string{"cafe"}})
	require.NoError(t, err)

	assert.True(t, res.CriteriaApplied)
	assert.NotNil(t, res.Listings)
	assert.Empty(t, res.Listings)
}

func TestSearchListings_UnknownTagsAreIgnored(t *testing.T) {
	sessions := newFakeSessions()
	session, _ := sessions.Create(context.Background())
	uc := NewSearchListingsUseCase(sessions, &fakeDataset{ds: testDataset()}, testVocab, &fakeEvents{}, &fakeMetrics{})

	res, err := uc.Execute(context.Background(), session.ID, domain.FilterCriteria{ActiveLifestyle: []string{"movie", "pet"}})
	require.NoError(t, err)

	assert.Equal(t, []int64{2, 3}, []int64{res.Listings[0].ID, res.Listings[1].ID})
}

func TestSearchListings_EventFailureDoesNotFailSearch(t *testing.T) {
	sessions := newFakeSessions()
	session, _ := sessions.Create(context.Background())
	uc := NewSearchListingsUseCase(sessions, &fakeDataset{ds: testDataset()}, testVocab, &fakeEvents{err: errBoom}, &fakeMetrics{})

	_, err := uc.Execute(context.Background(), session.ID, domain.DefaultCriteria())
	assert.NoError(t, err)
}

func TestSearchListings_Errors(t *testing.T) {
	sessions := newFakeSessions()
	uc := NewSearchListingsUseCase(sessions, &fakeDataset{ds: testDataset()}, testVocab, &fakeEvents{}, &fakeMetrics{})

	_, err := uc.Execute(context.Background(), uuid.New(), domain.DefaultCriteria())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	session, _ := sessions.Create(context.Background())
	uc = NewSearchListingsUseCase(sessions, &fakeDataset{err: domain.ErrDatasetNotLoaded}, testVocab, &fakeEvents{}, &fakeMetrics{})
	_, err = uc.Execute(context.Background(), session.ID, domain.DefaultCriteria())
	assert.ErrorIs(t, err, domain.ErrDatasetNotLoaded)
}
