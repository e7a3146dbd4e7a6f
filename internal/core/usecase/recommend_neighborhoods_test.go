package usecase

import (
	"context"
	"testing"

	"matjib-service/internal/core/domain"
	"matjib-service/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recommendFixture struct {
	sessions *fakeSessions
	session  *domain.SearchSession
	relay    *fakeRelay
	events   *fakeEvents
	metrics  *fakeMetrics
	uc       *RecommendNeighborhoodsUseCase
}

func newRecommendFixture(t *testing.T, relay *fakeRelay, limit int) *recommendFixture {
	t.Helper()
	f := &recommendFixture{sessions: newFakeSessions(), relay: relay, events: &fakeEvents{}, metrics: &fakeMetrics{}}
	f.session, _ = f.sessions.Create(context.Background())
	f.uc = NewRecommendNeighborhoodsUseCase(f.sessions, &fakeDataset{ds: testDataset()}, relay, testVocab, f.events, f.metrics, limit)
	return f
}

func TestRecommend_ReconcilesKeywords(t *testing.T) {
	f := newRecommendFixture(t, &fakeRelay{recs: []domain.Recommendation{
		{Keyword: "자양동", Reason: "한강 산책로"},
		{Keyword: "연남동", Reason: "조용함"},
	}}, 30)

	out, err := f.uc.Execute(context.Background(), f.session.ID, &domain.FilterCriteria{DealType: domain.DealTypeMonthly})
	require.NoError(t, err)

	assert.True(t, out.AIAvailable)
	assert.Equal(t, 2, out.CandidatesSent)
	require.Len(t, out.Result.Matched, 1)
	assert.Equal(t, int64(1), out.Result.Matched[0].ID)
	assert.Contains(t, out.Result.ByRegion, "연남동")
	assert.Len(t, out.Filtered, 2)
	assert.Equal(t, []string{port.RelayOutcomeOK}, f.metrics.relayOutcomes)

	require.Len(t, f.events.recs, 1)
	assert.Equal(t, []string{"자양동", "연남동"}, f.events.recs[0].Keywords)
	assert.Equal(t, 1, f.events.recs[0].MatchedCount)
}

func TestRecommend_BuildsRequest(t *testing.T) {
	relay := &fakeRelay{recs: []domain.Recommendation{{Keyword: "자양동"}}}
	f := newRecommendFixture(t, relay, 30)
	require.NoError(t, f.session.AddAnchor(domain.CommuteAnchor{Name: "강남역", Lat: 37.4979, Lng: 127.0276}))

	_, err := f.uc.Execute(context.Background(), f.session.ID, &domain.FilterCriteria{ActiveLifestyle: []string{"walk"}})
	require.NoError(t, err)

	require.Len(t, relay.calls, 1)
	req := relay.calls[0]
	assert.Equal(t, "전체", req.UserReq.DealType)
	assert.Equal(t, []string{"강남역"}, req.UserReq.CommuteNames)
	assert.Equal(t, []domain.LifestyleTag{{Key: "walk", Label: "산책"}}, req.UserReq.ActiveLifestyle)
	require.Len(t, req.TopCandidates, 2)
	// объявление 1 ближе к точке, чем 3
	assert.Equal(t, int64(1), req.TopCandidates[0].ID)
	assert.Greater(t, req.TopCandidates[0].AvgCommuteDist, 0.0)
	assert.Equal(t, map[string]map[string]any{"자양동": {"walk": "한강공원"}}, req.RegionProfiles)
}

func TestRecommend_TruncatesCandidates(t *testing.T) {
	relay := &fakeRelay{recs: []domain.Recommendation{{Keyword: "동"}}}
	f := newRecommendFixture(t, relay, 1)

	out, err := f.uc.Execute(context.Background(), f.session.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, out.CandidatesSent)
	assert.Len(t, relay.calls[0].TopCandidates, 1)
	// "동" входит во все адреса, сопоставление идет по всему отфильтрованному набору
	assert.Len(t, out.Result.Matched, 3)
}

func TestRecommend_RelayFailureDegrades(t *testing.T) {
	for name, relay := range map[string]*fakeRelay{
		"error": {err: errBoom},
		"empty": {recs: []domain.Recommendation{}},
	} {
		t.Run(name, func(t *testing.T) {
			f := newRecommendFixture(t, relay, 30)

			out, err := f.uc.Execute(context.Background(), f.session.ID, nil)
			require.NoError(t, err)

			assert.False(t, out.AIAvailable)
			assert.Len(t, out.Filtered, 3)
			assert.Empty(t, out.Result.Matched)
			assert.Empty(t, out.Result.ByRegion)
			require.Len(t, f.events.recs, 1)
			assert.False(t, f.events.recs[0].AIAvailable)
		})
	}
}

func TestRecommend_NoCandidatesSkipsRelay(t *testing.T) {
	relay := &fakeRelay{recs: []domain.Recommendation{{Keyword: "자양동"}}}
	f := newRecommendFixture(t, relay, 30)

	out, err := f.uc.Execute(context.Background(), f.session.ID, &domain.FilterCriteria{DealType: "없음"})
	require.NoError(t, err)

	assert.False(t, out.AIAvailable)
	assert.Empty(t, relay.calls)
	assert.Equal(t, []string{port.RelayOutcomeNoCandidate}, f.metrics.relayOutcomes)
}

func TestRecommend_UsesLastSearchCriteria(t *testing.T) {
	relay := &fakeRelay{recs: []domain.Recommendation{{Keyword: "합정동"}}}
	f := newRecommendFixture(t, relay, 30)
	f.session.RememberSearch(domain.FilterCriteria{DealType: domain.DealTypeLease}, nil)

	out, err := f.uc.Execute(context.Background(), f.session.ID, nil)
	require.NoError(t, err)

	require.Len(t, out.Filtered, 1)
	assert.Equal(t, int64(3), out.Filtered[0].ID)
	assert.Equal(t, domain.DealTypeLease, relay.calls[0].UserReq.DealType)
}
