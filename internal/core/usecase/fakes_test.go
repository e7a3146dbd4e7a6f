package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"matjib-service/internal/core/domain"

	"github.com/google/uuid"
)

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.SearchSession
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[uuid.UUID]*domain.SearchSession)}
}

func (f *fakeSessions) Create(ctx context.Context) (*domain.SearchSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := domain.NewSearchSession(time.Now())
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeSessions) Get(ctx context.Context, id uuid.UUID) (*domain.SearchSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

type fakeDataset struct {
	ds  *domain.Dataset
	err error
}

func (f *fakeDataset) Current() (*domain.Dataset, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ds, nil
}

type fakeRelay struct {
	recs  []domain.Recommendation
	err   error
	calls []domain.RecommendationRequest
}

func (f *fakeRelay) Recommend(ctx context.Context, req domain.RecommendationRequest) ([]domain.Recommendation, error) {
	f.calls = append(f.calls, req)
	return f.recs, f.err
}

type fakeGeocoder struct {
	places map[string]domain.CommuteAnchor
	calls  []string
}

func (f *fakeGeocoder) Resolve(ctx context.Context, name string) (*domain.CommuteAnchor, error) {
	f.calls = append(f.calls, name)
	p, ok := f.places[name]
	if !ok {
		return nil, domain.ErrPlaceNotFound
	}
	return &p, nil
}

type fakePhotos struct {
	photos []domain.Photo
	err    error
}

func (f *fakePhotos) SearchPhotos(ctx context.Context) ([]domain.Photo, error) {
	return f.photos, f.err
}

type fakeEvents struct {
	searches []domain.SearchCompletedEvent
	recs     []domain.RecommendationCompletedEvent
	err      error
}

func (f *fakeEvents) PublishSearchCompleted(ctx context.Context, e domain.SearchCompletedEvent) error {
	f.searches = append(f.searches, e)
	return f.err
}

func (f *fakeEvents) PublishRecommendationCompleted(ctx context.Context, e domain.RecommendationCompletedEvent) error {
	f.recs = append(f.recs, e)
	return f.err
}

type fakeMetrics struct {
	searches      []int
	relayOutcomes []string
	anchorsOK     int
	anchorsFailed int
	photoPools    []int
}

func (f *fakeMetrics) SearchCompleted(n int)         { f.searches = append(f.searches, n) }
func (f *fakeMetrics) RelayCompleted(outcome string) { f.relayOutcomes = append(f.relayOutcomes, outcome) }
func (f *fakeMetrics) PhotoLookupCompleted(n int)    { f.photoPools = append(f.photoPools, n) }
func (f *fakeMetrics) DatasetReloaded(bool, int)     {}
func (f *fakeMetrics) ActiveSessionsChanged(int)     {}
func (f *fakeMetrics) AnchorResolved(ok bool) {
	if ok {
		f.anchorsOK++
	} else {
		f.anchorsFailed++
	}
}

var errBoom = errors.New("boom")

var testVocab = domain.TagVocabulary{Tags: []domain.LifestyleTag{
	{Key: "walk", Label: "산책"},
	{Key: "pet", Label: "반려동물"},
	{Key: "cafe", Label: "카페"},
}}

func testDataset() *domain.Dataset {
	return &domain.Dataset{
		Listings: []domain.Listing{
			{ID: 1, DealType: domain.DealTypeMonthly, Deposit: 1000, Rent: 50, AreaM2: 30, Address: "서울 광진구 자양동 10",
				RegionID: "jayang", RegionLabel: "자양동", Lat: 37.5349, Lng: 127.0822,
				Lifestyle: domain.LifestyleProfile{"walk": true, "cafe": true}},
			{ID: 2, DealType: domain.DealTypeMonthly, Deposit: 500, Rent: 40, AreaM2: 25, Address: "서울 광진구 화양동 5",
				RegionID: "hwayang", RegionLabel: "화양동", Lat: 37.5466, Lng: 127.0713,
				Lifestyle: domain.LifestyleProfile{"pet": true}},
			{ID: 3, DealType: domain.DealTypeLease, Deposit: 20000, Rent: 0, AreaM2: 60, Address: "서울 마포구 합정동 3",
				RegionID: "hapjeong", RegionLabel: "합정동", Lat: 37.5495, Lng: 126.9137,
				Lifestyle: domain.LifestyleProfile{"walk": true, "pet": true}},
		},
		Regions: map[string]domain.RegionProfile{
			"jayang":  {ID: "jayang", Label: "자양동", Profile: map[string]any{"walk": "한강공원"}},
			"hwayang": {ID: "hwayang", Label: "화양동", Profile: map[string]any{"cafe": "건대 상권"}},
		},
	}
}
