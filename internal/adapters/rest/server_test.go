package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"matjib-service/internal/contextkeys"
	"matjib-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeDetailsUC struct{ listings map[int64]domain.Listing }

func (f *fakeDetailsUC) Execute(_ context.Context, id int64) (*domain.ListingDetails, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, fmt.Errorf("listing %d: %w", id, domain.ErrListingNotFound)
	}
	return &domain.ListingDetails{Listing: l, PriceLabel: "월세 1,000 / 50", FeeLabel: "5만원"}, nil
}

type fakePhotosUC struct{ gotID int64 }

func (f *fakePhotosUC) Execute(_ context.Context, id int64) ([]string, error) {
	f.gotID = id
	return nil, nil
}

type fakeByTagUC struct{}

func (fakeByTagUC) Execute(_ context.Context, tag string) (*domain.TagSearchResult, error) {
	if tag != "walk" {
		return nil, domain.ErrUnknownTag
	}
	return &domain.TagSearchResult{
		Tag:        domain.LifestyleTag{Key: "walk", Label: "산책"},
		Listings:   []domain.Listing{{ID: 2, Address: "서울 마포구 망원동"}},
		TopRegions: []domain.RegionCount{{Region: "서울 마포구", Count: 1}},
	}, nil
}

type fakeDictionariesUC struct{}

func (fakeDictionariesUC) Execute(context.Context) domain.Dictionaries {
	return domain.Dictionaries{
		Tags:      []domain.LifestyleTag{{Key: "walk", Label: "산책"}},
		AreaBands: domain.AreaBands,
		DealTypes: []string{"전체", "전세", "월세"},
	}
}

type fakeSessionsUC struct{ sessions map[uuid.UUID]*domain.SearchSession }

func (f *fakeSessionsUC) Create(context.Context) (*domain.SearchSession, error) {
	s := domain.NewSearchSession(time.Now())
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeSessionsUC) Get(_ context.Context, id uuid.UUID) (*domain.SearchSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

type fakeAnchorsUC struct{}

func (fakeAnchorsUC) Add(_ context.Context, _ uuid.UUID, names []string) ([]domain.AnchorResult, error) {
	out := make([]domain.AnchorResult, len(names))
	for i, n := range names {
		if n == "nowhere" {
			out[i] = domain.AnchorResult{Name: n, Err: domain.ErrPlaceNotFound}
			continue
		}
		out[i] = domain.AnchorResult{Name: n, Anchor: &domain.CommuteAnchor{Name: n, Lat: 37.5, Lng: 127.0}}
	}
	return out, nil
}

func (fakeAnchorsUC) Remove(_ context.Context, _ uuid.UUID, name string) error {
	if name != "강남역" {
		return domain.ErrAnchorNotFound
	}
	return nil
}

type fakeSearchUC struct{ got domain.FilterCriteria }

func (f *fakeSearchUC) Execute(_ context.Context, _ uuid.UUID, c domain.FilterCriteria) (*domain.SearchResult, error) {
	f.got = c
	l := domain.Listing{ID: 1, DealType: domain.DealTypeLease, Deposit: 20000, Address: "서울 마포구 망원동", Lat: 37.55, Lng: 126.9}
	return &domain.SearchResult{
		CriteriaApplied: !c.IsEmpty(),
		Listings:        []domain.Listing{l},
		Groups:          []domain.DistrictGroup{{District: "마포구", Listings: []domain.Listing{l}}},
		Markers:         []domain.MapMarker{{ListingID: 1, Lat: l.Lat, Lng: l.Lng, Geohash: "wydm"}},
	}, nil
}

type fakeMarkersUC struct{ gotPrecision int }

func (f *fakeMarkersUC) Execute(_ context.Context, _ uuid.UUID, precision int) ([]domain.MarkerCluster, error) {
	f.gotPrecision = precision
	return []domain.MarkerCluster{{Geohash: "wydm", Count: 2, ListingIDs: []int64{1, 2}}}, nil
}

type fakeRecommendUC struct {
	called   bool
	criteria *domain.FilterCriteria
}

func (f *fakeRecommendUC) Execute(_ context.Context, _ uuid.UUID, c *domain.FilterCriteria) (*domain.RecommendationOutcome, error) {
	f.called = true
	f.criteria = c
	matched := domain.Listing{ID: 1, Address: "서울 마포구 망원동"}
	return &domain.RecommendationOutcome{
		AIAvailable:     true,
		Recommendations: []domain.Recommendation{{Keyword: "망원동", Reason: "한강 산책"}},
		Result: domain.ReconcileResult{
			Matched:  []domain.Listing{matched},
			ByRegion: map[string][]domain.Recommendation{"망원동": {{Keyword: "망원동", Reason: "한강 산책"}}},
		},
		Filtered:       []domain.Listing{matched, {ID: 2, Address: "서울 강남구 역삼동"}},
		CandidatesSent: 2,
	}, nil
}

type fakeRelayUC struct{ err error }

func (f *fakeRelayUC) Execute(_ context.Context, req domain.RecommendationRequest) ([]domain.Recommendation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Recommendation{{Keyword: "망원동", Reason: fmt.Sprintf("%d candidates", len(req.TopCandidates))}}, nil
}

type testEnv struct {
	router    http.Handler
	sessions  *fakeSessionsUC
	photos    *fakePhotosUC
	search    *fakeSearchUC
	markers   *fakeMarkersUC
	recommend *fakeRecommendUC
	relay     *fakeRelayUC
}

func newTestEnv(t *testing.T, rateLimit int) *testEnv {
	t.Helper()
	env := &testEnv{
		sessions:  &fakeSessionsUC{sessions: map[uuid.UUID]*domain.SearchSession{}},
		photos:    &fakePhotosUC{},
		search:    &fakeSearchUC{},
		markers:   &fakeMarkersUC{},
		recommend: &fakeRecommendUC{},
		relay:     &fakeRelayUC{},
	}
	listings := NewListingHandlers(
		&fakeDetailsUC{listings: map[int64]domain.Listing{7: {ID: 7, DealType: domain.DealTypeMonthly, Deposit: 1000, Rent: 50, Address: "서울 관악구 봉천동", AddressDetail: "101호"}}},
		env.photos, fakeByTagUC{}, fakeDictionariesUC{},
	)
	sessions := NewSessionHandlers(env.sessions, fakeAnchorsUC{}, env.search, env.markers, env.recommend)
	relay := NewRelayHandlers(env.relay)

	cfg := ServerConfig{Port: "0", CORSAllowedOrigins: []string{"*"}, RecommendRateLimit: rateLimit}
	env.router = NewRouter(cfg, listings, sessions, relay, contextkeys.NoopLogger())
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (e *testEnv) newSession(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeBody[SessionResponse](t, rec).ID
}

// --- tests ---

func TestHealthzAndTraceID(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	_, err := uuid.Parse(rec.Header().Get("X-Trace-ID"))
	assert.NoError(t, err, "generated trace id must be a uuid")

	traceID := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Trace-ID", traceID)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, traceID, rec.Header().Get("X-Trace-ID"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Trace-ID", "not-a-uuid")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get("X-Trace-ID"))
}

func TestDictionaries(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(t, http.MethodGet, "/api/v1/dictionaries", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[DictionariesResponse](t, rec)
	assert.Equal(t, []LifestyleTagDTO{{Key: "walk", Label: "산책"}}, resp.Tags)
	assert.Len(t, resp.AreaBands, len(domain.AreaBands))
	assert.Equal(t, "le10", resp.AreaBands[0].Code)
	assert.Equal(t, []string{"전체", "전세", "월세"}, resp.DealTypes)
}

func TestGetListingDetails(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(t, http.MethodGet, "/api/v1/listings/7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[ListingDetailsResponse](t, rec)
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "서울 관악구 봉천동 101호", resp.Address)
	assert.Equal(t, "월세 1,000 / 50", resp.PriceLabel)
	assert.Equal(t, "서울 관악구", resp.Region)

	rec = env.do(t, http.MethodGet, "/api/v1/listings/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/listings/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetListingPhotos_NonNumericIDFallsBackToOne(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(t, http.MethodGet, "/api/v1/listings/abc/photos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, int64(1), env.photos.gotID)

	env.do(t, http.MethodGet, "/api/v1/listings/42/photos", "")
	assert.Equal(t, int64(42), env.photos.gotID)
}

func TestSearchByTag(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(t, http.MethodGet, "/api/v1/tags/walk/listings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[TagSearchResponse](t, rec)
	assert.Equal(t, "산책", resp.Tag.Label)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, []RegionCountResponse{{Region: "서울 마포구", Count: 1}}, resp.TopRegions)

	rec = env.do(t, http.MethodGet, "/api/v1/tags/yoga/listings", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRelay(t *testing.T) {
	t.Run("missing data", func(t *testing.T) {
		env := newTestEnv(t, 0)
		for _, body := range []string{`{}`, `{"userReq":{}}`, `{"topCandidates":[]}`, ""} {
			rec := env.do(t, http.MethodPost, "/api/v1/relay/recommendations", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
			assert.JSONEq(t, `{"error":"Missing data"}`, rec.Body.String(), body)
		}
	})

	t.Run("ok", func(t *testing.T) {
		env := newTestEnv(t, 0)
		body := `{"userReq":{"rentType":"월세","depositMax":"oops"},"topCandidates":[{"id":1,"address":"서울 마포구 망원동"}],"regionProfiles":{}}`
		rec := env.do(t, http.MethodPost, "/api/v1/relay/recommendations", body)
		// depositMax не число -> невалидный JSON для *int64
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		body = `{"userReq":{"rentType":"월세","depositMax":5000},"topCandidates":[{"id":1,"address":"서울 마포구 망원동"}],"regionProfiles":{}}`
		rec = env.do(t, http.MethodPost, "/api/v1/relay/recommendations", body)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[RelayResponseDTO](t, rec)
		assert.Equal(t, []RecommendationDTO{{Keyword: "망원동", Reason: "1 candidates"}}, resp.Recommendations)
	})

	t.Run("relay down", func(t *testing.T) {
		env := newTestEnv(t, 0)
		env.relay.err = fmt.Errorf("%w: %w", domain.ErrRelayUnavailable, errors.New("boom"))
		body := `{"userReq":{},"topCandidates":[]}`
		rec := env.do(t, http.MethodPost, "/api/v1/relay/recommendations", body)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestRelay_RateLimited(t *testing.T) {
	env := newTestEnv(t, 1)
	body := `{"userReq":{},"topCandidates":[]}`

	rec := env.do(t, http.MethodPost, "/api/v1/relay/recommendations", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/relay/recommendations", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// остальные маршруты лимит не трогает
	rec = env.do(t, http.MethodGet, "/api/v1/dictionaries", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessions_CreateAndGet(t *testing.T) {
	env := newTestEnv(t, 0)
	id := env.newSession(t)

	rec := env.do(t, http.MethodGet, "/api/v1/sessions/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[SessionResponse](t, rec)
	assert.Equal(t, id, resp.ID)
	assert.Empty(t, resp.Anchors)
	assert.Nil(t, resp.LastResultCount)

	rec = env.do(t, http.MethodGet, "/api/v1/sessions/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/sessions/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessions_Anchors(t *testing.T) {
	env := newTestEnv(t, 0)
	id := env.newSession(t)

	rec := env.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/anchors", `{"names":["강남역","nowhere"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	results := decodeBody[[]AnchorResultResponse](t, rec)
	require.Len(t, results, 2)
	assert.True(t, results[0].OK)
	require.NotNil(t, results[0].Anchor)
	assert.Equal(t, 37.5, results[0].Anchor.Lat)
	assert.False(t, results[1].OK)
	assert.Equal(t, domain.ErrPlaceNotFound.Error(), results[1].Error)

	rec = env.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/anchors", `{"names":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/sessions/"+id+"/anchors/%EA%B0%95%EB%82%A8%EC%97%AD", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/sessions/"+id+"/anchors/somewhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessions_SearchDegradesMalformedCriteria(t *testing.T) {
	env := newTestEnv(t, 0)
	id := env.newSession(t)

	body := `{"deal_type":"전세","deposit_min":"abc","deposit_max":"30000","rent_max":70,"area_bands":["20s","huge"],"lifestyle":[" walk ",""]}`
	rec := env.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/search", body)
	require.Equal(t, http.StatusOK, rec.Code)

	got := env.search.got
	assert.Equal(t, domain.DealTypeLease, got.DealType)
	assert.Nil(t, got.Deposit.Min)
	require.NotNil(t, got.Deposit.Max)
	assert.Equal(t, int64(30000), *got.Deposit.Max)
	require.NotNil(t, got.Rent.Max)
	assert.Equal(t, int64(70), *got.Rent.Max)
	assert.Equal(t, []domain.AreaBand{domain.AreaBand20s}, got.AreaBands)
	assert.Equal(t, []string{"walk"}, got.ActiveLifestyle)

	resp := decodeBody[SearchResponse](t, rec)
	assert.True(t, resp.CriteriaApplied)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Groups, 1)
	assert.Equal(t, "마포구", resp.Groups[0].District)
	assert.Equal(t, "전세 20,000", resp.Groups[0].Listings[0].PriceLabel)
	require.Len(t, resp.Markers, 1)

	rec = env.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/search", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.search.got.IsEmpty())

	rec = env.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/search", "{broken")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessions_SearchToleratesWrongFieldTypes(t *testing.T) {
	env := newTestEnv(t, 0)
	id := env.newSession(t)

	cases := []struct {
		name  string
		body  string
		check func(t *testing.T, got domain.FilterCriteria)
	}{
		{"include fee as string", `{"include_fee":"true"}`, func(t *testing.T, got domain.FilterCriteria) {
			assert.True(t, got.IncludeFee)
		}},
		{"include fee garbage", `{"include_fee":{"x":1}}`, func(t *testing.T, got domain.FilterCriteria) {
			assert.False(t, got.IncludeFee)
		}},
		{"single area band", `{"area_bands":"10평대"}`, func(t *testing.T, got domain.FilterCriteria) {
			assert.Equal(t, []domain.AreaBand{domain.AreaBand10s}, got.AreaBands)
		}},
		{"numeric deal type", `{"deal_type":1}`, func(t *testing.T, got domain.FilterCriteria) {
			assert.True(t, got.AnyDealType())
		}},
		{"single lifestyle tag", `{"lifestyle":"walk"}`, func(t *testing.T, got domain.FilterCriteria) {
			assert.Equal(t, []string{"walk"}, got.ActiveLifestyle)
		}},
		{"lifestyle with non-strings", `{"lifestyle":["gym",3,null]}`, func(t *testing.T, got domain.FilterCriteria) {
			assert.Equal(t, []string{"gym"}, got.ActiveLifestyle)
		}},
		{"infinite deposit", `{"deposit_max":"Inf"}`, func(t *testing.T, got domain.FilterCriteria) {
			assert.Nil(t, got.Deposit.Max)
		}},
		{"nan deposit", `{"deposit_max":"NaN","deposit_min":"-Infinity"}`, func(t *testing.T, got domain.FilterCriteria) {
			assert.Nil(t, got.Deposit.Max)
			assert.Nil(t, got.Deposit.Min)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/search", tc.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			tc.check(t, env.search.got)
		})
	}
}

func TestSessions_Markers(t *testing.T) {
	env := newTestEnv(t, 0)
	id := env.newSession(t)

	rec := env.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/markers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultMarkerPrecision, env.markers.gotPrecision)

	rec = env.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/markers?precision=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, env.markers.gotPrecision)
	resp := decodeBody[MarkersResponse](t, rec)
	require.Len(t, resp.Clusters, 1)
	assert.Equal(t, []int64{1, 2}, resp.Clusters[0].ListingIDs)
}

func TestSessions_Recommend(t *testing.T) {
	env := newTestEnv(t, 0)
	id := env.newSession(t)

	rec := env.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/recommendations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.recommend.called)
	assert.Nil(t, env.recommend.criteria, "empty body reuses last search")

	resp := decodeBody[RecommendationResponse](t, rec)
	assert.True(t, resp.AIAvailable)
	assert.Equal(t, 1, resp.MatchedTotal)
	assert.Equal(t, 2, resp.FilteredTotal)
	require.Len(t, resp.Listings, 1, "with ai only matched listings are returned")
	assert.Contains(t, resp.ByRegion, "망원동")

	rec = env.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/recommendations", `{"deal_type":"월세"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.recommend.criteria)
	assert.Equal(t, domain.DealTypeMonthly, env.recommend.criteria.DealType)
}

func TestRecommendationResponse_WithoutAIFallsBackToFiltered(t *testing.T) {
	o := &domain.RecommendationOutcome{
		Filtered: []domain.Listing{{ID: 1}, {ID: 2}},
		Result:   domain.ReconcileResult{ByRegion: map[string][]domain.Recommendation{}},
	}
	resp := toRecommendationResponse(o)
	assert.False(t, resp.AIAvailable)
	assert.Len(t, resp.Listings, 2)
	assert.Empty(t, resp.Recommendations)
}

func TestFlexInt(t *testing.T) {
	cases := []struct {
		raw  string
		want *int64
	}{
		{`100`, ptr(100)},
		{`"250"`, ptr(250)},
		{`" 7 "`, ptr(7)},
		{`12.9`, ptr(12)},
		{`"abc"`, nil},
		{`null`, nil},
		{`true`, nil},
		{`""`, nil},
		{`"NaN"`, nil},
		{`"Inf"`, nil},
		{`"-Infinity"`, nil},
		{`1e300`, nil},
		{`"99999999999999999999"`, nil},
		{`-5e3`, ptr(-5000)},
	}
	for _, tc := range cases {
		var f flexInt
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &f), tc.raw)
		assert.Equal(t, tc.want, f.value, tc.raw)
	}
}

func ptr(v int64) *int64 { return &v }
