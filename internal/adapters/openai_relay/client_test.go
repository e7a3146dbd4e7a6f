package openai_relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"matjib-service/internal/contextkeys"
	"matjib-service/internal/core/domain"
	"matjib-service/pkg/circuitbreaker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest() domain.RecommendationRequest {
	depositMax := int64(30000)
	return domain.RecommendationRequest{
		UserReq: domain.UserRequirements{
			DealType:        "전세",
			DepositMax:      &depositMax,
			CommuteNames:    []string{"강남역"},
			ActiveLifestyle: []domain.LifestyleTag{{Key: "walk", Label: "산책"}},
		},
		TopCandidates: []domain.Candidate{{
			ID: 1, Address: "서울 광진구 자양동 227-7", RegionLabel: "광진구 자양동",
			Lifestyle: domain.LifestyleProfile{"walk": true}, AvgCommuteDist: 7.5,
		}},
		RegionProfiles: map[string]map[string]any{"광진구 자양동": {"walk": "한강"}},
	}
}

func chatResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]string{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func newTestClient(url string) *Client {
	return NewClient(Config{APIKey: "sk-test", BaseURL: url + "/", Model: "gpt-4o", Timeout: 5 * time.Second}, contextkeys.NoopLogger())
}

func TestRecommend_Success(t *testing.T) {
	var got chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(chatResponse(`{"recommendations":[{"keyword":" 자양동 ","reason":"산책하기 좋은 한강"},{"keyword":"화양동","reason":"카페"}]}`)))
	}))
	defer srv.Close()

	recs, err := newTestClient(srv.URL).Recommend(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, []domain.Recommendation{
		{Keyword: "자양동", Reason: "산책하기 좋은 한강"},
		{Keyword: "화양동", Reason: "카페"},
	}, recs)

	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 1)
	prompt := got.Messages[0].Content
	assert.Contains(t, prompt, `"rentType":"전세"`)
	assert.Contains(t, prompt, `"commuteList":["강남역"]`)
	assert.Contains(t, prompt, `"avgCommuteDist":7.5`)
	assert.Contains(t, prompt, `[{"key":"walk","label":"산책"}]`)
}

func TestRecommend_Failures(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"non 2xx":          {http.StatusInternalServerError, `{}`},
		"api error":        {http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`},
		"garbage body":     {http.StatusOK, `<html>`},
		"no choices":       {http.StatusOK, `{"choices":[]}`},
		"content not json": {http.StatusOK, chatResponse(`sorry, I cannot`)},
		"missing key":      {http.StatusOK, chatResponse(`{"result":[]}`)},
		"empty list":       {http.StatusOK, chatResponse(`{"recommendations":[]}`)},
		"error field":      {http.StatusOK, chatResponse(`{"recommendations":[{"keyword":"x","reason":"y"}],"error":"partial"}`)},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			recs, err := newTestClient(srv.URL).Recommend(context.Background(), sampleRequest())
			assert.Error(t, err)
			assert.Nil(t, recs)
		})
	}
}

func TestRecommend_NotConfigured(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1", Model: "gpt-4o"}, contextkeys.NoopLogger())
	_, err := c.Recommend(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestRecommend_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	for i := 0; i < 3; i++ {
		_, err := c.Recommend(context.Background(), sampleRequest())
		require.Error(t, err)
	}
	_, err := c.Recommend(context.Background(), sampleRequest())
	assert.True(t, circuitbreaker.IsOpen(err))
	assert.Equal(t, int32(3), hits.Load())
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`  {"a":1} `))

	recs, err := parseContent("```json\n{\"recommendations\":[{\"keyword\":\"망원동\",\"reason\":\"r\"}]}\n```")
	require.NoError(t, err)
	assert.Equal(t, "망원동", recs[0].Keyword)
}

func TestRenderPrompt_EmptyCollectionsRenderAsJSON(t *testing.T) {
	prompt, err := renderPrompt(domain.RecommendationRequest{})
	require.NoError(t, err)
	assert.Contains(t, prompt, `"area":[]`)
	assert.Contains(t, prompt, "Region Profiles (unique per neighborhood):\n{}")
	assert.True(t, strings.Contains(prompt, "Candidate Houses"))
}
