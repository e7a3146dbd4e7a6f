package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyFromPath(t *testing.T) {
	assert.Equal(t, "SearchCompletedEvent/1.0.0", generateKeyFromPath("schemas/events/search-completed/v1.json"))
	assert.Equal(t, "RecommendationsResponse/2.0.0", generateKeyFromPath("schemas/relay/recommendations/v2.json"))
	assert.Equal(t, "", generateKeyFromPath("schemas/other/x/v1.json"))
	assert.Equal(t, "", generateKeyFromPath("schemas/events/v1.json"))
}

func TestAllSchemasRegistered(t *testing.T) {
	for _, key := range []string{RecommendationsResponseV1, SearchCompletedEventV1, RecommendationCompletedEventV1, DatasetUpdatedEventV1} {
		_, ok := compiledSchemas[key]
		assert.True(t, ok, key)
	}
}

func TestValidate_RecommendationsResponse(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		valid bool
	}{
		{"ok", `{"recommendations":[{"keyword":"자양동","reason":"한강"},{"keyword":"화양동","reason":"대학가"}]}`, true},
		{"extra fields allowed", `{"recommendations":[{"keyword":"자양동","reason":"","score":1}],"note":"x"}`, true},
		{"missing list", `{"result":[]}`, false},
		{"empty list", `{"recommendations":[]}`, false},
		{"keyword not string", `{"recommendations":[{"keyword":1,"reason":"x"}]}`, false},
		{"empty keyword", `{"recommendations":[{"keyword":"","reason":"x"}]}`, false},
		{"missing reason", `{"recommendations":[{"keyword":"자양동"}]}`, false},
		{"not json", "```json\n{}\n```", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(RecommendationsResponseV1, []byte(tc.body))
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestValidate_UnknownKey(t *testing.T) {
	assert.Error(t, Validate("Nope/1.0.0", []byte(`{}`)))
}

func TestValidate_SearchCompletedEvent(t *testing.T) {
	ok := `{"session_id":"7f1c2b0e-8d4c-4a55-9a47-0d3a3b7c2f11","deal_type":"월세","anchors_count":2,"result_count":10,"occurred_at":"2026-01-02T03:04:05Z"}`
	assert.NoError(t, Validate(SearchCompletedEventV1, []byte(ok)))

	badUUID := `{"session_id":"nope","deal_type":"","anchors_count":0,"result_count":0,"occurred_at":"2026-01-02T03:04:05Z"}`
	assert.Error(t, Validate(SearchCompletedEventV1, []byte(badUUID)))
}
