package postgres

import (
	"testing"

	"matjib-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatasetLoader_RequiresPool(t *testing.T) {
	_, err := NewDatasetLoader(nil, domain.TagVocabulary{})
	assert.Error(t, err)
}

func TestBuildListingsQuery_QuotesTagColumns(t *testing.T) {
	a := &DatasetLoader{tagKeys: []string{"walk", "baseball"}}
	q := a.buildListingsQuery()

	assert.Contains(t, q, `COALESCE(l."walk"::int, 0) <> 0`)
	assert.Contains(t, q, `COALESCE(l."baseball"::int, 0) <> 0`)
	assert.Contains(t, q, "LEFT JOIN house_lifestyle l ON l.house_id = h.id")
}

func TestTagColumnRe(t *testing.T) {
	for _, ok := range []string{"walk", "dog_park", "_x1"} {
		require.True(t, tagColumnRe.MatchString(ok), ok)
	}
	for _, bad := range []string{"Walk", "1abc", "walk; DROP TABLE houses", "산책", ""} {
		require.False(t, tagColumnRe.MatchString(bad), bad)
	}
}
