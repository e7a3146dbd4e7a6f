package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v int64) *int64 { return &v }

func TestIntRange_ContainsIsInclusive(t *testing.T) {
	r := IntRange{Min: ptr(100), Max: ptr(500)}

	assert.True(t, r.Contains(100))
	assert.True(t, r.Contains(500))
	assert.False(t, r.Contains(99))
	assert.False(t, r.Contains(501))
	assert.True(t, IntRange{}.Contains(-1_000_000))
}

func TestParseAreaBand(t *testing.T) {
	b, ok := ParseAreaBand("10평대")
	assert.True(t, ok)
	assert.Equal(t, AreaBand10s, b)

	b, ok = ParseAreaBand("ge60")
	assert.True(t, ok)
	assert.Equal(t, AreaBandFrom60, b)

	b, ok = ParseAreaBand("전체")
	assert.True(t, ok)
	assert.Equal(t, AreaBandAny, b)

	_, ok = ParseAreaBand("70평대")
	assert.False(t, ok)
}

func TestFilterCriteria_IsEmpty(t *testing.T) {
	assert.True(t, DefaultCriteria().IsEmpty())
	assert.True(t, FilterCriteria{DealType: "전체", AreaBands: []AreaBand{AreaBandAny}}.IsEmpty())
	assert.False(t, FilterCriteria{DealType: DealTypeLease}.IsEmpty())
	assert.False(t, FilterCriteria{ActiveLifestyle: []string{"pet"}}.IsEmpty())
}

func TestListing_DisplayAddress(t *testing.T) {
	assert.Equal(t, "서울 광진구 자양동 10", Listing{Address: "서울 광진구 자양동 10"}.DisplayAddress())
	assert.Equal(t, "서울 광진구 자양동 10 2층", Listing{Address: "서울 광진구 자양동 10", AddressDetail: " 2층 "}.DisplayAddress())
}
