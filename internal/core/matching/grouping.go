package matching

import (
	"sort"
	"strings"

	"matjib-service/internal/core/domain"
)

const unknownDistrict = "기타"

// District - второе слово адреса ("서울 광진구 ..." -> "광진구")
func District(address string) string {
	parts := strings.Fields(address)
	if len(parts) >= 2 {
		return parts[1]
	}
	return unknownDistrict
}

// RegionPrefix - первые два слова адреса ("서울 광진구")
func RegionPrefix(address string) string {
	parts := strings.Fields(address)
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, " ")
}

// GroupByDistrict группирует список для показа; группы идут в порядке первого появления
func GroupByDistrict(listings []domain.Listing) []domain.DistrictGroup {
	index := make(map[string]int)
	groups := make([]domain.DistrictGroup, 0)

	for _, l := range listings {
		d := District(l.Address)
		i, ok := index[d]
		if !ok {
			i = len(groups)
			index[d] = i
			groups = append(groups, domain.DistrictGroup{District: d})
		}
		groups[i].Listings = append(groups[i].Listings, l)
	}
	return groups
}

// ListingsWithTag - объявления с истинным тегом, от новых к старым (по убыванию id)
func ListingsWithTag(listings []domain.Listing, tag string) []domain.Listing {
	result := make([]domain.Listing, 0)
	for _, l := range listings {
		if l.Lifestyle.Has(tag) {
			result = append(result, l)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ID > result[j].ID
	})
	return result
}

// TopRegionsByTag считает объявления с тегом по районам и возвращает не больше n лучших
func TopRegionsByTag(listings []domain.Listing, tag string, n int) []domain.RegionCount {
	counts := make(map[string]int)
	for _, l := range listings {
		if l.Lifestyle.Has(tag) {
			counts[RegionPrefix(l.Address)]++
		}
	}

	ranked := make([]domain.RegionCount, 0, len(counts))
	for region, cnt := range counts {
		ranked = append(ranked, domain.RegionCount{Region: region, Count: cnt})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Region < ranked[j].Region
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
