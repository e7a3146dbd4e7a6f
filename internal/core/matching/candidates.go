package matching

import (
	"sort"

	"matjib-service/internal/core/domain"
)

// DefaultCandidateLimit ограничивает размер полезной нагрузки к модели
const DefaultCandidateLimit = 30

// SelectCandidates ранжирует по среднему расстоянию (если есть точки), обрезает до limit
// и проецирует объявления в кандидатов. Без точек порядок не меняется.
func SelectCandidates(filtered []domain.Listing, anchors []domain.CommuteAnchor, limit int, regions map[string]domain.RegionProfile) []domain.Candidate {
	if limit <= 0 {
		limit = DefaultCandidateLimit
	}

	type scored struct {
		listing domain.Listing
		score   float64
	}

	items := make([]scored, len(filtered))
	for i, l := range filtered {
		items[i] = scored{listing: l, score: AverageDistanceKm(l, anchors)}
	}

	if len(anchors) > 0 {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].score < items[j].score
		})
	}

	if len(items) > limit {
		items = items[:limit]
	}

	candidates := make([]domain.Candidate, len(items))
	for i, it := range items {
		candidates[i] = toCandidate(it.listing, it.score, regions)
	}
	return candidates
}

func toCandidate(l domain.Listing, score float64, regions map[string]domain.RegionProfile) domain.Candidate {
	c := domain.Candidate{
		ID:             l.ID,
		Address:        l.DisplayAddress(),
		RegionID:       l.RegionID,
		RegionLabel:    l.RegionLabel,
		Deposit:        l.Deposit,
		Rent:           l.Rent,
		MaintenanceFee: l.MaintenanceFee,
		Lifestyle:      l.Lifestyle,
		AvgCommuteDist: score,
	}
	if region, ok := regions[l.RegionID]; ok {
		c.RegionProfile = region.Profile
	}
	return c
}

// RegionProfilesByLabel собирает уникальные профили районов, встречающихся среди кандидатов
func RegionProfilesByLabel(candidates []domain.Candidate) map[string]map[string]any {
	profiles := make(map[string]map[string]any)
	for _, c := range candidates {
		if c.RegionLabel == "" || c.RegionProfile == nil {
			continue
		}
		if _, seen := profiles[c.RegionLabel]; !seen {
			profiles[c.RegionLabel] = c.RegionProfile
		}
	}
	return profiles
}
