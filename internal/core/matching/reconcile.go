package matching

import (
	"strings"

	"matjib-service/internal/core/domain"
)

// Reconcile сопоставляет ключевые слова рекомендаций с адресами отфильтрованных объявлений.
// Совпадение - подстрока с учетом регистра, без нормализации.
// Пустой список рекомендаций дает пустой результат, а не ошибку.
func Reconcile(filtered []domain.Listing, recommendations []domain.Recommendation) domain.ReconcileResult {
	result := domain.ReconcileResult{
		Matched:  []domain.Listing{},
		ByRegion: make(map[string][]domain.Recommendation),
	}
	if len(recommendations) == 0 {
		return result
	}

	for _, rec := range recommendations {
		result.ByRegion[rec.Keyword] = append(result.ByRegion[rec.Keyword], rec)
	}

	for _, l := range filtered {
		address := l.DisplayAddress()
		for _, rec := range recommendations {
			// пустое ключевое слово совпало бы с любым адресом
			if rec.Keyword != "" && strings.Contains(address, rec.Keyword) {
				result.Matched = append(result.Matched, l)
				break
			}
		}
	}
	return result
}
