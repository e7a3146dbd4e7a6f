// Package matching содержит чистые функции поиска: фильтр, расстояния до точек поездок,
// отбор кандидатов для рекомендаций и сопоставление ответа с объявлениями.
// Функции не держат состояния и безопасны для параллельного вызова.
package matching

import (
	"matjib-service/internal/core/domain"
)

// Filter возвращает объявления, прошедшие все предикаты, в исходном порядке.
// Результат никогда не nil: пустой срез - это "ничего не найдено".
func Filter(listings []domain.Listing, criteria domain.FilterCriteria) []domain.Listing {
	result := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if Matches(l, criteria) {
			result = append(result, l)
		}
	}
	return result
}

// Matches проверяет предикаты по порядку и выходит на первом непрошедшем
func Matches(l domain.Listing, c domain.FilterCriteria) bool {
	// 1. Тип сделки
	if !c.AnyDealType() && l.DealType != c.DealType {
		return false
	}

	// 2. Депозит
	if !c.Deposit.Contains(l.Deposit) {
		return false
	}

	// 3. Аренда (+ управляющий сбор). Для 전세 аренда 0 и проходит, только если 0 в диапазоне.
	effectiveRent := l.Rent
	if c.IncludeFee {
		effectiveRent += l.MaintenanceFee
	}
	if !c.Rent.Contains(effectiveRent) {
		return false
	}

	// 4. Площадь
	if !c.AnyArea() && !inAnyBand(Pyeong(l.AreaM2), c.AreaBands) {
		return false
	}

	// 5. Теги образа жизни, AND
	for _, tag := range c.ActiveLifestyle {
		if !l.Lifestyle.Has(tag) {
			return false
		}
	}

	return true
}
