// Package labels форматирует значения объявлений для показа на корейском
package labels

import (
	"strings"

	"matjib-service/internal/core/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Korean)

// Number - число с разделителями разрядов ("12,000")
func Number(v int64) string {
	return printer.Sprintf("%d", v)
}

// Price - "전세 12,000" или "월세 1,000 / 50"
func Price(l domain.Listing) string {
	if l.DealType == domain.DealTypeLease {
		return "전세 " + Number(l.Deposit)
	}
	return "월세 " + Number(l.Deposit) + " / " + Number(l.Rent)
}

// Fee - управляющий сбор в 만원
func Fee(l domain.Listing) string {
	return Number(l.MaintenanceFee) + "만원"
}

// DottedDate - "2025-03-01" -> "2025.03.01"
func DottedDate(s string) string {
	return strings.ReplaceAll(s, "-", ".")
}

// Details собирает карточку: активные теги идут в порядке словаря
func Details(l domain.Listing, vocab domain.TagVocabulary) domain.ListingDetails {
	tags := make([]domain.LifestyleTag, 0)
	for _, t := range vocab.Tags {
		if l.Lifestyle.Has(t.Key) {
			tags = append(tags, t)
		}
	}
	return domain.ListingDetails{
		Listing:     l,
		PriceLabel:  Price(l),
		MoveInLabel: DottedDate(l.MoveInDate),
		FeeLabel:    Fee(l),
		Tags:        tags,
	}
}
