package matching

import (
	"strings"

	"matjib-service/internal/core/domain"
)

var (
	photoNGWords        = []string{"3d", "render", "rendering", "illustration", "cartoon", "isometric", "minimalist illustration", "abstract", "graphic"}
	photoCeilingNGWords = []string{"ceiling", "corner", "wall texture", "close up", "door frame"}
	photoMustWords      = []string{"interior", "apartment", "living room", "bedroom", "room", "sofa", "couch", "home", "apartment interior"}
)

// IsRoomPhoto - фото похоже на жилой интерьер: есть ссылка и текст, нет стоп-слов, есть хотя бы одно обязательное
func IsRoomPhoto(p domain.Photo) bool {
	if p.SmallURL == "" {
		return false
	}

	texts := photoTexts(p)
	if len(texts) == 0 {
		return false
	}
	if anyContains(texts, photoNGWords) || anyContains(texts, photoCeilingNGWords) {
		return false
	}
	return anyContains(texts, photoMustWords)
}

// PhotoPool - отфильтрованные фото, а если не прошло ни одно, то весь исходный набор
func PhotoPool(results []domain.Photo) []domain.Photo {
	good := make([]domain.Photo, 0, len(results))
	for _, p := range results {
		if IsRoomPhoto(p) {
			good = append(good, p)
		}
	}
	if len(good) > 0 {
		return good
	}
	return results
}

// PickPhotoURLs выбирает до трех ссылок для объявления. Пустые ссылки из сырого пула пропускаются.
func PickPhotoURLs(listingID int64, pool []domain.Photo) []string {
	urls := make([]string, 0, photosPerListing)
	for _, idx := range PickPhotoIndices(listingID, len(pool)) {
		if u := pool[idx].SmallURL; u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func photoTexts(p domain.Photo) []string {
	raw := append([]string{p.Description, p.AltDescription}, p.Tags...)
	texts := make([]string, 0, len(raw))
	for _, t := range raw {
		if t != "" {
			texts = append(texts, strings.ToLower(t))
		}
	}
	return texts
}

func anyContains(texts, words []string) bool {
	for _, w := range words {
		for _, t := range texts {
			if strings.Contains(t, w) {
				return true
			}
		}
	}
	return false
}
