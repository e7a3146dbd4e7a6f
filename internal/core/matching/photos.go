package matching

import "math/bits"

const (
	photoSeedMultiplier = 7919
	photosPerListing    = 3
)

// PickPhotoIndices - детерминированный выбор индексов из пула: (id*7919 + i) mod n, i = 0..2.
// Одно и то же объявление всегда получает одни и те же фото. При n < 3 индексы повторяются.
func PickPhotoIndices(listingID int64, poolSize int) []int {
	if poolSize <= 0 {
		return []int{}
	}
	if listingID <= 0 {
		listingID = 1
	}

	// seed mod n считается без переполнения: id*7919 не влезает в int64 для больших id
	n := uint64(poolSize)
	hi, lo := bits.Mul64(uint64(listingID)%n, photoSeedMultiplier%n)
	seed := bits.Rem64(hi, lo, n)

	indices := make([]int, photosPerListing)
	for i := range indices {
		indices[i] = int((seed + uint64(i)) % n)
	}
	return indices
}
