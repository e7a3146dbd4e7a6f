package matching

import (
	"matjib-service/internal/core/domain"

	"github.com/mmcloughlin/geohash"
)

const (
	minGeohashPrecision = 1
	maxGeohashPrecision = 12
)

// BuildMarkers строит маркеры карты с полным geohash
func BuildMarkers(listings []domain.Listing) []domain.MapMarker {
	markers := make([]domain.MapMarker, len(listings))
	for i, l := range listings {
		markers[i] = domain.MapMarker{
			ListingID: l.ID,
			Lat:       l.Lat,
			Lng:       l.Lng,
			Geohash:   geohash.Encode(l.Lat, l.Lng),
		}
	}
	return markers
}

// ClusterMarkers объединяет маркеры по префиксу geohash заданной длины.
// Координаты кластера - среднее по входящим маркерам, порядок - по первому появлению.
func ClusterMarkers(markers []domain.MapMarker, precision int) []domain.MarkerCluster {
	if precision < minGeohashPrecision {
		precision = minGeohashPrecision
	}
	if precision > maxGeohashPrecision {
		precision = maxGeohashPrecision
	}

	index := make(map[string]int)
	clusters := make([]domain.MarkerCluster, 0)

	for _, m := range markers {
		hash := m.Geohash
		if hash == "" {
			hash = geohash.Encode(m.Lat, m.Lng)
		}
		if len(hash) > precision {
			hash = hash[:precision]
		}

		i, ok := index[hash]
		if !ok {
			i = len(clusters)
			index[hash] = i
			clusters = append(clusters, domain.MarkerCluster{Geohash: hash})
		}
		c := &clusters[i]
		// накапливаем сумму, среднее считаем после прохода
		c.Lat += m.Lat
		c.Lng += m.Lng
		c.Count++
		c.ListingIDs = append(c.ListingIDs, m.ListingID)
	}

	for i := range clusters {
		clusters[i].Lat /= float64(clusters[i].Count)
		clusters[i].Lng /= float64(clusters[i].Count)
	}
	return clusters
}
