package matching

import (
	"math"

	"matjib-service/internal/core/domain"
)

const earthRadiusKm = 6371.0

// HaversineKm - расстояние по большому кругу между двумя точками в градусах
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// AverageDistanceKm - среднее расстояние от объявления до точек поездок.
// Без точек возвращает 0: это "без оценки", а не нулевое расстояние.
func AverageDistanceKm(l domain.Listing, anchors []domain.CommuteAnchor) float64 {
	if len(anchors) == 0 {
		return 0
	}
	var sum float64
	for _, a := range anchors {
		sum += HaversineKm(l.Lat, l.Lng, a.Lat, a.Lng)
	}
	return sum / float64(len(anchors))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
