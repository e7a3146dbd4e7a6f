package matching

import "matjib-service/internal/core/domain"

// Pyeong переводит м² в пхёны
func Pyeong(areaM2 float64) float64 {
	return areaM2 / domain.SquareMetersPerPyeong
}

// BandContains - точные операторы границ по каждому диапазону.
// "10평 이하" включает 10, "10평대" начинается с 10 включительно.
func BandContains(band domain.AreaBand, pyeong float64) bool {
	switch band {
	case domain.AreaBandAny:
		return true
	case domain.AreaBandUpTo10:
		return pyeong <= 10
	case domain.AreaBand10s:
		return pyeong >= 10 && pyeong < 20
	case domain.AreaBand20s:
		return pyeong >= 20 && pyeong < 30
	case domain.AreaBand30s:
		return pyeong >= 30 && pyeong < 40
	case domain.AreaBand40s:
		return pyeong >= 40 && pyeong < 50
	case domain.AreaBand50s:
		return pyeong >= 50 && pyeong < 60
	case domain.AreaBandFrom60:
		return pyeong >= 60
	default:
		return false
	}
}

func inAnyBand(pyeong float64, bands []domain.AreaBand) bool {
	for _, b := range bands {
		if BandContains(b, pyeong) {
			return true
		}
	}
	return false
}
