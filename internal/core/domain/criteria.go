package domain

import "slices"

// SquareMetersPerPyeong - коэффициент перевода м² в пхён
const SquareMetersPerPyeong = 3.3058

// AreaBand - диапазон площади в пхёнах
type AreaBand string

const (
	AreaBandAny    AreaBand = "any"
	AreaBandUpTo10 AreaBand = "le10"
	AreaBand10s    AreaBand = "10s"
	AreaBand20s    AreaBand = "20s"
	AreaBand30s    AreaBand = "30s"
	AreaBand40s    AreaBand = "40s"
	AreaBand50s    AreaBand = "50s"
	AreaBandFrom60 AreaBand = "ge60"
)

// AreaBandInfo - описание диапазона для справочника
type AreaBandInfo struct {
	Band  AreaBand
	Label string
}

// AreaBands - все диапазоны в порядке показа
var AreaBands = []AreaBandInfo{
	{AreaBandUpTo10, "10평 이하"},
	{AreaBand10s, "10평대"},
	{AreaBand20s, "20평대"},
	{AreaBand30s, "30평대"},
	{AreaBand40s, "40평대"},
	{AreaBand50s, "50평대"},
	{AreaBandFrom60, "60평 이상"},
}

// ParseAreaBand принимает код или корейскую подпись. Неизвестное значение -> ok=false.
func ParseAreaBand(s string) (AreaBand, bool) {
	switch s {
	case "any", "전체":
		return AreaBandAny, true
	}
	for _, info := range AreaBands {
		if s == string(info.Band) || s == info.Label {
			return info.Band, true
		}
	}
	return "", false
}

// IntRange - включающий диапазон; nil-граница означает отсутствие ограничения
type IntRange struct {
	Min *int64
	Max *int64
}

// Contains проверяет min <= v <= max
func (r IntRange) Contains(v int64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// IsOpen - диапазон без границ
func (r IntRange) IsOpen() bool {
	return r.Min == nil && r.Max == nil
}

// FilterCriteria собирается заново на каждый поиск
type FilterCriteria struct {
	DealType        string
	Deposit         IntRange
	Rent            IntRange
	IncludeFee      bool
	AreaBands       []AreaBand
	ActiveLifestyle []string
}

// DefaultCriteria - полные диапазоны, любой тип сделки и площадь, без тегов
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{}
}

// AnyDealType - селектор типа сделки пропускает всё
func (c FilterCriteria) AnyDealType() bool {
	return slices.Contains(DealTypeAny, c.DealType)
}

// AnyArea - пустой выбор или явный "any" отключает проверку площади
func (c FilterCriteria) AnyArea() bool {
	return len(c.AreaBands) == 0 || slices.Contains(c.AreaBands, AreaBandAny)
}

// IsEmpty - ни один предикат ничего не ограничивает
func (c FilterCriteria) IsEmpty() bool {
	return c.AnyDealType() && c.Deposit.IsOpen() && c.Rent.IsOpen() && c.AnyArea() && len(c.ActiveLifestyle) == 0
}
