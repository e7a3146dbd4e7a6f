package domain

import "strings"

// Типы сделки в том виде, в каком они лежат в датасете
const (
	DealTypeLease   = "전세"
	DealTypeMonthly = "월세"
)

// DealTypeAny - значения селектора, означающие "любой тип сделки"
var DealTypeAny = []string{"", "any", "전체"}

// Listing - одно объявление. После загрузки снапшота не изменяется.
type Listing struct {
	ID             int64
	DealType       string
	Deposit        int64 // 만원
	Rent           int64 // 만원
	MaintenanceFee int64 // 만원
	AreaM2         float64
	RegionID       string
	RegionLabel    string
	Address        string
	AddressDetail  string
	Lat            float64
	Lng            float64

	RoomType     string
	Rooms        int
	Baths        int
	Floor        string
	TotalFloor   string
	Heating      string
	Direction    string
	Elevator     bool
	ParkingTotal int
	MoveInDate   string
	BuildingType string

	// nil означает, что профиля нет (все теги ложны)
	Lifestyle LifestyleProfile
}

// DisplayAddress - полный адрес для показа и для сопоставления с ключевыми словами рекомендаций
func (l Listing) DisplayAddress() string {
	detail := strings.TrimSpace(l.AddressDetail)
	if detail == "" {
		return l.Address
	}
	return l.Address + " " + detail
}

// LifestyleProfile - флаги образа жизни по ключам тегов
type LifestyleProfile map[string]bool

// Has возвращает true, только если тег присутствует и истинен
func (p LifestyleProfile) Has(tag string) bool {
	if p == nil {
		return false
	}
	return p[tag]
}

// RegionProfile - описание района из справочника регионов
type RegionProfile struct {
	ID      string
	Label   string
	Profile map[string]any
}

// Dataset - полностью загруженный снапшот: объявления в исходном порядке и справочник регионов
type Dataset struct {
	Listings []Listing
	Regions  map[string]RegionProfile
}

// FindListing ищет объявление по идентификатору
func (d *Dataset) FindListing(id int64) (Listing, bool) {
	if d == nil {
		return Listing{}, false
	}
	for _, l := range d.Listings {
		if l.ID == id {
			return l, true
		}
	}
	return Listing{}, false
}
