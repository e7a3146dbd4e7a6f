package domain

// DistrictGroup - группа объявлений списка по району (второе слово адреса)
type DistrictGroup struct {
	District string
	Listings []Listing
}

// MapMarker - точка объявления на карте
type MapMarker struct {
	ListingID int64
	Lat       float64
	Lng       float64
	Geohash   string
}

// MarkerCluster - маркеры с общим префиксом geohash
type MarkerCluster struct {
	Geohash    string
	Lat        float64
	Lng        float64
	Count      int
	ListingIDs []int64
}

// RegionCount - район и количество объявлений в нем
type RegionCount struct {
	Region string
	Count  int
}

// TagSearchResult - объявления с тегом и топ районов по ним
type TagSearchResult struct {
	Tag        LifestyleTag
	Listings   []Listing
	TopRegions []RegionCount
}

// SearchResult - результат поиска по критериям
type SearchResult struct {
	CriteriaApplied bool
	Listings        []Listing
	Groups          []DistrictGroup
	Markers         []MapMarker
}

// ListingDetails - карточка объявления с подписями для показа
type ListingDetails struct {
	Listing     Listing
	PriceLabel  string
	MoveInLabel string
	FeeLabel    string
	Tags        []LifestyleTag
}

// Dictionaries - справочники для построения формы фильтра
type Dictionaries struct {
	Tags      []LifestyleTag
	AreaBands []AreaBandInfo
	DealTypes []string
}
