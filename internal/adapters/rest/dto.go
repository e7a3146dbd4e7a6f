package rest

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"matjib-service/internal/core/domain"
	"matjib-service/internal/core/labels"
	"matjib-service/internal/core/matching"
)

// flexInt принимает число, строку с числом или мусор. Мусор означает "граница не задана".
type flexInt struct {
	value *int64
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	f.value = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		f.value = &v
		return nil
	}
	// NaN, Inf и значения вне int64 тоже мусор
	if v, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) &&
		v >= math.MinInt64 && v < math.MaxInt64 {
		n := int64(v)
		f.value = &n
	}
	return nil
}

// flexString: не строка - значение не задано
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	*f = ""
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(strings.TrimSpace(s))
	}
	return nil
}

// flexBool: true/false, "true"/"1"/"y"/"on", ненулевое число. Остальное - false.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	*f = false
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexBool(n != 0)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "y", "yes", "on":
			*f = true
		}
	}
	return nil
}

// flexStrings принимает массив или одну строку. Нестроковые элементы пропускаются.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	*f = nil
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*f = flexStrings{one}
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	out := make(flexStrings, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	*f = out
	return nil
}

// SearchRequestDTO - критерии фильтра. Некорректные значения не отвергаются, а ослабляют фильтр.
type SearchRequestDTO struct {
	DealType   flexString  `json:"deal_type"`
	DepositMin flexInt     `json:"deposit_min"`
	DepositMax flexInt     `json:"deposit_max"`
	RentMin    flexInt     `json:"rent_min"`
	RentMax    flexInt     `json:"rent_max"`
	IncludeFee flexBool    `json:"include_fee"`
	AreaBands  flexStrings `json:"area_bands"`
	Lifestyle  flexStrings `json:"lifestyle"`
}

func (d SearchRequestDTO) toCriteria() domain.FilterCriteria {
	c := domain.FilterCriteria{
		DealType:        strings.TrimSpace(string(d.DealType)),
		Deposit:         domain.IntRange{Min: d.DepositMin.value, Max: d.DepositMax.value},
		Rent:            domain.IntRange{Min: d.RentMin.value, Max: d.RentMax.value},
		IncludeFee:      bool(d.IncludeFee),
		ActiveLifestyle: make([]string, 0, len(d.Lifestyle)),
	}
	for _, raw := range d.AreaBands {
		// неизвестный диапазон просто пропускаем
		if band, ok := domain.ParseAreaBand(strings.TrimSpace(raw)); ok {
			c.AreaBands = append(c.AreaBands, band)
		}
	}
	for _, tag := range d.Lifestyle {
		if tag = strings.TrimSpace(tag); tag != "" {
			c.ActiveLifestyle = append(c.ActiveLifestyle, tag)
		}
	}
	return c
}

type AddAnchorsRequestDTO struct {
	Names []string `json:"names" validate:"required,min=1,max=20,dive,max=100"`
}

// --- relay ---

type LifestyleTagDTO struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type UserRequirementsDTO struct {
	DealType        string            `json:"rentType"`
	DepositMin      *int64            `json:"depositMin"`
	DepositMax      *int64            `json:"depositMax"`
	RentMin         *int64            `json:"rentMin"`
	RentMax         *int64            `json:"rentMax"`
	IncludeFee      bool              `json:"includeFee"`
	AreaBands       []string          `json:"area"`
	CommuteNames    []string          `json:"commuteList"`
	ActiveLifestyle []LifestyleTagDTO `json:"activeLifestyle"`
}

type CandidateDTO struct {
	ID             int64           `json:"id"`
	Address        string          `json:"address"`
	RegionID       string          `json:"region_id"`
	RegionLabel    string          `json:"region_label"`
	RegionProfile  map[string]any  `json:"region_profile,omitempty"`
	Deposit        int64           `json:"deposit"`
	Rent           int64           `json:"rent"`
	MaintenanceFee int64           `json:"maintenance_fee"`
	Lifestyle      map[string]bool `json:"lifestyle,omitempty"`
	AvgCommuteDist float64         `json:"avgCommuteDist"`
}

type RelayRequestDTO struct {
	UserReq        *UserRequirementsDTO      `json:"userReq" validate:"required"`
	TopCandidates  []CandidateDTO            `json:"topCandidates" validate:"required"`
	RegionProfiles map[string]map[string]any `json:"regionProfiles"`
}

func (d RelayRequestDTO) toDomain() domain.RecommendationRequest {
	u := d.UserReq
	req := domain.RecommendationRequest{
		UserReq: domain.UserRequirements{
			DealType:     u.DealType,
			DepositMin:   u.DepositMin,
			DepositMax:   u.DepositMax,
			RentMin:      u.RentMin,
			RentMax:      u.RentMax,
			IncludeFee:   u.IncludeFee,
			AreaBands:    u.AreaBands,
			CommuteNames: u.CommuteNames,
		},
		TopCandidates:  make([]domain.Candidate, len(d.TopCandidates)),
		RegionProfiles: d.RegionProfiles,
	}
	for _, t := range u.ActiveLifestyle {
		req.UserReq.ActiveLifestyle = append(req.UserReq.ActiveLifestyle, domain.LifestyleTag{Key: t.Key, Label: t.Label})
	}
	for i, c := range d.TopCandidates {
		req.TopCandidates[i] = domain.Candidate{
			ID:             c.ID,
			Address:        c.Address,
			RegionID:       c.RegionID,
			RegionLabel:    c.RegionLabel,
			RegionProfile:  c.RegionProfile,
			Deposit:        c.Deposit,
			Rent:           c.Rent,
			MaintenanceFee: c.MaintenanceFee,
			Lifestyle:      domain.LifestyleProfile(c.Lifestyle),
			AvgCommuteDist: c.AvgCommuteDist,
		}
	}
	if req.RegionProfiles == nil {
		req.RegionProfiles = map[string]map[string]any{}
	}
	return req
}

type RecommendationDTO struct {
	Keyword string `json:"keyword"`
	Reason  string `json:"reason"`
}

type RelayResponseDTO struct {
	Recommendations []RecommendationDTO `json:"recommendations"`
}

func toRecommendationDTOs(recs []domain.Recommendation) []RecommendationDTO {
	out := make([]RecommendationDTO, len(recs))
	for i, r := range recs {
		out[i] = RecommendationDTO{Keyword: r.Keyword, Reason: r.Reason}
	}
	return out
}

// --- responses ---

type ListingCardResponse struct {
	ID             int64   `json:"id"`
	DealType       string  `json:"deal_type"`
	PriceLabel     string  `json:"price_label"`
	Deposit        int64   `json:"deposit"`
	Rent           int64   `json:"rent"`
	MaintenanceFee int64   `json:"maintenance_fee"`
	AreaM2         float64 `json:"area_m2"`
	Pyeong         float64 `json:"pyeong"`
	RoomType       string  `json:"room_type"`
	Floor          string  `json:"floor"`
	Address        string  `json:"address"`
	Region         string  `json:"region"`
	RegionLabel    string  `json:"region_label,omitempty"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
}

func toListingCard(l domain.Listing) ListingCardResponse {
	return ListingCardResponse{
		ID:             l.ID,
		DealType:       l.DealType,
		PriceLabel:     labels.Price(l),
		Deposit:        l.Deposit,
		Rent:           l.Rent,
		MaintenanceFee: l.MaintenanceFee,
		AreaM2:         l.AreaM2,
		Pyeong:         roundTo(matching.Pyeong(l.AreaM2), 1),
		RoomType:       l.RoomType,
		Floor:          l.Floor,
		Address:        l.DisplayAddress(),
		Region:         matching.RegionPrefix(l.Address),
		RegionLabel:    l.RegionLabel,
		Lat:            l.Lat,
		Lng:            l.Lng,
	}
}

func toListingCards(listings []domain.Listing) []ListingCardResponse {
	out := make([]ListingCardResponse, len(listings))
	for i, l := range listings {
		out[i] = toListingCard(l)
	}
	return out
}

type ListingDetailsResponse struct {
	ListingCardResponse
	AddressDetail string            `json:"address_detail"`
	Rooms         int               `json:"rooms"`
	Baths         int               `json:"baths"`
	TotalFloor    string            `json:"total_floor"`
	Heating       string            `json:"heating"`
	Direction     string            `json:"direction"`
	Elevator      bool              `json:"elevator"`
	ParkingTotal  int               `json:"parking_total"`
	MoveInDate    string            `json:"move_in_date"`
	MoveInLabel   string            `json:"move_in_label"`
	FeeLabel      string            `json:"fee_label"`
	BuildingType  string            `json:"building_type"`
	Tags          []LifestyleTagDTO `json:"tags"`
	Lifestyle     map[string]bool   `json:"lifestyle"`
}

func toListingDetails(d *domain.ListingDetails) ListingDetailsResponse {
	l := d.Listing
	resp := ListingDetailsResponse{
		ListingCardResponse: toListingCard(l),
		AddressDetail:       l.AddressDetail,
		Rooms:               l.Rooms,
		Baths:               l.Baths,
		TotalFloor:          l.TotalFloor,
		Heating:             l.Heating,
		Direction:           l.Direction,
		Elevator:            l.Elevator,
		ParkingTotal:        l.ParkingTotal,
		MoveInDate:          l.MoveInDate,
		MoveInLabel:         d.MoveInLabel,
		FeeLabel:            d.FeeLabel,
		BuildingType:        l.BuildingType,
		Tags:                toTagDTOs(d.Tags),
		Lifestyle:           map[string]bool(l.Lifestyle),
	}
	resp.PriceLabel = d.PriceLabel
	if resp.Lifestyle == nil {
		resp.Lifestyle = map[string]bool{}
	}
	return resp
}

func toTagDTOs(tags []domain.LifestyleTag) []LifestyleTagDTO {
	out := make([]LifestyleTagDTO, len(tags))
	for i, t := range tags {
		out[i] = LifestyleTagDTO{Key: t.Key, Label: t.Label}
	}
	return out
}

type DistrictGroupResponse struct {
	District string                `json:"district"`
	Count    int                   `json:"count"`
	Listings []ListingCardResponse `json:"listings"`
}

type MarkerResponse struct {
	ListingID int64   `json:"id"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Geohash   string  `json:"geohash"`
}

type SearchResponse struct {
	CriteriaApplied bool                    `json:"criteria_applied"`
	Total           int                     `json:"total"`
	Groups          []DistrictGroupResponse `json:"groups"`
	Markers         []MarkerResponse        `json:"markers"`
}

func toSearchResponse(res *domain.SearchResult) SearchResponse {
	resp := SearchResponse{
		CriteriaApplied: res.CriteriaApplied,
		Total:           len(res.Listings),
		Groups:          make([]DistrictGroupResponse, len(res.Groups)),
		Markers:         make([]MarkerResponse, len(res.Markers)),
	}
	for i, g := range res.Groups {
		resp.Groups[i] = DistrictGroupResponse{District: g.District, Count: len(g.Listings), Listings: toListingCards(g.Listings)}
	}
	for i, m := range res.Markers {
		resp.Markers[i] = MarkerResponse{ListingID: m.ListingID, Lat: m.Lat, Lng: m.Lng, Geohash: m.Geohash}
	}
	return resp
}

type ClusterResponse struct {
	Geohash    string  `json:"geohash"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Count      int     `json:"count"`
	ListingIDs []int64 `json:"listing_ids"`
}

type MarkersResponse struct {
	Precision int               `json:"precision"`
	Clusters  []ClusterResponse `json:"clusters"`
}

type RecommendationResponse struct {
	AIAvailable     bool                           `json:"ai_available"`
	Recommendations []RecommendationDTO            `json:"recommendations"`
	ByRegion        map[string][]RecommendationDTO `json:"by_region"`
	// при AIAvailable - совпавшие объявления, иначе весь отфильтрованный набор
	Listings       []ListingCardResponse `json:"listings"`
	MatchedTotal   int                   `json:"matched_total"`
	FilteredTotal  int                   `json:"filtered_total"`
	CandidatesSent int                   `json:"candidates_sent"`
}

func toRecommendationResponse(o *domain.RecommendationOutcome) RecommendationResponse {
	resp := RecommendationResponse{
		AIAvailable:     o.AIAvailable,
		Recommendations: toRecommendationDTOs(o.Recommendations),
		ByRegion:        make(map[string][]RecommendationDTO, len(o.Result.ByRegion)),
		MatchedTotal:    len(o.Result.Matched),
		FilteredTotal:   len(o.Filtered),
		CandidatesSent:  o.CandidatesSent,
	}
	for k, recs := range o.Result.ByRegion {
		resp.ByRegion[k] = toRecommendationDTOs(recs)
	}
	if o.AIAvailable {
		resp.Listings = toListingCards(o.Result.Matched)
	} else {
		resp.Listings = toListingCards(o.Filtered)
	}
	return resp
}

type RegionCountResponse struct {
	Region string `json:"region"`
	Count  int    `json:"count"`
}

type TagSearchResponse struct {
	Tag        LifestyleTagDTO       `json:"tag"`
	Total      int                   `json:"total"`
	TopRegions []RegionCountResponse `json:"top_regions"`
	Listings   []ListingCardResponse `json:"listings"`
}

func toTagSearchResponse(res *domain.TagSearchResult) TagSearchResponse {
	resp := TagSearchResponse{
		Tag:        LifestyleTagDTO{Key: res.Tag.Key, Label: res.Tag.Label},
		Total:      len(res.Listings),
		TopRegions: make([]RegionCountResponse, len(res.TopRegions)),
		Listings:   toListingCards(res.Listings),
	}
	for i, rc := range res.TopRegions {
		resp.TopRegions[i] = RegionCountResponse{Region: rc.Region, Count: rc.Count}
	}
	return resp
}

type AreaBandResponse struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type DictionariesResponse struct {
	Tags      []LifestyleTagDTO  `json:"tags"`
	AreaBands []AreaBandResponse `json:"area_bands"`
	DealTypes []string           `json:"deal_types"`
}

type AnchorResponse struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

type AnchorResultResponse struct {
	Name   string          `json:"name"`
	OK     bool            `json:"ok"`
	Anchor *AnchorResponse `json:"anchor,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type SessionResponse struct {
	ID              string           `json:"id"`
	CreatedAt       time.Time        `json:"created_at"`
	Anchors         []AnchorResponse `json:"anchors"`
	LastResultCount *int             `json:"last_result_count"`
}

func toSessionResponse(s *domain.SearchSession) SessionResponse {
	anchors := s.Anchors()
	resp := SessionResponse{
		ID:        s.ID.String(),
		CreatedAt: s.CreatedAt,
		Anchors:   make([]AnchorResponse, len(anchors)),
	}
	for i, a := range anchors {
		resp.Anchors[i] = AnchorResponse{Name: a.Name, Lat: a.Lat, Lng: a.Lng}
	}
	if _, listings, ok := s.LastSearch(); ok {
		n := len(listings)
		resp.LastResultCount = &n
	}
	return resp
}

func roundTo(v float64, digits int) float64 {
	p := 1.0
	for i := 0; i < digits; i++ {
		p *= 10
	}
	return float64(int64(v*p+0.5)) / p
}
