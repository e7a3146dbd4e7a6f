package domain

// Recommendation - ответ модели: ключевое слово района и объяснение
type Recommendation struct {
	Keyword string
	Reason  string
}

// ReconcileResult - объявления, попавшие под рекомендации, и причины по ключевым словам
type ReconcileResult struct {
	Matched  []Listing
	ByRegion map[string][]Recommendation
}

// UserRequirements - то, что пользователь выбрал в форме, в виде для промпта
type UserRequirements struct {
	DealType        string
	DepositMin      *int64
	DepositMax      *int64
	RentMin         *int64
	RentMax         *int64
	IncludeFee      bool
	AreaBands       []string
	CommuteNames    []string
	ActiveLifestyle []LifestyleTag
}

// RecommendationRequest - полный запрос к реле рекомендаций
type RecommendationRequest struct {
	UserReq        UserRequirements
	TopCandidates  []Candidate
	RegionProfiles map[string]map[string]any // label -> profile
}

// RecommendationOutcome - результат сценария рекомендации с признаком деградации
type RecommendationOutcome struct {
	AIAvailable     bool
	Recommendations []Recommendation
	Result          ReconcileResult
	Filtered        []Listing
	CandidatesSent  int
}
