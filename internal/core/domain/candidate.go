package domain

// Candidate - урезанная проекция объявления для внешнего вызова рекомендаций
type Candidate struct {
	ID             int64
	Address        string
	RegionID       string
	RegionLabel    string
	RegionProfile  map[string]any
	Deposit        int64
	Rent           int64
	MaintenanceFee int64
	Lifestyle      LifestyleProfile
	AvgCommuteDist float64
}
