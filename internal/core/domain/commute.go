package domain

// CommuteAnchor - именованная точка, до которой считается среднее расстояние
type CommuteAnchor struct {
	Name string
	Lat  float64
	Lng  float64
}

// AnchorResult - итог добавления одной точки; ошибка одной точки не мешает остальным
type AnchorResult struct {
	Name   string
	Anchor *CommuteAnchor
	Err    error
}
