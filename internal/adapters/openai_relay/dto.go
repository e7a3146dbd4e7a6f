package openai_relay

import "matjib-service/internal/core/domain"

// --- запрос к модели ---

type lifestyleTag struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type userRequirements struct {
	RentType        string         `json:"rentType"`
	DepositMin      *int64         `json:"depositMin"`
	DepositMax      *int64         `json:"depositMax"`
	RentMin         *int64         `json:"rentMin"`
	RentMax         *int64         `json:"rentMax"`
	IncludeFee      bool           `json:"includeFee"`
	Area            []string       `json:"area"`
	CommuteList     []string       `json:"commuteList"`
	ActiveLifestyle []lifestyleTag `json:"activeLifestyle"`
}

type candidate struct {
	ID             int64           `json:"id"`
	Address        string          `json:"address"`
	RegionID       string          `json:"region_id,omitempty"`
	RegionLabel    string          `json:"region_label,omitempty"`
	RegionProfile  map[string]any  `json:"region_profile,omitempty"`
	Deposit        int64           `json:"deposit"`
	Rent           int64           `json:"rent"`
	MaintenanceFee int64           `json:"maintenance_fee"`
	Lifestyle      map[string]bool `json:"lifestyle"`
	AvgCommuteDist float64         `json:"avgCommuteDist"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

// --- ответ ---

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

type recommendationsContent struct {
	Recommendations []struct {
		Keyword string `json:"keyword"`
		Reason  string `json:"reason"`
	} `json:"recommendations"`
	Error any `json:"error"`
}

func toUserRequirements(u domain.UserRequirements) userRequirements {
	out := userRequirements{
		RentType:        u.DealType,
		DepositMin:      u.DepositMin,
		DepositMax:      u.DepositMax,
		RentMin:         u.RentMin,
		RentMax:         u.RentMax,
		IncludeFee:      u.IncludeFee,
		Area:            u.AreaBands,
		CommuteList:     u.CommuteNames,
		ActiveLifestyle: make([]lifestyleTag, len(u.ActiveLifestyle)),
	}
	for i, t := range u.ActiveLifestyle {
		out.ActiveLifestyle[i] = lifestyleTag{Key: t.Key, Label: t.Label}
	}
	if out.Area == nil {
		out.Area = []string{}
	}
	if out.CommuteList == nil {
		out.CommuteList = []string{}
	}
	return out
}

func toCandidates(cs []domain.Candidate) []candidate {
	out := make([]candidate, len(cs))
	for i, c := range cs {
		out[i] = candidate{
			ID:             c.ID,
			Address:        c.Address,
			RegionID:       c.RegionID,
			RegionLabel:    c.RegionLabel,
			RegionProfile:  c.RegionProfile,
			Deposit:        c.Deposit,
			Rent:           c.Rent,
			MaintenanceFee: c.MaintenanceFee,
			Lifestyle:      map[string]bool(c.Lifestyle),
			AvgCommuteDist: c.AvgCommuteDist,
		}
		if out[i].Lifestyle == nil {
			out[i].Lifestyle = map[string]bool{}
		}
	}
	return out
}
