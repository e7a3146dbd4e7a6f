package rest

import (
	"net/http"

	"matjib-service/internal/contextkeys"
	"matjib-service/internal/core/port"
	"matjib-service/internal/core/port/usecases_port"
)

type RelayHandlers struct {
	relayUC usecases_port.RelayRecommendationsUseCase
}

func NewRelayHandlers(relayUC usecases_port.RelayRecommendationsUseCase) *RelayHandlers {
	return &RelayHandlers{relayUC: relayUC}
}

// Relay обрабатывает POST /api/v1/relay/recommendations.
// Клиент сам прислал кандидатов, сервис только ходит в модель.
func (h *RelayHandlers) Relay(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "Relay"})

	var body RelayRequestDTO
	if err := decodeJSON(w, r, &body, true); err != nil {
		logger.Warn("Failed to decode relay request", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validateStruct(body); err != nil {
		logger.Debug("Relay request rejected", port.Fields{"reason": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Missing data")
		return
	}

	recs, err := h.relayUC.Execute(r.Context(), body.toDomain())
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, RelayResponseDTO{Recommendations: toRecommendationDTOs(recs)})
}
