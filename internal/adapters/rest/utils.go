package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"matjib-service/internal/core/domain"
	"matjib-service/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// WriteJSONError отправляет JSON-ответ с полем "error" и заданным статусом
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, map[string]string{"error": message})
}

// RespondWithJSON отправляет JSON-ответ
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(response)
}

// writeUseCaseError переводит доменные ошибки в HTTP-статусы
func writeUseCaseError(w http.ResponseWriter, logger port.LoggerPort, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		WriteJSONError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, domain.ErrListingNotFound):
		WriteJSONError(w, http.StatusNotFound, "Listing not found")
	case errors.Is(err, domain.ErrAnchorNotFound):
		WriteJSONError(w, http.StatusNotFound, "Commute anchor not found")
	case errors.Is(err, domain.ErrDuplicateAnchor):
		WriteJSONError(w, http.StatusConflict, "Commute anchor already exists")
	case errors.Is(err, domain.ErrUnknownTag):
		WriteJSONError(w, http.StatusBadRequest, "Unknown lifestyle tag")
	case errors.Is(err, domain.ErrRelayUnavailable):
		logger.Warn("Recommendation relay unavailable", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadGateway, "Recommendation service unavailable")
	case errors.Is(err, domain.ErrDatasetNotLoaded):
		logger.Error("Dataset is not loaded", err, nil)
		WriteJSONError(w, http.StatusServiceUnavailable, "Dataset is not loaded yet")
	default:
		logger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func sessionIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	return id, err == nil
}

func listingIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "listingID"), 10, 64)
	return id, err == nil
}

// GetIntOrDefault читает целый query-параметр; пустое или битое значение -> значение по умолчанию
func GetIntOrDefault(r *http.Request, key string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
