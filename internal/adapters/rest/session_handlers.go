package rest

import (
	"net/http"
	"net/url"
	"strings"

	"matjib-service/internal/contextkeys"
	"matjib-service/internal/core/domain"
	"matjib-service/internal/core/port"
	"matjib-service/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
)

const defaultMarkerPrecision = 5

type SessionHandlers struct {
	sessionsUC  usecases_port.SessionsUseCase
	anchorsUC   usecases_port.ManageAnchorsUseCase
	searchUC    usecases_port.SearchListingsUseCase
	markersUC   usecases_port.SessionMarkersUseCase
	recommendUC usecases_port.RecommendNeighborhoodsUseCase
}

func NewSessionHandlers(
	sessionsUC usecases_port.SessionsUseCase,
	anchorsUC usecases_port.ManageAnchorsUseCase,
	searchUC usecases_port.SearchListingsUseCase,
	markersUC usecases_port.SessionMarkersUseCase,
	recommendUC usecases_port.RecommendNeighborhoodsUseCase,
) *SessionHandlers {
	return &SessionHandlers{
		sessionsUC:  sessionsUC,
		anchorsUC:   anchorsUC,
		searchUC:    searchUC,
		markersUC:   markersUC,
		recommendUC: recommendUC,
	}
}

// CreateSession обрабатывает POST /api/v1/sessions
func (h *SessionHandlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateSession"})

	session, err := h.sessionsUC.Create(r.Context())
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, toSessionResponse(session))
}

// GetSession обрабатывает GET /api/v1/sessions/{sessionID}
func (h *SessionHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetSession"})

	id, ok := sessionIDParam(r)
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	session, err := h.sessionsUC.Get(r.Context(), id)
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toSessionResponse(session))
}

// AddAnchors обрабатывает POST /api/v1/sessions/{sessionID}/anchors.
// Ответ 200 даже если часть точек не добавилась: итог по каждой точке в теле.
func (h *SessionHandlers) AddAnchors(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "AddAnchors"})

	id, ok := sessionIDParam(r)
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	var body AddAnchorsRequestDTO
	if err := decodeJSON(w, r, &body, false); err != nil {
		logger.Warn("Failed to decode anchors request", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validateStruct(body); err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.anchorsUC.Add(r.Context(), id, body.Names)
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}

	resp := make([]AnchorResultResponse, len(results))
	for i, res := range results {
		resp[i] = AnchorResultResponse{Name: res.Name, OK: res.Err == nil}
		if res.Err != nil {
			resp[i].Error = res.Err.Error()
			continue
		}
		resp[i].Anchor = &AnchorResponse{Name: res.Anchor.Name, Lat: res.Anchor.Lat, Lng: res.Anchor.Lng}
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

// RemoveAnchor обрабатывает DELETE /api/v1/sessions/{sessionID}/anchors/{name}
func (h *SessionHandlers) RemoveAnchor(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RemoveAnchor"})

	id, ok := sessionIDParam(r)
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Invalid session id")
		return
	}
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || strings.TrimSpace(name) == "" {
		WriteJSONError(w, http.StatusBadRequest, "Invalid anchor name")
		return
	}

	if err := h.anchorsUC.Remove(r.Context(), id, strings.TrimSpace(name)); err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search обрабатывает POST /api/v1/sessions/{sessionID}/search
func (h *SessionHandlers) Search(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "Search"})

	id, ok := sessionIDParam(r)
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	// пустое тело - поиск без ограничений
	var body SearchRequestDTO
	if err := decodeJSON(w, r, &body, true); err != nil {
		logger.Warn("Failed to decode search criteria", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.searchUC.Execute(r.Context(), id, body.toCriteria())
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toSearchResponse(res))
}

// Markers обрабатывает GET /api/v1/sessions/{sessionID}/markers?precision=N
func (h *SessionHandlers) Markers(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "Markers"})

	id, ok := sessionIDParam(r)
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Invalid session id")
		return
	}
	precision := GetIntOrDefault(r, "precision", defaultMarkerPrecision)

	clusters, err := h.markersUC.Execute(r.Context(), id, precision)
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}

	resp := MarkersResponse{Precision: precision, Clusters: make([]ClusterResponse, len(clusters))}
	for i, c := range clusters {
		resp.Clusters[i] = ClusterResponse{Geohash: c.Geohash, Lat: c.Lat, Lng: c.Lng, Count: c.Count, ListingIDs: c.ListingIDs}
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

// Recommend обрабатывает POST /api/v1/sessions/{sessionID}/recommendations.
// Без тела берутся критерии последнего поиска.
func (h *SessionHandlers) Recommend(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "Recommend"})

	id, ok := sessionIDParam(r)
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	var body *SearchRequestDTO
	if err := decodeJSON(w, r, &body, true); err != nil {
		logger.Warn("Failed to decode recommendation criteria", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	var criteria *domain.FilterCriteria
	if body != nil {
		c := body.toCriteria()
		criteria = &c
	}

	outcome, err := h.recommendUC.Execute(r.Context(), id, criteria)
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}

	logger.Info("Recommendation served", port.Fields{
		"ai_available":    outcome.AIAvailable,
		"candidates_sent": outcome.CandidatesSent,
	})
	RespondWithJSON(w, http.StatusOK, toRecommendationResponse(outcome))
}
