package rest

import (
	"net/http"
	"strings"

	"matjib-service/internal/contextkeys"
	"matjib-service/internal/core/port"
	"matjib-service/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
)

type ListingHandlers struct {
	detailsUC      usecases_port.GetListingDetailsUseCase
	photosUC       usecases_port.GetListingPhotosUseCase
	byTagUC        usecases_port.SearchByTagUseCase
	dictionariesUC usecases_port.GetDictionariesUseCase
}

func NewListingHandlers(
	detailsUC usecases_port.GetListingDetailsUseCase,
	photosUC usecases_port.GetListingPhotosUseCase,
	byTagUC usecases_port.SearchByTagUseCase,
	dictionariesUC usecases_port.GetDictionariesUseCase,
) *ListingHandlers {
	return &ListingHandlers{
		detailsUC:      detailsUC,
		photosUC:       photosUC,
		byTagUC:        byTagUC,
		dictionariesUC: dictionariesUC,
	}
}

// GetDictionaries обрабатывает GET /api/v1/dictionaries
func (h *ListingHandlers) GetDictionaries(w http.ResponseWriter, r *http.Request) {
	dicts := h.dictionariesUC.Execute(r.Context())

	resp := DictionariesResponse{
		Tags:      toTagDTOs(dicts.Tags),
		AreaBands: make([]AreaBandResponse, len(dicts.AreaBands)),
		DealTypes: dicts.DealTypes,
	}
	for i, b := range dicts.AreaBands {
		resp.AreaBands[i] = AreaBandResponse{Code: string(b.Band), Label: b.Label}
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

// GetListingDetails обрабатывает GET /api/v1/listings/{listingID}
func (h *ListingHandlers) GetListingDetails(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetListingDetails"})

	id, ok := listingIDParam(r)
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Invalid listing id")
		return
	}

	details, err := h.detailsUC.Execute(r.Context(), id)
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toListingDetails(details))
}

// GetListingPhotos обрабатывает GET /api/v1/listings/{listingID}/photos.
// Нечисловой id превращается в 1, ответ всегда массив.
func (h *ListingHandlers) GetListingPhotos(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetListingPhotos"})

	id, ok := listingIDParam(r)
	if !ok || id == 0 {
		id = 1
	}

	urls, err := h.photosUC.Execute(r.Context(), id)
	if err != nil {
		logger.Warn("Photo lookup failed", port.Fields{"error": err.Error(), "listing_id": id})
		urls = nil
	}
	if urls == nil {
		urls = []string{}
	}
	RespondWithJSON(w, http.StatusOK, urls)
}

// SearchByTag обрабатывает GET /api/v1/tags/{tag}/listings
func (h *ListingHandlers) SearchByTag(w http.ResponseWriter, r *http.Request) {
	tag := strings.TrimSpace(chi.URLParam(r, "tag"))
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler": "SearchByTag",
		"tag":     tag,
	})
	if tag == "" {
		WriteJSONError(w, http.StatusBadRequest, "Tag is required")
		return
	}

	res, err := h.byTagUC.Execute(r.Context(), tag)
	if err != nil {
		writeUseCaseError(w, logger, err)
		return
	}

	logger.Debug("Tag search finished", port.Fields{"found": len(res.Listings), "regions": len(res.TopRegions)})
	RespondWithJSON(w, http.StatusOK, toTagSearchResponse(res))
}
