package domain

import "errors"

var (
	ErrListingNotFound  = errors.New("listing not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrDuplicateAnchor  = errors.New("commute anchor with this name already exists")
	ErrAnchorNotFound   = errors.New("commute anchor not found")
	ErrPlaceNotFound    = errors.New("place could not be resolved to coordinates")
	ErrUnknownTag       = errors.New("unknown lifestyle tag")
	ErrRelayUnavailable = errors.New("recommendation relay unavailable")
	ErrDatasetNotLoaded = errors.New("dataset is not loaded")
)
