package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"matjib-service/internal/contextkeys"
	"matjib-service/internal/core/domain"
	"matjib-service/internal/core/port"

	"github.com/google/uuid"
)

var errEmptyAnchorName = errors.New("anchor name is empty")

type ManageAnchorsUseCase struct {
	sessions port.SessionStorePort
	geocoder port.GeocoderPort
	metrics  port.MetricsPort
	now      func() time.Time
}

func NewManageAnchorsUseCase(sessions port.SessionStorePort, geocoder port.GeocoderPort, metrics port.MetricsPort) *ManageAnchorsUseCase {
	return &ManageAnchorsUseCase{
		sessions: sessions,
		geocoder: geocoder,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Add разрешает каждое название отдельно. Ошибка одной точки не мешает остальным,
// результаты идут в порядке входных имен.
func (uc *ManageAnchorsUseCase) Add(ctx context.Context, sessionID uuid.UUID, names []string) ([]domain.AnchorResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "AddCommuteAnchors",
		"session_id": sessionID.String(),
	})

	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("add anchors: %w", err)
	}
	session.Touch(uc.now())

	results := make([]domain.AnchorResult, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		res := domain.AnchorResult{Name: name}

		switch {
		case name == "":
			res.Err = errEmptyAnchorName
		case session.HasAnchor(name):
			// повторное имя не идет во внешний сервис
			res.Err = domain.ErrDuplicateAnchor
		default:
			anchor, err := uc.geocoder.Resolve(ctx, name)
			if err != nil {
				res.Err = err
				break
			}
			anchor.Name = name
			if err := session.AddAnchor(*anchor); err != nil {
				res.Err = err
				break
			}
			res.Anchor = anchor
		}

		uc.metrics.AnchorResolved(res.Err == nil)
		if res.Err != nil {
			ucLogger.Warn("Commute anchor was not added", port.Fields{"name": name, "error": res.Err.Error()})
		} else {
			ucLogger.Debug("Commute anchor added", port.Fields{"name": name, "lat": res.Anchor.Lat, "lng": res.Anchor.Lng})
		}
		results = append(results, res)
	}

	ucLogger.Info("Commute anchors processed", port.Fields{"requested": len(names), "total": len(session.Anchors())})
	return results, nil
}

func (uc *ManageAnchorsUseCase) Remove(ctx context.Context, sessionID uuid.UUID, name string) error {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("remove anchor: %w", err)
	}
	session.Touch(uc.now())

	if err := session.RemoveAnchor(name); err != nil {
		return fmt.Errorf("remove anchor %q: %w", name, err)
	}

	contextkeys.LoggerFromContext(ctx).Info("Commute anchor removed", port.Fields{
		"use_case":   "RemoveCommuteAnchor",
		"session_id": sessionID.String(),
		"name":       name,
	})
	return nil
}
