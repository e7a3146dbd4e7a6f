// Package snapshot держит текущий датасет и периодически перечитывает его
package snapshot

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"matjib-service/internal/contextkeys"
	"matjib-service/internal/core/domain"
	"matjib-service/internal/core/port"

	"github.com/robfig/cron/v3"
)

const reloadTimeout = 2 * time.Minute

// Store отдает неизменяемый снапшот. Перезагрузка строит новый датасет и подменяет указатель целиком,
// читатели старого снапшота его дочитывают.
type Store struct {
	loader  port.DatasetLoaderPort
	logger  port.LoggerPort
	metrics port.MetricsPort
	current atomic.Pointer[domain.Dataset]

	reloadMu sync.Mutex
	cron     *cron.Cron
}

func NewStore(loader port.DatasetLoaderPort, logger port.LoggerPort, metrics port.MetricsPort) *Store {
	return &Store{
		loader:  loader,
		logger:  logger.WithFields(port.Fields{"component": "DatasetSnapshot"}),
		metrics: metrics,
	}
}

func (s *Store) Current() (*domain.Dataset, error) {
	ds := s.current.Load()
	if ds == nil {
		return nil, domain.ErrDatasetNotLoaded
	}
	return ds, nil
}

// Reload загружает датасет заново. При ошибке остается прежний снапшот.
func (s *Store) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	ctx = contextkeys.ContextWithLogger(ctx, s.logger)
	start := time.Now()

	ds, err := s.loader.Load(ctx)
	if err != nil {
		s.metrics.DatasetReloaded(false, 0)
		s.logger.Error("Dataset reload failed, keeping previous snapshot", err, port.Fields{
			"has_previous": s.current.Load() != nil,
		})
		return fmt.Errorf("reload dataset: %w", err)
	}

	s.current.Store(ds)
	s.metrics.DatasetReloaded(true, len(ds.Listings))

	s.logger.Info("Dataset snapshot swapped", port.Fields{
		"listings":    len(ds.Listings),
		"regions":     len(ds.Regions),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

// StartRefresh ставит перезагрузку по cron-выражению. Пустое выражение - без обновлений.
func (s *Store) StartRefresh(ctx context.Context, schedule string) error {
	if schedule == "" {
		s.logger.Info("Dataset refresh disabled", nil)
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		reloadCtx, cancel := context.WithTimeout(ctx, reloadTimeout)
		defer cancel()
		// ошибка уже залогирована в Reload
		_ = s.Reload(reloadCtx)
	})
	if err != nil {
		return fmt.Errorf("invalid DATASET_REFRESH_CRON %q: %w", schedule, err)
	}

	s.cron = c
	c.Start()
	s.logger.Info("Dataset refresh scheduled", port.Fields{"cron": schedule})
	return nil
}

// Stop останавливает расписание и ждет завершения текущей перезагрузки
func (s *Store) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
