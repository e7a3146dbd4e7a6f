package port

import (
	"context"

	"matjib-service/internal/core/domain"
)

// DatasetLoaderPort читает полный набор объявлений из источника (файлы или БД)
type DatasetLoaderPort interface {
	Load(ctx context.Context) (*domain.Dataset, error)
}

// DatasetProviderPort отдает текущий снапшот. Снапшот неизменяем, его можно читать без блокировок.
type DatasetProviderPort interface {
	Current() (*domain.Dataset, error)
}
