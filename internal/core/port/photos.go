package port

import (
	"context"

	"matjib-service/internal/core/domain"
)

// PhotoSearchPort ищет стоковые фото интерьеров. Возвращает сырой пул без фильтрации.
type PhotoSearchPort interface {
	SearchPhotos(ctx context.Context) ([]domain.Photo, error)
}
