package constants

// Обменник событий поиска
const (
	ExchangeMatjibEvents = "matjib_events"
	ExchangeTypeTopic    = "topic"
)

// Ключи маршрутизации
const (
	RoutingKeySearchCompleted         = "search.completed"
	RoutingKeyRecommendationCompleted = "recommendation.completed"
	RoutingKeyDatasetUpdated          = "dataset.updated"
)

// Очередь команд на перезагрузку датасета
const (
	QueueDatasetReload       = "matjib_dataset_reload"
	ConsumerTagDatasetReload = "matjib-dataset-reload"
)
