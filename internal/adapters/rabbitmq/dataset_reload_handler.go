package rabbitmq

import (
	"context"
	"fmt"

	"matjib-service/internal/contextkeys"
	"matjib-service/internal/contracts"
	"matjib-service/internal/core/port"
	"matjib-service/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type datasetReloader interface {
	Reload(ctx context.Context) error
}

// NewDatasetReloadHandler перезагружает снапшот по событию dataset.updated.
// Невалидное сообщение отбрасывается без перезагрузки.
func NewDatasetReloadHandler(reloader datasetReloader, logger port.LoggerPort) rabbitmq_consumer.MessageHandler {
	return func(ctx context.Context, d amqp.Delivery) error {
		traceID, _ := d.Headers["x-trace-id"].(string)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		handlerLogger := logger.WithFields(port.Fields{
			"component": "DatasetReloadHandler",
			"trace_id":  traceID,
		})

		if err := contracts.Validate(contracts.DatasetUpdatedEventV1, d.Body); err != nil {
			handlerLogger.Warn("Dropping invalid dataset.updated message", port.Fields{"error": err.Error()})
			return nil
		}

		ctx = contextkeys.ContextWithTraceID(ctx, traceID)
		ctx = contextkeys.ContextWithLogger(ctx, handlerLogger)

		handlerLogger.Info("Dataset update announced, reloading", nil)
		if err := reloader.Reload(ctx); err != nil {
			return fmt.Errorf("dataset reload: %w", err)
		}
		return nil
	}
}
