package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"matjib-service/internal/constants"
	"matjib-service/internal/contextkeys"
	"matjib-service/internal/contracts"
	"matjib-service/internal/core/domain"
	"matjib-service/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// messagePublisher - то, что нужно от rabbitmq_producer.Publisher
type messagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// SearchEventsPublisher публикует события поиска в topic-обменник
type SearchEventsPublisher struct {
	producer messagePublisher
	now      func() time.Time
}

func NewSearchEventsPublisher(producer messagePublisher) (*SearchEventsPublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	return &SearchEventsPublisher{producer: producer, now: time.Now}, nil
}

func (a *SearchEventsPublisher) PublishSearchCompleted(ctx context.Context, event domain.SearchCompletedEvent) error {
	return a.publish(ctx, constants.RoutingKeySearchCompleted, contracts.SearchCompletedEventV1, toSearchCompletedMessage(event))
}

func (a *SearchEventsPublisher) PublishRecommendationCompleted(ctx context.Context, event domain.RecommendationCompletedEvent) error {
	return a.publish(ctx, constants.RoutingKeyRecommendationCompleted, contracts.RecommendationCompletedEventV1, toRecommendationCompletedMessage(event))
}

// publish сверяет тело со схемой события до отправки, чтобы брокер не получил битый контракт
func (a *SearchEventsPublisher) publish(ctx context.Context, routingKey, schemaKey string, payload any) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "SearchEventsPublisher",
		"routing_key": routingKey,
	})

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to marshal %s: %w", routingKey, err)
	}
	if err := contracts.Validate(schemaKey, body); err != nil {
		adapterLogger.Error("Event does not match its schema, not publishing", err, nil)
		return fmt.Errorf("rabbitmq adapter: %s: %w", routingKey, err)
	}

	msg := buildPublishing(ctx, body, a.now())

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish %s: %w", routingKey, err)
	}

	adapterLogger.Debug("Event published", port.Fields{"bytes": len(body)})
	return nil
}

func buildPublishing(ctx context.Context, body []byte, now time.Time) amqp.Publishing {
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
		Headers:      amqp.Table{},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}
	return msg
}

// NoopEventsPublisher используется, когда RABBITMQ_ENABLED=false
type NoopEventsPublisher struct{}

func (NoopEventsPublisher) PublishSearchCompleted(context.Context, domain.SearchCompletedEvent) error {
	return nil
}

func (NoopEventsPublisher) PublishRecommendationCompleted(context.Context, domain.RecommendationCompletedEvent) error {
	return nil
}
