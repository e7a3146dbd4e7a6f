package rabbitmq_consumer

import (
	"context"
	"fmt"
	"sync"

	"matjib-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler обрабатывает одно сообщение. nil - ack, ошибка - nack.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

// ConsumerConfig конфигурация потребителя
type ConsumerConfig struct {
	rabbitmq_common.Config

	QueueName       string // если пусто, имя генерирует сервер
	DurableQueue    bool
	AutoDeleteQueue bool
	QueueArgs       amqp.Table

	// Привязка к обменнику, пустое имя - без привязки
	ExchangeName    string
	ExchangeType    string
	DurableExchange bool
	RoutingKey      string

	PrefetchCount int
	ConsumerTag   string

	// вернуть сообщение в очередь при ошибке обработчика
	RequeueOnError bool

	Logger rabbitmq_common.Logger
}

// Consumer читает очередь и обрабатывает сообщения по одному
type Consumer struct {
	config     ConsumerConfig
	connection *amqp.Connection
	channel    *amqp.Channel
	queueName  string
	handler    MessageHandler
	wg         sync.WaitGroup
	mu         sync.Mutex

	Logger rabbitmq_common.Logger
}

// NewConsumer объявляет очередь, привязывает ее к обменнику и выставляет QoS
func NewConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*Consumer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("consumer: invalid base config: %w", err)
	}
	if handler == nil {
		return nil, fmt.Errorf("consumer: message handler is required")
	}
	if cfg.ExchangeName != "" && cfg.ExchangeType == "" {
		return nil, fmt.Errorf("consumer: exchange type is required when binding to an exchange")
	}
	if connManager == nil {
		return nil, fmt.Errorf("consumer: connection manager cannot be nil")
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("consumer: failed to get channel from manager: %w", err)
	}

	c := &Consumer{
		config:     cfg,
		connection: conn,
		channel:    ch,
		handler:    handler,
		Logger:     logger,
	}
	if err := c.setup(); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("consumer: setup failed: %w", err)
	}
	return c, nil
}

func (c *Consumer) setup() error {
	if c.config.PrefetchCount > 0 {
		c.Logger.Debug("Setting QoS", "prefetch_count", c.config.PrefetchCount)
		if err := c.channel.Qos(c.config.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	c.Logger.Debug("Declaring queue", "name", c.config.QueueName, "durable", c.config.DurableQueue)
	q, err := c.channel.QueueDeclare(
		c.config.QueueName,
		c.config.DurableQueue,
		c.config.AutoDeleteQueue,
		false, // exclusive
		false, // no-wait
		c.config.QueueArgs,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue '%s': %w", c.config.QueueName, err)
	}
	c.queueName = q.Name

	if c.config.ExchangeName == "" {
		return nil
	}

	err = c.channel.ExchangeDeclare(
		c.config.ExchangeName,
		c.config.ExchangeType,
		c.config.DurableExchange,
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange '%s': %w", c.config.ExchangeName, err)
	}

	c.Logger.Debug("Binding queue to exchange",
		"queue_name", c.queueName,
		"exchange_name", c.config.ExchangeName,
		"routing_key", c.config.RoutingKey,
	)
	if err := c.channel.QueueBind(c.queueName, c.config.RoutingKey, c.config.ExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue '%s' to exchange '%s': %w", c.queueName, c.config.ExchangeName, err)
	}
	return nil
}

// StartConsuming блокируется до отмены ctx или закрытия соединения
func (c *Consumer) StartConsuming(ctx context.Context) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil || c.connection == nil || c.connection.IsClosed() {
		return fmt.Errorf("consumer: not connected")
	}

	msgs, err := ch.Consume(
		c.queueName,
		c.config.ConsumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("consumer %s: failed to register on queue '%s': %w", c.config.ConsumerTag, c.queueName, err)
	}

	c.Logger.Info("[*] Waiting for messages on queue", "queue_name", c.queueName)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					c.Logger.Info("Deliveries channel closed by RabbitMQ", "consumer_tag", c.config.ConsumerTag)
					return
				}
				c.handle(ctx, d)
			}
		}
	}()

	notifyClose := make(chan *amqp.Error, 1)
	c.connection.NotifyClose(notifyClose)

	select {
	case <-ctx.Done():
		c.Logger.Info("Context cancelled. Shutting down consumer.", "consumer_tag", c.config.ConsumerTag)
		return nil
	case amqpErr := <-notifyClose:
		if amqpErr == nil {
			return nil
		}
		c.Logger.Error(amqpErr, "Connection closed for consumer", "consumer_tag", c.config.ConsumerTag)
		return amqpErr
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	if err := c.handler(ctx, d); err != nil {
		c.Logger.Error(err, "Handler error for message",
			"consumer_tag", c.config.ConsumerTag,
			"delivery_tag", d.DeliveryTag,
			"requeue", c.config.RequeueOnError,
		)
		_ = d.Nack(false, c.config.RequeueOnError)
		return
	}
	_ = d.Ack(false)
	c.Logger.Debug("[+] Message Ack'd", "delivery_tag", d.DeliveryTag)
}

// Close вызывается после отмены ctx из StartConsuming: ждет текущий обработчик и закрывает канал.
// Соединением владеет ConnectionManager.
func (c *Consumer) Close() error {
	c.wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil {
		return nil
	}
	err := c.channel.Close()
	c.channel = nil
	if err != nil {
		c.Logger.Error(err, "Error closing channel")
		return err
	}
	c.Logger.Info("Consumer closed")
	return nil
}
