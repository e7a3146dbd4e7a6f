package rabbitmq_common

import (
	"fmt"
	"strings"
)

// Config - общая часть конфигурации издателя
type Config struct {
	URL string
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("rabbitmq: URL is required")
	}
	if !strings.HasPrefix(c.URL, "amqp://") && !strings.HasPrefix(c.URL, "amqps://") {
		return fmt.Errorf("rabbitmq: URL must start with amqp:// or amqps://")
	}
	return nil
}

// Logger - логгер pkg-уровня с парами ключ-значение, сервис подставляет свой адаптер
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(err error, msg string, keysAndValues ...interface{})
}

// NoopLogger подставляется, когда логгер в конфигурации не задан
type NoopLogger struct{}

func (NoopLogger) Debug(string, ...interface{})        {}
func (NoopLogger) Info(string, ...interface{})         {}
func (NoopLogger) Warn(string, ...interface{})         {}
func (NoopLogger) Error(error, string, ...interface{}) {}

func NewNoopLogger() Logger {
	return NoopLogger{}
}
