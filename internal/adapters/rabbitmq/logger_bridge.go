package rabbitmq

import (
	"matjib-service/internal/core/port"
	"matjib-service/pkg/rabbitmq/rabbitmq_common"
)

// LoggerBridge отдает LoggerPort в pkg/rabbitmq, где логгер принимает пары ключ-значение
type LoggerBridge struct {
	logger port.LoggerPort
}

func NewLoggerBridge(logger port.LoggerPort) rabbitmq_common.Logger {
	return &LoggerBridge{logger: logger}
}

// pairsToFields: ключ без значения или не-строковый ключ отбрасывается
func pairsToFields(kv []interface{}) port.Fields {
	if len(kv) == 0 {
		return nil
	}
	fields := make(port.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			fields[key] = kv[i+1]
		}
	}
	return fields
}

func (b *LoggerBridge) Debug(msg string, kv ...interface{}) { b.logger.Debug(msg, pairsToFields(kv)) }
func (b *LoggerBridge) Info(msg string, kv ...interface{})  { b.logger.Info(msg, pairsToFields(kv)) }
func (b *LoggerBridge) Warn(msg string, kv ...interface{})  { b.logger.Warn(msg, pairsToFields(kv)) }

func (b *LoggerBridge) Error(err error, msg string, kv ...interface{}) {
	b.logger.Error(msg, err, pairsToFields(kv))
}
