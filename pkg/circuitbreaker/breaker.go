// Package circuitbreaker собирает gobreaker с настройками для внешних HTTP API
package circuitbreaker

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// ErrOpen возвращается, пока breaker разомкнут
var ErrOpen = gobreaker.ErrOpenState

type Config struct {
	Name string
	// подряд идущих сбоев до размыкания
	FailureThreshold uint32
	// сколько breaker остается разомкнутым
	OpenTimeout time.Duration
	// пробных запросов в полуоткрытом состоянии
	HalfOpenRequests uint32

	OnStateChange func(name string, from, to string)
}

func (c Config) withDefaults() Config {
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
	if c.HalfOpenRequests == 0 {
		c.HalfOpenRequests = 1
	}
	return c
}

// New создает breaker. Отмена запроса клиентом не считается сбоем внешнего сервиса.
func New[T any](cfg Config) *gobreaker.CircuitBreaker[T] {
	cfg = cfg.withDefaults()

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	if cfg.OnStateChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			cfg.OnStateChange(name, from.String(), to.String())
		}
	}
	return gobreaker.NewCircuitBreaker[T](settings)
}

// IsOpen - ошибка означает, что запрос не ушел из-за разомкнутого breaker
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
