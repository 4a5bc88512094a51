// Package resilience guards remote stores so an unreachable backend fails
// fast and uploads go straight to the local fallback.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/Jabramco/memebase/application/ports"
	appErrors "github.com/Jabramco/memebase/pkg/errors"
)

// BreakerConfig configures the circuit breaker around a remote store
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

// DefaultBreakerConfig returns the breaker settings used for image uploads
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		MinRequests:      3,
		FailureThreshold: 0.6,
	}
}

func newBreaker(cfg BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// Rejected input says nothing about the backend's health
			return err == nil || appErrors.IsValidation(err) || errors.Is(err, context.Canceled)
		},
	})
}

// BreakerObjectStore wraps an ObjectStore with a circuit breaker
type BreakerObjectStore struct {
	next    ports.ObjectStore
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerObjectStore creates a new BreakerObjectStore
func NewBreakerObjectStore(next ports.ObjectStore, cfg BreakerConfig, logger *zap.Logger) *BreakerObjectStore {
	return &BreakerObjectStore{
		next:    next,
		breaker: newBreaker(cfg, logger),
	}
}

// State reports the breaker state
func (s *BreakerObjectStore) State() gobreaker.State {
	return s.breaker.State()
}

// PutImage uploads through the breaker
func (s *BreakerObjectStore) PutImage(ctx context.Context, data []byte, path, contentType string) (string, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.next.PutImage(ctx, data, path, contentType)
	})
	if err != nil {
		return "", translate(s.breaker.Name(), err)
	}
	return result.(string), nil
}

// DeleteImage deletes through the breaker
func (s *BreakerObjectStore) DeleteImage(ctx context.Context, url string) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.next.DeleteImage(ctx, url)
	})
	return translate(s.breaker.Name(), err)
}

func translate(name string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return appErrors.NewUnavailableError(name).WithCause(err)
	}
	return err
}
