package service

import (
	"errors"
	"time"

	"dining/internal/metrics"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// breaker guards an upstream HTTP API. It opens when at least 60% of at
// least 10 requests in a one minute window failed, and probes again after
// two minutes.
type breaker struct {
	cb      *gobreaker.CircuitBreaker[[]byte]
	name    string
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func newBreaker(name string, m *metrics.Metrics, logger zerolog.Logger) *breaker {
	b := &breaker{name: name, metrics: m, logger: logger}

	m.CircuitBreakerState.WithLabelValues(name).Set(0)

	b.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logger.Warn().
					Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("opening circuit")
			}
			return shouldTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state transition")
			m.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return b
}

// execute runs fn through the breaker and records the outcome
func (b *breaker) execute(fn func() ([]byte, error)) ([]byte, error) {
	body, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			b.metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		} else {
			b.metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return nil, err
	}

	b.metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return body, nil
}

func (b *breaker) state() gobreaker.State {
	return b.cb.State()
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
