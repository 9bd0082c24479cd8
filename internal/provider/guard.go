package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/macrointel/macrointel/internal/regime"
)

// GuardConfig tunes the protective wrapper around a provider.
type GuardConfig struct {
	MaxRequests         uint32        `yaml:"max_requests"`
	Interval            time.Duration `yaml:"interval"`
	Timeout             time.Duration `yaml:"timeout"`
	ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
	RPS                 float64       `yaml:"rps"`
	Burst               int           `yaml:"burst"`
	MaxRetries          uint64        `yaml:"max_retries"`
	InitialBackoff      time.Duration `yaml:"initial_backoff"`
}

// DefaultGuardConfig returns the standard provider protection settings.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		MaxRequests:         3,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
		RPS:                 2,
		Burst:               4,
		MaxRetries:          3,
		InitialBackoff:      250 * time.Millisecond,
	}
}

// Guard wraps a provider with a circuit breaker, a token-bucket rate
// limit and bounded retries. When the guard gives up, the cycle
// proceeds with that provider's readings absent.
type Guard struct {
	inner    Provider
	breaker  *gobreaker.CircuitBreaker
	limiter  *rate.Limiter
	config   GuardConfig
	reporter ErrorReporter
	logger   zerolog.Logger
}

// NewGuard wraps a provider. reporter may be nil.
func NewGuard(inner Provider, config GuardConfig, reporter ErrorReporter, logger zerolog.Logger) *Guard {
	g := &Guard{
		inner:    inner,
		limiter:  rate.NewLimiter(rate.Limit(config.RPS), config.Burst),
		config:   config,
		reporter: reporter,
		logger:   logger.With().Str("provider", inner.Name()).Logger(),
	}

	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.logger.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("provider circuit state changed")
		},
	})

	return g
}

// Name returns the wrapped provider's name.
func (g *Guard) Name() string {
	return g.inner.Name()
}

// Fetch runs the wrapped fetch behind the rate limit and breaker,
// retrying transient failures with exponential backoff.
func (g *Guard) Fetch(ctx context.Context) (regime.ReadingSet, error) {
	var readings regime.ReadingSet

	attempt := func() error {
		if err := g.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limit wait: %w", err))
		}

		result, err := g.breaker.Execute(func() (interface{}, error) {
			return g.inner.Fetch(ctx)
		})
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}

		readings = result.(regime.ReadingSet)
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(g.config.InitialBackoff),
		), g.config.MaxRetries),
		ctx,
	)

	if err := backoff.Retry(attempt, policy); err != nil {
		if g.reporter != nil {
			g.reporter.RecordProviderError(g.inner.Name(), classify(err))
		}
		g.logger.Warn().Err(err).Msg("provider fetch failed, readings absent this cycle")
		return nil, err
	}

	return readings, nil
}

func classify(err error) string {
	switch {
	case err == gobreaker.ErrOpenState:
		return "circuit_open"
	case err == gobreaker.ErrTooManyRequests:
		return "throttled"
	default:
		return "fetch_error"
	}
}
