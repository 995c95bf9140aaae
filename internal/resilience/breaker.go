// Package resilience guards the remote analyzer with a circuit breaker so a
// flapping upstream stops being hammered. Calls are never retried; a failed
// analysis surfaces immediately and the user decides whether to run it again.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/rinomina/facile/internal/core/domain"
	"github.com/rinomina/facile/internal/core/ports"
)

type Config struct {
	MinRequests      uint32
	FailureRatio     float64
	OpenTimeout      time.Duration
	HalfOpenMaxCalls uint32
}

func DefaultConfig() Config {
	return Config{
		MinRequests:      5,
		FailureRatio:     0.5,
		OpenTimeout:      30 * time.Second,
		HalfOpenMaxCalls: 2,
	}
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.MinRequests == 0 {
		out.MinRequests = def.MinRequests
	}
	if out.FailureRatio <= 0 || out.FailureRatio > 1 {
		out.FailureRatio = def.FailureRatio
	}
	if out.OpenTimeout <= 0 {
		out.OpenTimeout = def.OpenTimeout
	}
	if out.HalfOpenMaxCalls == 0 {
		out.HalfOpenMaxCalls = def.HalfOpenMaxCalls
	}
	return out
}

// GuardedAnalyzer wraps an Analyzer with a shared circuit breaker. Only
// upstream trouble (transport failures, empty responses) counts against the
// breaker; local conditions like a missing key or a vanished file pass
// through without recording a failure.
type GuardedAnalyzer struct {
	inner   ports.Analyzer
	breaker *gobreaker.CircuitBreaker[string]
}

func NewGuardedAnalyzer(inner ports.Analyzer, cfg Config, log *slog.Logger) *GuardedAnalyzer {
	cfg = cfg.normalize()
	if log == nil {
		log = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:        "gemini_analyze",
		MaxRequests: cfg.HalfOpenMaxCalls,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return !domain.IsKind(err, domain.ErrTransport) && !domain.IsKind(err, domain.ErrEmptyResponse)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
		},
	}

	return &GuardedAnalyzer{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
	}
}

func (g *GuardedAnalyzer) AnalyzeFile(ctx context.Context, path string) (string, error) {
	return g.execute(func() (string, error) {
		return g.inner.AnalyzeFile(ctx, path)
	})
}

func (g *GuardedAnalyzer) AnalyzeText(ctx context.Context, filename, text string) (string, error) {
	return g.execute(func() (string, error) {
		return g.inner.AnalyzeText(ctx, filename, text)
	})
}

func (g *GuardedAnalyzer) execute(fn func() (string, error)) (string, error) {
	out, err := g.breaker.Execute(fn)
	if IsCircuitOpen(err) {
		return "", domain.WrapError(domain.ErrTransport, "resilience.execute", err)
	}
	return out, err
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
