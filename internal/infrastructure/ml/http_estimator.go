package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// ErrEstimatorCircuitOpen is returned while the breaker rejects calls.
var ErrEstimatorCircuitOpen = errors.New("estimator circuit breaker is open")

type HTTPEstimatorConfig struct {
	URL         string
	Timeout     time.Duration
	RPS         float64
	Burst       int
	MaxRetries  int
	BaseBackoff time.Duration
	Client      *http.Client
}

// HTTPEstimator calls a remote scoring service. Calls are paced by a token
// bucket, guarded by a circuit breaker, and retried with exponential backoff
// up to MaxRetries times.
type HTTPEstimator struct {
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker
	limiter     *rate.Limiter
	logger      *slog.Logger
	url         string
	maxRetries  int
	baseBackoff time.Duration
	auc         atomic.Uint64
}

var _ port.ProbabilityEstimator = (*HTTPEstimator)(nil)

type predictRequest struct {
	Features [valueobject.FeatureVectorSize]float64 `json:"features"`
}

type predictResponse struct {
	Probability *float64 `json:"probability"`
	ModelAUC    float64  `json:"model_auc"`
}

// statusError is a non-2xx reply. 4xx replies are not retried.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("estimator returned HTTP %d", e.code)
}

func NewHTTPEstimator(cfg HTTPEstimatorConfig, logger *slog.Logger) *HTTPEstimator {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 50 * time.Millisecond
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = max(1, int(math.Ceil(cfg.RPS)))
	}

	e := &HTTPEstimator{
		client:      client,
		limiter:     rate.NewLimiter(limit, cfg.Burst),
		logger:      logger,
		url:         cfg.URL,
		maxRetries:  cfg.MaxRetries,
		baseBackoff: cfg.BaseBackoff,
	}
	e.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "probability-estimator",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 5 {
				return true
			}
			if counts.Requests < 20 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) > 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
	return e
}

// Predict asks the remote service for a default probability.
func (e *HTTPEstimator) Predict(ctx context.Context, features [valueobject.FeatureVectorSize]float64) (float64, error) {
	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			delay := e.baseBackoff << (attempt - 1)
			e.logger.DebugContext(ctx, "retrying estimator call",
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
				slog.String("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := e.limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("estimator rate limit: %w", err)
		}

		out, err := e.breaker.Execute(func() (interface{}, error) {
			return e.call(ctx, features)
		})
		if err == nil {
			return out.(float64), nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return 0, fmt.Errorf("%w: %w", ErrEstimatorCircuitOpen, err)
		}
		lastErr = err
		if !retryable(ctx, err) {
			break
		}
	}
	return 0, lastErr
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= http.StatusInternalServerError || se.code == http.StatusTooManyRequests
	}
	return true
}

func (e *HTTPEstimator) call(ctx context.Context, features [valueobject.FeatureVectorSize]float64) (float64, error) {
	body, err := json.Marshal(predictRequest{Features: features})
	if err != nil {
		return 0, fmt.Errorf("encode estimator request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build estimator request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("estimator request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, &statusError{code: resp.StatusCode}
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode estimator response: %w", err)
	}
	if out.Probability == nil {
		return 0, errors.New("estimator response has no probability")
	}
	if out.ModelAUC > 0 {
		e.auc.Store(math.Float64bits(out.ModelAUC))
	}
	return *out.Probability, nil
}

// ModelAUC reports the AUC the remote service last advertised.
func (e *HTTPEstimator) ModelAUC() float64 {
	return math.Float64frombits(e.auc.Load())
}

// Ready fails while the circuit breaker is open.
func (e *HTTPEstimator) Ready(context.Context) error {
	if e.breaker.State() == gobreaker.StateOpen {
		return ErrEstimatorCircuitOpen
	}
	return nil
}

// BreakerState names the current breaker state.
func (e *HTTPEstimator) BreakerState() string {
	return e.breaker.State().String()
}
