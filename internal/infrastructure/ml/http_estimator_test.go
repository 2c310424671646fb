package ml_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/infrastructure/ml"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEstimator(t *testing.T, handler http.HandlerFunc, retries int) *ml.HTTPEstimator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return ml.NewHTTPEstimator(ml.HTTPEstimatorConfig{
		URL:         srv.URL,
		Timeout:     time.Second,
		MaxRetries:  retries,
		BaseBackoff: time.Millisecond,
	}, discardLogger())
}

func TestHTTPEstimator_Predict(t *testing.T) {
	var got struct {
		Features []float64 `json:"features"`
	}
	est := newEstimator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"probability": 0.234, "model_auc": 0.81}`))
	}, 0)

	p, err := est.Predict(context.Background(), typicalVector())

	require.NoError(t, err)
	assert.Equal(t, 0.234, p)
	assert.Equal(t, 0.81, est.ModelAUC())
	assert.Equal(t, []float64{34, 4200, 42, 85.5, 0.15, 1, 0, 30, 0}, got.Features)
	assert.NoError(t, est.Ready(context.Background()))
}

func TestHTTPEstimator_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	est := newEstimator(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"probability": 0.4}`))
	}, 2)

	p, err := est.Predict(context.Background(), typicalVector())

	require.NoError(t, err)
	assert.Equal(t, 0.4, p)
	assert.EqualValues(t, 3, calls.Load())
}

func TestHTTPEstimator_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	est := newEstimator(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}, 3)

	_, err := est.Predict(context.Background(), typicalVector())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 400")
	assert.EqualValues(t, 1, calls.Load())
}

func TestHTTPEstimator_MissingProbability(t *testing.T) {
	est := newEstimator(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"model_auc": 0.8}`))
	}, 0)

	_, err := est.Predict(context.Background(), typicalVector())
	assert.Error(t, err)
}

func TestHTTPEstimator_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	est := newEstimator(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, 0)
	ctx := context.Background()

	for range 5 {
		_, err := est.Predict(ctx, typicalVector())
		require.Error(t, err)
	}

	_, err := est.Predict(ctx, typicalVector())

	assert.ErrorIs(t, err, ml.ErrEstimatorCircuitOpen)
	assert.EqualValues(t, 5, calls.Load(), "open breaker short-circuits the call")
	assert.Equal(t, "open", est.BreakerState())
	assert.ErrorIs(t, est.Ready(ctx), ml.ErrEstimatorCircuitOpen)
}

func TestHTTPEstimator_ContextDeadline(t *testing.T) {
	est := newEstimator(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, 3)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := est.Predict(ctx, typicalVector())

	assert.Error(t, err)
}
