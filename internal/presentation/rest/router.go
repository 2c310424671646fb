package rest

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/bibbank/creditrisk/pkg/auth"
)

// RouterConfig collects the pieces mounted on the HTTP listener.
type RouterConfig struct {
	Health      *HealthHandler
	Assessments *AssessmentHandler
	Metrics     http.Handler
	JWT         *auth.JWTService
	Limiter     *rate.Limiter
	Logger      *slog.Logger
}

// NewRouter builds the HTTP handler. Probes and /metrics are public; the
// /v1 API requires a bearer token and is rate limited.
func NewRouter(cfg RouterConfig) http.Handler {
	api := http.NewServeMux()
	cfg.Assessments.RegisterRoutes(api)
	protected := Chain(api, RateLimit(cfg.Limiter), auth.HTTPMiddleware(cfg.JWT))

	mux := http.NewServeMux()
	cfg.Health.RegisterRoutes(mux)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}
	mux.Handle("/v1/", protected)

	return Chain(mux, Logging(cfg.Logger))
}
