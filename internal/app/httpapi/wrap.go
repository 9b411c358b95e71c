package httpapi

import (
	"net/http"

	"github.com/R3E-Network/library_service/internal/app/metrics"
	"github.com/R3E-Network/library_service/internal/middleware"
	"github.com/R3E-Network/library_service/pkg/logger"
)

// ChainConfig configures the middleware placed in front of the API.
type ChainConfig struct {
	APIKey       string
	APIKeyHeader string
	SkipPaths    []string
	CORSOrigins  []string
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *middleware.RateLimiter
}

// Wrap applies, outermost first: tracing, metrics, CORS, the API key gate and
// rate limiting.
func Wrap(next http.Handler, cfg ChainConfig, log *logger.Logger) http.Handler {
	h := next
	if cfg.RateLimiter != nil {
		h = cfg.RateLimiter.Handler(h)
	}
	h = middleware.NewAPIKeyMiddleware(cfg.APIKey, cfg.APIKeyHeader, log, cfg.SkipPaths).Handler(h)
	h = middleware.NewCORSMiddleware(cfg.CORSOrigins, cfg.APIKeyHeader).Handler(h)
	h = metrics.InstrumentHandler(h)
	h = middleware.NewTracingMiddleware(log).Handler(h)
	return h
}
