// Package middleware provides HTTP middleware for the library service
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/R3E-Network/library_service/internal/errors"
	"github.com/R3E-Network/library_service/pkg/logger"
)

// DefaultAPIKeyHeader is the header clients put the shared secret in.
const DefaultAPIKeyHeader = "X-API-Key"

// APIKeyMiddleware admits requests that present the shared secret
type APIKeyMiddleware struct {
	header    string
	key       []byte
	logger    *logger.Logger
	skipPaths map[string]bool
}

// NewAPIKeyMiddleware creates the shared-secret gate. An empty key rejects
// every request outside skipPaths.
func NewAPIKeyMiddleware(key, header string, log *logger.Logger, skipPaths []string) *APIKeyMiddleware {
	if header == "" {
		header = DefaultAPIKeyHeader
	}
	if log == nil {
		log = logger.NewDefault("auth")
	}
	skip := make(map[string]bool)
	for _, path := range skipPaths {
		skip[path] = true
	}
	return &APIKeyMiddleware{
		header:    header,
		key:       []byte(key),
		logger:    log,
		skipPaths: skip,
	}
}

// Handler returns the middleware handler
func (m *APIKeyMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		presented := r.Header.Get(m.header)
		if presented == "" {
			m.reject(w, r, "missing API key")
			return
		}
		if len(m.key) == 0 || subtle.ConstantTimeCompare([]byte(presented), m.key) != 1 {
			m.reject(w, r, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *APIKeyMiddleware) reject(w http.ResponseWriter, r *http.Request, reason string) {
	m.logger.WithContext(r.Context()).WithField("remote_addr", r.RemoteAddr).
		WithField("path", r.URL.Path).
		WithField("method", r.Method).
		Warnf("unauthorized request: %s", reason)
	respondError(w, errors.Unauthorized("Unauthorized"))
}
