// Package middleware provides HTTP middleware for the library service
package middleware

import (
	"net/http"
	"strings"
)

const (
	corsMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsMaxAge  = "3600"
)

// CORSMiddleware lets the browser client call the API from another origin.
type CORSMiddleware struct {
	origins      map[string]struct{}
	wildcard     bool
	allowHeaders string
}

// NewCORSMiddleware builds the middleware. "*" in origins allows any origin.
// apiKeyHeader is advertised so browsers may send the credential.
func NewCORSMiddleware(origins []string, apiKeyHeader string) *CORSMiddleware {
	if apiKeyHeader == "" {
		apiKeyHeader = DefaultAPIKeyHeader
	}
	m := &CORSMiddleware{
		origins:      make(map[string]struct{}, len(origins)),
		allowHeaders: strings.Join([]string{"Content-Type", TraceHeader, apiKeyHeader}, ", "),
	}
	for _, o := range origins {
		if o == "*" {
			m.wildcard = true
			continue
		}
		m.origins[normalizeOrigin(o)] = struct{}{}
	}
	return m
}

// Handler answers preflight requests itself, so they never reach the API key
// check.
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			m.decorate(w.Header(), origin)
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *CORSMiddleware) decorate(h http.Header, origin string) {
	switch {
	case m.wildcard:
		h.Set("Access-Control-Allow-Origin", "*")
	case m.allows(origin):
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
	default:
		return
	}
	h.Set("Access-Control-Allow-Methods", corsMethods)
	h.Set("Access-Control-Allow-Headers", m.allowHeaders)
	h.Set("Access-Control-Expose-Headers", TraceHeader)
	h.Set("Access-Control-Max-Age", corsMaxAge)
}

func (m *CORSMiddleware) allows(origin string) bool {
	_, ok := m.origins[normalizeOrigin(origin)]
	return ok
}

func normalizeOrigin(o string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(o), "/"))
}
