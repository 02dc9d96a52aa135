package auth

import (
	"net"
	"net/http"
	"strings"
)

// IngestGuard authorizes POST /rounds requests
type IngestGuard struct {
	hash    string
	limiter *RateLimiter
}

// NewIngestGuard creates a guard for the bcrypt hash. An empty hash
// rejects every request with ErrIngestDisabled. limiter may be nil.
func NewIngestGuard(hash string, limiter *RateLimiter) *IngestGuard {
	return &IngestGuard{hash: strings.TrimSpace(hash), limiter: limiter}
}

// Enabled reports whether a hash is configured.
func (g *IngestGuard) Enabled() bool {
	return g.hash != ""
}

// Check authorizes r. The returned retryAfter is only set with
// ErrRateLimited.
func (g *IngestGuard) Check(r *http.Request) (retryAfter int, err error) {
	if !g.Enabled() {
		return 0, ErrIngestDisabled
	}
	if ok, wait := g.limiter.Allow(clientKey(r)); !ok {
		return wait, ErrRateLimited
	}

	token := BearerToken(r)
	if token == "" {
		return 0, ErrMissingToken
	}
	if !VerifyToken(token, g.hash) {
		return 0, ErrInvalidToken
	}
	return 0, nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
