package auth

import (
	"net/http"
	"strings"
)

// Skipper allows callers to bypass authentication for specific requests
// (the login/register endpoints, or every request in single-user mode).
type Skipper func(r *http.Request) bool

// Middleware provides HTTP middleware for bearer-token validation.
type Middleware struct {
	Service *Service
	Skipper Skipper
}

func NewMiddleware(svc *Service, skipper Skipper) Middleware {
	return Middleware{Service: svc, Skipper: skipper}
}

// Wrap wraps an http.Handler with authentication. Valid claims are
// placed on the request context for handlers to resolve the owner.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Skipper != nil && m.Skipper(r) {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.parseRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func (m Middleware) parseRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrMissingToken
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return nil, ErrInvalidToken
	}
	return m.Service.Parse(strings.TrimSpace(header[len("Bearer "):]))
}
