package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{}

// RequestToken returns the bearer token of r, falling back to the "token"
// query parameter that browsers use for websocket upgrades.
func RequestToken(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return "", false
		}
		return token, true
	}
	token := r.URL.Query().Get("token")
	return token, token != ""
}

// AuthMiddleware admits only requests carrying a valid controller token.
func (s *Service) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := RequestToken(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="spider"`)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "controller token required"})
			return
		}
		c, err := s.ValidateToken(token)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="spider", error="invalid_token"`)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithController(r.Context(), c)))
	})
}

func WithController(ctx context.Context, c *Controller) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

func ControllerFromContext(ctx context.Context) (*Controller, bool) {
	c, ok := ctx.Value(contextKey{}).(*Controller)
	return c, ok && c != nil
}
