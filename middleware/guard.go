package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/opencivic/portalauth"
)

type sessionContextKey struct{}

// SessionFromContext returns the claims injected by [Guard], if any.
func SessionFromContext(ctx context.Context) (*portalauth.SessionClaims, bool) {
	claims, ok := ctx.Value(sessionContextKey{}).(*portalauth.SessionClaims)
	return claims, ok
}

// Guard verifies the bearer token on every request and stores the session
// claims in the request context. Invalid tokens get 401; a store outage
// during revocation checks gets 503, never a silent pass.
func Guard(engine *portalauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := engine.Validate(r.Context(), tokenStr)
			if err != nil {
				if errors.Is(err, portalauth.ErrServiceUnavailable) {
					http.Error(w, "service unavailable", http.StatusServiceUnavailable)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	tokenStr := value[len(bearer):]
	if tokenStr == "" {
		return "", false
	}

	return tokenStr, true
}
