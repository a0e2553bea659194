package middleware

import (
	"net/http"

	"github.com/opencivic/portalauth"
)

// RequireRole wraps [Guard] and additionally rejects sessions whose role
// claim differs from role with 403.
func RequireRole(engine *portalauth.Engine, role portalauth.RoleClass) func(http.Handler) http.Handler {
	guard := Guard(engine)
	return func(next http.Handler) http.Handler {
		return guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := SessionFromContext(r.Context())
			if !ok || claims.Role != role {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// RequireActiveCredential wraps [Guard] and rejects sessions still on the
// default credential with 403. Portal routes behind this guard stay
// unreachable until the mandatory password setup completes; the password-set
// endpoint itself must use plain [Guard].
func RequireActiveCredential(engine *portalauth.Engine) func(http.Handler) http.Handler {
	guard := Guard(engine)
	return func(next http.Handler) http.Handler {
		return guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := SessionFromContext(r.Context())
			if !ok || claims.CredentialStatus != portalauth.CredentialActive {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
