package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/hollowbeak/storefront/internal/auth"
)

type claimsKey struct{}

// claimsFrom extracts the verified token claims stashed by requireAuth.
func claimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok
}

// requireAuth verifies the Bearer token and stores its claims in the request
// context. Missing or invalid tokens get 401.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authorized, no token")
			return
		}

		claims, err := h.tokens.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not authorized, token failed")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin gates a route to admin accounts. Must be nested inside
// requireAuth.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r.Context())
		if !ok || !claims.IsAdmin {
			writeError(w, http.StatusForbidden, "not authorized as admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
