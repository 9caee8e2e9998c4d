package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gtera/thiwa/pkg/auth"
	"github.com/gtera/thiwa/pkg/response"
)

type claimsKey struct{}

// AdminMiddleware guards the admin API. It accepts a bearer token minted at
// admin login and stores the parsed claims in the request context.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			response.Unauthorized(w)
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil || claims.Role != auth.RoleAdmin {
			response.Unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

// ClaimsFrom returns the admin claims stored by AdminMiddleware, if any.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok
}
