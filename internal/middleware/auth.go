package middleware

import (
	"net/http"
	"strings"

	"github.com/ldsilvadev/mcp-word-caller/internal/auth"
	"github.com/ldsilvadev/mcp-word-caller/internal/httputil"
)

// AuthMiddleware requires a valid bearer token on every request that skip
// does not exempt. A nil verifier disables authentication.
func AuthMiddleware(verifier auth.JWTVerifier, skip func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if verifier == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || (skip != nil && skip(r)) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, httputil.WithClaims(r, claims))
		})
	}
}

// PublicPaths exempts the health check and the routes the document server
// calls, which authenticate with the editor secret instead.
func PublicPaths(r *http.Request) bool {
	path := r.URL.Path
	return path == "/health" ||
		strings.HasPrefix(path, "/api/editor/document/") ||
		strings.HasPrefix(path, "/api/editor/callback/")
}
