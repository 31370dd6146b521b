package middleware

import (
	"net/http"

	"orderflow-backend/pkg/utils"
)

// AdminMiddleware rejects callers without the admin role. It runs after
// AuthMiddleware, which puts the user on the context.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch user := UserFromContext(r.Context()); {
		case user == nil:
			utils.WriteError(w, http.StatusUnauthorized, "Authentication required")
		case !user.IsAdmin():
			utils.WriteError(w, http.StatusForbidden, "Admin access required")
		default:
			next.ServeHTTP(w, r)
		}
	})
}
