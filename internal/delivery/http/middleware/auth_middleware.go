package middleware

import (
	"context"
	"errors"
	"net/http"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/logger"
	"orderflow-backend/pkg/utils"
)

// AuthMiddleware verifies the access token issued by the auth service and
// puts the caller into the request context. The user is built from claims
// only; there is no account lookup.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := utils.ExtractClaims(r)
		switch {
		case errors.Is(err, utils.ErrNoToken):
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: No token provided")
			return
		case err != nil:
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: Invalid token")
			return
		}

		user := &domain.User{ID: claims.UserID(), Email: claims.Email, Role: claims.Role}
		userLogger := logger.WithUserID(*logger.WithContext(r.Context()), user.ID)
		ctx := logger.NewContext(WithUser(r.Context(), user), &userLogger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, domain.UserContextKey, user)
}

// UserFromContext returns the authenticated caller, or nil outside
// AuthMiddleware.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(domain.UserContextKey).(*domain.User)
	return user
}
