package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"inhand/internal/transport/http/api"
)

// PermissionStore answers whether a role holds a permission.
type PermissionStore interface {
	HasPermission(ctx context.Context, role, permission string) (bool, error)
}

func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
				return
			}

			allowed, err := store.HasPermission(r.Context(), user.Role, permission)
			switch {
			case err != nil:
				slog.Error("permission check failed", "permission", permission, "err", err, "requestId", requestID)
				api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", requestID)
				return
			case !allowed:
				slog.Warn("permission denied", "permission", permission, "userId", user.UserID, "role", user.Role, "requestId", requestID)
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
