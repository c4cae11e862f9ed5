package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inhand/internal/domain/auth"
)

func TestAuthMiddlewareSetsUser(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "u1", Role: auth.RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	called := false
	handler := Auth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		user, ok := GetUser(r.Context())
		if !ok {
			t.Fatal("expected user in context")
		}
		if user.UserID != "u1" || user.Role != auth.RoleAdmin {
			t.Fatalf("unexpected user: %+v", user)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Fatal("expected handler to run")
	}
}

func TestAuthMiddlewareIgnoresBadTokens(t *testing.T) {
	for _, header := range []string{"", "Basic abc", "Bearer not-a-token"} {
		handler := Auth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetUser(r.Context()); ok {
				t.Fatalf("did not expect user in context for %q", header)
			}
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
}

type errPerms struct{}

func (errPerms) HasPermission(context.Context, string, string) (bool, error) {
	return false, errors.New("lookup failed")
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name  string
		user  *auth.UserContext
		store PermissionStore
		want  int
	}{
		{name: "anonymous", store: auth.StaticPermissions{}, want: http.StatusUnauthorized},
		{name: "user can write history", user: &auth.UserContext{UserID: "u1", Role: auth.RoleUser}, store: auth.StaticPermissions{}, want: http.StatusNoContent},
		{name: "store failure", user: &auth.UserContext{UserID: "u1", Role: auth.RoleUser}, store: errPerms{}, want: http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequirePermission(auth.PermHistoryWrite, tc.store)(noContent())
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.user != nil {
				req = req.WithContext(WithUser(req.Context(), *tc.user))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}

	handler := RequirePermission(auth.PermAdminJobs, auth.StaticPermissions{})(noContent())
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: "u1", Role: auth.RoleUser}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user on admin permission, got %d", rec.Code)
	}
}
