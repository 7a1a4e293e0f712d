package middleware

import (
	"context"
	"net/http"
	"strings"

	"lurdinha/internal/service"
)

type contextKey string

const (
	UIDKey  contextKey = "uid"
	NameKey contextKey = "name"
)

// AuthMiddleware validates guest JWTs and injects the acting identity into
// the request context. Operations downstream receive the uid explicitly.
type AuthMiddleware struct {
	authSvc *service.AuthService
}

func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireUser validates the guest JWT from the Authorization header.
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, UIDKey, claims.UID)
		ctx = context.WithValue(ctx, NameKey, claims.Name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUID extracts the acting uid from context.
func GetUID(ctx context.Context) string {
	if v := ctx.Value(UIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetName extracts the acting user's display name from context.
func GetName(ctx context.Context) string {
	if v := ctx.Value(NameKey); v != nil {
		return v.(string)
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
