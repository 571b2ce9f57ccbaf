// Package middleware holds the HTTP middleware chain shared by all routes.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/algonet/backend/internal/auth"
	apperrors "github.com/algonet/backend/internal/errors"
	"github.com/algonet/backend/internal/httputil"
)

type contextKeyType string

const (
	userIDKey contextKeyType = "user_id"
	emailKey  contextKeyType = "email"
)

// Auth validates the bearer token and injects the caller's identity
// into the request context. A missing or malformed Authorization header
// maps to NO_TOKEN, a bad or expired token to INVALID_TOKEN.
func Auth(tokens *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, apperrors.NoToken())
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeAuthError(w, apperrors.NoToken())
				return
			}

			claims, err := tokens.VerifyAccess(strings.TrimSpace(parts[1]))
			if err != nil {
				writeAuthError(w, apperrors.InvalidToken())
				return
			}

			userID, err := auth.SubjectID(claims)
			if err != nil {
				writeAuthError(w, apperrors.InvalidToken())
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, emailKey, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user's id from the context.
func UserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return 0
}

// EmailFromContext extracts the authenticated user's email from the context.
func EmailFromContext(ctx context.Context) string {
	if email, ok := ctx.Value(emailKey).(string); ok {
		return email
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, err *apperrors.AppError) {
	httputil.WriteErrorCode(w, err.Status, err.Code, err.Message)
}
