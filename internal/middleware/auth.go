package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	apperrors "github.com/medvault/share-server-go/internal/errors"
	"github.com/medvault/share-server-go/internal/model"
	"github.com/medvault/share-server-go/internal/repository"
	"github.com/medvault/share-server-go/internal/util"
)

type contextKey string

const UserContextKey contextKey = "user"
const RawTokenContextKey contextKey = "rawToken"

func GetUser(ctx context.Context) *model.User {
	if user, ok := ctx.Value(UserContextKey).(*model.User); ok {
		return user
	}
	return nil
}

// GetRawToken returns the bearer token of the current session, for logout
func GetRawToken(ctx context.Context) string {
	if token, ok := ctx.Value(RawTokenContextKey).(string); ok {
		return token
	}
	return ""
}

type AuthMiddleware struct {
	userRepo repository.UserRepository
}

func NewAuthMiddleware(userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{userRepo: userRepo}
}

// Handler resolves the bearer token to a user and rejects the request when
// it cannot
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			writeAppError(w, apperrors.Unauthorized("Missing authentication token"))
			return
		}

		user, err := m.userRepo.FindUserByTokenHash(r.Context(), util.HashToken(token))
		if err != nil {
			log.Error().Err(err).Msg("auth middleware: database error")
			writeAppError(w, apperrors.Database(err))
			return
		}
		if user == nil {
			log.Warn().Msg("auth middleware: invalid token attempt")
			writeAppError(w, apperrors.Unauthorized("Invalid or expired session"))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		ctx = context.WithValue(ctx, RawTokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole guards a route subtree to one role
func RequireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r.Context())
			if user == nil {
				writeAppError(w, apperrors.Unauthorized("Authentication required"))
				return
			}
			if user.Role != role {
				writeAppError(w, apperrors.Forbidden("Insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
