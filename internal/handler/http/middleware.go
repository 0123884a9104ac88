package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mavdeev/shop-backend/internal/auth"
	"github.com/mavdeev/shop-backend/internal/user"
)

type contextKey struct{ name string }

var identityKey = &contextKey{"identity"}

// AuthMiddleware resolves the bearer token on every protected route into
// a full user record before any handler runs.
type AuthMiddleware struct {
	tokens *auth.TokenManager
	users  user.Service
}

func NewAuthMiddleware(tokens *auth.TokenManager, users user.Service) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			respondWithError(w, http.StatusUnauthorized, codeAuthentication, "missing authorization header")
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			respondWithError(w, http.StatusUnauthorized, codeAuthentication, "authorization header must be a bearer token")
			return
		}

		userID, _, err := m.tokens.Parse(tokenString)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}

		u, err := m.users.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				respondWithError(w, http.StatusUnauthorized, codeAuthentication, "account no longer exists")
				return
			}
			log.Error().Err(err).Msg("Failed to resolve token identity")
			respondWithServiceError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates admin-only routes. It must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := identityFrom(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, codeAuthentication, "authentication required")
			return
		}
		if u.Role != user.RoleAdmin {
			respondWithError(w, http.StatusForbidden, codeAuthorization, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func identityFrom(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(identityKey).(*user.User)
	return u, ok
}
