package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/ayria/accounts-api/internal/domain"
	"github.com/ayria/accounts-api/internal/service"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	CurrentUserKey contextKey = "currentUser"
)

// Auth resolves the Authorization header to an active user and stores it in
// the request context. Header parsing, token verification, and the
// revocation check all happen inside AuthService.GetCurrentUser.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authService.GetCurrentUser(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				var appErr *domain.Error
				if errors.As(err, &appErr) {
					http.Error(w, appErr.Message, statusForKind(appErr.Kind))
					return
				}
				log.Error().Err(err).Msg("auth middleware: user lookup failed")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), CurrentUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetCurrentUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(CurrentUserKey).(*domain.User)
	return user, ok
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusUnauthorized
	}
}
