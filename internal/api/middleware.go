package api

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/AlefLorenzo/DeliveryFoods/internal/apperrors"
	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
)

type actorKey struct{}

func actorFrom(ctx context.Context) models.Actor {
	actor, _ := ctx.Value(actorKey{}).(models.Actor)
	return actor
}

// authenticate resolves the bearer token. Browsers cannot set headers on an
// EventSource, so GET requests may pass the token as access_token instead.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok && r.Method == http.MethodGet {
			token = r.URL.Query().Get("access_token")
		}
		token = strings.TrimSpace(token)
		if token == "" {
			writeAppError(w, apperrors.Authentication("missing bearer token"))
			return
		}

		actor, err := s.tokens.Verify(token)
		if err != nil {
			writeAppError(w, apperrors.Authentication("invalid or expired token"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, actor)))
	})
}

func requireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, actorFrom(r.Context()).Role) {
				writeAppError(w, apperrors.Authorization("this action is not available to your role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
