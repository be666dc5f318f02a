package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/domain/model"
)

type ctxActorKey struct{}

// actorFrom returns the authenticated actor stored by authMiddleware
func actorFrom(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(ctxActorKey{}).(model.Actor)
	return actor, ok
}

// authMiddleware resolves the bearer token to an active user and stores
// the derived actor in the request context.
func authMiddleware(users interfaces.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			user, err := users.GetByToken(r.Context(), token)
			if err != nil {
				http.Error(w, "Authentication failed", http.StatusInternalServerError)
				return
			}
			if user == nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxActorKey{}, user.Actor())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
