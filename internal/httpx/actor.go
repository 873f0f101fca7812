package httpx

import (
	"context"
	"net/http"

	"qualitivate/internal/domains"

	"github.com/gorilla/mux"
)

const actorContextKey contextKey = "actor"

// UserLoader resolves the authenticated user id to its stored record.
type UserLoader interface {
	GetUserByID(ctx context.Context, id int64) (domains.User, error)
}

// WithActor loads the authenticated user and stores its authorization
// context. Must run after Protected.
func WithActor(users UserLoader) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), user.Actor())))
		})
	}
}

func ContextWithActor(ctx context.Context, actor domains.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

func ActorFromContext(ctx context.Context) (domains.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(domains.Actor)
	return actor, ok
}
