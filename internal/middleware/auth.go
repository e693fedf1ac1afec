package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/courtside/internal/store"
	users "github.com/AdamBeresnev/courtside/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// UserHeader carries the acting user's id. Authentication happens upstream.
const UserHeader = "X-User-ID"

// LoadActingUser resolves the X-User-ID header into a user and stores it in the
// request context. Requests without the header pass through anonymously.
func LoadActingUser(db sqlx.QueryerContext, userStore *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(UserHeader)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := uuid.Parse(raw)
			if err != nil {
				http.Error(w, "invalid "+UserHeader+" header", http.StatusUnauthorized)
				return
			}

			user, err := userStore.GetUser(r.Context(), db, userID)
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "unknown user", http.StatusUnauthorized)
				return
			}
			if err != nil {
				slog.Error("failed to load acting user", "user", userID, "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), users.UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects anonymous requests.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ActingUser(r.Context()) == nil {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func ActingUser(ctx context.Context) *users.User {
	user, ok := ctx.Value(users.UserKey).(*users.User)
	if !ok {
		return nil
	}
	return user
}
