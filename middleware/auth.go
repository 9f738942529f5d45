package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"go-shop/models"
	"go-shop/store"
	"go-shop/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// AuthGuard resolves the x_auth cookie to a user before protected handlers
// run.
type AuthGuard struct {
	Users store.UserStore
}

// NewAuthGuard creates an AuthGuard backed by the given user store.
func NewAuthGuard(users store.UserStore) *AuthGuard {
	return &AuthGuard{Users: users}
}

// Middleware verifies the session token and attaches the resolved user to
// the request context. Every failure mode (missing cookie, undecodable
// token, token not matching the stored one) produces the same rejection
// body, so callers cannot tell which check failed.
func (a *AuthGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("x_auth")
		if err != nil || cookie.Value == "" {
			reject(w)
			return
		}

		userID, err := utils.ParseToken(cookie.Value)
		if err != nil {
			reject(w)
			return
		}

		objectID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			reject(w)
			return
		}

		// The decoded id alone is not enough: the presented token must still
		// be the one stored on the user record, otherwise tokens issued
		// before a logout or re-login would keep working.
		user, err := a.Users.FindByToken(r.Context(), objectID, cookie.Value)
		if err != nil {
			reject(w)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFrom returns the authenticated user attached by the middleware.
func UserFrom(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	return user, ok
}

func reject(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"isAuth": false,
		"error":  true,
	})
}
