package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

var secretKey []byte

// Init stores the signing secret used by VerifyToken. Called once from
// main before the router starts serving.
func Init(cfg *Config) {
	secretKey = []byte(cfg.SecretKey)
}

// VerifyToken checks the request's bearer token and returns the
// authenticated user's ID.
func VerifyToken(r *http.Request) (int64, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return 0, fmt.Errorf("no authorization header")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return 0, fmt.Errorf("malformed authorization header")
	}

	return UserIDFromToken(tokenString, secretKey)
}

type contextKey struct{}

var userIDKey contextKey

// Middleware rejects requests without a valid bearer token and stores
// the authenticated user's ID on the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := VerifyToken(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

// UserID returns the authenticated user's ID placed by Middleware.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}
