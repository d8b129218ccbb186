package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"sortie/auth"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Auth validates the bearer token of a request and stores the
// authenticated user id in the request context.
func Auth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := extractToken(r)
			if err != nil {
				unauthorized(w, err.Error())
				return
			}

			userID, err := auth.ValidateToken(token, secret)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user id stored by Auth.
func UserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}

func extractToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", errors.New("invalid authorization header format")
		}
		return parts[1], nil
	}

	// Browsers cannot set headers on a WebSocket dial, so the socket
	// endpoint also accepts the token as a query parameter.
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}

	return "", errors.New("authorization token is missing")
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
