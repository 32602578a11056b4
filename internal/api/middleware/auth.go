package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/lonepengu/backend/internal/token"
)

type contextKey string

const (
	userIDKey      contextKey = "userID"
	userEmailKey   contextKey = "userEmail"
	accessTokenKey contextKey = "accessToken"
)

// Error codes returned with 401 responses. All bearer failures map to 401;
// the code distinguishes missing, expired, and unverifiable tokens.
const (
	CodeNoToken      = "NO_TOKEN"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeInvalidToken = "INVALID_TOKEN"
)

// Auth verifies the bearer token signature and stashes the claims plus the
// raw token in the request context. It does not consult the session store;
// handlers that need session-level validity go through the auth service.
func Auth(codec *token.Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := BearerToken(r)
			if raw == "" {
				writeAuthError(w, "Access token required", CodeNoToken)
				return
			}

			claims, err := codec.Verify(raw)
			if err != nil {
				if errors.Is(err, token.ErrExpired) {
					writeAuthError(w, "Token expired", CodeTokenExpired)
					return
				}
				writeAuthError(w, "Invalid token", CodeInvalidToken)
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				log.Printf("ERROR [middleware.Auth] unparseable subject claim: %v", err)
				writeAuthError(w, "Invalid token", CodeInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, userEmailKey, claims.Email)
			ctx = context.WithValue(ctx, accessTokenKey, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from the Authorization header, or "".
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}

func GetUserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(userEmailKey).(string)
	return email, ok
}

func GetAccessToken(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(accessTokenKey).(string)
	return tok, ok
}

func writeAuthError(w http.ResponseWriter, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"success":false,"message":"` + message + `","code":"` + code + `"}`))
}
