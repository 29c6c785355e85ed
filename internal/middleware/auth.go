// Package middleware provides HTTP middleware: JWT authentication, request
// ids, and rate limiting.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"querygate/internal/domain"
)

// Authenticator resolves JWT bearer tokens to principals. Tokens are signed
// with a shared HS256 secret; the subject claim must match a registered user
// so revoked users fail closed even with a valid token.
type Authenticator struct {
	secret []byte
	users  domain.UserRepository
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(secret string, users domain.UserRepository) *Authenticator {
	return &Authenticator{secret: []byte(secret), users: users}
}

// Middleware authenticates the request and stores the resolved principal in
// the context. Requests without a valid token get 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			writeUnauthorized(w, "provide a valid JWT bearer token")
			return
		}

		tokenStr := strings.TrimPrefix(auth, "Bearer ")
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return a.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			writeUnauthorized(w, "token verification failed")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeUnauthorized(w, "token verification failed")
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			writeUnauthorized(w, "token has no subject")
			return
		}

		user, err := a.users.GetByID(r.Context(), sub)
		if err != nil {
			writeUnauthorized(w, "unknown user")
			return
		}

		ctx := domain.WithPrincipal(r.Context(), domain.ContextPrincipal{
			UserID:  user.ID,
			Email:   user.Email,
			IsAdmin: user.IsAdmin,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    http.StatusUnauthorized,
		"message": "unauthorized: " + msg,
	})
}
