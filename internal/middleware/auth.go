package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"shopmart-be/internal/user"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Auth struct {
	users user.Repository
}

func NewAuth(users user.Repository) *Auth {
	return &Auth{users: users}
}

func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// RequireAuth resolves the bearer token to a live user record and attaches
// the identity to the request context. The store lookup means a deleted
// account cannot keep using an unexpired token.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearer(r)
		if token == "" {
			writeAuthError(w, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}

		claims, err := user.ParseJWT(token)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "Invalid token.")
			return
		}

		uid, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "Invalid token.")
			return
		}

		u, err := a.users.FindByID(r.Context(), uid)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "Invalid token.")
			return
		}

		ctx := WithIdentity(r.Context(), Identity{
			UserID: u.ID,
			Name:   u.Name,
			Email:  u.Email,
			Role:   u.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route on the caller's role. It assumes RequireAuth
// ran earlier in the chain.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "Access denied. Please authenticate first.")
				return
			}

			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeAuthError(w, http.StatusForbidden, "Access denied. Insufficient permissions.")
		})
	}
}
