package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/botyak1234/marketplace-task/models"
	"github.com/botyak1234/marketplace-task/utils"
)

// AuthMiddleware validates the bearer token and injects the authenticated
// user id and role into the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))

		claims, err := utils.ValidateAccessToken(tokenStr)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Session expired, please log in again"})
				return
			}
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid token"})
			return
		}

		ctx := context.WithValue(r.Context(), utils.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, utils.UserRoleKey, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates a handler to requests whose validated role claim is
// Admin. Must run after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(utils.UserRoleKey).(models.Role)
		if !ok || role != models.RoleAdmin {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Forbidden: Admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserID extracts the authenticated user id injected by AuthMiddleware.
func UserID(r *http.Request) (uint, bool) {
	id, ok := r.Context().Value(utils.UserIDKey).(uint)
	return id, ok
}

// UserRole extracts the authenticated role injected by AuthMiddleware.
func UserRole(r *http.Request) (models.Role, bool) {
	role, ok := r.Context().Value(utils.UserRoleKey).(models.Role)
	return role, ok
}
