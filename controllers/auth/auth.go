package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/botyak1234/marketplace-task/middleware"
	"github.com/botyak1234/marketplace-task/services"
	"github.com/botyak1234/marketplace-task/utils"
)

type Controller struct {
	users *services.UserService
}

func NewController(users *services.UserService) *Controller {
	return &Controller{users: users}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,pwdmin"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// POST /register
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	user, err := c.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrConflict):
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Username already taken"})
		case errors.Is(err, services.ErrInvalidArgument):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		default:
			log.Printf("[register] %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		}
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Registration successful",
		Data: map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}

// POST /login
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	token, err := c.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		// Unknown username and wrong password answer the same way.
		if errors.Is(err, services.ErrRuleViolation) {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid username or password"})
			return
		}
		log.Printf("[login] %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Login successful",
		Data:    map[string]interface{}{"token": token},
	})
}

// POST /logout revokes the presented token's jti until it expires.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	authz := r.Header.Get("Authorization")
	tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	claims, err := utils.ValidateAccessToken(tokenStr)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid token"})
		return
	}
	ttl := time.Until(claims.Expiry)
	if ttl < 0 {
		ttl = 0
	}
	if err := utils.RevokeJTI(claims.JTI, ttl); err != nil {
		log.Printf("[logout] revoke jti: %v", err)
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Logged out"})
}
