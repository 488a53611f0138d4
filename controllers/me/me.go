package me

import (
	"errors"
	"log"
	"net/http"

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

// GET /me/points
func (c *Controller) Points(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	points, err := c.users.GetPoints(r.Context(), uid)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		log.Printf("[me] get points: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{"points": points}})
}
