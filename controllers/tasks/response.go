package tasks

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/botyak1234/marketplace-task/models"
	"github.com/botyak1234/marketplace-task/services"
	"github.com/botyak1234/marketplace-task/utils"
)

type taskResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Reward      int    `json:"reward"`
	Status      string `json:"status"`
	TakenByID   *uint  `json:"taken_by_id"`
	TakenBy     string `json:"taken_by,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toResponse(t *models.Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Reward:      t.Reward,
		Status:      string(t.Status),
		TakenByID:   t.TakenByID,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if t.TakenBy != nil {
		resp.TakenBy = t.TakenBy.Username
	}
	return resp
}

func toResponseList(ts []models.Task) []taskResponse {
	out := make([]taskResponse, 0, len(ts))
	for i := range ts {
		out = append(out, toResponse(&ts[i]))
	}
	return out
}

// writeError maps service error kinds to transport codes. Anything outside
// the taxonomy is a storage failure and answers as a server error.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
	case errors.Is(err, services.ErrRuleViolation):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
	case errors.Is(err, services.ErrInvalidArgument):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
	case errors.Is(err, services.ErrConflict):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: err.Error()})
	default:
		log.Printf("[tasks] %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
	}
}
