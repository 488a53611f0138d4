package tasks

import (
	"net/http"

	"github.com/botyak1234/marketplace-task/middleware"
	"github.com/botyak1234/marketplace-task/models"
	"github.com/botyak1234/marketplace-task/services"
	"github.com/botyak1234/marketplace-task/utils"
)

type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Reward      int    `json:"reward"`
}

type UpdateTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Reward      int    `json:"reward"`
	Status      string `json:"status" validate:"required"`
	TakenByID   *uint  `json:"taken_by_id"`
}

type ReviewRequest struct {
	Status string `json:"status" validate:"required"`
}

// POST /tasks (admin)
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	task, err := c.svc.Create(r.Context(), req.Title, req.Description, req.Reward)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Task created", Data: toResponse(task)})
}

// PUT /tasks/{id} (admin). Full overwrite, no transition validation. This is
// the override path an admin uses to fix up a task by hand.
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	var req UpdateTaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	status, err := models.ParseTaskStatus(req.Status)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid status, allowed values: New, Taken, Submitted, Approved, Rejected"})
		return
	}
	task, err := c.svc.Update(r.Context(), id, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Reward:      req.Reward,
		Status:      status,
		TakenByID:   req.TakenByID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task updated", Data: toResponse(task)})
}

// DELETE /tasks/{id} (admin)
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	if err := c.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task deleted"})
}

// POST /tasks/{id}/review (admin)
func (c *Controller) Review(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	var req ReviewRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	task, err := c.svc.Review(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task reviewed", Data: toResponse(task)})
}
