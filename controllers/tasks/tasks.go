package tasks

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/botyak1234/marketplace-task/middleware"
	"github.com/botyak1234/marketplace-task/services"
	"github.com/botyak1234/marketplace-task/utils"
)

type Controller struct {
	svc *services.TaskService
}

func NewController(svc *services.TaskService) *Controller {
	return &Controller{svc: svc}
}

func pathID(r *http.Request) (uint, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// GET /tasks
// Admins see everything; everyone else sees unclaimed tasks plus their own.
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r)
	role, ok2 := middleware.UserRole(r)
	if !ok || !ok2 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	list, err := c.svc.List(r.Context(), uid, role)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: toResponseList(list)})
}

// GET /tasks/{id}
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	task, err := c.svc.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: toResponse(task)})
}

// GET /tasks/by-status?status=...
func (c *Controller) ByStatus(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	list, err := c.svc.ListByStatus(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: toResponseList(list)})
}

// GET /tasks/sorted?sort_by=created|updated&order=asc|desc
func (c *Controller) Sorted(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := c.svc.ListSorted(r.Context(), q.Get("sort_by"), q.Get("order"))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: toResponseList(list)})
}

// POST /tasks/{id}/take
func (c *Controller) Take(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	uid, ok := middleware.UserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	task, err := c.svc.Take(r.Context(), id, uid)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task taken", Data: toResponse(task)})
}

// POST /tasks/{id}/submit
func (c *Controller) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	uid, ok := middleware.UserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	task, err := c.svc.Submit(r.Context(), id, uid)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task submitted for review", Data: toResponse(task)})
}
