package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"lurdinha/internal/model"
	"lurdinha/internal/service"
	"lurdinha/internal/transport/rest/middleware"
)

// GroupHandler handles group endpoints.
type GroupHandler struct {
	groupSvc *service.GroupService
}

func NewGroupHandler(groupSvc *service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// CreateGroupRequest is the request body for creating a group.
type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PhotoURL    string `json:"photoUrl"`
}

// Create handles POST /v1/groups
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	creator := model.GroupMember{
		UID:      middleware.GetUID(r.Context()),
		Name:     middleware.GetName(r.Context()),
		PhotoURL: req.PhotoURL,
	}
	group, err := h.groupSvc.CreateGroup(r.Context(), creator, req.Name, req.Description)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

// Get handles GET /v1/groups/{groupId}
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["groupId"]
	group, err := h.groupSvc.GetGroup(r.Context(), id, middleware.GetUID(r.Context()))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// Join handles POST /v1/groups/{groupId}/join
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["groupId"]

	var req struct {
		PhotoURL string `json:"photoUrl"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	member := model.GroupMember{
		UID:      middleware.GetUID(r.Context()),
		Name:     middleware.GetName(r.Context()),
		PhotoURL: req.PhotoURL,
	}
	group, err := h.groupSvc.JoinGroup(r.Context(), id, member)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// List handles GET /v1/groups
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groupSvc.ListGroups(r.Context(), middleware.GetUID(r.Context()))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}
