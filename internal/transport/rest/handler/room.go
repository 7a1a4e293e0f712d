package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"lurdinha/internal/model"
	"lurdinha/internal/service"
	"lurdinha/internal/transport/rest/middleware"
)

// RoomHandler handles room lifecycle endpoints.
type RoomHandler struct {
	roomSvc *service.RoomService
}

func NewRoomHandler(roomSvc *service.RoomService) *RoomHandler {
	return &RoomHandler{roomSvc: roomSvc}
}

// CreateRoomRequest is the request body for creating a room.
type CreateRoomRequest struct {
	Settings model.RoomSettings `json:"settings"`
	PhotoURL string             `json:"photoUrl"`
}

// Create handles POST /v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	creator := model.Player{
		UID:      middleware.GetUID(r.Context()),
		Name:     middleware.GetName(r.Context()),
		PhotoURL: req.PhotoURL,
	}
	room, err := h.roomSvc.CreateRoom(r.Context(), creator, req.Settings)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

// Get handles GET /v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	room, err := h.roomSvc.GetRoom(r.Context(), code)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// JoinRequest is the request body for joining a room.
type JoinRequest struct {
	PhotoURL string `json:"photoUrl"`
}

// Join handles POST /v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req JoinRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	joiner := model.Player{
		UID:      middleware.GetUID(r.Context()),
		Name:     middleware.GetName(r.Context()),
		PhotoURL: req.PhotoURL,
	}
	room, err := h.roomSvc.JoinRoom(r.Context(), code, joiner)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// StartRequest is the request body for starting the game.
type StartRequest struct {
	TotalRounds int    `json:"totalRounds"`
	Theme       string `json:"theme"`
}

// Start handles POST /v1/rooms/{code}/start
func (h *RoomHandler) Start(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.roomSvc.StartGame(r.Context(), code, middleware.GetUID(r.Context()), req.TotalRounds, req.Theme)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// AnswerRequest is the request body for submitting an answer.
type AnswerRequest struct {
	Text string `json:"text"`
}

// Answer handles POST /v1/rooms/{code}/answer
func (h *RoomHandler) Answer(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.roomSvc.SubmitAnswer(r.Context(), code, middleware.GetUID(r.Context()), req.Text); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "submitted"})
}

// Next handles POST /v1/rooms/{code}/next
func (h *RoomHandler) Next(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	room, err := h.roomSvc.NextRound(r.Context(), code, middleware.GetUID(r.Context()))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}
