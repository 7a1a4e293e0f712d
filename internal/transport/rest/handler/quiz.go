package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"lurdinha/internal/service"
	"lurdinha/internal/transport/rest/middleware"
)

// QuizHandler handles group poll endpoints.
type QuizHandler struct {
	quizSvc *service.QuizService
}

func NewQuizHandler(quizSvc *service.QuizService) *QuizHandler {
	return &QuizHandler{quizSvc: quizSvc}
}

// CreateQuizRequest is the request body for creating a quiz.
type CreateQuizRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Create handles POST /v1/groups/{groupId}/quizzes
func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupId"]

	var req CreateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	quiz, err := h.quizSvc.CreateQuiz(r.Context(), groupID, middleware.GetUID(r.Context()), req.Question, req.Options)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

// List handles GET /v1/groups/{groupId}/quizzes
func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupId"]

	quizzes, err := h.quizSvc.ListQuizzes(r.Context(), groupID, middleware.GetUID(r.Context()))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"quizzes": quizzes})
}

// VoteRequest is the request body for voting.
type VoteRequest struct {
	Option int `json:"option"`
}

// Vote handles POST /v1/quizzes/{quizId}/vote
func (h *QuizHandler) Vote(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizId"]

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.quizSvc.Vote(r.Context(), quizID, middleware.GetUID(r.Context()), req.Option); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "voted"})
}

// Results handles GET /v1/quizzes/{quizId}/results
func (h *QuizHandler) Results(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizId"]

	results, err := h.quizSvc.Results(r.Context(), quizID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}
