package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"lurdinha/internal/service"
	"lurdinha/internal/transport/rest/handler"
	"lurdinha/internal/transport/rest/middleware"
	"lurdinha/internal/transport/ws"
)

// Container holds all dependencies for the router.
type Container struct {
	AuthService  *service.AuthService
	RoomService  *service.RoomService
	GroupService *service.GroupService
	QuizService  *service.QuizService
	WSHub        *ws.Hub
}

// NewRouter creates the API router with all endpoints.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService)
	roomHandler := handler.NewRoomHandler(c.RoomService)
	groupHandler := handler.NewGroupHandler(c.GroupService)
	quizHandler := handler.NewQuizHandler(c.QuizService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/guest", authHandler.GuestLogin).Methods("POST", "OPTIONS")

	// WebSocket subscription (public with token in query param)
	v1.HandleFunc("/ws/rooms/{code}", wsHandler.RoomWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Authenticated routes
	authed := v1.NewRoute().Subrouter()
	authed.Use(authMW.RequireUser)

	authed.HandleFunc("/auth/me", authHandler.Me).Methods("GET", "OPTIONS")

	authed.HandleFunc("/rooms", roomHandler.Create).Methods("POST", "OPTIONS")
	authed.HandleFunc("/rooms/{code}", roomHandler.Get).Methods("GET", "OPTIONS")
	authed.HandleFunc("/rooms/{code}/join", roomHandler.Join).Methods("POST", "OPTIONS")
	authed.HandleFunc("/rooms/{code}/start", roomHandler.Start).Methods("POST", "OPTIONS")
	authed.HandleFunc("/rooms/{code}/answer", roomHandler.Answer).Methods("POST", "OPTIONS")
	authed.HandleFunc("/rooms/{code}/next", roomHandler.Next).Methods("POST", "OPTIONS")

	authed.HandleFunc("/groups", groupHandler.Create).Methods("POST", "OPTIONS")
	authed.HandleFunc("/groups", groupHandler.List).Methods("GET", "OPTIONS")
	authed.HandleFunc("/groups/{groupId}", groupHandler.Get).Methods("GET", "OPTIONS")
	authed.HandleFunc("/groups/{groupId}/join", groupHandler.Join).Methods("POST", "OPTIONS")
	authed.HandleFunc("/groups/{groupId}/quizzes", quizHandler.Create).Methods("POST", "OPTIONS")
	authed.HandleFunc("/groups/{groupId}/quizzes", quizHandler.List).Methods("GET", "OPTIONS")
	authed.HandleFunc("/quizzes/{quizId}/vote", quizHandler.Vote).Methods("POST", "OPTIONS")
	authed.HandleFunc("/quizzes/{quizId}/results", quizHandler.Results).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
