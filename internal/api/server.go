package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/foundermafstat/interactive-board/pkg/types"
)

// SessionRegistry is the slice of the registry the API needs; declared here
// to avoid coupling the HTTP layer to the concrete implementation.
type SessionRegistry interface {
	CreateRoom() *types.Room
	GetRoom(id string) (*types.Room, error)
	GetStats() map[string]int
}

// HubStats exposes subscription counts for the health probe.
type HubStats interface {
	GetStats() map[string]int
}

// Server is the HTTP surface consumed by the display UI and the join-URL
// generator. No business logic lives here, only HTTP handling and JSON.
type Server struct {
	registry SessionRegistry
	hub      HubStats
	router   *http.ServeMux
}

// NewServer creates the API server and wires its routes.
func NewServer(registry SessionRegistry, hub HubStats) *Server {
	s := &Server{
		registry: registry,
		hub:      hub,
		router:   http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Handle("/api/sessions", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.handleSessions))))
	s.router.Handle("/api/sessions/", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.handleSessionByID))))
	s.router.Handle("/api/health", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.healthCheck))))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
	MaxUsers  int    `json:"maxUsers"`
}

type SessionResponse struct {
	SessionID string    `json:"sessionId"`
	UserCount int       `json:"userCount"`
	MaxUsers  int       `json:"maxUsers"`
	CreatedAt time.Time `json:"createdAt"`
}

type HealthResponse struct {
	Status      string         `json:"status"`
	Timestamp   time.Time      `json:"timestamp"`
	Rooms       map[string]int `json:"rooms"`
	Connections map[string]int `json:"connections"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createSession(w, r)
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	default:
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	if i := strings.IndexByte(sessionID, '/'); i >= 0 {
		sessionID = sessionID[:i]
	}
	if sessionID == "" {
		s.sendError(w, "Session ID required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getSession(w, r, sessionID)
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	default:
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// createSession allocates a fresh room. The caller turns the id into a join
// URL; how is not this server's concern.
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	room := s.registry.CreateRoom()

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(CreateSessionResponse{
		SessionID: room.ID,
		MaxUsers:  room.MaxParticipants,
	})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	room, err := s.registry.GetRoom(sessionID)
	if err != nil {
		if errors.Is(err, types.ErrRoomNotFound) {
			s.sendError(w, "Session not found", http.StatusNotFound)
		} else {
			s.sendError(w, "Failed to get session", http.StatusInternalServerError)
		}
		return
	}

	room.Lock()
	resp := SessionResponse{
		SessionID: room.ID,
		UserCount: len(room.Participants),
		MaxUsers:  room.MaxParticipants,
		CreatedAt: room.CreatedAt,
	}
	room.Unlock()

	json.NewEncoder(w).Encode(resp)
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Rooms:     s.registry.GetStats(),
	}
	if s.hub != nil {
		resp.Connections = s.hub.GetStats()
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) sendError(w http.ResponseWriter, message string, code int) {
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(code),
		Code:    code,
		Message: message,
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
