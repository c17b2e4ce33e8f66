package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/chatgames/bot"
	"github.com/wricardo/mcp-training/chatgames/game/service"
	"github.com/wricardo/mcp-training/chatgames/game/session"
	"github.com/wricardo/mcp-training/chatgames/logging"
	"github.com/wricardo/mcp-training/chatgames/transport/websocket"
)

// Dispatcher processes one inbound chat message.
type Dispatcher interface {
	OnText(ctx context.Context, userID, displayName, text string) bot.Result
}

// Server represents the REST API server
type Server struct {
	service    service.GameService
	dispatcher Dispatcher
	hub        *websocket.Hub
	router     *mux.Router
	logger     *zap.Logger
}

// NewServer creates a new API server. hub may be nil when no websocket
// transport is running.
func NewServer(gameService service.GameService, dispatcher Dispatcher, hub *websocket.Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		service:    gameService,
		dispatcher: dispatcher,
		hub:        hub,
		router:     mux.NewRouter(),
		logger:     logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.requestLogger)

	api := s.router.PathPrefix("/api").Subrouter()

	// Chat
	api.HandleFunc("/messages", s.handleMessage).Methods("POST")

	// Sessions
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{user}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{user}", s.handleDeleteSession).Methods("DELETE")

	// Diagnostics
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type loggerKey struct{}

// requestLogger tags each request with an ID and logs it
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger, id := logging.WithRequestID(s.logger)
		w.Header().Set("X-Request-ID", id)
		logger.Debug("http request", zap.String("method", r.Method), zap.String("path", r.URL.Path))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), loggerKey{}, logger)))
	})
}

func (s *Server) requestLog(r *http.Request) *zap.Logger {
	if logger, ok := r.Context().Value(loggerKey{}).(*zap.Logger); ok {
		return logger
	}
	return s.logger
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{"error": message, "code": status})
}

// MessageRequest is an inbound chat event
type MessageRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Text        string `json:"text"`
}

// Chat Handlers

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.Text = strings.TrimSpace(req.Text)
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	result := s.dispatcher.OnText(r.Context(), req.UserID, req.DisplayName, req.Text)
	s.requestLog(r).Info("message dispatched",
		zap.String("user_id", req.UserID),
		zap.Stringer("route", result.Route),
		zap.Int("replies", len(result.Replies)))

	// Mirror replies to the user's chat connections.
	if s.hub != nil && len(result.Replies) > 0 {
		s.hub.Deliver(result.Replies...)
	}
	if result.Replies == nil {
		result.Replies = []bot.Reply{}
	}

	respondJSON(w, http.StatusOK, result)
}

// Session Handlers

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if kind := r.URL.Query().Get("kind"); kind != "" {
		want, err := session.ParseKind(kind)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filtered := sessions[:0]
		for _, info := range sessions {
			if info.Kind == want {
				filtered = append(filtered, info)
			}
		}
		sessions = filtered
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user"]

	info, err := s.service.ActiveSession(r.Context(), userID)
	if err != nil {
		if errors.Is(err, session.ErrNoActiveSession) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user"]

	result, err := s.service.Quit(r.Context(), userID)
	if err != nil {
		if errors.Is(err, session.ErrNoActiveSession) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.requestLog(r).Info("session ended by admin", zap.String("user_id", userID))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"kind":    result.Kind,
		"ended":   true,
	})
}

// Diagnostics

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{"status": "healthy"}
	if stats, err := s.service.Stats(r.Context()); err == nil {
		response["active_sessions"] = stats.ActiveSessions
	}
	respondJSON(w, http.StatusOK, response)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket transport disabled", http.StatusServiceUnavailable)
		return
	}
	userID := r.URL.Query().Get("user")
	if userID == "" {
		http.Error(w, "user parameter required", http.StatusBadRequest)
		return
	}

	s.hub.ServeWS(w, r, userID, r.URL.Query().Get("name"))
}
