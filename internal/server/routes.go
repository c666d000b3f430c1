package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/lobby-backend/internal"
	"github.com/scythe504/lobby-backend/internal/game"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)

	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rooms", s.ListRoomsHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/rooms", s.CreateRoomHandler).Methods(http.MethodPost, http.MethodOptions)

	r.HandleFunc("/ws", s.ws.HandleWebSocket)

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CORS Headers
		w.Header().Set("Access-Control-Allow-Origin", "*") // Wildcard allows all origins
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false") // Credentials not allowed with wildcard origins

		// If it's a websocket upgrade, skip further CORS checks
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("[writeJSON] failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":      "ok",
		"rooms":       s.lobby.Rooms.Count(),
		"connections": s.lobby.Hub.Count(),
		"seated":      s.lobby.Registry.Count(),
	}

	status := http.StatusOK
	if s.db != nil {
		dbHealth := s.db.Health()
		resp["database"] = dbHealth
		if dbHealth["status"] != "up" {
			resp["status"] = "degraded"
		}
	}

	writeJSON(w, status, resp)
}

// ListRoomsHandler returns every room that is still waiting for players.
func (s *Server) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.lobby.Rooms.ListWaiting())
}

func (s *Server) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req internal.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	params := game.CreateRoomParams{
		Name:     req.Name,
		Password: req.Password,
		GameMode: req.GameMode,
	}
	if req.MaxPlayers != nil {
		if *req.MaxPlayers <= 0 {
			writeError(w, http.StatusBadRequest, "max_players must be positive")
			return
		}
		params.MaxPlayers = *req.MaxPlayers
	}

	room, err := s.lobby.Rooms.Create(params)
	if err != nil {
		if errors.Is(err, game.ErrValidation) {
			writeError(w, http.StatusBadRequest, "room name must not be empty")
			return
		}
		log.Error().Err(err).Msg("[CreateRoomHandler] failed to create room")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, internal.CreateRoomResponse{
		RoomId:      room.Id,
		Name:        room.Name,
		MaxPlayers:  room.MaxPlayers,
		HasPassword: room.HasPassword(),
	})
}
