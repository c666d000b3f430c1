package server

import (
	"net/http"
	"time"

	"github.com/scythe504/lobby-backend/internal/config"
	"github.com/scythe504/lobby-backend/internal/database"
	"github.com/scythe504/lobby-backend/internal/game"
)

type Server struct {
	lobby *game.Lobby
	ws    *game.WebSocketHandler

	// nil when the game archive is disabled
	db database.Service
}

func New(lobby *game.Lobby, ws *game.WebSocketHandler, db database.Service) *Server {
	return &Server{
		lobby: lobby,
		ws:    ws,
		db:    db,
	}
}

// NewHTTPServer wraps the routes in an http.Server using the configured
// port.
func NewHTTPServer(cfg *config.Config, s *Server) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.RegisterRoutes(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
