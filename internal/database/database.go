package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/lobby-backend/internal"
)

// Service is the archive of games that left the lobby. Rooms themselves
// live only in memory; nothing here is read back to rebuild them.
type Service interface {
	// Health returns a map of health status information.
	Health() map[string]string

	// RecordGameStarted stores one started game.
	RecordGameStarted(ctx context.Context, record internal.GameRecord) error

	// CountGames returns how many games were archived for a room.
	CountGames(ctx context.Context, roomId string) (int, error)

	// Close terminates the connection pool.
	Close()
}

type service struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS game_sessions (
	id         BIGSERIAL PRIMARY KEY,
	room_id    TEXT        NOT NULL,
	room_name  TEXT        NOT NULL,
	game_mode  TEXT        NOT NULL,
	players    JSONB       NOT NULL,
	started_at TIMESTAMPTZ NOT NULL
)`

// New connects to Postgres and makes sure the archive table exists.
func New(ctx context.Context, connStr string) (Service, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database: migrate: %w", err)
	}

	log.Info().Msg("[database] connected, game archive ready")
	return &service{pool: pool}, nil
}

func (s *service) RecordGameStarted(ctx context.Context, record internal.GameRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return fmt.Errorf("database: encode players: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO game_sessions (room_id, room_name, game_mode, players, started_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		record.RoomId, record.RoomName, record.GameMode, players, record.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("database: insert game session for room %s: %w", record.RoomId, err)
	}
	return nil
}

func (s *service) CountGames(ctx context.Context, roomId string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM game_sessions WHERE room_id = $1`, roomId).Scan(&n)
	return n, err
}

// Health checks the health of the database connection by pinging it.
// It returns a map with keys indicating various health statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.pool.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		log.Error().Err(err).Msg("[database] health check failed")
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	poolStats := s.pool.Stat()
	stats["total_connections"] = fmt.Sprintf("%d", poolStats.TotalConns())
	stats["idle_connections"] = fmt.Sprintf("%d", poolStats.IdleConns())
	stats["acquired_connections"] = fmt.Sprintf("%d", poolStats.AcquiredConns())
	stats["max_connections"] = fmt.Sprintf("%d", poolStats.MaxConns())

	if poolStats.AcquiredConns() >= poolStats.MaxConns() {
		stats["message"] = "The database is experiencing heavy load."
	}

	return stats
}

func (s *service) Close() {
	log.Info().Msg("[database] closing connection pool")
	s.pool.Close()
}
