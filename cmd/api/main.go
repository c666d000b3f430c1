package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/scythe504/lobby-backend/internal/config"
	"github.com/scythe504/lobby-backend/internal/database"
	"github.com/scythe504/lobby-backend/internal/game"
	"github.com/scythe504/lobby-backend/internal/logger"
	"github.com/scythe504/lobby-backend/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := logger.Setup(cfg.LogLevel, cfg.AppEnv); err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("invalid log level")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []game.Option{game.WithRecordTimeout(cfg.RecordTimeout)}

	var db database.Service
	if cfg.DBURL != "" {
		db, err = database.New(ctx, cfg.DBURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open game archive")
		}
		defer db.Close()
		opts = append(opts, game.WithRecorder(db))
	} else {
		log.Info().Msg("DB_URL not set, game archive disabled")
	}

	lobby := game.NewLobby(game.NewRoomStore(), game.NewConnectionRegistry(), game.NewHub(), opts...)
	ws := game.NewWebSocketHandler(lobby, game.WSConfig{
		SendBuffer:     cfg.WSSendBuffer,
		WriteWait:      cfg.WSWriteWait,
		PongWait:       cfg.WSPongWait,
		MaxMessageSize: cfg.WSMaxMessageSize,
	})
	httpServer := server.NewHTTPServer(cfg, server.New(lobby, ws, db))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", httpServer.Addr).Msg("starting lobby server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return lobby.Rooms.RunReaper(gctx, cfg.RoomReapInterval, cfg.RoomIdleTTL)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
		}
		lobby.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("graceful shutdown complete")
}
