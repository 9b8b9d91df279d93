package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/sharepad/sharepad/internal/application/config"
	"github.com/sharepad/sharepad/internal/application/constant"
	"github.com/sharepad/sharepad/internal/application/metric"
	"github.com/sharepad/sharepad/internal/infra/adapters/memory"
	"github.com/sharepad/sharepad/internal/infra/adapters/postgres"
	"github.com/sharepad/sharepad/internal/infra/adapters/postgres/repository"
	"github.com/sharepad/sharepad/internal/infra/ports/http/handlers"
	"github.com/sharepad/sharepad/internal/infra/ports/http/server"
	"github.com/sharepad/sharepad/internal/usecase"
)

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: slog.LevelInfo},
			),
		),
	)

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	dbConn, err := postgres.NewPostgres(ctx, cfg.Postgres.DSN())
	if err != nil {
		slog.Error("connect to postgres", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer dbConn.Close()

	userRepo := repository.NewUserRepo(dbConn)
	roomRepo := repository.NewRoomRepo(dbConn)
	registry := memory.NewSessionRegistry()

	saver := usecase.NewRoomSaver(roomRepo, cfg.SaveInterval)

	userUsecase := usecase.NewUserUsecase([]byte(cfg.JWTSecret), userRepo)
	roomUsecase := usecase.NewRoomUsecase(roomRepo, userRepo)
	collabUsecase := usecase.NewCollabUsecase(registry, roomRepo, saver)

	authHandler := handlers.NewAuthHandler(cfg, userUsecase)
	roomHandler := handlers.NewRoomHandler(roomUsecase, userUsecase)
	wsHandler := handlers.NewWebSocketHandler(cfg, collabUsecase, userUsecase)

	echoSrv := server.New(cfg, authHandler, roomHandler, wsHandler)

	metricsSrv := metric.NewServer()

	echoSrvCh := make(chan error, 1)
	metricsSrvCh := make(chan error, 1)

	go func() {
		echoSrvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	go func() {
		metricsSrvCh <- metricsSrv.Start(":" + cfg.MetricPort)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down servers due to context cancel")
	case err := <-echoSrvCh:
		slog.Error(
			"HTTP server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	case err := <-metricsSrvCh:
		slog.Error(
			"Metrics server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	}

	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	if err := echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
	}

	if err := metricsSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
	}

	// Flush any unsaved room content before the process exits.
	saver.Close()
}
