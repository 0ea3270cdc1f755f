package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sylenia/secure-real-time-multiplayer-game/internal/config"
	"github.com/Sylenia/secure-real-time-multiplayer-game/internal/events"
	"github.com/Sylenia/secure-real-time-multiplayer-game/internal/game"
	"github.com/Sylenia/secure-real-time-multiplayer-game/internal/server"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	var publisher events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		p, err := events.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			logger.Error("connect to nats", "url", cfg.NATSURL, "error", err)
			os.Exit(1)
		}
		publisher = p
		logger.Info("publishing game events", "url", cfg.NATSURL, "subject", cfg.NATSSubject)
	}
	defer publisher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	world := game.NewWorld(cfg.Game, logger, game.WithPublisher(publisher))
	worldDone := make(chan struct{})
	go func() {
		world.Run(ctx)
		close(worldDone)
	}()

	srv := server.NewServer(world, cfg, logger)
	logger.Info("starting multiplayer game server", "port", cfg.Port)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server failed", "error", err)
		stop()
		<-worldDone
		publisher.Close()
		os.Exit(1)
	}

	<-worldDone
	logger.Info("server stopped")
}

func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: level == "debug",
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
