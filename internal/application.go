package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Brenn007/matchmaking-project/internal/config"
	"github.com/Brenn007/matchmaking-project/internal/repository"
	"github.com/Brenn007/matchmaking-project/internal/repository/storage"
	"github.com/Brenn007/matchmaking-project/internal/usecase"
	"github.com/Brenn007/matchmaking-project/transport/rest"
	"github.com/Brenn007/matchmaking-project/transport/socket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)

	notifier := socket.NewNotifier(logger)
	observers := usecase.MultiObserver{notifier}

	var history *repository.MatchRepository
	if !conf.Redis.Disabled {
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return ErrAddrNotFound
		}

		redisStorage, err := storage.New(ctx, redisAddrString)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		history = repository.NewMatchRepository(redisStorage, conf.Redis.TTL)
		recorder := repository.NewRecorder(logger, history, conf.Redis.RecorderSize)
		observers = append(observers, recorder)

		group.Go(func() error {
			return recorder.Run(ctx)
		})
	} else {
		log.Warn("redis is disabled, match history will not be stored")
	}

	registry := usecase.NewSessionRegistry(logger, observers)
	matchmaker := usecase.NewMatchmaker(logger, usecase.NewQueue(), registry, notifier)
	dispatcher := socket.NewDispatcher(logger, matchmaker, registry)

	connOptions := socket.ConnOptions{
		WriteTimeout: conf.WriteTimeout,
		OutboxSize:   conf.OutboxSize,
		MaxFrameSize: conf.MaxFrameSize,
	}

	var handlers rest.Handlers
	if history != nil {
		handlers = rest.NewHandlers(logger, matchmaker, history)
	} else {
		handlers = rest.NewHandlers(logger, matchmaker, nil)
	}

	group.Go(func() error {
		return matchmaker.Run(ctx, conf.MatchmakingInterval)
	})

	group.Go(func() error {
		log.Info("Starting socket server", "port", conf.SocketPort)
		if err := socket.NewServer(logger, dispatcher, connOptions).Start(ctx, conf.SocketPort); err != nil {
			return fmt.Errorf("socket server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.WebSocketPort)
		if err := socket.NewWebSocketServer(logger, dispatcher, connOptions).Start(ctx, conf.WebSocketPort); err != nil {
			return fmt.Errorf("WebSocket server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if err := rest.Start(ctx, conf.HTTPPort, rest.NewRouter(handlers)); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
