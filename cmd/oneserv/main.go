package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Thanoche/OneServ/internal/auth"
	"github.com/Thanoche/OneServ/internal/cache"
	"github.com/Thanoche/OneServ/internal/config"
	"github.com/Thanoche/OneServ/internal/game"
	"github.com/Thanoche/OneServ/internal/ws"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := cache.InitRedis(ctx, cfg.RedisAddr); err != nil {
			logger.WithError(err).Warn("redis unavailable, action history disabled")
		} else {
			logger.WithField("addr", cfg.RedisAddr).Info("redis connected")
		}
		cancel()
	}

	manager := game.NewManager(logger)
	manager.BotDelay = cfg.BotDelay
	manager.ChallengeWindow = cfg.ChallengeWindow

	issuer := auth.NewIssuer(cfg.JWTSecret, 24*time.Hour)
	wsServer := ws.NewServer(manager, issuer, logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/ws", wsServer.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: r}

	go func() {
		logger.WithField("addr", cfg.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("shutdown failed")
	}
}
