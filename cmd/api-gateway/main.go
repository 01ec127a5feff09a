package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prudhivi99/guitar-store/internal/config"
	"github.com/prudhivi99/guitar-store/internal/discovery"
	"github.com/prudhivi99/guitar-store/internal/gateway"
	"github.com/prudhivi99/guitar-store/internal/logger"
)

func main() {
	cfg, err := config.LoadGateway()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level := (&config.Config{LogLevel: cfg.LogLevel}).SlogLevel()
	log, closer := logger.Setup(level, "")
	defer closer.Close()

	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var resolver gateway.Resolver
	consul, err := discovery.NewConsulClient(cfg.ConsulAddr, log)
	if err != nil {
		log.Warn("failed to connect to Consul, using fallback URL", "error", err, "fallback", cfg.FallbackURL)
	} else {
		resolver = consul
	}

	gw := gateway.New(resolver, cfg.Upstream, cfg.FallbackURL, log)
	go gw.Watch(ctx, cfg.PollInterval)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           gw.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("api gateway starting", "addr", cfg.HTTPAddr, "upstream", cfg.Upstream)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("gateway stopped", "error", err)
		os.Exit(1)
	}
}
