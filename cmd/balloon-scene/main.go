package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/balloon-scene/internal/api"
	"github.com/mr1hm/balloon-scene/internal/config"
	"github.com/mr1hm/balloon-scene/internal/ingestion"
	"github.com/mr1hm/balloon-scene/internal/logging"
	"github.com/mr1hm/balloon-scene/internal/metrics"
	"github.com/mr1hm/balloon-scene/internal/scene"
	"github.com/mr1hm/balloon-scene/internal/stream"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)
	if cfg.Fires.MapKey == "" {
		slog.Warn("FIRMS_MAP_KEY not set, scenes will contain no fires")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	balloons := ingestion.NewBalloonClient(cfg.Balloons, m)
	fires := ingestion.NewFireClient(cfg.Fires, m)
	builder := scene.NewBuilder(cfg, balloons, fires)

	// Fan freshly built scenes out to SSE clients
	broadcaster := stream.NewBroadcaster()
	cache := scene.NewCache(builder.Build, cfg.Scene.CacheTTL, m)
	cache.OnRebuild(broadcaster.Broadcast)

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(cache, broadcaster, cache.TTL())
	router := api.NewRouter(handler, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), cfg.API.RateLimit)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	broadcaster.Close() // Close all streams gracefully

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
