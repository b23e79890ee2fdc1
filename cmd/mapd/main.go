package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/mapbridge/internal/adapters/http"
	natsadapter "github.com/samirrijal/mapbridge/internal/adapters/nats"
	"github.com/samirrijal/mapbridge/internal/adapters/providers"
	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
	"github.com/samirrijal/mapbridge/internal/core/usecases"
	"github.com/samirrijal/mapbridge/internal/pkg/config"
	"github.com/samirrijal/mapbridge/internal/pkg/logging"
	"github.com/samirrijal/mapbridge/internal/pkg/telemetry"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load("mapd")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// NATS carries native commands to the host pages and map events out.
	// Without it the adapters keep their state locally and hosts report back
	// over HTTP.
	var (
		sink      ports.CommandSink
		publisher ports.EventPublisher
		natsConn  *nats.Conn
	)
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL, natsadapter.PublisherOptions{
			MoveEndRate:  cfg.Events.MoveEndRate,
			MoveEndBurst: cfg.Events.MoveEndBurst,
		})
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			sink, publisher = pub, pub

			// Raw NATS connection for WebSocket relay
			natsConn, err = natsadapter.RawConn(cfg.NATS.URL)
			if err != nil {
				slog.Warn("nats ws conn unavailable", "error", err)
			}
		}
	}

	registry := providers.NewRegistry(cfg.Providers.Keys(), sink)
	manager := usecases.NewManager(registry, publisher, usecases.ManagerConfig{
		DefaultProvider: domain.ProviderID(cfg.Map.DefaultProvider),
		Viewport:        usecases.Viewport{Width: cfg.Map.Width, Height: cfg.Map.Height},
		EqualityMode:    cfg.EqualityMode(),
		Debug:           cfg.Map.Debug,
	}, logger)
	defer manager.Close()

	if publisher != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, logger)
		if err != nil {
			slog.Warn("nats host subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			if err := sub.SubscribeHost(ctx, manager.HandleHost); err != nil {
				slog.Warn("subscribe host notifications", "error", err)
			}
		}
	}

	deps := &http.Dependencies{
		Sessions: manager,
		Registry: registry,
		NATS:     natsConn,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "mapbridge",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("map server starting", "addr", addr, "default_provider", cfg.Map.DefaultProvider, "nats", natsConn != nil)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
