package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lnd-gateway/internal/common/config"
	"lnd-gateway/internal/common/middleware"
	"lnd-gateway/internal/gateway/handlers"
	"lnd-gateway/internal/gateway/repository"
	"lnd-gateway/internal/gateway/service"
	"lnd-gateway/internal/lnd"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Lightning Gateway
// ============================================================

func main() {
	cfg := config.Load()

	db, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(cfg.MigrationsPath); err != nil {
		log.Fatalf("init db: %v", err)
	}

	registry := service.NewRegistry()
	manager := service.NewManager(registry, lnd.Dial)

	// re-establish sessions for nodes connected before the last restart
	nodes, err := repo.ListNodes(context.Background())
	if err != nil {
		log.Printf("[GATEWAY] list nodes: %v", err)
	} else {
		manager.ReconnectAll(context.Background(), nodes)
	}

	handler := handlers.NewHandler(manager, repo)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Lightning Gateway",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", handlers.ReadinessProbe)

	// ============================================================
	// API Routes
	// ============================================================

	handler.Routes(app)

	// ============================================================
	// Server Start
	// ============================================================

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		log.Printf("[GATEWAY] shutting down")
		manager.Shutdown()
		if err := app.Shutdown(); err != nil {
			log.Printf("[GATEWAY] shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Lightning Gateway on %s (env: %s)", addr, cfg.Environment)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
