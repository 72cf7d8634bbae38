package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/janpisl/gowps/internal/config"
	"github.com/janpisl/gowps/internal/storage"
)

// The retrieval server: it exposes the file backend's target directory
// under the configured base URL path so stored outputs resolve for
// clients. The WPS protocol surface itself lives elsewhere and only
// consumes this module's handles and backends.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Config loaded (port: %d, storage backend: %s)", cfg.Server.Port, cfg.Storage.Backend)

	backend, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("Failed to build storage backend: %v", err)
	}
	if closer, ok := backend.(interface{ Close() }); ok {
		defer closer.Close()
	}
	log.Printf("Storage backend ready (%T)", backend)

	app := fiber.New()
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if cfg.Storage.Backend == "file" {
		app.Static("/outputs", cfg.Storage.Target, fiber.Static{
			Browse: false,
		})
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting retrieval server on %s", addr)
	log.Fatal(app.Listen(addr))
}
