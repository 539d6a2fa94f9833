package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/bookwormhq/bookworm-api/internal/config"
	"github.com/bookwormhq/bookworm-api/internal/database"
	"github.com/bookwormhq/bookworm-api/internal/handler"
	"github.com/bookwormhq/bookworm-api/internal/queue"
	"github.com/bookwormhq/bookworm-api/internal/repository"
	"github.com/bookwormhq/bookworm-api/internal/router"
	"github.com/bookwormhq/bookworm-api/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	images, err := storage.NewImageStore(cfg)
	if err != nil {
		log.Fatalf("image store init failed: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and feed cache disabled")
	}

	users := repository.NewUserRepo(db)
	books := repository.NewBookRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users)
	bookHandler := handler.NewBookHandler(cfg, books, images)

	// Retry failed cover deletions in the background.
	go func() {
		if err := queue.StartImageCleanupConsumer(images); err != nil {
			log.Printf("image cleanup consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, cfg, users, authHandler, bookHandler, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
