package main

import (
	"context"
	"log"
	"os"

	"github.com/M-ahmad144/Lymora-Backend/internal/config"
	"github.com/M-ahmad144/Lymora-Backend/internal/db"
	"github.com/M-ahmad144/Lymora-Backend/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		logger.Fatal("SEED_ADMIN_PASSWORD is required")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, 0)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool, adminPassword); err != nil {
		logger.Fatalf("apply seed: %v", err)
	}

	logger.Println("seed data applied")
}
