package main

import (
	"context"
	"log"
	"os"

	"github.com/M-ahmad144/Lymora-Backend/internal/config"
	"github.com/M-ahmad144/Lymora-Backend/internal/db"
	"github.com/M-ahmad144/Lymora-Backend/internal/migrate"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, 0)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	logger.Println("migrations applied")
}
