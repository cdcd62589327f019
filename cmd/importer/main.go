package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/M-ahmad144/Lymora-Backend/internal/config"
	"github.com/M-ahmad144/Lymora-Backend/internal/db"
	"github.com/M-ahmad144/Lymora-Backend/internal/importer"
	categoryrepo "github.com/M-ahmad144/Lymora-Backend/internal/repository/category"
	productrepo "github.com/M-ahmad144/Lymora-Backend/internal/repository/product"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to product catalog CSV")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString, 0)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, productrepo.NewPostgres(pool, logger), categoryrepo.NewPostgres(pool))
	imported, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed after %d products: %v", imported, err)
	}
	logger.Printf("imported %d products", imported)
}
