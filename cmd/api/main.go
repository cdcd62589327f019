package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/M-ahmad144/Lymora-Backend/internal/config"
	"github.com/M-ahmad144/Lymora-Backend/internal/db"
	"github.com/M-ahmad144/Lymora-Backend/internal/httpserver"
	categoryrepo "github.com/M-ahmad144/Lymora-Backend/internal/repository/category"
	orderrepo "github.com/M-ahmad144/Lymora-Backend/internal/repository/order"
	productrepo "github.com/M-ahmad144/Lymora-Backend/internal/repository/product"
	userrepo "github.com/M-ahmad144/Lymora-Backend/internal/repository/user"
	categorysvc "github.com/M-ahmad144/Lymora-Backend/internal/service/category"
	ordersvc "github.com/M-ahmad144/Lymora-Backend/internal/service/order"
	productsvc "github.com/M-ahmad144/Lymora-Backend/internal/service/product"
	uploadsvc "github.com/M-ahmad144/Lymora-Backend/internal/service/upload"
	usersvc "github.com/M-ahmad144/Lymora-Backend/internal/service/user"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	userRepo := userrepo.NewPostgres(dbpool, logger)
	userService := usersvc.New(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	categoryRepo := categoryrepo.NewPostgres(dbpool)
	categoryService := categorysvc.New(categoryRepo)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	productService := productsvc.New(productRepo)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	orderService := ordersvc.New(orderRepo, productRepo)

	deps := httpserver.Deps{
		UserSvc:              userService,
		CategorySvc:          categoryService,
		ProductSvc:           productService,
		OrderSvc:             orderService,
		RateLimiter:          buildRateLimiter(cfg, logger),
		PayPalClientID:       cfg.PayPalClientID,
		PaymentWebhookSecret: cfg.PaymentWebhookSecret,
	}

	if cfg.MinioEndpoint != "" {
		uploadService, err := uploadsvc.New(uploadsvc.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			logger.Fatalf("init upload service: %v", err)
		}
		if err := uploadService.EnsureBucket(ctx); err != nil {
			logger.Fatalf("ensure upload bucket: %v", err)
		}
		deps.UploadSvc = uploadService
	} else {
		logger.Printf("minio not configured, uploads disabled")
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, deps)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

func buildRateLimiter(cfg config.Config, logger *log.Logger) gin.HandlerFunc {
	if cfg.RedisAddr == "" {
		logger.Printf("redis not configured, rate limiting disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	return httpserver.RateLimiter(client)
}
