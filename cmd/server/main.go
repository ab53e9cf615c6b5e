package main

import (
	"context"                             // context package is needed for Redis operations
	"jacket_marketplace/internal/api"     // Custom package for API handlers
	"jacket_marketplace/internal/config"  // Custom package for configuration
	"jacket_marketplace/internal/db"      // Database connection
	"jacket_marketplace/internal/payment" // Payment provider client
	"jacket_marketplace/internal/service" // Use cases
	"jacket_marketplace/internal/storage" // Photo storage
	"jacket_marketplace/internal/utils"   // Credential vault

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	// Connect to the database
	database, err := db.Open(cfg.DSN(), !cfg.IsProd)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Payout credentials are encrypted with one process-wide key
	crypto, err := utils.NewCryptoHelper(cfg.DecryptKey)
	if err != nil {
		logrus.Fatalf("invalid DECRYPT_KEY: %v", err)
	}

	// Photo storage; local development may run without a bucket
	var photos storage.PhotoStore
	if cfg.S3.Bucket != "" || cfg.IsProd {
		photos, err = storage.NewS3PhotoStore(context.Background(), cfg.S3.Bucket)
		if err != nil {
			logrus.Fatalf("failed to set up S3: %v", err)
		}
	} else {
		logrus.Warn("S3_BUCKET not set, keeping photos in memory")
		photos = storage.NewMemoryPhotoStore("http://localhost:" + cfg.AppPort + "/photos")
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := api.NewRouter(api.Deps{
		DB:             database,
		Redis:          redisClient,
		Users:          service.NewUserService(database, crypto, cfg.JWTSecret, cfg.JWTTTL),
		Jackets:        service.NewJacketService(database, photos),
		Carts:          service.NewCartService(database, crypto, payment.NewWiseFactory(cfg.Wise.BaseURL, cfg.Wise.Timeout), cfg.Wise),
		JWTSecret:      cfg.JWTSecret,
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: []string{"127.0.0.1"},
	})
	if err != nil {
		logrus.Fatalf("failed to set up router: %v", err)
	}

	logrus.Info("Server running on " + cfg.AppPort) // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
