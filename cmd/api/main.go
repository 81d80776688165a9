package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshua-takyi/servicios/internal/cache"
	"github.com/joshua-takyi/servicios/internal/config"
	"github.com/joshua-takyi/servicios/internal/connect"
	"github.com/joshua-takyi/servicios/internal/container"
	"github.com/joshua-takyi/servicios/internal/helpers"
	"github.com/joshua-takyi/servicios/internal/models"
	"github.com/joshua-takyi/servicios/internal/routes"
	"github.com/joshua-takyi/servicios/internal/uploads"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("Starting servicios API server", "environment", cfg.Environment)

	ctx := context.Background()

	db, err := connect.OpenDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database successfully", "driver", cfg.DatabaseDriver)

	var mongoClient *mongo.Client
	if cfg.MongoDBURI != "" {
		mongoClient, err = connect.MongoDBConnect(ctx, cfg.MongoDBURI, cfg.MongoDBPassword)
		if err != nil {
			logger.Error("Failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		logger.Info("Connected to MongoDB successfully")
	}

	var redisClient *redis.Client
	var responseCache cache.Cache = cache.NoopCache{}
	if cfg.RedisAddr != "" {
		redisClient, err = connect.RedisConnect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		responseCache = cache.NewRedisCache(redisClient)
		logger.Info("Connected to Redis successfully")
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize file storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	logger.Info("File storage ready", "driver", cfg.StorageDriver)

	tokens, err := helpers.NewTokenManager(ctx, cfg.JWTSecret, cfg.JWTTTL, cfg.JWTJWKSURL)
	if err != nil {
		logger.Error("Failed to initialize token manager", "error", err)
		os.Exit(1)
	}

	if mongoClient != nil {
		if err := models.MongodbNewRepo(mongoClient, cfg.MongoDBDatabase).EnsureIndexes(ctx); err != nil {
			logger.Warn("Failed to create provider view indexes", "error", err)
		}
	}

	appContainer := container.NewContainer(logger, cfg, db, mongoClient, responseCache, store, tokens)

	router := routes.SetupRoutes(appContainer)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	tokens.Close()
	if closeStore != nil {
		if err := closeStore(); err != nil {
			logger.Error("Error closing file storage", "error", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Error closing Redis", "error", err)
		}
	}
	if mongoClient != nil {
		if err := connect.MongoDBDisconnect(mongoClient); err != nil {
			logger.Error("Error disconnecting from MongoDB", "error", err)
		}
	}
	if err := connect.CloseDatabase(db); err != nil {
		logger.Error("Error closing database", "error", err)
	}

	logger.Info("Server exited")
}

// openStore builds the upload backend selected by STORAGE_DRIVER. The returned closer may be nil.
func openStore(ctx context.Context, cfg *config.Config) (uploads.Store, func() error, error) {
	switch cfg.StorageDriver {
	case "cloudinary":
		cld, err := connect.CloudinaryCredentials(cfg.CloudinaryName, cfg.CloudinaryKey, cfg.CloudinarySecret)
		if err != nil {
			return nil, nil, err
		}
		return uploads.NewCloudinaryStore(cld), nil, nil
	case "gcs":
		client, err := connect.GCSConnect(ctx, cfg.GCSCredentials)
		if err != nil {
			return nil, nil, err
		}
		return uploads.NewGCSStore(client, cfg.GCSBucket), client.Close, nil
	case "supabase":
		client, err := connect.SupabaseStorage(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			return nil, nil, err
		}
		return uploads.NewSupabaseStore(client, cfg.SupabaseBucket), nil, nil
	case "local":
		store, err := uploads.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
	return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelDebug
	if cfg.IsProduction() {
		level = slog.LevelInfo
	}
	if cfg.LogLevel != "" && os.Getenv("LOG_LEVEL") != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err == nil {
			level = parsed
		}
	}

	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}
