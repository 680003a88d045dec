// @title           Proto Review API
// @version         1.0
// @description     Design handoff review backend: positioned comments, share links and live updates.

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"proto-review-api/internal/client"
	"proto-review-api/internal/config"
	"proto-review-api/internal/database"
	"proto-review-api/internal/job"
	"proto-review-api/internal/metrics"
	"proto-review-api/internal/repository"
	"proto-review-api/internal/router"
	"proto-review-api/internal/ws"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting Proto Review API",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
	)

	// Initialize metrics
	m := metrics.New()

	// Connect to the database. A missing or late store never kills the
	// process; endpoints degrade to STORE_UNAVAILABLE until it arrives.
	var db *gorm.DB
	if cfg.Database.IsConfigured() {
		dbConfig := database.Config{
			DSN:             cfg.Database.GetDSN(),
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}

		onConnect := func(db *gorm.DB) {
			if err := database.AutoMigrate(db); err != nil {
				logger.Warn("Failed to run database migrations", zap.Error(err))
			}
			database.RegisterMetricsCallbacks(db, m)
		}

		db, err = database.New(dbConfig)
		if err != nil {
			logger.Warn("Failed to connect to database on startup, will retry in background",
				zap.Error(err))
			database.NewAsync(dbConfig, 5*time.Second, onConnect)
		} else {
			database.SetDB(db)
			onConnect(db)
			logger.Info("Database connected successfully")
		}
	} else {
		logger.Warn("Database credentials missing, comment endpoints will report store unavailable")
	}

	// Redis backs share link tokens; optional
	redisClient, err := database.NewRedis(cfg.Redis, logger)
	if err != nil {
		logger.Warn("Failed to connect to Redis, share links disabled", zap.Error(err))
	}

	// S3 backs comment screenshots; optional
	var s3Client client.S3ClientInterface
	if cfg.S3.Bucket != "" && cfg.S3.Region != "" {
		s3, err := client.NewS3Client(&cfg.S3)
		if err != nil {
			logger.Warn("Failed to initialize S3 client, screenshots disabled", zap.Error(err))
		} else {
			s3Client = s3
			logger.Info("S3 client initialized",
				zap.String("bucket", cfg.S3.Bucket),
				zap.String("region", cfg.S3.Region),
			)
		}
	} else {
		logger.Warn("S3 configuration incomplete, screenshots disabled")
	}

	// WebSocket hub for live comment events
	hub := ws.NewHub(m, logger)

	// Nightly purge of soft-deleted comments past retention
	purgeJob := job.NewPurgeJob(
		repository.NewCommentRepository(nil),
		s3Client,
		cfg.Purge.Retention,
		logger,
	)
	scheduler := cron.New()
	if _, err := scheduler.AddJob(cfg.Purge.Schedule, purgeJob); err != nil {
		logger.Warn("Failed to schedule purge job", zap.Error(err))
	} else {
		scheduler.Start()
		logger.Info("Purge job scheduled",
			zap.String("schedule", cfg.Purge.Schedule),
			zap.Duration("retention", cfg.Purge.Retention),
		)
	}

	// Setup router with all dependencies
	r := router.Setup(cfg, db, redisClient, s3Client, hub, m, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Proto Review API started successfully",
			zap.String("address", srv.Addr),
			zap.String("swagger", fmt.Sprintf("http://localhost:%s/swagger/index.html", cfg.Server.Port)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	scheduler.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
