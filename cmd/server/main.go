// Package main runs the talleres HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tallerhub/backend/config"
	"github.com/tallerhub/backend/internal/auth"
	"github.com/tallerhub/backend/internal/middleware"
	"github.com/tallerhub/backend/internal/registrations"
	"github.com/tallerhub/backend/internal/security"
	"github.com/tallerhub/backend/internal/talleres"
	"github.com/tallerhub/backend/internal/tools"
	"github.com/tallerhub/backend/internal/webhook"
	"github.com/tallerhub/backend/pkg/database"
	"github.com/tallerhub/backend/pkg/queue"
	"github.com/tallerhub/backend/pkg/redis"
	"github.com/tallerhub/backend/pkg/response"
	"github.com/tallerhub/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.ImagesBucket == "" {
		logger.Info("object storage disabled: AWS_S3_IMAGES_BUCKET not set")
	} else {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ImagesBucket:         cfg.AWS.ImagesBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	// Security
	securityRepo := security.NewRepository(pool)
	monitor := security.NewMonitor(securityRepo, os.Getenv("PHONE_REGION"), logger)
	securityHandler := security.NewHandler(securityRepo)

	// Auth (admin surfaces)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, monitor, logger)

	// Catalog
	tallerRepo := talleres.NewRepository(pool)
	tallerHandler := talleres.NewHandler(tallerRepo, s3Client, logger)
	toolRepo := tools.NewRepository(pool)
	toolHandler := tools.NewHandler(toolRepo, s3Client, logger)

	// Registration flow with best-effort webhook notification
	registrationRepo := registrations.NewRepository(pool)
	dlq := queue.NewQueue(rdb.Client, logger)
	notifier := webhook.NewNotifier(registrationRepo, tallerRepo, cfg.Webhook, dlq, logger)
	registrationHandler := registrations.NewHandler(registrationRepo, notifier, monitor, logger)
	registrationAdmin := registrations.NewAdminHandler(registrationRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public catalog + registration
	api := router.Group("/api")
	{
		api.GET("/talleres", tallerHandler.List)
		api.GET("/talleres/:id", tallerHandler.GetByID)
		api.GET("/herramientas", toolHandler.List)
		api.POST("/register",
			middleware.RateLimit(rdb, "register", cfg.RateLimit.RegisterLimit, cfg.RateLimit.WindowSeconds, monitor, logger),
			registrationHandler.Register)
		api.POST("/auth/login",
			middleware.RateLimit(rdb, "login", cfg.RateLimit.LoginLimit, cfg.RateLimit.WindowSeconds, monitor, logger),
			authHandler.Login)
	}

	// Admin (dashboard/backoffice; JWT required)
	admin := router.Group("/api/admin")
	admin.Use(middleware.JWT(jwtService))
	{
		admin.GET("/users", middleware.RequireRole("admin"), authHandler.List)
		admin.POST("/users", middleware.RequireRole("admin"), authHandler.CreateUser)

		admin.GET("/talleres", tallerHandler.List)
		admin.POST("/talleres", tallerHandler.Create)
		admin.PATCH("/talleres/:id", tallerHandler.Update)
		admin.DELETE("/talleres/:id", middleware.RequireRole("admin"), tallerHandler.Delete)
		admin.POST("/talleres/:id/image", tallerHandler.UploadImage)
		admin.GET("/talleres/:id/registros", registrationAdmin.ListByTaller)

		admin.GET("/herramientas", toolHandler.List)
		admin.POST("/herramientas", toolHandler.Create)
		admin.PATCH("/herramientas/:id", toolHandler.Update)
		admin.DELETE("/herramientas/:id", middleware.RequireRole("admin"), toolHandler.Delete)
		admin.POST("/herramientas/:id/image", toolHandler.UploadImage)

		admin.GET("/security/events", middleware.RequireRole("admin"), securityHandler.ListEvents)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
