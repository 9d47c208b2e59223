package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/reelnet/backend/internal/auth"
	"github.com/reelnet/backend/internal/cache"
	"github.com/reelnet/backend/internal/database"
	"github.com/reelnet/backend/internal/engagement"
	"github.com/reelnet/backend/internal/handlers"
	"github.com/reelnet/backend/internal/logger"
	"github.com/reelnet/backend/internal/middleware"
	"github.com/reelnet/backend/internal/notify"
	"github.com/reelnet/backend/internal/presence"
	"github.com/reelnet/backend/internal/social"
	"github.com/reelnet/backend/internal/telemetry"
	"go.uber.org/zap"
)

const serviceName = "reelnet-backend"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment")
	}

	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "server.log"
	}
	if err := logger.Initialize(os.Getenv("LOG_LEVEL"), logFile); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("Reelnet backend starting")

	if err := database.Initialize(); err != nil {
		logger.Log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis is optional: presence and profile caching degrade gracefully.
	var redisClient *cache.RedisClient
	if os.Getenv("REDIS_DISABLED") != "true" {
		var err error
		redisClient, err = cache.NewRedisClient(
			os.Getenv("REDIS_HOST"),
			os.Getenv("REDIS_PORT"),
			os.Getenv("REDIS_PASSWORD"),
		)
		if err != nil {
			logger.Log.Warn("redis unavailable, presence and profile cache degraded", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// OpenTelemetry tracing
	samplingRate := 1.0
	if v := os.Getenv("OTEL_SAMPLING_RATE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			samplingRate = parsed
		}
	}
	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  serviceName,
		Environment:  os.Getenv("ENVIRONMENT"),
		OTLPEndpoint: os.Getenv("OTLP_ENDPOINT"),
		Enabled:      os.Getenv("TRACING_ENABLED") == "true",
		SamplingRate: samplingRate,
	})
	if err != nil {
		logger.Log.Warn("tracing disabled", zap.Error(err))
	}
	if tp != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
	}

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		logger.Log.Fatal("JWT_SECRET environment variable is required")
	}
	authService := auth.NewService(jwtSecret)

	// Services
	notifyService := notify.NewService()
	socialService := social.NewService()
	engagementService := engagement.NewService(notifyService)
	presenceService := presence.NewService(redisClient)
	profileCache := cache.NewProfileCache(redisClient)

	h := handlers.New(socialService, notifyService, engagementService, presenceService, profileCache)

	if os.Getenv("ENVIRONMENT") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	if tp != nil {
		r.Use(middleware.TracingMiddleware(serviceName))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(auth.Middleware(authService))
	{
		users := api.Group("/users")
		{
			users.GET("/me", h.GetMe)
			users.PUT("/me", h.UpdateProfile)
			users.GET("/me/privacy", h.GetPrivacySettings)
			users.PUT("/me/privacy", h.UpdatePrivacySettings)
			users.GET("/me/activity-status", h.GetActivitySettings)
			users.PUT("/me/activity-status", h.UpdateActivitySettings)
			users.GET("/me/follow-requests", h.ListFollowRequests)
			users.GET("/me/follow-requests/count", h.CountFollowRequests)
			users.GET("/me/bookmarks", h.GetBookmarks)

			users.GET("/:id/profile", h.GetUserProfile)
			users.GET("/:id/presence", h.GetUserPresence)
			users.POST("/:id/follow", h.FollowUser)
			users.DELETE("/:id/follow", h.UnfollowUser)
			users.GET("/:id/follow-status", h.GetFollowStatus)
			users.GET("/:id/followers", h.GetFollowers)
			users.GET("/:id/following", h.GetFollowing)
		}

		requests := api.Group("/follow-requests")
		{
			requests.POST("/:id/accept", h.AcceptFollowRequest)
			requests.POST("/:id/reject", h.RejectFollowRequest)
			requests.DELETE("/:id", h.CancelFollowRequest)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", h.GetNotifications)
			notifications.GET("/counts", h.GetNotificationCounts)
			notifications.POST("/read", h.MarkNotificationsRead)
			notifications.DELETE("/:id", h.DismissNotification)
		}

		reels := api.Group("/reels")
		{
			reels.POST("/:id/like", h.LikeReel)
			reels.DELETE("/:id/like", h.UnlikeReel)
			reels.POST("/:id/share", h.ShareReel)
			reels.POST("/:id/bookmark", h.BookmarkReel)
			reels.DELETE("/:id/bookmark", h.UnbookmarkReel)
			reels.POST("/:id/comments", h.CreateComment)
			reels.GET("/:id/comments", h.ListComments)
		}

		comments := api.Group("/comments")
		{
			comments.POST("/:id/like", h.LikeComment)
		}

		presenceGroup := api.Group("/presence")
		{
			presenceGroup.POST("/heartbeat", h.Heartbeat)
			presenceGroup.GET("/radar", h.GetRadar)
		}

		twoFactor := api.Group("/auth/2fa")
		{
			twoFactor.GET("/status", h.Get2FAStatus)
			twoFactor.POST("/enable", h.Enable2FA)
			twoFactor.POST("/verify", h.Verify2FA)
			twoFactor.POST("/disable", h.Disable2FA)
			twoFactor.POST("/backup-codes", h.RegenerateBackupCodes)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8787"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("forced shutdown", zap.Error(err))
	}

	logger.Log.Info("server exited")
}
