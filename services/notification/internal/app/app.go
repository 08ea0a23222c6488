package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cofeed/pkg/config"
	"cofeed/pkg/jwt"
	"cofeed/pkg/logger"
	"cofeed/pkg/middleware"
	"cofeed/pkg/queue"
	notificationHTTP "cofeed/services/notification/internal/controller/http"
	"cofeed/services/notification/internal/repo/persistent"
	"cofeed/services/notification/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "cofeed/services/notification/docs" // Swagger docs
)

// handlerTimeout bounds the work done for one queue message.
const handlerTimeout = 10 * time.Second

func Run(cfg *config.Config, log *logger.Logger, db *gorm.DB, redisClient *redis.Client, queueClient *queue.Client) {
	jwtService := jwt.NewService(cfg.JWTSecret)

	// Initialize Repository
	notificationRepo := persistent.NewNotificationRepository(db)

	// Initialize UseCase
	var inspector usecase.QueueInspector
	if queueClient != nil {
		inspector = queueClient
	}
	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, redisClient, inspector, log)

	// Initialize HTTP handlers
	notificationHandler := notificationHTTP.NewNotificationHandler(notificationUseCase, redisClient, log, jwtService)

	// Setup router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// WebSocket endpoint - handles authentication internally via query parameter
	r.GET("/ws/notifications", notificationHandler.HandleWebSocket)

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtService))
	{
		api.GET("/notifications", notificationHandler.GetNotifications)
		api.GET("/notifications/queue", notificationHandler.QueueStatus)
		api.DELETE("/notifications/:post_id", notificationHandler.DeleteNotificationsByPostID)
		api.GET("/notifications/settings/:actor_id", notificationHandler.GetNotificationSettings)
		api.POST("/notifications/settings/:actor_id", notificationHandler.EnableNotifications)
		api.DELETE("/notifications/settings/:actor_id", notificationHandler.DisableNotifications)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Start processing notification queue
	if queueClient != nil {
		log.Info("Starting notification queue processor...")
		err := queueClient.ConsumeNotificationTasks(func(task queue.Task) error {
			log.Info("[NOTIFICATION HANDLER] Received %s task for user %s", task.Type, task.UserID)
			ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
			defer cancel()
			return notificationUseCase.HandleTask(ctx, task)
		})
		if err != nil {
			log.Error("Error starting notification queue consumer: %v", err)
		}
	} else {
		log.Warn("RabbitMQ unavailable, notification queue processor not started")
	}

	// Start server in a goroutine
	go func() {
		log.Info("Notification service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down notification service...")

	// The context is used to inform the server it has 5 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Close RabbitMQ connection
	if queueClient != nil {
		queueClient.Close()
	}

	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}

	// Close Redis connection
	if err := redisClient.Close(); err != nil {
		log.Error("Error closing Redis: %v", err)
	}

	log.Info("Notification service exited")
}
