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
	"cofeed/pkg/relation"
	interactionHTTP "cofeed/services/interaction/internal/controller/http"
	"cofeed/services/interaction/internal/repo/persistent"
	"cofeed/services/interaction/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "cofeed/services/interaction/docs" // Swagger docs
)

func Run(cfg *config.Config, log *logger.Logger, db *gorm.DB, redisClient *redis.Client, queueClient *queue.Client) {
	jwtService := jwt.NewService(cfg.JWTSecret)

	var notifier queue.Emitter = queue.NopEmitter{}
	if queueClient != nil {
		notifier = queueClient
	}
	graph := relation.NewGraph(db, redisClient, cfg.RelationCacheTTL, log)

	// Initialize repositories
	interactionRepo := persistent.NewInteractionRepository(db)
	postRepo := persistent.NewPostRepository(db)

	// Initialize use cases
	interactionUseCase := usecase.NewInteractionUseCase(interactionRepo, postRepo, graph, notifier, log)

	// Initialize HTTP handlers
	interactionHandler := interactionHTTP.NewInteractionHandler(interactionUseCase, log)

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

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtService))
	api.Use(middleware.RateLimitMiddleware(redisClient, cfg.RateLimitPerMinute, time.Minute))

	{
		api.POST("/interactions/posts/:post_id/like", interactionHandler.LikePost)
		api.GET("/interactions/posts/:post_id/counts", interactionHandler.GetCounts)
		api.POST("/interactions/posts/:post_id/comments", interactionHandler.AddComment)
		api.GET("/interactions/posts/:post_id/comments", interactionHandler.ListComments)
		api.DELETE("/interactions/comments/:id", interactionHandler.DeleteComment)
		api.POST("/interactions/posts/:post_id/share", interactionHandler.SharePost)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Interaction service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down interaction service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis: %v", err)
		}
	}

	if queueClient != nil {
		queueClient.Close()
	}

	log.Info("Interaction service exited")
}
