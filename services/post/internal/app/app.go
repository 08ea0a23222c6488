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
	"cofeed/pkg/s3"
	postHTTP "cofeed/services/post/internal/controller/http"
	"cofeed/services/post/internal/repo/persistent"
	"cofeed/services/post/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "cofeed/services/post/docs" // Swagger docs
)

func Run(cfg *config.Config, log *logger.Logger, db *gorm.DB, s3Client *s3.Client, queueClient *queue.Client, redisClient *redis.Client) {
	jwtService := jwt.NewService(cfg.JWTSecret)

	var notifier queue.Emitter = queue.NopEmitter{}
	if queueClient != nil {
		notifier = queueClient
	}
	graph := relation.NewGraph(db, redisClient, cfg.RelationCacheTTL, log)

	// Initialize repositories
	postRepo := persistent.NewPostRepository(db)
	mediaRepo := persistent.NewMediaRepository(db)
	inviteRepo := persistent.NewInviteRepository(db)

	// Initialize use cases
	postUseCase := usecase.NewPostUseCase(postRepo, graph, notifier, log)
	mediaUseCase := usecase.NewMediaUseCase(postRepo, mediaRepo, s3Client, graph, cfg.UploadConcurrency, log)
	inviteUseCase := usecase.NewInviteUseCase(postRepo, inviteRepo, notifier, log)

	// Initialize HTTP handlers
	postHandler := postHTTP.NewPostHandler(postUseCase, mediaUseCase, cfg.MaxUploadItems, log)
	mediaHandler := postHTTP.NewMediaHandler(mediaUseCase, cfg.MaxUploadItems, log)
	inviteHandler := postHTTP.NewInviteHandler(inviteUseCase, log)

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
		api.POST("/posts", postHandler.CreatePost)
		api.GET("/posts/:id", postHandler.GetPost)
		api.PUT("/posts/:id", postHandler.UpdatePost)
		api.DELETE("/posts/:id", postHandler.DeletePost)
		api.GET("/posts/author/:user_id", postHandler.ListByAuthor)

		api.POST("/posts/:id/invites", inviteHandler.Invite)
		api.POST("/posts/:id/invites/respond", inviteHandler.Respond)
		api.DELETE("/posts/:id/co-creators/me", inviteHandler.RemoveSelf)
		api.GET("/invites", inviteHandler.ListInvites)

		api.POST("/posts/:id/media", mediaHandler.AttachMedia)
		api.GET("/posts/:id/media", mediaHandler.ListMedia)
		api.DELETE("/media/:id", mediaHandler.RemoveMedia)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Post service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down post service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown server first so in-flight requests can still reach the stores
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

	log.Info("Post service exited")
}
