package http

import (
	"net/http"
	"strconv"
	"strings"

	"cofeed/pkg/apperror"
	"cofeed/pkg/jwt"
	"cofeed/pkg/logger"
	"cofeed/pkg/middleware"
	"cofeed/services/notification/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type NotificationHandler struct {
	notificationUseCase usecase.NotificationUseCase
	redisClient         *redis.Client
	logger              *logger.Logger
	jwtService          *jwt.Service
}

func NewNotificationHandler(notificationUseCase usecase.NotificationUseCase, redisClient *redis.Client, logger *logger.Logger, jwtService *jwt.Service) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
		redisClient:         redisClient,
		logger:              logger,
		jwtService:          jwtService,
	}
}

// GetNotifications godoc
// @Summary      Get user notifications
// @Description  Newest first from the user's inbox, which keeps the latest 100 for 30 days
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Number of notifications to return (max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	offset := 0
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsedOffset, err := strconv.Atoi(offsetStr); err == nil && parsedOffset >= 0 {
			offset = parsedOffset
		}
	}

	notifications, total, err := h.notificationUseCase.GetNotifications(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to get notifications: %v", err)
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
		"total":         total,
		"offset":        offset,
	})
}

// DeleteNotificationsByPostID godoc
// @Summary      Clear notifications about a post
// @Description  Remove every notification about a post once the user has opened it
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        post_id path string true "Post ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /notifications/{post_id} [delete]
func (h *NotificationHandler) DeleteNotificationsByPostID(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	deleted, err := h.notificationUseCase.DeleteNotificationsByPostID(c.Request.Context(), userID, c.Param("post_id"))
	if err != nil {
		h.logger.Error("Failed to delete notifications: %v", err)
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notifications deleted", "deleted": deleted})
}

// GetNotificationSettings godoc
// @Summary      Get notification settings for a user
// @Description  Whether notifications caused by the given user are delivered
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        actor_id path string true "User whose activity notifies the caller"
// @Success      200  {object}  map[string]interface{}
// @Router       /notifications/settings/{actor_id} [get]
func (h *NotificationHandler) GetNotificationSettings(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	enabled, err := h.notificationUseCase.GetNotificationSettings(c.Request.Context(), userID, c.Param("actor_id"))
	if err != nil {
		h.logger.Error("Failed to get notification settings: %v", err)
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"enabled": enabled})
}

// EnableNotifications godoc
// @Summary      Unmute a user
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        actor_id path string true "User to unmute"
// @Success      200  {object}  map[string]interface{}
// @Router       /notifications/settings/{actor_id} [post]
func (h *NotificationHandler) EnableNotifications(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	if err := h.notificationUseCase.EnableNotifications(c.Request.Context(), userID, c.Param("actor_id")); err != nil {
		h.logger.Error("Failed to enable notifications: %v", err)
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notifications enabled", "enabled": true})
}

// DisableNotifications godoc
// @Summary      Mute a user
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        actor_id path string true "User to mute"
// @Success      200  {object}  map[string]interface{}
// @Router       /notifications/settings/{actor_id} [delete]
func (h *NotificationHandler) DisableNotifications(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	if err := h.notificationUseCase.DisableNotifications(c.Request.Context(), userID, c.Param("actor_id")); err != nil {
		h.logger.Error("Failed to disable notifications: %v", err)
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notifications disabled", "enabled": false})
}

// QueueStatus godoc
// @Summary      Notification queue backlog
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /notifications/queue [get]
func (h *NotificationHandler) QueueStatus(c *gin.Context) {
	length, err := h.notificationUseCase.QueueLength()
	if err != nil {
		h.logger.Error("Failed to get queue length: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Queue unavailable", "code": "internal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"queue_length": length})
}

// HandleWebSocket streams live notifications. Browsers cannot set headers on
// a websocket handshake, so the token may also come as ?token=.
func (h *NotificationHandler) HandleWebSocket(c *gin.Context) {
	userID, err := h.websocketUser(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection to WebSocket: %v", err)
		return
	}
	defer conn.Close()

	h.logger.Info("WebSocket connected for user %s", userID)

	ctx := c.Request.Context()
	pubsub := h.redisClient.Subscribe(ctx, usecase.ChannelFor(userID))
	defer pubsub.Close()

	redisChannel := pubsub.Channel()
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case msg, ok := <-redisChannel:
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
					h.logger.Error("Failed to write WebSocket message: %v", err)
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("WebSocket read error: %v", err)
			}
			break
		}
	}

	close(done)
	h.logger.Info("WebSocket disconnected for user %s", userID)
}

func (h *NotificationHandler) websocketUser(c *gin.Context) (string, error) {
	if userID, err := middleware.CurrentUserID(c); err == nil {
		return userID, nil
	}

	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		return "", apperror.ErrNotSignedIn
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil || claims.UserID == "" {
		return "", apperror.ErrNotSignedIn
	}
	return claims.UserID, nil
}
