package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cofeed/pkg/apperror"
	"cofeed/pkg/logger"
	"cofeed/pkg/queue"
	"cofeed/services/notification/internal/entity"
	"cofeed/services/notification/internal/repo/persistent"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	inboxSize = 100
	inboxTTL  = 30 * 24 * time.Hour
)

// QueueInspector reports the backlog of the notification queue.
type QueueInspector interface {
	GetQueueLength() (int, error)
}

type NotificationUseCase interface {
	HandleTask(ctx context.Context, task queue.Task) error
	GetNotifications(ctx context.Context, userID string, limit, offset int) ([]entity.Notification, int64, error)
	DeleteNotificationsByPostID(ctx context.Context, userID, postID string) (int, error)
	GetNotificationSettings(ctx context.Context, userID, actorID string) (bool, error)
	EnableNotifications(ctx context.Context, userID, actorID string) error
	DisableNotifications(ctx context.Context, userID, actorID string) error
	QueueLength() (int, error)
}

// template renders one event type. actorKey names the payload field holding
// the user who caused the event.
type template struct {
	actorKey string
	title    string
	message  string
}

var templates = map[string]template{
	queue.EventCollabInvite:   {actorKey: "inviter_id", title: "Collaboration Invite", message: "%s invited you to co-create a post"},
	queue.EventCollabAccepted: {actorKey: "co_creator_id", title: "Invite Accepted", message: "%s accepted your collaboration invite"},
	queue.EventLike:           {actorKey: "liker_id", title: "New Like!", message: "%s liked your post"},
	queue.EventComment:        {actorKey: "author_id", title: "New Comment", message: "%s commented on your post"},
	queue.EventShare:          {actorKey: "sharer_id", title: "Post Shared", message: "%s shared your post"},
}

type notificationUseCase struct {
	notificationRepo persistent.NotificationRepository
	redisClient      *redis.Client
	queue            QueueInspector
	logger           *logger.Logger
}

// NewNotificationUseCase builds the use case. inspector may be nil when the
// broker is down; QueueLength then fails.
func NewNotificationUseCase(notificationRepo persistent.NotificationRepository, redisClient *redis.Client, inspector QueueInspector, logger *logger.Logger) NotificationUseCase {
	return &notificationUseCase{
		notificationRepo: notificationRepo,
		redisClient:      redisClient,
		queue:            inspector,
		logger:           logger,
	}
}

func (uc *notificationUseCase) HandleTask(ctx context.Context, task queue.Task) error {
	tpl, ok := templates[task.Type]
	if !ok {
		uc.logger.Error("[NOTIFICATION HANDLER] Unknown notification type: %s, task=%+v", task.Type, task)
		return fmt.Errorf("unknown notification type: %s", task.Type)
	}

	actorID := task.PayloadString(tpl.actorKey)
	postID := task.PayloadString("post_id")
	if actorID == "" || postID == "" {
		uc.logger.Error("[NOTIFICATION HANDLER] Invalid %s task: missing %s or post_id, task=%+v", task.Type, tpl.actorKey, task)
		return fmt.Errorf("invalid %s task: missing required fields", task.Type)
	}

	enabled, err := uc.GetNotificationSettings(ctx, task.UserID, actorID)
	if err != nil {
		uc.logger.Warn("[NOTIFICATION HANDLER] Failed to check settings for user %s, actor %s: %v (assuming enabled)", task.UserID, actorID, err)
	} else if !enabled {
		uc.logger.Info("[NOTIFICATION HANDLER] Notifications from %s muted by %s, skipping %s", actorID, task.UserID, task.Type)
		return nil
	}

	actorName, err := uc.notificationRepo.GetUsername(ctx, actorID)
	if err != nil {
		uc.logger.Warn("[NOTIFICATION HANDLER] Failed to get username for %s: %v", actorID, err)
		actorName = "Someone"
	}

	createdAt := task.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	notification := &entity.Notification{
		ID:        uuid.New().String(),
		UserID:    task.UserID,
		Title:     tpl.title,
		Message:   fmt.Sprintf(tpl.message, actorName),
		Type:      task.Type,
		ActorID:   actorID,
		Data:      task.Payload,
		CreatedAt: createdAt.UTC().Format(time.RFC3339),
	}

	if err := uc.deliver(ctx, notification); err != nil {
		uc.logger.Error("[NOTIFICATION HANDLER] Failed to deliver %s notification to user %s: %v", task.Type, task.UserID, err)
		return err
	}

	uc.logger.Info("[NOTIFICATION HANDLER] Delivered %s notification to user %s about post %s", task.Type, task.UserID, postID)
	return nil
}

func (uc *notificationUseCase) GetNotifications(ctx context.Context, userID string, limit, offset int) ([]entity.Notification, int64, error) {
	key := inboxKey(userID)

	raw, err := uc.redisClient.LRange(ctx, key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, 0, apperror.Storage("get notifications", err)
	}

	notifications := make([]entity.Notification, 0, len(raw))
	for _, item := range raw {
		var notification entity.Notification
		if err := json.Unmarshal([]byte(item), &notification); err == nil {
			notifications = append(notifications, notification)
		}
	}

	total, err := uc.redisClient.LLen(ctx, key).Result()
	if err != nil {
		return nil, 0, apperror.Storage("count notifications", err)
	}
	return notifications, total, nil
}

// DeleteNotificationsByPostID clears every notification about a post, used
// once the user has opened it.
func (uc *notificationUseCase) DeleteNotificationsByPostID(ctx context.Context, userID, postID string) (int, error) {
	if postID == "" {
		return 0, apperror.Validation("post id is required")
	}
	key := inboxKey(userID)

	raw, err := uc.redisClient.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return 0, apperror.Storage("get notifications", err)
	}

	deleted := 0
	for _, item := range raw {
		var notification entity.Notification
		if err := json.Unmarshal([]byte(item), &notification); err != nil {
			continue
		}
		if pID, _ := notification.Data["post_id"].(string); pID != postID {
			continue
		}
		n, err := uc.redisClient.LRem(ctx, key, 1, item).Result()
		if err != nil {
			return deleted, apperror.Storage("delete notification", err)
		}
		deleted += int(n)
	}
	return deleted, nil
}

func (uc *notificationUseCase) GetNotificationSettings(ctx context.Context, userID, actorID string) (bool, error) {
	value, err := uc.redisClient.Get(ctx, settingsKey(userID, actorID)).Result()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, apperror.Storage("get notification settings", err)
	}
	return value != "false", nil
}

func (uc *notificationUseCase) EnableNotifications(ctx context.Context, userID, actorID string) error {
	if actorID == "" {
		return apperror.Validation("actor id is required")
	}
	if err := uc.redisClient.Del(ctx, settingsKey(userID, actorID)).Err(); err != nil {
		return apperror.Storage("enable notifications", err)
	}
	uc.logger.Info("Enabled notifications for user %s from %s", userID, actorID)
	return nil
}

func (uc *notificationUseCase) DisableNotifications(ctx context.Context, userID, actorID string) error {
	if actorID == "" {
		return apperror.Validation("actor id is required")
	}
	if err := uc.redisClient.Set(ctx, settingsKey(userID, actorID), "false", 0).Err(); err != nil {
		return apperror.Storage("disable notifications", err)
	}
	uc.logger.Info("Disabled notifications for user %s from %s", userID, actorID)
	return nil
}

func (uc *notificationUseCase) QueueLength() (int, error) {
	if uc.queue == nil {
		return 0, fmt.Errorf("queue client is not available")
	}
	return uc.queue.GetQueueLength()
}

// deliver stores the notification in the user's capped inbox and publishes it
// to any live websocket subscribers.
func (uc *notificationUseCase) deliver(ctx context.Context, notification *entity.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	key := inboxKey(notification.UserID)
	pipe := uc.redisClient.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, inboxSize-1)
	pipe.Expire(ctx, key, inboxTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	// the inbox already holds it, so a failed publish only delays delivery
	subscribers, err := uc.redisClient.Publish(ctx, ChannelFor(notification.UserID), payload).Result()
	if err != nil {
		uc.logger.Warn("[NOTIFICATION HANDLER] Failed to publish to %s: %v", ChannelFor(notification.UserID), err)
		return nil
	}
	uc.logger.Debug("[NOTIFICATION HANDLER] Published to %s, subscribers=%d", ChannelFor(notification.UserID), subscribers)
	return nil
}

func inboxKey(userID string) string {
	return fmt.Sprintf("notifications:%s", userID)
}

// ChannelFor is the pub/sub channel live notifications for userID go out on.
func ChannelFor(userID string) string {
	return fmt.Sprintf("notifications:%s", userID)
}

func settingsKey(userID, actorID string) string {
	return fmt.Sprintf("notification_settings:%s:%s", userID, actorID)
}
