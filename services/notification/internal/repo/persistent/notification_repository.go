package persistent

import (
	"context"

	"cofeed/pkg/apperror"
	"cofeed/pkg/models"

	"gorm.io/gorm"
)

// NotificationRepository reads the profile stubs used to render messages.
type NotificationRepository interface {
	GetUsername(ctx context.Context, userID string) (string, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) GetUsername(ctx context.Context, userID string) (string, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Select("id", "username").Where("id = ?", userID).Limit(1).Find(&users).Error
	if err != nil {
		return "", apperror.Storage("get username", err)
	}
	name, ok := ToUsernames(users)[userID]
	if !ok {
		return "", apperror.NotFound("user %s", userID)
	}
	return name, nil
}
