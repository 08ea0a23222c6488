package persistent

import (
	"context"

	"cofeed/pkg/apperror"
	"cofeed/pkg/models"
	"cofeed/services/interaction/internal/entity"

	"gorm.io/gorm"
)

// PostRepository is the interaction service's read of posts plus the one
// write it owns: reshares.
type PostRepository interface {
	GetPostRef(ctx context.Context, postID string) (*entity.PostRef, error)
	CreateShare(ctx context.Context, ownerID, originID, body string, privacy models.Privacy) (*entity.SharedPost, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) GetPostRef(ctx context.Context, postID string) (*entity.PostRef, error) {
	db := r.db.WithContext(ctx)

	var post models.Post
	if err := db.Select("id", "owner_id", "privacy", "allow_share").Where("id = ?", postID).First(&post).Error; err != nil {
		return nil, apperror.Storage("get post", err)
	}

	var coCreatorIDs []string
	err := db.Model(&models.PostCoCreator{}).
		Where("post_id = ?", postID).
		Order("joined_at ASC, user_id ASC").
		Pluck("user_id", &coCreatorIDs).Error
	if err != nil {
		return nil, apperror.Storage("get co-creators", err)
	}

	return ToPostRef(&post, coCreatorIDs), nil
}

func (r *postRepository) CreateShare(ctx context.Context, ownerID, originID, body string, privacy models.Privacy) (*entity.SharedPost, error) {
	post := &models.Post{
		OwnerID:      ownerID,
		Body:         &body,
		Privacy:      privacy,
		AllowShare:   true,
		SharedFromID: &originID,
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, apperror.Storage("create share", err)
	}
	return ToSharedPost(post), nil
}
