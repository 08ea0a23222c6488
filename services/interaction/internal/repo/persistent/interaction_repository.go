package persistent

import (
	"context"

	"cofeed/pkg/apperror"
	"cofeed/pkg/cursor"
	"cofeed/pkg/models"
	"cofeed/services/interaction/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InteractionRepository interface {
	ToggleLike(ctx context.Context, postID, userID string) (bool, error)
	IsLiked(ctx context.Context, postID, userID string) (bool, error)
	CreateComment(ctx context.Context, comment *entity.Comment) error
	GetComment(ctx context.Context, id string) (*entity.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	ListComments(ctx context.Context, postID string, after *cursor.Cursor, limit int) ([]entity.Comment, error)
	Counts(ctx context.Context, postID, viewerID string) (*entity.Counts, error)
}

type interactionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

// ToggleLike removes the like if present, otherwise inserts it. Both steps run
// in one transaction and the insert tolerates a concurrent duplicate, so two
// racing likes converge on a single row.
func (r *interactionRepository) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	liked := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		like := &models.Like{PostID: postID, UserID: userID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error; err != nil {
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, apperror.Storage("toggle like", err)
	}
	return liked, nil
}

func (r *interactionRepository) IsLiked(ctx context.Context, postID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	if err != nil {
		return false, apperror.Storage("check like", err)
	}
	return count > 0, nil
}

func (r *interactionRepository) CreateComment(ctx context.Context, comment *entity.Comment) error {
	commentModel := ToCommentModel(comment)
	if err := r.db.WithContext(ctx).Create(commentModel).Error; err != nil {
		return apperror.Storage("create comment", err)
	}
	*comment = ToCommentEntity(commentModel)
	return nil
}

func (r *interactionRepository) GetComment(ctx context.Context, id string) (*entity.Comment, error) {
	var commentModel models.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&commentModel).Error; err != nil {
		return nil, apperror.Storage("get comment", err)
	}
	comment := ToCommentEntity(&commentModel)
	return &comment, nil
}

func (r *interactionRepository) DeleteComment(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id)
	if result.Error != nil {
		return apperror.Storage("delete comment", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("comment %s", id)
	}
	return nil
}

// ListComments pages oldest first by (created_at, id).
func (r *interactionRepository) ListComments(ctx context.Context, postID string, after *cursor.Cursor, limit int) ([]entity.Comment, error) {
	query := r.db.WithContext(ctx).Where("post_id = ?", postID)
	if after != nil {
		query = query.Where("created_at > ? OR (created_at = ? AND id > ?)", after.CreatedAt, after.CreatedAt, after.ID)
	}

	var commentModels []models.Comment
	if err := query.Order("created_at ASC, id ASC").Limit(limit).Find(&commentModels).Error; err != nil {
		return nil, apperror.Storage("list comments", err)
	}

	comments := make([]entity.Comment, len(commentModels))
	for i := range commentModels {
		comments[i] = ToCommentEntity(&commentModels[i])
	}
	return comments, nil
}

func (r *interactionRepository) Counts(ctx context.Context, postID, viewerID string) (*entity.Counts, error) {
	db := r.db.WithContext(ctx)
	counts := &entity.Counts{PostID: postID}

	if err := db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&counts.Likes).Error; err != nil {
		return nil, apperror.Storage("count likes", err)
	}
	if err := db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&counts.Comments).Error; err != nil {
		return nil, apperror.Storage("count comments", err)
	}
	if err := db.Model(&models.Post{}).Where("shared_from_id = ?", postID).Count(&counts.Shares).Error; err != nil {
		return nil, apperror.Storage("count shares", err)
	}

	if viewerID != "" {
		liked, err := r.IsLiked(ctx, postID, viewerID)
		if err != nil {
			return nil, err
		}
		counts.LikedByViewer = liked
	}
	return counts, nil
}
