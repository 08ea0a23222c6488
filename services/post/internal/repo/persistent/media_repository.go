package persistent

import (
	"context"

	"cofeed/pkg/apperror"
	"cofeed/pkg/models"
	"cofeed/services/post/internal/entity"

	"gorm.io/gorm"
)

type MediaRepository interface {
	Attach(ctx context.Context, media *entity.Media) error
	GetByID(ctx context.Context, id string) (*entity.Media, error)
	ListByPost(ctx context.Context, postID string) ([]entity.Media, error)
	Delete(ctx context.Context, id string) error
}

type mediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

// Attach appends the item after the post's current last position.
func (r *mediaRepository) Attach(ctx context.Context, media *entity.Media) error {
	mediaModel := ToMediaModel(media)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int
		row := tx.Model(&models.PostMedia{}).
			Select("COALESCE(MAX(position), -1)").
			Where("post_id = ?", mediaModel.PostID).
			Row()
		if err := row.Scan(&last); err != nil {
			return err
		}

		mediaModel.Position = last + 1
		return tx.Create(mediaModel).Error
	})
	if err != nil {
		return apperror.Storage("attach media", err)
	}

	*media = ToMediaEntity(mediaModel)
	return nil
}

func (r *mediaRepository) GetByID(ctx context.Context, id string) (*entity.Media, error) {
	var mediaModel models.PostMedia
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&mediaModel).Error; err != nil {
		return nil, apperror.Storage("get media", err)
	}
	media := ToMediaEntity(&mediaModel)
	return &media, nil
}

func (r *mediaRepository) ListByPost(ctx context.Context, postID string) ([]entity.Media, error) {
	var mediaModels []models.PostMedia
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("position ASC, created_at ASC, id ASC").
		Find(&mediaModels).Error
	if err != nil {
		return nil, apperror.Storage("list media", err)
	}

	media := make([]entity.Media, len(mediaModels))
	for i := range mediaModels {
		media[i] = ToMediaEntity(&mediaModels[i])
	}
	return media, nil
}

func (r *mediaRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.PostMedia{}, "id = ?", id)
	if result.Error != nil {
		return apperror.Storage("delete media", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("media %s", id)
	}
	return nil
}
