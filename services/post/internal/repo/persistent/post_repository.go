package persistent

import (
	"context"

	"cofeed/pkg/apperror"
	"cofeed/pkg/models"
	"cofeed/services/post/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post, invites []entity.Invite) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*entity.Post, error)
	Update(ctx context.Context, post *entity.Post) error
	Delete(ctx context.Context, id string) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create stores the post, its initial media and the pending invites in one
// transaction. Media positions follow the slice order.
func (r *postRepository) Create(ctx context.Context, post *entity.Post, invites []entity.Invite) error {
	postModel := ToPostModel(post)
	mediaModels := make([]models.PostMedia, len(post.Media))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(postModel).Error; err != nil {
			return err
		}

		for i := range post.Media {
			mediaModels[i] = *ToMediaModel(&post.Media[i])
			mediaModels[i].PostID = postModel.ID
			mediaModels[i].Position = i
		}
		if len(mediaModels) > 0 {
			if err := tx.Create(&mediaModels).Error; err != nil {
				return err
			}
		}

		for i := range invites {
			invite := ToInviteModel(&invites[i])
			invite.PostID = postModel.ID
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(invite).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperror.Storage("create post", err)
	}

	*post = *ToPostEntity(postModel, nil, mediaModels)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	db := r.db.WithContext(ctx)

	var postModel models.Post
	if err := db.Where("id = ?", id).First(&postModel).Error; err != nil {
		return nil, apperror.Storage("get post", err)
	}

	coCreators, media, err := loadRelations(db, []string{id})
	if err != nil {
		return nil, err
	}
	return ToPostEntity(&postModel, coCreators[id], media[id]), nil
}

// ListByAuthor returns posts the user owns or co-created, newest first.
func (r *postRepository) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*entity.Post, error) {
	db := r.db.WithContext(ctx)

	coCreated := db.Model(&models.PostCoCreator{}).Select("post_id").Where("user_id = ?", authorID)
	query := db.Where("owner_id = ? OR id IN (?)", authorID, coCreated).Order("created_at DESC, id ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var postModels []models.Post
	if err := query.Find(&postModels).Error; err != nil {
		return nil, apperror.Storage("list posts by author", err)
	}
	if len(postModels) == 0 {
		return []*entity.Post{}, nil
	}

	ids := make([]string, len(postModels))
	for i := range postModels {
		ids[i] = postModels[i].ID
	}
	coCreators, media, err := loadRelations(db, ids)
	if err != nil {
		return nil, err
	}

	posts := make([]*entity.Post, len(postModels))
	for i := range postModels {
		id := postModels[i].ID
		posts[i] = ToPostEntity(&postModels[i], coCreators[id], media[id])
	}
	return posts, nil
}

// Update writes the editable columns only; ownership and timestamps of
// creation never change.
func (r *postRepository) Update(ctx context.Context, post *entity.Post) error {
	result := r.db.WithContext(ctx).
		Model(&models.Post{ID: post.ID}).
		Select("body", "privacy", "allow_share", "edited_at").
		Updates(ToPostModel(post))
	if result.Error != nil {
		return apperror.Storage("update post", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("post %s", post.ID)
	}
	return nil
}

// Delete removes the post row only. Comments, likes, media and reshares keep
// pointing at the id.
func (r *postRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id)
	if result.Error != nil {
		return apperror.Storage("delete post", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("post %s", id)
	}
	return nil
}

func loadRelations(db *gorm.DB, postIDs []string) (map[string][]models.PostCoCreator, map[string][]models.PostMedia, error) {
	var coCreators []models.PostCoCreator
	if err := db.Where("post_id IN ?", postIDs).Order("joined_at ASC, user_id ASC").Find(&coCreators).Error; err != nil {
		return nil, nil, apperror.Storage("load co-creators", err)
	}

	var media []models.PostMedia
	if err := db.Where("post_id IN ?", postIDs).Order("position ASC, created_at ASC, id ASC").Find(&media).Error; err != nil {
		return nil, nil, apperror.Storage("load media", err)
	}

	byPostCo := make(map[string][]models.PostCoCreator, len(postIDs))
	for _, c := range coCreators {
		byPostCo[c.PostID] = append(byPostCo[c.PostID], c)
	}
	byPostMedia := make(map[string][]models.PostMedia, len(postIDs))
	for _, m := range media {
		byPostMedia[m.PostID] = append(byPostMedia[m.PostID], m)
	}
	return byPostCo, byPostMedia, nil
}
