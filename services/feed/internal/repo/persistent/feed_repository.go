package persistent

import (
	"context"

	"cofeed/pkg/apperror"
	"cofeed/pkg/cursor"
	"cofeed/pkg/models"
	"cofeed/services/feed/internal/entity"

	"gorm.io/gorm"
)

// FeedRepository reads the candidate window and enriches it. Every enrichment
// method takes the whole id set and issues one query, whatever the page size.
type FeedRepository interface {
	Candidates(ctx context.Context, viewerID string, after *cursor.Cursor, limit int) ([]entity.Candidate, error)
	Profiles(ctx context.Context, userIDs []string) (map[string]entity.Profile, error)
	Media(ctx context.Context, postIDs []string) (map[string][]entity.Media, error)
	Stats(ctx context.Context, postIDs []string, viewerID string) (map[string]entity.Stats, error)
	ExistingPosts(ctx context.Context, postIDs []string) (map[string]bool, error)
}

type feedRepository struct {
	db *gorm.DB
}

func NewFeedRepository(db *gorm.DB) FeedRepository {
	return &feedRepository{db: db}
}

type countRow struct {
	PostID string
	N      int64
}

// Candidates returns posts newest first with ties broken by ascending id. The
// filter only drops rows no viewer check could admit; the friends rule is
// applied by the caller.
func (r *feedRepository) Candidates(ctx context.Context, viewerID string, after *cursor.Cursor, limit int) ([]entity.Candidate, error) {
	db := r.db.WithContext(ctx)

	coCreated := db.Model(&models.PostCoCreator{}).Select("post_id").Where("user_id = ?", viewerID)
	query := db.Model(&models.Post{}).
		Where(db.Where("owner_id = ?", viewerID).
			Or("privacy IN ?", []models.Privacy{models.PrivacyPublic, models.PrivacyFriends}).
			Or("id IN (?)", coCreated))

	if after != nil {
		query = query.Where("created_at < ? OR (created_at = ? AND id > ?)", after.CreatedAt, after.CreatedAt, after.ID)
	}

	var rows []models.Post
	if err := query.Order("created_at DESC").Order("id ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, apperror.Storage("load feed window", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}

	var members []models.PostCoCreator
	err := db.Where("post_id IN ?", ids).
		Order("joined_at ASC").Order("user_id ASC").
		Find(&members).Error
	if err != nil {
		return nil, apperror.Storage("load co-creators", err)
	}
	byPost := make(map[string][]string, len(rows))
	for _, m := range members {
		byPost[m.PostID] = append(byPost[m.PostID], m.UserID)
	}

	candidates := make([]entity.Candidate, len(rows))
	for i := range rows {
		candidates[i] = ToCandidate(&rows[i])
		candidates[i].CoCreatorIDs = byPost[rows[i].ID]
	}
	return candidates, nil
}

func (r *feedRepository) Profiles(ctx context.Context, userIDs []string) (map[string]entity.Profile, error) {
	profiles := make(map[string]entity.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return profiles, nil
	}

	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, apperror.Storage("load profiles", err)
	}
	for i := range users {
		profiles[users[i].ID] = ToProfile(&users[i])
	}
	return profiles, nil
}

func (r *feedRepository) Media(ctx context.Context, postIDs []string) (map[string][]entity.Media, error) {
	media := make(map[string][]entity.Media, len(postIDs))
	if len(postIDs) == 0 {
		return media, nil
	}

	var rows []models.PostMedia
	err := r.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("position ASC").Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, apperror.Storage("load media", err)
	}
	for i := range rows {
		media[rows[i].PostID] = append(media[rows[i].PostID], ToMedia(&rows[i]))
	}
	return media, nil
}

func (r *feedRepository) Stats(ctx context.Context, postIDs []string, viewerID string) (map[string]entity.Stats, error) {
	stats := make(map[string]entity.Stats, len(postIDs))
	if len(postIDs) == 0 {
		return stats, nil
	}
	db := r.db.WithContext(ctx)

	var likes, comments, shares []countRow
	if err := db.Model(&models.Like{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&likes).Error; err != nil {
		return nil, apperror.Storage("count likes", err)
	}
	if err := db.Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&comments).Error; err != nil {
		return nil, apperror.Storage("count comments", err)
	}
	if err := db.Model(&models.Post{}).
		Select("shared_from_id AS post_id, COUNT(*) AS n").
		Where("shared_from_id IN ?", postIDs).
		Group("shared_from_id").
		Scan(&shares).Error; err != nil {
		return nil, apperror.Storage("count shares", err)
	}

	var liked []string
	if viewerID != "" {
		if err := db.Model(&models.Like{}).
			Where("user_id = ? AND post_id IN ?", viewerID, postIDs).
			Pluck("post_id", &liked).Error; err != nil {
			return nil, apperror.Storage("load viewer likes", err)
		}
	}

	for _, row := range likes {
		s := stats[row.PostID]
		s.Likes = row.N
		stats[row.PostID] = s
	}
	for _, row := range comments {
		s := stats[row.PostID]
		s.Comments = row.N
		stats[row.PostID] = s
	}
	for _, row := range shares {
		s := stats[row.PostID]
		s.Shares = row.N
		stats[row.PostID] = s
	}
	for _, id := range liked {
		s := stats[id]
		s.LikedByViewer = true
		stats[id] = s
	}
	return stats, nil
}

func (r *feedRepository) ExistingPosts(ctx context.Context, postIDs []string) (map[string]bool, error) {
	exists := make(map[string]bool, len(postIDs))
	if len(postIDs) == 0 {
		return exists, nil
	}

	var ids []string
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id IN ?", postIDs).Pluck("id", &ids).Error; err != nil {
		return nil, apperror.Storage("check origins", err)
	}
	for _, id := range ids {
		exists[id] = true
	}
	return exists, nil
}
