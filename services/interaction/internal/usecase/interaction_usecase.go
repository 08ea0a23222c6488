package usecase

import (
	"context"
	"strings"

	"cofeed/pkg/apperror"
	"cofeed/pkg/cursor"
	"cofeed/pkg/logger"
	"cofeed/pkg/models"
	"cofeed/pkg/queue"
	"cofeed/pkg/relation"
	"cofeed/pkg/visibility"
	"cofeed/services/interaction/internal/entity"
	"cofeed/services/interaction/internal/repo/persistent"
)

const (
	defaultShareBody    = "Shared a post"
	defaultCommentLimit = 20
	maxCommentLimit     = 100
)

type InteractionUseCase interface {
	ToggleLike(ctx context.Context, postID, userID string) (bool, error)
	AddComment(ctx context.Context, postID, userID, body string) (*entity.Comment, error)
	DeleteComment(ctx context.Context, commentID, userID string) error
	ListComments(ctx context.Context, postID, viewerID, after string, limit int) (*entity.CommentPage, error)
	Share(ctx context.Context, postID, userID string, message, privacy *string) (*entity.SharedPost, error)
	Counts(ctx context.Context, postID, viewerID string) (*entity.Counts, error)
}

type interactionUseCase struct {
	interactionRepo persistent.InteractionRepository
	postRepo        persistent.PostRepository
	graph           relation.Graph
	notifier        queue.Emitter
	logger          *logger.Logger
}

func NewInteractionUseCase(
	interactionRepo persistent.InteractionRepository,
	postRepo persistent.PostRepository,
	graph relation.Graph,
	notifier queue.Emitter,
	logger *logger.Logger,
) InteractionUseCase {
	return &interactionUseCase{
		interactionRepo: interactionRepo,
		postRepo:        postRepo,
		graph:           graph,
		notifier:        notifier,
		logger:          logger,
	}
}

func (uc *interactionUseCase) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	post, err := uc.visiblePost(ctx, postID, userID)
	if err != nil {
		return false, err
	}

	liked, err := uc.interactionRepo.ToggleLike(ctx, postID, userID)
	if err != nil {
		uc.logger.Error("Failed to toggle like on %s for %s: %v", postID, userID, err)
		return false, err
	}

	if liked && post.OwnerID != userID {
		uc.logger.Info("[NOTIFICATION QUEUE] like on post_id=%s by liker_id=%s for creator_id=%s", postID, userID, post.OwnerID)
		uc.notifier.Notify(post.OwnerID, queue.EventLike, map[string]interface{}{
			"post_id":  postID,
			"liker_id": userID,
		})
	}
	return liked, nil
}

func (uc *interactionUseCase) AddComment(ctx context.Context, postID, userID, body string) (*entity.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperror.Validation("comment body is empty")
	}

	post, err := uc.visiblePost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	comment := &entity.Comment{PostID: postID, AuthorID: userID, Body: body}
	if err := uc.interactionRepo.CreateComment(ctx, comment); err != nil {
		uc.logger.Error("Failed to add comment on %s: %v", postID, err)
		return nil, err
	}

	if post.OwnerID != userID {
		uc.notifier.Notify(post.OwnerID, queue.EventComment, map[string]interface{}{
			"post_id":    postID,
			"comment_id": comment.ID,
			"author_id":  userID,
		})
	}
	return comment, nil
}

func (uc *interactionUseCase) DeleteComment(ctx context.Context, commentID, userID string) error {
	comment, err := uc.interactionRepo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != userID {
		return apperror.NotAuthorized("only the author can delete comment %s", commentID)
	}
	return uc.interactionRepo.DeleteComment(ctx, commentID)
}

func (uc *interactionUseCase) ListComments(ctx context.Context, postID, viewerID, after string, limit int) (*entity.CommentPage, error) {
	if limit <= 0 {
		limit = defaultCommentLimit
	}
	if limit > maxCommentLimit {
		limit = maxCommentLimit
	}

	pos, err := cursor.Decode(after)
	if err != nil {
		return nil, err
	}
	if _, err := uc.visiblePost(ctx, postID, viewerID); err != nil {
		return nil, err
	}

	// one extra row tells whether another page exists
	comments, err := uc.interactionRepo.ListComments(ctx, postID, pos, limit+1)
	if err != nil {
		return nil, err
	}

	page := &entity.CommentPage{Comments: comments}
	if len(comments) > limit {
		page.Comments = comments[:limit]
		last := page.Comments[limit-1]
		page.NextCursor = cursor.Encode(last.CreatedAt, last.ID)
	}
	return page, nil
}

// Share creates a new post pointing at the origin. The origin's allow_share
// flag binds everyone, its owner included, and is checked before visibility.
func (uc *interactionUseCase) Share(ctx context.Context, postID, userID string, message, privacy *string) (*entity.SharedPost, error) {
	origin, err := uc.postRepo.GetPostRef(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !origin.AllowShare {
		return nil, apperror.NotAllowed("post %s does not allow sharing", postID)
	}
	if err := uc.ensureVisible(ctx, origin, userID); err != nil {
		return nil, err
	}

	p := models.PrivacyFriends
	if privacy != nil && strings.TrimSpace(*privacy) != "" {
		p, err = models.ParsePrivacy(*privacy)
		if err != nil {
			return nil, err
		}
	}

	body := defaultShareBody
	if message != nil && strings.TrimSpace(*message) != "" {
		body = strings.TrimSpace(*message)
	}

	share, err := uc.postRepo.CreateShare(ctx, userID, postID, body, p)
	if err != nil {
		uc.logger.Error("Failed to share %s for %s: %v", postID, userID, err)
		return nil, err
	}

	if origin.OwnerID != userID {
		uc.notifier.Notify(origin.OwnerID, queue.EventShare, map[string]interface{}{
			"post_id":   postID,
			"share_id":  share.ID,
			"sharer_id": userID,
		})
	}
	return share, nil
}

func (uc *interactionUseCase) Counts(ctx context.Context, postID, viewerID string) (*entity.Counts, error) {
	if _, err := uc.visiblePost(ctx, postID, viewerID); err != nil {
		return nil, err
	}
	return uc.interactionRepo.Counts(ctx, postID, viewerID)
}

// visiblePost loads the post and reports NotFound when the user may not see it.
func (uc *interactionUseCase) visiblePost(ctx context.Context, postID, userID string) (*entity.PostRef, error) {
	post, err := uc.postRepo.GetPostRef(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := uc.ensureVisible(ctx, post, userID); err != nil {
		return nil, err
	}
	return post, nil
}

func (uc *interactionUseCase) ensureVisible(ctx context.Context, post *entity.PostRef, userID string) error {
	connected := false
	if visibility.NeedsRelationship(post.Subject(), userID) && userID != "" {
		var err error
		connected, err = uc.graph.AreConnected(ctx, userID, post.OwnerID)
		if err != nil {
			return err
		}
	}
	if !visibility.CanView(post.Subject(), userID, connected) {
		return apperror.NotFound("post %s", post.ID)
	}
	return nil
}
