package usecase

import (
	"context"
	"strings"
	"time"

	"cofeed/pkg/apperror"
	"cofeed/pkg/logger"
	"cofeed/pkg/models"
	"cofeed/pkg/queue"
	"cofeed/pkg/relation"
	"cofeed/pkg/visibility"
	"cofeed/services/post/internal/entity"
	"cofeed/services/post/internal/repo/persistent"
)

type PostUseCase interface {
	CreatePost(ctx context.Context, ownerID string, body *string, privacy string, allowShare bool, media []entity.NewMedia, coCreatorIDs []string) (*entity.Post, error)
	GetPost(ctx context.Context, postID, viewerID string) (*entity.Post, error)
	ListByAuthor(ctx context.Context, authorID, viewerID string, limit, offset int) ([]*entity.Post, error)
	UpdatePost(ctx context.Context, postID, callerID string, patch entity.PostPatch) (*entity.Post, error)
	DeletePost(ctx context.Context, postID, callerID string) error
}

type postUseCase struct {
	postRepo persistent.PostRepository
	graph    relation.Graph
	notifier queue.Emitter
	logger   *logger.Logger
}

func NewPostUseCase(
	postRepo persistent.PostRepository,
	graph relation.Graph,
	notifier queue.Emitter,
	logger *logger.Logger,
) PostUseCase {
	return &postUseCase{
		postRepo: postRepo,
		graph:    graph,
		notifier: notifier,
		logger:   logger,
	}
}

// CreatePost stores the post with its media and turns every requested
// co-creator into a pending invite. Nobody joins a post without accepting.
func (uc *postUseCase) CreatePost(ctx context.Context, ownerID string, body *string, privacy string, allowShare bool, media []entity.NewMedia, coCreatorIDs []string) (*entity.Post, error) {
	if ownerID == "" {
		return nil, apperror.ErrNotSignedIn
	}

	p, err := models.ParsePrivacy(privacy)
	if err != nil {
		return nil, err
	}

	body = normalizeBody(body)
	if body == nil && len(media) == 0 {
		return nil, apperror.Validation("a post needs a body or at least one media item")
	}

	post := &entity.Post{
		OwnerID:    ownerID,
		Body:       body,
		Privacy:    p,
		AllowShare: allowShare,
		Media:      make([]entity.Media, 0, len(media)),
	}
	for _, m := range media {
		kind, err := models.ParseMediaKind(string(m.Kind))
		if err != nil {
			return nil, err
		}
		uploader := m.UploaderID
		if uploader == "" {
			uploader = ownerID
		}
		post.Media = append(post.Media, entity.Media{
			URL:        m.Ref.URL,
			ObjectKey:  m.Ref.Key,
			Kind:       kind,
			UploaderID: uploader,
		})
	}

	invitees := inviteeIDs(ownerID, coCreatorIDs)
	invites := make([]entity.Invite, len(invitees))
	for i, id := range invitees {
		invites[i] = entity.Invite{
			InviteeID: id,
			InviterID: ownerID,
			Status:    models.InviteInvited,
		}
	}

	if err := uc.postRepo.Create(ctx, post, invites); err != nil {
		uc.logger.Error("Failed to create post for %s: %v", ownerID, err)
		return nil, err
	}

	for _, id := range invitees {
		uc.notifier.Notify(id, queue.EventCollabInvite, map[string]interface{}{
			"post_id":    post.ID,
			"inviter_id": ownerID,
		})
	}

	uc.logger.Info("Post %s created by %s with %d media and %d invites", post.ID, ownerID, len(post.Media), len(invitees))
	return post, nil
}

// GetPost hides posts the viewer may not see behind NotFound.
func (uc *postUseCase) GetPost(ctx context.Context, postID, viewerID string) (*entity.Post, error) {
	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	ok, err := canView(ctx, uc.graph, post, viewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NotFound("post %s", postID)
	}
	return post, nil
}

func (uc *postUseCase) ListByAuthor(ctx context.Context, authorID, viewerID string, limit, offset int) ([]*entity.Post, error) {
	posts, err := uc.postRepo.ListByAuthor(ctx, authorID, limit, offset)
	if err != nil {
		return nil, err
	}

	var owners []string
	for _, post := range posts {
		if visibility.NeedsRelationship(post.Subject(), viewerID) {
			owners = append(owners, post.OwnerID)
		}
	}
	connected, err := uc.graph.BatchConnected(ctx, viewerID, owners)
	if err != nil {
		return nil, err
	}

	visible := make([]*entity.Post, 0, len(posts))
	for _, post := range posts {
		if visibility.CanView(post.Subject(), viewerID, connected[post.OwnerID]) {
			visible = append(visible, post)
		}
	}
	return visible, nil
}

func (uc *postUseCase) UpdatePost(ctx context.Context, postID, callerID string, patch entity.PostPatch) (*entity.Post, error) {
	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !post.IsAuthor(callerID) {
		return nil, apperror.NotAuthorized("only the owner or a co-creator can edit post %s", postID)
	}
	if patch.Empty() {
		return nil, apperror.Validation("nothing to update")
	}

	if patch.Body != nil {
		post.Body = normalizeBody(patch.Body)
	}
	if patch.Privacy != nil {
		p, err := models.ParsePrivacy(*patch.Privacy)
		if err != nil {
			return nil, err
		}
		post.Privacy = p
	}
	if patch.AllowShare != nil {
		post.AllowShare = *patch.AllowShare
	}

	if !post.HasBody() && len(post.Media) == 0 {
		return nil, apperror.Validation("a post needs a body or at least one media item")
	}

	now := time.Now().UTC()
	post.EditedAt = &now

	if err := uc.postRepo.Update(ctx, post); err != nil {
		uc.logger.Error("Failed to update post %s: %v", postID, err)
		return nil, err
	}
	return post, nil
}

// DeletePost is owner-only. Co-creators leave with RemoveSelf instead.
func (uc *postUseCase) DeletePost(ctx context.Context, postID, callerID string) error {
	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if !post.IsOwner(callerID) {
		return apperror.NotAuthorized("only the owner can delete post %s", postID)
	}

	if err := uc.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	uc.logger.Info("Post %s deleted by %s", postID, callerID)
	return nil
}

func canView(ctx context.Context, graph relation.Graph, post *entity.Post, viewerID string) (bool, error) {
	subject := post.Subject()
	connected := false
	if visibility.NeedsRelationship(subject, viewerID) && viewerID != "" {
		var err error
		connected, err = graph.AreConnected(ctx, viewerID, post.OwnerID)
		if err != nil {
			return false, err
		}
	}
	return visibility.CanView(subject, viewerID, connected), nil
}

func normalizeBody(body *string) *string {
	if body == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*body)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// inviteeIDs drops blanks, the owner and repeats while keeping request order.
func inviteeIDs(ownerID string, ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || id == ownerID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
