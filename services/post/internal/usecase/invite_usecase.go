package usecase

import (
	"context"
	"fmt"

	"cofeed/pkg/apperror"
	"cofeed/pkg/logger"
	"cofeed/pkg/models"
	"cofeed/pkg/queue"
	"cofeed/services/post/internal/entity"
	"cofeed/services/post/internal/repo/persistent"
)

type InviteUseCase interface {
	Invite(ctx context.Context, postID, inviterID, inviteeID string) (*entity.Invite, error)
	Respond(ctx context.Context, postID, inviteeID string, accept bool) (*entity.Invite, error)
	RemoveSelf(ctx context.Context, postID, userID string) error
	ListInvites(ctx context.Context, userID string) ([]entity.Invite, error)
}

type inviteUseCase struct {
	postRepo   persistent.PostRepository
	inviteRepo persistent.InviteRepository
	notifier   queue.Emitter
	logger     *logger.Logger
}

func NewInviteUseCase(
	postRepo persistent.PostRepository,
	inviteRepo persistent.InviteRepository,
	notifier queue.Emitter,
	logger *logger.Logger,
) InviteUseCase {
	return &inviteUseCase{
		postRepo:   postRepo,
		inviteRepo: inviteRepo,
		notifier:   notifier,
		logger:     logger,
	}
}

func (uc *inviteUseCase) Invite(ctx context.Context, postID, inviterID, inviteeID string) (*entity.Invite, error) {
	if inviteeID == "" {
		return nil, apperror.Validation("invitee is required")
	}

	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !post.CanInvite(inviterID) {
		return nil, apperror.NotAuthorized("user %s cannot invite to post %s", inviterID, postID)
	}
	if post.IsOwner(inviteeID) {
		return nil, apperror.Validation("the owner cannot be invited to their own post")
	}
	if _, ok := post.CoCreator(inviteeID); ok {
		return nil, fmt.Errorf("user %s on post %s: %w", inviteeID, postID, apperror.ErrAlreadyCoCreator)
	}

	invite := &entity.Invite{
		PostID:    postID,
		InviteeID: inviteeID,
		InviterID: inviterID,
	}
	created, err := uc.inviteRepo.Upsert(ctx, invite)
	if err != nil {
		return nil, err
	}
	if !created {
		// the co-creator list read above may predate a concurrent acceptance
		existing, err := uc.inviteRepo.Get(ctx, postID, inviteeID)
		if err == nil && existing.Status == models.InviteAccepted {
			return nil, fmt.Errorf("user %s on post %s: %w", inviteeID, postID, apperror.ErrAlreadyCoCreator)
		}
		return nil, fmt.Errorf("user %s on post %s: %w", inviteeID, postID, apperror.ErrAlreadyInvited)
	}

	uc.logger.Info("[INVITE] %s invited %s to post %s", inviterID, inviteeID, postID)
	uc.notifier.Notify(inviteeID, queue.EventCollabInvite, map[string]interface{}{
		"post_id":    postID,
		"inviter_id": inviterID,
	})
	return invite, nil
}

// Respond answers an invite once. Repeating the same answer returns the
// record as it is; changing a given answer is refused.
func (uc *inviteUseCase) Respond(ctx context.Context, postID, inviteeID string, accept bool) (*entity.Invite, error) {
	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	want := entity.StatusFor(accept)
	invite, changed, err := uc.inviteRepo.Respond(ctx, postID, inviteeID, want)
	if err != nil {
		return nil, err
	}

	if !changed {
		if invite.Status == want {
			return invite, nil
		}
		return nil, apperror.NotAllowed("invite to post %s was already %s", postID, invite.Status)
	}

	uc.logger.Info("[INVITE] %s %s invite to post %s", inviteeID, want, postID)
	if accept {
		uc.notifier.Notify(post.OwnerID, queue.EventCollabAccepted, map[string]interface{}{
			"post_id":       postID,
			"co_creator_id": inviteeID,
		})
	}
	return invite, nil
}

// RemoveSelf lets a co-creator leave. Media they uploaded stays on the post.
func (uc *inviteUseCase) RemoveSelf(ctx context.Context, postID, userID string) error {
	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if post.IsOwner(userID) {
		return apperror.NotAuthorized("the owner cannot leave post %s", postID)
	}
	if _, ok := post.CoCreator(userID); !ok {
		return apperror.NotFound("user %s is not a co-creator of post %s", userID, postID)
	}

	if err := uc.inviteRepo.RemoveCoCreator(ctx, postID, userID); err != nil {
		return err
	}
	uc.logger.Info("[INVITE] %s left post %s", userID, postID)
	return nil
}

func (uc *inviteUseCase) ListInvites(ctx context.Context, userID string) ([]entity.Invite, error) {
	return uc.inviteRepo.ListPending(ctx, userID)
}
