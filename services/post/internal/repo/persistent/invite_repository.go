package persistent

import (
	"context"

	"cofeed/pkg/apperror"
	"cofeed/pkg/models"
	"cofeed/services/post/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InviteRepository interface {
	Get(ctx context.Context, postID, inviteeID string) (*entity.Invite, error)
	Upsert(ctx context.Context, invite *entity.Invite) (bool, error)
	Respond(ctx context.Context, postID, inviteeID string, status models.InviteStatus) (*entity.Invite, bool, error)
	RemoveCoCreator(ctx context.Context, postID, userID string) error
	ListPending(ctx context.Context, inviteeID string) ([]entity.Invite, error)
}

type inviteRepository struct {
	db *gorm.DB
}

func NewInviteRepository(db *gorm.DB) InviteRepository {
	return &inviteRepository{db: db}
}

func (r *inviteRepository) Get(ctx context.Context, postID, inviteeID string) (*entity.Invite, error) {
	var inviteModel models.CollaborationInvite
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND invitee_id = ?", postID, inviteeID).
		First(&inviteModel).Error
	if err != nil {
		return nil, apperror.Storage("get invite", err)
	}
	return ToInviteEntity(&inviteModel), nil
}

// Upsert inserts a fresh invite, or revives a declined one in place. It
// reports false when a live (invited or accepted) record already holds the key.
func (r *inviteRepository) Upsert(ctx context.Context, invite *entity.Invite) (bool, error) {
	inviteModel := ToInviteModel(invite)
	inviteModel.Status = models.InviteInvited
	inviteModel.CanEdit = false
	inviteModel.RespondedAt = nil
	if inviteModel.CreatedAt.IsZero() {
		inviteModel.CreatedAt = r.db.NowFunc()
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "invitee_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"inviter_id", "status", "can_edit", "created_at", "responded_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Table: "collaboration_invites", Name: "status"}, Value: string(models.InviteDeclined)},
		}},
	}).Create(inviteModel)
	if result.Error != nil {
		return false, apperror.Storage("upsert invite", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	*invite = *ToInviteEntity(inviteModel)
	return true, nil
}

// Respond moves an invited record to status. The update only matches while
// the record is still invited, so a concurrent second answer changes nothing.
// On acceptance the invitee joins the co-creator set in the same transaction.
// The returned flag reports whether this call made the transition.
func (r *inviteRepository) Respond(ctx context.Context, postID, inviteeID string, status models.InviteStatus) (*entity.Invite, bool, error) {
	var inviteModel models.CollaborationInvite
	changed := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := tx.NowFunc()
		accepted := status == models.InviteAccepted

		result := tx.Model(&models.CollaborationInvite{}).
			Where("post_id = ? AND invitee_id = ? AND status = ?", postID, inviteeID, string(models.InviteInvited)).
			Updates(map[string]interface{}{
				"status":       string(status),
				"can_edit":     accepted,
				"responded_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		changed = result.RowsAffected == 1

		if changed && accepted {
			coCreator := &models.PostCoCreator{
				PostID:   postID,
				UserID:   inviteeID,
				CanEdit:  true,
				JoinedAt: now,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(coCreator).Error; err != nil {
				return err
			}
		}

		return tx.Where("post_id = ? AND invitee_id = ?", postID, inviteeID).First(&inviteModel).Error
	})
	if err != nil {
		return nil, false, apperror.Storage("respond to invite", err)
	}
	return ToInviteEntity(&inviteModel), changed, nil
}

// RemoveCoCreator drops the membership and its invite record so the user can
// be invited again later.
func (r *inviteRepository) RemoveCoCreator(ctx context.Context, postID, userID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.PostCoCreator{}, "post_id = ? AND user_id = ?", postID, userID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperror.NotFound("user %s is not a co-creator of post %s", userID, postID)
		}
		return tx.Delete(&models.CollaborationInvite{}, "post_id = ? AND invitee_id = ?", postID, userID).Error
	})
	if err != nil {
		return apperror.Storage("remove co-creator", err)
	}
	return nil
}

func (r *inviteRepository) ListPending(ctx context.Context, inviteeID string) ([]entity.Invite, error) {
	var inviteModels []models.CollaborationInvite
	err := r.db.WithContext(ctx).
		Where("invitee_id = ? AND status = ?", inviteeID, string(models.InviteInvited)).
		Order("created_at DESC, post_id ASC").
		Find(&inviteModels).Error
	if err != nil {
		return nil, apperror.Storage("list invites", err)
	}

	invites := make([]entity.Invite, len(inviteModels))
	for i := range inviteModels {
		invites[i] = *ToInviteEntity(&inviteModels[i])
	}
	return invites, nil
}
