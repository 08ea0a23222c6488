package entity

import (
	"time"

	"cofeed/pkg/models"
)

type Invite struct {
	PostID      string              `json:"post_id"`
	InviteeID   string              `json:"invitee_id"`
	InviterID   string              `json:"inviter_id"`
	Status      models.InviteStatus `json:"status"`
	CanEdit     bool                `json:"can_edit"`
	CreatedAt   time.Time           `json:"created_at"`
	RespondedAt *time.Time          `json:"responded_at,omitempty"`
}

// StatusFor maps an answer to the terminal state it leads to.
func StatusFor(accept bool) models.InviteStatus {
	if accept {
		return models.InviteAccepted
	}
	return models.InviteDeclined
}
