package http

import (
	"net/http"

	"cofeed/pkg/apperror"
	"cofeed/pkg/logger"
	"cofeed/pkg/middleware"
	"cofeed/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
)

type InviteHandler struct {
	inviteUseCase usecase.InviteUseCase
	logger        *logger.Logger
}

func NewInviteHandler(inviteUseCase usecase.InviteUseCase, logger *logger.Logger) *InviteHandler {
	return &InviteHandler{
		inviteUseCase: inviteUseCase,
		logger:        logger,
	}
}

type InviteRequest struct {
	InviteeID string `json:"invitee_id" binding:"required"`
}

type RespondRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

// Invite godoc
// @Summary      Invite a co-creator
// @Description  Invite a user to co-create a post. Owner or co-creators with edit rights only.
// @Tags         invites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        request body InviteRequest true "Invitee"
// @Success      201  {object}  entity.Invite
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /posts/{id}/invites [post]
func (h *InviteHandler) Invite(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.Validation("%v", err))
		return
	}

	invite, err := h.inviteUseCase.Invite(c.Request.Context(), c.Param("id"), userID, req.InviteeID)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, invite)
}

// Respond godoc
// @Summary      Answer an invite
// @Description  Accept or decline an invite to co-create a post. Repeating the same answer is a no-op.
// @Tags         invites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        request body RespondRequest true "Answer"
// @Success      200  {object}  entity.Invite
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /posts/{id}/invites/respond [post]
func (h *InviteHandler) Respond(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.Validation("%v", err))
		return
	}

	invite, err := h.inviteUseCase.Respond(c.Request.Context(), c.Param("id"), userID, *req.Accept)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, invite)
}

// RemoveSelf godoc
// @Summary      Leave a post
// @Description  Remove yourself from a post's co-creators. Media you uploaded stays.
// @Tags         invites
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/co-creators/me [delete]
func (h *InviteHandler) RemoveSelf(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	if err := h.inviteUseCase.RemoveSelf(c.Request.Context(), c.Param("id"), userID); err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left post"})
}

// ListInvites godoc
// @Summary      Pending invites
// @Description  Invites addressed to the caller that are still waiting for an answer
// @Tags         invites
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /invites [get]
func (h *InviteHandler) ListInvites(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	invites, err := h.inviteUseCase.ListInvites(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list invites of %s: %v", userID, err)
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invites": invites, "count": len(invites)})
}
