package http

import (
	"net/http"
	"strconv"

	"cofeed/pkg/apperror"
	"cofeed/pkg/logger"
	"cofeed/pkg/middleware"
	"cofeed/services/interaction/internal/usecase"

	"github.com/gin-gonic/gin"
)

type InteractionHandler struct {
	interactionUseCase usecase.InteractionUseCase
	logger             *logger.Logger
}

func NewInteractionHandler(interactionUseCase usecase.InteractionUseCase, logger *logger.Logger) *InteractionHandler {
	return &InteractionHandler{
		interactionUseCase: interactionUseCase,
		logger:             logger,
	}
}

type CommentRequest struct {
	Body string `json:"body" binding:"required"`
}

type ShareRequest struct {
	Message *string `json:"message"`
	Privacy *string `json:"privacy"`
}

// LikePost godoc
// @Summary      Toggle like
// @Description  Like a post, or remove the like if the caller already liked it
// @Tags         interactions
// @Produce      json
// @Security     BearerAuth
// @Param        post_id path string true "Post ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /interactions/posts/{post_id}/like [post]
func (h *InteractionHandler) LikePost(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	liked, err := h.interactionUseCase.ToggleLike(c.Request.Context(), c.Param("post_id"), userID)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	message := "Post unliked"
	if liked {
		message = "Post liked"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "liked": liked})
}

// GetCounts godoc
// @Summary      Engagement counts
// @Description  Like, comment and share counts of a post, recomputed on every call, plus whether the caller liked it
// @Tags         interactions
// @Produce      json
// @Security     BearerAuth
// @Param        post_id path string true "Post ID"
// @Success      200  {object}  entity.Counts
// @Failure      404  {object}  map[string]string
// @Router       /interactions/posts/{post_id}/counts [get]
func (h *InteractionHandler) GetCounts(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	counts, err := h.interactionUseCase.Counts(c.Request.Context(), c.Param("post_id"), userID)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, counts)
}

// AddComment godoc
// @Summary      Add comment
// @Tags         interactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        post_id path string true "Post ID"
// @Param        request body CommentRequest true "Comment"
// @Success      201  {object}  entity.Comment
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /interactions/posts/{post_id}/comments [post]
func (h *InteractionHandler) AddComment(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.Validation("%v", err))
		return
	}

	comment, err := h.interactionUseCase.AddComment(c.Request.Context(), c.Param("post_id"), userID, req.Body)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// ListComments godoc
// @Summary      List comments
// @Description  Comments oldest first, paged with an opaque cursor
// @Tags         interactions
// @Produce      json
// @Security     BearerAuth
// @Param        post_id path string true "Post ID"
// @Param        cursor query string false "Cursor from the previous page"
// @Param        limit query int false "Page size (default 20, max 100)"
// @Success      200  {object}  entity.CommentPage
// @Failure      400  {object}  map[string]string
// @Router       /interactions/posts/{post_id}/comments [get]
func (h *InteractionHandler) ListComments(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	page, err := h.interactionUseCase.ListComments(c.Request.Context(), c.Param("post_id"), userID, c.Query("cursor"), limit)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// DeleteComment godoc
// @Summary      Delete comment
// @Description  Only the comment's author may delete it
// @Tags         interactions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Comment ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /interactions/comments/{id} [delete]
func (h *InteractionHandler) DeleteComment(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	if err := h.interactionUseCase.DeleteComment(c.Request.Context(), c.Param("id"), userID); err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// SharePost godoc
// @Summary      Share post
// @Description  Reshare a post as a new post of the caller. Refused when the origin disallows sharing.
// @Tags         interactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        post_id path string true "Post ID"
// @Param        request body ShareRequest false "Optional message and privacy (default friends)"
// @Success      201  {object}  entity.SharedPost
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /interactions/posts/{post_id}/share [post]
func (h *InteractionHandler) SharePost(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	var req ShareRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apperror.Respond(c, apperror.Validation("%v", err))
			return
		}
	}

	share, err := h.interactionUseCase.Share(c.Request.Context(), c.Param("post_id"), userID, req.Message, req.Privacy)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, share)
}
