package http

import (
	"net/http"
	"strconv"

	"cofeed/pkg/apperror"
	"cofeed/pkg/logger"
	"cofeed/pkg/middleware"
	"cofeed/services/feed/internal/usecase"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	feedUseCase usecase.FeedUseCase
	logger      *logger.Logger
}

func NewFeedHandler(feedUseCase usecase.FeedUseCase, logger *logger.Logger) *FeedHandler {
	return &FeedHandler{
		feedUseCase: feedUseCase,
		logger:      logger,
	}
}

// GetFeed godoc
// @Summary      Get feed
// @Description  Posts the caller may see, newest first. Pass next_cursor from the previous page to continue.
// @Tags         feed
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        cursor query string false "Opaque cursor from the previous page"
// @Param        page_size query int false "Number of posts to return (default 20, max 100)"
// @Success      200  {object}  entity.Page
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /feed [get]
func (h *FeedHandler) GetFeed(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	pageSize := 0
	if sizeStr := c.Query("page_size"); sizeStr != "" {
		pageSize, err = strconv.Atoi(sizeStr)
		if err != nil {
			apperror.Respond(c, apperror.Validation("page_size must be a number"))
			return
		}
	}

	page, err := h.feedUseCase.AssembleFeed(c.Request.Context(), userID, c.Query("cursor"), pageSize)
	if err != nil {
		h.logger.Error("Failed to get feed for %s: %v", userID, err)
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}
