package http

import (
	"net/http"

	"cofeed/pkg/apperror"
	"cofeed/pkg/logger"
	"cofeed/pkg/middleware"
	"cofeed/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	mediaUseCase   usecase.MediaUseCase
	maxUploadItems int
	logger         *logger.Logger
}

func NewMediaHandler(mediaUseCase usecase.MediaUseCase, maxUploadItems int, logger *logger.Logger) *MediaHandler {
	return &MediaHandler{
		mediaUseCase:   mediaUseCase,
		maxUploadItems: maxUploadItems,
		logger:         logger,
	}
}

// AttachMedia godoc
// @Summary      Add media to a post
// @Description  Upload files and attach each to the post. Items succeed or fail independently and are reported per item.
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        files formData file true "Image or video files"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /posts/{id}/media [post]
func (h *MediaHandler) AttachMedia(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	files, err := formFiles(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	if len(files) > h.maxUploadItems {
		apperror.Respond(c, apperror.Validation("at most %d files per request", h.maxUploadItems))
		return
	}

	results, err := h.mediaUseCase.AttachUploads(c.Request.Context(), c.Param("id"), userID, toUploads(files))
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}

	c.JSON(http.StatusOK, gin.H{"uploads": results, "failed": failed})
}

// ListMedia godoc
// @Summary      List a post's media
// @Tags         media
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/media [get]
func (h *MediaHandler) ListMedia(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	media, err := h.mediaUseCase.ListMedia(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"media": media})
}

// RemoveMedia godoc
// @Summary      Remove media
// @Description  The owner removes any item; a co-creator removes only their own uploads. The last item of a post without a body cannot be removed.
// @Tags         media
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Media ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /media/{id} [delete]
func (h *MediaHandler) RemoveMedia(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	if err := h.mediaUseCase.Remove(c.Request.Context(), c.Param("id"), userID); err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Media removed"})
}
