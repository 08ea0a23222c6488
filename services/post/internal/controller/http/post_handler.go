package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"cofeed/pkg/apperror"
	"cofeed/pkg/logger"
	"cofeed/pkg/middleware"
	"cofeed/services/post/internal/entity"
	"cofeed/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postUseCase    usecase.PostUseCase
	mediaUseCase   usecase.MediaUseCase
	maxUploadItems int
	logger         *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, mediaUseCase usecase.MediaUseCase, maxUploadItems int, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postUseCase:    postUseCase,
		mediaUseCase:   mediaUseCase,
		maxUploadItems: maxUploadItems,
		logger:         logger,
	}
}

type CreatePostRequest struct {
	Body         *string  `form:"body"`
	Privacy      string   `form:"privacy"`
	AllowShare   *bool    `form:"allow_share"`
	CoCreatorIDs []string `form:"co_creator_ids"`
}

type UpdatePostRequest struct {
	Body       *string `json:"body"`
	Privacy    *string `json:"privacy"`
	AllowShare *bool   `json:"allow_share"`
}

// CreatePost godoc
// @Summary      Create a new post
// @Description  Create a post with optional media files. Files are uploaded in parallel and reported per item; a failed file does not block the post. Every co_creator_ids entry receives an invite.
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        body formData string false "Post text (required when no files are sent)"
// @Param        privacy formData string false "Privacy" Enums(public, friends, private)
// @Param        allow_share formData bool false "Allow reshares (default true)"
// @Param        co_creator_ids formData []string false "Users to invite as co-creators"
// @Param        files formData file false "Image or video files"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		apperror.Respond(c, apperror.Validation("%v", err))
		return
	}
	if req.Privacy == "" {
		req.Privacy = "public"
	}
	allowShare := true
	if req.AllowShare != nil {
		allowShare = *req.AllowShare
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

	var uploads []entity.UploadResult
	var media []entity.NewMedia
	if len(files) > 0 {
		uploads = h.mediaUseCase.Upload(c.Request.Context(), userID, toUploads(files))
		for _, u := range uploads {
			if u.OK() {
				media = append(media, entity.NewMedia{Ref: u.Ref, Kind: u.Kind, UploaderID: userID})
			}
		}
	}

	// a post resting only on uploads that all failed reports why they failed
	if len(uploads) > 0 && len(media) == 0 && blank(req.Body) {
		apperror.RespondWith(c, firstFailure(uploads), gin.H{"uploads": uploads})
		return
	}

	post, err := h.postUseCase.CreatePost(c.Request.Context(), userID, req.Body, req.Privacy, allowShare, media, req.CoCreatorIDs)
	if err != nil {
		h.mediaUseCase.Discard(c.Request.Context(), uploads)
		apperror.RespondWith(c, err, gin.H{"uploads": uploads})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": post, "uploads": uploads})
}

// GetPost godoc
// @Summary      Get post by ID
// @Description  Get a post with its media and co-creators. Posts the caller may not see are reported as not found.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  entity.Post
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	post, err := h.postUseCase.GetPost(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// ListByAuthor godoc
// @Summary      List an author's posts
// @Description  Posts the user owns or co-created, newest first, filtered by what the caller may see
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        user_id path string true "Author ID"
// @Param        limit query int false "Page size (default 20, max 100)"
// @Param        offset query int false "Offset"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /posts/author/{user_id} [get]
func (h *PostHandler) ListByAuthor(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	limit := 20
	offset := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	posts, err := h.postUseCase.ListByAuthor(c.Request.Context(), c.Param("user_id"), userID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list posts of %s: %v", c.Param("user_id"), err)
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts), "offset": offset})
}

// UpdatePost godoc
// @Summary      Update post
// @Description  Edit body, privacy or allow_share. Owner and co-creators only.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        request body UpdatePostRequest true "Fields to change"
// @Success      200  {object}  entity.Post
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [put]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.Validation("%v", err))
		return
	}

	patch := entity.PostPatch{Body: req.Body, Privacy: req.Privacy, AllowShare: req.AllowShare}
	post, err := h.postUseCase.UpdatePost(c.Request.Context(), c.Param("id"), userID, patch)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary      Delete post
// @Description  Delete a post. Owner only.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	if err := h.postUseCase.DeletePost(c.Request.Context(), c.Param("id"), userID); err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// formFiles returns the uploaded files, or none for a request that is not
// multipart at all.
func formFiles(c *gin.Context) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperror.Validation("failed to parse form: %v", err)
	}
	return form.File["files"], nil
}

func toUploads(files []*multipart.FileHeader) []entity.Upload {
	uploads := make([]entity.Upload, len(files))
	for i, fh := range files {
		uploads[i] = entity.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Open: func() (io.ReadSeekCloser, error) {
				return fh.Open()
			},
		}
	}
	return uploads
}

func blank(body *string) bool {
	return body == nil || strings.TrimSpace(*body) == ""
}

func firstFailure(uploads []entity.UploadResult) error {
	for _, u := range uploads {
		if u.Cause != nil {
			return u.Cause
		}
	}
	return errors.New(uploads[0].Error)
}
