package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cofeed/pkg/apperror"
	"cofeed/pkg/logger"
	"cofeed/pkg/middleware"
	"cofeed/pkg/models"
	"cofeed/pkg/testutil"
	"cofeed/services/interaction/internal/entity"
	"cofeed/services/interaction/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockInteractionUseCase is a mock implementation of InteractionUseCase
type MockInteractionUseCase struct {
	mock.Mock
}

func (m *MockInteractionUseCase) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInteractionUseCase) AddComment(ctx context.Context, postID, userID, body string) (*entity.Comment, error) {
	args := m.Called(ctx, postID, userID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Comment), args.Error(1)
}

func (m *MockInteractionUseCase) DeleteComment(ctx context.Context, commentID, userID string) error {
	args := m.Called(ctx, commentID, userID)
	return args.Error(0)
}

func (m *MockInteractionUseCase) ListComments(ctx context.Context, postID, viewerID, after string, limit int) (*entity.CommentPage, error) {
	args := m.Called(ctx, postID, viewerID, after, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CommentPage), args.Error(1)
}

func (m *MockInteractionUseCase) Share(ctx context.Context, postID, userID string, message, privacy *string) (*entity.SharedPost, error) {
	args := m.Called(ctx, postID, userID, message, privacy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SharedPost), args.Error(1)
}

func (m *MockInteractionUseCase) Counts(ctx context.Context, postID, viewerID string) (*entity.Counts, error) {
	args := m.Called(ctx, postID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Counts), args.Error(1)
}

var _ usecase.InteractionUseCase = (*MockInteractionUseCase)(nil)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func asUser(userID string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetUserID(c, userID)
		h(c)
	}
}

func TestLikePost_Like(t *testing.T) {
	mockUseCase := new(MockInteractionUseCase)
	handler := NewInteractionHandler(mockUseCase, logger.Nop())

	router := setupTestRouter()
	router.POST("/interactions/posts/:post_id/like", asUser("user-123", handler.LikePost))

	mockUseCase.On("ToggleLike", mock.Anything, "post-123", "user-123").Return(true, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/interactions/posts/post-123/like", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Post liked", response["message"])
	assert.Equal(t, true, response["liked"])

	mockUseCase.AssertExpectations(t)
}

func TestLikePost_Unlike(t *testing.T) {
	mockUseCase := new(MockInteractionUseCase)
	handler := NewInteractionHandler(mockUseCase, logger.Nop())

	router := setupTestRouter()
	router.POST("/interactions/posts/:post_id/like", asUser("user-123", handler.LikePost))

	mockUseCase.On("ToggleLike", mock.Anything, "post-123", "user-123").Return(false, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/interactions/posts/post-123/like", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Post unliked", response["message"])
	assert.Equal(t, false, response["liked"])
}

func TestLikePost_NotFound(t *testing.T) {
	mockUseCase := new(MockInteractionUseCase)
	handler := NewInteractionHandler(mockUseCase, logger.Nop())

	router := setupTestRouter()
	router.POST("/interactions/posts/:post_id/like", asUser("user-123", handler.LikePost))

	mockUseCase.On("ToggleLike", mock.Anything, "missing", "user-123").Return(false, apperror.NotFound("post %s", "missing"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/interactions/posts/missing/like", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCounts(t *testing.T) {
	mockUseCase := new(MockInteractionUseCase)
	handler := NewInteractionHandler(mockUseCase, logger.Nop())

	router := setupTestRouter()
	router.GET("/interactions/posts/:post_id/counts", asUser("user-1", handler.GetCounts))

	counts := &entity.Counts{PostID: "post-1", Likes: 3, Comments: 1, Shares: 2, LikedByViewer: true}
	mockUseCase.On("Counts", mock.Anything, "post-1", "user-1").Return(counts, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/interactions/posts/post-1/counts", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response entity.Counts
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, *counts, response)
}

func TestAddComment_MissingBody(t *testing.T) {
	mockUseCase := new(MockInteractionUseCase)
	handler := NewInteractionHandler(mockUseCase, logger.Nop())

	router := setupTestRouter()
	router.POST("/interactions/posts/:post_id/comments", asUser("user-1", handler.AddComment))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/interactions/posts/post-1/comments", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertNotCalled(t, "AddComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListComments_PassesCursor(t *testing.T) {
	mockUseCase := new(MockInteractionUseCase)
	handler := NewInteractionHandler(mockUseCase, logger.Nop())

	router := setupTestRouter()
	router.GET("/interactions/posts/:post_id/comments", asUser("user-1", handler.ListComments))

	page := &entity.CommentPage{Comments: []entity.Comment{{ID: "c1"}}, NextCursor: "next"}
	mockUseCase.On("ListComments", mock.Anything, "post-1", "user-1", "abc", 5).Return(page, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/interactions/posts/post-1/comments?cursor=abc&limit=5", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "next", response["next_cursor"])
	mockUseCase.AssertExpectations(t)
}

func TestDeleteComment_NotAuthor(t *testing.T) {
	mockUseCase := new(MockInteractionUseCase)
	handler := NewInteractionHandler(mockUseCase, logger.Nop())

	router := setupTestRouter()
	router.DELETE("/interactions/comments/:id", asUser("user-2", handler.DeleteComment))

	mockUseCase.On("DeleteComment", mock.Anything, "c1", "user-2").Return(apperror.NotAuthorized("only the author can delete comment %s", "c1"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/interactions/comments/c1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSharePost(t *testing.T) {
	mockUseCase := new(MockInteractionUseCase)
	handler := NewInteractionHandler(mockUseCase, logger.Nop())

	router := setupTestRouter()
	router.POST("/interactions/posts/:post_id/share", asUser("user-4", handler.SharePost))

	share := &entity.SharedPost{ID: "p2", OwnerID: "user-4", Body: "nice!", Privacy: models.PrivacyFriends, SharedFromID: "p1"}
	mockUseCase.On("Share", mock.Anything, "p1", "user-4", testutil.Ptr("nice!"), (*string)(nil)).Return(share, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/interactions/posts/p1/share", strings.NewReader(`{"message":"nice!"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "p1", response["shared_from_id"])
	mockUseCase.AssertExpectations(t)
}

func TestSharePost_NotAllowed(t *testing.T) {
	mockUseCase := new(MockInteractionUseCase)
	handler := NewInteractionHandler(mockUseCase, logger.Nop())

	router := setupTestRouter()
	router.POST("/interactions/posts/:post_id/share", asUser("user-1", handler.SharePost))

	mockUseCase.On("Share", mock.Anything, "p1", "user-1", (*string)(nil), (*string)(nil)).
		Return(nil, apperror.NotAllowed("post %s does not allow sharing", "p1"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/interactions/posts/p1/share", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "not_allowed", response["code"])
}
