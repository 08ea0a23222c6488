package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cofeed/pkg/apperror"
	"cofeed/pkg/logger"
	"cofeed/pkg/models"
	"cofeed/services/post/internal/entity"
	"cofeed/services/post/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockInviteUseCase is a mock implementation of InviteUseCase
type MockInviteUseCase struct {
	mock.Mock
}

func (m *MockInviteUseCase) Invite(ctx context.Context, postID, inviterID, inviteeID string) (*entity.Invite, error) {
	args := m.Called(ctx, postID, inviterID, inviteeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Invite), args.Error(1)
}

func (m *MockInviteUseCase) Respond(ctx context.Context, postID, inviteeID string, accept bool) (*entity.Invite, error) {
	args := m.Called(ctx, postID, inviteeID, accept)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Invite), args.Error(1)
}

func (m *MockInviteUseCase) RemoveSelf(ctx context.Context, postID, userID string) error {
	args := m.Called(ctx, postID, userID)
	return args.Error(0)
}

func (m *MockInviteUseCase) ListInvites(ctx context.Context, userID string) ([]entity.Invite, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Invite), args.Error(1)
}

var _ usecase.InviteUseCase = (*MockInviteUseCase)(nil)

func TestInvite_Created(t *testing.T) {
	mockInvites := new(MockInviteUseCase)
	handler := NewInviteHandler(mockInvites, logger.Nop())

	router := setupTestRouter()
	router.POST("/posts/:id/invites", asUser("user-1", handler.Invite))

	invite := &entity.Invite{PostID: "post-1", InviteeID: "user-2", InviterID: "user-1", Status: models.InviteInvited}
	mockInvites.On("Invite", mock.Anything, "post-1", "user-1", "user-2").Return(invite, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts/post-1/invites", strings.NewReader(`{"invitee_id":"user-2"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "invited", decode(t, w)["status"])
	mockInvites.AssertExpectations(t)
}

func TestInvite_Conflict(t *testing.T) {
	mockInvites := new(MockInviteUseCase)
	handler := NewInviteHandler(mockInvites, logger.Nop())

	router := setupTestRouter()
	router.POST("/posts/:id/invites", asUser("user-1", handler.Invite))

	mockInvites.On("Invite", mock.Anything, "post-1", "user-1", "user-2").
		Return(nil, fmt.Errorf("user user-2 on post post-1: %w", apperror.ErrAlreadyInvited))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts/post-1/invites", strings.NewReader(`{"invitee_id":"user-2"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_invited", decode(t, w)["code"])
}

func TestRespond_RequiresAnswer(t *testing.T) {
	mockInvites := new(MockInviteUseCase)
	handler := NewInviteHandler(mockInvites, logger.Nop())

	router := setupTestRouter()
	router.POST("/posts/:id/invites/respond", asUser("user-2", handler.Respond))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts/post-1/invites/respond", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockInvites.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRespond_Decline(t *testing.T) {
	mockInvites := new(MockInviteUseCase)
	handler := NewInviteHandler(mockInvites, logger.Nop())

	router := setupTestRouter()
	router.POST("/posts/:id/invites/respond", asUser("user-2", handler.Respond))

	invite := &entity.Invite{PostID: "post-1", InviteeID: "user-2", Status: models.InviteDeclined}
	mockInvites.On("Respond", mock.Anything, "post-1", "user-2", false).Return(invite, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts/post-1/invites/respond", strings.NewReader(`{"accept":false}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "declined", decode(t, w)["status"])
	mockInvites.AssertExpectations(t)
}

func TestRespond_ConflictingAnswer(t *testing.T) {
	mockInvites := new(MockInviteUseCase)
	handler := NewInviteHandler(mockInvites, logger.Nop())

	router := setupTestRouter()
	router.POST("/posts/:id/invites/respond", asUser("user-2", handler.Respond))

	mockInvites.On("Respond", mock.Anything, "post-1", "user-2", true).
		Return(nil, apperror.NotAllowed("invite to post %s was already %s", "post-1", "declined"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts/post-1/invites/respond", strings.NewReader(`{"accept":true}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRemoveSelf_Owner(t *testing.T) {
	mockInvites := new(MockInviteUseCase)
	handler := NewInviteHandler(mockInvites, logger.Nop())

	router := setupTestRouter()
	router.DELETE("/posts/:id/co-creators/me", asUser("user-1", handler.RemoveSelf))

	mockInvites.On("RemoveSelf", mock.Anything, "post-1", "user-1").
		Return(apperror.NotAuthorized("the owner cannot leave post %s", "post-1"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/posts/post-1/co-creators/me", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockInvites.AssertExpectations(t)
}

func TestListInvites(t *testing.T) {
	mockInvites := new(MockInviteUseCase)
	handler := NewInviteHandler(mockInvites, logger.Nop())

	router := setupTestRouter()
	router.GET("/invites", asUser("user-2", handler.ListInvites))

	mockInvites.On("ListInvites", mock.Anything, "user-2").Return([]entity.Invite{{PostID: "post-1", InviteeID: "user-2"}}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/invites", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["count"])
}
