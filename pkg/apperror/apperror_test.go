package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestKind(t *testing.T) {
	err := NotAuthorized("user %s cannot edit post %s", "u1", "p1")
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Equal(t, ErrNotAuthorized, Kind(err))
	assert.Contains(t, err.Error(), "u1")

	wrapped := fmt.Errorf("update post: %w", err)
	assert.Equal(t, ErrNotAuthorized, Kind(wrapped))

	assert.Nil(t, Kind(errors.New("boom")))
}

func TestInviteConflictsAreNotAllowed(t *testing.T) {
	assert.ErrorIs(t, ErrAlreadyInvited, ErrNotAllowed)
	assert.ErrorIs(t, ErrAlreadyCoCreator, ErrNotAllowed)
	assert.Equal(t, ErrAlreadyInvited, Kind(fmt.Errorf("invite: %w", ErrAlreadyInvited)))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrAlreadyCoCreator))
	assert.Equal(t, "already_invited", Code(ErrAlreadyInvited))
}

func TestStorage(t *testing.T) {
	assert.Nil(t, Storage("get post", nil))

	notFound := Storage("get post", gorm.ErrRecordNotFound)
	assert.ErrorIs(t, notFound, ErrNotFound)
	assert.NotErrorIs(t, notFound, ErrStorage)

	failed := Storage("get post", errors.New("connection reset"))
	assert.ErrorIs(t, failed, ErrStorage)
	assert.Contains(t, failed.Error(), "connection reset")

	passthrough := Storage("tx", Validation("empty body"))
	assert.ErrorIs(t, passthrough, ErrValidation)
	assert.NotErrorIs(t, passthrough, ErrStorage)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		ErrNotSignedIn:                http.StatusUnauthorized,
		Validation("x"):               http.StatusBadRequest,
		NotAuthorized("x"):            http.StatusForbidden,
		NotFound("x"):                 http.StatusNotFound,
		NotAllowed("x"):               http.StatusUnprocessableEntity,
		Storage("x", errors.New("x")): http.StatusInternalServerError,
		errors.New("other"):           http.StatusInternalServerError,
	}
	for err, status := range cases {
		assert.Equal(t, status, HTTPStatus(err), err.Error())
	}
}
