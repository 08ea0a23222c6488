// Package apperror holds the error kinds shared by every service. Use cases
// wrap one of the sentinel kinds with context via fmt.Errorf("...: %w", Err...)
// and handlers translate the kind into an HTTP status with Respond.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	ErrNotSignedIn   = errors.New("not signed in")
	ErrValidation    = errors.New("validation error")
	ErrNotAuthorized = errors.New("not authorized")
	ErrNotFound      = errors.New("not found")
	ErrNotAllowed    = errors.New("not allowed")
	ErrStorage       = errors.New("storage failure")

	// Invite conflicts are business-rule refusals.
	ErrAlreadyInvited   = fmt.Errorf("already invited: %w", ErrNotAllowed)
	ErrAlreadyCoCreator = fmt.Errorf("already a co-creator: %w", ErrNotAllowed)
)

func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotAuthorized(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotAuthorized, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func NotAllowed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotAllowed, fmt.Sprintf(format, args...))
}

// Storage wraps a store or object-store failure. Record-not-found from gorm is
// reported as ErrNotFound so callers can tell the two apart.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	// already classified further down
	if Kind(err) != nil {
		return err
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStorage, err)
}

// Kind returns the sentinel kind carried by err, or nil when err is unclassified.
func Kind(err error) error {
	for _, kind := range []error{
		ErrAlreadyInvited,
		ErrAlreadyCoCreator,
		ErrNotSignedIn,
		ErrValidation,
		ErrNotAuthorized,
		ErrNotFound,
		ErrNotAllowed,
		ErrStorage,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Code is the machine-readable name of the kind, stable across releases.
func Code(err error) string {
	switch Kind(err) {
	case ErrNotSignedIn:
		return "not_signed_in"
	case ErrValidation:
		return "validation_error"
	case ErrNotAuthorized:
		return "not_authorized"
	case ErrNotFound:
		return "not_found"
	case ErrAlreadyInvited:
		return "already_invited"
	case ErrAlreadyCoCreator:
		return "already_co_creator"
	case ErrNotAllowed:
		return "not_allowed"
	case ErrStorage:
		return "storage_failure"
	default:
		return "internal"
	}
}

func HTTPStatus(err error) int {
	switch Kind(err) {
	case ErrNotSignedIn:
		return http.StatusUnauthorized
	case ErrValidation:
		return http.StatusBadRequest
	case ErrNotAuthorized:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrAlreadyInvited, ErrAlreadyCoCreator:
		return http.StatusConflict
	case ErrNotAllowed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err as a JSON error body with the status matching its kind.
func Respond(c *gin.Context, err error) {
	RespondWith(c, err, nil)
}

// RespondWith is Respond with extra fields merged into the body.
func RespondWith(c *gin.Context, err error, extra gin.H) {
	body := gin.H{}
	for k, v := range extra {
		body[k] = v
	}
	body["error"] = err.Error()
	body["code"] = Code(err)
	c.JSON(HTTPStatus(err), body)
}
