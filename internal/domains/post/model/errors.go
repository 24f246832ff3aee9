package model

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"bloghub-backend/internal/domains/identity"
	"bloghub-backend/internal/shared/response"
)

// Service-level errors
var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotPostOwner = errors.New("you are not authorized to modify this post")
	ErrUploadFailed = errors.New("cover image upload failed")
)

// HandlePostError writes the HTTP response for a post domain error.
// Returns true when err was handled (caller should stop).
// Not-found and forbidden deliberately carry no detail about what exists.
func HandlePostError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, identity.ErrUnauthenticated):
		response.Unauthorized(c, "you must be logged in to perform this action")

	case errors.Is(err, ErrPostNotFound):
		response.NotFound(c, "post not found")

	case errors.Is(err, ErrNotPostOwner):
		response.Forbidden(c, "you are not authorized to modify this post")

	case errors.Is(err, ErrUploadFailed):
		// Recoverable: the client keeps its form state and retries.
		response.BadGateway(c, "UPLOAD_FAILED", "cover image upload failed, please try again")

	default:
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid input", verrs)
		} else {
			response.InternalServerError(c, "internal server error")
		}
	}

	return true
}
