package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/taskboard/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	errInternalServer     = "Internal server error"
	errInvalidCredentials = "Invalid email or password"
	errTaskNotFound       = "Task not found"
	errUserNotFound       = "User not found"
	errBadBody            = "Invalid request body"
	errNotAuthorized      = "Not authorized"
)

// errorBody is the single error shape of the API.
type errorBody struct {
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// writeError maps a domain error to its status and body. Anything unknown is
// logged and reported as a generic 500.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	var verr *domain.ValidationError
	var oerr *domain.OwnershipError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, errorBody{Message: verr.Message, FieldErrors: verr.FieldErrors})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorBody{Message: errInvalidCredentials})
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, errorBody{Message: errNotAuthorized})
	case errors.As(err, &oerr):
		c.JSON(http.StatusForbidden, errorBody{Message: oerr.Error()})
	case errors.Is(err, domain.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, errorBody{Message: errTaskNotFound})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, errorBody{Message: errUserNotFound})
	default:
		logger.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, errorBody{Message: errInternalServer})
	}
}

// bindJSON decodes the request body. A malformed body is reported as a 400 in
// the same shape as validation failures.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Message: errBadBody})
		return false
	}
	return true
}
