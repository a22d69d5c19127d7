package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/taskboard/internal/domain"
	"github.com/ErlanBelekov/taskboard/internal/transport/http/middleware"
	"github.com/ErlanBelekov/taskboard/internal/usecase"
	"github.com/gin-gonic/gin"
)

type userUsecaser interface {
	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, input usecase.UpdateProfileInput) (*domain.User, error)
}

type UserHandler struct {
	userUsecase userUsecaser
	logger      *slog.Logger
}

func NewUserHandler(userUsecase userUsecaser, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUsecase: userUsecase,
		logger:      logger.With("component", "user_handler"),
	}
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		writeError(c, h.logger, domain.ErrUnauthenticated)
		return
	}

	user, err := h.userUsecase.Profile(c.Request.Context(), identity.ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// PUT /api/users/me
// Omitted fields keep their stored values.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		writeError(c, h.logger, domain.ErrUnauthenticated)
		return
	}

	var req updateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userUsecase.UpdateProfile(c.Request.Context(), identity.ID, usecase.UpdateProfileInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		ChangePassword: req.Password != "",
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}
