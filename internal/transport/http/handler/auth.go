package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/taskboard/internal/domain"
	"github.com/ErlanBelekov/taskboard/internal/metrics"
	"github.com/ErlanBelekov/taskboard/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*usecase.Session, error)
	Login(ctx context.Context, input usecase.LoginInput) (*usecase.Session, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	cookies     CookiePolicy
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, cookies CookiePolicy, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		cookies:     cookies,
		logger:      logger.With("component", "auth_handler"),
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse is the public profile returned by auth and profile routes.
type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.authUsecase.Register(c.Request.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		recordAttempt("register", err)
		writeError(c, h.logger, err)
		return
	}
	recordAttempt("register", nil)

	h.cookies.set(c, session.Token)
	c.JSON(http.StatusCreated, toUserResponse(session.User))
}

// POST /api/auth/login
// Unknown email and wrong password produce the same 401.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.authUsecase.Login(c.Request.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		recordAttempt("login", err)
		writeError(c, h.logger, err)
		return
	}
	recordAttempt("login", nil)

	h.cookies.set(c, session.Token)
	c.JSON(http.StatusOK, toUserResponse(session.User))
}

// POST /api/auth/logout
// Needs no session: clearing the cookie is always allowed.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookies.clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func recordAttempt(action string, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidInput):
		outcome = "invalid"
	case errors.Is(err, domain.ErrDuplicateEmail):
		outcome = "duplicate"
	case errors.Is(err, domain.ErrInvalidCredentials):
		outcome = "rejected"
	default:
		outcome = "error"
	}
	metrics.AuthAttemptsTotal.WithLabelValues(action, outcome).Inc()
}
