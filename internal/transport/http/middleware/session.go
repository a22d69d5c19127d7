package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/taskboard/internal/domain"
	"github.com/ErlanBelekov/taskboard/internal/metrics"
	"github.com/ErlanBelekov/taskboard/internal/reqctx"
	"github.com/gin-gonic/gin"
)

// SessionCookie is the name of the HTTP-only cookie carrying the session token.
const SessionCookie = "jwt"

const identityKey = "identity"

const (
	msgNoToken      = "Not authorized, no token"
	msgTokenFailed  = "Not authorized, token failed"
	msgUserNotFound = "User not found"
	msgInternal     = "Internal server error"
)

type TokenDecoder interface {
	Decode(raw string) (subjectID string, err error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Session is the session validator. It reads the token from the session
// cookie, decodes it and resolves the subject to a stored user. On success the
// identity (without password hash) is attached for downstream handlers; every
// other path aborts with 401. It never writes to the store.
func Session(tokens TokenDecoder, users UserFinder, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "session")

	return func(c *gin.Context) {
		raw, err := c.Cookie(SessionCookie)
		if err != nil || raw == "" {
			reject(c, "no_token", msgNoToken)
			return
		}

		userID, err := tokens.Decode(raw)
		if err != nil {
			logger.DebugContext(c.Request.Context(), "session token rejected", "error", err)
			reject(c, "token_failed", msgTokenFailed)
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				reject(c, "user_not_found", msgUserNotFound)
				return
			}
			logger.ErrorContext(c.Request.Context(), "resolve session user", "user_id", userID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": msgInternal})
			return
		}

		identity := user.Public()
		SetIdentity(c, &identity)
		c.Next()
	}
}

// SetIdentity attaches an authenticated user to the request.
func SetIdentity(c *gin.Context, u *domain.User) {
	c.Set(identityKey, u)
	c.Request = c.Request.WithContext(reqctx.WithUserID(c.Request.Context(), u.ID))
}

// Identity returns the user resolved by Session.
func Identity(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok && u != nil
}

func reject(c *gin.Context, reason, message string) {
	metrics.SessionRejectionsTotal.WithLabelValues(reason).Inc()
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": message})
}
