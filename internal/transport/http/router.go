package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/taskboard/internal/transport/http/handler"
	"github.com/ErlanBelekov/taskboard/internal/transport/http/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
)

type Options struct {
	ClientOrigin string
	HSTS         bool

	APILimit   int
	APIWindow  time.Duration
	AuthLimit  int
	AuthWindow time.Duration
}

type Handlers struct {
	Auth *handler.AuthHandler
	User *handler.UserHandler
	Task *handler.TaskHandler
}

// Stages returns the global request stages in the order they run. Every stage
// either calls c.Next or aborts with a {message} body.
func Stages(logger *slog.Logger, opts Options) []gin.HandlerFunc {
	apiLimiter := middleware.NewRateLimiter("api", opts.APILimit, opts.APIWindow,
		"Too many requests from this IP, please try again later")

	return []gin.HandlerFunc{
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Security(opts.HSTS),
		cors.New(cors.Config{
			AllowOrigins:     []string{opts.ClientOrigin},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		sloggin.New(logger),
		middleware.Metrics(),
		apiLimiter.Middleware(),
	}
}

func NewRouter(
	logger *slog.Logger,
	opts Options,
	h Handlers,
	tokens middleware.TokenDecoder,
	users middleware.UserFinder,
) *gin.Engine {
	r := gin.New()
	r.Use(Stages(logger, opts)...)

	authLimiter := middleware.NewRateLimiter("auth", opts.AuthLimit, opts.AuthWindow,
		"Too many login attempts from this IP, please try again after an hour")
	session := middleware.Session(tokens, users, logger)

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authLimiter.Middleware(), h.Auth.Register)
	authGroup.POST("/login", authLimiter.Middleware(), h.Auth.Login)
	authGroup.POST("/logout", h.Auth.Logout)

	usersGroup := api.Group("/users", session)
	usersGroup.GET("/me", h.User.Me)
	usersGroup.PUT("/me", h.User.UpdateMe)

	// /stats is registered before /:id; gin prefers the static segment.
	tasks := api.Group("/tasks", session)
	tasks.POST("", h.Task.Create)
	tasks.GET("", h.Task.List)
	tasks.GET("/stats", h.Task.Stats)
	tasks.GET("/:id", h.Task.Get)
	tasks.PUT("/:id", h.Task.Update)
	tasks.DELETE("/:id", h.Task.Delete)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not Found - " + c.Request.URL.Path})
	})

	return r
}
