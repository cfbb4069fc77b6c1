package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/nursultanov/user-dashboard/internal/transport/http/handler"
	"github.com/nursultanov/user-dashboard/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, userHandler *handler.UserHandler, authHandler *handler.AuthHandler, verifier middleware.SessionVerifier) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	// Wrong verb answers 405 before any handler (and so before any store
	// access) runs.
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	// User records. Open to any caller, like the functions they replace;
	// per-record authorization is out of scope.
	users := r.Group("/users")
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/:id", userHandler.GetByID)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	// Auth provider surface consumed by the dashboard client.
	authMW := middleware.Auth(verifier)
	auth := r.Group("/auth")
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/signin", authHandler.SignIn)
	auth.POST("/signout", authMW, authHandler.SignOut)
	auth.GET("/session", authMW, authHandler.Session)

	return r
}
