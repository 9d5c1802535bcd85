// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"jobtrack/internal/delivery/http/middleware"
	"jobtrack/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler        *handler.UserHandler
	BoardHandler       *handler.BoardHandler
	ApplicationHandler *handler.ApplicationHandler
	SyncHandler        *handler.SyncHandler
	AuthMiddleware     *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler        *handler.UserHandler
	boardHandler       *handler.BoardHandler
	applicationHandler *handler.ApplicationHandler
	syncHandler        *handler.SyncHandler
	authMiddleware     *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:        params.UserHandler,
		boardHandler:       params.BoardHandler,
		applicationHandler: params.ApplicationHandler,
		syncHandler:        params.SyncHandler,
		authMiddleware:     params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.userHandler.Register)
		authGroup.POST("/login", r.userHandler.Login)
		authGroup.POST("/refresh", r.userHandler.Refresh)
		authGroup.POST("/logout", r.userHandler.Logout)
	}
	e.POST("/auth/logout-all", r.userHandler.LogoutAll, r.authMiddleware.Authenticate)

	// The callback is reached by browser redirect from the board; the user is
	// identified by the state value, so no session token is required here.
	e.GET("/board/callback", r.boardHandler.Callback)

	boardGroup := e.Group("/board")
	boardGroup.Use(r.authMiddleware.Authenticate)
	{
		boardGroup.POST("/connect", r.boardHandler.Connect)
		boardGroup.DELETE("/connection", r.boardHandler.Disconnect)
		boardGroup.GET("/status", r.boardHandler.Status)
	}

	applicationGroup := e.Group("/applications")
	applicationGroup.Use(r.authMiddleware.Authenticate)
	{
		applicationGroup.POST("", r.applicationHandler.Submit)
		applicationGroup.GET("", r.applicationHandler.List)
		applicationGroup.POST("/:id/reject", r.applicationHandler.MarkRejected)
		applicationGroup.POST("/:id/archive", r.applicationHandler.Archive)
		applicationGroup.POST("/sync", r.syncHandler.Reconcile)
	}
}
