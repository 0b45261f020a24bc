package http

import (
	"github.com/gin-gonic/gin"
	"github.com/nthottathil/bridge-web-app/internal/delivery/http/handler"
	"github.com/nthottathil/bridge-web-app/internal/delivery/http/middleware"
	"go.uber.org/zap"
)

type Router struct {
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	matchHandler   *handler.MatchHandler
	groupHandler   *handler.GroupHandler
	authMiddleware *middleware.AuthMiddleware
	logger         *zap.Logger
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	matchHandler *handler.MatchHandler,
	groupHandler *handler.GroupHandler,
	authMiddleware *middleware.AuthMiddleware,
	logger *zap.Logger,
) *Router {
	return &Router{
		authHandler:    authHandler,
		userHandler:    userHandler,
		matchHandler:   matchHandler,
		groupHandler:   groupHandler,
		authMiddleware: authMiddleware,
		logger:         logger,
	}
}

func (r *Router) Setup() *gin.Engine {
	registerValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(r.logger))

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// Auth routes (public)
	auth := router.Group("/auth")
	{
		auth.POST("/signup", r.authHandler.Signup)
		auth.POST("/verify", r.authHandler.Verify)
		auth.POST("/login", r.authHandler.Login)
		auth.POST("/resend-code", r.authHandler.ResendCode)
	}

	// Protected routes
	api := router.Group("/api")
	api.Use(r.authMiddleware.RequireAuth())
	{
		user := api.Group("/user")
		{
			user.GET("/profile", r.userHandler.GetProfile)
			user.PUT("/profile", r.userHandler.UpdateProfile)
			user.GET("/group", r.groupHandler.GetMyGroup)
		}

		matches := api.Group("/matches")
		{
			matches.GET("", r.matchHandler.FindMatches)
			matches.POST("/request", r.matchHandler.CreateRequest)
			matches.GET("/requests", r.matchHandler.ListRequests)
			matches.POST("/:request_id/accept", r.matchHandler.Accept)
			matches.POST("/:request_id/reject", r.matchHandler.Reject)
		}

		groups := api.Group("/groups")
		{
			groups.GET("/:group_id", r.groupHandler.GetGroup)
			groups.GET("/:group_id/members", r.groupHandler.GetMembers)
			groups.POST("/:group_id/leave", r.groupHandler.Leave)
			groups.GET("/:group_id/messages", r.groupHandler.GetMessages)
			groups.POST("/:group_id/messages", r.groupHandler.SendMessage)
		}
	}

	return router
}
