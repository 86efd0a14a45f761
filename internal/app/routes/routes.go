package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/elihudev/elihudroom/internal/app/controllers"
	"github.com/elihudev/elihudroom/internal/middleware"
	"github.com/elihudev/elihudroom/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	classController *controllers.ClassController,
	postController *controllers.PostController,
	feedHandler *websocket.Handler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/me", authController.Me)

		classes := authenticated.Group("/classes")
		{
			classes.POST("", classController.CreateClass)
			classes.GET("", classController.ListClasses)
			classes.POST("/join", classController.JoinClass)
			classes.GET("/:id", classController.GetClass)
			classes.PUT("/:id", classController.UpdateClass)
			classes.DELETE("/:id", classController.DeleteClass)

			classes.GET("/:id/posts", postController.ListPosts)
			classes.POST("/:id/posts", postController.CreatePost)

			// Live feed over websocket; the auth middleware also accepts
			// the token as a query parameter here
			classes.GET("/:id/feed", feedHandler.HandleFeed)
		}

		posts := authenticated.Group("/posts")
		{
			posts.PUT("/:postId", postController.UpdatePost)
			posts.DELETE("/:postId", postController.DeletePost)
		}
	}
}
