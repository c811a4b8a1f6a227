package rest

import (
	"net/http"

	"github.com/dfryer1193/codeleap/internal/middleware"
	"github.com/gin-gonic/gin"
)

// NewApi registers the local REST surface on router.
func NewApi(router *gin.Engine, s *Server) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	session := router.Group("/session")
	{
		session.GET("", s.GetSession)
		session.POST("", s.SignIn)
		session.DELETE("", s.SignOut)
	}

	signedIn := router.Group("")
	signedIn.Use(middleware.RequireSession(s.current))
	{
		signedIn.GET("/events", s.hub.HandleWebSocket)

		posts := signedIn.Group("/posts")
		{
			posts.GET("", GetPosts)
			posts.POST("", CreatePost)
			posts.POST("/refresh", RefreshPosts)
		}

		filter := signedIn.Group("/filter")
		{
			filter.PUT("/author", SetAuthorFilter)
			filter.DELETE("/author", ClearAuthorFilter)
			filter.POST("/mine", ToggleMyPosts)
			filter.DELETE("/mine", ClearMyPosts)
		}

		edit := signedIn.Group("/dialogs/edit")
		{
			edit.POST("", OpenEdit)
			edit.PUT("", SaveEdit)
			edit.DELETE("", CancelEdit)
		}

		del := signedIn.Group("/dialogs/delete")
		{
			del.POST("", RequestDelete)
			del.POST("/confirm", ConfirmDelete)
			del.DELETE("", CancelDelete)
		}
	}
}

// NewRouter builds a gin engine with logging and panic recovery and registers the API.
func NewRouter(s *Server) *gin.Engine {
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))
	NewApi(router, s)
	return router
}
