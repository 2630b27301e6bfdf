package routes

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/podcastr/podcastr-backend/controllers"
	"github.com/podcastr/podcastr-backend/middleware"
	"github.com/podcastr/podcastr-backend/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/logingoogle", controllers.GoogleLogin)
		auth.GET("/me", middleware.AuthMiddleware(), controllers.Me)
	}

	// Read paths, no auth required
	public := api.Group("")
	{
		public.Use(middleware.DBMiddleware(db))

		public.GET("/podcasts", controllers.GetPodcasts)
		public.GET("/trending", controllers.GetTrendingPodcasts)
		public.GET("/search", controllers.SearchPodcasts)
		public.GET("/podcasts/:id", controllers.GetPodcastByID)
		public.GET("/podcasts/:id/similar", controllers.GetSimilarPodcasts)
		public.GET("/users/:id/podcasts", controllers.GetPodcastsByAuthor)
		public.GET("/users/:id/rss", controllers.GetAuthorFeed)
	}

	// Synthesis is the expensive call: 1 req/3s with a small burst per user
	ttsLimiter := middleware.NewRateLimiter(rate.Limit(1.0/3.0), 3)

	authed := api.Group("")
	{
		authed.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db))

		authed.POST("/generate-podcast", ttsLimiter.Middleware(), controllers.GeneratePodcast)
		authed.POST("/thumbnails", controllers.UploadThumbnail)
		authed.POST("/podcasts", controllers.SavePodcast)
		authed.DELETE("/podcasts/:id", controllers.DeletePodcast)
	}

	r.GET("/ws/status", ws.HandleStatusWebSocket)

	return r
}
