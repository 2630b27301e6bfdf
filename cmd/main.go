package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/podcastr/podcastr-backend/config"
	"github.com/podcastr/podcastr-backend/controllers"
	"github.com/podcastr/podcastr-backend/routes"
	"github.com/podcastr/podcastr-backend/services"
	"github.com/podcastr/podcastr-backend/utils"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	config.InitDB()

	// Shared collaborators for the controllers
	controllers.TTS = services.NewSynthesizerFromEnv()
	controllers.Blobs = utils.NewSupabaseStoreFromEnv()

	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		controllers.Tasks = asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
		log.Println("Background tasks enabled via Redis at", redisAddr)
	} else {
		log.Println("REDIS_ADDR not set, audio duration backfill disabled")
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r = routes.SetupRouter(r, config.DB)

	r.GET("/", func(c *gin.Context) {
		c.String(200, "Podcastr server is running")
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("Server running at Port:" + port)
	r.Run(":" + port)
}
