package main

import (
	"log"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/podcastr/podcastr-backend/config"
	"github.com/podcastr/podcastr-backend/tasks"
)

// Worker process: consumes background tasks queued by the API server.
// Currently only the audio duration backfill.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	config.InitDB()

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		log.Fatal("REDIS_ADDR is required for the worker")
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	handler := tasks.NewHandler(config.DB)
	mux.HandleFunc(tasks.TypeAudioDuration, handler.HandleAudioDurationTask)

	log.Println("Worker running, Redis at", redisAddr)
	if err := srv.Run(mux); err != nil {
		log.Fatal("worker stopped:", err)
	}
}
