package controllers

import (
	"github.com/podcastr/podcastr-backend/services"
	"github.com/podcastr/podcastr-backend/tasks"
)

// Shared collaborators, wired once in cmd/main.go.
var (
	TTS   services.Synthesizer
	Blobs services.BlobStore
	Tasks tasks.Enqueuer // nil when no Redis is configured
)
