package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/podcastr/podcastr-backend/models"
	"github.com/podcastr/podcastr-backend/services"
)

type Handler struct {
	DB *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db}
}

func (h *Handler) HandleAudioDurationTask(ctx context.Context, t *asynq.Task) error {
	var p AudioDurationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal %s payload: %v: %w", TypeAudioDuration, err, asynq.SkipRetry)
	}

	duration, err := services.MP3DurationFromURL(p.AudioURL)
	if err != nil {
		return fmt.Errorf("compute duration for podcast %s: %w", p.PodcastID, err)
	}

	err = h.DB.WithContext(ctx).
		Model(&models.Podcast{}).
		Where("id = ?", p.PodcastID).
		UpdateColumn("audio_duration", duration).Error
	if err != nil {
		return fmt.Errorf("update duration for podcast %s: %w", p.PodcastID, err)
	}

	log.Printf("Backfilled audio_duration=%.1fs for podcast %s", duration, p.PodcastID)
	return nil
}
