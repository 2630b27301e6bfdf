package models

import (
	"time"

	"github.com/google/uuid"
)

// Podcast is the persisted podcast record. Author fields are copied from the
// authenticated identity at publish time and are not re-validated afterward.
type Podcast struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	User               string    `gorm:"size:150;not null;index" json:"user"` // owner email
	PodcastTitle       string    `gorm:"size:255;not null" json:"podcast_title"`
	PodcastDescription string    `gorm:"type:text" json:"podcast_description"`
	AudioURL           string    `gorm:"type:text;not null" json:"audio_url"`
	AudioStorageID     string    `gorm:"type:text" json:"audio_storage_id"` // object path, kept for deletion
	ImageURL           string    `gorm:"type:text" json:"image_url"`
	ImageStorageID     string    `gorm:"type:text" json:"image_storage_id"`
	Author             string    `gorm:"size:150" json:"author"`
	AuthorID           string    `gorm:"size:150;index" json:"author_id"`
	AuthorImageURL     string    `gorm:"type:text" json:"author_image_url"`
	VoicePrompt        string    `gorm:"type:text" json:"voice_prompt"` // normalized form
	VoiceType          string    `gorm:"size:64;index" json:"voice_type"`
	AudioDuration      float64   `json:"audio_duration"` // seconds, backfilled by the worker
	Views              int       `json:"views"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
}
