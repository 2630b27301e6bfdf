package controllers

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/podcastr/podcastr-backend/models"
	"github.com/podcastr/podcastr-backend/services"
	"github.com/podcastr/podcastr-backend/tasks"
	"github.com/podcastr/podcastr-backend/ws"
)

type SavePodcastInput struct {
	PodcastTitle       string `json:"podcast_title" binding:"required,min=2"`
	PodcastDescription string `json:"podcast_description" binding:"required,min=2"`
	VoicePrompt        string `json:"voice_prompt" binding:"required"`
	VoiceType          string `json:"voice_type" binding:"required"`
	Audio              string `json:"audio"`     // base64 MP3 from the generate step
	ImageURL           string `json:"image_url"` // from the thumbnail upload
	ImageStorageID     string `json:"image_storage_id"`
}

// SavePodcast publishes a finished draft: uploads the audio under a random
// filename scoped to the author, then inserts the podcast record. Views and
// audio duration start at 0; duration is backfilled by the worker.
func SavePodcast(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetString("user_id")

	var input SavePodcastInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var audioBlob []byte
	if input.Audio != "" {
		decoded, err := base64.StdEncoding.DecodeString(input.Audio)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Audio payload is not valid base64"})
			return
		}
		audioBlob = decoded
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated."})
		return
	}

	draft := &services.Draft{
		Title:              input.PodcastTitle,
		Description:        input.PodcastDescription,
		VoiceType:          input.VoiceType,
		VoicePrompt:        input.VoicePrompt,
		AudioBlob:          audioBlob,
		ThumbnailURL:       input.ImageURL,
		ThumbnailStorageID: input.ImageStorageID,
		State:              services.StateGenerated,
	}

	who := services.Identity{
		ID:        user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.ProfilePicture,
	}

	workflow := services.NewPublishWorkflow(TTS, Blobs, &services.GormPodcastStore{DB: db})
	record, err := workflow.Save(c.Request.Context(), draft, who)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDraftNotReady):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please generate audio/thumbnail to save."})
		case errors.Is(err, services.ErrNotAuthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save podcast.", "details": err.Error()})
		}
		return
	}

	// Post-publish collaborators, off the request path
	ws.BroadcastPodcastPublished(record)
	if Tasks != nil {
		if task, err := tasks.NewAudioDurationTask(record.ID.String(), record.AudioURL); err == nil {
			if _, err := Tasks.Enqueue(task); err != nil {
				log.Println("enqueue audio duration task failed:", err)
			}
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Podcast saved!",
		"podcast": record,
	})
}

// GetPodcasts returns all podcasts, most viewed first.
func GetPodcasts(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var podcasts []models.Podcast
	if err := db.Order("views DESC").Find(&podcasts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch podcasts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"podcasts": podcasts})
}

// GetTrendingPodcasts returns the 8 most viewed podcasts.
func GetTrendingPodcasts(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var podcasts []models.Podcast
	if err := db.Order("views DESC").Limit(8).Find(&podcasts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch trending podcasts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"podcasts": podcasts})
}

// GetPodcastByID returns one podcast and counts the view.
func GetPodcastByID(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	id := c.Param("id")

	var podcast models.Podcast
	if err := db.First(&podcast, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Podcast not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch podcast"})
		}
		return
	}

	// Count the view; the stale value in `podcast` is bumped to match.
	if err := db.Model(&podcast).UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		log.Println("view count update failed:", err)
	} else {
		podcast.Views++
	}

	c.JSON(http.StatusOK, gin.H{"podcast": podcast})
}

// GetSimilarPodcasts returns podcasts sharing the voice type, excluding the
// podcast itself.
func GetSimilarPodcasts(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	id := c.Param("id")

	var podcast models.Podcast
	if err := db.First(&podcast, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Podcast not found"})
		return
	}

	var similar []models.Podcast
	if err := db.
		Where("voice_type = ? AND id != ?", podcast.VoiceType, podcast.ID).
		Order("views DESC").
		Find(&similar).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch similar podcasts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"podcasts": similar})
}

// GetPodcastsByAuthor returns an author's podcasts plus their total listeners
// (sum of views).
func GetPodcastsByAuthor(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	authorID := c.Param("id")

	var podcasts []models.Podcast
	if err := db.
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&podcasts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch podcasts"})
		return
	}

	listeners := 0
	for _, p := range podcasts {
		listeners += p.Views
	}

	c.JSON(http.StatusOK, gin.H{
		"podcasts":  podcasts,
		"listeners": listeners,
	})
}

var searchFields = []string{"author", "podcast_title", "podcast_description"}

// SearchPodcasts prefix-matches the term against author, title and
// description in turn, returning the first field with hits.
func SearchPodcasts(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		c.JSON(http.StatusOK, gin.H{"podcasts": []models.Podcast{}})
		return
	}

	for _, field := range searchFields {
		var podcasts []models.Podcast
		if err := db.
			Where(field+" ILIKE ?", term+"%").
			Limit(10).
			Find(&podcasts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
			return
		}
		if len(podcasts) > 0 {
			c.JSON(http.StatusOK, gin.H{"podcasts": podcasts})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"podcasts": []models.Podcast{}})
}

// DeletePodcast removes the record together with both referenced blobs.
// Owner only.
func DeletePodcast(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	email := c.GetString("email")

	idStr := c.Param("id")
	podcastID, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid podcast ID"})
		return
	}

	var podcast models.Podcast
	if err := db.First(&podcast, "id = ?", podcastID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Podcast not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch podcast", "details": err.Error()})
		}
		return
	}

	if podcast.AuthorID != email {
		c.JSON(http.StatusForbidden, gin.H{"error": "You may only delete your own podcasts"})
		return
	}

	if podcast.AudioStorageID != "" {
		if err := Blobs.Delete(podcast.AudioStorageID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete audio file", "details": err.Error()})
			return
		}
	}
	if podcast.ImageStorageID != "" {
		if err := Blobs.Delete(podcast.ImageStorageID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete thumbnail", "details": err.Error()})
			return
		}
	}

	if err := db.Delete(&models.Podcast{}, "id = ?", podcast.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete podcast", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Podcast deleted successfully"})
}
