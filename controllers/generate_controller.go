package controllers

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/podcastr/podcastr-backend/services"
)

type GeneratePodcastInput struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// GeneratePodcast synthesizes speech for a prompt and returns the MP3 as
// base64 so it can cross the JSON boundary. One attempt per request; the
// client retries with a new explicit action.
func GeneratePodcast(c *gin.Context) {
	var input GeneratePodcastInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Text and voice are required"})
		return
	}

	prompt := services.CleanVoicePrompt(input.Text)
	if prompt == "" || input.Voice == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Text and voice are required"})
		return
	}
	if !services.IsSupportedVoice(input.Voice) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unsupported voice type"})
		return
	}

	audio, err := TTS.Synthesize(c.Request.Context(), input.Voice, prompt)
	if err != nil {
		if errors.Is(err, services.ErrMissingInput) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Text and voice are required"})
			return
		}
		log.Println("Error generating podcast:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate podcast"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"audio": base64.StdEncoding.EncodeToString(audio),
	})
}

// UploadThumbnail stores a user-selected image under thumbnails/ with a fresh
// random filename and returns the durable URL. Re-invocations are
// last-write-wins; nothing cancels an earlier in-flight upload.
func UploadThumbnail(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file attached"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating thumbnail", "details": err.Error()})
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating thumbnail", "details": err.Error()})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	ext := filepath.Ext(fileHeader.Filename)

	imageURL, storageID, err := services.UploadThumbnail(Blobs, uuid.New(), buf.Bytes(), ext, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating thumbnail", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "Thumbnail generated successfully",
		"image_url":        imageURL,
		"image_storage_id": storageID,
	})
}
