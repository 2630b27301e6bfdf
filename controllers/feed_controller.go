package controllers

import (
	"fmt"
	"net/http"

	"github.com/eduncan911/podcast"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/podcastr/podcastr-backend/models"
)

// GetAuthorFeed renders an author's podcasts as an RSS 2.0 feed so they can
// be followed from any podcast client.
func GetAuthorFeed(c *gin.Context) {
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
	if len(podcasts) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No podcasts for this author"})
		return
	}

	author := podcasts[0].Author
	newest := podcasts[0].CreatedAt
	oldest := podcasts[len(podcasts)-1].CreatedAt

	feed := podcast.New(
		fmt.Sprintf("%s on Podcastr", author),
		fmt.Sprintf("https://podcastr.app/profile/%s", authorID),
		fmt.Sprintf("Podcasts published by %s", author),
		&oldest, &newest,
	)
	if img := podcasts[0].AuthorImageURL; img != "" {
		feed.AddImage(img)
	}

	for i := range podcasts {
		p := &podcasts[i]
		item := podcast.Item{
			Title:       p.PodcastTitle,
			Description: p.PodcastDescription,
			Link:        fmt.Sprintf("https://podcastr.app/podcasts/%s", p.ID),
		}
		pubDate := p.CreatedAt
		item.AddPubDate(&pubDate)
		item.AddEnclosure(p.AudioURL, podcast.MP3, 0)
		if p.ImageURL != "" {
			item.AddImage(p.ImageURL)
		}
		if _, err := feed.AddItem(item); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not build feed", "details": err.Error()})
			return
		}
	}

	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", feed.Bytes())
}
