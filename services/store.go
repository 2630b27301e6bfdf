package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/podcastr/podcastr-backend/models"
)

// GormPodcastStore persists podcast records through GORM.
type GormPodcastStore struct {
	DB *gorm.DB
}

func (s *GormPodcastStore) Insert(ctx context.Context, p *models.Podcast) error {
	return s.DB.WithContext(ctx).Create(p).Error
}
