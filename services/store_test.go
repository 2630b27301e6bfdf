package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/podcastr/podcastr-backend/models"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 mockDB,
		PreferSimpleProtocol: true,
		WithoutReturning:     true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestGormPodcastStoreInsert(t *testing.T) {
	db, mock := newMockGorm(t)
	store := &GormPodcastStore{DB: db}

	mock.ExpectExec(`INSERT INTO "podcasts"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Insert(context.Background(), &models.Podcast{
		ID:           uuid.New(),
		User:         "alice@example.com",
		PodcastTitle: "Morning show",
		AudioURL:     "https://cdn.example.com/podcasts/alice@example.com/a.mp3",
		AuthorID:     "alice@example.com",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPodcastStoreInsertError(t *testing.T) {
	db, mock := newMockGorm(t)
	store := &GormPodcastStore{DB: db}

	mock.ExpectExec(`INSERT INTO "podcasts"`).
		WillReturnError(errors.New("connection refused"))

	err := store.Insert(context.Background(), &models.Podcast{
		ID:   uuid.New(),
		User: "alice@example.com",
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
