package repository

import (
	"testing"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory SQLite database with the full schema.
// A single connection keeps the in-memory database alive and serializes
// access, which SQLite requires anyway.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Username: "author",
		Email:    email,
		Password: "hashed-password",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, authorID uint) *models.Post {
	t.Helper()
	post := &models.Post{
		Title: "Test Post",
		Content: []models.ContentBlock{
			{Type: models.BlockTypeText, Text: "hello world"},
		},
		AuthorID: authorID,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}
