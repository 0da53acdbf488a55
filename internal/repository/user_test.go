package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hashed",
	}
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetByID(context.Background(), 42)
	assertErrorCode(t, err, models.CodeNotFound)
}

func TestUserRepository_GetByEmail_MissingIsNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	user, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_DuplicateEmailConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{
		Username: "alice", Email: "dup@example.com", Password: "x",
	}))

	err := repo.Create(ctx, &models.User{
		Username: "bob", Email: "dup@example.com", Password: "y",
	})
	assertErrorCode(t, err, models.CodeConflict)
}

func TestUserRepository_ResetTokenLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "reset@example.com")

	t.Run("unexpired token is found", func(t *testing.T) {
		require.NoError(t, repo.SetResetToken(ctx, user.ID, "digest-1", time.Now().Add(15*time.Minute)))

		got, err := repo.GetByResetTokenHash(ctx, "digest-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("wrong digest is nil", func(t *testing.T) {
		got, err := repo.GetByResetTokenHash(ctx, "other-digest")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("expired token is nil", func(t *testing.T) {
		require.NoError(t, repo.SetResetToken(ctx, user.ID, "digest-2", time.Now().Add(-time.Minute)))

		got, err := repo.GetByResetTokenHash(ctx, "digest-2")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("clear removes both fields", func(t *testing.T) {
		require.NoError(t, repo.SetResetToken(ctx, user.ID, "digest-3", time.Now().Add(15*time.Minute)))
		require.NoError(t, repo.ClearResetToken(ctx, user.ID))

		got, err := repo.GetByResetTokenHash(ctx, "digest-3")
		require.NoError(t, err)
		assert.Nil(t, got)

		fresh, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Nil(t, fresh.ResetPasswordToken)
		assert.Nil(t, fresh.ResetPasswordExpire)
	})
}

func TestUserRepository_Create_PostgresUniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "uni_users_email" (SQLSTATE 23505)`))
	mock.ExpectRollback()

	err := repo.Create(ctx, &models.User{
		Username: "alice", Email: "dup@example.com", Password: "x",
	})
	assertErrorCode(t, err, models.CodeConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
