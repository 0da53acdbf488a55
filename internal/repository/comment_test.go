package repository

import (
	"context"
	"fmt"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postCommentsCount(t *testing.T, repo PostRepository, postID uint) int {
	t.Helper()
	post, err := repo.GetByID(context.Background(), postID)
	require.NoError(t, err)
	return post.CommentsCount
}

func TestCommentRepository_Create_IncrementsCounter(t *testing.T) {
	db := setupTestDB(t)
	commentRepo := NewCommentRepository(db)
	postRepo := NewPostRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "author@example.com")
	post := createTestPost(t, db, user.ID)

	for i := 1; i <= 3; i++ {
		comment := &models.Comment{
			Text:       fmt.Sprintf("comment %d", i),
			AuthorName: "visitor",
			PostID:     post.ID,
		}
		require.NoError(t, commentRepo.Create(ctx, comment))
		require.NotZero(t, comment.ID)
		assert.Equal(t, i, postCommentsCount(t, postRepo, post.ID))
	}
}

func TestCommentRepository_Create_MissingPostRollsBack(t *testing.T) {
	db := setupTestDB(t)
	commentRepo := NewCommentRepository(db)
	ctx := context.Background()

	comment := &models.Comment{
		Text:       "orphan",
		AuthorName: "visitor",
		PostID:     999,
	}
	err := commentRepo.Create(ctx, comment)
	assertErrorCode(t, err, models.CodeNotFound)

	// The insert must have been rolled back with the failed counter update.
	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCommentRepository_Delete_DecrementsCounter(t *testing.T) {
	db := setupTestDB(t)
	commentRepo := NewCommentRepository(db)
	postRepo := NewPostRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "author@example.com")
	post := createTestPost(t, db, user.ID)

	comment := &models.Comment{Text: "bye", AuthorName: "visitor", PostID: post.ID}
	require.NoError(t, commentRepo.Create(ctx, comment))
	require.Equal(t, 1, postCommentsCount(t, postRepo, post.ID))

	require.NoError(t, commentRepo.Delete(ctx, comment.ID))
	assert.Equal(t, 0, postCommentsCount(t, postRepo, post.ID))

	_, err := commentRepo.GetByID(ctx, comment.ID)
	assertErrorCode(t, err, models.CodeNotFound)
}

func TestCommentRepository_Delete_MissingLeavesCounter(t *testing.T) {
	db := setupTestDB(t)
	commentRepo := NewCommentRepository(db)
	postRepo := NewPostRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "author@example.com")
	post := createTestPost(t, db, user.ID)

	comment := &models.Comment{Text: "stays", AuthorName: "visitor", PostID: post.ID}
	require.NoError(t, commentRepo.Create(ctx, comment))

	err := commentRepo.Delete(ctx, 999)
	assertErrorCode(t, err, models.CodeNotFound)

	// A failed delete must not touch any counter.
	assert.Equal(t, 1, postCommentsCount(t, postRepo, post.ID))
}

func TestCommentRepository_ListByPost(t *testing.T) {
	db := setupTestDB(t)
	commentRepo := NewCommentRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "author@example.com")
	post := createTestPost(t, db, user.ID)
	other := createTestPost(t, db, user.ID)

	for i := 0; i < 5; i++ {
		require.NoError(t, commentRepo.Create(ctx, &models.Comment{
			Text:       fmt.Sprintf("comment %d", i),
			AuthorName: "visitor",
			PostID:     post.ID,
		}))
	}
	require.NoError(t, commentRepo.Create(ctx, &models.Comment{
		Text:       "elsewhere",
		AuthorName: "visitor",
		PostID:     other.ID,
	}))

	t.Run("newest first", func(t *testing.T) {
		comments, err := commentRepo.ListByPost(ctx, post.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, comments, 5)
		assert.Equal(t, "comment 4", comments[0].Text)
		assert.Equal(t, "comment 0", comments[4].Text)
	})

	t.Run("pagination", func(t *testing.T) {
		comments, err := commentRepo.ListByPost(ctx, post.ID, 2, 2)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "comment 2", comments[0].Text)
	})

	t.Run("count is scoped to the post", func(t *testing.T) {
		total, err := commentRepo.CountByPost(ctx, post.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 5, total)

		total, err = commentRepo.CountByPost(ctx, other.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})
}

func TestCommentCounterMatchesRows(t *testing.T) {
	db := setupTestDB(t)
	commentRepo := NewCommentRepository(db)
	postRepo := NewPostRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "author@example.com")
	post := createTestPost(t, db, user.ID)

	var ids []uint
	for i := 0; i < 4; i++ {
		c := &models.Comment{Text: "c", AuthorName: "visitor", PostID: post.ID}
		require.NoError(t, commentRepo.Create(ctx, c))
		ids = append(ids, c.ID)
	}
	require.NoError(t, commentRepo.Delete(ctx, ids[0]))
	require.NoError(t, commentRepo.Delete(ctx, ids[2]))

	total, err := commentRepo.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, postCommentsCount(t, postRepo, post.ID), total,
		"denormalized counter must equal the live comment rows")
}
