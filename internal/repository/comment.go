package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts the comment and increments the parent post's comments_count
// in a single transaction, so the aggregate counter can never drift from the
// live comment rows.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Model(&models.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + ?", 1))
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", comment.PostID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, comment.PostID)
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// Delete decrements the parent post's comments_count and removes the comment
// row in a single transaction. Decrement-then-delete: a failed delete rolls
// the decrement back rather than orphaning it.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	var postID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Comment", id)
			}
			return models.NewInternalError(err)
		}
		postID = comment.PostID

		res := tx.Model(&models.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count - ?", 1))
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if err := tx.Delete(&models.Comment{}, id).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, postID)
	cache.InvalidatePostsList(ctx)
	return nil
}
