package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int, withComments bool) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	IncrementLikes(ctx context.Context, id uint) (int, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// publicAuthor limits the preloaded author to their public fields.
func publicAuthor(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "avatar_url")
}

// newestComments orders preloaded comments newest-first.
func newestComments(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC, id DESC")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		fetchErr := r.db.WithContext(ctx).
			Preload("Author", publicAuthor).
			Preload("Comments", newestComments).
			First(&post, id).Error
		if fetchErr != nil {
			if errors.Is(fetchErr, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(fetchErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int, withComments bool) ([]*models.Post, error) {
	var posts []*models.Post

	query := r.db.WithContext(ctx).
		Preload("Author", publicAuthor).
		Order("created_at DESC, id DESC")
	if withComments {
		query = query.Preload("Comments", newestComments)
	}
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	if err := query.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Update writes only the editable columns. The counters move through their
// own atomic column updates; writing the whole snapshot back would overwrite
// likes and comments that landed after the post was read.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(post).
		Select("title", "content", "updated_at").
		Updates(models.Post{Title: post.Title, Content: post.Content})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	cache.InvalidatePost(ctx, post.ID)
	cache.InvalidatePostsList(ctx)
	return nil
}

// Delete removes the post and its comments in one transaction. A comment is
// meaningless without its parent post.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	cache.InvalidatePostsList(ctx)
	return nil
}

// IncrementLikes bumps the like counter by exactly one with a store-level
// atomic update (never read-modify-write, so concurrent likes are not lost)
// and returns the new count.
func (r *postRepository) IncrementLikes(ctx context.Context, id uint) (int, error) {
	var likes int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ?", id).
			UpdateColumn("likes", gorm.Expr("likes + ?", 1))
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		if err := tx.Model(&models.Post{}).
			Select("likes").
			Where("id = ?", id).
			Scan(&likes).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	cache.InvalidatePost(ctx, id)
	cache.InvalidatePostsList(ctx)
	return likes, nil
}
