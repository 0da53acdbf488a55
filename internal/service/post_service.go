// Package service implements the business logic between handlers and repositories.
package service

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// PostService implements post aggregate operations.
type PostService struct {
	postRepo repository.PostRepository
}

// CreatePostInput carries a create request into the service.
type CreatePostInput struct {
	AuthorID uint
	Title    string
	Content  []models.ContentBlock
}

// ListPostsInput selects a feed page. Limit == 0 means the full unpaginated
// listing, which carries nested comments.
type ListPostsInput struct {
	Limit        int
	Offset       int
	WithComments bool
}

// UpdatePostInput is a partial update: empty Title and nil Content keep the
// prior values.
type UpdatePostInput struct {
	PostID  uint
	Title   string
	Content []models.ContentBlock
}

// NewPostService creates a new PostService.
func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

const (
	maxTitleLen  = 300
	maxBlockLen  = 50000
	maxBlockNum  = 200
	maxAuthorLen = 100
)

// validateBlocks checks that blocks form a well-formed content sequence.
func validateBlocks(blocks []models.ContentBlock) error {
	if len(blocks) == 0 {
		return models.NewValidationError("Content must be a non-empty sequence of blocks")
	}
	if len(blocks) > maxBlockNum {
		return models.NewValidationError("Content has too many blocks (max 200)")
	}
	for _, b := range blocks {
		if !models.ValidBlockType(b.Type) {
			return models.NewValidationError("Unknown content block type: " + b.Type)
		}
		switch b.Type {
		case models.BlockTypeText, models.BlockTypeCode:
			if b.Text == "" {
				return models.NewValidationError(b.Type + " block requires text")
			}
			if len(b.Text) > maxBlockLen {
				return models.NewValidationError("Content block too long (max 50000 characters)")
			}
		case models.BlockTypeImage, models.BlockTypeLink:
			if b.URL == "" {
				return models.NewValidationError(b.Type + " block requires a url")
			}
		}
	}
	return nil
}

// CreatePost validates and stores a new post with zeroed counters.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if err := validateBlocks(in.Content); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:    in.Title,
		Content:  in.Content,
		AuthorID: in.AuthorID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// ListPosts returns posts newest-first. The full listing is served through
// the cache; paginated feed pages go straight to the store.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	if in.Limit == 0 {
		var posts []*models.Post
		err := cache.Aside(ctx, cache.PostsListKey(), &posts, cache.ListTTL, func() error {
			var fetchErr error
			posts, fetchErr = s.postRepo.List(ctx, 0, 0, in.WithComments)
			return fetchErr
		})
		if err != nil {
			return nil, err
		}
		return posts, nil
	}
	return s.postRepo.List(ctx, in.Limit, in.Offset, in.WithComments)
}

// GetPost returns a post with its author's public profile and comments.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// UpdatePost applies a partial update.
//
// TODO: enforce ownership or an explicit role here. Any authenticated user
// can currently update any post; the route is documented admin-only but no
// role exists yet.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		if len(in.Title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 300 characters)")
		}
		post.Title = in.Title
	}
	if in.Content != nil {
		if err := validateBlocks(in.Content); err != nil {
			return nil, err
		}
		post.Content = in.Content
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post and, transactionally, its comments.
func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	return s.postRepo.Delete(ctx, id)
}

// LikePost increments the like counter by exactly one and returns the new
// count. Unauthenticated and undeduplicated on purpose: the product treats
// likes as a plain applause counter.
func (s *PostService) LikePost(ctx context.Context, id uint) (int, error) {
	return s.postRepo.IncrementLikes(ctx, id)
}
