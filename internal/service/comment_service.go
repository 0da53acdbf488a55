package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// CommentService implements the comment subsystem.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

// AddCommentInput carries a new comment into the service.
type AddCommentInput struct {
	PostID     uint
	Text       string
	AuthorName string
}

// NewCommentService creates a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

const maxCommentLen = 10000

// AddComment validates and stores a comment; the parent post's counter is
// incremented in the same transaction as the insert.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if in.Text == "" || in.AuthorName == "" {
		return nil, models.NewValidationError("Text and author name are required")
	}
	if len(in.Text) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}
	if len(in.AuthorName) > maxAuthorLen {
		return nil, models.NewValidationError("Author name too long (max 100 characters)")
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:       in.Text,
		AuthorName: in.AuthorName,
		PostID:     in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns one page of a post's comments, newest-first, along
// with the total live comment count.
func (s *CommentService) ListComments(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, int64, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, 0, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.commentRepo.CountByPost(ctx, postID)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// DeleteComment removes a comment; the parent counter decrement and the row
// delete happen in one transaction, so a missing comment leaves the counter
// untouched.
func (s *CommentService) DeleteComment(ctx context.Context, commentID uint) error {
	return s.commentRepo.Delete(ctx, commentID)
}
