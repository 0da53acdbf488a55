package service

import (
	"context"
	"io"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

// postRepoStub is a function-field stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	getByIDFn        func(context.Context, uint) (*models.Post, error)
	listFn           func(context.Context, int, int, bool) ([]*models.Post, error)
	updateFn         func(context.Context, *models.Post) error
	deleteFn         func(context.Context, uint) error
	incrementLikesFn func(context.Context, uint) (int, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int, withComments bool) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset, withComments)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) IncrementLikes(ctx context.Context, id uint) (int, error) {
	return s.incrementLikesFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, Title: "a post"}, nil
		},
		listFn: func(_ context.Context, _, _ int, _ bool) ([]*models.Post, error) {
			return nil, nil
		},
		updateFn:         func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:         func(_ context.Context, _ uint) error { return nil },
		incrementLikesFn: func(_ context.Context, _ uint) (int, error) { return 1, nil },
	}
}

// commentRepoStub is a function-field stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn      func(context.Context, *models.Comment) error
	getByIDFn     func(context.Context, uint) (*models.Comment, error)
	listByPostFn  func(context.Context, uint, int, int) ([]*models.Comment, error)
	countByPostFn func(context.Context, uint) (int64, error)
	deleteFn      func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id}, nil
		},
		listByPostFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, error) {
			return nil, nil
		},
		countByPostFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		deleteFn:      func(_ context.Context, _ uint) error { return nil },
	}
}

// userRepoStub is a function-field stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn             func(context.Context, uint) (*models.User, error)
	getByEmailFn          func(context.Context, string) (*models.User, error)
	getByResetTokenHashFn func(context.Context, string) (*models.User, error)
	createFn              func(context.Context, *models.User) error
	updateFn              func(context.Context, *models.User) error
	setResetTokenFn       func(context.Context, uint, string, time.Time) error
	clearResetTokenFn     func(context.Context, uint) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByResetTokenHash(ctx context.Context, hash string) (*models.User, error) {
	return s.getByResetTokenHashFn(ctx, hash)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) SetResetToken(ctx context.Context, userID uint, hash string, expire time.Time) error {
	return s.setResetTokenFn(ctx, userID, hash, expire)
}
func (s *userRepoStub) ClearResetToken(ctx context.Context, userID uint) error {
	return s.clearResetTokenFn(ctx, userID)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "alice", Email: "alice@example.com"}, nil
		},
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, nil
		},
		getByResetTokenHashFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, nil
		},
		createFn:          func(_ context.Context, _ *models.User) error { return nil },
		updateFn:          func(_ context.Context, _ *models.User) error { return nil },
		setResetTokenFn:   func(_ context.Context, _ uint, _ string, _ time.Time) error { return nil },
		clearResetTokenFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// mailerStub records sent mail and can be told to fail.
type mailerStub struct {
	sendErr error
	sent    []sentMail
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *mailerStub) Send(to, subject, body string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

// uploaderStub records uploads and removals.
type uploaderStub struct {
	uploadErr error
	uploaded  []string
	removed   []string
}

func (u *uploaderStub) Upload(filename string, r io.Reader) (string, string, error) {
	if u.uploadErr != nil {
		return "", "", u.uploadErr
	}
	id := "stored-" + filename
	u.uploaded = append(u.uploaded, id)
	return id, "/uploads/" + id, nil
}

func (u *uploaderStub) Remove(id string) error {
	u.removed = append(u.removed, id)
	return nil
}
