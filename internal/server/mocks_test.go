package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/token"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByResetTokenHash(ctx context.Context, hash string) (*models.User, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SetResetToken(ctx context.Context, userID uint, hash string, expire time.Time) error {
	args := m.Called(ctx, userID, hash, expire)
	return args.Error(0)
}

func (m *MockUserRepository) ClearResetToken(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, limit, offset int, withComments bool) ([]*models.Post, error) {
	args := m.Called(ctx, limit, offset, withComments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) IncrementLikes(ctx context.Context, id uint) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

// MockCommentRepository is a mock of the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	args := m.Called(ctx, postID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// nullMailer drops all outbound mail.
type nullMailer struct{}

func (nullMailer) Send(_, _, _ string) error { return nil }

// nullUploader satisfies storage.Uploader without touching disk.
type nullUploader struct{}

func (nullUploader) Upload(filename string, _ io.Reader) (string, string, error) {
	return filename, "/uploads/" + filename, nil
}
func (nullUploader) Remove(_ string) error { return nil }

type testMocks struct {
	users    *MockUserRepository
	posts    *MockPostRepository
	comments *MockCommentRepository
}

// newTestServer builds a Server on mock repositories with routes registered.
func newTestServer(t *testing.T) (*fiber.App, *Server, testMocks) {
	t.Helper()

	mocks := testMocks{
		users:    new(MockUserRepository),
		posts:    new(MockPostRepository),
		comments: new(MockCommentRepository),
	}

	s := &Server{
		config: &config.Config{
			JWTSecret:        "test-secret",
			CookieExpireDays: 7,
			AppURL:           "http://localhost:5173",
			UploadDir:        t.TempDir(),
		},
		userRepo:    mocks.users,
		postRepo:    mocks.posts,
		commentRepo: mocks.comments,
		tokens:      token.New("test-secret", token.SessionTTL),
		mailer:      nullMailer{},
		uploader:    nullUploader{},
	}

	app := fiber.New()
	s.SetupRoutes(app)
	return app, s, mocks
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// sessionCookie issues a valid session token for userID and formats it as a
// Cookie header value.
func sessionCookie(t *testing.T, s *Server, userID uint) string {
	t.Helper()
	tok, err := s.tokens.Issue(userID)
	require.NoError(t, err)
	return sessionCookieName + "=" + tok
}

func decodeEnvelope(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var envelope map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}
