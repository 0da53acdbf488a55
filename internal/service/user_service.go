package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"inkwell/internal/cache"
	"inkwell/internal/mail"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/storage"
	"inkwell/internal/token"
	"inkwell/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService implements account lifecycle operations: profile updates,
// password changes and the password-reset email flow.
type UserService struct {
	userRepo repository.UserRepository
	mailer   mail.Mailer
	uploader storage.Uploader
	appURL   string
}

// NewUserService creates a new UserService. appURL is the public base URL
// embedded in password-reset links.
func NewUserService(
	userRepo repository.UserRepository,
	mailer mail.Mailer,
	uploader storage.Uploader,
	appURL string,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		mailer:   mailer,
		uploader: uploader,
		appURL:   appURL,
	}
}

// UpdateProfileInput is a partial profile update. Empty strings keep prior
// values; a non-nil Avatar replaces the stored avatar.
type UpdateProfileInput struct {
	UserID         uint
	Username       string
	Email          string
	AboutMe        *string
	AvatarFilename string
	Avatar         io.Reader
}

// ChangePasswordInput carries a password change for an authenticated user.
type ChangePasswordInput struct {
	UserID             uint
	CurrentPassword    string
	NewPassword        string
	ConfirmNewPassword string
}

// ResetPasswordInput carries a password reset via emailed token.
type ResetPasswordInput struct {
	Token           string
	Password        string
	ConfirmPassword string
}

// UpdateProfile applies a partial update to the user's profile. When a new
// avatar is uploaded the old stored object is removed after the profile row
// commits.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != "" {
		if err := validation.ValidateUsername(in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = in.Username
	}
	if in.Email != "" {
		if err := validation.ValidateEmail(in.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Email = in.Email
	}
	if in.AboutMe != nil {
		user.AboutMe = *in.AboutMe
	}

	oldAvatarID := ""
	if in.Avatar != nil {
		id, url, err := s.uploader.Upload(in.AvatarFilename, in.Avatar)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		oldAvatarID = user.AvatarID
		user.AvatarID = id
		user.AvatarURL = url
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	// Cached feeds embed the author's public profile, so drop the feed now.
	// Per-post detail caches are keyed by post and age out within
	// cache.PostTTL.
	cache.InvalidatePostsList(ctx)

	if oldAvatarID != "" {
		if err := s.uploader.Remove(oldAvatarID); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to remove old avatar",
				slog.String("avatar_id", oldAvatarID), slog.Any("error", err))
		}
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new one.
func (s *UserService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	if in.CurrentPassword == "" || in.NewPassword == "" || in.ConfirmNewPassword == "" {
		return models.NewValidationError("Please fill all password fields")
	}
	if in.NewPassword != in.ConfirmNewPassword {
		return models.NewValidationError("New passwords do not match")
	}
	if err := validation.ValidatePassword(in.NewPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)); err != nil {
		return models.NewUnauthenticatedError("Incorrect current password!")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hash)
	return s.userRepo.Update(ctx, user)
}

// ForgotPassword generates a reset token, stores its digest, and emails the
// plaintext reset link. If the email cannot be sent the stored token is
// cleared again, so a broken relay never leaves live reset state behind.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return models.NewValidationError("Email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return &models.AppError{
			Code:    models.CodeNotFound,
			Message: "User Not Found! Please provide a valid Email",
		}
	}

	rt, err := token.NewResetToken()
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.userRepo.SetResetToken(ctx, user.ID, rt.Hash, rt.ExpiresAt); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset/password/%s", s.appURL, rt.Plaintext)
	body := fmt.Sprintf(
		"Your password reset link is:\n\n%s\n\nThe link expires in 15 minutes. If you did not request this, ignore this email.",
		resetURL,
	)
	if err := s.mailer.Send(user.Email, "Password Recovery", body); err != nil {
		if clearErr := s.userRepo.ClearResetToken(ctx, user.ID); clearErr != nil {
			middleware.Logger.ErrorContext(ctx, "failed to clear reset token after send failure",
				slog.Uint64("user_id", uint64(user.ID)), slog.Any("error", clearErr))
		}
		return models.NewInternalError(err)
	}
	return nil
}

// ResetPassword consumes an emailed reset token: it validates the new
// password, matches the token digest against an unexpired stored one, and
// clears the token alongside the password write so it is single-use.
func (s *UserService) ResetPassword(ctx context.Context, in ResetPasswordInput) (*models.User, error) {
	if in.Password == "" || in.ConfirmPassword == "" {
		return nil, models.NewValidationError("Please provide password and confirm password")
	}
	if in.Password != in.ConfirmPassword {
		return nil, models.NewValidationError("Passwords do not match")
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetByResetTokenHash(ctx, token.HashResetToken(in.Token))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewValidationError("Reset token is invalid or has expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user.Password = string(hash)
	user.ResetPasswordToken = nil
	user.ResetPasswordExpire = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
