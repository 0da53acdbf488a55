package server

import (
	"fmt"
	"io"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUserDetails handles GET /user/details
func (s *Server) GetUserDetails(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// UpdateProfile handles PUT /user/update/me. The request may be JSON or
// multipart; an "avatar" file part replaces the stored avatar image.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Username string  `json:"username" form:"username"`
		Email    string  `json:"email" form:"email"`
		AboutMe  *string `json:"aboutMe" form:"aboutMe"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.UpdateProfileInput{
		UserID:   userID,
		Username: req.Username,
		Email:    req.Email,
		AboutMe:  req.AboutMe,
	}

	if fh, err := c.FormFile("avatar"); err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Could not read avatar upload"))
		}
		defer f.Close()
		in.Avatar = io.Reader(f)
		in.AvatarFilename = fh.Filename
	}

	user, err := s.userSvc().UpdateProfile(c.Context(), in)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile updated successfully!",
		"user":    user,
	})
}

// UpdatePassword handles PUT /user/update/password
func (s *Server) UpdatePassword(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		CurrentPassword    string `json:"currentPassword"`
		NewPassword        string `json:"newPassword"`
		ConfirmNewPassword string `json:"confirmNewPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	err := s.userSvc().ChangePassword(c.Context(), service.ChangePasswordInput{
		UserID:             userID,
		CurrentPassword:    req.CurrentPassword,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password updated successfully!",
	})
}

// ForgotPassword handles POST /user/forgot/password
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.userSvc().ForgotPassword(c.Context(), req.Email); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Email sent to %s successfully!", req.Email),
	})
}

// ResetPassword handles PUT /user/reset/password/:token
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userSvc().ResetPassword(c.Context(), service.ResetPasswordInput{
		Token:           c.Params("token"),
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	// Resetting the password also logs the user in.
	return s.sendSessionToken(c, user, fiber.StatusOK, "Password reset successfully!")
}
