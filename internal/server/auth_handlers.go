package server

import (
	"inkwell/internal/models"
	"inkwell/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// Signup handles POST /user/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Username == "" || req.Email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Please fill all fields to sign up!"))
	}
	if req.Password != req.ConfirmPassword {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Passwords do not match"))
	}
	if err := validation.ValidateUsername(req.Username); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := s.userRepo.Create(c.Context(), user); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return s.sendSessionToken(c, user, fiber.StatusCreated, "User registered successfully!")
}

// Login handles POST /user/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	// The same message for unknown email and wrong password, so login
	// responses don't reveal which emails are registered.
	if user == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Invalid email or password"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Invalid email or password"))
	}

	return s.sendSessionToken(c, user, fiber.StatusOK, "Login successful!")
}

// Logout handles GET /user/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	clearSessionCookie(c)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out!",
	})
}
