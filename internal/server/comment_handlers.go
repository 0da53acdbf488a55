package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddComment handles POST /comment/add/:id where :id is the post ID.
// Commenting is open: no session is required, the author is free text.
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	var req struct {
		Text       string `json:"text"`
		AuthorName string `json:"authorName"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentSvc().AddComment(c.Context(), service.AddCommentInput{
		PostID:     postID,
		Text:       req.Text,
		AuthorName: req.AuthorName,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Comment added successfully!",
		"comment": comment,
	})
}

// GetComments handles GET /comment/get/all/:id where :id is the post ID.
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	limit, offset := parsePagination(c, 20)

	comments, total, err := s.commentSvc().ListComments(c.Context(), postID, limit, offset)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"total":    total,
		"comments": comments,
	})
}

// DeleteComment handles DELETE /comment/delete/:id where :id is the comment
// ID.
//
// TODO: restrict deletion once roles exist; today any authenticated user can
// delete any comment.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	if err := s.commentSvc().DeleteComment(c.Context(), commentID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Comment deleted successfully!",
	})
}
