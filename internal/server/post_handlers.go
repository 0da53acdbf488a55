package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /post/create
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Title   string                `json:"title"`
		Content []models.ContentBlock `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postSvc().CreatePost(c.Context(), service.CreatePostInput{
		AuthorID: userID,
		Title:    req.Title,
		Content:  req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Post created successfully!",
		"post":    post,
	})
}

// GetPosts handles GET /post/get/all. Without query parameters it returns
// the full listing with nested comments; with limit/offset it returns a feed
// page of post summaries.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	offset := c.QueryInt("offset", 0)

	in := service.ListPostsInput{WithComments: true}
	if limit > 0 {
		if limit > 100 {
			limit = 100
		}
		if offset < 0 {
			offset = 0
		}
		in = service.ListPostsInput{Limit: limit, Offset: offset}
	}

	posts, err := s.postSvc().ListPosts(c.Context(), in)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"posts":   posts,
	})
}

// GetPost handles GET /post/get/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	post, err := s.postSvc().GetPost(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"post":    post,
	})
}

// UpdatePost handles PUT /post/update/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	var req struct {
		Title   string                `json:"title"`
		Content []models.ContentBlock `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postSvc().UpdatePost(c.Context(), service.UpdatePostInput{
		PostID:  id,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Post updated successfully!",
		"post":    post,
	})
}

// DeletePost handles DELETE /post/delete/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	if err := s.postSvc().DeletePost(c.Context(), id); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Post deleted successfully!",
	})
}

// LikePost handles PUT /post/like/:id
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	likes, err := s.postSvc().LikePost(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Post liked successfully!",
		"likes":   likes,
	})
}
