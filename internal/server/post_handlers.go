package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var req struct {
		Title   string            `json:"title"`
		Content string            `json:"content"`
		Tags    string            `json:"tags"`
		Status  models.PostStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.posts.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID: userID,
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		Status:   req.Status,
	})
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	posts, err := s.posts.ListPosts(c.Context(), userID, limit, offset)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	post, svcErr := s.posts.GetPost(c.Context(), uint(id), userID)
	if svcErr != nil {
		return models.RespondWithDomainError(c, svcErr)
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", id))
	}
	return c.JSON(post)
}

// GetPostBySlug handles GET /api/posts/slug/:slug
func (s *Server) GetPostBySlug(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	slug := c.Params("slug")

	post, err := s.posts.GetPostBySlug(c.Context(), slug, userID)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", slug))
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	var req struct {
		Title   *string            `json:"title"`
		Content *string            `json:"content"`
		Tags    *string            `json:"tags"`
		Status  *models.PostStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, svcErr := s.posts.UpdatePost(c.Context(), uint(id), service.UpdatePostInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
		Status:  req.Status,
	}, userID)
	if svcErr != nil {
		return models.RespondWithDomainError(c, svcErr)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	if err := s.posts.DeletePost(c.Context(), uint(id), userID); err != nil {
		return models.RespondWithDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PublishPost handles POST /api/posts/:id/publish
func (s *Server) PublishPost(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	post, svcErr := s.posts.Publish(c.Context(), uint(id), userID)
	if svcErr != nil {
		return models.RespondWithDomainError(c, svcErr)
	}
	return c.JSON(post)
}

// ArchivePost handles POST /api/posts/:id/archive (moderator only)
func (s *Server) ArchivePost(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
	}

	post, svcErr := s.posts.Archive(c.Context(), uint(id), userID)
	if svcErr != nil {
		return models.RespondWithDomainError(c, svcErr)
	}
	return c.JSON(post)
}

// SearchPosts handles GET /api/posts/search?q=...
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	q := c.Query("q")
	limit := c.QueryInt("limit", 10)
	offset := c.QueryInt("offset", 0)

	posts, err := s.posts.Search(c.Context(), q, userID, limit, offset)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}
	return c.JSON(posts)
}

// GetPostsByTag handles GET /api/posts/tag/:tag
func (s *Server) GetPostsByTag(c *fiber.Ctx) error {
	tag := c.Params("tag")
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	posts, err := s.posts.GetPostsByTag(c.Context(), tag, limit, offset)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}
	return c.JSON(posts)
}

// GetPostsByStatus handles GET /api/posts/status/:status
func (s *Server) GetPostsByStatus(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	status := models.PostStatus(c.Params("status"))
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	posts, err := s.posts.GetPostsByStatus(c.Context(), status, userID, limit, offset)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}
	return c.JSON(posts)
}

// GetTrendingPosts handles GET /api/posts/trending
func (s *Server) GetTrendingPosts(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	limit := c.QueryInt("limit", 10)

	posts, err := s.posts.Trending(c.Context(), days, limit)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}
	return c.JSON(posts)
}

// GetPostStatistics handles GET /api/posts/stats (moderator only)
func (s *Server) GetPostStatistics(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	stats, err := s.posts.Statistics(c.Context(), userID)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}
	return c.JSON(stats)
}
