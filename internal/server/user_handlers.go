package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", userID))
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var req struct {
		Email     *string `json:"email"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.users.UpdateUser(c.Context(), userID, service.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, userID)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}
	return c.JSON(user)
}

// ChangeMyPassword handles POST /api/users/me/password
func (s *Server) ChangeMyPassword(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	changed, err := s.users.ChangePassword(c.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}
	if !changed {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Current password is incorrect"))
	}
	return c.JSON(fiber.Map{"message": "Password updated"})
}

// GetAllUsers handles GET /api/users (admin only)
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)

	users, err := s.users.ListUsers(c.Context(), userID, limit, offset)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}
	return c.JSON(users)
}

// SearchUsers handles GET /api/users/search?q=... (moderator only)
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	q := c.Query("q")
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	users, err := s.users.SearchUsers(c.Context(), q, userID, limit, offset)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}
	return c.JSON(users)
}

// GetUsersByRole handles GET /api/users/role/:role (moderator only)
func (s *Server) GetUsersByRole(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	role := models.Role(c.Params("role"))
	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)

	users, err := s.users.GetUsersByRole(c.Context(), role, userID, limit, offset)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}
	return c.JSON(users)
}

// GetUserStatistics handles GET /api/users/stats (admin only)
func (s *Server) GetUserStatistics(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	stats, err := s.users.UserStatistics(c.Context(), userID)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}
	return c.JSON(stats)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid user ID"))
	}

	user, svcErr := s.users.GetUser(c.Context(), uint(id), userID)
	if svcErr != nil {
		return models.RespondWithDomainError(c, svcErr)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", id))
	}
	return c.JSON(user)
}

// UpdateUser handles PUT /api/users/:id
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid user ID"))
	}

	var req struct {
		Email      *string      `json:"email"`
		FirstName  *string      `json:"first_name"`
		LastName   *string      `json:"last_name"`
		Role       *models.Role `json:"role"`
		IsActive   *bool        `json:"is_active"`
		IsVerified *bool        `json:"is_verified"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, svcErr := s.users.UpdateUser(c.Context(), uint(id), service.UpdateUserInput{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Role:       req.Role,
		IsActive:   req.IsActive,
		IsVerified: req.IsVerified,
	}, userID)
	if svcErr != nil {
		return models.RespondWithDomainError(c, svcErr)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/users/:id (admin only)
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid user ID"))
	}

	if err := s.users.DeleteUser(c.Context(), uint(id), userID); err != nil {
		return models.RespondWithDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeactivateUser handles POST /api/users/:id/deactivate (admin only)
func (s *Server) DeactivateUser(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid user ID"))
	}

	if err := s.users.Deactivate(c.Context(), uint(id), userID); err != nil {
		return models.RespondWithDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deactivated"})
}

// VerifyUser handles POST /api/users/:id/verify. Users can verify their
// own account; admins can verify anyone.
func (s *Server) VerifyUser(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid user ID"))
	}

	if uint(id) != userID {
		actor, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			return models.RespondWithDomainError(c, err)
		}
		if actor == nil || !actor.IsAdmin() {
			return models.RespondWithDomainError(c,
				models.NewPermissionError("Only admins can verify other accounts"))
		}
	}

	if err := s.users.VerifyAccount(c.Context(), uint(id)); err != nil {
		return models.RespondWithDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Account verified"})
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid user ID"))
	}
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	posts, svcErr := s.posts.GetUserPosts(c.Context(), uint(id), userID, limit, offset)
	if svcErr != nil {
		return models.RespondWithDomainError(c, svcErr)
	}
	return c.JSON(posts)
}

// GetUserPostStats handles GET /api/users/:id/post-stats
func (s *Server) GetUserPostStats(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid user ID"))
	}

	stats, svcErr := s.posts.UserPostStats(c.Context(), uint(id), userID)
	if svcErr != nil {
		return models.RespondWithDomainError(c, svcErr)
	}
	return c.JSON(stats)
}
