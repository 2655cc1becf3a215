package server

import (
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// tokenResponse is the body returned by Login and Refresh.
type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	User         *models.User `json:"user,omitempty"`
}

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.users.CreateUser(c.Context(), service.CreateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.users.Authenticate(c.Context(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	if err := s.users.RecordLogin(c.Context(), user.ID); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "last login update failed",
			"user_id", user.ID, "error", err)
	}

	access, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return models.RespondWithDomainError(c, models.NewInternalError(err))
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return models.RespondWithDomainError(c, models.NewInternalError(err))
	}

	return c.JSON(tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
		User:         user,
	})
}

// Refresh handles POST /api/auth/refresh. It exchanges a valid refresh token
// for a new access token; the refresh token itself is never reissued.
func (s *Server) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("refresh_token is required"))
	}

	userID, claims, err := s.tokens.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}
	if cache.IsTokenDenylisted(c.Context(), claims.ID) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewInvalidTokenError("Token has been revoked"))
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}
	if user == nil || !user.IsActive {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewInvalidTokenError("Account is not active"))
	}

	access, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return models.RespondWithDomainError(c, models.NewInternalError(err))
	}

	return c.JSON(tokenResponse{
		AccessToken: access,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokens.AccessTTL().Seconds()),
	})
}

// Logout handles POST /api/auth/logout. The presented refresh token is
// denylisted until it would have expired anyway.
func (s *Server) Logout(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("refresh_token is required"))
	}

	_, claims, err := s.tokens.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}

	until := time.Until(claims.ExpiresAt.Time)
	if until > 0 {
		cache.DenylistToken(c.Context(), claims.ID, until)
	}

	return c.JSON(fiber.Map{"message": "Logged out"})
}

// VerifyMe handles POST /api/auth/verify, marking the authenticated
// user's own account as verified.
func (s *Server) VerifyMe(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	if err := s.users.VerifyAccount(c.Context(), userID); err != nil {
		return models.RespondWithDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Account verified"})
}

// Me handles GET /api/auth/me
func (s *Server) Me(c *fiber.Ctx) error {
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
