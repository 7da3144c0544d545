package server

import (
	"bucketlist/internal/models"
	"bucketlist/internal/service"
	"bucketlist/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// sessionResponse is the envelope returned whenever a session is issued.
func sessionResponse(sess *service.Session) fiber.Map {
	return fiber.Map{
		"user":               sess.User,
		"session_token":      sess.Token,
		"session_expiration": sess.ExpiresAt,
		"update_token":       sess.UpdateToken,
	}
}

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	// Validate input
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}

	// Validate email format
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	// Validate password strength
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	sess, err := s.sessionService.Register(c.Context(), req.Email, req.Password)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(sessionResponse(sess))
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

	sess, err := s.sessionService.Authenticate(c.Context(), req.Email, req.Password)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(sessionResponse(sess))
}

// RenewSession handles POST /api/auth/session. The update token in the body
// is exchanged for a fresh session triple.
func (s *Server) RenewSession(c *fiber.Ctx) error {
	var req struct {
		UpdateToken string `json:"update_token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	sess, err := s.sessionService.Renew(c.Context(), req.UpdateToken)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(sessionResponse(sess))
}

// Logout handles POST /api/auth/logout. The session expires immediately;
// a second logout with the same token fails with 401.
func (s *Server) Logout(c *fiber.Ctx) error {
	token, ok := bearerToken(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	if err := s.sessionService.Logout(c.Context(), token); err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Logged out"})
}
