package server

import (
	"bucketlist/internal/cache"
	"bucketlist/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(user)
}

// DeleteMyAccount handles DELETE /api/users/me. Owned items, their photos
// and all likes placed by or on the account go with it.
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.userRepo.Delete(c.Context(), userID); err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Account deleted"})
}

// GetUserProfile handles GET /api/users/:id. Public profiles are served
// cache-aside; the credential fields are json-tagged out of serialization,
// so the cached copy never carries them.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var user *models.User
	err = cache.Aside(c.Context(), cache.UserKey(id), &user, cache.UserTTL, func() error {
		var fetchErr error
		user, fetchErr = s.userRepo.GetByID(c.Context(), id)
		return fetchErr
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(user)
}

// GetUserItems handles GET /api/users/:id/items
func (s *Server) GetUserItems(c *fiber.Ctx) error {
	userIDParam, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePagination(c, 20)
	currentUserID, _ := s.optionalUserID(c)

	items, err := s.itemService.GetUserItems(c.Context(), userIDParam, page.Limit, page.Offset, currentUserID)
	if err != nil {
		return mapServiceError(c, err)
	}

	if items == nil {
		items = []*models.Item{}
	}
	return c.JSON(items)
}
