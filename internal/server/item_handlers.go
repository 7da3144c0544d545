package server

import (
	"time"

	"bucketlist/internal/models"
	"bucketlist/internal/service"

	"github.com/gofiber/fiber/v2"
)

type itemRequest struct {
	Name         string     `json:"name"`
	Location     string     `json:"location"`
	Date         *time.Time `json:"date"`
	EndDate      *time.Time `json:"end_date"`
	Note         *string    `json:"note"`
	IsExperience *bool      `json:"is_experience"`
	// Photo is an optional base64 data URI ingested together with the item.
	Photo string `json:"photo"`
}

// GetItems handles GET /api/items
func (s *Server) GetItems(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	currentUserID, _ := s.optionalUserID(c)

	items, err := s.itemService.ListItems(c.Context(), service.ListItemsInput{
		Limit:         page.Limit,
		Offset:        page.Offset,
		CurrentUserID: currentUserID,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	if items == nil {
		items = []*models.Item{}
	}
	return c.JSON(items)
}

// GetItem handles GET /api/items/:id
func (s *Server) GetItem(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	currentUserID, _ := s.optionalUserID(c)

	item, err := s.itemService.GetItem(c.Context(), id, currentUserID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(item)
}

// CreateItem handles POST /api/items
func (s *Server) CreateItem(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req itemRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.CreateItemInput{
		UserID:   userID,
		Name:     req.Name,
		Location: req.Location,
		Date:     req.Date,
		EndDate:  req.EndDate,
		Photo:    req.Photo,
	}
	if req.Note != nil {
		in.Note = *req.Note
	}
	if req.IsExperience != nil {
		in.IsExperience = *req.IsExperience
	}

	item, err := s.itemService.CreateItem(c.Context(), in)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateItem handles PUT /api/items/:id
func (s *Server) UpdateItem(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req itemRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	item, err := s.itemService.UpdateItem(c.Context(), service.UpdateItemInput{
		UserID:       userID,
		ItemID:       id,
		Name:         req.Name,
		Location:     req.Location,
		Date:         req.Date,
		EndDate:      req.EndDate,
		Note:         req.Note,
		IsExperience: req.IsExperience,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(item)
}

// DeleteItem handles DELETE /api/items/:id
func (s *Server) DeleteItem(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.itemService.DeleteItem(c.Context(), userID, id); err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Item deleted"})
}

// ToggleItemLike handles POST /api/items/:id/like. Likes on the first call,
// unlikes on the next; the response carries the updated item.
func (s *Server) ToggleItemLike(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	item, err := s.itemService.ToggleLike(c.Context(), userID, id)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(item)
}
