package server

import (
	"bucketlist/internal/models"
	"bucketlist/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadPhoto handles POST /api/photos. The body carries a base64 data URI
// and, optionally, the item the photo belongs to.
func (s *Server) UploadPhoto(c *fiber.Ctx) error {
	var req struct {
		ImageData string `json:"image_data"`
		ItemID    *uint  `json:"item_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.ImageData == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("image_data is required"))
	}

	photo, err := s.photoService.Ingest(c.Context(), service.IngestPhotoInput{
		ImageData: req.ImageData,
		ItemID:    req.ItemID,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"photo": photo,
		"url":   photo.URL(),
	})
}
