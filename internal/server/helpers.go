// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"errors"

	"bucketlist/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// mapServiceError writes the HTTP response matching a service-layer error code.
func mapServiceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.CodeValidation, models.CodeInvalidEncoding:
			status = fiber.StatusBadRequest
		case models.CodeInvalidCredentials, models.CodeInvalidToken,
			models.CodeSessionExpired, models.CodeUnauthorized:
			status = fiber.StatusUnauthorized
		case models.CodeForbidden:
			status = fiber.StatusForbidden
		case models.CodeNotFound:
			status = fiber.StatusNotFound
		case models.CodeConflict:
			status = fiber.StatusConflict
		case models.CodeUnsupportedFormat:
			status = fiber.StatusUnsupportedMediaType
		case models.CodeCorruptImage:
			status = fiber.StatusUnprocessableEntity
		case models.CodeStorageUnavailable:
			status = fiber.StatusServiceUnavailable
		}
	}

	return models.RespondWithError(c, status, err)
}
