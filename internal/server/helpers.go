package server

import (
	"strconv"

	"github.com/Yahya-Naji/iron-knowledge/internal/models"

	"github.com/gofiber/fiber/v2"
)

// respondSuccess writes the standard success envelope.
func respondSuccess(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

// respondError maps an application error to its HTTP status and envelope.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}

// parsePagination reads page/page_size query params with sane bounds.
func parsePagination(c *fiber.Ctx) (page, pageSize int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.Query("page_size", "50"))
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	return page, pageSize
}

// AdminRequired ensures the authenticated staff user has the admin flag.
// Must run after AuthRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		staffID, ok := c.Locals("staffID").(uint)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("authentication required"))
		}

		var staff models.StaffUser
		if err := s.db.WithContext(c.UserContext()).First(&staff, staffID).Error; err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("authentication required"))
		}
		if !staff.IsAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError("admin access required"))
		}
		return c.Next()
	}
}
