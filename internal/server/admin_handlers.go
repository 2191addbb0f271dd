package server

import (
	"github.com/Yahya-Naji/iron-knowledge/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListBoxRequests handles GET /api/admin/box-requests.
// Filters by ?status=pending|cancelled, defaulting to pending.
func (s *Server) ListBoxRequests(c *fiber.Ctx) error {
	status := models.BoxRequestStatus(c.Query("status", string(models.BoxRequestStatusPending)))
	if status != models.BoxRequestStatusPending && status != models.BoxRequestStatusCancelled {
		return respondError(c, models.NewValidationError("status must be pending or cancelled"))
	}

	page, pageSize := parsePagination(c)
	requests, err := s.boxService.ListByStatus(c.UserContext(), status, pageSize, (page-1)*pageSize)
	if err != nil {
		return respondError(c, err)
	}

	return respondSuccess(c, fiber.StatusOK, fiber.Map{
		"requests":  requests,
		"page":      page,
		"page_size": pageSize,
	})
}

// ListCustomers handles GET /api/admin/customers.
func (s *Server) ListCustomers(c *fiber.Ctx) error {
	page, pageSize := parsePagination(c)
	customers, err := s.customerRepo.List(c.UserContext(), pageSize, (page-1)*pageSize)
	if err != nil {
		return respondError(c, err)
	}

	return respondSuccess(c, fiber.StatusOK, fiber.Map{
		"customers": customers,
		"page":      page,
		"page_size": pageSize,
	})
}
