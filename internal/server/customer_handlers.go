package server

import (
	"github.com/Yahya-Naji/iron-knowledge/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetCustomer handles GET /api/customer/:accountNumber
func (s *Server) GetCustomer(c *fiber.Ctx) error {
	accountNumber := c.Params("accountNumber")
	if err := validation.ValidateAccountNumber(accountNumber); err != nil {
		return respondError(c, err)
	}

	customer, err := s.customerRepo.GetByAccountNumber(c.UserContext(), accountNumber)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, customer)
}

// GetInventory handles GET /api/inventory/:accountNumber
// Returns the box counts without the full customer record.
func (s *Server) GetInventory(c *fiber.Ctx) error {
	accountNumber := c.Params("accountNumber")
	if err := validation.ValidateAccountNumber(accountNumber); err != nil {
		return respondError(c, err)
	}

	inventory, err := s.customerRepo.GetInventory(c.UserContext(), accountNumber)
	if err != nil {
		return respondError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, inventory)
}
