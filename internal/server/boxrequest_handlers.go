package server

import (
	"log/slog"

	"github.com/Yahya-Naji/iron-knowledge/internal/middleware"
	"github.com/Yahya-Naji/iron-knowledge/internal/models"
	"github.com/Yahya-Naji/iron-knowledge/internal/service"
	"github.com/Yahya-Naji/iron-knowledge/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// RequestBoxesInput is the payload for POST /api/request-boxes.
type RequestBoxesInput struct {
	AccountNumber   string `json:"account_number"`
	Quantity        int    `json:"quantity"`
	DeliveryAddress string `json:"delivery_address"`
}

// RequestBoxes handles POST /api/request-boxes.
// On success the customer gets a confirmation email carrying the cancellation
// link and the operations inbox gets a notification. Email delivery is
// asynchronous; a mail outage never blocks or fails the request itself.
func (s *Server) RequestBoxes(c *fiber.Ctx) error {
	var input RequestBoxesInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateAccountNumber(input.AccountNumber); err != nil {
		return respondError(c, err)
	}

	result, err := s.boxService.Issue(c.UserContext(), service.IssueInput{
		AccountNumber: input.AccountNumber,
		Quantity:      input.Quantity,
	})
	if err != nil {
		return respondError(c, err)
	}

	s.sendIssueEmails(c, result, input.DeliveryAddress)

	return respondSuccess(c, fiber.StatusCreated, fiber.Map{
		"request":   result.Request,
		"inventory": result.Customer.Inventory(),
	})
}

// sendIssueEmails dispatches the confirmation and internal notification for a
// freshly issued request. Failures are logged, never surfaced to the caller.
func (s *Server) sendIssueEmails(c *fiber.Ctx, result *service.IssueResult, address string) {
	log := middleware.Logger.With(
		slog.String("account_number", result.Customer.AccountNumber),
		slog.Uint64("request_id", uint64(result.Request.ID)),
	)

	if result.Customer.Email != "" {
		msg, err := s.mailer.BoxRequestConfirmation(
			result.Customer.Email,
			result.Customer.CustomerName,
			result.Customer.AccountNumber,
			result.Request.Quantity,
			address,
			result.CancellationToken,
		)
		if err != nil {
			log.ErrorContext(c.UserContext(), "failed to build confirmation email", slog.Any("error", err))
		} else {
			s.mailer.SendAsync(msg)
		}
	} else {
		log.WarnContext(c.UserContext(), "customer has no email, skipping confirmation")
	}

	if s.config.InternalEmail != "" {
		msg, err := s.mailer.BoxRequestNotification(
			s.config.InternalEmail,
			result.Customer.CustomerName,
			result.Customer.AccountNumber,
			result.Request.Quantity,
			address,
		)
		if err != nil {
			log.ErrorContext(c.UserContext(), "failed to build notification email", slog.Any("error", err))
		} else {
			s.mailer.SendAsync(msg)
		}
	}
}
