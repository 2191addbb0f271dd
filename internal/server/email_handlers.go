package server

import (
	"github.com/Yahya-Naji/iron-knowledge/internal/mailer"
	"github.com/Yahya-Naji/iron-knowledge/internal/models"
	"github.com/Yahya-Naji/iron-knowledge/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// SendEmailInput is the payload for POST /api/send-email.
type SendEmailInput struct {
	To       string   `json:"to"`
	Subject  string   `json:"subject"`
	BodyHTML string   `json:"body_html"`
	BodyText string   `json:"body_text"`
	CC       []string `json:"cc"`
	BCC      []string `json:"bcc"`
}

// SendEmail handles POST /api/send-email. Staff only; delivers an arbitrary
// message through the configured provider.
func (s *Server) SendEmail(c *fiber.Ctx) error {
	var input SendEmailInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateEmail(input.To); err != nil {
		return respondError(c, err)
	}
	if input.Subject == "" {
		return respondError(c, models.NewValidationError("Subject is required"))
	}
	if input.BodyHTML == "" && input.BodyText == "" {
		return respondError(c, models.NewValidationError("Message body is required"))
	}

	msg := mailer.Message{
		To:       input.To,
		Subject:  input.Subject,
		BodyHTML: input.BodyHTML,
		BodyText: input.BodyText,
		CC:       input.CC,
		BCC:      input.BCC,
	}
	if err := s.mailer.Send(c.UserContext(), msg); err != nil {
		return respondError(c, models.NewTransientError("email delivery failed", err))
	}
	return respondSuccess(c, fiber.StatusOK, fiber.Map{"delivered_to": input.To})
}

// BoxEmailInput is the payload for the templated box emails.
type BoxEmailInput struct {
	CustomerEmail     string `json:"customer_email"`
	CustomerName      string `json:"customer_name"`
	AccountNumber     string `json:"account_number"`
	Quantity          int    `json:"quantity"`
	DeliveryAddress   string `json:"delivery_address"`
	CancellationToken string `json:"cancellation_token"`
}

// SendBoxConfirmation handles POST /api/send-box-confirmation. Renders and
// sends the customer-facing confirmation carrying the cancellation link.
func (s *Server) SendBoxConfirmation(c *fiber.Ctx) error {
	var input BoxEmailInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateEmail(input.CustomerEmail); err != nil {
		return respondError(c, err)
	}
	if input.Quantity <= 0 {
		return respondError(c, models.NewValidationError("Quantity must be positive"))
	}

	msg, err := s.mailer.BoxRequestConfirmation(
		input.CustomerEmail,
		input.CustomerName,
		input.AccountNumber,
		input.Quantity,
		input.DeliveryAddress,
		input.CancellationToken,
	)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	if err := s.mailer.Send(c.UserContext(), msg); err != nil {
		return respondError(c, models.NewTransientError("email delivery failed", err))
	}
	return respondSuccess(c, fiber.StatusOK, fiber.Map{"delivered_to": input.CustomerEmail})
}

// SendBoxNotification handles POST /api/send-box-notification. Sends the
// internal heads-up about a new box request to the operations inbox.
func (s *Server) SendBoxNotification(c *fiber.Ctx) error {
	var input BoxEmailInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if input.Quantity <= 0 {
		return respondError(c, models.NewValidationError("Quantity must be positive"))
	}

	to := s.config.InternalEmail
	if to == "" {
		return respondError(c, models.NewValidationError("No internal notification inbox configured"))
	}

	msg, err := s.mailer.BoxRequestNotification(
		to,
		input.CustomerName,
		input.AccountNumber,
		input.Quantity,
		input.DeliveryAddress,
	)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	if err := s.mailer.Send(c.UserContext(), msg); err != nil {
		return respondError(c, models.NewTransientError("email delivery failed", err))
	}
	return respondSuccess(c, fiber.StatusOK, fiber.Map{"delivered_to": to})
}
