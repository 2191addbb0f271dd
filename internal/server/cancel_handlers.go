package server

import (
	"bytes"
	"html/template"
	"log/slog"
	"time"

	"github.com/Yahya-Naji/iron-knowledge/internal/middleware"
	"github.com/Yahya-Naji/iron-knowledge/internal/models"

	"github.com/gofiber/fiber/v2"
)

type cancelPageData struct {
	Token         string
	CustomerName  string
	AccountNumber string
	Quantity      int
	RequestedAt   string
	CancelledAt   string
}

var cancelFormPage = template.Must(template.New("cancelForm").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Cancel Box Request - Iron Mountain</title>
  <style>
    body { font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 20px; }
    .container { max-width: 560px; margin: 40px auto; background: #ffffff; border-radius: 8px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1); }
    .header { background-color: #14477D; color: #ffffff; padding: 20px; border-radius: 8px 8px 0 0; margin: -32px -32px 24px; text-align: center; }
    .details { background-color: #f8f9fa; border-left: 4px solid #14477D; padding: 16px; margin: 16px 0; }
    .details p { margin: 6px 0; }
    .actions { text-align: center; margin-top: 24px; }
    .btn { display: inline-block; padding: 12px 28px; border-radius: 4px; text-decoration: none; font-weight: bold; border: none; font-size: 15px; cursor: pointer; }
    .btn-cancel { background-color: #d9534f; color: #ffffff; }
    .btn-keep { background-color: #6c757d; color: #ffffff; margin-left: 12px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header"><h2>Cancel Box Request</h2></div>
    <p>Hello {{.CustomerName}},</p>
    <p>You are about to cancel the following box request:</p>
    <div class="details">
      <p><strong>Account Number:</strong> {{.AccountNumber}}</p>
      <p><strong>Quantity:</strong> {{.Quantity}} box(es)</p>
      <p><strong>Requested:</strong> {{.RequestedAt}}</p>
    </div>
    <p>This cannot be undone. If you still need the boxes, keep the request instead.</p>
    <div class="actions">
      <form method="POST" action="/cancel/{{.Token}}/confirm" style="display:inline">
        <button type="submit" class="btn btn-cancel">Yes, Cancel Request</button>
        <a href="/cancel/{{.Token}}/keep" class="btn btn-keep">Keep My Request</a>
      </form>
    </div>
  </div>
</body>
</html>`))

var cancelDonePage = template.Must(template.New("cancelDone").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Request Cancelled - Iron Mountain</title>
  <style>
    body { font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 20px; }
    .container { max-width: 560px; margin: 40px auto; background: #ffffff; border-radius: 8px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1); text-align: center; }
    .check { font-size: 48px; color: #28a745; }
    .details { background-color: #f8f9fa; border-left: 4px solid #28a745; padding: 16px; margin: 16px 0; text-align: left; }
    .details p { margin: 6px 0; }
  </style>
</head>
<body>
  <div class="container">
    <div class="check">&#10004;</div>
    <h2>Your box request has been cancelled</h2>
    <div class="details">
      <p><strong>Account Number:</strong> {{.AccountNumber}}</p>
      <p><strong>Quantity:</strong> {{.Quantity}} box(es)</p>
      <p><strong>Cancelled:</strong> {{.CancelledAt}}</p>
    </div>
    <p>No boxes will be shipped for this request. If this was a mistake, please place a new request.</p>
  </div>
</body>
</html>`))

var keepRequestPage = template.Must(template.New("keepRequest").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Request Kept - Iron Mountain</title>
  <style>
    body { font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 20px; }
    .container { max-width: 560px; margin: 40px auto; background: #ffffff; border-radius: 8px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1); text-align: center; }
    .check { font-size: 48px; color: #14477D; }
  </style>
</head>
<body>
  <div class="container">
    <div class="check">&#128230;</div>
    <h2>Your box request is unchanged</h2>
    <p>{{.Quantity}} box(es) will be delivered as planned for account {{.AccountNumber}}.</p>
    <p>You can close this page.</p>
  </div>
</body>
</html>`))

var cancelErrorPage = template.Must(template.New("cancelError").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Link Not Valid - Iron Mountain</title>
  <style>
    body { font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 20px; }
    .container { max-width: 560px; margin: 40px auto; background: #ffffff; border-radius: 8px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1); text-align: center; }
    .warn { font-size: 48px; color: #d9534f; }
  </style>
</head>
<body>
  <div class="container">
    <div class="warn">&#9888;</div>
    <h2>This cancellation link is not valid</h2>
    <p>The link may have already been used, or the request may no longer exist.</p>
    <p>If you need help with your box request, please contact customer service.</p>
  </div>
</body>
</html>`))

func renderPage(c *fiber.Ctx, status int, tpl *template.Template, data cancelPageData) error {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "failed to render page",
			slog.String("template", tpl.Name()), slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

// CancelRequestForm handles GET /cancel/:token. It shows the confirmation
// page for a still-pending request; an unknown or already-used token gets the
// same generic error page.
func (s *Server) CancelRequestForm(c *fiber.Ctx) error {
	token := c.Params("token")

	req, err := s.boxService.PendingRequest(c.UserContext(), token)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return renderPage(c, fiber.StatusNotFound, cancelErrorPage, cancelPageData{})
		}
		return renderPage(c, fiber.StatusInternalServerError, cancelErrorPage, cancelPageData{})
	}

	return renderPage(c, fiber.StatusOK, cancelFormPage, cancelPageData{
		Token:         token,
		CustomerName:  req.Customer.CustomerName,
		AccountNumber: req.AccountNumber,
		Quantity:      req.Quantity,
		RequestedAt:   req.CreatedAt.Format("January 2, 2006 at 3:04 PM"),
	})
}

// ConfirmCancellation handles POST /cancel/:token/confirm. This is the single
// write path of the flow; possession of the token is the only credential.
func (s *Server) ConfirmCancellation(c *fiber.Ctx) error {
	token := c.Params("token")

	result, err := s.boxService.Cancel(c.UserContext(), token)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return renderPage(c, fiber.StatusNotFound, cancelErrorPage, cancelPageData{})
		}
		return renderPage(c, fiber.StatusInternalServerError, cancelErrorPage, cancelPageData{})
	}

	return renderPage(c, fiber.StatusOK, cancelDonePage, cancelPageData{
		AccountNumber: result.Request.AccountNumber,
		Quantity:      result.Request.Quantity,
		CancelledAt:   result.CancelledAt.In(time.Local).Format("January 2, 2006 at 3:04 PM"),
	})
}

// KeepRequest handles GET /cancel/:token/keep. Nothing is written; the page
// just reassures the customer that the request stands.
func (s *Server) KeepRequest(c *fiber.Ctx) error {
	token := c.Params("token")

	req, err := s.boxService.PendingRequest(c.UserContext(), token)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return renderPage(c, fiber.StatusNotFound, cancelErrorPage, cancelPageData{})
		}
		return renderPage(c, fiber.StatusInternalServerError, cancelErrorPage, cancelPageData{})
	}

	return renderPage(c, fiber.StatusOK, keepRequestPage, cancelPageData{
		AccountNumber: req.AccountNumber,
		Quantity:      req.Quantity,
	})
}
