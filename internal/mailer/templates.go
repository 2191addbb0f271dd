package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// confirmationData feeds the customer-facing confirmation template.
type confirmationData struct {
	CustomerName  string
	AccountNumber string
	Quantity      int
	BoxWord       string
	Address       string
	CancelURL     string
	Year          int
}

var confirmationHTML = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
body { font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; line-height: 1.6; color: #333333; background-color: #f4f4f4; }
.email-wrapper { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
.header { background: linear-gradient(135deg, #0066cc 0%, #004499 100%); color: white; padding: 40px 20px; text-align: center; }
.content { padding: 40px 30px; }
.content h2 { color: #0066cc; }
.info-box { background-color: #f8f9fa; border-left: 5px solid #0066cc; padding: 25px; margin: 25px 0; border-radius: 6px; }
.cancel-button { background-color: #dc3545; color: white; text-decoration: none; padding: 15px 30px; border-radius: 6px; font-weight: bold; display: inline-block; }
.footer { background-color: #f8f9fa; padding: 30px 20px; text-align: center; color: #6c757d; font-size: 12px; }
</style>
</head>
<body>
<div class="email-wrapper">
  <div class="header">
    <h1>Iron Mountain</h1>
    <p>Document Storage &amp; Information Management</p>
  </div>
  <div class="content">
    <h2>Box Request Confirmation</h2>
    <p>Dear {{.CustomerName}},</p>
    <p>Thank you for your box request. We have received and processed your order.</p>
    <div class="info-box">
      <h3>Request Details</h3>
      <p><strong>Account Number:</strong> {{.AccountNumber}}</p>
      <p><strong>Quantity:</strong> {{.Quantity}} {{.BoxWord}}</p>
      <p><strong>Delivery Address:</strong> {{.Address}}</p>
      <p><strong>Estimated Delivery:</strong> 3-5 business days</p>
    </div>
    {{if .CancelURL}}
    <div style="text-align: center; margin: 30px 0;">
      <a href="{{.CancelURL}}" class="cancel-button">Cancel This Request</a>
    </div>
    {{end}}
    <p>Your boxes will be delivered to the address on file. You will receive a tracking notification once your order ships.</p>
    <p>Best regards,<br><strong>Iron Mountain Customer Service</strong></p>
  </div>
  <div class="footer">
    <p><strong>Iron Mountain</strong></p>
    <p>support&#64;ironmountain.com | 1-800-899-IRON (4766)</p>
    <p>&copy; {{.Year}} Iron Mountain. All rights reserved.</p>
  </div>
</div>
</body>
</html>
`))

var notificationHTML = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #0066cc;">New Box Request</h2>
  <p>A customer has requested storage boxes. Prepare the delivery.</p>
  <div style="background-color: #f8f9fa; border-left: 4px solid #0066cc; padding: 20px; border-radius: 4px;">
    <p><strong>Customer:</strong> {{.CustomerName}}</p>
    <p><strong>Account Number:</strong> {{.AccountNumber}}</p>
    <p><strong>Quantity:</strong> {{.Quantity}} {{.BoxWord}}</p>
    <p><strong>Delivery Address:</strong> {{.Address}}</p>
  </div>
  <p style="color: #6c757d; font-size: 12px;">Internal notification — Iron Mountain operations</p>
</body>
</html>
`))

func boxWord(quantity int) string {
	if quantity == 1 {
		return "box"
	}
	return "boxes"
}

// BoxRequestConfirmation renders the customer confirmation message. When a
// cancellation token is provided the message embeds a single-use
// cancellation link of the form <CANCEL_BASE_URL>/cancel/<token>.
func (m *Mailer) BoxRequestConfirmation(customerEmail, customerName, accountNumber string, quantity int, address, cancellationToken string) (Message, error) {
	data := confirmationData{
		CustomerName:  customerName,
		AccountNumber: accountNumber,
		Quantity:      quantity,
		BoxWord:       boxWord(quantity),
		Address:       address,
		Year:          time.Now().Year(),
	}
	if cancellationToken != "" {
		data.CancelURL = fmt.Sprintf("%s/cancel/%s", m.cfg.CancelBaseURL, cancellationToken)
	}

	var html bytes.Buffer
	if err := confirmationHTML.Execute(&html, data); err != nil {
		return Message{}, err
	}

	text := fmt.Sprintf(`Iron Mountain - Box Request Confirmation

Dear %s,

Thank you for your box request. We have received and processed your order.

Request Details:
- Account Number: %s
- Quantity: %d %s
- Delivery Address: %s
- Estimated Delivery: 3-5 business days
`, customerName, accountNumber, quantity, boxWord(quantity), address)
	if data.CancelURL != "" {
		text += fmt.Sprintf("\nCancel this request: %s\n", data.CancelURL)
	}

	return Message{
		To:       customerEmail,
		Subject:  fmt.Sprintf("Iron Mountain - Box Request Confirmation (%s)", accountNumber),
		BodyHTML: html.String(),
		BodyText: text,
	}, nil
}

// BoxRequestNotification renders the internal operations notification.
func (m *Mailer) BoxRequestNotification(internalEmail, customerName, accountNumber string, quantity int, address string) (Message, error) {
	data := confirmationData{
		CustomerName:  customerName,
		AccountNumber: accountNumber,
		Quantity:      quantity,
		BoxWord:       boxWord(quantity),
		Address:       address,
	}

	var html bytes.Buffer
	if err := notificationHTML.Execute(&html, data); err != nil {
		return Message{}, err
	}

	text := fmt.Sprintf(`New Box Request

Customer: %s
Account Number: %s
Quantity: %d %s
Delivery Address: %s
`, customerName, accountNumber, quantity, boxWord(quantity), address)

	return Message{
		To:       internalEmail,
		Subject:  fmt.Sprintf("New Box Request - %s (%d %s)", accountNumber, quantity, boxWord(quantity)),
		BodyHTML: html.String(),
		BodyText: text,
	}, nil
}
