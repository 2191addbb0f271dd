// Package mailer delivers transactional email through the Resend HTTP API,
// falling back to SMTP for local development. Delivery is always
// fire-and-forget from the caller's perspective: a failed send is logged and
// counted, never propagated into the request/cancel transactions.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/quotedprintable"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/Yahya-Naji/iron-knowledge/internal/config"
	"github.com/Yahya-Naji/iron-knowledge/internal/middleware"
	"github.com/Yahya-Naji/iron-knowledge/internal/observability"

	"github.com/google/uuid"
)

const defaultResendBaseURL = "https://api.resend.com"

// Message is a single outbound email.
type Message struct {
	To       string
	Subject  string
	BodyHTML string
	BodyText string
	CC       []string
	BCC      []string
}

// Mailer sends messages via Resend or SMTP depending on configuration.
type Mailer struct {
	cfg           *config.Config
	httpClient    *http.Client
	resendBaseURL string
}

// New returns a Mailer using the given configuration.
func New(cfg *config.Config) *Mailer {
	return &Mailer{
		cfg:           cfg,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		resendBaseURL: defaultResendBaseURL,
	}
}

// Send delivers the message, preferring Resend and falling back to SMTP.
// When TO_EMAIL is configured every message is rerouted to that inbox
// (demo environments share one mailbox).
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	to := msg.To
	if m.cfg.ToEmailOverride != "" {
		to = m.cfg.ToEmailOverride
	}
	if to == "" {
		return fmt.Errorf("no recipient: set TO_EMAIL or pass an address")
	}

	middleware.Logger.InfoContext(ctx, "sending email",
		slog.String("to", to),
		slog.String("original_to", msg.To),
		slog.String("subject", msg.Subject),
	)

	if m.cfg.ResendAPIKey != "" {
		if err := m.sendResend(ctx, to, msg); err != nil {
			observability.EmailsSent.WithLabelValues("resend", "error").Inc()
			middleware.Logger.WarnContext(ctx, "Resend delivery failed, falling back to SMTP",
				slog.String("error", err.Error()))
		} else {
			observability.EmailsSent.WithLabelValues("resend", "ok").Inc()
			return nil
		}
	}

	if err := m.sendSMTP(to, msg); err != nil {
		observability.EmailsSent.WithLabelValues("smtp", "error").Inc()
		return err
	}
	observability.EmailsSent.WithLabelValues("smtp", "ok").Inc()
	return nil
}

// SendAsync runs Send on its own goroutine with a detached timeout so
// callers (HTTP handlers, chat tool adapters) never block on delivery.
func (m *Mailer) SendAsync(msg Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := m.Send(ctx, msg); err != nil {
			middleware.Logger.Error("async email delivery failed",
				slog.String("to", msg.To),
				slog.String("subject", msg.Subject),
				slog.String("error", err.Error()),
			)
		}
	}()
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

func (m *Mailer) sendResend(ctx context.Context, to string, msg Message) error {
	from := m.cfg.FromEmail
	if from == "" {
		from = "onboarding@resend.dev"
	}
	fromName := m.cfg.FromName
	if fromName == "" {
		fromName = "Iron Mountain"
	}

	body, err := json.Marshal(resendRequest{
		From:    fmt.Sprintf("%s <%s>", fromName, from),
		To:      []string{to},
		Subject: msg.Subject,
		HTML:    msg.BodyHTML,
		Text:    msg.BodyText,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.resendBaseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.ResendAPIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("resend request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("resend returned %d: %s", resp.StatusCode, string(raw))
	}

	var parsed resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err == nil && parsed.ID != "" {
		middleware.Logger.InfoContext(ctx, "email sent via Resend", slog.String("id", parsed.ID))
	}
	return nil
}

func (m *Mailer) sendSMTP(to string, msg Message) error {
	if m.cfg.SMTPUser == "" || m.cfg.SMTPPassword == "" {
		return fmt.Errorf("SMTP credentials not configured")
	}
	if m.cfg.FromEmail == "" {
		return fmt.Errorf("SMTP_FROM_EMAIL not configured")
	}

	recipients := append([]string{to}, msg.CC...)
	recipients = append(recipients, msg.BCC...)

	raw, err := buildMIME(m.cfg.FromName, m.cfg.FromEmail, to, msg)
	if err != nil {
		return err
	}

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	auth := smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	if err := smtp.SendMail(addr, auth, m.cfg.FromEmail, recipients, raw); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

// buildMIME assembles a multipart/alternative message with text and HTML parts.
func buildMIME(fromName, fromEmail, to string, msg Message) ([]byte, error) {
	boundary := "mime-" + uuid.NewString()

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", fromName, fromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	if len(msg.CC) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(msg.CC, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	writePart := func(contentType, body string) error {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		fmt.Fprintf(&b, "Content-Type: %s; charset=UTF-8\r\n", contentType)
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		w := quotedprintable.NewWriter(&b)
		if _, err := w.Write([]byte(body)); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		b.WriteString("\r\n")
		return nil
	}

	if msg.BodyText != "" {
		if err := writePart("text/plain", msg.BodyText); err != nil {
			return nil, err
		}
	}
	if err := writePart("text/html", msg.BodyHTML); err != nil {
		return nil, err
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String()), nil
}
