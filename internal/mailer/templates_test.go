package mailer

import (
	"strings"
	"testing"

	"github.com/Yahya-Naji/iron-knowledge/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxRequestConfirmationEmbedsCancelLink(t *testing.T) {
	t.Parallel()

	m := New(&config.Config{CancelBaseURL: "https://boxes.ironmountain.ae"})

	msg, err := m.BoxRequestConfirmation(
		"yousef@techinnovations.ae",
		"Yousef Al-Mansoori",
		"IM-10001",
		5,
		"Dubai Marina, Dubai, UAE",
		"tok_abc123",
	)
	require.NoError(t, err)

	assert.Equal(t, "yousef@techinnovations.ae", msg.To)
	assert.Contains(t, msg.Subject, "IM-10001")
	assert.Contains(t, msg.BodyHTML, "https://boxes.ironmountain.ae/cancel/tok_abc123")
	assert.Contains(t, msg.BodyText, "https://boxes.ironmountain.ae/cancel/tok_abc123")
	assert.Contains(t, msg.BodyHTML, "Yousef Al-Mansoori")
	assert.Contains(t, msg.BodyHTML, "5 boxes")
}

func TestBoxRequestConfirmationWithoutToken(t *testing.T) {
	t.Parallel()

	m := New(&config.Config{CancelBaseURL: "https://boxes.ironmountain.ae"})

	msg, err := m.BoxRequestConfirmation(
		"sarah@legalassoc.ae", "Sarah Johnson", "IM-10002", 1, "Abu Dhabi", "")
	require.NoError(t, err)

	assert.NotContains(t, msg.BodyHTML, "/cancel/")
	assert.NotContains(t, msg.BodyText, "/cancel/")
	// Singular form for a single box.
	assert.Contains(t, msg.BodyHTML, "1 box")
	assert.False(t, strings.Contains(msg.BodyHTML, "1 boxes"))
}

func TestBoxRequestNotification(t *testing.T) {
	t.Parallel()

	m := New(&config.Config{})

	msg, err := m.BoxRequestNotification(
		"ops@ironmountain.ae", "Ahmed Hassan", "IM-10003", 3, "Business Bay, Dubai")
	require.NoError(t, err)

	assert.Equal(t, "ops@ironmountain.ae", msg.To)
	assert.Contains(t, msg.Subject, "IM-10003")
	assert.Contains(t, msg.BodyHTML, "Ahmed Hassan")
	assert.Contains(t, msg.BodyText, "Business Bay, Dubai")
	// Internal notifications never carry the customer's cancellation link.
	assert.NotContains(t, msg.BodyHTML, "/cancel/")
}
