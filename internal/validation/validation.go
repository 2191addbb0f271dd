// Package validation contains input validation helpers shared by handlers.
package validation

import (
	"net/mail"
	"strings"

	"github.com/Yahya-Naji/iron-knowledge/internal/models"
)

// ValidateAccountNumber checks the shape of a customer account number.
// Lookups are exact-match; no case or whitespace normalization happens in
// the business logic, so the only hard requirements are non-empty and a
// sane length for the storage column.
func ValidateAccountNumber(accountNumber string) error {
	if accountNumber == "" {
		return models.NewValidationError("Account number is required")
	}
	if len(accountNumber) > 20 {
		return models.NewValidationError("Account number must be at most 20 characters")
	}
	if strings.ContainsAny(accountNumber, " \t\n") {
		return models.NewValidationError("Account number must not contain whitespace")
	}
	return nil
}

// ValidateEmail checks that the address parses per RFC 5322.
func ValidateEmail(email string) error {
	if email == "" {
		return models.NewValidationError("Email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.NewValidationError("Invalid email address")
	}
	return nil
}
