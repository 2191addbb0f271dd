package service

import (
	"crypto/rand"
	"encoding/base64"
)

// cancellationTokenBytes is the entropy of a cancellation token. 32 bytes
// (256 bits) keeps enumeration of the /cancel/<token> URL space infeasible;
// possession of the link is the only authentication for cancellation.
const cancellationTokenBytes = 32

// NewCancellationToken returns a cryptographically random, URL-safe token
// suitable for use as a path segment. Uniqueness is enforced by the unique
// index on box_requests.cancellation_token; the caller retries on the
// astronomically rare collision.
func NewCancellationToken() (string, error) {
	b := make([]byte, cancellationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
