package repository

import (
	"fmt"

	"github.com/google/uuid"
)

// FormatQuoteNumber renders a quote sequence as the human-readable number:
// "Q" plus the sequence zero-padded to six digits. Sequences past 999999
// simply widen.
func FormatQuoteNumber(sequence int) string {
	return fmt.Sprintf("Q%06d", sequence)
}

// GenerateComposeToken allocates an opaque token for a compose session.
func GenerateComposeToken() string {
	return uuid.NewString()
}
