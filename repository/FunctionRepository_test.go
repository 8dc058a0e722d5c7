package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatQuoteNumber(t *testing.T) {
	assert.Equal(t, "Q000001", FormatQuoteNumber(1))
	assert.Equal(t, "Q000042", FormatQuoteNumber(42))
	assert.Equal(t, "Q123456", FormatQuoteNumber(123456))
	assert.Equal(t, "Q1234567", FormatQuoteNumber(1234567))
}

func TestGenerateComposeTokenIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := GenerateComposeToken()
		assert.NotEmpty(t, token)
		assert.False(t, seen[token], "duplicate token %s", token)
		seen[token] = true
	}
}
