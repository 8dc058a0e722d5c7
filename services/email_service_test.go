package services

import (
	"strings"
	"testing"

	"backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuote() *models.Quote {
	return &models.Quote{
		ID:            42,
		QuoteNumber:   "Q000042",
		CustomerName:  "Amira El-Sayed",
		CustomerEmail: "amira@example.com",
		Company:       "El-Sayed Trading Co.",
		Message:       "Please quote CIF Alexandria.",
		Status:        models.QuoteStatusPending,
		TotalAmount:   17.0,
		Currency:      "USD",
		Items: []models.QuoteItem{
			{ProductID: 10, ProductName: "Basmati Rice", MeasureName: "Metric Ton", Quantity: 2, UnitPrice: 0.0085, TotalPrice: 0.017},
			{ProductID: 11, ProductName: "Olive Oil", MeasureName: "Liter", Quantity: 5, UnitPrice: 3.40, TotalPrice: 17.00, ConversionError: true},
		},
	}
}

func TestRenderQuoteEmailHTML(t *testing.T) {
	out := RenderQuoteEmailHTML(QuoteEmailData{Quote: sampleQuote(), CountryName: "Egypt"})

	assert.Contains(t, out, "Quote Request Q000042")
	assert.Contains(t, out, "Amira El-Sayed")
	assert.Contains(t, out, "Egypt")
	assert.Contains(t, out, "Basmati Rice")
	assert.Contains(t, out, "Metric Ton")
	assert.Contains(t, out, "Grand Total")
	assert.Contains(t, out, "Please quote CIF Alexandria.")

	// Only the unconvertible line carries the fallback marker.
	assert.Equal(t, 1, strings.Count(out, "unit conversion unavailable"))
}

func TestRenderQuoteEmailHTMLEscapesCustomerText(t *testing.T) {
	q := sampleQuote()
	q.CustomerName = `<b>Bold</b> & "quoted"`
	out := RenderQuoteEmailHTML(QuoteEmailData{Quote: q})

	assert.NotContains(t, out, "<b>Bold</b>")
	assert.Contains(t, out, "&lt;b&gt;Bold&lt;/b&gt;")
}

func TestFormatAmount(t *testing.T) {
	assert.Contains(t, FormatAmount("USD", 17.0), "17")
	// Unknown codes fall back to a plain prefix.
	assert.Equal(t, "QQQ 1.23", FormatAmount("QQQ", 1.234))
}

func TestConvertHTMLToText(t *testing.T) {
	text := ConvertHTMLToText(`<html><body><h2>Quote Request Q000042</h2><p>Customer: Amira</p><table><tr><td>Rice</td><td>2</td></tr></table></body></html>`)

	assert.Contains(t, text, "Quote Request Q000042")
	assert.Contains(t, text, "Customer: Amira")
	assert.Contains(t, text, "Rice | 2")
	assert.NotContains(t, text, "<")
	assert.NotContains(t, text, "\n\n\n")
}

func TestSendQuoteEmailDisabledWithoutHost(t *testing.T) {
	t.Setenv("SMTP_HOST", "")
	es := NewEmailService(nil)
	require.NotNil(t, es)

	sent := es.SendQuoteEmail(QuoteEmailData{Quote: sampleQuote()}, "buyer@example.com")
	assert.False(t, sent)
}
