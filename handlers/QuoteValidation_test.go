package handlers

import (
	"strings"
	"testing"

	"backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubmission() models.QuoteSubmissionRequest {
	return models.QuoteSubmissionRequest{
		CustomerName:  "Amira El-Sayed",
		CustomerEmail: "amira@example.com",
		CustomerPhone: "+20 100 555 0199",
		Company:       "El-Sayed Trading Co.",
		CountryID:     1,
		Message:       "Please quote CIF Alexandria.",
		Items: []models.QuoteItemRequest{
			{ProductID: 10, MeasureID: 3, Quantity: 2, UnitPrice: 0.0085},
		},
	}
}

func fieldNames(errs []models.FieldError) []string {
	names := make([]string, 0, len(errs))
	for _, e := range errs {
		names = append(names, e.Field)
	}
	return names
}

func TestValidateSubmissionAcceptsValidRequest(t *testing.T) {
	req := validSubmission()
	assert.Empty(t, validateSubmission(&req))
}

func TestValidateSubmissionRejectsZeroAndNegativeQuantity(t *testing.T) {
	for _, qty := range []int{0, -3} {
		req := validSubmission()
		req.Items[0].Quantity = qty

		errs := validateSubmission(&req)
		require.NotEmpty(t, errs)
		assert.Contains(t, fieldNames(errs), "items[0].quantity")
	}
}

func TestValidateSubmissionQuantityUpperBound(t *testing.T) {
	req := validSubmission()
	req.Items[0].Quantity = maxQuantity + 1

	errs := validateSubmission(&req)
	assert.Contains(t, fieldNames(errs), "items[0].quantity")
}

func TestValidateSubmissionCustomerName(t *testing.T) {
	cases := map[string]string{
		"too short":  "A",
		"too long":   strings.Repeat("a", 101),
		"digits":     "Amira 3rd",
		"angle junk": "Amira <x>",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			req := validSubmission()
			req.CustomerName = value
			errs := validateSubmission(&req)
			assert.Contains(t, fieldNames(errs), "customer_name")
		})
	}

	// Unicode letters, apostrophes and hyphens are fine.
	req := validSubmission()
	req.CustomerName = "José O'Brien-Müller"
	assert.Empty(t, validateSubmission(&req))
}

func TestValidateSubmissionEmailAndPhone(t *testing.T) {
	req := validSubmission()
	req.CustomerEmail = "not-an-email"
	assert.Contains(t, fieldNames(validateSubmission(&req)), "customer_email")

	req = validSubmission()
	req.RecipientEmail = "also@bad"
	assert.Contains(t, fieldNames(validateSubmission(&req)), "recipient_email")

	req = validSubmission()
	req.CustomerPhone = "call me maybe"
	assert.Contains(t, fieldNames(validateSubmission(&req)), "customer_phone")

	// Phone is optional.
	req = validSubmission()
	req.CustomerPhone = ""
	assert.Empty(t, validateSubmission(&req))
}

func TestValidateSubmissionRequiresCountryAndItems(t *testing.T) {
	req := validSubmission()
	req.CountryID = 0
	assert.Contains(t, fieldNames(validateSubmission(&req)), "country_id")

	req = validSubmission()
	req.Items = nil
	assert.Contains(t, fieldNames(validateSubmission(&req)), "items")
}

func TestValidateSubmissionUnitPriceBounds(t *testing.T) {
	req := validSubmission()
	req.Items[0].UnitPrice = -1
	assert.Contains(t, fieldNames(validateSubmission(&req)), "items[0].unit_price")

	req = validSubmission()
	req.Items[0].UnitPrice = maxUnitPrice + 1
	assert.Contains(t, fieldNames(validateSubmission(&req)), "items[0].unit_price")
}

func TestValidateSubmissionTextLimits(t *testing.T) {
	req := validSubmission()
	req.Message = strings.Repeat("x", maxMessageLen+1)
	assert.Contains(t, fieldNames(validateSubmission(&req)), "message")

	req = validSubmission()
	req.Items[0].Notes = strings.Repeat("x", maxNotesLen+1)
	assert.Contains(t, fieldNames(validateSubmission(&req)), "items[0].notes")

	req = validSubmission()
	req.ShippingAddress = map[string]string{}
	for i := 0; i < maxMapEntries+1; i++ {
		req.ShippingAddress[strings.Repeat("k", i+1)] = "v"
	}
	assert.Contains(t, fieldNames(validateSubmission(&req)), "shipping_address")
}

func TestValidateSubmissionCollectsAllErrors(t *testing.T) {
	req := models.QuoteSubmissionRequest{}
	errs := validateSubmission(&req)

	names := fieldNames(errs)
	assert.Contains(t, names, "customer_name")
	assert.Contains(t, names, "customer_email")
	assert.Contains(t, names, "country_id")
	assert.Contains(t, names, "items")
}

func TestSanitizeSubmissionStripsMarkupEverywhere(t *testing.T) {
	req := validSubmission()
	req.CustomerName = `<b>Amira</b>`
	req.Message = `hello <script>alert(1)</script>`
	req.Items[0].Notes = `<i>urgent</i>`
	req.Items[0].Specifications = map[string]string{"grade": "<b>premium</b>"}
	req.ShippingAddress = map[string]string{"city": "Alexandria<script>x</script>"}

	sanitizeSubmission(&req)

	assert.Equal(t, "Amira", req.CustomerName)
	assert.Equal(t, "hello", req.Message)
	assert.Equal(t, "urgent", req.Items[0].Notes)
	assert.Equal(t, "premium", req.Items[0].Specifications["grade"])
	assert.Equal(t, "Alexandria", req.ShippingAddress["city"])
}

func TestSubmissionTextFieldsCoversMaps(t *testing.T) {
	req := validSubmission()
	req.Items[0].Specifications = map[string]string{"grade": "premium"}
	req.ShippingAddress = map[string]string{"city": "Alexandria"}

	fields := submissionTextFields(&req)
	joined := strings.Join(fields, "\n")
	assert.Contains(t, joined, "premium")
	assert.Contains(t, joined, "grade")
	assert.Contains(t, joined, "Alexandria")
	assert.Contains(t, joined, "city")
	assert.Contains(t, joined, req.Message)
}
