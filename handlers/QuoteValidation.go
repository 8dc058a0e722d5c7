package handlers

import (
	"fmt"
	"regexp"
	"strings"

	"backend/models"
	"backend/utils"
)

// Field bounds for quote submissions. Prices are capped so a mistyped
// client value can never inflate a stored total.
const (
	maxQuoteItems    = 50
	maxQuantity      = 10000
	maxUnitPrice     = 1000000
	maxNotesLen      = 500
	maxMessageLen    = 2000
	maxMapEntries    = 20
	maxMapKeyLen     = 50
	maxMapValueLen   = 200
	maxAddressValLen = 200
)

var (
	reCustomerName = regexp.MustCompile(`^[\p{L} .,'-]+$`)
	reEmail        = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	rePhone        = regexp.MustCompile(`^\+?[0-9 ()\-]{7,20}$`)
)

// sanitizeSubmission strips markup from every free-text field in place.
// It runs before validation so length checks see the cleaned values.
func sanitizeSubmission(req *models.QuoteSubmissionRequest) {
	req.CustomerName = utils.SanitizeText(req.CustomerName)
	req.CustomerEmail = utils.SanitizeText(req.CustomerEmail)
	req.CustomerPhone = utils.SanitizeText(req.CustomerPhone)
	req.Company = utils.SanitizeText(req.Company)
	req.RecipientEmail = utils.SanitizeText(req.RecipientEmail)
	req.Message = utils.SanitizeText(req.Message)
	req.ShippingAddress = utils.SanitizeMap(req.ShippingAddress)
	for i := range req.Items {
		req.Items[i].Notes = utils.SanitizeText(req.Items[i].Notes)
		req.Items[i].Specifications = utils.SanitizeMap(req.Items[i].Specifications)
	}
}

// submissionTextFields gathers every free-text value of the request for the
// injection scan. Keys of the map fields are included since they end up in
// stored jsonb as well.
func submissionTextFields(req *models.QuoteSubmissionRequest) []string {
	fields := []string{
		req.CustomerName, req.CustomerEmail, req.CustomerPhone,
		req.Company, req.RecipientEmail, req.Message,
	}
	for k, v := range req.ShippingAddress {
		fields = append(fields, k, v)
	}
	for _, item := range req.Items {
		fields = append(fields, item.Notes)
		for k, v := range item.Specifications {
			fields = append(fields, k, v)
		}
	}
	return fields
}

func validateTextMap(errs []models.FieldError, m map[string]string, field string, maxValLen int) []models.FieldError {
	if len(m) > maxMapEntries {
		errs = append(errs, models.FieldError{Field: field, Message: fmt.Sprintf("At most %d entries are allowed", maxMapEntries)})
		return errs
	}
	for k, v := range m {
		if len(k) == 0 || len(k) > maxMapKeyLen {
			errs = append(errs, models.FieldError{Field: field, Message: fmt.Sprintf("Keys must be 1-%d characters", maxMapKeyLen)})
		}
		if len(v) > maxValLen {
			errs = append(errs, models.FieldError{Field: field, Message: fmt.Sprintf("Values must be at most %d characters", maxValLen)})
		}
	}
	return errs
}

// validateSubmission checks every field against its bounds and returns the
// full list of violations rather than stopping at the first one.
func validateSubmission(req *models.QuoteSubmissionRequest) []models.FieldError {
	var errs []models.FieldError

	name := strings.TrimSpace(req.CustomerName)
	if len(name) < 2 || len(name) > 100 {
		errs = append(errs, models.FieldError{Field: "customer_name", Message: "Name must be between 2 and 100 characters"})
	} else if !reCustomerName.MatchString(name) {
		errs = append(errs, models.FieldError{Field: "customer_name", Message: "Name contains invalid characters"})
	}

	if !reEmail.MatchString(req.CustomerEmail) {
		errs = append(errs, models.FieldError{Field: "customer_email", Message: "A valid email address is required"})
	}
	if req.RecipientEmail != "" && !reEmail.MatchString(req.RecipientEmail) {
		errs = append(errs, models.FieldError{Field: "recipient_email", Message: "Recipient email is not a valid address"})
	}
	if req.CustomerPhone != "" && !rePhone.MatchString(req.CustomerPhone) {
		errs = append(errs, models.FieldError{Field: "customer_phone", Message: "Phone number format is invalid"})
	}
	if len(req.Company) > 200 {
		errs = append(errs, models.FieldError{Field: "company", Message: "Company must be at most 200 characters"})
	}
	if req.CountryID < 1 {
		errs = append(errs, models.FieldError{Field: "country_id", Message: "A destination country is required"})
	}
	if len(req.Message) > maxMessageLen {
		errs = append(errs, models.FieldError{Field: "message", Message: fmt.Sprintf("Message must be at most %d characters", maxMessageLen)})
	}
	errs = validateTextMap(errs, req.ShippingAddress, "shipping_address", maxAddressValLen)

	if len(req.Items) == 0 {
		errs = append(errs, models.FieldError{Field: "items", Message: "At least one item is required"})
	} else if len(req.Items) > maxQuoteItems {
		errs = append(errs, models.FieldError{Field: "items", Message: fmt.Sprintf("At most %d items are allowed", maxQuoteItems)})
	}

	for i, item := range req.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		if item.ProductID < 1 {
			errs = append(errs, models.FieldError{Field: prefix + "product_id", Message: "A product is required"})
		}
		if item.MeasureID < 1 {
			errs = append(errs, models.FieldError{Field: prefix + "measure_id", Message: "A unit of measure is required"})
		}
		if item.Quantity < 1 || item.Quantity > maxQuantity {
			errs = append(errs, models.FieldError{Field: prefix + "quantity", Message: fmt.Sprintf("Quantity must be between 1 and %d", maxQuantity)})
		}
		if item.UnitPrice < 0 || item.UnitPrice > maxUnitPrice {
			errs = append(errs, models.FieldError{Field: prefix + "unit_price", Message: fmt.Sprintf("Unit price must be between 0 and %d", maxUnitPrice)})
		}
		if len(item.Notes) > maxNotesLen {
			errs = append(errs, models.FieldError{Field: prefix + "notes", Message: fmt.Sprintf("Notes must be at most %d characters", maxNotesLen)})
		}
		errs = validateTextMap(errs, item.Specifications, prefix+"specifications", maxMapValueLen)
	}

	return errs
}
