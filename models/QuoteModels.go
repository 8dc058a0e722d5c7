package models

import "time"

// Quote statuses
const (
	QuoteStatusPending   = "PENDING"
	QuoteStatusReviewed  = "REVIEWED"
	QuoteStatusConfirmed = "CONFIRMED"
	QuoteStatusRejected  = "REJECTED"
)

// Email dispatch outcomes recorded on the quote header
const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

type Quote struct {
	ID              int               `json:"id" example:"42"`
	QuoteNumber     string            `json:"quote_number" example:"Q000042"`
	CustomerName    string            `json:"customer_name"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerPhone   string            `json:"customer_phone,omitempty"`
	Company         string            `json:"company,omitempty"`
	CountryID       int               `json:"country_id"`
	CountryName     string            `json:"country_name,omitempty"`
	RecipientEmail  string            `json:"recipient_email,omitempty"`
	ShippingAddress map[string]string `json:"shipping_address,omitempty"`
	Message         string            `json:"message,omitempty"`
	Status          string            `json:"status" example:"PENDING"`
	TotalAmount     float64           `json:"total_amount"`
	Currency        string            `json:"currency" example:"USD"`
	EmailStatus     string            `json:"email_status,omitempty"`
	EmailSentAt     *time.Time        `json:"email_sent_at,omitempty"`
	Identifier      string            `json:"-"`
	Items           []QuoteItem       `json:"items"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// QuoteItem is one product line within a quote. TotalPrice is always
// UnitPrice x Quantity. ConversionError marks lines whose requested measure
// could not be converted from the product's base measure; such lines carry
// the product's base price as a fallback.
type QuoteItem struct {
	ID              int               `json:"id"`
	QuoteID         int               `json:"quote_id"`
	ProductID       int               `json:"product_id"`
	ProductName     string            `json:"product_name,omitempty"`
	MeasureID       int               `json:"measure_id"`
	MeasureName     string            `json:"measure_name,omitempty"`
	Quantity        int               `json:"quantity"`
	UnitPrice       float64           `json:"unit_price"`
	TotalPrice      float64           `json:"total_price"`
	Notes           string            `json:"notes,omitempty"`
	Specifications  map[string]string `json:"specifications,omitempty"`
	ConversionError bool              `json:"conversion_error,omitempty"`
}

// QuoteItemRequest is one submitted line item. UnitPrice is accepted for
// bounds checking but the stored price is re-derived server side.
type QuoteItemRequest struct {
	ProductID      int               `json:"product_id"`
	MeasureID      int               `json:"measure_id"`
	Quantity       int               `json:"quantity"`
	UnitPrice      float64           `json:"unit_price"`
	Notes          string            `json:"notes"`
	Specifications map[string]string `json:"specifications"`
}

// QuoteSubmissionRequest is the wire contract for POST /api/quotes.
type QuoteSubmissionRequest struct {
	CustomerName    string             `json:"customer_name"`
	CustomerEmail   string             `json:"customer_email"`
	CustomerPhone   string             `json:"customer_phone"`
	Company         string             `json:"company"`
	CountryID       int                `json:"country_id"`
	RecipientEmail  string             `json:"recipient_email"`
	ShippingAddress map[string]string  `json:"shipping_address"`
	Message         string             `json:"message"`
	Items           []QuoteItemRequest `json:"items"`
}

type QuoteSubmissionResponse struct {
	Quote     *Quote `json:"quote"`
	EmailSent bool   `json:"email_sent"`
}

// FieldError is one entry of a structured validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
