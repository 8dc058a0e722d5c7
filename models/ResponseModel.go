package models

// ErrorResponse is the generic error body used by swagger annotations.
type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

// RateLimitResponse is returned when a submission is throttled.
type RateLimitResponse struct {
	Error             string `json:"error" example:"rate_limit_exceeded"`
	RetryAfterSeconds int    `json:"retry_after_seconds" example:"25"`
}

// ValidationErrorResponse carries the structured field-level failure list.
type ValidationErrorResponse struct {
	Error  string       `json:"error" example:"validation_error"`
	Fields []FieldError `json:"fields"`
}
